package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"standup-report/internal/config"
	"standup-report/internal/source/gcal"
)

var (
	clientIDFlag     string
	clientSecretFlag string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize access to Google Calendar and store the token",
	RunE:  runAuth,
}

func init() {
	authCmd.Flags().StringVar(&clientIDFlag, "client-id", "", "Google OAuth client id (stored in the config file)")
	authCmd.Flags().StringVar(&clientSecretFlag, "client-secret", "", "Google OAuth client secret (stored in the config file)")
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, args []string) error {
	setupLogger()

	path, err := configPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if cfg.Google == nil {
		cfg.Google = &config.Google{}
	}
	if clientIDFlag != "" {
		cfg.Google.ClientID = clientIDFlag
	}
	if clientSecretFlag != "" {
		cfg.Google.ClientSecret = clientSecretFlag
	}
	if cfg.Google.ClientID == "" || cfg.Google.ClientSecret == "" {
		return goerr.New("google client credentials missing: pass --client-id and --client-secret or fill in " + path)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	oauthCfg := gcal.OAuthConfig(cfg.Google.ClientID, cfg.Google.ClientSecret)
	url := oauthCfg.AuthCodeURL("state", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Printf("Open this URL in your browser:\n\n  %s\n\nWaiting for the redirect...\n", url)

	code, err := listenForCode(ctx)
	if err != nil {
		return err
	}

	tok, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		return goerr.Wrap(err, "failed to exchange authorization code")
	}

	cfg.Google.Token = &config.Token{}
	cfg.Google.Token.FromOAuth2(tok)
	if err := cfg.Save(path); err != nil {
		return err
	}
	fmt.Println("Token stored in", path)

	if err := printCalendars(ctx, oauthCfg, tok); err != nil {
		return err
	}
	if cfg.Google.CalendarID == "" {
		fmt.Println("\nSet google.calendar_id in the config file to include meetings in reports.")
	}
	return nil
}

// listenForCode runs a one-shot HTTP server on the OAuth redirect address
// and returns the authorization code from the first successful callback.
func listenForCode(ctx context.Context) (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:7890")
	if err != nil {
		return "", goerr.Wrap(err, "failed to listen on the oauth redirect port")
	}

	codeCh := make(chan string, 1)
	srv := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := r.URL.Query().Get("code")
			if code == "" {
				http.Error(w, "missing code parameter", http.StatusBadRequest)
				return
			}
			fmt.Fprintln(w, "Go back to your terminal :)")
			select {
			case codeCh <- code:
			default:
			}
		}),
	}

	go srv.Serve(ln)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	select {
	case code := <-codeCh:
		return code, nil
	case <-ctx.Done():
		return "", goerr.Wrap(ctx.Err(), "authorization canceled")
	}
}

// printCalendars lists the available calendars to help pick a calendar_id.
func printCalendars(ctx context.Context, oauthCfg *oauth2.Config, tok *oauth2.Token) error {
	srv, err := calendar.NewService(ctx, option.WithTokenSource(oauthCfg.TokenSource(ctx, tok)))
	if err != nil {
		return goerr.Wrap(err, "failed to create calendar service")
	}

	list, err := srv.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return goerr.Wrap(err, "failed to list calendars")
	}

	fmt.Println("\nAvailable calendars:")
	for _, item := range list.Items {
		fmt.Printf("  %s\t%s\n", item.Id, item.Summary)
	}
	return nil
}
