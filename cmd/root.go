package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"
	naturaldate "github.com/tj/go-naturaldate"
	"golang.org/x/oauth2"

	"standup-report/internal/config"
	"standup-report/internal/report"
	"standup-report/internal/source"
	"standup-report/internal/source/gcal"
	"standup-report/internal/source/github"
	"standup-report/internal/source/gitlab"
	"standup-report/internal/source/ical"
)

var (
	sinceFlag         string
	untilFlag         string
	issueCommentsFlag bool
	configFlag        string
	verboseFlag       bool
)

var rootCmd = &cobra.Command{
	Use:   "standup-report",
	Short: "Generate a standup report from GitHub, GitLab and calendar activity",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file path (default: ~/"+config.FileName+")")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "enable debug logging")
	rootCmd.Flags().StringVar(&sinceFlag, "since", "", `start date inclusive, e.g. "2026-08-25", "yesterday", "last friday" (default: yesterday)`)
	rootCmd.Flags().StringVar(&untilFlag, "until", "", `end date inclusive, e.g. "2026-08-26", "today" (default: today)`)
	rootCmd.Flags().BoolVar(&issueCommentsFlag, "issue-comments", false, "include issue comment activity")
}

func Execute() error {
	return rootCmd.Execute()
}

func setupLogger() {
	level := slog.LevelWarn
	if verboseFlag {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func configPath() (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	return config.DefaultPath()
}

func run(cmd *cobra.Command, args []string) error {
	setupLogger()

	// Load .env file without overriding existing env vars.
	// Precedence: real env vars > .env file values > config file.
	_ = godotenv.Load()

	path, err := configPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	applyEnv(cfg)

	window, err := parseDateRange(sinceFlag, untilFlag)
	if err != nil {
		return err
	}

	opts := report.Options{IncludeIssueComments: cfg.IncludeIssueComments}
	if cmd.Flags().Changed("issue-comments") {
		opts.IncludeIssueComments = issueCommentsFlag
	}

	sources, googleTS, err := buildSources(cfg)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return goerr.New("no sources configured: set GITHUB_TOKEN or GITLAB_TOKEN, or fill in " + path)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	raw, err := fetchAll(ctx, sources, window)
	if err != nil {
		return err
	}

	model, err := report.Build(raw, window, opts)
	if err != nil {
		return err
	}

	if err := report.Render(os.Stdout, model); err != nil {
		return err
	}

	persistRefreshedToken(cfg, googleTS, path)
	return nil
}

// applyEnv overlays environment variables on top of the config file.
func applyEnv(cfg *config.Config) {
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		cfg.GitHub.Token = v
	}
	if v := os.Getenv("GITHUB_USER"); v != "" {
		cfg.GitHub.Username = v
	}
	if v := os.Getenv("GITLAB_TOKEN"); v != "" {
		cfg.GitLab.Token = v
	}
	if v := os.Getenv("GITLAB_URL"); v != "" {
		cfg.GitLab.BaseURL = v
	}
}

// buildSources assembles every configured source. The Google token source
// is returned separately so a refreshed token can be written back after
// the run.
func buildSources(cfg *config.Config) ([]source.Source, oauth2.TokenSource, error) {
	var sources []source.Source

	if cfg.GitHub.Token != "" {
		sources = append(sources, github.New(cfg.GitHub.Token, cfg.GitHub.Username))
	}

	if cfg.GitLab.Token != "" {
		src, err := gitlab.New(cfg.GitLab.Token, cfg.GitLab.BaseURL)
		if err != nil {
			return nil, nil, err
		}
		sources = append(sources, src)
	}

	var googleTS oauth2.TokenSource
	if g := cfg.Google; g != nil && g.CalendarID != "" {
		if g.Token == nil {
			return nil, nil, goerr.New("google calendar configured but not authorized; run `standup-report auth` first")
		}
		oauthCfg := gcal.OAuthConfig(g.ClientID, g.ClientSecret)
		googleTS = oauthCfg.TokenSource(context.Background(), g.Token.OAuth2())
		sources = append(sources, gcal.New(googleTS, g.CalendarID))
	}

	if cfg.ICal != nil && cfg.ICal.Location != "" {
		sources = append(sources, ical.New(cfg.ICal.Location))
	}

	return sources, googleTS, nil
}

// fetchAll runs every source concurrently and collects the complete raw
// event batch. Any source failure aborts the whole run: the engine never
// sees a partial batch, so there is no partial-report mode.
func fetchAll(ctx context.Context, sources []source.Source, w report.Window) ([]report.RawEvent, error) {
	var (
		all  []report.RawEvent
		errs []error
		mu   sync.Mutex
		wg   sync.WaitGroup
	)

	for _, src := range sources {
		wg.Add(1)
		go func(src source.Source) {
			defer wg.Done()
			events, err := src.Events(ctx, w)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, goerr.Wrap(err, src.Name()+" fetch failed"))
				return
			}
			all = append(all, events...)
		}(src)
	}

	wg.Wait()

	if len(errs) > 0 {
		for _, err := range errs[1:] {
			slog.Error("source fetch failed", "error", err)
		}
		return nil, errs[0]
	}
	return all, nil
}

// persistRefreshedToken writes the Google token back to the config file
// when the fetch refreshed it. Failures only warn; the report was already
// printed.
func persistRefreshedToken(cfg *config.Config, ts oauth2.TokenSource, path string) {
	if ts == nil || cfg.Google == nil || cfg.Google.Token == nil {
		return
	}
	tok, err := ts.Token()
	if err != nil {
		return
	}
	if tok.AccessToken == cfg.Google.Token.AccessToken {
		return
	}
	cfg.Google.Token.FromOAuth2(tok)
	if err := cfg.Save(path); err != nil {
		slog.Warn("failed to persist refreshed google token", "error", err)
	}
}

const dateFormat = "2006-01-02"

// parseDateRange resolves the --since and --until flag values into the
// half-open window [since, until).
//
// Both flags accept either an exact date (YYYY-MM-DD) or a natural language
// expression such as "yesterday" or "last monday". Exact dates are tried
// first; if parsing fails, the input is interpreted as natural language
// relative to the current time.
//
//   - --since is normalized to the start of the resolved day (inclusive).
//   - --until is normalized to the start of the day *after* the resolved
//     day, so "--until today" still covers all of today.
//
// Defaults when omitted: --since = yesterday, --until = today.
func parseDateRange(sinceStr, untilStr string) (report.Window, error) {
	now := time.Now()
	today := startOfDay(now)

	var since time.Time
	if sinceStr == "" {
		since = today.AddDate(0, 0, -1)
	} else {
		t, err := parseDate(sinceStr, now)
		if err != nil {
			return report.Window{}, goerr.Wrap(err, fmt.Sprintf("invalid --since value %q", sinceStr))
		}
		since = startOfDay(t)
	}

	var until time.Time
	if untilStr == "" {
		until = today.AddDate(0, 0, 1)
	} else {
		t, err := parseDate(untilStr, now)
		if err != nil {
			return report.Window{}, goerr.Wrap(err, fmt.Sprintf("invalid --until value %q", untilStr))
		}
		until = startOfDay(t).AddDate(0, 0, 1)
	}

	if !since.Before(until) {
		return report.Window{}, goerr.New(
			fmt.Sprintf("--since (%s) must be before --until (%s)",
				since.Format(dateFormat), until.Format(dateFormat)),
			goerr.T(report.ErrTagValidation),
		)
	}

	return report.Window{Since: since, Until: until}, nil
}

// parseDate tries YYYY-MM-DD first, then falls back to natural language
// parsing via go-naturaldate. The ref time is used as the reference point
// for relative expressions.
func parseDate(s string, ref time.Time) (time.Time, error) {
	if t, err := time.ParseInLocation(dateFormat, s, ref.Location()); err == nil {
		return t, nil
	}
	return naturaldate.Parse(s, ref)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
