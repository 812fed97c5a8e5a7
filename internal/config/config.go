// Package config loads and saves the persisted configuration file,
// including the stored Google OAuth token.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/oauth2"
)

// FileName is the default config file name under the home directory.
const FileName = ".standup.toml"

type GitHub struct {
	Token    string `toml:"token,omitempty"`
	Username string `toml:"username,omitempty"`
}

type GitLab struct {
	Token   string `toml:"token,omitempty"`
	BaseURL string `toml:"base_url,omitempty"`
}

type Google struct {
	ClientID     string `toml:"client_id,omitempty"`
	ClientSecret string `toml:"client_secret,omitempty"`
	CalendarID   string `toml:"calendar_id,omitempty"`
	Token        *Token `toml:"token,omitempty"`
}

// Token is the persisted half of an oauth2.Token; the refresh token must
// survive between runs to obtain new access tokens.
type Token struct {
	AccessToken  string    `toml:"access_token"`
	RefreshToken string    `toml:"refresh_token"`
	ExpiresAt    time.Time `toml:"expires_at"`
}

// OAuth2 converts the stored token into the library representation.
func (t *Token) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		Expiry:       t.ExpiresAt,
	}
}

// FromOAuth2 converts a library token for persistence. A token response
// without a refresh token keeps the previously stored one.
func (t *Token) FromOAuth2(tok *oauth2.Token) {
	t.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		t.RefreshToken = tok.RefreshToken
	}
	t.ExpiresAt = tok.Expiry
}

type ICal struct {
	Location string `toml:"location,omitempty"` // file path or URL
}

type Config struct {
	GitHub               GitHub  `toml:"github,omitempty"`
	GitLab               GitLab  `toml:"gitlab,omitempty"`
	Google               *Google `toml:"google,omitempty"`
	ICal                 *ICal   `toml:"ical,omitempty"`
	IncludeIssueComments bool    `toml:"include_issue_comments,omitempty"`
}

// DefaultPath returns the config file path under the user's home directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", goerr.Wrap(err, "failed to resolve home directory")
	}
	return filepath.Join(home, FileName), nil
}

// Load reads the config file. A missing file yields an empty config, not
// an error; first runs work with environment variables alone.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse config file", goerr.V("path", path))
	}
	return &cfg, nil
}

// Save writes the config file with owner-only permissions; it holds tokens.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return goerr.Wrap(err, "failed to serialize config")
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return goerr.Wrap(err, "failed to write config file", goerr.V("path", path))
	}
	return nil
}
