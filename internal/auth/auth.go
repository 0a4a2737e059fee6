// Package auth handles X OAuth2 login, token persistence and refresh.
package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// Endpoint is the X OAuth2 authorization server.
var Endpoint = oauth2.Endpoint{
	AuthURL:   "https://x.com/i/oauth2/authorize",
	TokenURL:  "https://api.x.com/2/oauth2/token",
	AuthStyle: oauth2.AuthStyleInHeader,
}

// Scopes needed to read the account and publish posts. offline.access
// yields a refresh token.
var Scopes = []string{"tweet.read", "tweet.write", "users.read", "offline.access"}

// Config holds OAuth client settings.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Endpoint     oauth2.Endpoint // Default: X endpoint
}

// NewOAuthConfig builds the oauth2 client configuration.
func NewOAuthConfig(cfg Config) *oauth2.Config {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = Endpoint
	}
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       Scopes,
		Endpoint:     endpoint,
	}
}

// Login is one in-flight PKCE authorization.
type Login struct {
	oauth    *oauth2.Config
	State    string
	verifier string
}

// BeginLogin starts an authorization and returns the URL to open.
func BeginLogin(oauth *oauth2.Config) (*Login, string) {
	l := &Login{
		oauth:    oauth,
		State:    uuid.NewString(),
		verifier: oauth2.GenerateVerifier(),
	}
	url := l.oauth.AuthCodeURL(l.State, oauth2.S256ChallengeOption(l.verifier))
	return l, url
}

// Exchange trades the callback code for a token after checking state.
func (l *Login) Exchange(ctx context.Context, state, code string) (*oauth2.Token, error) {
	if state != l.State {
		return nil, fmt.Errorf("oauth state mismatch")
	}
	if code == "" {
		return nil, fmt.Errorf("missing authorization code")
	}

	tok, err := l.oauth.Exchange(ctx, code, oauth2.VerifierOption(l.verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return tok, nil
}
