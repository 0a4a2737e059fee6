package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"golang.org/x/oauth2"
)

// ErrNoToken is returned when no token has been saved for a user.
var ErrNoToken = errors.New("no saved token; run 'xstudio login'")

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// TokenStore persists one token per username as JSON files.
type TokenStore struct {
	dir string
	mu  sync.Mutex
}

// NewTokenStore creates a store rooted at dir.
func NewTokenStore(dir string) *TokenStore {
	return &TokenStore{dir: dir}
}

func (s *TokenStore) path(username string) string {
	return filepath.Join(s.dir, unsafeName.ReplaceAllString(username, "_")+".json")
}

// Load returns the saved token for username.
func (s *TokenStore) Load(username string) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(username))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return &tok, nil
}

// Save writes the token for username with owner-only permissions.
func (s *TokenStore) Save(username string, tok *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}

	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}

	tmp := s.path(username) + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	if err := os.Rename(tmp, s.path(username)); err != nil {
		return fmt.Errorf("replace token: %w", err)
	}
	return nil
}

// savingSource persists tokens whenever the underlying source refreshes.
type savingSource struct {
	base     oauth2.TokenSource
	store    *TokenStore
	username string

	mu   sync.Mutex
	last string
}

func (s *savingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := s.store.Save(s.username, tok); err != nil {
			slog.Warn("failed to persist refreshed token", "username", s.username, "error", err)
		} else if s.last != "" {
			slog.Info("token refreshed", "username", s.username)
		}
		s.last = tok.AccessToken
	}
	return tok, nil
}

// TokenSource returns a refreshing token source for username that writes
// refreshed tokens back to the store.
func TokenSource(ctx context.Context, oauth *oauth2.Config, store *TokenStore, username string) (oauth2.TokenSource, error) {
	tok, err := store.Load(username)
	if err != nil {
		return nil, err
	}

	src := &savingSource{
		base:     oauth.TokenSource(ctx, tok),
		store:    store,
		username: username,
		last:     tok.AccessToken,
	}
	return oauth2.ReuseTokenSource(tok, src), nil
}
