package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// tokenServer answers OAuth token requests and records the last form.
func tokenServer(t *testing.T, form *url.Values) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		*form = r.PostForm

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "fresh-access",
			"token_type":    "bearer",
			"refresh_token": "fresh-refresh",
			"expires_in":    7200,
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func testOAuth(serverURL string) *oauth2.Config {
	return NewOAuthConfig(Config{
		ClientID:    "client-id",
		RedirectURL: "http://localhost:5000/oauth/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:  serverURL + "/authorize",
			TokenURL: serverURL + "/token",
		},
	})
}

func TestNewOAuthConfig_Defaults(t *testing.T) {
	cfg := NewOAuthConfig(Config{ClientID: "id"})
	assert.Equal(t, Endpoint, cfg.Endpoint)
	assert.Contains(t, cfg.Scopes, "offline.access")
	assert.Contains(t, cfg.Scopes, "tweet.write")
}

func TestLogin(t *testing.T) {
	var form url.Values
	server := tokenServer(t, &form)
	oauth := testOAuth(server.URL)

	login, authURL := BeginLogin(oauth)
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, login.State, q.Get("state"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.NotEmpty(t, q.Get("code_challenge"))
	assert.Equal(t, "client-id", q.Get("client_id"))

	t.Run("state mismatch", func(t *testing.T) {
		_, err := login.Exchange(context.Background(), "other", "code")
		assert.ErrorContains(t, err, "state mismatch")
	})

	t.Run("missing code", func(t *testing.T) {
		_, err := login.Exchange(context.Background(), login.State, "")
		assert.Error(t, err)
	})

	t.Run("exchange sends verifier", func(t *testing.T) {
		tok, err := login.Exchange(context.Background(), login.State, "auth-code")
		require.NoError(t, err)
		assert.Equal(t, "fresh-access", tok.AccessToken)
		assert.Equal(t, "auth-code", form.Get("code"))
		assert.NotEmpty(t, form.Get("code_verifier"))
	})
}

func TestCallbackHandler(t *testing.T) {
	results := make(chan Callback, 1)
	h := CallbackHandler(results)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth/callback?state=s1&code=c1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, Callback{State: "s1", Code: "c1"}, <-results)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth/callback?error=access_denied", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "access_denied", (<-results).Error)
}

func TestTokenStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tokens")
	store := NewTokenStore(dir)

	_, err := store.Load("poet")
	assert.ErrorIs(t, err, ErrNoToken)

	tok := &oauth2.Token{AccessToken: "a", RefreshToken: "r", TokenType: "bearer", Expiry: time.Now().Add(time.Hour).Round(time.Second)}
	require.NoError(t, store.Save("poet", tok))

	loaded, err := store.Load("poet")
	require.NoError(t, err)
	assert.Equal(t, "a", loaded.AccessToken)
	assert.Equal(t, "r", loaded.RefreshToken)
	assert.True(t, tok.Expiry.Equal(loaded.Expiry))

	info, err := os.Stat(filepath.Join(dir, "poet.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	t.Run("sanitizes usernames", func(t *testing.T) {
		require.NoError(t, store.Save("../evil", tok))
		_, err := os.Stat(filepath.Join(dir, ".._evil.json"))
		assert.NoError(t, err)
	})
}

func TestTokenSource_RefreshesAndSaves(t *testing.T) {
	var form url.Values
	server := tokenServer(t, &form)
	oauth := testOAuth(server.URL)

	store := NewTokenStore(t.TempDir())
	require.NoError(t, store.Save("poet", &oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "old-refresh",
		TokenType:    "bearer",
		Expiry:       time.Now().Add(-time.Hour),
	}))

	ts, err := TokenSource(context.Background(), oauth, store, "poet")
	require.NoError(t, err)

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "fresh-access", tok.AccessToken)
	assert.Equal(t, "refresh_token", form.Get("grant_type"))
	assert.Equal(t, "old-refresh", form.Get("refresh_token"))

	saved, err := store.Load("poet")
	require.NoError(t, err)
	assert.Equal(t, "fresh-access", saved.AccessToken)
	assert.Equal(t, "fresh-refresh", saved.RefreshToken)

	t.Run("missing user", func(t *testing.T) {
		_, err := TokenSource(context.Background(), oauth, store, "nobody")
		assert.ErrorIs(t, err, ErrNoToken)
	})
}
