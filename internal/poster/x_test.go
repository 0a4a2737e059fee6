package poster

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func staticToken(access string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: access, TokenType: "Bearer"})
}

func TestXPoster_Post(t *testing.T) {
	t.Run("successful post", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "POST", r.Method)
			assert.Equal(t, "/tweets", r.URL.Path)
			assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))

			var req createTweetRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "hello from the harbor", req.Text)

			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"data":{"id":"1850000000000000001","text":"hello from the harbor"}}`))
		}))
		defer server.Close()

		p := NewXPoster(XConfig{BaseURL: server.URL})
		result, err := p.Post(context.Background(), staticToken("user-token"), PostContent{Text: "hello from the harbor"})
		require.NoError(t, err)
		assert.Equal(t, "1850000000000000001", result.PostID)
		assert.Equal(t, "https://x.com/i/web/status/1850000000000000001", result.PostURL)
	})

	t.Run("credentials are per call", func(t *testing.T) {
		var mu sync.Mutex
		var seen []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			seen = append(seen, r.Header.Get("Authorization"))
			mu.Unlock()
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"data":{"id":"1"}}`))
		}))
		defer server.Close()

		p := NewXPoster(XConfig{BaseURL: server.URL})
		_, err := p.Post(context.Background(), staticToken("alice"), PostContent{Text: "a"})
		require.NoError(t, err)
		_, err = p.Post(context.Background(), staticToken("bob"), PostContent{Text: "b"})
		require.NoError(t, err)
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []string{"Bearer alice", "Bearer bob"}, seen)
	})

	t.Run("rejects over-length text before calling", func(t *testing.T) {
		var called atomic.Bool
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called.Store(true)
		}))
		defer server.Close()

		p := NewXPoster(XConfig{BaseURL: server.URL})
		_, err := p.Post(context.Background(), staticToken("t"), PostContent{Text: strings.Repeat("a", 281)})
		assert.Error(t, err)
		assert.False(t, called.Load())
	})

	t.Run("api error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"detail":"You are not allowed to create a Tweet with duplicate content."}`))
		}))
		defer server.Close()

		p := NewXPoster(XConfig{BaseURL: server.URL})
		_, err := p.Post(context.Background(), staticToken("t"), PostContent{Text: "dup"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "403")
		assert.Contains(t, err.Error(), "duplicate content")
	})
}

func TestXPoster_ValidateCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"data":{"id":"42","username":"poet"}}`))
	}))
	defer server.Close()

	p := NewXPoster(XConfig{BaseURL: server.URL})
	assert.Equal(t, PlatformX, p.Platform())

	name, err := p.ValidateCredentials(context.Background(), staticToken("good"))
	require.NoError(t, err)
	assert.Equal(t, "poet", name)

	_, err = p.ValidateCredentials(context.Background(), staticToken("bad"))
	assert.ErrorContains(t, err, "401")
}
