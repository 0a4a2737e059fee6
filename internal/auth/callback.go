package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Callback is the query of the OAuth redirect.
type Callback struct {
	State string
	Code  string
	Error string
}

// CallbackHandler delivers the first redirect it receives on results.
func CallbackHandler(results chan<- Callback) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		cb := Callback{State: q.Get("state"), Code: q.Get("code"), Error: q.Get("error")}

		select {
		case results <- cb:
		default:
		}

		if cb.Error != "" {
			http.Error(w, "authorization failed: "+cb.Error, http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Login complete. You can close this window.")
	})
}

// WaitForCallback serves the redirect URL until one callback arrives or ctx ends.
func WaitForCallback(ctx context.Context, redirectURL string) (Callback, error) {
	u, err := url.Parse(redirectURL)
	if err != nil {
		return Callback{}, fmt.Errorf("parse redirect url: %w", err)
	}

	results := make(chan Callback, 1)
	mux := http.NewServeMux()
	path := u.Path
	if path == "" {
		path = "/"
	}
	mux.Handle(path, CallbackHandler(results))

	ln, err := net.Listen("tcp", u.Host)
	if err != nil {
		return Callback{}, fmt.Errorf("listen %s: %w", u.Host, err)
	}

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("callback server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	select {
	case <-ctx.Done():
		return Callback{}, ctx.Err()
	case cb := <-results:
		if cb.Error != "" {
			return cb, fmt.Errorf("authorization denied: %s", cb.Error)
		}
		return cb, nil
	}
}
