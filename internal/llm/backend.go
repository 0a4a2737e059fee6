// Package llm routes completion requests to model providers.
//
// Model names carry their provider as a prefix, e.g.
// "openrouter/openai/o3-mini", "anthropic/claude-3-5-haiku-latest" or
// "gemini/gemini-2.0-flash". The prefix is stripped before the provider
// call.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Backend completes a single user instruction with a provider-local model name.
type Backend interface {
	Complete(ctx context.Context, model, instruction string) (string, error)
}

// StatusError is a non-200 provider response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// Retryable reports whether repeating the request may succeed.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// ErrEmptyResponse is returned when a provider answers without any content.
var ErrEmptyResponse = errors.New("empty response from API")

// isRetryable treats transport failures and throttling as transient.
func isRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return !errors.Is(err, ErrEmptyResponse)
}

// SplitModel separates the provider prefix from a model name.
func SplitModel(name string) (provider, model string) {
	provider, model, ok := strings.Cut(name, "/")
	if !ok {
		return "", name
	}
	return provider, model
}
