package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/abdulachik/xstudio/internal/metrics"
)

// DefaultRetries is the number of attempts per completion.
const DefaultRetries = 3

// Router dispatches completions by model prefix, throttling and retrying
// transient failures.
type Router struct {
	backends map[string]Backend
	fallback string
	limiter  *rate.Limiter
	retries  int
	backoff  func(attempt int) time.Duration
	logger   *slog.Logger
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Backends  map[string]Backend // Keyed by model prefix, e.g. "openrouter"
	Fallback  string             // Prefix used for names without a known prefix
	RateLimit float64            // Requests per second; 0 disables throttling
	Retries   int                // Attempts per call (default: 3)
	Backoff   func(attempt int) time.Duration
	Logger    *slog.Logger
}

// NewRouter creates a new router.
func NewRouter(cfg RouterConfig) *Router {
	retries := cfg.Retries
	if retries <= 0 {
		retries = DefaultRetries
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	backoff := cfg.Backoff
	if backoff == nil {
		backoff = func(attempt int) time.Duration {
			return time.Duration(1<<uint(attempt-1)) * time.Second
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Router{
		backends: cfg.Backends,
		fallback: cfg.Fallback,
		limiter:  limiter,
		retries:  retries,
		backoff:  backoff,
		logger:   logger,
	}
}

// Providers lists configured prefixes.
func (r *Router) Providers() []string {
	out := make([]string, 0, len(r.backends))
	for p := range r.backends {
		out = append(out, p)
	}
	return out
}

func (r *Router) resolve(name string) (string, Backend, string, error) {
	provider, model := SplitModel(name)
	if b, ok := r.backends[provider]; ok {
		return provider, b, model, nil
	}
	if b, ok := r.backends[r.fallback]; ok {
		return r.fallback, b, name, nil
	}
	return "", nil, "", fmt.Errorf("no backend configured for model %q", name)
}

// Complete sends instruction to the backend owning name.
func (r *Router) Complete(ctx context.Context, name, instruction string) (string, error) {
	provider, backend, model, err := r.resolve(name)
	if err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 1; attempt <= r.retries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(r.backoff(attempt - 1)):
			}
		}

		if err := r.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}

		start := time.Now()
		text, err := backend.Complete(ctx, model, instruction)
		metrics.ModelLatency.WithLabelValues(provider).Observe(time.Since(start).Seconds())
		if err == nil {
			metrics.ModelCalls.WithLabelValues(provider, "ok").Inc()
			return text, nil
		}

		metrics.ModelCalls.WithLabelValues(provider, "error").Inc()
		lastErr = err
		if !isRetryable(err) {
			break
		}
		r.logger.Warn("model call failed", "model", name, "attempt", attempt, "error", err)
	}

	return "", fmt.Errorf("complete %s: %w", name, lastErr)
}
