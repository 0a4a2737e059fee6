package topics

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
)

// WordSource supplies a word when no headline is available.
type WordSource interface {
	Word() string
}

// Pool caches filtered headlines from several sources and hands them out
// as generation context.
type Pool struct {
	sources  []Source
	filter   *Filter
	fallback WordSource

	mu        sync.Mutex
	rng       *rand.Rand
	headlines []Headline
}

// PoolConfig holds pool configuration.
type PoolConfig struct {
	Sources  []Source
	Filter   *Filter    // Default: NewFilter(FilterConfig{})
	Fallback WordSource // Used while the pool is empty
	Rand     *rand.Rand
}

// NewPool creates a new headline pool.
func NewPool(cfg PoolConfig) *Pool {
	filter := cfg.Filter
	if filter == nil {
		filter = NewFilter(FilterConfig{})
	}

	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Pool{
		sources:  cfg.Sources,
		filter:   filter,
		fallback: cfg.Fallback,
		rng:      rng,
	}
}

// Refresh fetches every source, filters and dedupes the results, and
// replaces the cached headlines. A source that fails is skipped; the cache
// is kept when every source fails.
func (p *Pool) Refresh(ctx context.Context) (int, error) {
	var all []Headline
	var lastErr error
	ok := 0

	for _, src := range p.sources {
		slog.Debug("fetching headlines", "source", src.Name())

		headlines, err := src.Fetch(ctx)
		if err != nil {
			slog.Error("headline fetch failed", "source", src.Name(), "error", err)
			lastErr = err
			continue
		}
		ok++
		all = append(all, headlines...)
	}

	if ok == 0 && lastErr != nil {
		return 0, fmt.Errorf("refresh headlines: %w", lastErr)
	}

	filtered := p.filter.Apply(all)

	seen := make(map[string]bool, len(filtered))
	unique := filtered[:0]
	for _, h := range filtered {
		key := Hash(h)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, h)
	}

	p.mu.Lock()
	p.headlines = unique
	p.mu.Unlock()

	slog.Info("headline refresh complete",
		"fetched", len(all),
		"kept", len(unique),
	)
	return len(unique), nil
}

// Len returns the number of cached headlines.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.headlines)
}

// Word returns a random cached headline title, or a fallback word.
func (p *Pool) Word() string {
	p.mu.Lock()
	if n := len(p.headlines); n > 0 {
		title := p.headlines[p.rng.IntN(n)].Title
		p.mu.Unlock()
		return title
	}
	p.mu.Unlock()

	if p.fallback != nil {
		return p.fallback.Word()
	}
	return ""
}
