package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"github.com/abdulachik/xstudio/internal/db"
	"github.com/abdulachik/xstudio/internal/poster"
	"github.com/abdulachik/xstudio/internal/suggest"
)

const defaultAttempts = 3

// Generator produces suggestions.
type Generator interface {
	SelectAndGenerate(ctx context.Context, userContext string, mode suggest.Mode, domainID int64) (*suggest.Suggestion, error)
}

// Publisher publishes text with the given credentials.
type Publisher interface {
	CheckDailyLimit(ctx context.Context) error
	Publish(ctx context.Context, ts oauth2.TokenSource, text string, outputID int64) (*db.Post, error)
}

// Topics supplies generation context and can be refreshed.
type Topics interface {
	Refresh(ctx context.Context) (int, error)
	Word() string
}

// Scheduler periodically generates a suggestion and publishes it.
type Scheduler struct {
	generator Generator
	publisher Publisher
	topics    Topics
	tokens    oauth2.TokenSource
	health    *Health

	mode         suggest.Mode
	domainID     int64
	postInterval time.Duration
	topicRefresh time.Duration
	attempts     int
}

// Config holds scheduler configuration.
type Config struct {
	Generator    Generator
	Publisher    Publisher
	Topics       Topics // Optional: nil uses the generator's fallback context
	Tokens       oauth2.TokenSource
	Mode         suggest.Mode  // Default: weighted
	DomainID     int64         // 0 for any domain
	PostInterval time.Duration // Default: 4h
	TopicRefresh time.Duration // Default: 1h
	Attempts     int           // Generations per cycle before giving up. Default: 3
}

// New creates a new scheduler.
func New(cfg Config) *Scheduler {
	mode := cfg.Mode
	if mode == "" {
		mode = suggest.ModeWeighted
	}

	postInterval := cfg.PostInterval
	if postInterval <= 0 {
		postInterval = 4 * time.Hour
	}

	topicRefresh := cfg.TopicRefresh
	if topicRefresh <= 0 {
		topicRefresh = time.Hour
	}

	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = defaultAttempts
	}

	return &Scheduler{
		generator:    cfg.Generator,
		publisher:    cfg.Publisher,
		topics:       cfg.Topics,
		tokens:       cfg.Tokens,
		health:       NewHealth(),
		mode:         mode,
		domainID:     cfg.DomainID,
		postInterval: postInterval,
		topicRefresh: topicRefresh,
		attempts:     attempts,
	}
}

// Run starts the scheduler main loop. It returns ctx.Err() on shutdown.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.Info("starting scheduler",
		"mode", s.mode,
		"post_interval", s.postInterval,
		"topic_refresh", s.topicRefresh,
	)

	if _, err := s.tokens.Token(); err != nil {
		s.health.SetUnhealthy("x", err)
		slog.Error("failed to load X credentials", "error", err)
	} else {
		s.health.SetHealthy("x", "authenticated")
	}

	postTicker := time.NewTicker(s.postInterval)
	defer postTicker.Stop()

	var topicTick <-chan time.Time
	if s.topics != nil {
		topicTicker := time.NewTicker(s.topicRefresh)
		defer topicTicker.Stop()
		topicTick = topicTicker.C
		s.refreshTopics(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler shutting down")
			return ctx.Err()

		case <-topicTick:
			s.refreshTopics(ctx)

		case <-postTicker.C:
			if _, err := s.PostCycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("post cycle failed", "error", err)
			}
		}
	}
}

func (s *Scheduler) refreshTopics(ctx context.Context) {
	n, err := s.topics.Refresh(ctx)
	if err != nil {
		s.health.SetUnhealthy("topics", err)
		slog.Error("topic refresh failed", "error", err)
		return
	}
	s.health.SetHealthy("topics", fmt.Sprintf("%d headlines", n))
}

// PostCycle generates a suggestion and publishes it. Near-duplicates and
// failed generations are retried with fresh context up to the configured
// attempts. Reaching the daily limit ends the cycle without an error.
func (s *Scheduler) PostCycle(ctx context.Context) (*db.Post, error) {
	slog.Debug("running post cycle")

	if err := s.publisher.CheckDailyLimit(ctx); err != nil {
		if errors.Is(err, poster.ErrDailyLimit) {
			slog.Info("daily post limit reached", "error", err)
			return nil, nil
		}
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		userContext := ""
		if s.topics != nil {
			userContext = s.topics.Word()
		}

		sug, err := s.generator.SelectAndGenerate(ctx, userContext, s.mode, s.domainID)
		if err != nil {
			var noCandidates *suggest.NoCandidatesError
			if errors.As(err, &noCandidates) || ctx.Err() != nil {
				s.health.SetUnhealthy("generate", err)
				return nil, err
			}
			slog.Warn("generation failed", "attempt", attempt, "error", err)
			lastErr = err
			continue
		}
		s.health.SetHealthy("generate", fmt.Sprintf("generated output %d", sug.OutputID))

		post, err := s.publisher.Publish(ctx, s.tokens, sug.Text, sug.OutputID)
		if err != nil {
			if errors.Is(err, poster.ErrDailyLimit) {
				slog.Info("daily post limit reached", "error", err)
				return nil, nil
			}
			var dup *poster.DuplicateError
			if errors.As(err, &dup) {
				slog.Info("skipping near-duplicate", "attempt", attempt, "post_id", dup.Match.PostID)
				lastErr = err
				continue
			}
			s.health.SetUnhealthy("post", err)
			return nil, err
		}

		s.health.SetHealthy("post", "posted successfully")
		slog.Info("posted suggestion",
			"post_id", post.ID,
			"prompt_id", sug.PromptID,
			"model", sug.Model,
			"context", sug.Context,
		)
		return post, nil
	}

	err := fmt.Errorf("no publishable suggestion after %d attempts: %w", s.attempts, lastErr)
	s.health.SetUnhealthy("post", err)
	return nil, err
}

// Health returns the health tracker.
func (s *Scheduler) Health() *Health {
	return s.health
}
