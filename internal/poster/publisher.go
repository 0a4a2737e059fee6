package poster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"

	"github.com/abdulachik/xstudio/internal/db"
	"github.com/abdulachik/xstudio/internal/metrics"
	"github.com/abdulachik/xstudio/internal/vectorstore"
)

// ErrDailyLimit is returned when the platform's daily post cap is reached.
var ErrDailyLimit = errors.New("daily post limit reached")

// DuplicateError is returned when text is too close to an earlier post.
type DuplicateError struct {
	Match vectorstore.Match
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("too similar to post %d (similarity %.2f)", e.Match.PostID, e.Match.Similarity)
}

// PostStore records published posts.
type PostStore interface {
	CreatePost(ctx context.Context, arg db.CreatePostParams) (db.Post, error)
	CountPostsToday(ctx context.Context, platform string) (int64, error)
}

// DuplicateGuard finds earlier posts similar to new text.
type DuplicateGuard interface {
	Nearest(ctx context.Context, text string) (*vectorstore.Match, error)
	Remember(ctx context.Context, p db.Post) error
}

// Publisher validates, publishes and records posts.
type Publisher struct {
	poster    Poster
	store     PostStore
	guard     DuplicateGuard
	maxPerDay int
	logger    *slog.Logger
}

// PublisherConfig holds configuration for the publisher.
type PublisherConfig struct {
	Poster    Poster
	Store     PostStore
	Guard     DuplicateGuard // Optional
	MaxPerDay int            // 0 disables the cap
	Logger    *slog.Logger
}

// NewPublisher creates a new publisher.
func NewPublisher(cfg PublisherConfig) *Publisher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		poster:    cfg.Poster,
		store:     cfg.Store,
		guard:     cfg.Guard,
		maxPerDay: cfg.MaxPerDay,
		logger:    logger,
	}
}

// CheckDailyLimit returns ErrDailyLimit once today's cap is used up.
func (p *Publisher) CheckDailyLimit(ctx context.Context) error {
	if p.maxPerDay <= 0 {
		return nil
	}
	today, err := p.store.CountPostsToday(ctx, p.poster.Platform())
	if err != nil {
		return fmt.Errorf("count today's posts: %w", err)
	}
	if today >= int64(p.maxPerDay) {
		return fmt.Errorf("%w (%d/%d)", ErrDailyLimit, today, p.maxPerDay)
	}
	return nil
}

// Publish posts text with the caller's credentials and records it.
// outputID links the post to the suggestion that produced it (0 for none).
func (p *Publisher) Publish(ctx context.Context, ts oauth2.TokenSource, text string, outputID int64) (*db.Post, error) {
	platform := p.poster.Platform()

	text = Normalize(text)
	if err := Validate(text, TwitterMaxLength); err != nil {
		return nil, err
	}

	if err := p.CheckDailyLimit(ctx); err != nil {
		return nil, err
	}

	if p.guard != nil {
		match, err := p.guard.Nearest(ctx, text)
		if err != nil {
			p.logger.Warn("duplicate check failed", "error", err)
		} else if match != nil {
			metrics.Posts.WithLabelValues(platform, "duplicate").Inc()
			return nil, &DuplicateError{Match: *match}
		}
	}

	result, err := p.poster.Post(ctx, ts, PostContent{Text: text})
	if err != nil {
		metrics.Posts.WithLabelValues(platform, "error").Inc()
		return nil, fmt.Errorf("post to %s: %w", platform, err)
	}
	metrics.Posts.WithLabelValues(platform, "ok").Inc()

	post, err := p.store.CreatePost(ctx, db.CreatePostParams{
		Text:           text,
		Platform:       platform,
		PlatformPostID: result.PostID,
		PostUrl:        db.NullString(result.PostURL),
		OutputID:       db.NullID(outputID),
	})
	if err != nil {
		return nil, fmt.Errorf("record post %s: %w", result.PostID, err)
	}

	if p.guard != nil {
		if err := p.guard.Remember(ctx, post); err != nil {
			p.logger.Warn("failed to add post to history", "post_id", post.ID, "error", err)
		}
	}

	p.logger.Info("published post", "platform", platform, "url", result.PostURL, "output_id", outputID)
	return &post, nil
}
