// Package vectorstore provides a VecLite-based history of published posts
// used to catch near-duplicates before publishing.
package vectorstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abdul-hamid-achik/veclite"

	"github.com/abdulachik/xstudio/internal/db"
)

const (
	// Collection name for published posts
	postsCollection = "posts"

	// DefaultThreshold is the cosine similarity above which a post is a duplicate.
	DefaultThreshold = 0.92
)

// Config holds configuration for the PostHistory.
type Config struct {
	// Path to the VecLite database file (e.g., "data/posts.veclite").
	Path string

	// ConfigPath is the path to veclite.yaml config file (optional).
	// If empty, searches ./veclite.yaml, ~/.veclite/config.yaml.
	ConfigPath string

	// Threshold is the minimum similarity reported as a duplicate.
	Threshold float32
}

// PostHistory wraps VecLite for post vector storage and search.
type PostHistory struct {
	vecdb     *veclite.DB
	coll      *veclite.Collection
	threshold float32
}

// Match is an earlier post similar to a candidate text.
type Match struct {
	VecLiteID  uint64
	PostID     int64
	Platform   string
	Text       string
	Similarity float32
}

// New creates a new PostHistory using veclite.yaml configuration.
func New(cfg Config) (*PostHistory, error) {
	slog.Debug("creating PostHistory", "path", cfg.Path, "config_path", cfg.ConfigPath)

	// Load veclite config (searches ./veclite.yaml, ~/.veclite/config.yaml)
	vecliteCfg, err := veclite.LoadConfig(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load veclite config: %w", err)
	}

	embedder, err := veclite.NewEmbedderFromConfig(vecliteCfg.Embedder)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	vecdb, err := veclite.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open veclite db: %w", err)
	}

	coll, err := vecdb.CreateCollection(postsCollection,
		veclite.WithDimension(embedder.Dimension()),
		veclite.WithDistanceType(veclite.DistanceCosine),
		veclite.WithHNSW(16, 200),
		veclite.WithTextIndex("text"),
		veclite.WithEmbedder(embedder),
	)
	if err != nil {
		// Collection might already exist, try to get it
		coll, err = vecdb.GetCollection(postsCollection)
		if err != nil {
			vecdb.Close()
			return nil, fmt.Errorf("get collection: %w", err)
		}
	}

	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	slog.Info("post history opened", "provider", vecliteCfg.Embedder.Provider, "posts", coll.Count())
	return &PostHistory{vecdb: vecdb, coll: coll, threshold: threshold}, nil
}

// Close closes the VecLite database.
func (s *PostHistory) Close() error {
	if s.vecdb != nil {
		return s.vecdb.Close()
	}
	return nil
}

// Remember adds a published post to the history and syncs it to disk.
func (s *PostHistory) Remember(ctx context.Context, p db.Post) error {
	_, err := s.coll.InsertText(p.Text, map[string]any{
		"sqlite_id": p.ID,
		"platform":  p.Platform,
		"text":      p.Text,
	})
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	if err := s.vecdb.Sync(); err != nil {
		return fmt.Errorf("sync veclite: %w", err)
	}
	return nil
}

// Nearest returns the most similar earlier post above the threshold, or nil.
func (s *PostHistory) Nearest(ctx context.Context, text string) (*Match, error) {
	if s.coll.Count() == 0 {
		return nil, nil
	}

	results, err := s.coll.SearchText(text,
		veclite.TopK(1),
		veclite.Threshold(s.threshold),
	)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}

	matches := convertResults(results)
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

// Count returns the number of posts in the history.
func (s *PostHistory) Count() int {
	return s.coll.Count()
}

// convertResults converts VecLite results to Matches.
func convertResults(results []veclite.Result) []Match {
	out := make([]Match, 0, len(results))
	for _, r := range results {
		m := Match{
			VecLiteID:  r.Record.ID,
			Similarity: r.Score,
		}

		if r.Record.Payload != nil {
			switch id := r.Record.Payload["sqlite_id"].(type) {
			case int64:
				m.PostID = id
			case int:
				m.PostID = int64(id)
			case float64:
				m.PostID = int64(id)
			}
			if platform, ok := r.Record.Payload["platform"].(string); ok {
				m.Platform = platform
			}
			if text, ok := r.Record.Payload["text"].(string); ok {
				m.Text = text
			}
		}

		// Fall back to Content field for text
		if m.Text == "" && r.Record.Content != "" {
			m.Text = r.Record.Content
		}

		out = append(out, m)
	}
	return out
}
