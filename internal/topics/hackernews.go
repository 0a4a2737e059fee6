package topics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	hnBaseURL    = "https://hacker-news.firebaseio.com/v0"
	hnTopStories = "/topstories.json"
	hnItem       = "/item/%d.json"
	hnDefaultMax = 30
	hnFetchLimit = 8
)

// HackerNews reads top stories from the Hacker News API.
type HackerNews struct {
	httpClient *http.Client
	baseURL    string
	maxStories int
}

// HackerNewsConfig holds configuration for the HN source.
type HackerNewsConfig struct {
	BaseURL    string // Default: https://hacker-news.firebaseio.com/v0
	MaxStories int
}

// NewHackerNews creates a new Hacker News source.
func NewHackerNews(cfg HackerNewsConfig) *HackerNews {
	maxStories := cfg.MaxStories
	if maxStories <= 0 {
		maxStories = hnDefaultMax
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = hnBaseURL
	}

	return &HackerNews{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:    baseURL,
		maxStories: maxStories,
	}
}

// Name returns the source name.
func (h *HackerNews) Name() string {
	return "hackernews"
}

type hnStory struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Score int    `json:"score"`
	Type  string `json:"type"`
	Dead  bool   `json:"dead"`
}

// Fetch retrieves top stories. Individual story failures are skipped.
func (h *HackerNews) Fetch(ctx context.Context) ([]Headline, error) {
	ids, err := h.fetchTopStoryIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch top stories: %w", err)
	}

	if len(ids) > h.maxStories {
		ids = ids[:h.maxStories]
	}

	stories := make([]*hnStory, len(ids))
	var failed atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(hnFetchLimit)
	for i, id := range ids {
		g.Go(func() error {
			story, err := h.fetchStory(gctx, id)
			if err != nil {
				failed.Add(1)
				return nil
			}
			stories[i] = story
			return nil
		})
	}
	_ = g.Wait()

	if n := failed.Load(); n > 0 {
		slog.Warn("some HN stories failed to fetch", "errors", n)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	headlines := make([]Headline, 0, len(stories))
	for _, story := range stories {
		if story == nil || story.Type != "story" || story.Dead || story.Title == "" {
			continue
		}
		headlines = append(headlines, Headline{
			Source:     h.Name(),
			ExternalID: strconv.Itoa(story.ID),
			Title:      story.Title,
			URL:        story.URL,
			Score:      story.Score,
		})
	}

	slog.Debug("fetched HN headlines", "count", len(headlines))
	return headlines, nil
}

func (h *HackerNews) fetchTopStoryIDs(ctx context.Context) ([]int, error) {
	var ids []int
	if err := h.getJSON(ctx, h.baseURL+hnTopStories, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (h *HackerNews) fetchStory(ctx context.Context, id int) (*hnStory, error) {
	var story hnStory
	if err := h.getJSON(ctx, h.baseURL+fmt.Sprintf(hnItem, id), &story); err != nil {
		return nil, fmt.Errorf("item %d: %w", id, err)
	}
	return &story, nil
}

func (h *HackerNews) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HN API returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}
