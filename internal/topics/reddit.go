package topics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	redditTokenURL   = "https://www.reddit.com/api/v1/access_token"
	redditAPIURL     = "https://oauth.reddit.com"
	redditDefaultMax = 25
)

// Reddit reads hot posts from a set of subreddits using an app-only token.
type Reddit struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	subreddits []string
	maxPosts   int
}

// RedditConfig holds configuration for the Reddit source.
type RedditConfig struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	Subreddits   []string
	MaxPosts     int
	BaseURL      string // Default: https://oauth.reddit.com
	TokenURL     string // Default: https://www.reddit.com/api/v1/access_token
}

// NewReddit creates a new Reddit source.
func NewReddit(cfg RedditConfig) *Reddit {
	subreddits := cfg.Subreddits
	if len(subreddits) == 0 {
		subreddits = []string{
			"todayilearned",
			"pics",
			"books",
			"space",
			"photography",
		}
	}

	maxPosts := cfg.MaxPosts
	if maxPosts <= 0 {
		maxPosts = redditDefaultMax
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = redditAPIURL
	}

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = redditTokenURL
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	base := &http.Client{Timeout: 30 * time.Second}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	return &Reddit{
		httpClient: cc.Client(ctx),
		baseURL:    baseURL,
		userAgent:  cfg.UserAgent,
		subreddits: subreddits,
		maxPosts:   maxPosts,
	}
}

// Name returns the source name.
func (r *Reddit) Name() string {
	return "reddit"
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID        string `json:"id"`
				Title     string `json:"title"`
				Permalink string `json:"permalink"`
				Score     int    `json:"score"`
				Over18    bool   `json:"over_18"`
				Stickied  bool   `json:"stickied"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Fetch retrieves hot posts from every configured subreddit, highest score first.
func (r *Reddit) Fetch(ctx context.Context) ([]Headline, error) {
	var all []Headline
	var lastErr error

	for _, subreddit := range r.subreddits {
		headlines, err := r.fetchHot(ctx, subreddit)
		if err != nil {
			slog.Warn("failed to fetch subreddit", "subreddit", subreddit, "error", err)
			lastErr = err
			continue
		}
		all = append(all, headlines...)
	}

	if len(all) == 0 && lastErr != nil {
		return nil, fmt.Errorf("fetch subreddits: %w", lastErr)
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Score > all[j].Score })
	if len(all) > r.maxPosts {
		all = all[:r.maxPosts]
	}

	slog.Debug("fetched Reddit headlines", "count", len(all))
	return all, nil
}

func (r *Reddit) fetchHot(ctx context.Context, subreddit string) ([]Headline, error) {
	url := fmt.Sprintf("%s/r/%s/hot?limit=10", r.baseURL, subreddit)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("reddit API error (status %d): %s", resp.StatusCode, string(body))
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, err
	}

	headlines := make([]Headline, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		post := child.Data
		if post.Over18 || post.Stickied {
			continue
		}

		postURL := ""
		if strings.HasPrefix(post.Permalink, "/") {
			postURL = "https://www.reddit.com" + post.Permalink
		}

		headlines = append(headlines, Headline{
			Source:     r.Name(),
			ExternalID: post.ID,
			Title:      post.Title,
			URL:        postURL,
			Score:      post.Score,
		})
	}

	return headlines, nil
}
