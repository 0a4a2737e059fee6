package poster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const (
	xBaseURL = "https://api.x.com/2"

	// PlatformX is the platform name recorded with X posts.
	PlatformX = "x"
)

// XPoster publishes posts through the X API v2.
type XPoster struct {
	baseURL   string
	transport http.RoundTripper
	timeout   time.Duration
}

// XConfig holds configuration for the X poster.
type XConfig struct {
	BaseURL   string            // Default: https://api.x.com/2
	Transport http.RoundTripper // Optional: base transport under the OAuth layer
	Timeout   time.Duration     // Default: 30s
}

// NewXPoster creates a new X poster.
func NewXPoster(cfg XConfig) *XPoster {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = xBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &XPoster{
		baseURL:   baseURL,
		transport: cfg.Transport,
		timeout:   timeout,
	}
}

// Platform returns the platform name.
func (x *XPoster) Platform() string {
	return PlatformX
}

func (x *XPoster) client(ts oauth2.TokenSource) *http.Client {
	return &http.Client{
		Transport: &oauth2.Transport{Source: ts, Base: x.transport},
		Timeout:   x.timeout,
	}
}

type createTweetRequest struct {
	Text string `json:"text"`
}

type createTweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

type userMeResponse struct {
	Data struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"data"`
}

// Post publishes a single post.
func (x *XPoster) Post(ctx context.Context, ts oauth2.TokenSource, content PostContent) (*PostResult, error) {
	if err := Validate(content.Text, TwitterMaxLength); err != nil {
		return nil, err
	}

	body, err := json.Marshal(createTweetRequest{Text: content.Text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.baseURL+"/tweets", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := x.client(ts).Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("create post failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var created createTweetResponse
	if err := json.Unmarshal(respBody, &created); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if created.Data.ID == "" {
		return nil, fmt.Errorf("create post: response has no id")
	}

	return &PostResult{
		PostID:  created.Data.ID,
		PostURL: fmt.Sprintf("https://x.com/i/web/status/%s", created.Data.ID),
	}, nil
}

// ValidateCredentials fetches the authenticated account.
func (x *XPoster) ValidateCredentials(ctx context.Context, ts oauth2.TokenSource) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, x.baseURL+"/users/me", nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := x.client(ts).Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("validate credentials failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var me userMeResponse
	if err := json.Unmarshal(respBody, &me); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	return me.Data.Username, nil
}
