package poster

import (
	"context"

	"golang.org/x/oauth2"
)

// PostContent represents the content to be posted.
type PostContent struct {
	Text string
}

// PostResult represents the result of a post.
type PostResult struct {
	PostID  string
	PostURL string
}

// Poster is the interface for posting to social media platforms.
// Credentials are passed per call; posters hold no session state.
type Poster interface {
	// Platform returns the name of the platform.
	Platform() string

	// Post publishes content to the platform.
	Post(ctx context.Context, ts oauth2.TokenSource, content PostContent) (*PostResult, error)

	// ValidateCredentials checks the credentials and returns the account name.
	ValidateCredentials(ctx context.Context, ts oauth2.TokenSource) (string, error)
}
