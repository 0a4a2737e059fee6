// Package topics gathers trending headlines used as generation context.
package topics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Headline is a trending item from any source.
type Headline struct {
	Source     string
	ExternalID string
	Title      string
	URL        string
	Score      int
}

// Source is a place headlines come from.
type Source interface {
	// Name returns the name of this source.
	Name() string

	// Fetch retrieves current headlines.
	Fetch(ctx context.Context) ([]Headline, error)
}

// Hash generates a stable key for a headline (used for deduplication).
func Hash(h Headline) string {
	data := fmt.Sprintf("%s:%s:%s", h.Source, h.ExternalID, h.Title)
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:16])
}
