package suggest

import (
	"math/rand/v2"
	"sync"
)

// ContextSource supplies a seed word when the caller gives no context.
type ContextSource interface {
	Word() string
}

// nouns is a small list of concrete common nouns used as fallback context.
var nouns = []string{
	"anchor", "apple", "autumn", "balloon", "bicycle", "bridge", "candle", "canyon",
	"cathedral", "cloud", "compass", "coral", "desert", "doorway", "ember", "feather",
	"festival", "fog", "forest", "fountain", "garden", "glacier", "harbor", "harvest",
	"horizon", "island", "kettle", "kite", "lantern", "library", "lighthouse", "meadow",
	"mirror", "moon", "mountain", "notebook", "ocean", "orchard", "piano", "pebble",
	"postcard", "rain", "river", "rooftop", "saddle", "seashell", "shadow", "snow",
	"sparrow", "staircase", "station", "storm", "street", "sunrise", "teacup", "telescope",
	"thread", "thunder", "train", "tree", "tunnel", "umbrella", "valley", "village",
	"violin", "volcano", "wave", "whale", "willow", "window", "winter", "wolf",
}

// NounSource draws uniformly from a built-in noun list.
type NounSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewNounSource creates a noun source. A nil rng uses a randomly seeded one.
func NewNounSource(rng *rand.Rand) *NounSource {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &NounSource{rng: rng}
}

// Word returns a random noun.
func (n *NounSource) Word() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return nouns[n.rng.IntN(len(nouns))]
}
