package suggest

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/abdulachik/xstudio/internal/db"
)

// Mode is a selection policy over prompts and models.
type Mode string

const (
	ModeRandom   Mode = "random"
	ModeWeighted Mode = "weighted"
	ModeHighest  Mode = "highest"
)

// DefaultTemperature is the softmax temperature used when none is configured.
const DefaultTemperature = 1.0

// ParseMode converts a user-supplied mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeRandom, ModeWeighted, ModeHighest:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q (must be 'random', 'weighted' or 'highest')", s)
	}
}

// CandidateStore is the read-only history the selector draws from.
type CandidateStore interface {
	ListPrompts(ctx context.Context, arg db.ListPromptsParams) ([]db.Prompt, error)
	ListModelsByCapability(ctx context.Context, arg db.ListModelsByCapabilityParams) ([]db.Model, error)
	SumFeedbackByPrompt(ctx context.Context) ([]db.SumFeedbackByPromptRow, error)
	SumFeedbackByModel(ctx context.Context) ([]db.SumFeedbackByModelRow, error)
}

// Filter narrows the candidate pools.
type Filter struct {
	DomainID   int64 // 0 means any domain
	PromptType string
}

func (f Filter) String() string {
	if f.DomainID == 0 {
		return fmt.Sprintf("type=%s", f.PromptType)
	}
	return fmt.Sprintf("type=%s domain=%d", f.PromptType, f.DomainID)
}

// Selection is a chosen prompt/model pair.
type Selection struct {
	Prompt db.Prompt
	Model  db.Model
}

// Selector picks a prompt and a model according to a Mode.
type Selector struct {
	store       CandidateStore
	temperature float64

	mu  sync.Mutex
	rng *rand.Rand
}

// SelectorConfig holds configuration for the selector.
type SelectorConfig struct {
	Store       CandidateStore
	Temperature float64    // Softmax temperature (default: 1.0)
	Rand        *rand.Rand // Optional: deterministic source for tests
}

// NewSelector creates a new selector.
func NewSelector(cfg SelectorConfig) *Selector {
	temp := cfg.Temperature
	if temp <= 0 {
		temp = DefaultTemperature
	}

	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Selector{
		store:       cfg.Store,
		temperature: temp,
		rng:         rng,
	}
}

// Select chooses a prompt and a model independently under mode.
func (s *Selector) Select(ctx context.Context, mode Mode, filter Filter) (*Selection, error) {
	if filter.PromptType == "" {
		filter.PromptType = db.PromptTypeText
	}

	params := db.ListPromptsParams{PromptType: filter.PromptType}
	if filter.DomainID != 0 {
		params.DomainID.Int64 = filter.DomainID
		params.DomainID.Valid = true
	}
	prompts, err := s.store.ListPrompts(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	if len(prompts) == 0 {
		return nil, &NoCandidatesError{Pool: "prompts", Filter: filter.String()}
	}

	caps := db.CapabilityFor(filter.PromptType)
	models, err := s.store.ListModelsByCapability(ctx, db.ListModelsByCapabilityParams{
		TextOutput:  caps.Has(db.CapText),
		ImageOutput: caps.Has(db.CapImage),
	})
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	if len(models) == 0 {
		return nil, &NoCandidatesError{Pool: "models", Filter: "capability=" + caps.String()}
	}

	promptIDs := make([]int64, len(prompts))
	for i, p := range prompts {
		promptIDs[i] = p.ID
	}
	modelIDs := make([]int64, len(models))
	for i, m := range models {
		modelIDs[i] = m.ID
	}

	var promptScores, modelScores []int64
	if mode != ModeRandom {
		promptRows, err := s.store.SumFeedbackByPrompt(ctx)
		if err != nil {
			return nil, fmt.Errorf("sum prompt feedback: %w", err)
		}
		sums := make(map[int64]int64, len(promptRows))
		for _, r := range promptRows {
			sums[r.ID] = r.Score
		}
		promptScores = scoresFor(promptIDs, sums)

		modelRows, err := s.store.SumFeedbackByModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("sum model feedback: %w", err)
		}
		sums = make(map[int64]int64, len(modelRows))
		for _, r := range modelRows {
			sums[r.ID] = r.Score
		}
		modelScores = scoresFor(modelIDs, sums)
	}

	pi, err := s.pick(mode, promptIDs, promptScores)
	if err != nil {
		return nil, err
	}
	mi, err := s.pick(mode, modelIDs, modelScores)
	if err != nil {
		return nil, err
	}

	return &Selection{Prompt: prompts[pi], Model: models[mi]}, nil
}

func (s *Selector) pick(mode Mode, ids, scores []int64) (int, error) {
	switch mode {
	case ModeRandom:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.rng.IntN(len(ids)), nil
	case ModeHighest:
		return Highest(ids, scores), nil
	case ModeWeighted:
		probs := Softmax(scores, s.temperature)
		s.mu.Lock()
		defer s.mu.Unlock()
		return draw(probs, s.rng.Float64()), nil
	default:
		return 0, fmt.Errorf("unknown mode %q", mode)
	}
}

// scoresFor aligns feedback sums with ids; ids without a sum score zero.
func scoresFor(ids []int64, sums map[int64]int64) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = sums[id]
	}
	return out
}

// Highest returns the index of the top score, breaking ties by lowest id.
func Highest(ids, scores []int64) int {
	best := 0
	for i := 1; i < len(ids); i++ {
		if scores[i] > scores[best] || (scores[i] == scores[best] && ids[i] < ids[best]) {
			best = i
		}
	}
	return best
}

// Softmax converts summed feedback into selection probabilities.
// Scores are shifted so the minimum is zero before exponentiation. When the
// spread is too wide for float64 the maximum is used instead, and candidates
// that underflow are given math.SmallestNonzeroFloat64 so none drops to zero.
func Softmax(scores []int64, temperature float64) []float64 {
	if len(scores) == 0 {
		return nil
	}
	if temperature <= 0 {
		temperature = DefaultTemperature
	}

	lo, hi := scores[0], scores[0]
	for _, sc := range scores[1:] {
		lo = min(lo, sc)
		hi = max(hi, sc)
	}

	shift := lo
	// exp overflows float64 past ~709; fall back to shifting by the maximum.
	if float64(hi-lo)/temperature > 700 {
		shift = hi
	}

	probs := make([]float64, len(scores))
	var sum float64
	for i, sc := range scores {
		probs[i] = math.Exp(float64(sc-shift) / temperature)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
		if probs[i] == 0 {
			probs[i] = math.SmallestNonzeroFloat64
		}
	}
	return probs
}

// draw maps a uniform r in [0,1) onto an index of probs.
func draw(probs []float64, r float64) int {
	var acc float64
	for i, p := range probs {
		acc += p
		if r < acc {
			return i
		}
	}
	return len(probs) - 1
}
