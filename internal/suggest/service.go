package suggest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/abdulachik/xstudio/internal/db"
	"github.com/abdulachik/xstudio/internal/metrics"
)

// Store is everything the service needs from persistence.
type Store interface {
	CandidateStore
	OutputRecorder
	RewriteStore
	GetOutput(ctx context.Context, id int64) (db.Output, error)
	CreateFeedback(ctx context.Context, arg db.CreateFeedbackParams) (db.Feedback, error)
}

// Suggestion is a generated post and the pair that produced it.
type Suggestion struct {
	Text     string
	PromptID int64
	ModelID  int64
	Model    string
	OutputID int64
	Context  string
}

// Service selects, generates, rewrites and records feedback.
type Service struct {
	store     Store
	selector  *Selector
	generator *Generator
	rewriter  *Rewriter
	logger    *slog.Logger
}

// Config holds configuration for the service.
type Config struct {
	Store              Store
	Invoker            Invoker
	Words              ContextSource // Optional: fallback context
	Temperature        float64       // Default: 1.0
	MaxLength          int           // Default: 280
	MaxShortenAttempts int           // Default: 5
	Rand               *rand.Rand    // Optional: deterministic selection
	Logger             *slog.Logger
}

// New creates a new Service.
func New(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		store: cfg.Store,
		selector: NewSelector(SelectorConfig{
			Store:       cfg.Store,
			Temperature: cfg.Temperature,
			Rand:        cfg.Rand,
		}),
		generator: NewGenerator(GeneratorConfig{
			Invoker:            cfg.Invoker,
			Recorder:           cfg.Store,
			Words:              cfg.Words,
			MaxLength:          cfg.MaxLength,
			MaxShortenAttempts: cfg.MaxShortenAttempts,
			Logger:             logger,
		}),
		rewriter: NewRewriter(cfg.Store, cfg.Invoker, logger),
		logger:   logger,
	}
}

// SelectAndGenerate picks a text prompt and model under mode, optionally
// restricted to domainID (0 for any), and generates a post from userContext.
func (s *Service) SelectAndGenerate(ctx context.Context, userContext string, mode Mode, domainID int64) (*Suggestion, error) {
	sel, err := s.selector.Select(ctx, mode, Filter{DomainID: domainID, PromptType: db.PromptTypeText})
	if err != nil {
		metrics.Generations.WithLabelValues(resultLabel(err)).Inc()
		return nil, err
	}

	s.logger.Debug("selected pair", "mode", mode, "prompt_id", sel.Prompt.ID, "model", sel.Model.Name)

	gen, err := s.generator.Generate(ctx, sel.Prompt, sel.Model, userContext)
	metrics.Generations.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		return nil, err
	}

	return &Suggestion{
		Text:     gen.Text,
		PromptID: sel.Prompt.ID,
		ModelID:  sel.Model.ID,
		Model:    sel.Model.Name,
		OutputID: gen.OutputID,
		Context:  gen.Context,
	}, nil
}

// Rewrite improves promptID with modelID and stores the result as a new prompt.
func (s *Service) Rewrite(ctx context.Context, promptID, modelID int64) (*RewriteResult, error) {
	return s.rewriter.Rewrite(ctx, promptID, modelID)
}

// Feedback attaches a score and optional comment to an output.
func (s *Service) Feedback(ctx context.Context, outputID, score int64, comment string) (db.Feedback, error) {
	if _, err := s.store.GetOutput(ctx, outputID); err != nil {
		if db.IsNotFound(err) {
			return db.Feedback{}, fmt.Errorf("output %d: %w", outputID, db.ErrNotFound)
		}
		return db.Feedback{}, fmt.Errorf("get output: %w", err)
	}

	comment = strings.TrimSpace(comment)
	fb, err := s.store.CreateFeedback(ctx, db.CreateFeedbackParams{
		OutputID: outputID,
		Score:    score,
		Comment:  sql.NullString{String: comment, Valid: comment != ""},
	})
	if err != nil {
		return db.Feedback{}, fmt.Errorf("create feedback: %w", err)
	}

	s.logger.Info("feedback recorded", "output_id", outputID, "score", score)
	return fb, nil
}

// resultLabel names the outcome of a generation for metrics.
func resultLabel(err error) string {
	var (
		noCandidates *NoCandidatesError
		invocation   *ModelInvocationError
		empty        *EmptyGenerationError
		exhausted    *ShorteningExhaustedError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &noCandidates):
		return "no_candidates"
	case errors.As(err, &invocation):
		return "model_error"
	case errors.As(err, &empty):
		return "empty"
	case errors.As(err, &exhausted):
		return "too_long"
	default:
		return "error"
	}
}
