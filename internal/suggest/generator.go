package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/abdulachik/xstudio/internal/db"
)

// State is a step of the generation pipeline.
type State int

const (
	StateFormatting State = iota
	StateInvoking
	StateStripping
	StateExtractingFallback
	StateQuoteHeuristic
	StateEmptyFail
	StateLengthCheck
	StateShortening
	StateShorteningExhausted
	StateDone
)

var stateNames = [...]string{
	StateFormatting:          "formatting",
	StateInvoking:            "invoking",
	StateStripping:           "stripping",
	StateExtractingFallback:  "extracting_fallback",
	StateQuoteHeuristic:      "quote_heuristic",
	StateEmptyFail:           "empty_fail",
	StateLengthCheck:         "length_check",
	StateShortening:          "shortening",
	StateShorteningExhausted: "shortening_exhausted",
	StateDone:                "done",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether the pipeline stops in this state.
func (s State) Terminal() bool {
	return s == StateDone || s == StateEmptyFail || s == StateShorteningExhausted
}

const (
	// DefaultMaxLength is the X post limit in characters.
	DefaultMaxLength = 280
	// DefaultMaxShortenAttempts bounds shorten requests per generation.
	DefaultMaxShortenAttempts = 5
)

// Invoker calls a named model with a single user instruction.
type Invoker interface {
	Complete(ctx context.Context, model, instruction string) (string, error)
}

// OutputRecorder persists generation attempts.
type OutputRecorder interface {
	CreateOutput(ctx context.Context, arg db.CreateOutputParams) (db.Output, error)
	RecordRejectedOutput(ctx context.Context, out db.CreateOutputParams, score int64, comment string) (db.Output, error)
}

// Generation is the accepted result of one pipeline run.
type Generation struct {
	Text     string
	OutputID int64
	Context  string
	Shortens int
}

// Generator turns a prompt and model into a post that fits the length limit.
type Generator struct {
	invoker            Invoker
	recorder           OutputRecorder
	words              ContextSource
	maxLength          int
	maxShortenAttempts int
	logger             *slog.Logger
}

// GeneratorConfig holds configuration for the generator.
type GeneratorConfig struct {
	Invoker            Invoker
	Recorder           OutputRecorder
	Words              ContextSource // Optional: fallback context when none is given
	MaxLength          int           // Default: 280
	MaxShortenAttempts int           // Default: 5
	Logger             *slog.Logger
}

// NewGenerator creates a new generator.
func NewGenerator(cfg GeneratorConfig) *Generator {
	maxLen := cfg.MaxLength
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}

	attempts := cfg.MaxShortenAttempts
	if attempts <= 0 {
		attempts = DefaultMaxShortenAttempts
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Generator{
		invoker:            cfg.Invoker,
		recorder:           cfg.Recorder,
		words:              cfg.Words,
		maxLength:          maxLen,
		maxShortenAttempts: attempts,
		logger:             logger,
	}
}

// run carries per-request state through the pipeline.
type run struct {
	g      *Generator
	ctx    context.Context
	prompt db.Prompt
	model  db.Model
	state  State
	logger *slog.Logger
}

func (r *run) enter(s State, args ...any) {
	r.state = s
	r.logger.Debug("generation state", append([]any{"state", s.String()}, args...)...)
}

func (r *run) invoke(instruction string) (string, error) {
	// Model calls are not cancelled when the caller goes away.
	text, err := r.g.invoker.Complete(context.WithoutCancel(r.ctx), r.model.Name, instruction)
	if err != nil {
		return "", &ModelInvocationError{Model: r.model.Name, State: r.state, Err: err}
	}
	return text, nil
}

func (r *run) reject(text, comment string) (int64, error) {
	out, err := r.g.recorder.RecordRejectedOutput(r.ctx, db.CreateOutputParams{
		Text:     text,
		PromptID: r.prompt.ID,
		ModelID:  r.model.ID,
	}, -1, comment)
	if err != nil {
		return 0, fmt.Errorf("record rejected output: %w", err)
	}
	r.logger.Info("output rejected", "output_id", out.ID, "reason", comment)
	return out.ID, nil
}

// Generate formats prompt with userContext, invokes model and shapes the
// response into a single post. Every rejected attempt is recorded with
// negative feedback before the pipeline moves on or fails.
func (g *Generator) Generate(ctx context.Context, prompt db.Prompt, model db.Model, userContext string) (*Generation, error) {
	r := &run{
		g:      g,
		ctx:    ctx,
		prompt: prompt,
		model:  model,
		logger: g.logger.With("request_id", uuid.NewString(), "prompt_id", prompt.ID, "model", model.Name),
	}

	r.enter(StateFormatting)
	if userContext == "" && g.words != nil {
		userContext = g.words.Word()
	}
	formatted := FormatPrompt(prompt.Text, userContext)

	r.enter(StateInvoking, "context", userContext)
	raw, err := r.invoke(fmt.Sprintf(GeneratePrompt, formatted))
	if err != nil {
		return nil, err
	}

	r.enter(StateStripping, "raw_length", utf8.RuneCountInString(raw))
	text := StripThinking(raw)

	if text == "" {
		r.enter(StateExtractingFallback)
		extracted, err := r.invoke(fmt.Sprintf(ExtractPrompt, raw))
		if err != nil {
			return nil, err
		}
		text = StripThinking(extracted)
	}

	if text == "" {
		r.enter(StateQuoteHeuristic)
		text = FirstQuoted(raw)
	}

	if text == "" {
		r.enter(StateEmptyFail)
		outputID, err := r.reject(raw, "model returned no usable text")
		if err != nil {
			return nil, err
		}
		return nil, &EmptyGenerationError{
			PromptID: prompt.ID,
			ModelID:  model.ID,
			OutputID: outputID,
			State:    r.state,
		}
	}

	shortens := 0
	for {
		r.enter(StateLengthCheck, "length", utf8.RuneCountInString(text))
		n := utf8.RuneCountInString(text)
		if n <= g.maxLength {
			break
		}

		outputID, err := r.reject(text, fmt.Sprintf("exceeded %d characters (%d)", g.maxLength, n))
		if err != nil {
			return nil, err
		}

		// Keep asking until a non-empty draft comes back or the budget is spent.
		var shortened string
		for shortened == "" {
			if shortens >= g.maxShortenAttempts {
				r.enter(StateShorteningExhausted)
				return nil, &ShorteningExhaustedError{
					Attempts: shortens,
					Length:   n,
					Limit:    g.maxLength,
					OutputID: outputID,
					State:    r.state,
				}
			}
			shortens++

			r.enter(StateShortening, "attempt", shortens)
			resp, err := r.invoke(fmt.Sprintf(ShortenPrompt, g.maxLength, text))
			if err != nil {
				return nil, err
			}
			shortened = StripThinking(resp)
			if shortened == "" {
				if _, err := r.reject(resp, "shortening returned no usable text"); err != nil {
					return nil, err
				}
			}
		}
		text = shortened
	}

	out, err := g.recorder.CreateOutput(ctx, db.CreateOutputParams{
		Text:     text,
		PromptID: prompt.ID,
		ModelID:  model.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}

	r.enter(StateDone, "output_id", out.ID, "shortens", shortens)
	return &Generation{
		Text:     text,
		OutputID: out.ID,
		Context:  userContext,
		Shortens: shortens,
	}, nil
}
