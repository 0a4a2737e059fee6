package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abdulachik/xstudio/internal/db"
)

// RewriteStore is the history needed to rewrite a prompt.
type RewriteStore interface {
	GetPrompt(ctx context.Context, id int64) (db.Prompt, error)
	GetModel(ctx context.Context, id int64) (db.Model, error)
	ListPromptFeedback(ctx context.Context, promptID int64) ([]db.ListPromptFeedbackRow, error)
	CreatePrompt(ctx context.Context, arg db.CreatePromptParams) (db.Prompt, error)
}

// RewriteResult is a newly persisted prompt derived from an existing one.
type RewriteResult struct {
	PromptID int64
	ParentID int64
	Text     string
}

// Rewriter asks a model to improve a prompt using commented feedback.
type Rewriter struct {
	store   RewriteStore
	invoker Invoker
	logger  *slog.Logger
}

// NewRewriter creates a new rewriter.
func NewRewriter(store RewriteStore, invoker Invoker, logger *slog.Logger) *Rewriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rewriter{store: store, invoker: invoker, logger: logger}
}

// Rewrite builds a rewrite instruction for promptID, invokes modelID and
// stores the validated result as a child prompt. The original is untouched.
func (r *Rewriter) Rewrite(ctx context.Context, promptID, modelID int64) (*RewriteResult, error) {
	prompt, err := r.store.GetPrompt(ctx, promptID)
	if err != nil {
		return nil, fmt.Errorf("get prompt %d: %w", promptID, err)
	}

	model, err := r.store.GetModel(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("get model %d: %w", modelID, err)
	}

	rows, err := r.store.ListPromptFeedback(ctx, promptID)
	if err != nil {
		return nil, fmt.Errorf("list prompt feedback: %w", err)
	}

	instruction := BuildRewriteInstruction(prompt.Text, rows)

	r.logger.Debug("rewriting prompt", "prompt_id", promptID, "model", model.Name, "feedback_rows", len(rows))
	raw, err := r.invoker.Complete(context.WithoutCancel(ctx), model.Name, instruction)
	if err != nil {
		return nil, &ModelInvocationError{Model: model.Name, State: StateInvoking, Err: err}
	}

	text := StripThinking(raw)
	if n := CountPlaceholders(text); n != 1 {
		return nil, &RewriteValidationError{PromptID: promptID, Placeholders: n, Text: text}
	}

	created, err := r.store.CreatePrompt(ctx, db.CreatePromptParams{
		Text:       text,
		PromptType: prompt.PromptType,
		DomainID:   prompt.DomainID,
		ParentID:   db.NullID(prompt.ID),
	})
	if err != nil {
		return nil, fmt.Errorf("create prompt: %w", err)
	}

	r.logger.Info("prompt rewritten", "prompt_id", created.ID, "parent_id", promptID)
	return &RewriteResult{PromptID: created.ID, ParentID: promptID, Text: created.Text}, nil
}

// BuildRewriteInstruction renders the rewrite instruction for a prompt.
func BuildRewriteInstruction(promptText string, rows []db.ListPromptFeedbackRow) string {
	return fmt.Sprintf(RewritePrompt, promptText, FeedbackTable(rows))
}

// FeedbackTable renders commented outputs as a markdown table, one row per
// output. Several comments on one output are joined.
func FeedbackTable(rows []db.ListPromptFeedbackRow) string {
	var b strings.Builder
	b.WriteString("| Output | Feedback |\n")
	b.WriteString("| --- | --- |\n")

	for i := 0; i < len(rows); {
		j := i
		var comments []string
		for ; j < len(rows) && rows[j].OutputID == rows[i].OutputID; j++ {
			if c := strings.TrimSpace(rows[j].Comment); c != "" {
				comments = append(comments, c)
			}
		}
		if len(comments) > 0 {
			fmt.Fprintf(&b, "| %s | %s |\n", tableCell(rows[i].OutputText), tableCell(strings.Join(comments, "; ")))
		}
		i = j
	}

	return b.String()
}

func tableCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
