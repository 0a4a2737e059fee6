package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abdulachik/xstudio/internal/db"
	"github.com/abdulachik/xstudio/internal/suggest"
)

// ensureDomain returns the id of the named domain, creating it if missing.
func ensureDomain(ctx context.Context, q *db.Queries, name string) (int64, bool, error) {
	d, err := q.GetDomainByName(ctx, name)
	if err == nil {
		return d.ID, false, nil
	}
	if !db.IsNotFound(err) {
		return 0, false, fmt.Errorf("get domain %s: %w", name, err)
	}

	d, err = q.CreateDomain(ctx, name)
	if err != nil {
		return 0, false, fmt.Errorf("create domain %s: %w", name, err)
	}
	return d.ID, true, nil
}

// AddPrompt stores an operator-supplied prompt. A missing placeholder is
// appended; more than one is a *suggest.PlaceholderError. A named domain is
// created if it does not exist yet.
func AddPrompt(ctx context.Context, store *db.Store, p Prompt) (db.Prompt, error) {
	if p.Type == "" {
		p.Type = db.PromptTypeText
	}
	if p.Type != db.PromptTypeText && p.Type != db.PromptTypeImage {
		return db.Prompt{}, fmt.Errorf("invalid type %q (must be 'text' or 'image')", p.Type)
	}

	text, err := suggest.EnsurePlaceholder(p.Text)
	if err != nil {
		return db.Prompt{}, err
	}

	arg := db.CreatePromptParams{Text: text, PromptType: p.Type}

	var created db.Prompt
	err = store.ExecTx(ctx, func(q *db.Queries) error {
		if p.Domain != "" {
			id, _, err := ensureDomain(ctx, q, p.Domain)
			if err != nil {
				return err
			}
			arg.DomainID = db.NullID(id)
		}

		var err error
		created, err = q.CreatePrompt(ctx, arg)
		return err
	})
	if err != nil {
		return db.Prompt{}, fmt.Errorf("add prompt: %w", err)
	}

	slog.Info("prompt added", "prompt_id", created.ID, "type", created.PromptType)
	return created, nil
}

// RetirePrompt removes a prompt from selection. Outputs and feedback that
// reference it stay in place. Unknown or already retired ids give
// db.ErrNotFound.
func RetirePrompt(ctx context.Context, store *db.Store, id int64) error {
	n, err := store.Queries.RetirePrompt(ctx, id)
	if err != nil {
		return fmt.Errorf("retire prompt %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("prompt %d: %w", id, db.ErrNotFound)
	}

	slog.Info("prompt retired", "prompt_id", id)
	return nil
}

// RetireModel removes a model from selection, keeping its history.
func RetireModel(ctx context.Context, store *db.Store, id int64) error {
	n, err := store.Queries.RetireModel(ctx, id)
	if err != nil {
		return fmt.Errorf("retire model %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("model %d: %w", id, db.ErrNotFound)
	}

	slog.Info("model retired", "model_id", id)
	return nil
}
