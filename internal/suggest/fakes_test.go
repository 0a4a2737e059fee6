package suggest

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abdulachik/xstudio/internal/db"
)

// fakeStore is an in-memory CandidateStore and OutputRecorder.
type fakeStore struct {
	prompts      []db.Prompt
	models       []db.Model
	promptScores map[int64]int64
	modelScores  map[int64]int64

	mu       sync.Mutex
	nextID   int64
	outputs  []db.Output
	rejected []rejection
}

type rejection struct {
	Output  db.Output
	Score   int64
	Comment string
}

func (f *fakeStore) ListPrompts(_ context.Context, arg db.ListPromptsParams) ([]db.Prompt, error) {
	var out []db.Prompt
	for _, p := range f.prompts {
		if arg.PromptType != "" && p.PromptType != arg.PromptType {
			continue
		}
		if arg.DomainID.Valid && p.DomainID != arg.DomainID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) ListModelsByCapability(_ context.Context, arg db.ListModelsByCapabilityParams) ([]db.Model, error) {
	var out []db.Model
	for _, m := range f.models {
		if arg.TextOutput && !m.TextOutput {
			continue
		}
		if arg.ImageOutput && !m.ImageOutput {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeStore) SumFeedbackByPrompt(context.Context) ([]db.SumFeedbackByPromptRow, error) {
	var rows []db.SumFeedbackByPromptRow
	for id, score := range f.promptScores {
		rows = append(rows, db.SumFeedbackByPromptRow{ID: id, Score: score})
	}
	return rows, nil
}

func (f *fakeStore) SumFeedbackByModel(context.Context) ([]db.SumFeedbackByModelRow, error) {
	var rows []db.SumFeedbackByModelRow
	for id, score := range f.modelScores {
		rows = append(rows, db.SumFeedbackByModelRow{ID: id, Score: score})
	}
	return rows, nil
}

func (f *fakeStore) CreateOutput(_ context.Context, arg db.CreateOutputParams) (db.Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	out := db.Output{ID: f.nextID, Text: arg.Text, PromptID: arg.PromptID, ModelID: arg.ModelID}
	f.outputs = append(f.outputs, out)
	return out, nil
}

func (f *fakeStore) RecordRejectedOutput(ctx context.Context, arg db.CreateOutputParams, score int64, comment string) (db.Output, error) {
	out, err := f.CreateOutput(ctx, arg)
	if err != nil {
		return db.Output{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejected = append(f.rejected, rejection{Output: out, Score: score, Comment: comment})
	return out, nil
}

// accepted returns outputs that were not rejected.
func (f *fakeStore) accepted() []db.Output {
	f.mu.Lock()
	defer f.mu.Unlock()
	bad := make(map[int64]bool, len(f.rejected))
	for _, r := range f.rejected {
		bad[r.Output.ID] = true
	}
	var out []db.Output
	for _, o := range f.outputs {
		if !bad[o.ID] {
			out = append(out, o)
		}
	}
	return out
}

// scriptedInvoker answers instructions with a function and records calls.
type scriptedInvoker struct {
	mu     sync.Mutex
	calls  []string
	models []string
	reply  func(ctx context.Context, instruction string) (string, error)
}

func (s *scriptedInvoker) Complete(ctx context.Context, model, instruction string) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, instruction)
	s.models = append(s.models, model)
	s.mu.Unlock()
	return s.reply(ctx, instruction)
}

func replyWith(text string) *scriptedInvoker {
	return &scriptedInvoker{reply: func(context.Context, string) (string, error) { return text, nil }}
}

type fixedWord string

func (w fixedWord) Word() string { return string(w) }

func isShorten(instruction string) bool {
	return strings.HasPrefix(instruction, "Abbreviate this draft")
}

func isExtract(instruction string) bool {
	return strings.HasPrefix(instruction, "The following response was supposed")
}

func textPrompt(id int64) db.Prompt {
	return db.Prompt{ID: id, Text: fmt.Sprintf("prompt %d about {context}", id), PromptType: db.PromptTypeText}
}

func textModel(id int64) db.Model {
	return db.Model{ID: id, Name: fmt.Sprintf("openrouter/model-%d", id), TextOutput: true}
}

func newTestStore(t *testing.T) *db.Store {
	t.Helper()
	ctx := context.Background()

	store, err := db.NewStore(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))

	t.Cleanup(func() { store.Close() })
	return store
}

func nullDomain(id int64) sql.NullInt64 {
	return db.NullID(id)
}
