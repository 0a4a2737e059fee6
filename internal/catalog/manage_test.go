package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/xstudio/internal/db"
	"github.com/abdulachik/xstudio/internal/suggest"
)

func TestAddPrompt(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		prompt       Prompt
		want         string
		placeholders int // non-zero when the prompt must be rejected
		wantErr      string
	}{
		{"single placeholder", Prompt{Text: "Describe {context} as a postcard."}, "Describe {context} as a postcard.", 0, ""},
		{"appends placeholder", Prompt{Text: "Write a haiku"}, "Write a haiku {context}", 0, ""},
		{"two placeholders", Prompt{Text: "a {context} b {context}"}, "", 2, ""},
		{"bad type", Prompt{Text: "x {context}", Type: "video"}, "", 0, "invalid type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)

			p, err := AddPrompt(ctx, store, tt.prompt)
			switch {
			case tt.placeholders > 0:
				var pe *suggest.PlaceholderError
				require.True(t, errors.As(err, &pe))
				assert.Equal(t, tt.placeholders, pe.Placeholders)
			case tt.wantErr != "":
				assert.ErrorContains(t, err, tt.wantErr)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, p.Text)
				assert.Equal(t, db.PromptTypeText, p.PromptType)
				return
			}

			count, err := store.CountPrompts(ctx)
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	}

	t.Run("creates domain once", func(t *testing.T) {
		store := newTestStore(t)

		a, err := AddPrompt(ctx, store, Prompt{Text: "one {context}", Domain: "Travel"})
		require.NoError(t, err)
		b, err := AddPrompt(ctx, store, Prompt{Text: "two {context}", Domain: "Travel"})
		require.NoError(t, err)

		require.True(t, a.DomainID.Valid)
		assert.Equal(t, a.DomainID, b.DomainID)

		domains, err := store.ListDomains(ctx)
		require.NoError(t, err)
		assert.Len(t, domains, 1)
	})
}

func TestRetire(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	p, err := AddPrompt(ctx, store, Prompt{Text: "old {context}"})
	require.NoError(t, err)
	m, err := store.CreateModel(ctx, db.CreateModelParams{Name: "openrouter/old", TextOutput: true})
	require.NoError(t, err)

	require.NoError(t, RetirePrompt(ctx, store, p.ID))
	require.NoError(t, RetireModel(ctx, store, m.ID))

	prompts, err := store.ListPrompts(ctx, db.ListPromptsParams{})
	require.NoError(t, err)
	assert.Empty(t, prompts)
	models, err := store.ListModelsByCapability(ctx, db.ListModelsByCapabilityParams{})
	require.NoError(t, err)
	assert.Empty(t, models)

	t.Run("twice", func(t *testing.T) {
		assert.ErrorIs(t, RetirePrompt(ctx, store, p.ID), db.ErrNotFound)
		assert.ErrorIs(t, RetireModel(ctx, store, m.ID), db.ErrNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		assert.ErrorIs(t, RetirePrompt(ctx, store, 999), db.ErrNotFound)
		assert.ErrorIs(t, RetireModel(ctx, store, 999), db.ErrNotFound)
	})

	t.Run("seed does not bring retired prompts back", func(t *testing.T) {
		c, err := Default()
		require.NoError(t, err)

		result, err := Seed(ctx, store, c)
		require.NoError(t, err)
		assert.Zero(t, result.Prompts)
	})
}

func TestValidate_Placeholders(t *testing.T) {
	c, err := Parse([]byte("prompts:\n  - text: plain\n"))
	require.NoError(t, err)
	assert.Equal(t, "plain {context}", c.Prompts[0].Text)

	_, err = Parse([]byte("prompts:\n  - text: \"{context} and {context}\"\n"))
	var pe *suggest.PlaceholderError
	assert.True(t, errors.As(err, &pe))
}
