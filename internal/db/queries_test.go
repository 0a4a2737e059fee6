package db

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCatalog(t *testing.T, store *Store) (Domain, Model, Model) {
	t.Helper()
	ctx := context.Background()

	domain, err := store.CreateDomain(ctx, "General")
	require.NoError(t, err)

	textModel, err := store.CreateModel(ctx, CreateModelParams{Name: "openrouter/text", TextOutput: true})
	require.NoError(t, err)

	imageModel, err := store.CreateModel(ctx, CreateModelParams{Name: "dall-e-3", ImageOutput: true})
	require.NoError(t, err)

	return domain, textModel, imageModel
}

func TestQueries_ListModelsByCapability(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	_, textModel, imageModel := seedCatalog(t, store)

	t.Run("text only", func(t *testing.T) {
		models, err := store.ListModelsByCapability(ctx, ListModelsByCapabilityParams{TextOutput: true})
		require.NoError(t, err)
		require.Len(t, models, 1)
		assert.Equal(t, textModel.ID, models[0].ID)
		assert.True(t, models[0].Capabilities().Has(CapText))
	})

	t.Run("image only", func(t *testing.T) {
		models, err := store.ListModelsByCapability(ctx, ListModelsByCapabilityParams{ImageOutput: true})
		require.NoError(t, err)
		require.Len(t, models, 1)
		assert.Equal(t, imageModel.ID, models[0].ID)
	})

	t.Run("no filter", func(t *testing.T) {
		models, err := store.ListModelsByCapability(ctx, ListModelsByCapabilityParams{})
		require.NoError(t, err)
		assert.Len(t, models, 2)
	})
}

func TestQueries_ListPrompts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	domain, _, _ := seedCatalog(t, store)

	other, err := store.CreateDomain(ctx, "Other")
	require.NoError(t, err)

	_, err = store.CreatePrompt(ctx, CreatePromptParams{
		Text: "text {context}", PromptType: PromptTypeText,
		DomainID: sql.NullInt64{Int64: domain.ID, Valid: true},
	})
	require.NoError(t, err)
	_, err = store.CreatePrompt(ctx, CreatePromptParams{
		Text: "image {context}", PromptType: PromptTypeImage,
		DomainID: sql.NullInt64{Int64: domain.ID, Valid: true},
	})
	require.NoError(t, err)
	_, err = store.CreatePrompt(ctx, CreatePromptParams{
		Text: "other {context}", PromptType: PromptTypeText,
		DomainID: sql.NullInt64{Int64: other.ID, Valid: true},
	})
	require.NoError(t, err)

	tests := []struct {
		name  string
		arg   ListPromptsParams
		count int
	}{
		{"all", ListPromptsParams{}, 3},
		{"text", ListPromptsParams{PromptType: PromptTypeText}, 2},
		{"text in domain", ListPromptsParams{PromptType: PromptTypeText, DomainID: sql.NullInt64{Int64: domain.ID, Valid: true}}, 1},
		{"missing domain", ListPromptsParams{DomainID: sql.NullInt64{Int64: 999, Valid: true}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompts, err := store.ListPrompts(ctx, tt.arg)
			require.NoError(t, err)
			assert.Len(t, prompts, tt.count)
		})
	}
}

func TestQueries_SumFeedback(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	_, textModel, _ := seedCatalog(t, store)

	p1, err := store.CreatePrompt(ctx, CreatePromptParams{Text: "a {context}", PromptType: PromptTypeText})
	require.NoError(t, err)
	p2, err := store.CreatePrompt(ctx, CreatePromptParams{Text: "b {context}", PromptType: PromptTypeText})
	require.NoError(t, err)

	out, err := store.CreateOutput(ctx, CreateOutputParams{Text: "hello", PromptID: p1.ID, ModelID: textModel.ID})
	require.NoError(t, err)
	for _, score := range []int64{1, 1, -1} {
		_, err := store.CreateFeedback(ctx, CreateFeedbackParams{OutputID: out.ID, Score: score})
		require.NoError(t, err)
	}
	// An output with no feedback must not turn the sum into NULL.
	_, err = store.CreateOutput(ctx, CreateOutputParams{Text: "silent", PromptID: p1.ID, ModelID: textModel.ID})
	require.NoError(t, err)

	byPrompt, err := store.SumFeedbackByPrompt(ctx)
	require.NoError(t, err)
	assert.Equal(t, []SumFeedbackByPromptRow{
		{ID: p1.ID, Score: 1},
		{ID: p2.ID, Score: 0},
	}, byPrompt)

	byModel, err := store.SumFeedbackByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 2)
	assert.Equal(t, int64(1), byModel[0].Score)
	assert.Equal(t, int64(0), byModel[1].Score)
}

func TestQueries_Retire(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	_, textModel, _ := seedCatalog(t, store)

	kept, err := store.CreatePrompt(ctx, CreatePromptParams{Text: "kept {context}", PromptType: PromptTypeText})
	require.NoError(t, err)
	retired, err := store.CreatePrompt(ctx, CreatePromptParams{Text: "retired {context}", PromptType: PromptTypeText})
	require.NoError(t, err)

	out, err := store.CreateOutput(ctx, CreateOutputParams{Text: "loved", PromptID: retired.ID, ModelID: textModel.ID})
	require.NoError(t, err)
	_, err = store.CreateFeedback(ctx, CreateFeedbackParams{OutputID: out.ID, Score: 3})
	require.NoError(t, err)

	n, err := store.RetirePrompt(ctx, retired.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.RetirePrompt(ctx, retired.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	prompts, err := store.ListPrompts(ctx, ListPromptsParams{PromptType: PromptTypeText})
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Equal(t, kept.ID, prompts[0].ID)

	// History stays queryable.
	byPrompt, err := store.SumFeedbackByPrompt(ctx)
	require.NoError(t, err)
	assert.Contains(t, byPrompt, SumFeedbackByPromptRow{ID: retired.ID, Score: 3})

	got, err := store.GetPrompt(ctx, retired.ID)
	require.NoError(t, err)
	assert.Equal(t, retired.Text, got.Text)

	count, err := store.CountPrompts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	n, err = store.RetireModel(ctx, textModel.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	models, err := store.ListModelsByCapability(ctx, ListModelsByCapabilityParams{TextOutput: true})
	require.NoError(t, err)
	assert.Empty(t, models)

	byModel, err := store.SumFeedbackByModel(ctx)
	require.NoError(t, err)
	assert.Contains(t, byModel, SumFeedbackByModelRow{ID: textModel.ID, Score: 3})
}

func TestQueries_ListPromptFeedback(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	_, textModel, _ := seedCatalog(t, store)

	prompt, err := store.CreatePrompt(ctx, CreatePromptParams{Text: "a {context}", PromptType: PromptTypeText})
	require.NoError(t, err)

	commented, err := store.CreateOutput(ctx, CreateOutputParams{Text: "formal text", PromptID: prompt.ID, ModelID: textModel.ID})
	require.NoError(t, err)
	_, err = store.CreateFeedback(ctx, CreateFeedbackParams{
		OutputID: commented.ID, Score: -1,
		Comment: sql.NullString{String: "too formal", Valid: true},
	})
	require.NoError(t, err)

	plain, err := store.CreateOutput(ctx, CreateOutputParams{Text: "plain", PromptID: prompt.ID, ModelID: textModel.ID})
	require.NoError(t, err)
	_, err = store.CreateFeedback(ctx, CreateFeedbackParams{OutputID: plain.ID, Score: 1})
	require.NoError(t, err)
	_, err = store.CreateFeedback(ctx, CreateFeedbackParams{
		OutputID: plain.ID, Score: 1,
		Comment: sql.NullString{String: "   ", Valid: true},
	})
	require.NoError(t, err)

	rows, err := store.ListPromptFeedback(ctx, prompt.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, ListPromptFeedbackRow{OutputID: commented.ID, OutputText: "formal text", Comment: "too formal"}, rows[0])
}

func TestStore_RecordRejectedOutput(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	_, textModel, _ := seedCatalog(t, store)

	prompt, err := store.CreatePrompt(ctx, CreatePromptParams{Text: "a {context}", PromptType: PromptTypeText})
	require.NoError(t, err)

	out, err := store.RecordRejectedOutput(ctx, CreateOutputParams{
		Text: "way too long", PromptID: prompt.ID, ModelID: textModel.ID,
	}, -1, "exceeded length")
	require.NoError(t, err)

	feedback, err := store.ListFeedbackForOutput(ctx, out.ID)
	require.NoError(t, err)
	require.Len(t, feedback, 1)
	assert.Equal(t, int64(-1), feedback[0].Score)
	assert.Equal(t, "exceeded length", feedback[0].Comment.String)

	t.Run("rolls back on bad reference", func(t *testing.T) {
		before, err := store.CountOutputs(ctx)
		require.NoError(t, err)

		_, err = store.RecordRejectedOutput(ctx, CreateOutputParams{
			Text: "orphan", PromptID: 9999, ModelID: textModel.ID,
		}, -1, "x")
		assert.Error(t, err)

		after, err := store.CountOutputs(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestQueries_CountPostsToday(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreatePost(ctx, CreatePostParams{Text: "hi", Platform: "x", PlatformPostID: "1"})
	require.NoError(t, err)
	_, err = store.CreatePost(ctx, CreatePostParams{Text: "hi", Platform: "other", PlatformPostID: "2"})
	require.NoError(t, err)

	count, err := store.CountPostsToday(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCapability(t *testing.T) {
	assert.Equal(t, "text", CapText.String())
	assert.Equal(t, "text+image", (CapText | CapImage).String())
	assert.Equal(t, "none", Capability(0).String())
	assert.Equal(t, CapImage, CapabilityFor(PromptTypeImage))
	assert.Equal(t, CapText, CapabilityFor(PromptTypeText))
	assert.False(t, Model{TextOutput: true}.Capabilities().Has(CapImage))
}
