package suggest

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/xstudio/internal/db"
)

func TestService_SelectAndGenerate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	domain, err := store.CreateDomain(ctx, "General")
	require.NoError(t, err)
	model, err := store.CreateModel(ctx, db.CreateModelParams{Name: "openrouter/test", TextOutput: true})
	require.NoError(t, err)
	_, err = store.CreateModel(ctx, db.CreateModelParams{Name: "dall-e-3", ImageOutput: true})
	require.NoError(t, err)
	prompt, err := store.CreatePrompt(ctx, db.CreatePromptParams{
		Text: "Write about {context}", PromptType: db.PromptTypeText, DomainID: db.NullID(domain.ID),
	})
	require.NoError(t, err)

	svc := New(Config{
		Store:   store,
		Invoker: replyWith("A quiet harbor at dawn."),
		Words:   fixedWord("harbor"),
		Rand:    rand.New(rand.NewPCG(5, 6)),
	})

	for _, mode := range []Mode{ModeRandom, ModeWeighted, ModeHighest} {
		t.Run(string(mode), func(t *testing.T) {
			got, err := svc.SelectAndGenerate(ctx, "", mode, domain.ID)
			require.NoError(t, err)

			want := &Suggestion{
				Text:     "A quiet harbor at dawn.",
				PromptID: prompt.ID,
				ModelID:  model.ID,
				Model:    "openrouter/test",
				Context:  "harbor",
			}
			if diff := cmp.Diff(want, got, cmpIgnoreOutputID); diff != "" {
				t.Errorf("suggestion mismatch (-want +got):\n%s", diff)
			}

			out, err := store.GetOutput(ctx, got.OutputID)
			require.NoError(t, err)
			assert.Equal(t, got.Text, out.Text)
		})
	}

	t.Run("unknown domain", func(t *testing.T) {
		_, err := svc.SelectAndGenerate(ctx, "tea", ModeWeighted, domain.ID+100)
		var nc *NoCandidatesError
		assert.True(t, errors.As(err, &nc))
	})
}

var cmpIgnoreOutputID = cmp.FilterPath(func(p cmp.Path) bool {
	return p.Last().String() == ".OutputID"
}, cmp.Ignore())

func TestService_Feedback(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	model, err := store.CreateModel(ctx, db.CreateModelParams{Name: "openrouter/test", TextOutput: true})
	require.NoError(t, err)
	prompt, err := store.CreatePrompt(ctx, db.CreatePromptParams{Text: "a {context}", PromptType: db.PromptTypeText})
	require.NoError(t, err)
	out, err := store.CreateOutput(ctx, db.CreateOutputParams{Text: "hi", PromptID: prompt.ID, ModelID: model.ID})
	require.NoError(t, err)

	svc := New(Config{Store: store, Invoker: replyWith("unused")})

	fb, err := svc.Feedback(ctx, out.ID, 1, "  lovely  ")
	require.NoError(t, err)
	assert.Equal(t, "lovely", fb.Comment.String)

	fb, err = svc.Feedback(ctx, out.ID, -1, "")
	require.NoError(t, err)
	assert.False(t, fb.Comment.Valid)

	sums, err := store.SumFeedbackByPrompt(ctx)
	require.NoError(t, err)
	require.Len(t, sums, 1)
	assert.Equal(t, int64(0), sums[0].Score)

	_, err = svc.Feedback(ctx, out.ID+50, 1, "")
	assert.True(t, db.IsNotFound(err))
}

func TestService_HighestFollowsFeedback(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	model, err := store.CreateModel(ctx, db.CreateModelParams{Name: "openrouter/test", TextOutput: true})
	require.NoError(t, err)
	first, err := store.CreatePrompt(ctx, db.CreatePromptParams{Text: "first {context}", PromptType: db.PromptTypeText})
	require.NoError(t, err)
	second, err := store.CreatePrompt(ctx, db.CreatePromptParams{Text: "second {context}", PromptType: db.PromptTypeText})
	require.NoError(t, err)

	svc := New(Config{Store: store, Invoker: replyWith("post")})

	got, err := svc.SelectAndGenerate(ctx, "x", ModeHighest, 0)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.PromptID, "ties go to the lowest id")

	out, err := store.CreateOutput(ctx, db.CreateOutputParams{Text: "liked", PromptID: second.ID, ModelID: model.ID})
	require.NoError(t, err)
	_, err = svc.Feedback(ctx, out.ID, 1, "")
	require.NoError(t, err)

	got, err = svc.SelectAndGenerate(ctx, "x", ModeHighest, 0)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.PromptID)
}

func TestService_RetiredPromptNeverSelected(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	model, err := store.CreateModel(ctx, db.CreateModelParams{Name: "openrouter/test", TextOutput: true})
	require.NoError(t, err)
	active, err := store.CreatePrompt(ctx, db.CreatePromptParams{Text: "active {context}", PromptType: db.PromptTypeText})
	require.NoError(t, err)
	retired, err := store.CreatePrompt(ctx, db.CreatePromptParams{Text: "retired {context}", PromptType: db.PromptTypeText})
	require.NoError(t, err)

	// The retired prompt is the best scoring one.
	out, err := store.CreateOutput(ctx, db.CreateOutputParams{Text: "liked", PromptID: retired.ID, ModelID: model.ID})
	require.NoError(t, err)
	_, err = store.CreateFeedback(ctx, db.CreateFeedbackParams{OutputID: out.ID, Score: 5})
	require.NoError(t, err)

	_, err = store.RetirePrompt(ctx, retired.ID)
	require.NoError(t, err)

	svc := New(Config{Store: store, Invoker: replyWith("post"), Rand: rand.New(rand.NewPCG(3, 4))})

	for _, mode := range []Mode{ModeRandom, ModeWeighted, ModeHighest} {
		t.Run(string(mode), func(t *testing.T) {
			for i := 0; i < 20; i++ {
				got, err := svc.SelectAndGenerate(ctx, "x", mode, 0)
				require.NoError(t, err)
				assert.Equal(t, active.ID, got.PromptID)
			}
		})
	}

	sums, err := store.SumFeedbackByPrompt(ctx)
	require.NoError(t, err)
	assert.Contains(t, sums, db.SumFeedbackByPromptRow{ID: retired.ID, Score: 5})

	t.Run("all retired", func(t *testing.T) {
		_, err := store.RetirePrompt(ctx, active.ID)
		require.NoError(t, err)

		_, err = svc.SelectAndGenerate(ctx, "x", ModeWeighted, 0)
		var nc *NoCandidatesError
		assert.True(t, errors.As(err, &nc))
	})
}
