package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abdulachik/xstudio/internal/config"
	"github.com/abdulachik/xstudio/internal/db"
)

var rewriteModel string

var rewriteCmd = &cobra.Command{
	Use:   "rewrite <prompt-id>",
	Short: "Rewrite a prompt from its feedback",
	Long: `Ask a model to improve a prompt using the comments left on its outputs.
The result is stored as a new prompt whose parent is the original.

Examples:
  xstudio rewrite 3 --model 1
  xstudio rewrite 3 --model openrouter/openai/o3-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runRewrite,
}

func init() {
	rewriteCmd.Flags().StringVar(&rewriteModel, "model", "", "Model id or name used for the rewrite (required)")
	rewriteCmd.MarkFlagRequired("model")
	rootCmd.AddCommand(rewriteCmd)
}

func runRewrite(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	promptID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid prompt id %q: %w", args[0], err)
	}

	a, err := openApp(ctx, (*config.Config).ValidateForGeneration)
	if err != nil {
		return err
	}
	defer a.Close()

	modelID, err := resolveModel(ctx, a.Store, rewriteModel)
	if err != nil {
		return err
	}

	svc, err := a.Suggest(ctx)
	if err != nil {
		return err
	}

	res, err := svc.Rewrite(ctx, promptID, modelID)
	if err != nil {
		return fmt.Errorf("rewrite prompt %d: %w", promptID, err)
	}

	fmt.Printf("Created prompt %d from %d:\n\n%s\n", res.PromptID, res.ParentID, res.Text)
	return nil
}

// resolveModel accepts a numeric model id or a model name.
func resolveModel(ctx context.Context, store *db.Store, ref string) (int64, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return id, nil
	}
	m, err := store.GetModelByName(ctx, ref)
	if db.IsNotFound(err) {
		return 0, fmt.Errorf("model %q: %w", ref, db.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("get model %q: %w", ref, err)
	}
	return m.ID, nil
}
