package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abdulachik/xstudio/internal/catalog"
	"github.com/abdulachik/xstudio/internal/config"
	"github.com/abdulachik/xstudio/internal/db"
)

var modelCapabilities []string

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Manage models",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List models with their feedback score",
	RunE:  runModelsList,
}

var modelsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a model",
	Long: `Add a model by routed name. The prefix picks the backend
(openrouter/, anthropic/, gemini/); names without one go to the default backend.

Examples:
  xstudio models add openrouter/openai/o3-mini
  xstudio models add gemini/gemini-2.0-flash
  xstudio models add dall-e-3 --capabilities image`,
	Args: cobra.ExactArgs(1),
	RunE: runModelsAdd,
}

var modelsDeleteCmd = &cobra.Command{
	Use:   "delete <id|name>",
	Short: "Retire a model",
	Long: `Retire a model so it is no longer selected. Its outputs and feedback
are kept and still count toward scores and stats.`,
	Args: cobra.ExactArgs(1),
	RunE: runModelsDelete,
}

func init() {
	modelsAddCmd.Flags().StringSliceVar(&modelCapabilities, "capabilities", []string{"text"}, "Content types the model produces: text, image")
	modelsCmd.AddCommand(modelsListCmd, modelsAddCmd, modelsDeleteCmd)
	rootCmd.AddCommand(modelsCmd)
}

func runModelsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx, (*config.Config).Validate)
	if err != nil {
		return err
	}
	defer a.Close()

	models, err := a.Store.ListModelsByCapability(ctx, db.ListModelsByCapabilityParams{})
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}

	scores, err := a.Store.SumFeedbackByModel(ctx)
	if err != nil {
		return fmt.Errorf("sum feedback: %w", err)
	}
	byID := make(map[int64]int64, len(scores))
	for _, s := range scores {
		byID[s.ID] = s.Score
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCAPABILITIES\tSCORE\tNAME")
	for _, m := range models {
		fmt.Fprintf(w, "%d\t%s\t%+d\t%s\n", m.ID, m.Capabilities(), byID[m.ID], m.Name)
	}
	return w.Flush()
}

func runModelsAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	caps, err := catalog.ParseCapabilities(modelCapabilities)
	if err != nil {
		return err
	}

	a, err := openApp(ctx, (*config.Config).Validate)
	if err != nil {
		return err
	}
	defer a.Close()

	m, err := a.Store.CreateModel(ctx, db.CreateModelParams{
		Name:        args[0],
		TextOutput:  caps.Has(db.CapText),
		ImageOutput: caps.Has(db.CapImage),
	})
	if err != nil {
		return fmt.Errorf("add model: %w", err)
	}

	fmt.Printf("Added model %d: %s (%s)\n", m.ID, m.Name, m.Capabilities())
	return nil
}

func runModelsDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx, (*config.Config).Validate)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := resolveModel(ctx, a.Store, args[0])
	if err != nil {
		return err
	}

	if err := catalog.RetireModel(ctx, a.Store, id); err != nil {
		return err
	}

	fmt.Printf("Retired model %d\n", id)
	return nil
}
