package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdulachik/xstudio/internal/config"
)

var seedCatalog string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed domains, models and prompts",
	Long: `Insert the default domains, models and prompts. Existing domains and
models are kept; prompts are only seeded into an empty database.

Examples:
  xstudio seed                         # Built-in catalog
  xstudio seed --catalog catalog.yaml  # Custom catalog`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedCatalog, "catalog", "", "Path to a YAML catalog (default: CATALOG_PATH or built-in)")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx, (*config.Config).Validate)
	if err != nil {
		return err
	}
	defer a.Close()

	if seedCatalog != "" {
		a.Config.CatalogPath = seedCatalog
	}

	res, err := a.Seed(ctx)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	fmt.Printf("Seeded %d domains, %d models, %d prompts\n", res.Domains, res.Models, res.Prompts)
	return nil
}
