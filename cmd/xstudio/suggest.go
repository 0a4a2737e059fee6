package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdulachik/xstudio/internal/config"
	"github.com/abdulachik/xstudio/internal/suggest"
)

var (
	suggestContext string
	suggestMode    string
	suggestDomain  int64
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Generate a post suggestion",
	Long: `Select a prompt and a model and generate a post of at most 280 characters.
Without --context a random word is used as the subject.

Examples:
  xstudio suggest
  xstudio suggest --context "first snow in the city" --mode highest
  xstudio suggest --domain 2 --mode random`,
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().StringVar(&suggestContext, "context", "", "Subject for the post")
	suggestCmd.Flags().StringVar(&suggestMode, "mode", "", "Selection mode: random, weighted or highest (default: DEFAULT_MODE)")
	suggestCmd.Flags().Int64Var(&suggestDomain, "domain", 0, "Restrict prompts to a domain id (default: DEFAULT_DOMAIN, else any)")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx, (*config.Config).ValidateForGeneration)
	if err != nil {
		return err
	}
	defer a.Close()

	modeName := suggestMode
	if modeName == "" {
		modeName = a.Config.DefaultMode
	}
	mode, err := suggest.ParseMode(modeName)
	if err != nil {
		return err
	}

	domainID := suggestDomain
	if !cmd.Flags().Changed("domain") {
		if domainID, err = a.DefaultDomainID(ctx); err != nil {
			return err
		}
	}

	svc, err := a.Suggest(ctx)
	if err != nil {
		return err
	}

	sug, err := svc.SelectAndGenerate(ctx, suggestContext, mode, domainID)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	fmt.Println(sug.Text)
	fmt.Println()
	fmt.Printf("Context: %s\n", sug.Context)
	fmt.Printf("Prompt:  %d\n", sug.PromptID)
	fmt.Printf("Model:   %s (%d)\n", sug.Model, sug.ModelID)
	fmt.Printf("Output:  %d\n", sug.OutputID)
	return nil
}
