package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abdulachik/xstudio/internal/catalog"
	"github.com/abdulachik/xstudio/internal/config"
	"github.com/abdulachik/xstudio/internal/db"
)

var (
	promptListType string
	promptType     string
	promptDomain   string
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Manage prompts",
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List prompts with their feedback score",
	RunE:  runPromptsList,
}

var promptsAddCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Add a prompt",
	Long: `Add a prompt. If the text has no {context} placeholder one is appended;
text with more than one placeholder is rejected.

Examples:
  xstudio prompts add "Write a wistful post about {context}."
  xstudio prompts add --domain Travel "Describe {context} as a postcard."`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPromptsAdd,
}

var promptsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Retire a prompt",
	Long: `Retire a prompt so it is no longer selected. Its outputs and feedback
are kept and still count toward scores and stats.`,
	Args: cobra.ExactArgs(1),
	RunE: runPromptsDelete,
}

func init() {
	promptsListCmd.Flags().StringVar(&promptListType, "type", "", "Filter by type: text or image")
	promptsAddCmd.Flags().StringVar(&promptType, "type", db.PromptTypeText, "Prompt type: text or image")
	promptsAddCmd.Flags().StringVar(&promptDomain, "domain", "", "Domain name (created if missing)")
	promptsCmd.AddCommand(promptsListCmd, promptsAddCmd, promptsDeleteCmd)
	rootCmd.AddCommand(promptsCmd)
}

func runPromptsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx, (*config.Config).Validate)
	if err != nil {
		return err
	}
	defer a.Close()

	prompts, err := a.Store.ListPrompts(ctx, db.ListPromptsParams{PromptType: promptListType})
	if err != nil {
		return fmt.Errorf("list prompts: %w", err)
	}

	scores, err := a.Store.SumFeedbackByPrompt(ctx)
	if err != nil {
		return fmt.Errorf("sum feedback: %w", err)
	}
	byID := make(map[int64]int64, len(scores))
	for _, s := range scores {
		byID[s.ID] = s.Score
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tSCORE\tPARENT\tTEXT")
	for _, p := range prompts {
		parent := "-"
		if p.ParentID.Valid {
			parent = fmt.Sprint(p.ParentID.Int64)
		}
		fmt.Fprintf(w, "%d\t%s\t%+d\t%s\t%s\n", p.ID, p.PromptType, byID[p.ID], parent, truncate(p.Text, 70))
	}
	return w.Flush()
}

func runPromptsAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx, (*config.Config).Validate)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := catalog.AddPrompt(ctx, a.Store, catalog.Prompt{
		Text:   strings.Join(args, " "),
		Type:   promptType,
		Domain: promptDomain,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added prompt %d: %s\n", p.ID, p.Text)
	return nil
}

func runPromptsDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid prompt id %q", args[0])
	}

	a, err := openApp(ctx, (*config.Config).Validate)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := catalog.RetirePrompt(ctx, a.Store, id); err != nil {
		return err
	}

	fmt.Printf("Retired prompt %d\n", id)
	return nil
}

// truncate shortens s to maxLen runes, adding an ellipsis if truncated.
func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
