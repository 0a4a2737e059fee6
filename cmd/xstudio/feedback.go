package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdulachik/xstudio/internal/config"
	"github.com/abdulachik/xstudio/internal/suggest"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback <output-id> <score> [comment...]",
	Short: "Score a generated output",
	Long: `Attach a score and an optional comment to a generated output. Scores
add up per prompt and per model and drive weighted and highest selection.
Comments are used when rewriting the prompt.

Examples:
  xstudio feedback 12 1
  xstudio feedback 12 -1 too formal, reads like a press release`,
	Args: cobra.MinimumNArgs(2),
	RunE: runFeedback,
}

func init() {
	feedbackCmd.Flags().SetInterspersed(false)
	rootCmd.AddCommand(feedbackCmd)
}

func runFeedback(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	outputID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid output id %q: %w", args[0], err)
	}
	score, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid score %q: %w", args[1], err)
	}
	comment := strings.Join(args[2:], " ")

	a, err := openApp(ctx, (*config.Config).Validate)
	if err != nil {
		return err
	}
	defer a.Close()

	svc := suggest.New(suggest.Config{Store: a.Store})
	fb, err := svc.Feedback(ctx, outputID, score, comment)
	if err != nil {
		return err
	}

	fmt.Printf("Recorded feedback %d on output %d (score %+d)\n", fb.ID, outputID, score)
	return nil
}
