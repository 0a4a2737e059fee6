package main

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"github.com/abdulachik/xstudio/internal/config"
	"github.com/abdulachik/xstudio/internal/db"
	"github.com/abdulachik/xstudio/internal/vectorstore"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	Long:  `Display counts of prompts, models, outputs, feedback and posts, and the best scoring prompts and models.`,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

type scored struct {
	id    int64
	score int64
}

func top(rows []scored, n int) []scored {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].score > rows[j].score })
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx, (*config.Config).Validate)
	if err != nil {
		return err
	}
	defer a.Close()
	store := a.Store

	totalPrompts, err := store.CountPrompts(ctx)
	if err != nil {
		return fmt.Errorf("count prompts: %w", err)
	}
	models, err := store.ListModelsByCapability(ctx, db.ListModelsByCapabilityParams{})
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	totalOutputs, err := store.CountOutputs(ctx)
	if err != nil {
		return fmt.Errorf("count outputs: %w", err)
	}
	totalFeedback, err := store.CountFeedback(ctx)
	if err != nil {
		return fmt.Errorf("count feedback: %w", err)
	}
	totalPosts, err := store.CountPosts(ctx)
	if err != nil {
		return fmt.Errorf("count posts: %w", err)
	}

	promptScores, err := store.SumFeedbackByPrompt(ctx)
	if err != nil {
		return fmt.Errorf("sum prompt feedback: %w", err)
	}
	modelScores, err := store.SumFeedbackByModel(ctx)
	if err != nil {
		return fmt.Errorf("sum model feedback: %w", err)
	}

	fmt.Println("=== xstudio Statistics ===")
	fmt.Println()
	fmt.Printf("Database: %s\n", a.Config.DatabasePath)
	fmt.Println()
	fmt.Println("Catalog:")
	fmt.Printf("  Prompts: %d\n", totalPrompts)
	fmt.Printf("  Models: %d\n", len(models))
	fmt.Println()
	fmt.Println("Activity:")
	fmt.Printf("  Outputs: %d\n", totalOutputs)
	fmt.Printf("  Feedback: %d\n", totalFeedback)
	fmt.Printf("  Posts: %d\n", totalPosts)
	fmt.Println()

	rows := make([]scored, 0, len(promptScores))
	for _, r := range promptScores {
		rows = append(rows, scored{r.ID, r.Score})
	}
	if len(rows) > 0 {
		fmt.Println("Top prompts:")
		for _, r := range top(rows, 5) {
			fmt.Printf("  #%d: %+d\n", r.id, r.score)
		}
		fmt.Println()
	}

	names := make(map[int64]string, len(models))
	for _, m := range models {
		names[m.ID] = m.Name
	}
	rows = make([]scored, 0, len(modelScores))
	for _, r := range modelScores {
		rows = append(rows, scored{r.ID, r.Score})
	}
	if len(rows) > 0 {
		fmt.Println("Top models:")
		for _, r := range top(rows, 5) {
			fmt.Printf("  %s: %+d\n", names[r.id], r.score)
		}
		fmt.Println()
	}

	recent, err := store.ListRecentPosts(ctx, 5)
	if err != nil {
		slog.Warn("failed to list recent posts", "error", err)
	} else if len(recent) > 0 {
		fmt.Println("Recent posts:")
		for _, p := range recent {
			fmt.Printf("  %s  %s\n", p.CreatedAt.Format("2006-01-02 15:04"), truncate(p.Text, 60))
		}
		fmt.Println()
	}

	if a.Config.VecLitePath != "" {
		history, err := vectorstore.New(vectorstore.Config{Path: a.Config.VecLitePath})
		if err != nil {
			slog.Warn("failed to open VecLite", "error", err)
		} else {
			defer history.Close()
			fmt.Println("Post history:")
			fmt.Printf("  Path: %s\n", a.Config.VecLitePath)
			fmt.Printf("  Documents: %d\n", history.Count())
			fmt.Println()
		}
	}

	return nil
}
