package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abdulachik/xstudio/internal/config"
	"github.com/abdulachik/xstudio/internal/db"
	"github.com/abdulachik/xstudio/internal/suggest"
)

var (
	postDryRun  bool
	postText    string
	postOutput  int64
	postContext string
	postMode    string
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Publish a post to X",
	Long: `Publish a post to X as X_USERNAME. By default a new suggestion is
generated; --output publishes an earlier suggestion and --text publishes
your own text.

Examples:
  xstudio post --dry-run               # Generate and show, don't publish
  xstudio post --context "night trains"
  xstudio post --output 42
  xstudio post --text "Hello from the harbor."`,
	RunE: runPost,
}

func init() {
	postCmd.Flags().BoolVar(&postDryRun, "dry-run", false, "Show what would be posted without actually posting")
	postCmd.Flags().StringVar(&postText, "text", "", "Publish this text as is")
	postCmd.Flags().Int64Var(&postOutput, "output", 0, "Publish an earlier output by id")
	postCmd.Flags().StringVar(&postContext, "context", "", "Subject for a generated post")
	postCmd.Flags().StringVar(&postMode, "mode", "", "Selection mode for a generated post (default: DEFAULT_MODE)")
	postCmd.MarkFlagsMutuallyExclusive("text", "output", "context")
	rootCmd.AddCommand(postCmd)
}

func runPost(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	generate := postText == "" && postOutput == 0

	a, err := openApp(ctx, func(c *config.Config) error {
		if generate {
			if err := c.ValidateForGeneration(); err != nil {
				return err
			}
		}
		if !postDryRun {
			return c.ValidateForPosting()
		}
		return c.Validate()
	})
	if err != nil {
		return err
	}
	defer a.Close()

	text, outputID := postText, postOutput
	switch {
	case postOutput != 0:
		out, err := a.Store.GetOutput(ctx, postOutput)
		if db.IsNotFound(err) {
			return fmt.Errorf("output %d: %w", postOutput, db.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("get output: %w", err)
		}
		text = out.Text

	case generate:
		modeName := postMode
		if modeName == "" {
			modeName = a.Config.DefaultMode
		}
		mode, err := suggest.ParseMode(modeName)
		if err != nil {
			return err
		}

		svc, err := a.Suggest(ctx)
		if err != nil {
			return err
		}
		domainID, err := a.DefaultDomainID(ctx)
		if err != nil {
			return err
		}
		sug, err := svc.SelectAndGenerate(ctx, postContext, mode, domainID)
		if err != nil {
			return fmt.Errorf("generate: %w", err)
		}
		text, outputID = sug.Text, sug.OutputID
		slog.Info("generated suggestion", "output_id", sug.OutputID, "model", sug.Model, "context", sug.Context)
	}

	fmt.Println()
	fmt.Println("=== Post Content ===")
	fmt.Println()
	fmt.Println(text)
	fmt.Println()

	if postDryRun {
		fmt.Println("=== DRY RUN - Not posting ===")
		return nil
	}

	tokens, err := a.Tokens(ctx)
	if err != nil {
		return fmt.Errorf("load X credentials: %w", err)
	}

	post, err := a.Publisher().Publish(ctx, tokens, text, outputID)
	if err != nil {
		return err
	}

	fmt.Printf("Posted successfully!\nURL: %s\n", post.PostUrl.String)
	return nil
}
