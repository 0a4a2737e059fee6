package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abdulachik/xstudio/internal/config"
	"github.com/abdulachik/xstudio/internal/metrics"
	"github.com/abdulachik/xstudio/internal/scheduler"
	"github.com/abdulachik/xstudio/internal/suggest"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the posting daemon",
	Long: `Run the daemon that generates a post every POST_INTERVAL using trending
headlines as context and publishes it to X, up to MAX_POSTS_PER_DAY.
When METRICS_ADDR is set, /metrics and /health are served there.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, (*config.Config).ValidateForServe)
	if err != nil {
		return err
	}
	defer a.Close()
	cfg := a.Config

	if _, err := a.Seed(ctx); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	mode, err := suggest.ParseMode(cfg.DefaultMode)
	if err != nil {
		return err
	}

	svc, err := a.Suggest(ctx)
	if err != nil {
		return err
	}

	tokens, err := a.Tokens(ctx)
	if err != nil {
		return fmt.Errorf("load X credentials: %w", err)
	}

	domainID, err := a.DefaultDomainID(ctx)
	if err != nil {
		return err
	}

	var topics scheduler.Topics
	if cfg.TopicsEnabled {
		topics = a.Topics()
	}

	sched := scheduler.New(scheduler.Config{
		Generator:    svc,
		Publisher:    a.Publisher(),
		Topics:       topics,
		Tokens:       tokens,
		Mode:         mode,
		DomainID:     domainID,
		PostInterval: cfg.PostInterval,
		TopicRefresh: cfg.TopicRefresh,
	})

	slog.Info("starting xstudio daemon",
		"post_interval", cfg.PostInterval,
		"max_posts_per_day", cfg.MaxPostsPerDay,
		"mode", mode,
		"domain", cfg.DefaultDomain,
		"username", cfg.XUsername,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sched.Run(gctx)
	})

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.Handle("/health", sched.Health())

		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}

		g.Go(func() error {
			slog.Info("serving metrics", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	slog.Info("shutting down...")
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
