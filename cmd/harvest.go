package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/economistry/repec-harvester/internal/api"
	"github.com/economistry/repec-harvester/internal/checkpoint"
	"github.com/economistry/repec-harvester/internal/entity"
	"github.com/economistry/repec-harvester/internal/pipeline"
	"github.com/economistry/repec-harvester/internal/similarity"
)

func newHarvestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "harvest",
		Short: "Scrapes and persists every unprocessed author profile",
		Long: `Recomputes the worklist of profile paths that have no persisted
author row yet, then sequentially fetches, scrapes, normalizes, and
persists each one, checkpointing per-item outcomes. Failed profiles are
retried on the next run; persisted profiles are never reattempted.`,
		RunE: runHarvestCommand,
	}
}

func runHarvestCommand(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	cp, err := checkpoint.Load(cfg.Checkpoint.Path)
	if err != nil {
		return fmt.Errorf("load checkpoint: %w", err)
	}

	builder := entity.NewBuilder(
		similarity.NewClusterer(nil, cfg.Dedupe.Threshold),
		logger,
	)
	harvester := pipeline.New(newFetcher(), builder, store, cp, cfg.Site.BaseURL, logger)

	if cfg.Server.Port > 0 {
		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
			Handler: api.NewServer(harvester).Router(),
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("status server stopped", zap.Error(err))
			}
		}()
		defer func() { _ = srv.Close() }()
		logger.Info("status server listening", zap.Int("port", cfg.Server.Port))
	}

	if err := harvester.Run(ctx); err != nil {
		return fmt.Errorf("run harvest: %w", err)
	}
	return nil
}
