package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/economistry/repec-harvester/internal/directory"
)

func newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Builds the author worklist from the directory listing",
		Long: `Scrapes the master author-listing page, slices it to the known
alphabetic range, and persists the (name, profile path) index that all
subsequent harvest runs draw their worklist from.`,
		RunE: runIndexCommand,
	}
}

func runIndexCommand(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	doc, err := newFetcher().Fetch(ctx, cfg.Directory.URL)
	if err != nil {
		return fmt.Errorf("fetch directory: %w", err)
	}

	indexer := directory.NewIndexer(cfg.Directory.FirstAuthor, cfg.Directory.LastAuthor, logger)
	entries, err := indexer.Index(doc)
	if err != nil {
		return fmt.Errorf("index directory: %w", err)
	}

	inserted, err := store.UpsertAuthorURLs(ctx, entries)
	if err != nil {
		return fmt.Errorf("persist worklist: %w", err)
	}
	logger.Info("worklist indexed",
		zap.Int("entries", len(entries)),
		zap.Int("inserted", inserted),
	)
	return nil
}
