package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/economistry/repec-harvester/internal/pipeline"
)

func newAbstractsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "abstracts",
		Short: "Fetches abstracts for papers that do not have one yet",
		Long: `Walks the set of persisted papers with no abstract row, fetches each
paper page, and persists the abstract text. Papers whose page carries no
abstract are recorded with an empty abstract so they are not refetched.`,
		RunE: runAbstractsCommand,
	}
}

func runAbstractsCommand(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	harvester := pipeline.NewAbstractHarvester(newFetcher(), store, cfg.Site.BaseURL, logger)
	if err := harvester.Run(ctx); err != nil {
		return fmt.Errorf("run abstracts: %w", err)
	}
	return nil
}
