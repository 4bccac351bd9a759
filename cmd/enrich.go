package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/economistry/repec-harvester/internal/enrich"
)

func newEnrichCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Pulls recent tweets for authors with a twitter handle",
		Long: `Lists every persisted author carrying a usable twitter handle and
fetches their most recent timeline entries. Failures on individual
handles are logged and skipped, never fatal.`,
		RunE: runEnrichCommand,
	}
	cmd.Flags().Int("count", 20, "tweets to fetch per author")
	return cmd
}

func runEnrichCommand(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	count, _ := cmd.Flags().GetInt("count")

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	authors, err := store.TwitterAuthors(ctx)
	if err != nil {
		return fmt.Errorf("list twitter authors: %w", err)
	}
	logger.Info("enriching authors", zap.Int("authors", len(authors)))

	client := enrich.NewTwitterClient(cfg.Twitter.BaseURL, cfg.Twitter.BearerToken)
	var fetched int
	for _, a := range authors {
		tweets, err := client.UserTimeline(ctx, a.Handle, count)
		if err != nil {
			logger.Warn("timeline fetch failed",
				zap.String("handle", a.Handle),
				zap.Error(err),
			)
			continue
		}
		fetched++
		logger.Info("timeline fetched",
			zap.String("handle", a.Handle),
			zap.String("author", a.FirstName+" "+a.LastName),
			zap.Int("tweets", len(tweets)),
		)
		for _, t := range tweets {
			fmt.Fprintf(cmd.OutOrStdout(), "@%s\t%s\t%s\n", a.Handle, t.CreatedAt, t.Text)
		}
	}
	logger.Info("enrichment finished",
		zap.Int("authors", len(authors)),
		zap.Int("fetched", fetched),
	)
	return nil
}
