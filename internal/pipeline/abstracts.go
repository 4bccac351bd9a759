package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/economistry/repec-harvester/internal/entity"
	"github.com/economistry/repec-harvester/internal/fetch"
	"github.com/economistry/repec-harvester/internal/metrics"
	"github.com/economistry/repec-harvester/internal/scrape"
	"github.com/economistry/repec-harvester/internal/storage"
)

// AbstractHarvester fetches paper pages and persists their abstracts.
// Papers without an abstract body still get a row (with a null text) so
// they are not refetched on the next run.
type AbstractHarvester struct {
	fetcher fetch.Fetcher
	store   storage.Store
	baseURL string
	logger  *zap.Logger
}

// NewAbstractHarvester constructs an AbstractHarvester.
func NewAbstractHarvester(fetcher fetch.Fetcher, store storage.Store, baseURL string, logger *zap.Logger) *AbstractHarvester {
	return &AbstractHarvester{fetcher: fetcher, store: store, baseURL: baseURL, logger: logger}
}

// Run processes every paper that has no abstract row yet.
func (a *AbstractHarvester) Run(ctx context.Context) error {
	paths, err := a.store.PaperPathsWithoutAbstracts(ctx)
	if err != nil {
		return fmt.Errorf("load abstract worklist: %w", err)
	}
	a.logger.Info("harvesting abstracts", zap.Int("papers", len(paths)))

	found := 0
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		abstract := entity.Abstract{PaperPath: path}
		doc, err := a.fetcher.Fetch(ctx, a.baseURL+path)
		if err != nil {
			a.logger.Warn("paper fetch failed", zap.String("paper", path), zap.Error(err))
			continue
		}
		if text, ok := scrape.Abstract(doc); ok {
			abstract.Text = &text
			found++
		} else {
			a.logger.Debug("paper has no abstract", zap.String("paper", path))
		}
		n, err := a.store.UpsertAbstracts(ctx, []entity.Abstract{abstract})
		if err != nil {
			a.logger.Warn("abstract persist failed", zap.String("paper", path), zap.Error(err))
			continue
		}
		metrics.RowsInserted.WithLabelValues("paper_abstracts").Add(float64(n))
	}

	a.logger.Info("abstract harvest complete",
		zap.Int("papers", len(paths)),
		zap.Int("with_abstract", found),
	)
	return nil
}
