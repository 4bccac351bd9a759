// Package pipeline drives the end-to-end harvest over the worklist of
// unprocessed profile paths, one profile at a time.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/economistry/repec-harvester/internal/checkpoint"
	"github.com/economistry/repec-harvester/internal/entity"
	"github.com/economistry/repec-harvester/internal/fetch"
	"github.com/economistry/repec-harvester/internal/metrics"
	"github.com/economistry/repec-harvester/internal/scrape"
	"github.com/economistry/repec-harvester/internal/storage"
)

// Progress is a point-in-time snapshot of a running harvest.
type Progress struct {
	RunID     string `json:"run_id"`
	Total     int    `json:"total"`
	Done      int    `json:"done"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Current   string `json:"current,omitempty"`
}

// Harvester runs the fetch/scrape/build/persist loop.
type Harvester struct {
	fetcher    fetch.Fetcher
	builder    *entity.Builder
	store      storage.Store
	checkpoint *checkpoint.Log
	baseURL    string
	logger     *zap.Logger

	mu       sync.Mutex
	progress Progress
}

// New constructs a Harvester. baseURL is prepended to profile paths to
// form fetchable URLs.
func New(
	fetcher fetch.Fetcher,
	builder *entity.Builder,
	store storage.Store,
	cp *checkpoint.Log,
	baseURL string,
	logger *zap.Logger,
) *Harvester {
	return &Harvester{
		fetcher:    fetcher,
		builder:    builder,
		store:      store,
		checkpoint: cp,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// Progress returns the current snapshot.
func (h *Harvester) Progress() Progress {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.progress
}

// Run recomputes the worklist and processes every remaining profile in
// order. Per-profile failures are recorded and skipped; the run only
// returns early on context cancellation or a worklist error.
func (h *Harvester) Run(ctx context.Context) error {
	worklist, err := h.store.UnprocessedAuthorURLs(ctx)
	if err != nil {
		return fmt.Errorf("load worklist: %w", err)
	}

	runID := uuid.NewString()
	h.mu.Lock()
	h.progress = Progress{RunID: runID, Total: len(worklist)}
	h.mu.Unlock()

	h.logger.Info("starting harvest",
		zap.String("run_id", runID),
		zap.Int("worklist", len(worklist)),
	)

	succeeded := 0
	for _, path := range worklist {
		if err := ctx.Err(); err != nil {
			return err
		}
		h.setCurrent(path)

		processErr := h.processProfile(ctx, path)
		suffix := checkpoint.SuffixSuccess
		if processErr != nil {
			suffix = checkpoint.SuffixFail
			h.logger.Warn("profile failed",
				zap.String("profile", path),
				zap.Error(processErr),
			)
		} else {
			succeeded++
		}
		if err := h.checkpoint.Record(path, suffix); err != nil {
			h.logger.Warn("checkpoint write failed", zap.Error(err))
		}
		h.recordOutcome(processErr == nil)
	}

	h.logger.Info("harvest complete",
		zap.String("run_id", runID),
		zap.Int("succeeded", succeeded),
		zap.Int("total", len(worklist)),
	)
	return nil
}

func (h *Harvester) processProfile(ctx context.Context, path string) error {
	doc, err := h.fetcher.Fetch(ctx, h.baseURL+path)
	if err != nil {
		metrics.ProfilesProcessed.WithLabelValues("scrape_failed").Inc()
		return fmt.Errorf("fetch profile: %w", err)
	}

	pubs := scrape.Publications(doc, h.baseURL)
	details, err := scrape.Details(doc)
	if err != nil {
		metrics.ProfilesProcessed.WithLabelValues("scrape_failed").Inc()
		return fmt.Errorf("scrape personal details: %w", err)
	}
	h.logIssues(path, pubs.Issues)
	h.logIssues(path, details.Issues)
	metrics.PublicationsExtracted.Add(float64(len(pubs.Publications)))

	batch := h.builder.Build(path, pubs.Publications, details)

	if err := h.persist(ctx, batch); err != nil {
		metrics.ProfilesProcessed.WithLabelValues("persist_failed").Inc()
		return err
	}
	metrics.ProfilesProcessed.WithLabelValues("success").Inc()
	h.logger.Info("profile persisted",
		zap.String("profile", path),
		zap.Int("papers", len(batch.Papers)),
		zap.Int("authorships", len(batch.Authorships)),
	)
	return nil
}

func (h *Harvester) persist(ctx context.Context, batch entity.Batch) error {
	n, err := h.store.UpsertAuthor(ctx, batch.Author)
	if err != nil {
		return fmt.Errorf("persist author: %w", err)
	}
	metrics.RowsInserted.WithLabelValues("author_details").Add(float64(n))

	n, err = h.store.UpsertPapers(ctx, batch.Papers)
	if err != nil {
		return fmt.Errorf("persist papers: %w", err)
	}
	metrics.RowsInserted.WithLabelValues("paper_details").Add(float64(n))

	n, err = h.store.UpsertAuthorships(ctx, batch.Authorships)
	if err != nil {
		return fmt.Errorf("persist authorships: %w", err)
	}
	metrics.RowsInserted.WithLabelValues("author_paper").Add(float64(n))
	return nil
}

func (h *Harvester) logIssues(path string, issues []scrape.Issue) {
	for _, issue := range issues {
		metrics.ParseIssues.Inc()
		h.logger.Debug("extraction issue",
			zap.String("profile", path),
			zap.String("stage", issue.Stage),
			zap.String("detail", issue.Detail),
		)
	}
}

func (h *Harvester) setCurrent(path string) {
	h.mu.Lock()
	h.progress.Current = path
	h.mu.Unlock()
}

func (h *Harvester) recordOutcome(ok bool) {
	h.mu.Lock()
	h.progress.Done++
	if ok {
		h.progress.Succeeded++
	} else {
		h.progress.Failed++
	}
	h.progress.Current = ""
	h.mu.Unlock()
}
