// Package metrics exposes Prometheus collectors for the harvester.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProfilesProcessed counts processed profile pages by outcome
	// (success, scrape_failed, persist_failed).
	ProfilesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvester_profiles_total",
		Help: "Profiles processed, labeled by outcome.",
	}, []string{"outcome"})

	// PublicationsExtracted counts raw publication entries scraped.
	PublicationsExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvester_publications_total",
		Help: "Raw publication entries extracted from profile pages.",
	})

	// ParseIssues counts per-record extraction failures that were
	// skipped rather than aborting a page.
	ParseIssues = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvester_parse_issues_total",
		Help: "Per-record extraction failures that were skipped.",
	})

	// RowsInserted counts rows actually inserted per table (conflicts
	// excluded).
	RowsInserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvester_rows_inserted_total",
		Help: "Rows inserted into storage, labeled by table.",
	}, []string{"table"})
)
