// Package storage defines the persistence contract for harvested
// entities. Implementations insert batches with insert-if-absent
// semantics: a row whose primary key already exists is silently
// skipped, never updated.
package storage

import (
	"context"
	"errors"

	"github.com/economistry/repec-harvester/internal/directory"
	"github.com/economistry/repec-harvester/internal/entity"
)

// ErrNotFound is returned when a lookup matches no rows.
var ErrNotFound = errors.New("storage: not found")

// TwitterAuthor is the projection consumed by the enrichment step.
type TwitterAuthor struct {
	FirstName    string
	LastName     string
	RepecShortID string
	Handle       string
}

// Store persists harvested entities. Upsert methods return the number
// of rows actually inserted (conflicts are skipped and not counted).
type Store interface {
	// InitSchema creates any missing tables.
	InitSchema(ctx context.Context) error

	// UpsertAuthorURLs persists the directory worklist index.
	UpsertAuthorURLs(ctx context.Context, entries []directory.Entry) (int, error)

	// UpsertAuthor persists the author row and its affiliations,
	// reporting whether the author row landed (0 on conflict).
	UpsertAuthor(ctx context.Context, author entity.Author) (int, error)

	// UpsertPapers persists paper rows keyed by paper path.
	UpsertPapers(ctx context.Context, papers []entity.Paper) (int, error)

	// UpsertAuthorships persists the paper-author join rows.
	UpsertAuthorships(ctx context.Context, rows []entity.Authorship) (int, error)

	// UpsertAbstracts persists abstract rows keyed by paper path.
	UpsertAbstracts(ctx context.Context, abstracts []entity.Abstract) (int, error)

	// UnprocessedAuthorURLs anti-joins the worklist index against the
	// author table: paths indexed but not yet persisted.
	UnprocessedAuthorURLs(ctx context.Context) ([]string, error)

	// PaperPathsWithoutAbstracts anti-joins papers against abstracts.
	PaperPathsWithoutAbstracts(ctx context.Context) ([]string, error)

	// TwitterAuthors lists authors with a usable twitter handle.
	TwitterAuthors(ctx context.Context) ([]TwitterAuthor, error)

	// Close releases the underlying connection resources.
	Close()
}
