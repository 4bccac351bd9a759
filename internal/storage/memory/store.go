// Package memory provides an in-memory Store for tests and local runs
// without a database.
package memory

import (
	"context"
	"sync"

	"github.com/economistry/repec-harvester/internal/directory"
	"github.com/economistry/repec-harvester/internal/entity"
	"github.com/economistry/repec-harvester/internal/storage"
)

type nameKey struct {
	first string
	last  string
}

type authorshipKey struct {
	path  string
	first string
	last  string
}

// Store keeps all tables in maps guarded by one mutex. Worklist order
// is preserved the way the relational index preserves insertion order.
type Store struct {
	mu sync.Mutex

	urlOrder    []string
	authorURLs  map[string]directory.Entry
	authors     map[nameKey]entity.Author
	papers      map[string]entity.Paper
	authorships map[authorshipKey]entity.Authorship
	abstracts   map[string]entity.Abstract

	// processed tracks which profile paths have an author row, for the
	// anti-join.
	processed map[string]struct{}
}

var _ storage.Store = (*Store)(nil)

// New builds an empty Store.
func New() *Store {
	return &Store{
		authorURLs:  make(map[string]directory.Entry),
		authors:     make(map[nameKey]entity.Author),
		papers:      make(map[string]entity.Paper),
		authorships: make(map[authorshipKey]entity.Authorship),
		abstracts:   make(map[string]entity.Abstract),
		processed:   make(map[string]struct{}),
	}
}

// InitSchema is a no-op for the in-memory store.
func (s *Store) InitSchema(context.Context) error { return nil }

// UpsertAuthorURLs stores worklist entries keyed by profile path.
func (s *Store) UpsertAuthorURLs(_ context.Context, entries []directory.Entry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inserted := 0
	for _, e := range entries {
		if _, ok := s.authorURLs[e.ProfilePath]; ok {
			continue
		}
		s.authorURLs[e.ProfilePath] = e
		s.urlOrder = append(s.urlOrder, e.ProfilePath)
		inserted++
	}
	return inserted, nil
}

// UpsertAuthor stores the author row if its name key is new, and always
// marks the profile path processed.
func (s *Store) UpsertAuthor(_ context.Context, author entity.Author) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inserted := 0
	key := nameKey{first: author.FirstName, last: author.LastName}
	if _, ok := s.authors[key]; !ok {
		s.authors[key] = author
		inserted = 1
	}
	if author.ProfilePath != "" {
		s.processed[author.ProfilePath] = struct{}{}
	}
	return inserted, nil
}

// UpsertPapers stores papers keyed by path, skipping existing keys.
func (s *Store) UpsertPapers(_ context.Context, papers []entity.Paper) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inserted := 0
	for _, p := range papers {
		if _, ok := s.papers[p.Path]; ok {
			continue
		}
		s.papers[p.Path] = p
		inserted++
	}
	return inserted, nil
}

// UpsertAuthorships stores join rows keyed by (path, first, last).
func (s *Store) UpsertAuthorships(_ context.Context, rows []entity.Authorship) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inserted := 0
	for _, r := range rows {
		key := authorshipKey{path: r.PaperPath, first: r.FirstName, last: r.LastName}
		if _, ok := s.authorships[key]; ok {
			continue
		}
		s.authorships[key] = r
		inserted++
	}
	return inserted, nil
}

// UpsertAbstracts stores abstracts keyed by paper path.
func (s *Store) UpsertAbstracts(_ context.Context, abstracts []entity.Abstract) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inserted := 0
	for _, a := range abstracts {
		if _, ok := s.abstracts[a.PaperPath]; ok {
			continue
		}
		s.abstracts[a.PaperPath] = a
		inserted++
	}
	return inserted, nil
}

// UnprocessedAuthorURLs returns indexed paths without an author row, in
// worklist order.
func (s *Store) UnprocessedAuthorURLs(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, path := range s.urlOrder {
		if _, done := s.processed[path]; !done {
			out = append(out, path)
		}
	}
	return out, nil
}

// PaperPathsWithoutAbstracts returns stored paper paths lacking an
// abstract row.
func (s *Store) PaperPathsWithoutAbstracts(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for path := range s.papers {
		if _, ok := s.abstracts[path]; !ok {
			out = append(out, path)
		}
	}
	return out, nil
}

// TwitterAuthors lists authors with a non-empty twitter handle.
func (s *Store) TwitterAuthors(context.Context) ([]storage.TwitterAuthor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []storage.TwitterAuthor
	for _, a := range s.authors {
		if a.Twitter == "" {
			continue
		}
		out = append(out, storage.TwitterAuthor{
			FirstName:    a.FirstName,
			LastName:     a.LastName,
			RepecShortID: a.RepecShortID,
			Handle:       a.Twitter,
		})
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() {}

// Authors returns a snapshot of stored author rows, for tests.
func (s *Store) Authors() []entity.Author {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Author, 0, len(s.authors))
	for _, a := range s.authors {
		out = append(out, a)
	}
	return out
}

// Papers returns a snapshot of stored papers, for tests.
func (s *Store) Papers() []entity.Paper {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Paper, 0, len(s.papers))
	for _, p := range s.papers {
		out = append(out, p)
	}
	return out
}

// Authorships returns a snapshot of stored join rows, for tests.
func (s *Store) Authorships() []entity.Authorship {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Authorship, 0, len(s.authorships))
	for _, r := range s.authorships {
		out = append(out, r)
	}
	return out
}
