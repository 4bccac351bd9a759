package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/economistry/repec-harvester/internal/checkpoint"
	"github.com/economistry/repec-harvester/internal/directory"
	"github.com/economistry/repec-harvester/internal/entity"
	"github.com/economistry/repec-harvester/internal/storage/memory"
)

const baseURL = "https://ideas.repec.org"

const janeProfileHTML = `<html><body>
<table><tbody>
<tr><td>First Name:</td><td>Jane</td></tr>
<tr><td>Last Name:</td><td>Doe</td></tr>
</tbody></table>
<ul>
<li class="list-group-item downfree">Smith, John &amp; J. Doe, 2019.
<a href="/p/abc/wp001.html">Growth and Inequality</a></li>
<li class="list-group-item downgate">Doe, Jane, "undated".
<a href="/p/abc/wp002.html">Notes on Trade</a></li>
</ul>
</body></html>`

type stubFetcher struct {
	pages map[string]string
}

func (s *stubFetcher) Fetch(_ context.Context, url string) (*goquery.Document, error) {
	html, ok := s.pages[url]
	if !ok {
		return nil, errors.New("page unreachable")
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func newHarvester(t *testing.T, store *memory.Store, pages map[string]string) *Harvester {
	t.Helper()
	cp := checkpoint.New(filepath.Join(t.TempDir(), "checkpoint.json"))
	builder := entity.NewBuilder(nil, zap.NewNop())
	return New(&stubFetcher{pages: pages}, builder, store, cp, baseURL, zap.NewNop())
}

func seedWorklist(t *testing.T, store *memory.Store, paths ...string) {
	t.Helper()
	entries := make([]directory.Entry, 0, len(paths))
	for _, p := range paths {
		entries = append(entries, directory.Entry{LastName: "X", ProfilePath: p})
	}
	_, err := store.UpsertAuthorURLs(context.Background(), entries)
	require.NoError(t, err)
}

func TestRunPersistsScrapedProfile(t *testing.T) {
	t.Parallel()

	store := memory.New()
	seedWorklist(t, store, "/e/pdo99.html")

	h := newHarvester(t, store, map[string]string{
		baseURL + "/e/pdo99.html": janeProfileHTML,
	})
	require.NoError(t, h.Run(context.Background()))

	authors := store.Authors()
	require.Len(t, authors, 1)
	assert.Equal(t, "Jane", authors[0].FirstName)
	assert.Equal(t, "Doe", authors[0].LastName)

	assert.Len(t, store.Papers(), 2)

	// the citation-derived "J." initial must be replaced by the
	// profile's own first name
	for _, as := range store.Authorships() {
		if as.LastName == "Doe" {
			assert.Equal(t, "Jane", as.FirstName)
		}
	}

	progress := h.Progress()
	assert.Equal(t, 1, progress.Done)
	assert.Equal(t, 1, progress.Succeeded)
	assert.Equal(t, 0, progress.Failed)
}

func TestRunContinuesPastFailures(t *testing.T) {
	t.Parallel()

	store := memory.New()
	seedWorklist(t, store, "/e/dead.html", "/e/pdo99.html")

	h := newHarvester(t, store, map[string]string{
		baseURL + "/e/pdo99.html": janeProfileHTML,
	})
	require.NoError(t, h.Run(context.Background()))

	assert.Equal(t, []string{
		"/e/dead.html-Fail",
		"/e/pdo99.html-Success",
	}, h.checkpoint.Entries())

	progress := h.Progress()
	assert.Equal(t, 2, progress.Done)
	assert.Equal(t, 1, progress.Succeeded)
	assert.Equal(t, 1, progress.Failed)
}

func TestRunSkipsAlreadyPersistedProfiles(t *testing.T) {
	t.Parallel()

	store := memory.New()
	seedWorklist(t, store, "/e/pdo99.html", "/e/pxx1.html")
	_, err := store.UpsertAuthor(context.Background(), entity.Author{
		FirstName:   "Xavier",
		LastName:    "Xu",
		ProfilePath: "/e/pxx1.html",
	})
	require.NoError(t, err)

	h := newHarvester(t, store, map[string]string{
		baseURL + "/e/pdo99.html": janeProfileHTML,
	})
	require.NoError(t, h.Run(context.Background()))

	// only the unprocessed profile is attempted
	assert.Equal(t, []string{"/e/pdo99.html-Success"}, h.checkpoint.Entries())
}

func TestRunFailedProfilesAreRetriedNextRun(t *testing.T) {
	t.Parallel()

	store := memory.New()
	seedWorklist(t, store, "/e/pdo99.html")

	// first run: page unreachable
	h := newHarvester(t, store, nil)
	require.NoError(t, h.Run(context.Background()))
	assert.Empty(t, store.Authors())

	// second run: page available again; the anti-join includes the
	// failed path because no author row was persisted
	h2 := newHarvester(t, store, map[string]string{
		baseURL + "/e/pdo99.html": janeProfileHTML,
	})
	require.NoError(t, h2.Run(context.Background()))
	assert.Len(t, store.Authors(), 1)
}

func TestRunStopsOnContextCancellation(t *testing.T) {
	t.Parallel()

	store := memory.New()
	seedWorklist(t, store, "/e/pdo99.html")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := newHarvester(t, store, nil)
	require.ErrorIs(t, h.Run(ctx), context.Canceled)
}

func TestAbstractHarvester(t *testing.T) {
	t.Parallel()

	store := memory.New()
	_, err := store.UpsertPapers(context.Background(), []entity.Paper{
		{Path: "/p/abc/wp001.html", Title: "Growth And Inequality"},
		{Path: "/p/abc/wp002.html", Title: "Notes On Trade"},
	})
	require.NoError(t, err)

	fetcher := &stubFetcher{pages: map[string]string{
		baseURL + "/p/abc/wp001.html": `<html><body><div id="abstract-body">We study growth.</div></body></html>`,
		baseURL + "/p/abc/wp002.html": `<html><body><p>no abstract here</p></body></html>`,
	}}
	a := NewAbstractHarvester(fetcher, store, baseURL, zap.NewNop())
	require.NoError(t, a.Run(context.Background()))

	missing, err := store.PaperPathsWithoutAbstracts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, missing)
}
