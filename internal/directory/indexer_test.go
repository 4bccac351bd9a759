package directory

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const listingHTML = `<html><body>
<a href="/top.html">Back to top</a>
<a href="/help.html">Help</a>
<a href="/e/paa1.html">Aaberge, Rolf </a>
<a href="/e/pbb2.html">Banerjee, Abhijit Vinayak</a>
<a href="/e/pcc3.html">Díaz, María</a>
<a href="/e/pzz9.html">Zhou, Li </a>
<a href="/contact.html">Contact us</a>
</body></html>`

func newIndexer(t *testing.T) *Indexer {
	t.Helper()
	return NewIndexer("Aaberge, Rolf", "Zhou, Li", zap.NewNop())
}

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestIndexSlicesBetweenSentinels(t *testing.T) {
	t.Parallel()

	entries, err := newIndexer(t).Index(parseDoc(t, listingHTML))
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, "/e/paa1.html", entries[0].ProfilePath)
	assert.Equal(t, "/e/pzz9.html", entries[3].ProfilePath)
}

func TestIndexParsesNameComponents(t *testing.T) {
	t.Parallel()

	entries, err := newIndexer(t).Index(parseDoc(t, listingHTML))
	require.NoError(t, err)

	assert.Equal(t, Entry{
		FirstName:   "Rolf",
		LastName:    "Aaberge",
		ProfilePath: "/e/paa1.html",
	}, entries[0])

	// three-token name keeps the middle component
	assert.Equal(t, Entry{
		FirstName:   "Abhijit",
		MiddleName:  "Vinayak",
		LastName:    "Banerjee",
		ProfilePath: "/e/pbb2.html",
	}, entries[1])

	// accents are folded during normalization
	assert.Equal(t, Entry{
		FirstName:   "Maria",
		LastName:    "Diaz",
		ProfilePath: "/e/pcc3.html",
	}, entries[2])
}

func TestIndexFailsWithoutSentinels(t *testing.T) {
	t.Parallel()

	html := `<html><body><a href="/x.html">Nobody Here</a></body></html>`
	_, err := newIndexer(t).Index(parseDoc(t, html))
	require.ErrorIs(t, err, ErrSentinelsNotFound)
}
