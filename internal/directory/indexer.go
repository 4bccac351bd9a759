// Package directory turns the master author-listing page into the
// worklist of profile paths.
package directory

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/economistry/repec-harvester/internal/textnorm"
)

// ErrSentinelsNotFound is returned when neither range sentinel appears
// on the listing page. Without the slice boundaries there is no way to
// separate author links from navigation boilerplate, so this is fatal
// for the run.
var ErrSentinelsNotFound = errors.New("directory: sentinel authors not found")

// Entry is one author row of the worklist index.
type Entry struct {
	FirstName   string
	MiddleName  string
	LastName    string
	ProfilePath string
}

// Indexer extracts the author list bounded by two sentinel display names.
type Indexer struct {
	firstSentinel string
	lastSentinel  string
	logger        *zap.Logger
}

// NewIndexer builds an Indexer. The sentinels are matched as substrings
// of the link display text, in its raw (pre-normalization) form.
func NewIndexer(firstSentinel, lastSentinel string, logger *zap.Logger) *Indexer {
	return &Indexer{
		firstSentinel: firstSentinel,
		lastSentinel:  lastSentinel,
		logger:        logger,
	}
}

type link struct {
	text string
	href string
}

// Index parses every hyperlink in document order, keeps the inclusive
// slice between the first and last sentinel occurrence, and parses each
// kept display name into name components.
func (ix *Indexer) Index(doc *goquery.Document) ([]Entry, error) {
	var links []link
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		links = append(links, link{text: s.Text(), href: href})
	})

	first, last := -1, -1
	for i, l := range links {
		if strings.Contains(l.text, ix.firstSentinel) || strings.Contains(l.text, ix.lastSentinel) {
			if first == -1 {
				first = i
			}
			last = i
		}
	}
	if first == -1 {
		return nil, ErrSentinelsNotFound
	}

	entries := make([]Entry, 0, last-first+1)
	for _, l := range links[first : last+1] {
		entry, ok := ix.parseEntry(l)
		if !ok {
			ix.logger.Warn("skipping unparseable author link",
				zap.String("text", l.text),
				zap.String("href", l.href),
			)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (ix *Indexer) parseEntry(l link) (Entry, bool) {
	name := textnorm.ReverseCommaName(textnorm.Normalize(l.text))
	tokens := textnorm.SplitNameTokens(name)
	e := Entry{ProfilePath: l.href}
	switch len(tokens) {
	case 3:
		e.FirstName, e.MiddleName, e.LastName = tokens[0], tokens[1], tokens[2]
	case 2:
		e.FirstName, e.LastName = tokens[0], tokens[1]
	case 1:
		e.LastName = tokens[0]
	default:
		return Entry{}, false
	}
	if e.LastName == "" || e.ProfilePath == "" {
		return Entry{}, false
	}
	return e, true
}
