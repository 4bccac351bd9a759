package entity

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/economistry/repec-harvester/internal/scrape"
	"github.com/economistry/repec-harvester/internal/similarity"
	"github.com/economistry/repec-harvester/internal/textnorm"
)

// parenthetical matches editor/role annotations like "(Ed.)" embedded in
// citation author strings.
var parenthetical = regexp.MustCompile(`\(.*\)`)

// Builder turns raw scraped publications and personal details into a
// normalized Batch.
type Builder struct {
	clusterer *similarity.Clusterer
	logger    *zap.Logger
}

// NewBuilder constructs a Builder. A nil clusterer gets the default
// Jaro-Winkler clusterer at the default threshold.
func NewBuilder(clusterer *similarity.Clusterer, logger *zap.Logger) *Builder {
	if clusterer == nil {
		clusterer = similarity.NewClusterer(nil, 0)
	}
	return &Builder{clusterer: clusterer, logger: logger}
}

type row struct {
	title  string
	path   string
	year   *int
	author string
	first  string
	last   string
}

// Build runs the full flatten/normalize/dedupe/reconcile sequence for
// one profile and returns the persistable batch.
func (b *Builder) Build(profilePath string, pubs []scrape.Publication, details scrape.PersonalDetails) Batch {
	rows := b.explode(pubs)
	rows = dropExactDuplicates(rows)
	rows = b.collapseNearDuplicateTitles(rows)
	rows = splitAuthorNames(rows)

	author := buildAuthor(profilePath, details)
	rows = reconcileFirstNames(rows, author)

	return Batch{
		Author:      author,
		Papers:      papersFrom(rows),
		Authorships: authorshipsFrom(rows),
	}
}

// explode produces one row per (paper, author) pair with normalized
// title and author text.
func (b *Builder) explode(pubs []scrape.Publication) []row {
	var rows []row
	for _, pub := range pubs {
		title := textnorm.Normalize(pub.Title)
		for _, raw := range pub.Authors {
			author := textnorm.Normalize(raw)
			if author == "" {
				continue
			}
			rows = append(rows, row{
				title:  title,
				path:   pub.PaperPath,
				year:   pub.Year,
				author: author,
			})
		}
	}
	return rows
}

func dropExactDuplicates(rows []row) []row {
	seen := make(map[string]struct{}, len(rows))
	out := rows[:0]
	for _, r := range rows {
		key := r.path + "\x00" + r.author
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// collapseNearDuplicateTitles keeps only rows whose title is the
// representative of its similarity cluster.
func (b *Builder) collapseNearDuplicateTitles(rows []row) []row {
	titles := make([]string, 0, len(rows))
	for _, r := range rows {
		titles = append(titles, r.title)
	}
	reps := b.clusterer.Representatives(titles)

	out := rows[:0]
	for _, r := range rows {
		if reps[r.title] != r.title {
			b.logger.Debug("collapsing near-duplicate title",
				zap.String("title", r.title),
				zap.String("representative", reps[r.title]),
			)
			continue
		}
		out = append(out, r)
	}
	return out
}

// splitAuthorNames strips parenthetical annotations, reverses comma
// names, and splits each author string into first/last components.
func splitAuthorNames(rows []row) []row {
	out := rows[:0]
	for _, r := range rows {
		author := strings.TrimSpace(parenthetical.ReplaceAllString(r.author, ""))
		author = textnorm.ReverseCommaName(author)
		tokens := textnorm.SplitNameTokens(author)
		if len(tokens) == 0 {
			continue
		}
		r.author = author
		r.first = tokens[0]
		r.last = tokens[len(tokens)-1]
		out = append(out, r)
	}
	return out
}

// reconcileFirstNames substitutes the authoritative profile first name
// for citation-derived first names sharing the profile's last name,
// then re-deduplicates. The join is on last name alone, so distinct
// co-authors who share the profile's surname are merged; that matches
// the source system and is a documented limitation.
func reconcileFirstNames(rows []row, author Author) []row {
	if author.FirstName != "" && author.LastName != "" {
		for i := range rows {
			if rows[i].last == author.LastName {
				rows[i].first = author.FirstName
			}
		}
	}
	seen := make(map[string]struct{}, len(rows))
	out := rows[:0]
	for _, r := range rows {
		key := r.title + "\x00" + r.first + "\x00" + r.last
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// papersFrom keeps one paper per distinct path, so every authorship's
// paper_url has a matching paper row.
func papersFrom(rows []row) []Paper {
	seen := make(map[string]struct{}, len(rows))
	var papers []Paper
	for _, r := range rows {
		if _, ok := seen[r.path]; ok {
			continue
		}
		seen[r.path] = struct{}{}
		papers = append(papers, Paper{Path: r.path, Title: r.title, Year: r.year})
	}
	return papers
}

func authorshipsFrom(rows []row) []Authorship {
	var out []Authorship
	for _, r := range rows {
		out = append(out, Authorship{
			PaperPath:  r.path,
			PaperTitle: r.title,
			Author:     r.author,
			FirstName:  r.first,
			LastName:   r.last,
		})
	}
	return out
}

// buildAuthor shapes the personal-details record into the fixed author
// schema via standardized keys.
func buildAuthor(profilePath string, details scrape.PersonalDetails) Author {
	a := Author{ProfilePath: profilePath, Homepage: details.Homepage}
	for key, value := range details.Fields {
		switch textnorm.StandardizeKey(key) {
		case "first_name":
			a.FirstName = textnorm.Normalize(value)
		case "middle_name":
			a.MiddleName = textnorm.Normalize(value)
		case "last_name":
			a.LastName = textnorm.Normalize(value)
		case "repec_short_id":
			a.RepecShortID = value
		case "twitter":
			a.Twitter = strings.TrimPrefix(value, "@")
		case "homepage":
			if a.Homepage == "" {
				a.Homepage = value
			}
		}
	}
	for i, aff := range details.Affiliations {
		a.Affiliations = append(a.Affiliations, Affiliation{
			Position:     i,
			Department:   aff.Department,
			Organisation: aff.Organisation,
			Location:     aff.Location,
		})
	}
	return a
}
