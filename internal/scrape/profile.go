// Package scrape extracts publication and personal-details records from
// a single author profile document. Extraction failures are collected as
// Issues on the result instead of aborting the pass, so callers and
// tests can inspect exactly what was dropped.
package scrape

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// publicationSelector matches the three recognized publication category
// markers. The same paper may appear under more than one category; that
// duplication is resolved later by the entity builder.
const publicationSelector = "li.list-group-item.downfree, li.list-group-item.downgate, li.list-group-item.downnone"

var (
	yearPattern      = regexp.MustCompile(`, (\d{4})\.`)
	yearStripPattern = regexp.MustCompile(`, \d{4}\.`)
	undatedPattern   = regexp.MustCompile(`, "undated"`)
)

// ErrDetailsTableNotFound indicates the profile has no personal-details
// table, which makes the whole profile unusable.
var ErrDetailsTableNotFound = errors.New("scrape: personal details table not found")

// Issue records one non-fatal extraction failure.
type Issue struct {
	Stage  string
	Detail string
}

// Publication is one raw scraped publication entry.
type Publication struct {
	Title     string
	PaperPath string
	Authors   []string
	Year      *int
}

// PublicationsResult carries the extracted entries plus any per-entry
// parse failures.
type PublicationsResult struct {
	Publications []Publication
	Issues       []Issue
}

// Affiliation is one raw affiliation block entry, in document order.
type Affiliation struct {
	Department   string
	Organisation string
	Location     string
}

// PersonalDetails is the author's self-reported key/value table plus the
// homepage and affiliation extractions.
type PersonalDetails struct {
	Fields       map[string]string
	Homepage     string
	Affiliations []Affiliation
	Issues       []Issue
}

// Publications extracts every recognized publication list item. A parse
// failure on one entry is recorded and the entry skipped; the pass never
// aborts. baseURL is stripped from absolute paper links so paths stay
// site-relative.
func Publications(doc *goquery.Document, baseURL string) PublicationsResult {
	var res PublicationsResult
	doc.Find(publicationSelector).Each(func(i int, s *goquery.Selection) {
		pub, err := parsePublication(s, baseURL)
		if err != nil {
			res.Issues = append(res.Issues, Issue{
				Stage:  "publication",
				Detail: fmt.Sprintf("entry %d: %v", i+1, err),
			})
			return
		}
		res.Publications = append(res.Publications, pub)
	})
	return res
}

func parsePublication(s *goquery.Selection, baseURL string) (Publication, error) {
	link := s.Find("a").First()
	if link.Length() == 0 {
		return Publication{}, errors.New("no title link")
	}
	href, ok := link.Attr("href")
	if !ok || href == "" {
		return Publication{}, errors.New("title link has no href")
	}

	pub := Publication{
		Title:     strings.TrimSpace(link.Text()),
		PaperPath: normalizePaperPath(href, baseURL),
	}
	if pub.Title == "" {
		return Publication{}, errors.New("empty title")
	}

	citation := firstLine(strings.TrimSpace(s.Text()))
	if strings.Contains(citation, "undated") {
		pub.Authors = splitAuthors(undatedPattern.ReplaceAllString(citation, ""))
		return pub, nil
	}
	m := yearPattern.FindStringSubmatch(citation)
	if m == nil {
		return Publication{}, fmt.Errorf("no year in citation %q", citation)
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return Publication{}, fmt.Errorf("parse year %q: %w", m[1], err)
	}
	pub.Year = &year
	pub.Authors = splitAuthors(yearStripPattern.ReplaceAllString(citation, ""))
	return pub, nil
}

func normalizePaperPath(href, baseURL string) string {
	path := strings.TrimPrefix(href, strings.TrimSuffix(baseURL, "/"))
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

func splitAuthors(citation string) []string {
	return strings.Split(citation, " & ")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// Details extracts the personal-details table, the homepage link, and
// the affiliation block. Missing homepage or affiliations degrade
// gracefully; a missing details table fails the whole profile.
func Details(doc *goquery.Document) (PersonalDetails, error) {
	pd := PersonalDetails{Fields: map[string]string{}}

	tbody := doc.Find("tbody").First()
	if tbody.Length() == 0 {
		return PersonalDetails{}, ErrDetailsTableNotFound
	}
	tbody.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		key := strings.TrimSpace(strings.ReplaceAll(cells.Eq(0).Text(), ":", ""))
		value := strings.TrimSpace(cells.Eq(1).Text())
		if key == "" || value == "" {
			return
		}
		pd.Fields[key] = value
	})

	pd.Homepage = findHomepage(doc)
	if pd.Homepage == "" {
		pd.Issues = append(pd.Issues, Issue{Stage: "homepage", Detail: "homepage not found"})
	}

	affBlock := doc.Find("div#affiliation")
	if affBlock.Length() == 0 {
		pd.Issues = append(pd.Issues, Issue{Stage: "affiliation", Detail: "affiliation block not found"})
		return pd, nil
	}
	affBlock.Find("h3").Each(func(_ int, h *goquery.Selection) {
		department, organisation := splitHeading(h)
		pd.Affiliations = append(pd.Affiliations, Affiliation{
			Department:   department,
			Organisation: organisation,
		})
	})
	affBlock.Find("span.locationlabel").Each(func(i int, s *goquery.Selection) {
		if i < len(pd.Affiliations) {
			pd.Affiliations[i].Location = strings.TrimSpace(s.Text())
		}
	})
	return pd, nil
}

func findHomepage(doc *goquery.Document) string {
	label := doc.Find("td.homelabel").First()
	if label.Length() == 0 {
		return ""
	}
	href, _ := label.Next().Find("a[href]").First().Attr("href")
	return href
}

// splitHeading separates a heading into (department, organisation) at
// its first line break. A heading without a break is all organisation.
func splitHeading(h *goquery.Selection) (string, string) {
	var before, after strings.Builder
	sawBreak := false
	h.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "br" {
			sawBreak = true
			return
		}
		if sawBreak {
			after.WriteString(c.Text())
		} else {
			before.WriteString(c.Text())
		}
	})
	if !sawBreak {
		return "", strings.TrimSpace(before.String())
	}
	return strings.TrimSpace(before.String()), strings.TrimSpace(after.String())
}

// Abstract extracts the abstract body from a paper page. The second
// return reports whether the page had one.
func Abstract(doc *goquery.Document) (string, bool) {
	body := doc.Find("div#abstract-body").First()
	if body.Length() == 0 {
		return "", false
	}
	text := strings.TrimSpace(body.Text())
	return text, text != ""
}
