// Package entity flattens raw scraped records into the normalized
// relational entities that get persisted: papers, authorships, and the
// author row with its affiliations.
package entity

import "strconv"

// Paper is identified by its URL-derived path. Year is nil for papers
// the source marks "undated".
type Paper struct {
	Path  string
	Title string
	Year  *int
}

// YearString renders the year for storage display, matching the
// source's convention for missing years.
func (p Paper) YearString() string {
	if p.Year == nil {
		return "None"
	}
	return strconv.Itoa(*p.Year)
}

// Authorship joins one paper to one parsed author name.
// Identity is (PaperPath, FirstName, LastName).
type Authorship struct {
	PaperPath  string
	PaperTitle string
	Author     string
	FirstName  string
	LastName   string
}

// Affiliation is one positional affiliation entry for an author.
type Affiliation struct {
	Position     int
	Department   string
	Organisation string
	Location     string
}

// Author is the profile's self-reported identity. The name pair is the
// (deliberately weak) natural key; ProfilePath is the stronger source
// identity.
type Author struct {
	FirstName    string
	MiddleName   string
	LastName     string
	ProfilePath  string
	RepecShortID string
	Twitter      string
	Homepage     string
	Affiliations []Affiliation
}

// Abstract is the optional abstract text for one paper. Text is nil
// when the paper page had no abstract body.
type Abstract struct {
	PaperPath string
	Text      *string
}

// Batch is everything produced from one scraped profile.
type Batch struct {
	Author      Author
	Papers      []Paper
	Authorships []Authorship
}
