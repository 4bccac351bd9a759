// Package textnorm canonicalizes free-text scraped from profile pages.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Normalize decomposes accented characters, drops non-ASCII residue,
// lowercases, trims, and title-cases each word. It is idempotent and
// returns "" for "".
func Normalize(s string) string {
	folded, _, err := transform.String(asciiFold, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return titleCase(strings.TrimSpace(strings.ToLower(b.String())))
}

// titleCase upper-cases the first letter of every word, where a word
// boundary is any non-letter rune. Internal whitespace is preserved.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}

// ReverseCommaName rewrites "Last, First" citation-style names as
// "First Last". Text without a comma is returned unchanged. Only the
// first comma is meaningful.
func ReverseCommaName(s string) string {
	i := strings.Index(s, ",")
	if i < 0 {
		return s
	}
	given := strings.TrimSpace(s[i+1:])
	surname := strings.TrimSpace(s[:i])
	if given == "" {
		return surname
	}
	return given + " " + surname
}

// StandardizeKey maps a personal-details label onto a stable column
// name: lowercase, punctuation to spaces, whitespace runs to a single
// underscore, no trailing underscore.
func StandardizeKey(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), "_")
}

// SplitNameTokens splits a normalized name into at most three tokens,
// folding everything past the second whitespace run into the final token.
func SplitNameTokens(name string) []string {
	fields := strings.Fields(name)
	if len(fields) <= 3 {
		return fields
	}
	return []string{fields[0], fields[1], strings.Join(fields[2:], " ")}
}
