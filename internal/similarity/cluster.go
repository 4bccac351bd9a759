// Package similarity groups near-identical titles so the entity builder
// can collapse fuzzy duplicates. The scoring function is pluggable; the
// default is Jaro-Winkler over token-sorted lowercase text.
package similarity

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

// DefaultThreshold is the similarity ratio above which two titles are
// considered the same work.
const DefaultThreshold = 0.95

// Scorer reports the similarity of two strings in [0, 1].
type Scorer interface {
	Score(a, b string) float64
}

// JaroWinkler scores token-sorted, lowercased strings with Jaro-Winkler
// distance, which tolerates word reordering and small edits.
type JaroWinkler struct{}

// Score implements Scorer.
func (JaroWinkler) Score(a, b string) float64 {
	return matchr.JaroWinkler(tokenSort(a), tokenSort(b), false)
}

func tokenSort(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	sort.Strings(fields)
	return strings.Join(fields, " ")
}

// Clusterer groups strings whose pairwise similarity meets a threshold.
type Clusterer struct {
	scorer    Scorer
	threshold float64
}

// NewClusterer builds a Clusterer. A nil scorer selects JaroWinkler and a
// non-positive threshold selects DefaultThreshold.
func NewClusterer(scorer Scorer, threshold float64) *Clusterer {
	if scorer == nil {
		scorer = JaroWinkler{}
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Clusterer{scorer: scorer, threshold: threshold}
}

// Representatives clusters items transitively at the threshold and maps
// every item to its cluster representative. The representative is the
// earliest item of the cluster in input order, so exact duplicates and
// near-duplicates all resolve to the first spelling seen.
func (c *Clusterer) Representatives(items []string) map[string]string {
	distinct := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		distinct = append(distinct, it)
	}

	parent := make([]int, len(distinct))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		// keep the smaller index as root so first-seen wins
		if ra > rb {
			ra, rb = rb, ra
		}
		parent[rb] = ra
	}

	for i := 0; i < len(distinct); i++ {
		for j := i + 1; j < len(distinct); j++ {
			if c.scorer.Score(distinct[i], distinct[j]) >= c.threshold {
				union(i, j)
			}
		}
	}

	reps := make(map[string]string, len(items))
	for i, it := range distinct {
		reps[it] = distinct[find(i)]
	}
	return reps
}
