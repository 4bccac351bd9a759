package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepresentativesCollapsesNearDuplicates(t *testing.T) {
	t.Parallel()

	c := NewClusterer(nil, 0)
	reps := c.Representatives([]string{
		"Growth And Inequality",
		"Growth and Inequality ",
		"Monetary Policy In Small Open Economies",
	})

	require.Len(t, reps, 3)
	assert.Equal(t, "Growth And Inequality", reps["Growth And Inequality"])
	assert.Equal(t, "Growth And Inequality", reps["Growth and Inequality "])
	assert.Equal(t,
		"Monetary Policy In Small Open Economies",
		reps["Monetary Policy In Small Open Economies"])
}

func TestRepresentativesTransitive(t *testing.T) {
	t.Parallel()

	// b is within the threshold of both a and c; all three must share
	// one representative even if a and c alone would not match.
	c := NewClusterer(pairScorer{
		{"a", "b"}: 0.96,
		{"b", "c"}: 0.97,
		{"a", "c"}: 0.50,
	}, 0.95)

	reps := c.Representatives([]string{"a", "b", "c"})
	assert.Equal(t, "a", reps["a"])
	assert.Equal(t, "a", reps["b"])
	assert.Equal(t, "a", reps["c"])
}

func TestRepresentativesKeepsDistinctTitles(t *testing.T) {
	t.Parallel()

	c := NewClusterer(nil, 0.95)
	reps := c.Representatives([]string{"Trade And Labor Markets", "Fiscal Multipliers"})
	assert.Equal(t, "Trade And Labor Markets", reps["Trade And Labor Markets"])
	assert.Equal(t, "Fiscal Multipliers", reps["Fiscal Multipliers"])
}

type pairScorer map[[2]string]float64

func (p pairScorer) Score(a, b string) float64 {
	if v, ok := p[[2]string{a, b}]; ok {
		return v
	}
	return p[[2]string{b, a}]
}
