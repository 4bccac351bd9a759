package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  growth and inequality  ", "Growth And Inequality"},
		{"ÉMILIE DUFLO", "Emilie Duflo"},
		{"Jürgen Müller", "Jurgen Muller"},
		{"o'neill, j.", "O'Neill, J."},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Normalize(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"", "Aaberge, Rolf ", "  JOSÉ  maría ", "Growth And Inequality"}
	for _, in := range inputs {
		once := Normalize(in)
		require.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestReverseCommaName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "John Smith", ReverseCommaName("Smith, John"))
	assert.Equal(t, "John Smith", ReverseCommaName("John Smith"))
	assert.Equal(t, "", ReverseCommaName(""))
	assert.Equal(t, "Smith", ReverseCommaName("Smith,"))
}

func TestStandardizeKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "repec_short_id", StandardizeKey("RePEc Short-ID"))
	assert.Equal(t, "first_name", StandardizeKey("First Name"))
	assert.Equal(t, "twitter", StandardizeKey("Twitter: "))
	assert.Equal(t, "aff_organisation0", StandardizeKey("Aff_Organisation0"))
}

func TestSplitNameTokens(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"Jane", "Doe"}, SplitNameTokens("Jane Doe"))
	assert.Equal(t, []string{"Jane", "Van", "Der Berg"}, SplitNameTokens("Jane Van Der Berg"))
	assert.Empty(t, SplitNameTokens("   "))
}
