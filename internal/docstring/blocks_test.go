package docstring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for ParseBlocks and Parse:
// - Empty docstring yields zero Sections
// - No headings: whole text is the description
// - Parameters/Returns/Raises headings classified case-insensitively
// - Underline rows directly under a heading are ignored
// - "name : type, optional description" lines parsed
// - Indented lines continue the previous parameter description
// - Bracketed types keep their inner commas and spaces
// - Unknown headings split blocks but are discarded
// - First line is never a heading
// - Bare exception names with indented descriptions
// - Parse(StyleAuto) picks blocks when an underlined heading exists, labels otherwise
// - ParseStyle accepts known values and rejects unknown ones

const numpyDoc = `Compute the weighted mean.

Parameters
----------
values : list
    Input values.
weights : list, optional
    Per-value weights.
    Defaults to uniform.
scale : float, optional Multiplier applied last.

Returns
-------
float
    The weighted mean.

Raises
------
ValueError
    If the inputs differ in length.
ZeroDivisionError: If all weights are zero.

Notes
-----
Ignored entirely.
`

func TestParseBlocks_Empty(t *testing.T) {
	t.Parallel()

	assert.True(t, ParseBlocks("").IsZero())
}

func TestParseBlocks_NoHeadings(t *testing.T) {
	t.Parallel()

	s := ParseBlocks("Only a description.\nOn two lines.")
	assert.Equal(t, "Only a description.\nOn two lines.", s.Description)
	assert.Empty(t, s.Params)
	assert.Nil(t, s.Returns)
}

func TestParseBlocks_FullDocstring(t *testing.T) {
	t.Parallel()

	s := ParseBlocks(numpyDoc)

	assert.Equal(t, "Compute the weighted mean.", s.Description)

	require.Len(t, s.Params, 3)
	assert.Equal(t, Param{Name: "values", Type: "list", Description: "Input values."}, s.Params[0])
	assert.Equal(t, Param{Name: "weights", Type: "list", Description: "Per-value weights. Defaults to uniform."}, s.Params[1])
	assert.Equal(t, Param{Name: "scale", Type: "float", Description: "Multiplier applied last."}, s.Params[2])

	require.NotNil(t, s.Returns)
	assert.Equal(t, "float\n    The weighted mean.", *s.Returns)

	require.Len(t, s.Raises, 2)
	assert.Equal(t, Raise{Kind: "ValueError", Description: "If the inputs differ in length."}, s.Raises[0])
	assert.Equal(t, Raise{Kind: "ZeroDivisionError", Description: "If all weights are zero."}, s.Raises[1])

	assert.NotContains(t, s.Description, "Ignored")
}

func TestParseBlocks_BracketedTypes(t *testing.T) {
	t.Parallel()

	s := ParseBlocks(`Summary.

Parameters
----------
x : Dict[str, int]
    Mapping of counts.
y : int
z : Tuple[int, int], optional Pair of bounds.
w : int, default 5
`)

	require.Len(t, s.Params, 4)
	assert.Equal(t, Param{Name: "x", Type: "Dict[str, int]", Description: "Mapping of counts."}, s.Params[0])
	assert.Equal(t, Param{Name: "y", Type: "int"}, s.Params[1])
	assert.Equal(t, Param{Name: "z", Type: "Tuple[int, int]", Description: "Pair of bounds."}, s.Params[2])
	assert.Equal(t, Param{Name: "w", Type: "int", Description: "default 5"}, s.Params[3])
}

func TestParseBlocks_CaseInsensitiveHeading(t *testing.T) {
	t.Parallel()

	// "Returns" heading is capitalized; classification lowercases it.
	s := ParseBlocks("Summary.\nReturns\n    a value\n")
	require.NotNil(t, s.Returns)
	assert.Equal(t, "a value", *s.Returns)
}

func TestParseBlocks_FirstLineNeverHeading(t *testing.T) {
	t.Parallel()

	s := ParseBlocks("Returns\nsomething")
	assert.Equal(t, "Returns\nsomething", s.Description)
	assert.Nil(t, s.Returns)
}

func TestParse_AutoSelectsDialect(t *testing.T) {
	t.Parallel()

	blocks := Parse(numpyDoc, StyleAuto)
	assert.Len(t, blocks.Params, 3)

	labeled := Parse(googleDoc, StyleAuto)
	assert.Len(t, labeled.Params, 3)
	assert.Equal(t, "user_id", labeled.Params[0].Name)

	// Forced styles bypass detection
	forced := Parse(googleDoc, StyleNumpy)
	assert.Empty(t, forced.Params)
}

func TestParseStyle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Style
		wantErr bool
	}{
		{"", StyleAuto, false},
		{"auto", StyleAuto, false},
		{"Google", StyleGoogle, false},
		{" numpy ", StyleNumpy, false},
		{"sphinx", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStyle(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
