package markers

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Resolver:
// - Every plain marker in the vocabulary matches
// - Parameterized markers extract key="value" pairs, bare values and single quotes
// - priority parses as int, defaults to 0 when absent or unparsable
// - Arbitrary extension keys are kept as strings
// - Matching is case-insensitive
// - Tokens must be whole words (@doc does not match @docs, @doc_me_not, user@doc)
// - @public ignores a parenthesized list
// - Unclosed parens and unterminated quotes return ErrAnnotationSyntax
// - LeadingComments walks upward, skips blanks, stops at code, returns top-to-bottom
// - ScanComments: first matching comment line wins
// - ScanDocstring finds a marker anywhere in the body
// - Resolve: docstring params override comment params; Marked is OR-combined
// - Resolve: malformed comment marker leaves that source unmarked, docstring still counts
// - Vocabulary order decides which parameterized token wins on a shared line (permutation)
// - A parameterized marker outranks a plain one on the same line
// - Leading comment walk passes over decorator lines

func TestMatchLine_PlainMarkers(t *testing.T) {
	t.Parallel()

	r := NewResolver(DefaultVocabulary)
	for _, line := range []string{"@doc", "@doc_me", "@document", "@api", "@public", "see @api here"} {
		params, ok, err := r.MatchLine(line)
		require.NoError(t, err, line)
		assert.True(t, ok, line)
		assert.Empty(t, params, line)
	}
}

func TestMatchLine_Parameterized(t *testing.T) {
	t.Parallel()

	r := NewResolver(DefaultVocabulary)

	params, ok, err := r.MatchLine(`@doc_me(description="d", category="c", priority=2)`)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"description": "d", "category": "c", "priority": "2"}, params)

	params, ok, err = r.MatchLine(`@api (category='net, io', owner="team-a", priority="7")`)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "net, io", params["category"])
	assert.Equal(t, "team-a", params["owner"])

	mark := NewMark(SourceComment, params)
	assert.Equal(t, 7, mark.Priority())

	params, ok, err = r.MatchLine(`@doc()`)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, params)
}

func TestAnnotationMark_Priority(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, NewMark(SourceComment, nil).Priority())
	assert.Equal(t, 0, NewMark(SourceComment, map[string]string{"priority": "high"}).Priority())
	assert.Equal(t, -3, NewMark(SourceComment, map[string]string{"priority": " -3 "}).Priority())
}

func TestMatchLine_CaseInsensitive(t *testing.T) {
	t.Parallel()

	r := NewResolver(DefaultVocabulary)
	params, ok, err := r.MatchLine(`@DOC_ME(Category="x")`)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", params["Category"])
}

func TestMatchLine_WholeWordsOnly(t *testing.T) {
	t.Parallel()

	r := NewResolver(DefaultVocabulary)
	for _, line := range []string{"@docs", "@doc_me_not", "mail user@doc now", "@apis", "documentation", "doc_me"} {
		_, ok, err := r.MatchLine(line)
		require.NoError(t, err, line)
		assert.False(t, ok, line)
	}
}

func TestMatchLine_PublicIgnoresParams(t *testing.T) {
	t.Parallel()

	r := NewResolver(DefaultVocabulary)
	params, ok, err := r.MatchLine(`@public(category="x`)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, params)
}

func TestMatchLine_SyntaxErrors(t *testing.T) {
	t.Parallel()

	r := NewResolver(DefaultVocabulary)
	for _, line := range []string{`@doc(description="oops)`, `@doc_me(category="c"`, `@api(description='x`} {
		_, ok, err := r.MatchLine(line)
		assert.False(t, ok, line)
		require.Error(t, err, line)
		assert.True(t, errors.Is(err, ErrAnnotationSyntax), line)
	}
}

func TestLeadingComments(t *testing.T) {
	t.Parallel()

	src := strings.Split(`import os

x = 1
# first
#   second

# third
def target():
    pass`, "\n")

	comments := LeadingComments(src, 8, nil)
	require.Len(t, comments, 3)
	assert.Equal(t, CommentLine{Line: 4, Text: "first"}, comments[0])
	assert.Equal(t, CommentLine{Line: 5, Text: "second"}, comments[1])
	assert.Equal(t, CommentLine{Line: 7, Text: "third"}, comments[2])

	assert.Empty(t, LeadingComments(src, 1, nil))
	assert.Empty(t, LeadingComments(src, 3, nil))
}

func TestScanComments_FirstMatchWins(t *testing.T) {
	t.Parallel()

	r := NewResolver(DefaultVocabulary)
	mark, err := r.ScanComments([]CommentLine{
		{Line: 1, Text: "plain note"},
		{Line: 2, Text: `@doc(category="first")`},
		{Line: 3, Text: `@doc_me(category="second")`},
	})
	require.NoError(t, err)
	assert.True(t, mark.Marked)
	cat, ok := mark.Category()
	assert.True(t, ok)
	assert.Equal(t, "first", cat)
	assert.True(t, mark.HasSource(SourceComment))
}

func TestScanDocstring(t *testing.T) {
	t.Parallel()

	r := NewResolver(DefaultVocabulary)
	mark, err := r.ScanDocstring("Summary.\n\n@doc_me(description=\"from doc\", priority=1)\n", 10)
	require.NoError(t, err)
	assert.True(t, mark.Marked)
	assert.Equal(t, "from doc", mark.Description())
	assert.Equal(t, 1, mark.Priority())

	mark, err = r.ScanDocstring("", 10)
	require.NoError(t, err)
	assert.False(t, mark.Marked)
}

func TestResolve_DocstringTakesPrecedence(t *testing.T) {
	t.Parallel()

	r := NewResolver(DefaultVocabulary)
	src := strings.Split(`# @doc_me(description="comment", category="from-comment", owner="ops")
def f():
    """Body.

    @doc(category="from-doc", priority=4)
    """`, "\n")

	res := r.Resolve(src, 2, "Body.\n\n@doc(category=\"from-doc\", priority=4)", nil)
	require.Empty(t, res.Errors)
	assert.True(t, res.Mark.Marked)

	cat, _ := res.Mark.Category()
	assert.Equal(t, "from-doc", cat)
	assert.Equal(t, 4, res.Mark.Priority())
	assert.Equal(t, "comment", res.Mark.Description())
	owner, _ := res.Mark.Get("owner")
	assert.Equal(t, "ops", owner)
	assert.True(t, res.Mark.HasSource(SourceComment))
	assert.True(t, res.Mark.HasSource(SourceDocstring))
}

func TestResolve_MarkedIsOR(t *testing.T) {
	t.Parallel()

	r := NewResolver(DefaultVocabulary)

	onlyComment := r.Resolve([]string{"# @api", "def f(): pass"}, 2, "no marker", nil)
	assert.True(t, onlyComment.Mark.Marked)
	assert.False(t, onlyComment.Docstring.Marked)

	onlyDoc := r.Resolve([]string{"def f(): pass"}, 1, "@public", nil)
	assert.True(t, onlyDoc.Mark.Marked)
	assert.False(t, onlyDoc.Comment.Marked)

	neither := r.Resolve([]string{"# note", "def f(): pass"}, 2, "plain", nil)
	assert.False(t, neither.Mark.Marked)
}

func TestResolve_MalformedCommentIsUnmarked(t *testing.T) {
	t.Parallel()

	r := NewResolver(DefaultVocabulary)
	res := r.Resolve([]string{`# @doc(category="broken`, "def f(): pass"}, 2, "", nil)
	assert.False(t, res.Mark.Marked)
	require.Len(t, res.Errors, 1)

	var se *SyntaxError
	require.True(t, errors.As(res.Errors[0], &se))
	assert.Equal(t, SourceComment, se.Source)
	assert.Equal(t, 1, se.Line)

	res = r.Resolve([]string{`# @doc(category="broken`, "def f(): pass"}, 2, "@doc_me", nil)
	assert.True(t, res.Mark.Marked)
	assert.Len(t, res.Errors, 1)
}

func TestVocabularyOrderIsPrecedence(t *testing.T) {
	t.Parallel()

	line := `@api(category="first") @doc_me(category="second")`

	params, ok, err := NewResolver(DefaultVocabulary).MatchLine(line)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", params["category"])

	permuted := Vocabulary{
		{Token: "api", AllowsParams: true},
		{Token: "doc_me", AllowsParams: true},
	}
	params, ok, err = NewResolver(permuted).MatchLine(line)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "first", params["category"])
}

func TestMatchLine_ParameterizedOutranksPlain(t *testing.T) {
	t.Parallel()

	r := NewResolver(DefaultVocabulary)
	for _, line := range []string{
		`@api @doc(category="x", priority=3)`,
		`@doc_me then @doc(category="x", priority=3)`,
		`@public @api(category="x", priority=3)`,
	} {
		params, ok, err := r.MatchLine(line)
		require.NoError(t, err, line)
		require.True(t, ok, line)
		assert.Equal(t, "x", params["category"], line)
		assert.Equal(t, "3", params["priority"], line)
	}

	// Same token twice: the parameterized occurrence is used
	params, ok, err := r.MatchLine(`@doc_me see also @doc_me(category="y")`)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "y", params["category"])

	// Plain tokens only still match with no params
	params, ok, err = r.MatchLine(`@api @public`)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, params)
}

func TestLeadingComments_SkipsDecoratorLines(t *testing.T) {
	t.Parallel()

	src := strings.Split(`import os

# above
@staticmethod
# between
@cache
def target():
    pass`, "\n")

	decorators := func(line int) bool { return line == 4 || line == 6 }
	comments := LeadingComments(src, 7, decorators)
	require.Len(t, comments, 2)
	assert.Equal(t, CommentLine{Line: 3, Text: "above"}, comments[0])
	assert.Equal(t, CommentLine{Line: 5, Text: "between"}, comments[1])

	// Without the filter the walk stops at the decorator
	assert.Empty(t, LeadingComments(src, 7, nil))
}

func TestMerge(t *testing.T) {
	t.Parallel()

	a := NewMark(SourceDecorator, map[string]string{"category": "a", "priority": "1"})
	b := NewMark(SourceComment, map[string]string{"category": "b"})

	m := Merge(a, b)
	cat, _ := m.Category()
	assert.Equal(t, "b", cat)
	assert.Equal(t, 1, m.Priority())
	assert.Equal(t, []Source{SourceDecorator, SourceComment}, m.Sources)

	assert.False(t, Merge(Unmarked, Unmarked).Marked)
	assert.Equal(t, a.Params, Merge(a, Unmarked).Params)
}
