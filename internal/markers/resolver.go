package markers

import (
	"errors"
	"regexp"
	"strings"
)

// Form is one marker token in the vocabulary. AllowsParams enables the
// parenthesized "@token(key=value, ...)" form.
type Form struct {
	Token        string
	AllowsParams bool
}

// Vocabulary is an ordered list of forms. When a line contains several
// tokens, a parameterized occurrence beats a plain one and the earliest form
// in the list wins among equals.
type Vocabulary []Form

// DefaultVocabulary is the recognized marker set.
var DefaultVocabulary = Vocabulary{
	{Token: "doc_me", AllowsParams: true},
	{Token: "document", AllowsParams: true},
	{Token: "api", AllowsParams: true},
	{Token: "doc", AllowsParams: true},
	{Token: "public", AllowsParams: false},
}

// CommentPrefix starts a line comment in the analyzed language.
const CommentPrefix = "#"

var paramPattern = regexp.MustCompile(`(\w+)\s*=\s*(?:"([^"]*)"|'([^']*)'|([^,\s]+))`)

type compiledForm struct {
	Form
	re *regexp.Regexp
}

// Resolver matches marker tokens in comment and docstring lines.
type Resolver struct {
	forms []compiledForm
}

// NewResolver compiles a vocabulary. Tokens match case-insensitively and only
// as whole words.
func NewResolver(vocab Vocabulary) *Resolver {
	r := &Resolver{forms: make([]compiledForm, 0, len(vocab))}
	for _, f := range vocab {
		re := regexp.MustCompile(`(?i)(?:^|[^\w@])@` + regexp.QuoteMeta(f.Token) + `\b`)
		r.forms = append(r.forms, compiledForm{Form: f, re: re})
	}
	return r
}

// MatchLine tests one line against the vocabulary. It returns the parsed
// params and true on a match. A parameterized occurrence outranks a plain
// one anywhere on the line; vocabulary order breaks ties within each group.
// A malformed parameter list yields a *SyntaxError and no match.
func (r *Resolver) MatchLine(line string) (map[string]string, bool, error) {
	plain := false
	for _, f := range r.forms {
		for _, loc := range f.re.FindAllStringIndex(line, -1) {
			plain = true
			if !f.AllowsParams {
				continue
			}
			rest := strings.TrimLeft(line[loc[1]:], " \t")
			if !strings.HasPrefix(rest, "(") {
				continue
			}
			inner, reason := scanParenArgs(rest)
			if reason != "" {
				return nil, false, &SyntaxError{Text: strings.TrimSpace(line), Reason: reason}
			}
			return parseParams(inner), true, nil
		}
	}
	if plain {
		return map[string]string{}, true, nil
	}
	return nil, false, nil
}

// scanParenArgs returns the text between the opening parenthesis at s[0] and
// its matching close, honoring quotes. A non-empty reason reports why the
// list is malformed.
func scanParenArgs(s string) (string, string) {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return s[1:i], ""
			}
		}
	}
	if quote != 0 {
		return "", "unterminated quote"
	}
	return "", "unclosed parenthesis"
}

func parseParams(inner string) map[string]string {
	params := map[string]string{}
	for _, m := range paramPattern.FindAllStringSubmatch(inner, -1) {
		value := m[2]
		switch {
		case m[3] != "":
			value = m[3]
		case m[4] != "":
			value = m[4]
		}
		params[m[1]] = value
	}
	return params
}

// CommentLine is a leading comment with its 1-based line number and the
// text after the comment prefix.
type CommentLine struct {
	Line int
	Text string
}

// LeadingComments walks upward from the line above declLine (1-based),
// skipping blank lines and lines for which skip reports true (decorators of
// the declaration), and collects comment lines until the first other line.
// skip may be nil. The result is in top-to-bottom order.
func LeadingComments(lines []string, declLine int, skip func(line int) bool) []CommentLine {
	var collected []CommentLine
	for i := declLine - 2; i >= 0 && i < len(lines); i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" || (skip != nil && skip(i+1)) {
			continue
		}
		if !strings.HasPrefix(line, CommentPrefix) {
			break
		}
		collected = append(collected, CommentLine{
			Line: i + 1,
			Text: strings.TrimSpace(strings.TrimPrefix(line, CommentPrefix)),
		})
	}
	for l, r := 0, len(collected)-1; l < r; l, r = l+1, r-1 {
		collected[l], collected[r] = collected[r], collected[l]
	}
	return collected
}

// ScanComments returns the mark from the first comment line that matches.
// Later lines are not inspected. A malformed first match leaves the source
// unmarked and returns the syntax error.
func (r *Resolver) ScanComments(comments []CommentLine) (AnnotationMark, error) {
	for _, c := range comments {
		params, ok, err := r.MatchLine(c.Text)
		if err != nil {
			return Unmarked, withSource(err, SourceComment, c.Line)
		}
		if ok {
			return NewMark(SourceComment, params), nil
		}
	}
	return Unmarked, nil
}

// ScanDocstring looks for a marker anywhere in a docstring body. declLine is
// used to locate syntax errors.
func (r *Resolver) ScanDocstring(doc string, declLine int) (AnnotationMark, error) {
	if doc == "" {
		return Unmarked, nil
	}
	for _, line := range strings.Split(doc, "\n") {
		params, ok, err := r.MatchLine(line)
		if err != nil {
			return Unmarked, withSource(err, SourceDocstring, declLine)
		}
		if ok {
			return NewMark(SourceDocstring, params), nil
		}
	}
	return Unmarked, nil
}

func withSource(err error, src Source, line int) error {
	var se *SyntaxError
	if errors.As(err, &se) {
		se.Source = src
		se.Line = line
		return se
	}
	return err
}

// Resolution is the outcome of resolving both annotation surfaces of one
// declaration.
type Resolution struct {
	Mark      AnnotationMark
	Comment   AnnotationMark
	Docstring AnnotationMark
	Errors    []error
}

// Resolve scans the comments above declLine and the docstring, then merges
// them with the docstring taking precedence for keys both set. skip is passed
// to LeadingComments.
func (r *Resolver) Resolve(lines []string, declLine int, doc string, skip func(line int) bool) Resolution {
	var res Resolution

	comment, err := r.ScanComments(LeadingComments(lines, declLine, skip))
	if err != nil {
		res.Errors = append(res.Errors, err)
	}
	fromDoc, err := r.ScanDocstring(doc, declLine)
	if err != nil {
		res.Errors = append(res.Errors, err)
	}

	res.Comment = comment
	res.Docstring = fromDoc
	res.Mark = Merge(comment, fromDoc)
	return res
}
