// Package markers detects informal documentation annotations such as
// "# @doc_me(category=\"core\")" above a declaration or inside its docstring.
package markers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Source records which annotation surface produced a mark.
type Source string

const (
	SourceNone      Source = ""
	SourceComment   Source = "comment"
	SourceDocstring Source = "docstring"
	SourceDecorator Source = "decorator"
)

// Well-known parameter keys.
const (
	KeyDescription = "description"
	KeyCategory    = "category"
	KeyPriority    = "priority"
)

// ErrAnnotationSyntax marks a malformed marker parameter list.
var ErrAnnotationSyntax = errors.New("annotation syntax error")

// SyntaxError describes a malformed marker. Line is the 1-based source line,
// or the declaration line when the marker sits inside a docstring.
type SyntaxError struct {
	Source Source
	Line   int
	Text   string
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s marker on line %d: %s: %q", e.Source, e.Line, e.Reason, e.Text)
}

func (e *SyntaxError) Unwrap() error {
	return ErrAnnotationSyntax
}

// AnnotationMark is the result of resolving one or more annotation sources.
// Params holds every key=value pair as raw text; typed accessors interpret
// the well-known keys.
type AnnotationMark struct {
	Marked  bool
	Sources []Source
	Params  map[string]string
}

// Unmarked is the zero result.
var Unmarked = AnnotationMark{}

// NewMark builds a marked AnnotationMark from one source.
func NewMark(src Source, params map[string]string) AnnotationMark {
	m := AnnotationMark{Marked: true, Sources: []Source{src}, Params: map[string]string{}}
	for k, v := range params {
		m.Params[k] = v
	}
	return m
}

// Get returns a raw parameter value.
func (m AnnotationMark) Get(key string) (string, bool) {
	v, ok := m.Params[key]
	return v, ok
}

// Description returns the description parameter, or "".
func (m AnnotationMark) Description() string {
	return m.Params[KeyDescription]
}

// Category returns the category parameter and whether it was set.
func (m AnnotationMark) Category() (string, bool) {
	v, ok := m.Params[KeyCategory]
	return v, ok
}

// Priority parses the priority parameter as an integer. Absent or
// unparsable values yield 0.
func (m AnnotationMark) Priority() int {
	v, ok := m.Params[KeyPriority]
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}

// HasSource reports whether src contributed to the mark.
func (m AnnotationMark) HasSource(src Source) bool {
	for _, s := range m.Sources {
		if s == src {
			return true
		}
	}
	return false
}

// Merge combines two marks. Marked is true if either matched; for every key
// both set, the override value wins. Only marked inputs contribute params.
func Merge(base, override AnnotationMark) AnnotationMark {
	out := AnnotationMark{Marked: base.Marked || override.Marked}
	if !out.Marked {
		return Unmarked
	}
	out.Params = map[string]string{}
	for _, in := range []AnnotationMark{base, override} {
		if !in.Marked {
			continue
		}
		out.Sources = append(out.Sources, in.Sources...)
		for k, v := range in.Params {
			out.Params[k] = v
		}
	}
	return out
}
