// Package docstring parses structured docstrings into sections.
//
// Two dialects are supported. ParseLabeled handles the label-per-line form
// (Args:, Returns:, Raises:, Examples:) and ParseBlocks handles the
// block-per-heading form (Parameters / Returns / Raises headings standing
// alone on a line). Both are pure functions producing the same Sections
// shape. Neither returns an error: malformed lines are dropped.
package docstring

import (
	"fmt"
	"regexp"
	"strings"
)

// Style selects a docstring dialect.
type Style string

const (
	StyleAuto   Style = "auto"
	StyleGoogle Style = "google" // label-per-line
	StyleNumpy  Style = "numpy"  // block-per-heading
)

// ParseStyle converts a configuration value into a Style.
func ParseStyle(s string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case StyleAuto, "":
		return StyleAuto, nil
	case StyleGoogle:
		return StyleGoogle, nil
	case StyleNumpy:
		return StyleNumpy, nil
	default:
		return "", fmt.Errorf("unknown docstring style %q (valid: auto, google, numpy)", s)
	}
}

// Sections is the structured form of a docstring.
type Sections struct {
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Params      []Param  `json:"params,omitempty" yaml:"params,omitempty"`
	Returns     *string  `json:"returns,omitempty" yaml:"returns,omitempty"`
	Raises      []Raise  `json:"raises,omitempty" yaml:"raises,omitempty"`
	Examples    []string `json:"examples,omitempty" yaml:"examples,omitempty"`
}

// IsZero reports whether nothing was extracted.
func (s Sections) IsZero() bool {
	return s.Description == "" && len(s.Params) == 0 && s.Returns == nil &&
		len(s.Raises) == 0 && len(s.Examples) == 0
}

// Param is one documented parameter.
type Param struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Description string `json:"description" yaml:"description"`
}

// Raise is one documented exception.
type Raise struct {
	Kind        string `json:"kind" yaml:"kind"`
	Description string `json:"description" yaml:"description"`
}

var underlinePattern = regexp.MustCompile(`^-{3,}$`)

// Parse dispatches to the dialect chosen by style. StyleAuto picks the
// block dialect when a known heading is followed by an underline row.
func Parse(doc string, style Style) Sections {
	switch style {
	case StyleNumpy:
		return ParseBlocks(doc)
	case StyleGoogle:
		return ParseLabeled(doc)
	default:
		if looksLikeBlocks(doc) {
			return ParseBlocks(doc)
		}
		return ParseLabeled(doc)
	}
}

func looksLikeBlocks(doc string) bool {
	lines := splitLines(doc)
	for i := 0; i+1 < len(lines); i++ {
		heading := strings.TrimSpace(lines[i])
		if _, ok := blockHeadings[strings.ToLower(heading)]; !ok {
			continue
		}
		if underlinePattern.MatchString(strings.TrimSpace(lines[i+1])) {
			return true
		}
	}
	return false
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Split(s, "\n")
}

func strPtr(s string) *string {
	return &s
}

// trimBlankEdges drops leading and trailing blank lines.
func trimBlankEdges(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}
