package docstring

import (
	"regexp"
	"strings"
)

// section is a state of the label-per-line machine.
type section int

const (
	sectionDescription section = iota
	sectionArgs
	sectionReturns
	sectionRaises
	sectionExamples
)

// labelTransitions maps an exact label line to the state it opens. Any label
// line closes the current state, whatever that state is.
var labelTransitions = map[string]section{
	"Args:":     sectionArgs,
	"Returns:":  sectionReturns,
	"Raises:":   sectionRaises,
	"Example:":  sectionExamples,
	"Examples:": sectionExamples,
}

var (
	argLinePattern   = regexp.MustCompile(`^(\w+)\s*(?:\(([^)]+)\))?\s*:\s*(.*)$`)
	raiseLinePattern = regexp.MustCompile(`^(\w+(?:\.\w+)*)\s*:\s*(.+)$`)
)

// labeledMachine accumulates content for the current state and flushes it
// into Sections on each transition.
type labeledMachine struct {
	state   section
	content []string
	out     Sections
}

// ParseLabeled parses a label-per-line docstring in a single pass with no
// backtracking. Content after the last label belongs to that label's section.
func ParseLabeled(doc string) Sections {
	if strings.TrimSpace(doc) == "" {
		return Sections{}
	}

	m := &labeledMachine{state: sectionDescription}
	for _, raw := range splitLines(strings.TrimSpace(doc)) {
		line := strings.TrimSpace(raw)
		if next, ok := labelTransitions[line]; ok {
			m.transition(next)
			continue
		}
		m.content = append(m.content, line)
	}
	m.flush()
	return m.out
}

func (m *labeledMachine) transition(next section) {
	m.flush()
	m.state = next
	m.content = nil
}

func (m *labeledMachine) flush() {
	switch m.state {
	case sectionDescription:
		if text := strings.TrimSpace(strings.Join(m.content, "\n")); text != "" {
			m.out.Description = text
		}
	case sectionArgs:
		m.out.Params = append(m.out.Params, parseArgLines(m.content)...)
	case sectionReturns:
		if text := strings.TrimSpace(strings.Join(m.content, "\n")); text != "" {
			m.out.Returns = strPtr(text)
		}
	case sectionRaises:
		m.out.Raises = append(m.out.Raises, parseRaiseLines(m.content)...)
	case sectionExamples:
		m.out.Examples = append(m.out.Examples, trimBlankEdges(m.content)...)
	}
}

// parseArgLines reads "name (type): description" lines. A line that does
// not match continues the previous parameter's description.
func parseArgLines(lines []string) []Param {
	var params []Param
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if match := argLinePattern.FindStringSubmatch(line); match != nil {
			params = append(params, Param{
				Name:        match[1],
				Type:        strings.TrimSpace(match[2]),
				Description: strings.TrimSpace(match[3]),
			})
			continue
		}
		if len(params) == 0 {
			continue
		}
		last := &params[len(params)-1]
		if last.Description == "" {
			last.Description = line
		} else {
			last.Description += " " + line
		}
	}
	return params
}

// parseRaiseLines reads "ExceptionName: description" lines.
func parseRaiseLines(lines []string) []Raise {
	var raises []Raise
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if match := raiseLinePattern.FindStringSubmatch(line); match != nil {
			raises = append(raises, Raise{Kind: match[1], Description: strings.TrimSpace(match[2])})
		}
	}
	return raises
}
