package docstring

import (
	"regexp"
	"strings"
)

// blockHeadings classifies a heading (lowercased) into its section. Other
// capitalized single-word headings still split blocks but are discarded.
var blockHeadings = map[string]section{
	"parameters": sectionArgs,
	"returns":    sectionReturns,
	"raises":     sectionRaises,
	"examples":   sectionExamples,
	"example":    sectionExamples,
}

var (
	headingPattern    = regexp.MustCompile(`^[A-Z][a-z]+$`)
	numpyParamPattern = regexp.MustCompile(`^(\w+)\s*:\s*(\S.*)$`)
	optionalPattern   = regexp.MustCompile(`^,\s*optional\b`)
	bareRaisePattern  = regexp.MustCompile(`^(\w+(?:\.\w+)*)$`)
)

type block struct {
	heading string
	body    []string
}

// ParseBlocks parses a block-per-heading docstring. A heading is a line that
// is a single capitalized word standing alone, never the first line. Text
// before the first heading is the description.
func ParseBlocks(doc string) Sections {
	if strings.TrimSpace(doc) == "" {
		return Sections{}
	}

	lines := splitLines(strings.Trim(doc, "\n"))
	var (
		description []string
		blocks      []block
	)
	for i, raw := range lines {
		trimmed := strings.TrimSpace(raw)
		if i > 0 && headingPattern.MatchString(trimmed) {
			blocks = append(blocks, block{heading: strings.ToLower(trimmed)})
			continue
		}
		if len(blocks) == 0 {
			description = append(description, raw)
			continue
		}
		cur := &blocks[len(blocks)-1]
		if len(cur.body) == 0 && underlinePattern.MatchString(trimmed) {
			continue
		}
		cur.body = append(cur.body, raw)
	}

	out := Sections{Description: strings.TrimSpace(strings.Join(description, "\n"))}
	for _, b := range blocks {
		kind, ok := blockHeadings[b.heading]
		if !ok {
			continue
		}
		switch kind {
		case sectionArgs:
			out.Params = append(out.Params, parseNumpyParams(b.body)...)
		case sectionReturns:
			if text := strings.TrimSpace(strings.Join(b.body, "\n")); text != "" {
				out.Returns = strPtr(text)
			}
		case sectionRaises:
			out.Raises = append(out.Raises, parseNumpyRaises(b.body)...)
		case sectionExamples:
			for _, l := range trimBlankEdges(b.body) {
				out.Examples = append(out.Examples, strings.TrimSpace(l))
			}
		}
	}
	return out
}

func isIndented(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}

// parseNumpyParams reads "name : type[, optional] description" lines. The
// type ends at the first comma or space outside brackets, so Dict[str, int]
// stays whole. Indented lines under a parameter continue its description;
// anything else that does not match is dropped.
func parseNumpyParams(body []string) []Param {
	var params []Param
	for _, raw := range body {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if !isIndented(raw) {
			if match := numpyParamPattern.FindStringSubmatch(line); match != nil {
				typ, desc := splitNumpyType(match[2])
				params = append(params, Param{Name: match[1], Type: typ, Description: desc})
			}
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

func splitNumpyType(rest string) (typ, desc string) {
	depth, end := 0, len(rest)
scan:
	for i, r := range rest {
		switch r {
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			if depth > 0 {
				depth--
			}
		case ',', ' ', '\t':
			if depth == 0 {
				end = i
				break scan
			}
		}
	}

	tail := rest[end:]
	if loc := optionalPattern.FindStringIndex(tail); loc != nil {
		tail = tail[loc[1]:]
	}
	tail = strings.TrimPrefix(strings.TrimSpace(tail), ",")
	return rest[:end], strings.TrimSpace(tail)
}

// parseNumpyRaises accepts "Name: description" on one line, or a bare
// exception name followed by indented description lines.
func parseNumpyRaises(body []string) []Raise {
	var raises []Raise
	for _, raw := range body {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if !isIndented(raw) {
			if match := raiseLinePattern.FindStringSubmatch(line); match != nil {
				raises = append(raises, Raise{Kind: match[1], Description: strings.TrimSpace(match[2])})
			} else if match := bareRaisePattern.FindStringSubmatch(line); match != nil {
				raises = append(raises, Raise{Kind: match[1]})
			}
			continue
		}
		if len(raises) == 0 {
			continue
		}
		last := &raises[len(raises)-1]
		if last.Description == "" {
			last.Description = line
		} else {
			last.Description += " " + line
		}
	}
	return raises
}
