package docstring

import "strings"

// Clean normalizes raw docstring text: tabs become spaces, the common
// indentation of every line after the first is removed, the first line is
// left-trimmed, and leading/trailing blank lines are dropped.
func Clean(raw string) string {
	if raw == "" {
		return ""
	}
	lines := splitLines(strings.ReplaceAll(raw, "\t", "        "))

	margin := -1
	for _, line := range lines[1:] {
		content := strings.TrimLeft(line, " ")
		if content == "" {
			continue
		}
		indent := len(line) - len(content)
		if margin < 0 || indent < margin {
			margin = indent
		}
	}

	lines[0] = strings.TrimLeft(lines[0], " ")
	if margin > 0 {
		for i := 1; i < len(lines); i++ {
			if len(lines[i]) >= margin {
				lines[i] = lines[i][margin:]
			} else {
				lines[i] = strings.TrimLeft(lines[i], " ")
			}
		}
	}
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.Join(trimBlankEdges(lines), "\n")
}
