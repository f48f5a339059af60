package parsers

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// StructuralParseError reports a file that could not be turned into a
// usable syntax tree. Line is the first error location when known.
type StructuralParseError struct {
	Path string
	Line int
	Msg  string
}

func (e *StructuralParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d: %s", e.Path, e.Line, e.Msg)
	}
	return fmt.Sprintf("parse %s: %s", e.Path, e.Msg)
}

// treeSitterParser holds a grammar and produces syntax trees from it.
type treeSitterParser struct {
	language *sitter.Language
	lang     string
}

// newTreeSitterParser creates a new tree-sitter parser for the given language.
func newTreeSitterParser(language *sitter.Language, lang string) *treeSitterParser {
	return &treeSitterParser{
		language: language,
		lang:     lang,
	}
}

// syntaxTree is a parsed file plus the text it was built from. Callers must
// Close it.
type syntaxTree struct {
	tree   *sitter.Tree
	root   *sitter.Node
	source []byte
	lines  []string
}

func (t *syntaxTree) Close() {
	t.tree.Close()
}

// parse builds a syntax tree. Trees containing error or missing nodes are
// rejected with a StructuralParseError.
func (p *treeSitterParser) parse(filePath string, source []byte) (*syntaxTree, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(p.language); err != nil {
		return nil, &StructuralParseError{Path: filePath, Msg: fmt.Sprintf("load %s grammar: %v", p.lang, err)}
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, &StructuralParseError{Path: filePath, Msg: "parser returned no tree"}
	}

	root := tree.RootNode()
	if root.HasError() {
		line := firstErrorLine(root)
		tree.Close()
		return nil, &StructuralParseError{Path: filePath, Line: line, Msg: fmt.Sprintf("invalid %s syntax", p.lang)}
	}

	return &syntaxTree{
		tree:   tree,
		root:   root,
		source: source,
		lines:  strings.Split(string(source), "\n"),
	}, nil
}

// firstErrorLine returns the 1-based line of the first error or missing
// node, or 0 when none is found.
func firstErrorLine(root *sitter.Node) int {
	line := 0
	walkTree(root, func(n *sitter.Node) bool {
		if line > 0 {
			return false
		}
		if n.IsError() || n.IsMissing() {
			line = int(n.StartPosition().Row) + 1
			return false
		}
		return n.HasError()
	})
	return line
}

// extractNodeText extracts the text content of a tree-sitter node.
func extractNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// extractLines extracts source code lines from startLine to endLine (1-indexed).
func extractLines(lines []string, startLine, endLine int) string {
	if startLine < 1 || endLine < 1 || startLine > len(lines) {
		return ""
	}

	start := startLine - 1
	end := endLine
	if end > len(lines) {
		end = len(lines)
	}

	return strings.Join(lines[start:end], "\n")
}

// nodeSpan returns the 1-based line span of a node. A missing or inverted
// end collapses to a single line.
func nodeSpan(node *sitter.Node) (int, int) {
	start := int(node.StartPosition().Row) + 1
	end := int(node.EndPosition().Row) + 1
	if end < start {
		end = start
	}
	return start, end
}

// walkTree recursively walks a tree-sitter tree and calls the visitor for each node.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		walkTree(child, visitor)
	}
}

// namedChildren returns the named children of a node, skipping comments.
func namedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	var out []*sitter.Node
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil || child.Kind() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

// findChildByType finds the first child node with the given type.
func findChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == nodeType {
			return child
		}
	}
	return nil
}
