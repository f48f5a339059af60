package parsers

import (
	"errors"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/mvp-joe/autodoc/internal/docstring"
	"github.com/mvp-joe/autodoc/internal/indexer/extraction"
	"github.com/mvp-joe/autodoc/internal/markers"
	"github.com/mvp-joe/autodoc/internal/policy"
)

// decoratorToken is the decorator name that opts a declaration in.
const decoratorToken = "doc_me"

// Options configure a PythonParser.
type Options struct {
	// DocstringStyle selects the section dialect. Empty means auto.
	DocstringStyle docstring.Style
	// CommentMarkers enables the leading-comment and docstring marker scan.
	CommentMarkers bool
	// Vocabulary overrides markers.DefaultVocabulary when non-nil.
	Vocabulary markers.Vocabulary
}

// Result is the raw extraction for one file: the module as declared, the
// annotation table the inclusion policy consumes, and non-fatal diagnostics.
type Result struct {
	Module      extraction.ModuleEntity
	Marks       policy.Table
	Diagnostics []extraction.Diagnostic
}

// pythonParser extracts documentation entities from Python files.
type pythonParser struct {
	*treeSitterParser
	opts     Options
	resolver *markers.Resolver
}

// NewPythonParser creates a new Python parser.
func NewPythonParser(opts Options) *pythonParser {
	if opts.DocstringStyle == "" {
		opts.DocstringStyle = docstring.StyleAuto
	}
	vocab := opts.Vocabulary
	if vocab == nil {
		vocab = markers.DefaultVocabulary
	}
	lang := sitter.NewLanguage(python.Language())
	return &pythonParser{
		treeSitterParser: newTreeSitterParser(lang, "python"),
		opts:             opts,
		resolver:         markers.NewResolver(vocab),
	}
}

// ParseSource parses source text already read from filePath. A structural
// failure returns a *StructuralParseError and no result.
func (p *pythonParser) ParseSource(filePath string, source []byte) (*Result, error) {
	tree, err := p.parse(filePath, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	w := &moduleWalker{
		parser: p,
		tree:   tree,
		path:   filePath,
		result: &Result{
			Module: EmptyModule(filePath),
			Marks:  policy.Table{},
		},
	}
	w.walkModule()
	return w.result, nil
}

// EmptyModule returns the module recorded for a file that produced nothing.
func EmptyModule(filePath string) extraction.ModuleEntity {
	base := filepath.Base(filePath)
	return extraction.ModuleEntity{
		Name:      strings.TrimSuffix(base, filepath.Ext(base)),
		Path:      filePath,
		Imports:   []string{},
		Functions: []extraction.FunctionEntity{},
		Classes:   []extraction.ClassEntity{},
	}
}

// moduleWalker holds per-file state while walking one tree.
type moduleWalker struct {
	parser *pythonParser
	tree   *syntaxTree
	path   string
	result *Result
}

func (w *moduleWalker) text(n *sitter.Node) string {
	return extractNodeText(n, w.tree.source)
}

func (w *moduleWalker) walkModule() {
	mod := &w.result.Module
	mod.Description = w.docstring(w.tree.root)

	for _, stmt := range namedChildren(w.tree.root) {
		switch stmt.Kind() {
		case "import_statement":
			mod.Imports = append(mod.Imports, w.plainImports(stmt)...)
		case "import_from_statement", "future_import_statement":
			mod.Imports = append(mod.Imports, w.fromImports(stmt)...)
		case "function_definition", "class_definition", "decorated_definition":
			decl := w.declaration(stmt)
			if decl.def == nil {
				continue
			}
			if decl.def.Kind() == "class_definition" {
				mod.Classes = append(mod.Classes, w.class(decl))
			} else {
				mod.Functions = append(mod.Functions, w.function(decl, "", extraction.KindFunction, markers.Unmarked))
			}
		}
	}
}

// plainImports handles "import a.b" and "import a as x".
func (w *moduleWalker) plainImports(node *sitter.Node) []string {
	var out []string
	for _, child := range namedChildren(node) {
		switch child.Kind() {
		case "dotted_name":
			out = append(out, w.text(child))
		case "aliased_import":
			out = append(out, w.text(child.ChildByFieldName("name")))
		}
	}
	return out
}

// fromImports handles "from m import s", relative forms and wildcards. The
// reference is module.symbol with the original (unaliased) symbol name.
func (w *moduleWalker) fromImports(node *sitter.Node) []string {
	module := "__future__"
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode != nil {
		module = w.text(moduleNode)
	}

	join := func(symbol string) string {
		if strings.HasSuffix(module, ".") {
			return module + symbol
		}
		return module + "." + symbol
	}

	var out []string
	for _, child := range namedChildren(node) {
		if moduleNode != nil && child.StartByte() == moduleNode.StartByte() && child.EndByte() == moduleNode.EndByte() {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			out = append(out, join(w.text(child)))
		case "aliased_import":
			out = append(out, join(w.text(child.ChildByFieldName("name"))))
		case "wildcard_import":
			out = append(out, join("*"))
		}
	}
	return out
}

// declNode is a function or class definition with its decorators. start is
// the first line of the declaration including decorators; defLine is the
// line of the def or class keyword.
type declNode struct {
	def        *sitter.Node
	decorators []*sitter.Node
	start      int
	end        int
	defLine    int
}

// isDecoratorLine reports whether a 1-based line falls inside one of the
// declaration's decorators.
func (d declNode) isDecoratorLine(line int) bool {
	for _, dec := range d.decorators {
		if start, end := nodeSpan(dec); line >= start && line <= end {
			return true
		}
	}
	return false
}

func (w *moduleWalker) declaration(node *sitter.Node) declNode {
	d := declNode{def: node}
	if node.Kind() == "decorated_definition" {
		d.def = node.ChildByFieldName("definition")
		for _, child := range namedChildren(node) {
			if child.Kind() == "decorator" {
				d.decorators = append(d.decorators, child)
			}
		}
	}
	d.start, d.end = nodeSpan(node)
	d.defLine = d.start
	if d.def != nil {
		d.defLine, _ = nodeSpan(d.def)
	}
	return d
}

func (w *moduleWalker) decoratorTexts(decl declNode) []string {
	var out []string
	for _, dec := range decl.decorators {
		out = append(out, strings.TrimSpace(strings.TrimPrefix(w.text(dec), "@")))
	}
	return out
}

// decoratorMark returns the mark carried by a @doc_me decorator, if any.
// Keyword arguments become params; string literals are unquoted.
func (w *moduleWalker) decoratorMark(decl declNode) markers.AnnotationMark {
	for _, dec := range decl.decorators {
		expr := firstNamed(dec)
		if expr == nil {
			continue
		}
		callee := expr
		var args *sitter.Node
		if expr.Kind() == "call" {
			callee = expr.ChildByFieldName("function")
			args = expr.ChildByFieldName("arguments")
		}
		if !isDecoratorToken(w.text(callee)) {
			continue
		}
		params := map[string]string{}
		for _, arg := range namedChildren(args) {
			if arg.Kind() != "keyword_argument" {
				continue
			}
			key := w.text(arg.ChildByFieldName("name"))
			value := arg.ChildByFieldName("value")
			if value != nil && value.Kind() == "string" {
				params[key] = unquote(w.text(value))
			} else {
				params[key] = w.text(value)
			}
		}
		return markers.NewMark(markers.SourceDecorator, params)
	}
	return markers.Unmarked
}

func isDecoratorToken(name string) bool {
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name == decoratorToken
}

// commentMark resolves leading-comment and docstring markers for a
// declaration and records syntax problems as diagnostics. The comment walk
// starts at the def line and passes over the declaration's decorators.
func (w *moduleWalker) commentMark(decl declNode, doc string) markers.AnnotationMark {
	if !w.parser.opts.CommentMarkers {
		return markers.Unmarked
	}
	res := w.parser.resolver.Resolve(w.tree.lines, decl.defLine, doc, decl.isDecoratorLine)
	for _, err := range res.Errors {
		diag := extraction.Diagnostic{
			File:    w.path,
			Line:    decl.defLine,
			Kind:    extraction.DiagAnnotationSyntax,
			Message: err.Error(),
		}
		var se *markers.SyntaxError
		if errors.As(err, &se) {
			diag.Line = se.Line
		}
		w.result.Diagnostics = append(w.result.Diagnostics, diag)
	}
	return res.Mark
}

// function builds a function or method entity. inherited is a class-level
// decorator mark merged under the function's own decorator.
func (w *moduleWalker) function(decl declNode, owner, kind string, inherited markers.AnnotationMark) extraction.FunctionEntity {
	def := decl.def
	name := w.text(def.ChildByFieldName("name"))
	qualified := name
	if owner != "" {
		qualified = owner + "." + name
	}

	params := w.parameters(def.ChildByFieldName("parameters"))
	returnType := w.text(def.ChildByFieldName("return_type"))
	doc := w.docstring(def.ChildByFieldName("body"))

	fn := extraction.FunctionEntity{
		Name:       name,
		Qualified:  qualified,
		Kind:       kind,
		Async:      findChildByType(def, "async") != nil,
		Docstring:  doc,
		Signature:  extraction.RenderSignature(name, params, returnType),
		Parameters: params,
		ReturnType: returnType,
		Source:     extractLines(w.tree.lines, decl.start, decl.end),
		Line:       decl.start,
		EndLine:    decl.end,
		Decorators: w.decoratorTexts(decl),
		Sections:   docstring.Parse(doc, w.parser.opts.DocstringStyle),
	}

	w.result.Marks[fn.ID()] = policy.Marks{
		Decorator: markers.Merge(inherited, w.decoratorMark(decl)),
		Comment:   w.commentMark(decl, doc),
	}
	return fn
}

// class builds a top-level class entity and its members, one level deep.
func (w *moduleWalker) class(decl declNode) extraction.ClassEntity {
	def := decl.def
	name := w.text(def.ChildByFieldName("name"))
	body := def.ChildByFieldName("body")
	doc := w.docstring(body)

	cls := extraction.ClassEntity{
		Name:       name,
		Docstring:  doc,
		Bases:      w.bases(def),
		Methods:    []extraction.FunctionEntity{},
		Source:     extractLines(w.tree.lines, decl.start, decl.end),
		Line:       decl.start,
		EndLine:    decl.end,
		Decorators: w.decoratorTexts(decl),
		Sections:   docstring.Parse(doc, w.parser.opts.DocstringStyle),
	}

	classMark := w.decoratorMark(decl)
	w.result.Marks[cls.ID()] = policy.Marks{
		Decorator: classMark,
		Comment:   w.commentMark(decl, doc),
	}

	for _, stmt := range namedChildren(body) {
		switch stmt.Kind() {
		case "function_definition", "class_definition", "decorated_definition":
		default:
			continue
		}
		member := w.declaration(stmt)
		if member.def == nil {
			continue
		}
		if member.def.Kind() == "class_definition" {
			cls.Methods = append(cls.Methods, w.nestedClass(member, name))
			continue
		}
		memberName := w.text(member.def.ChildByFieldName("name"))
		inherited := markers.Unmarked
		if classMark.Marked && !strings.HasPrefix(memberName, "_") {
			inherited = propagated(classMark)
		}
		cls.Methods = append(cls.Methods, w.function(member, name, extraction.KindMethod, inherited))
	}

	return cls
}

// propagated is the part of a class decorator mark its public methods
// receive: category and priority, not the description.
func propagated(m markers.AnnotationMark) markers.AnnotationMark {
	params := map[string]string{}
	for _, key := range []string{markers.KeyCategory, markers.KeyPriority} {
		if v, ok := m.Get(key); ok {
			params[key] = v
		}
	}
	return markers.NewMark(markers.SourceDecorator, params)
}

// nestedClass records a class declared inside a class body as a member of
// kind class. Its own body is not descended into.
func (w *moduleWalker) nestedClass(decl declNode, owner string) extraction.FunctionEntity {
	def := decl.def
	name := w.text(def.ChildByFieldName("name"))
	doc := w.docstring(def.ChildByFieldName("body"))

	signature := "class " + name
	if bases := w.bases(def); len(bases) > 0 {
		signature += "(" + strings.Join(bases, ", ") + ")"
	}

	fn := extraction.FunctionEntity{
		Name:       name,
		Qualified:  owner + "." + name,
		Kind:       extraction.KindClass,
		Docstring:  doc,
		Signature:  signature,
		Parameters: []extraction.ParameterSpec{},
		Source:     extractLines(w.tree.lines, decl.start, decl.end),
		Line:       decl.start,
		EndLine:    decl.end,
		Decorators: w.decoratorTexts(decl),
		Sections:   docstring.Parse(doc, w.parser.opts.DocstringStyle),
	}

	w.result.Marks[fn.ID()] = policy.Marks{
		Decorator: w.decoratorMark(decl),
		Comment:   w.commentMark(decl, doc),
	}
	return fn
}

// bases lists the positional superclass expressions. Keyword arguments such
// as metaclass= are skipped.
func (w *moduleWalker) bases(def *sitter.Node) []string {
	out := []string{}
	for _, arg := range namedChildren(def.ChildByFieldName("superclasses")) {
		switch arg.Kind() {
		case "keyword_argument", "list_splat", "dictionary_splat":
			continue
		}
		out = append(out, w.text(arg))
	}
	return out
}

// parameters builds the parameter list in declaration order. Positional
// defaults are collected separately and attached by alignment from the end;
// keyword-only parameters keep their own defaults.
func (w *moduleWalker) parameters(node *sitter.Node) []extraction.ParameterSpec {
	params := []extraction.ParameterSpec{}
	var defaults []string
	kind := extraction.ParamPositional

	for _, child := range namedChildren(node) {
		switch child.Kind() {
		case "positional_separator":
			for i := range params {
				if params[i].Kind == extraction.ParamPositional {
					params[i].Kind = extraction.ParamPositionalOnly
				}
			}
			continue
		case "keyword_separator":
			kind = extraction.ParamKeywordOnly
			continue
		}

		p, def := w.parameter(child)
		if p.Name == "" {
			continue
		}
		switch p.Kind {
		case extraction.ParamVarPositional:
			kind = extraction.ParamKeywordOnly
		case extraction.ParamVarKeyword:
		default:
			p.Kind = kind
		}

		if def != "" {
			if p.Kind == extraction.ParamKeywordOnly {
				p.Default = def
			} else {
				defaults = append(defaults, def)
			}
		}
		params = append(params, p)
	}

	return extraction.AlignDefaults(params, defaults)
}

// parameter reads one parameter node. The default value is returned
// separately so positional defaults can be aligned.
func (w *moduleWalker) parameter(node *sitter.Node) (extraction.ParameterSpec, string) {
	var p extraction.ParameterSpec
	var def string

	switch node.Kind() {
	case "identifier":
		p.Name = w.text(node)
	case "list_splat_pattern", "dictionary_splat_pattern":
		p.Name, p.Kind = w.splat(node)
	case "typed_parameter":
		inner := firstNamed(node)
		if inner != nil {
			p.Name, p.Kind = w.splat(inner)
		}
		p.Type = w.text(node.ChildByFieldName("type"))
	case "default_parameter":
		p.Name = w.text(node.ChildByFieldName("name"))
		def = w.text(node.ChildByFieldName("value"))
	case "typed_default_parameter":
		p.Name = w.text(node.ChildByFieldName("name"))
		p.Type = w.text(node.ChildByFieldName("type"))
		def = w.text(node.ChildByFieldName("value"))
	}
	return p, def
}

// splat names a possibly starred parameter and reports its kind.
func (w *moduleWalker) splat(node *sitter.Node) (string, string) {
	name := w.text(node)
	switch node.Kind() {
	case "list_splat_pattern":
		return name, extraction.ParamVarPositional
	case "dictionary_splat_pattern":
		return name, extraction.ParamVarKeyword
	}
	return name, ""
}

// docstring returns the cleaned docstring of a module or block: the first
// statement when it is a bare string literal.
func (w *moduleWalker) docstring(block *sitter.Node) string {
	stmts := namedChildren(block)
	if len(stmts) == 0 || stmts[0].Kind() != "expression_statement" {
		return ""
	}
	lit := firstNamed(stmts[0])
	if lit == nil {
		return ""
	}
	switch lit.Kind() {
	case "string":
		return docstring.Clean(unquote(w.text(lit)))
	case "concatenated_string":
		var b strings.Builder
		for _, part := range namedChildren(lit) {
			b.WriteString(unquote(w.text(part)))
		}
		return docstring.Clean(b.String())
	}
	return ""
}

func firstNamed(node *sitter.Node) *sitter.Node {
	children := namedChildren(node)
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

// unquote strips a string literal's prefix letters and quotes. Escape
// sequences are kept as written.
func unquote(lit string) string {
	i := 0
	for i < len(lit) && strings.ContainsRune("rRbBuUfF", rune(lit[i])) {
		i++
	}
	body := lit[i:]
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if len(body) >= 2*len(q) && strings.HasPrefix(body, q) && strings.HasSuffix(body, q) {
			return body[len(q) : len(body)-len(q)]
		}
	}
	return body
}
