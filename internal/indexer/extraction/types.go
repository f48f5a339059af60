package extraction

import (
	"fmt"

	"github.com/mvp-joe/autodoc/internal/docstring"
)

// Entity kinds for FunctionEntity.Kind.
const (
	KindFunction = "function"
	KindMethod   = "method"
	KindClass    = "class" // class nested inside a class body
)

// Parameter kinds, in the order Python allows them to appear.
const (
	ParamPositionalOnly = "positional_only"
	ParamPositional     = "positional"
	ParamVarPositional  = "var_positional"
	ParamKeywordOnly    = "keyword_only"
	ParamVarKeyword     = "var_keyword"
)

// ModuleEntity is the documentation model for one source file.
type ModuleEntity struct {
	Name        string           `json:"name" yaml:"name"` // file stem
	Path        string           `json:"path" yaml:"path"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Imports     []string         `json:"imports" yaml:"imports"`
	Functions   []FunctionEntity `json:"functions" yaml:"functions"`
	Classes     []ClassEntity    `json:"classes" yaml:"classes"`
}

// IsEmpty reports whether the module has no functions and no classes.
func (m *ModuleEntity) IsEmpty() bool {
	return len(m.Functions) == 0 && len(m.Classes) == 0
}

// FunctionEntity is a function, a method, or a class nested in a class body.
type FunctionEntity struct {
	Name       string             `json:"name" yaml:"name"`
	Qualified  string             `json:"qualified_name" yaml:"qualified_name"`
	Kind       string             `json:"kind" yaml:"kind"`
	Async      bool               `json:"async,omitempty" yaml:"async,omitempty"`
	Docstring  string             `json:"docstring" yaml:"docstring"`
	Signature  string             `json:"signature" yaml:"signature"`
	Parameters []ParameterSpec    `json:"parameters" yaml:"parameters"`
	ReturnType string             `json:"return_type,omitempty" yaml:"return_type,omitempty"`
	Source     string             `json:"source" yaml:"source"`
	Line       int                `json:"line" yaml:"line"`
	EndLine    int                `json:"end_line" yaml:"end_line"`
	Decorators []string           `json:"decorators,omitempty" yaml:"decorators,omitempty"`
	Sections   docstring.Sections `json:"sections" yaml:"sections"`

	// Resolved by the inclusion policy.
	Category      string `json:"category,omitempty" yaml:"category,omitempty"`
	Priority      int    `json:"priority" yaml:"priority"`
	CommentMarked bool   `json:"comment_marked" yaml:"comment_marked"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ID returns the side-table key for the function.
func (f *FunctionEntity) ID() EntityID {
	return NewEntityID(f.Qualified, f.Line)
}

// ClassEntity is a top-level class and its methods.
type ClassEntity struct {
	Name       string             `json:"name" yaml:"name"`
	Docstring  string             `json:"docstring" yaml:"docstring"`
	Bases      []string           `json:"bases" yaml:"bases"`
	Methods    []FunctionEntity   `json:"methods" yaml:"methods"`
	Source     string             `json:"source" yaml:"source"`
	Line       int                `json:"line" yaml:"line"`
	EndLine    int                `json:"end_line" yaml:"end_line"`
	Decorators []string           `json:"decorators,omitempty" yaml:"decorators,omitempty"`
	Sections   docstring.Sections `json:"sections" yaml:"sections"`

	Category      string `json:"category,omitempty" yaml:"category,omitempty"`
	Priority      int    `json:"priority" yaml:"priority"`
	CommentMarked bool   `json:"comment_marked" yaml:"comment_marked"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ID returns the side-table key for the class.
func (c *ClassEntity) ID() EntityID {
	return NewEntityID(c.Name, c.Line)
}

// ParameterSpec describes one declared parameter. Type and Default are
// verbatim source text; empty means absent.
type ParameterSpec struct {
	Name    string `json:"name" yaml:"name"`
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
	Default string `json:"default,omitempty" yaml:"default,omitempty"`
	Kind    string `json:"kind" yaml:"kind"`
}

// HasDefault reports whether the parameter declares a default value.
func (p ParameterSpec) HasDefault() bool {
	return p.Default != ""
}

// EntityID identifies a declaration within one module: qualified name plus
// 1-based line.
type EntityID string

// NewEntityID builds an EntityID such as "Repo.find@12".
func NewEntityID(qualified string, line int) EntityID {
	return EntityID(fmt.Sprintf("%s@%d", qualified, line))
}

// Diagnostic is a non-fatal per-file problem reported during a run.
type Diagnostic struct {
	File    string `json:"file" yaml:"file"`
	Line    int    `json:"line,omitempty" yaml:"line,omitempty"`
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
}

// Diagnostic kinds.
const (
	DiagStructuralParse  = "structural_parse"
	DiagAnnotationSyntax = "annotation_syntax"
	DiagRead             = "read"
)

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s", d.File, d.Line, d.Kind, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.File, d.Kind, d.Message)
}
