// Package policy decides which extracted entities are surfaced in the
// documentation model and fills in their resolved metadata.
package policy

import (
	"strings"

	"github.com/mvp-joe/autodoc/internal/indexer/extraction"
	"github.com/mvp-joe/autodoc/internal/markers"
)

// DefaultPrivatePrefix marks internal names for the public-name fallback.
const DefaultPrivatePrefix = "_"

// Options are the global switches that feed every decision.
type Options struct {
	IncludeAll           bool
	EnableCommentMarkers bool
	PrivatePrefix        string
}

// DefaultOptions returns markers enabled, include-all off and the "_" prefix.
func DefaultOptions() Options {
	return Options{EnableCommentMarkers: true, PrivatePrefix: DefaultPrivatePrefix}
}

func (o Options) prefix() string {
	if o.PrivatePrefix == "" {
		return DefaultPrivatePrefix
	}
	return o.PrivatePrefix
}

// Marks holds the two external annotation inputs for one entity. Comment is
// the merged leading-comment and docstring mark.
type Marks struct {
	Decorator markers.AnnotationMark
	Comment   markers.AnnotationMark
}

// Table maps an entity to its marks. Entities without an entry are treated
// as unmarked.
type Table map[extraction.EntityID]Marks

// Decision is the resolved outcome for one entity.
type Decision struct {
	Included      bool
	CommentMarked bool
	Category      string
	Priority      int
	Description   string
}

// Decide applies the inclusion sources in order: include-all, decorator
// mark, comment mark, then the public-name fallback when comment markers are
// disabled. Metadata from a later source overrides an earlier one for every
// key it sets.
func Decide(name string, decorator, comment markers.AnnotationMark, opts Options) Decision {
	var d Decision

	if opts.IncludeAll {
		d.Included = true
	}

	if decorator.Marked {
		d.Included = true
		d.CommentMarked = true
		d.apply(decorator)
	}

	if opts.EnableCommentMarkers {
		if comment.Marked {
			d.Included = true
			d.CommentMarked = true
			d.apply(comment)
		}
	} else if !strings.HasPrefix(name, opts.prefix()) {
		d.Included = true
	}

	return d
}

func (d *Decision) apply(m markers.AnnotationMark) {
	if v, ok := m.Category(); ok {
		d.Category = v
	}
	if _, ok := m.Get(markers.KeyPriority); ok {
		d.Priority = m.Priority()
	}
	if v, ok := m.Get(markers.KeyDescription); ok {
		d.Description = v
	}
}

// Finalize returns a new module holding only the included functions and
// classes, with their resolved fields set. Methods of an included class are
// decided one by one. The input module is left untouched.
func Finalize(mod extraction.ModuleEntity, table Table, opts Options) extraction.ModuleEntity {
	out := mod
	out.Imports = append([]string(nil), mod.Imports...)
	out.Functions = finalizeFunctions(mod.Functions, table, opts)
	out.Classes = make([]extraction.ClassEntity, 0, len(mod.Classes))

	for _, cls := range mod.Classes {
		m := table[cls.ID()]
		d := Decide(cls.Name, m.Decorator, m.Comment, opts)
		if !d.Included {
			continue
		}
		cls.Category = d.Category
		cls.Priority = d.Priority
		cls.CommentMarked = d.CommentMarked
		cls.Description = d.Description
		cls.Methods = finalizeFunctions(cls.Methods, table, opts)
		out.Classes = append(out.Classes, cls)
	}

	return out
}

func finalizeFunctions(fns []extraction.FunctionEntity, table Table, opts Options) []extraction.FunctionEntity {
	kept := make([]extraction.FunctionEntity, 0, len(fns))
	for _, fn := range fns {
		m := table[fn.ID()]
		d := Decide(fn.Name, m.Decorator, m.Comment, opts)
		if !d.Included {
			continue
		}
		fn.Category = d.Category
		fn.Priority = d.Priority
		fn.CommentMarked = d.CommentMarked
		fn.Description = d.Description
		kept = append(kept, fn)
	}
	return kept
}
