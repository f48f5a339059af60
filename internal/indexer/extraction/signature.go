package extraction

import "strings"

// RenderSignature renders the deterministic textual signature
// "name(arg: Type, arg2: Type = default) -> Ret" from parameter data.
// A "/" follows the last positional-only parameter and a bare "*" precedes
// the first keyword-only parameter when no *args is declared.
func RenderSignature(name string, params []ParameterSpec, returnType string) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('(')

	parts := make([]string, 0, len(params)+2)
	sawVarPositional := false
	for i, p := range params {
		if p.Kind == ParamKeywordOnly && !sawVarPositional {
			parts = append(parts, "*")
			sawVarPositional = true
		}
		if p.Kind == ParamVarPositional {
			sawVarPositional = true
		}
		parts = append(parts, renderParam(p))
		if p.Kind == ParamPositionalOnly && (i+1 == len(params) || params[i+1].Kind != ParamPositionalOnly) {
			parts = append(parts, "/")
		}
	}
	b.WriteString(strings.Join(parts, ", "))
	b.WriteByte(')')

	if returnType != "" {
		b.WriteString(" -> ")
		b.WriteString(returnType)
	}
	return b.String()
}

func renderParam(p ParameterSpec) string {
	s := p.Name
	if p.Type != "" {
		s += ": " + p.Type
	}
	if p.HasDefault() {
		if p.Type != "" {
			s += " = " + p.Default
		} else {
			s += "=" + p.Default
		}
	}
	return s
}

// AlignDefaults attaches defaults to the positional parameters by alignment
// from the end: the last len(defaults) positional parameters receive the
// defaults in order. Non-positional parameters are left untouched. Extra
// defaults beyond the number of positional parameters are ignored.
func AlignDefaults(params []ParameterSpec, defaults []string) []ParameterSpec {
	out := make([]ParameterSpec, len(params))
	copy(out, params)

	positional := make([]int, 0, len(out))
	for i, p := range out {
		if p.Kind == ParamPositionalOnly || p.Kind == ParamPositional {
			positional = append(positional, i)
		}
	}

	if len(defaults) > len(positional) {
		defaults = defaults[len(defaults)-len(positional):]
	}
	offset := len(positional) - len(defaults)
	for i, d := range defaults {
		out[positional[offset+i]].Default = d
	}
	return out
}
