package resolver

import (
	"strconv"
	"strings"

	"github.com/konflabs/konf-server/internal/graph"
	"github.com/konflabs/konf-server/internal/value"
)

// Resolve renders root: it computes the import closure (phase 1), then
// substitutes templates through root's body (phase 2), returning the
// rendered Value and any non-fatal warnings collected along the way. A
// failure in either phase aborts the whole render with a *RenderError.
func Resolve(g *graph.Graph, root string) (value.Value, Diagnostics, error) {
	table, err := buildImportTable(g, root)
	if err != nil {
		return value.Value{}, Diagnostics{}, err
	}

	doc := table[root]
	var diag Diagnostics
	rendered, err := substituteValue(table, doc.Body, &diag)
	if err != nil {
		return value.Value{}, Diagnostics{}, err
	}
	return rendered, diag, nil
}

// substituteValue recurses through a value tree belonging to the document
// being rendered, rewriting string scalars per §4.E step; every other kind
// is copied structurally (sequences and mappings recurse into their
// elements, everything else is returned unchanged).
func substituteValue(table importTable, v value.Value, diag *Diagnostics) (value.Value, error) {
	switch v.Kind() {
	case value.String:
		return substituteString(table, v.String(), diag)

	case value.Sequence:
		items := v.Sequence()
		out := make([]value.Value, len(items))
		for i, item := range items {
			rendered, err := substituteValue(table, item, diag)
			if err != nil {
				return value.Value{}, err
			}
			out[i] = rendered
		}
		return value.NewSequence(out), nil

	case value.Mapping:
		keys := v.Keys()
		vals := make(map[string]value.Value, len(keys))
		for _, k := range keys {
			child, _ := v.Get(k)
			rendered, err := substituteValue(table, child, diag)
			if err != nil {
				return value.Value{}, err
			}
			vals[k] = rendered
		}
		return value.NewMapping(append([]string{}, keys...), vals), nil

	default:
		return v, nil
	}
}

// substituteString implements §4.E step, including the type-preservation
// rule: a scalar consisting solely of one template ref takes on the
// referenced value's type rather than being stringified.
func substituteString(table importTable, s string, diag *Diagnostics) (value.Value, error) {
	if path, ok := soleTemplateRef(s); ok {
		resolved, err := resolveRef(table, path)
		if err != nil {
			return value.Value{}, err
		}
		if !resolved.IsScalar() {
			diag.warn(ComplexInterpolation, path)
		}
		return resolved, nil
	}

	rendered, err := scanTemplate(s, func(path string, offset int) (string, error) {
		resolved, err := resolveRef(table, path)
		if err != nil {
			if re, ok := err.(*RenderError); ok {
				line, col := lineCol(s, offset)
				re.Line, re.Col = line, col
			}
			return "", err
		}
		if resolved.IsScalar() {
			return resolved.CanonicalString(), nil
		}
		diag.warn(ComplexInterpolation, path)
		return flowForm(resolved), nil
	})
	if err != nil {
		return value.Value{}, err
	}
	return value.NewString(rendered), nil
}

// resolveRef matches path's head against the import table and walks the
// remainder against the referenced document's unrendered body, per §4.E
// step 1-2. Resolution never recurses through the referenced document's
// own templates — it is deliberately single-pass (spec's Testable
// Property 3).
func resolveRef(table importTable, path string) (value.Value, error) {
	name, rest, err := splitHead(table, path)
	if err != nil {
		return value.Value{}, err
	}
	doc := table[name]
	return walkPath(doc, rest, path)
}

// flowForm renders a mapping or sequence as compact YAML flow syntax, for
// ComplexInterpolation substitutions embedded inside a larger string.
func flowForm(v value.Value) string {
	switch v.Kind() {
	case value.Sequence:
		items := v.Sequence()
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = flowForm(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case value.Mapping:
		keys := v.Keys()
		parts := make([]string, len(keys))
		for i, k := range keys {
			val, _ := v.Get(k)
			parts[i] = flowKey(k) + ": " + flowForm(val)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case value.String:
		return flowScalarString(v.String())
	default:
		return v.CanonicalString()
	}
}

func flowKey(k string) string {
	if needsQuoting(k) {
		return strconv.Quote(k)
	}
	return k
}

func flowScalarString(s string) string {
	if needsQuoting(s) {
		return strconv.Quote(s)
	}
	return s
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	return strings.ContainsAny(s, ":{}[],#&*!|>'\"%@`\n") || strings.TrimSpace(s) != s
}
