package resolver

import (
	"errors"
	"fmt"
	"strings"
)

// MaxImportDepth bounds the depth-first import-closure walk so a malformed
// (but acyclic) import graph cannot exhaust the call stack. Recommended by
// spec as >= 128.
const MaxImportDepth = 128

// Sentinels classifying a RenderError's underlying cause, checked with
// errors.Is by callers (the HTTP layer maps these to status codes).
var (
	ErrBadImport   = errors.New("bad import")
	ErrCycle       = errors.New("import cycle")
	ErrUnknownKey  = errors.New("unknown key")
	ErrAmbiguous   = errors.New("ambiguous template reference")
	ErrTooDeep     = errors.New("import closure too deep")
	ErrBadNumber   = errors.New("bad number")
)

// RenderError is a fatal diagnostic that aborts a render. Cause is always
// one of the Err* sentinels above, so callers can classify with errors.Is
// without string matching.
type RenderError struct {
	Cause error
	// Name is the logical name or template path implicated, when relevant.
	Name string
	// Cycle holds the full cycle path in traversal order, for ErrCycle.
	Cycle []string
	// Detail is a human-readable elaboration.
	Detail string
	// Line and Col locate the offending template reference within its
	// enclosing string scalar, 1-based; zero when not applicable (e.g.
	// BadImport, Cycle).
	Line, Col int
}

func (e *RenderError) Error() string {
	switch {
	case len(e.Cycle) > 0:
		return fmt.Sprintf("%s: %s", e.Cause, strings.Join(e.Cycle, " -> "))
	case e.Name != "":
		return fmt.Sprintf("%s: %s", e.Cause, e.Name)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Cause, e.Detail)
	default:
		return e.Cause.Error()
	}
}

func (e *RenderError) Unwrap() error { return e.Cause }

func badImport(name string, cause error) *RenderError {
	return &RenderError{Cause: ErrBadImport, Name: name, Detail: cause.Error()}
}

func cycleError(path []string) *RenderError {
	return &RenderError{Cause: ErrCycle, Cycle: path}
}

func unknownKey(path string) *RenderError {
	return &RenderError{Cause: ErrUnknownKey, Name: path}
}

func ambiguousRef(path string) *RenderError {
	return &RenderError{Cause: ErrAmbiguous, Name: path}
}

func tooDeep(name string) *RenderError {
	return &RenderError{Cause: ErrTooDeep, Name: name}
}

func badNumber(path, text string) *RenderError {
	return &RenderError{Cause: ErrBadNumber, Name: path, Detail: text}
}

// WarningKind classifies a RenderWarning, the non-fatal counterpart to
// RenderError.
type WarningKind int

const (
	// ComplexInterpolation is emitted whenever a template ref resolves to a
	// mapping or sequence. Inside a larger string the value is encoded as
	// compact YAML flow form; as the sole content of the scalar it is
	// substituted as the mapping or sequence itself.
	ComplexInterpolation WarningKind = iota
)

func (k WarningKind) String() string {
	switch k {
	case ComplexInterpolation:
		return "complex_interpolation"
	default:
		return "unknown"
	}
}

// RenderWarning is a non-fatal diagnostic attached to a successful render.
type RenderWarning struct {
	Kind WarningKind
	Path string
}

// Diagnostics accumulates the non-fatal warnings produced by a single
// render.
type Diagnostics struct {
	Warnings []RenderWarning
}

func (d *Diagnostics) warn(kind WarningKind, path string) {
	d.Warnings = append(d.Warnings, RenderWarning{Kind: kind, Path: path})
}
