package loader

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Load. Wrap with fmt.Errorf("%w: ...") to add
// the offending document name; callers use errors.Is to classify.
var (
	// ErrNotAMapping is returned when the top-level YAML node is not a
	// mapping.
	ErrNotAMapping = errors.New("top-level document is not a mapping")

	// ErrBadMetadata is returned when the "<!>" metadata section is
	// malformed: import/auth present but not a sequence of strings.
	ErrBadMetadata = errors.New("invalid <!> metadata section")

	// ErrParseFailure is returned when the document is not valid YAML.
	ErrParseFailure = errors.New("failed to parse document as YAML")
)

// LoadError reports a failure loading a single named document. It always
// wraps one of the sentinels above so callers can classify it with
// errors.Is while still recovering the logical name and a human-readable
// reason.
type LoadError struct {
	Name   string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %q: %s: %v", e.Name, e.Reason, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func newLoadError(name, reason string, cause error) *LoadError {
	return &LoadError{Name: name, Reason: reason, Err: cause}
}
