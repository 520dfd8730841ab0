// Package auth implements the per-document token gate used in snapshot
// mode, per §4.H. It is deliberately not a signed-bearer-token scheme like
// the teacher's JWT service — just a verbatim membership check against a
// document's declared auth set — but keeps the teacher's shape of a small
// package with its own sentinel errors, called by the snapshot-mode engine
// in package httpapi once the target document is known.
package auth

import (
	"errors"

	"github.com/konflabs/konf-server/internal/loader"
)

var (
	// ErrMissing is returned when no token was presented at all.
	ErrMissing = errors.New("auth: token missing")

	// ErrDenied is returned when a token was presented but is not in the
	// target document's auth set — including when that set is empty,
	// which denies every token rather than granting public access.
	ErrDenied = errors.New("auth: token denied")
)

// Check enforces the gate for doc against presented. Called before phase 1
// of rendering, per §4.H and §7 ("auth errors take precedence over render
// errors").
func Check(doc *loader.Document, presented string) error {
	if presented == "" {
		return ErrMissing
	}
	if !doc.Metadata.HasToken(presented) {
		return ErrDenied
	}
	return nil
}
