package api

import (
	"errors"
	"net/http"

	"github.com/konflabs/konf-server/internal/auth"
	"github.com/konflabs/konf-server/internal/graph"
	"github.com/konflabs/konf-server/internal/loader"
	"github.com/konflabs/konf-server/internal/resolver"
	"github.com/konflabs/konf-server/internal/source"
)

// MapErrorToStatusCode maps an error from the core engine to the HTTP
// status code the data handler should return, following the taxonomy in
// §7: AuthError maps to 401, SourceError to 404 (or 502 for I/O failures),
// and LoadError and RenderError share 422. This prevents leaking internal
// error types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrMissing):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrDenied):
		return http.StatusUnauthorized

	case errors.Is(err, source.ErrNotFound),
		errors.Is(err, source.ErrSnapshotUnknown):
		return http.StatusNotFound

	case errors.Is(err, resolver.ErrCycle),
		errors.Is(err, resolver.ErrUnknownKey),
		errors.Is(err, resolver.ErrAmbiguous),
		errors.Is(err, resolver.ErrTooDeep),
		errors.Is(err, resolver.ErrBadNumber),
		errors.Is(err, loader.ErrNotAMapping),
		errors.Is(err, loader.ErrBadMetadata),
		errors.Is(err, loader.ErrParseFailure):
		return http.StatusUnprocessableEntity

	case errors.Is(err, resolver.ErrBadImport):
		return http.StatusUnprocessableEntity

	case isDuplicateNameError(err):
		return http.StatusInternalServerError

	case errors.Is(err, source.ErrIoFailure):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

func isDuplicateNameError(err error) bool {
	var dup *graph.ErrDuplicate
	return errors.As(err, &dup)
}

// SafeErrorMessage returns a message safe to return to a client for err,
// never echoing raw internal error text. Details beyond the taxonomy are
// only ever logged, per §7's policy that load/render errors are localised
// but not leaked verbatim.
func SafeErrorMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissing):
		return "token header required"
	case errors.Is(err, auth.ErrDenied):
		return "token denied"
	case errors.Is(err, source.ErrNotFound):
		return "document not found"
	case errors.Is(err, source.ErrSnapshotUnknown):
		return "unknown snapshot"
	case errors.Is(err, resolver.ErrCycle):
		return "import cycle detected"
	case errors.Is(err, resolver.ErrUnknownKey):
		return "unknown template reference"
	case errors.Is(err, resolver.ErrAmbiguous):
		return "ambiguous template reference"
	case errors.Is(err, resolver.ErrTooDeep):
		return "import closure too deep"
	case errors.Is(err, resolver.ErrBadImport):
		return "one or more imports could not be loaded"
	default:
		return "an unexpected error occurred"
	}
}
