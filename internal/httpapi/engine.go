package httpapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/konflabs/konf-server/internal/auth"
	"github.com/konflabs/konf-server/internal/cache"
	"github.com/konflabs/konf-server/internal/graph"
	"github.com/konflabs/konf-server/internal/reload"
	"github.com/konflabs/konf-server/internal/resolver"
	"github.com/konflabs/konf-server/internal/source"
	"github.com/konflabs/konf-server/internal/value"
)

// Engine is what the data and reload handlers need, independent of
// whether the server is running in filesystem or snapshot (git) mode.
type Engine interface {
	// Render resolves the document at logical name path, within ref (a
	// commit id in git mode, ignored in filesystem mode), after checking
	// token against the document's auth set when auth applies.
	Render(ctx context.Context, ref, path, token string) (value.Value, resolver.Diagnostics, error)
	// Reload refreshes the engine's view of the source of truth.
	Reload(ctx context.Context) error
}

// FilesystemEngine adapts a reload.Coordinator (the single-implicit-
// snapshot case) to the Engine interface. Auth never applies in
// filesystem mode, per §4.H.
type FilesystemEngine struct {
	Coordinator *reload.Coordinator
}

func (e *FilesystemEngine) Render(ctx context.Context, _, path, _ string) (value.Value, resolver.Diagnostics, error) {
	g := e.Coordinator.Active()
	return resolver.Resolve(g, path)
}

func (e *FilesystemEngine) Reload(ctx context.Context) error {
	return e.Coordinator.Reload(ctx)
}

// SnapshotEngine adapts the snapshot cache and a GitSource to the Engine
// interface, enforcing the per-document auth gate before phase 1 of
// rendering, per §4.H and §7 ("auth errors take precedence over render
// errors").
type SnapshotEngine struct {
	Cache  *cache.Cache
	Source *source.GitSource
}

var errRefRequired = errors.New("snapshot mode requires a commit reference")

func (e *SnapshotEngine) Render(ctx context.Context, ref, path, token string) (value.Value, resolver.Diagnostics, error) {
	if ref == "" {
		return value.Value{}, resolver.Diagnostics{}, errRefRequired
	}
	g, err := e.Cache.Get(ctx, ref)
	if err != nil {
		return value.Value{}, resolver.Diagnostics{}, fmt.Errorf("load snapshot %s: %w", ref, err)
	}

	doc, loadErr, ok := g.Get(path)
	if !ok {
		return value.Value{}, resolver.Diagnostics{}, fmt.Errorf("%w: %s", source.ErrNotFound, path)
	}
	if loadErr != nil {
		return value.Value{}, resolver.Diagnostics{}, loadErr
	}
	if err := auth.Check(doc, token); err != nil {
		return value.Value{}, resolver.Diagnostics{}, err
	}

	return resolver.Resolve(g, path)
}

func (e *SnapshotEngine) Reload(ctx context.Context) error {
	return e.Source.Fetch(ctx)
}

// buildGraph is the BuildFunc the snapshot cache and reload coordinator
// are constructed with: list+load every document of src at snapshot using
// a bounded worker pool (package graph already does the fan-out).
func buildGraph(src source.Source, workers int) func(ctx context.Context, snapshot string) (*graph.Graph, error) {
	return func(ctx context.Context, snapshot string) (*graph.Graph, error) {
		g, _, err := graph.Load(ctx, src, snapshot, workers)
		return g, err
	}
}
