// Package graph holds the in-memory collection of documents loaded from a
// Source at one snapshot, indexed by logical name. A Graph is immutable
// once built: callers that want fresh contents build (or fetch from cache)
// a new one.
package graph

import (
	"context"
	"fmt"

	"github.com/konflabs/konf-server/internal/concurrency"
	"github.com/konflabs/konf-server/internal/loader"
	"github.com/konflabs/konf-server/internal/source"
)

// entry is either a successfully loaded Document or the LoadError produced
// trying to load it. A name absent from the graph's entries map was never
// discovered by List at all — distinct from a name that was discovered but
// failed to Load.
type entry struct {
	doc *loader.Document
	err error
}

// Graph is an immutable, read-only-after-construction map from logical
// name to Document. No locking is needed to read it: construction
// finishes before the Graph is ever handed to a caller.
type Graph struct {
	entries map[string]entry
}

// ErrDuplicate is returned by Load when the source lists the same logical
// name twice (distinct source names that stripped to the same logical
// name, e.g. "app.yaml" and "app.yml").
type ErrDuplicate struct {
	Name string
}

func (e *ErrDuplicate) Error() string {
	return fmt.Sprintf("duplicate logical name %q", e.Name)
}

// Load lists every document in snapshot via src, loads each one
// concurrently (document load order is unconstrained, per spec), and
// returns the resulting Graph together with every non-fatal warning
// collected along the way. A per-document load failure does not abort the
// whole graph — it is recorded against that name and surfaces only when
// that name is later requested or transitively reached by a render. A
// duplicate logical name is the one condition that fails the whole load.
func Load(ctx context.Context, src source.Source, snapshot string, workerCount int) (*Graph, []loader.Warning, error) {
	names, err := src.List(ctx, snapshot)
	if err != nil {
		return nil, nil, fmt.Errorf("list documents: %w", err)
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			return nil, nil, &ErrDuplicate{Name: name}
		}
		seen[name] = true
	}

	type loadResult struct {
		name     string
		doc      *loader.Document
		warnings []loader.Warning
		err      error
	}

	results := concurrency.Run(ctx, workerCount, names, func(ctx context.Context, name string) loadResult {
		raw, err := src.Read(ctx, snapshot, name)
		if err != nil {
			return loadResult{name: name, err: fmt.Errorf("read %q: %w", name, err)}
		}
		doc, warnings, err := loader.Load(name, raw)
		return loadResult{name: name, doc: doc, warnings: warnings, err: err}
	})

	entries := make(map[string]entry, len(results))
	var warnings []loader.Warning
	for _, r := range results {
		if r.err != nil {
			entries[r.name] = entry{err: r.err}
			continue
		}
		entries[r.name] = entry{doc: r.doc}
		warnings = append(warnings, r.warnings...)
	}

	return &Graph{entries: entries}, warnings, nil
}

// Get returns the Document loaded for name. ok is false when name was never
// discovered by the source at all. When ok is true but err is non-nil, the
// document was discovered but failed to load (its LoadError).
func (g *Graph) Get(name string) (doc *loader.Document, err error, ok bool) {
	e, ok := g.entries[name]
	if !ok {
		return nil, nil, false
	}
	return e.doc, e.err, true
}

// Names returns every logical name the graph knows about, loaded
// successfully or not.
func (g *Graph) Names() []string {
	names := make([]string, 0, len(g.entries))
	for name := range g.entries {
		names = append(names, name)
	}
	return names
}
