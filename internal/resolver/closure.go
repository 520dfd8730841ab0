package resolver

import (
	"github.com/konflabs/konf-server/internal/graph"
	"github.com/konflabs/konf-server/internal/loader"
)

// importTable maps every logical name reachable from a root (including the
// root itself) to its Document.
type importTable map[string]*loader.Document

// buildImportTable runs the depth-first import-closure walk described in
// spec §4.E phase 1: a back-edge to a node currently on the traversal stack
// is reported as a cycle naming the full path; any reachable name that is
// missing from the graph or carries its own LoadError fails the whole
// closure with BadImport.
func buildImportTable(g *graph.Graph, root string) (importTable, error) {
	table := make(importTable)
	onStack := make(map[string]bool)
	stack := make([]string, 0, 8)

	var visit func(name string, depth int) error
	visit = func(name string, depth int) error {
		if depth > MaxImportDepth {
			return tooDeep(name)
		}
		if onStack[name] {
			cyclePath := append(append([]string{}, stack...), name)
			return cycleError(cyclePath)
		}
		if _, ok := table[name]; ok {
			return nil
		}

		doc, loadErr, ok := g.Get(name)
		if !ok {
			return badImport(name, graphErrMissing(name))
		}
		if loadErr != nil {
			return badImport(name, loadErr)
		}

		onStack[name] = true
		stack = append(stack, name)
		table[name] = doc

		for _, imp := range doc.Metadata.Imports {
			if err := visit(imp, depth+1); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		onStack[name] = false
		return nil
	}

	if err := visit(root, 0); err != nil {
		return nil, err
	}
	return table, nil
}

type missingImportError struct{ name string }

func (e *missingImportError) Error() string { return "document not found: " + e.name }

func graphErrMissing(name string) error { return &missingImportError{name: name} }
