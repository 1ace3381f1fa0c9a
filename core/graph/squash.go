package graph

import "fmt"

// SquashModule collapses a module's descendants into the module itself.
//
// Every edge instance touching a descendant is rewritten to reference
// the module instead, preserving multiplicity but discarding provenance
// (squashing is a deliberate, lossy simplification). Edges between two
// descendants collapse to self-edges on the module. The descendants are
// then removed and the module is flagged as squashed.
//
// Squashing an already-squashed module is a no-op.
func (g *ImportGraph) SquashModule(module string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.contains(module) {
		return fmt.Errorf("module %q is not present in the graph", module)
	}
	if g.squashed.Contains(module) {
		return nil
	}

	descendants := g.namespace.descendantsOf(module)
	if len(descendants) > 0 {
		rewritten := make(map[importKey]int)
		for key, count := range g.edgeCounts {
			importer, imported := key.importer, key.imported
			touched := false
			if descendants.Contains(importer) {
				importer = module
				touched = true
			}
			if descendants.Contains(imported) {
				imported = module
				touched = true
			}
			if touched {
				rewritten[importKey{importer, imported}] += count
			}
		}

		for descendant := range descendants {
			g.removeModule(descendant)
		}
		for key, count := range rewritten {
			for i := 0; i < count; i++ {
				g.addImportInstance(key.importer, key.imported, nil)
			}
		}
	}

	g.squashed.Add(module)
	return nil
}

// IsModuleSquashed reports whether the module is squashed. Absent
// modules are not squashed.
func (g *ImportGraph) IsModuleSquashed(module string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.squashed.Contains(module)
}
