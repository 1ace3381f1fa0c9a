package graph

import (
	"fmt"
	"sync"
)

// ImportDetails records the provenance of a single import edge instance.
type ImportDetails struct {
	Importer     string `json:"importer"`
	Imported     string `json:"imported"`
	LineNumber   int    `json:"line_number"`
	LineContents string `json:"line_contents"`
}

type importKey struct {
	importer string
	imported string
}

// ImportGraph is a directed multigraph of imports between modules.
//
// Edges are stored as instances: two import statements between the same
// pair of modules are two edge instances, each independently counted
// and (when provenance was supplied) independently retrievable through
// ImportDetails. Neighbor queries collapse multiplicity to set
// membership.
//
// The graph is single-writer, many-reader: exported methods take the
// lock, unexported helpers assume it is held. Read queries never mutate
// the graph; searches that need to suppress edges work on transient
// copies.
type ImportGraph struct {
	mu sync.RWMutex

	// Deduplicated adjacency, both directions.
	importedsByImporter map[string]ModuleSet
	importersByImported map[string]ModuleSet

	// Edge instance multiplicity per ordered pair, and the total.
	edgeCounts   map[importKey]int
	totalImports int

	// Provenance records, only for instances that carry them.
	details map[importKey][]ImportDetails

	squashed  ModuleSet
	namespace *namespaceTree
}

// NewImportGraph returns an empty graph.
func NewImportGraph() *ImportGraph {
	return &ImportGraph{
		importedsByImporter: make(map[string]ModuleSet),
		importersByImported: make(map[string]ModuleSet),
		edgeCounts:          make(map[importKey]int),
		details:             make(map[importKey][]ImportDetails),
		squashed:            NewModuleSet(),
		namespace:           newNamespaceTree(),
	}
}

// Modules returns the names of all modules in the graph.
func (g *ImportGraph) Modules() ModuleSet {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make(ModuleSet, len(g.importedsByImporter))
	for name := range g.importedsByImporter {
		out.Add(name)
	}
	return out
}

// Contains reports whether the named module is present in the graph.
func (g *ImportGraph) Contains(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.contains(name)
}

// AddModule adds a module to the graph. Adding a module that is already
// present is a no-op and leaves its squashed flag untouched.
func (g *ImportGraph) AddModule(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addModule(name)
}

// AddSquashedModule adds a module whose node represents itself plus its
// entire subtree. It is an error to add one beneath an existing
// squashed module, or to squash-add a module already present in
// unsquashed form (and vice versa, AddModule never unsquashes).
func (g *ImportGraph) AddSquashedModule(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if ancestor, ok := g.squashedAncestor(name); ok {
		return fmt.Errorf("module %q is a descendant of squashed module %q", name, ancestor)
	}
	if g.contains(name) && !g.squashed.Contains(name) {
		return fmt.Errorf("module %q is already present in the graph as an unsquashed module", name)
	}
	g.addModule(name)
	g.squashed.Add(name)
	return nil
}

// RemoveModule removes a module and every edge touching it. Removing an
// absent module is a no-op.
func (g *ImportGraph) RemoveModule(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeModule(name)
}

// AddImport appends one import edge instance between the two modules,
// creating either endpoint if absent. Calling it again with the same
// endpoints appends another instance.
func (g *ImportGraph) AddImport(importer, imported string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addImportInstance(importer, imported, nil)
}

// AddImportWithDetails is AddImport with source provenance attached to
// the new edge instance.
func (g *ImportGraph) AddImportWithDetails(importer, imported string, lineNumber int, lineContents string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addImportInstance(importer, imported, &ImportDetails{
		Importer:     importer,
		Imported:     imported,
		LineNumber:   lineNumber,
		LineContents: lineContents,
	})
}

// RemoveImport removes every edge instance between the ordered pair,
// leaving the modules in place. Removing an absent import is a no-op.
func (g *ImportGraph) RemoveImport(importer, imported string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeImportAll(importKey{importer, imported})
}

// CountImports returns the total number of edge instances in the graph.
func (g *ImportGraph) CountImports() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.totalImports
}

// DirectImportExists reports whether at least one edge instance exists
// between the two modules. With asPackages, each side stands for the
// module plus all its descendants; the two closures must not overlap.
func (g *ImportGraph) DirectImportExists(importer, imported string, asPackages bool) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !asPackages {
		return g.importedsByImporter[importer].Contains(imported), nil
	}

	importerModules := g.allModulesInPackage(importer)
	importedModules := g.allModulesInPackage(imported)
	if importerModules.Intersects(importedModules) {
		return false, &SharedDescendantsError{First: importer, Second: imported}
	}

	for candidate := range importerModules {
		importeds := g.importedsByImporter[candidate]
		for target := range importedModules {
			if importeds.Contains(target) {
				return true, nil
			}
		}
	}
	return false, nil
}

// ModulesDirectlyImportedBy returns the set of modules the named module
// imports directly. Empty for modules not present in the graph.
func (g *ImportGraph) ModulesDirectlyImportedBy(module string) ModuleSet {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.importedsByImporter[module].Copy()
}

// ModulesThatDirectlyImport returns the set of modules that directly
// import the named module. Empty for modules not present in the graph.
func (g *ImportGraph) ModulesThatDirectlyImport(module string) ModuleSet {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.importersByImported[module].Copy()
}

// ImportDetails returns the provenance records for edge instances
// between the pair, in insertion order. Instances added without
// provenance are omitted, so an empty result is not proof that no
// import exists: check DirectImportExists for that.
func (g *ImportGraph) ImportDetails(importer, imported string) []ImportDetails {
	g.mu.RLock()
	defer g.mu.RUnlock()

	stored := g.details[importKey{importer, imported}]
	out := make([]ImportDetails, len(stored))
	copy(out, stored)
	return out
}

// Clone returns a deep copy of the graph. The copy shares no mutable
// state with the original.
func (g *ImportGraph) Clone() *ImportGraph {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.clone()
}

// Internal helpers. All assume g.mu is held.

func (g *ImportGraph) contains(name string) bool {
	_, ok := g.importedsByImporter[name]
	return ok
}

func (g *ImportGraph) addModule(name string) {
	if g.contains(name) {
		return
	}
	g.importedsByImporter[name] = NewModuleSet()
	g.importersByImported[name] = NewModuleSet()
	g.namespace.add(name)
}

func (g *ImportGraph) removeModule(name string) {
	if !g.contains(name) {
		return
	}
	for imported := range g.importedsByImporter[name].Copy() {
		g.removeImportAll(importKey{name, imported})
	}
	for importer := range g.importersByImported[name].Copy() {
		g.removeImportAll(importKey{importer, name})
	}
	delete(g.importedsByImporter, name)
	delete(g.importersByImported, name)
	g.squashed.Remove(name)
	g.namespace.remove(name)
}

func (g *ImportGraph) addImportInstance(importer, imported string, details *ImportDetails) {
	g.addModule(importer)
	g.addModule(imported)

	key := importKey{importer, imported}
	g.importedsByImporter[importer].Add(imported)
	g.importersByImported[imported].Add(importer)
	g.edgeCounts[key]++
	g.totalImports++
	if details != nil {
		g.details[key] = append(g.details[key], *details)
	}
}

func (g *ImportGraph) removeImportAll(key importKey) {
	count, ok := g.edgeCounts[key]
	if !ok {
		return
	}
	g.totalImports -= count
	delete(g.edgeCounts, key)
	delete(g.details, key)
	if s, ok := g.importedsByImporter[key.importer]; ok {
		s.Remove(key.imported)
	}
	if s, ok := g.importersByImported[key.imported]; ok {
		s.Remove(key.importer)
	}
}

// squashedAncestor walks up the dotted hierarchy looking for a squashed
// module above name.
func (g *ImportGraph) squashedAncestor(name string) (string, bool) {
	for {
		parent, ok := parentName(name)
		if !ok {
			return "", false
		}
		if g.contains(parent) && g.squashed.Contains(parent) {
			return parent, true
		}
		name = parent
	}
}

// allModulesInPackage returns the module plus its descendants. Squashed
// modules already stand for their subtree, so they map to themselves.
func (g *ImportGraph) allModulesInPackage(name string) ModuleSet {
	closure := NewModuleSet(name)
	if !g.squashed.Contains(name) {
		for descendant := range g.namespace.descendantsOf(name) {
			closure.Add(descendant)
		}
	}
	return closure
}

func (g *ImportGraph) clone() *ImportGraph {
	out := NewImportGraph()
	for name := range g.importedsByImporter {
		out.addModule(name)
	}
	for name, importeds := range g.importedsByImporter {
		out.importedsByImporter[name] = importeds.Copy()
	}
	for name, importers := range g.importersByImported {
		out.importersByImported[name] = importers.Copy()
	}
	for key, count := range g.edgeCounts {
		out.edgeCounts[key] = count
	}
	for key, stored := range g.details {
		records := make([]ImportDetails, len(stored))
		copy(records, stored)
		out.details[key] = records
	}
	out.squashed = g.squashed.Copy()
	out.totalImports = g.totalImports
	return out
}
