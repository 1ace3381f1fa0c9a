package graph

import "strings"

// A directedEdge is an (importer, imported) pair used by searches that
// temporarily suppress parts of the graph.
type directedEdge struct {
	importer string
	imported string
}

// DownstreamModules returns every module with a directed path (length
// at least one) ending at the named module. With asPackage, paths may
// end anywhere inside the module's closure, and closure members are
// never part of the result even when they import each other.
func (g *ImportGraph) DownstreamModules(module string, asPackage bool) ModuleSet {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.reach(g.importersByImported, module, asPackage)
}

// UpstreamModules is the mirror image: every module reachable from the
// named module (or its closure) by following imports.
func (g *ImportGraph) UpstreamModules(module string, asPackage bool) ModuleSet {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.reach(g.importedsByImporter, module, asPackage)
}

func (g *ImportGraph) reach(adjacency map[string]ModuleSet, module string, asPackage bool) ModuleSet {
	closure := NewModuleSet(module)
	if asPackage {
		closure = g.allModulesInPackage(module)
	}

	result := NewModuleSet()
	visited := closure.Copy()
	queue := closure.Sorted()
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for neighbor := range adjacency[current] {
			if visited.Contains(neighbor) {
				continue
			}
			visited.Add(neighbor)
			result.Add(neighbor)
			queue = append(queue, neighbor)
		}
	}
	return result
}

// ShortestChain returns the shortest sequence of modules leading from
// importer to imported, each importing the next, or nil if no chain
// exists. Ties between equal-length chains are broken by expanding
// neighbors in lexicographic order, so results are deterministic.
// ShortestChain(m, m) is nil unless a genuine cycle returns to m.
func (g *ImportGraph) ShortestChain(importer, imported string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return shortestChain(g.importedsByImporter, importer, imported)
}

// ChainExists reports whether any chain of imports leads from importer
// to imported. With asPackages both sides are expanded to their
// closures, which must not overlap.
func (g *ImportGraph) ChainExists(importer, imported string, asPackages bool) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !asPackages {
		return shortestChain(g.importedsByImporter, importer, imported) != nil, nil
	}

	downstream := g.allModulesInPackage(importer)
	upstream := g.allModulesInPackage(imported)
	if downstream.Intersects(upstream) {
		return false, &SharedDescendantsError{First: importer, Second: imported}
	}

	for _, from := range downstream.Sorted() {
		for _, to := range upstream.Sorted() {
			if shortestChain(g.importedsByImporter, from, to) != nil {
				return true, nil
			}
		}
	}
	return false, nil
}

// ShortestChains returns the shortest chain for every pair of modules
// drawn from the importer's and imported's closures, then discards any
// chain that is wholly contained within another returned chain. Edges
// internal to either closure, and edges touching closure members other
// than the pair under consideration, are suppressed during each search
// so that each chain genuinely connects its own endpoints.
func (g *ImportGraph) ShortestChains(importer, imported string, asPackages bool) ([][]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	downstream := NewModuleSet(importer)
	upstream := NewModuleSet(imported)
	if asPackages {
		downstream = g.allModulesInPackage(importer)
		upstream = g.allModulesInPackage(imported)
	}
	if downstream.Intersects(upstream) {
		return nil, &SharedDescendantsError{First: importer, Second: imported}
	}

	adjacency := cloneAdjacency(g.importedsByImporter)

	// Suppress imports within each closure for the whole search.
	internal := g.importsAmong(downstream)
	internal = append(internal, g.importsAmong(upstream)...)
	hideEdges(adjacency, internal)

	// Suppress every edge touching a closure member, revealing only the
	// two members of the pair being searched. Incident edges are read
	// from the already-filtered adjacency, so edges within a closure
	// stay suppressed for the whole search.
	members := downstream.Union(upstream)
	incident := make(map[string][]directedEdge, len(members))
	for member := range members {
		incident[member] = incidentEdgesIn(adjacency, member)
	}
	for member := range members {
		hideEdges(adjacency, incident[member])
	}

	var chains [][]string
	for _, to := range upstream.Sorted() {
		revealEdges(adjacency, incident[to])
		for _, from := range downstream.Sorted() {
			revealEdges(adjacency, incident[from])
			if chain := shortestChain(adjacency, from, to); chain != nil {
				chains = append(chains, chain)
			}
			hideEdges(adjacency, incident[from])
		}
		hideEdges(adjacency, incident[to])
	}

	return dropContainedChains(chains), nil
}

// importsAmong returns the edges whose endpoints both sit inside the
// supplied set.
func (g *ImportGraph) importsAmong(modules ModuleSet) []directedEdge {
	var out []directedEdge
	for importer := range modules {
		for imported := range g.importedsByImporter[importer] {
			if modules.Contains(imported) {
				out = append(out, directedEdge{importer, imported})
			}
		}
	}
	return out
}

// incidentEdgesIn returns every edge in the adjacency touching the
// module, in either direction.
func incidentEdgesIn(adjacency map[string]ModuleSet, module string) []directedEdge {
	var out []directedEdge
	for importer, neighbors := range adjacency {
		if neighbors.Contains(module) {
			out = append(out, directedEdge{importer, module})
		}
	}
	for imported := range adjacency[module] {
		out = append(out, directedEdge{module, imported})
	}
	return out
}

func cloneAdjacency(adjacency map[string]ModuleSet) map[string]ModuleSet {
	out := make(map[string]ModuleSet, len(adjacency))
	for name, neighbors := range adjacency {
		out[name] = neighbors.Copy()
	}
	return out
}

func hideEdges(adjacency map[string]ModuleSet, edges []directedEdge) {
	for _, edge := range edges {
		if neighbors, ok := adjacency[edge.importer]; ok {
			neighbors.Remove(edge.imported)
		}
	}
}

func revealEdges(adjacency map[string]ModuleSet, edges []directedEdge) {
	for _, edge := range edges {
		if neighbors, ok := adjacency[edge.importer]; ok {
			neighbors.Add(edge.imported)
		}
	}
}

// shortestChain runs a breadth-first search over the supplied adjacency
// from importer to imported. The goal is tested on edge traversal
// rather than on dequeue, so a search from a module to itself only
// succeeds through a real cycle.
func shortestChain(adjacency map[string]ModuleSet, importer, imported string) []string {
	if _, ok := adjacency[importer]; !ok {
		return nil
	}

	predecessors := make(map[string]string)
	visited := NewModuleSet(importer)
	queue := []string{importer}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, neighbor := range adjacency[current].Sorted() {
			if neighbor == imported {
				return assembleChain(predecessors, importer, current, neighbor)
			}
			if visited.Contains(neighbor) {
				continue
			}
			visited.Add(neighbor)
			predecessors[neighbor] = current
			queue = append(queue, neighbor)
		}
	}
	return nil
}

// shortestChainBetweenSets is a multi-source variant: the shortest
// chain starting at any member of from and ending at any member of to,
// with members of either set never used as intermediate hops.
func shortestChainBetweenSets(adjacency map[string]ModuleSet, from, to ModuleSet) []string {
	predecessors := make(map[string]string)
	visited := from.Copy()
	queue := from.Sorted()
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, neighbor := range adjacency[current].Sorted() {
			if to.Contains(neighbor) {
				return assembleChainFromSet(predecessors, from, current, neighbor)
			}
			if visited.Contains(neighbor) {
				continue
			}
			visited.Add(neighbor)
			predecessors[neighbor] = current
			queue = append(queue, neighbor)
		}
	}
	return nil
}

func assembleChain(predecessors map[string]string, start, last, goal string) []string {
	chain := []string{goal}
	for current := last; ; current = predecessors[current] {
		chain = append([]string{current}, chain...)
		if current == start {
			break
		}
	}
	return chain
}

func assembleChainFromSet(predecessors map[string]string, starts ModuleSet, last, goal string) []string {
	chain := []string{goal}
	for current := last; ; current = predecessors[current] {
		chain = append([]string{current}, chain...)
		if starts.Contains(current) {
			break
		}
	}
	return chain
}

// dropContainedChains removes chains whose module sequence appears as a
// contiguous subsequence of another chain in the set, keeping only
// maximal chains (one per distinct path shape). Duplicates collapse.
func dropContainedChains(chains [][]string) [][]string {
	keys := make([]string, len(chains))
	seen := NewModuleSet()
	for i, chain := range chains {
		keys[i] = strings.Join(chain, "\x1f")
	}

	var out [][]string
	for i, chain := range chains {
		if seen.Contains(keys[i]) {
			continue
		}
		contained := false
		for j, other := range chains {
			if i == j || len(chain) > len(other) {
				continue
			}
			if len(chain) == len(other) && keys[i] == keys[j] && i < j {
				continue // identical chain, keep the first occurrence
			}
			if keys[i] != keys[j] && strings.Contains("\x1f"+keys[j]+"\x1f", "\x1f"+keys[i]+"\x1f") {
				contained = true
				break
			}
		}
		if !contained {
			seen.Add(keys[i])
			out = append(out, chain)
		}
	}
	return out
}
