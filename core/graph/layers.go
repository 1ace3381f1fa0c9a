package graph

import "sort"

// Layer is one level of a layered architecture: one or more sibling
// module tails that sit at the same height. Independent siblings must
// not import each other.
type Layer struct {
	Modules     []string
	Independent bool
}

// NewLayer returns a Layer whose siblings are independent, which is the
// common case.
func NewLayer(modules ...string) Layer {
	return Layer{Modules: modules, Independent: true}
}

// layerPermutation is one (lower imports higher) direction to check.
type layerPermutation struct {
	importer  string // resolved lower-layer package
	imported  string // resolved higher-layer package
	container string
}

// FindIllegalDependenciesForLayers finds dependencies that break the
// supplied layered architecture. Layers are ordered from highest to
// lowest: a higher layer may import a lower one, never the reverse, and
// independent siblings within one layer may not import each other.
// Relative layer names are resolved under each container; with no
// containers they are used as absolute names. Layers missing from the
// graph are skipped silently; a missing container is an error.
//
// For each illegal direction the search repeatedly finds a shortest
// offending chain, records it as a Route, and removes the chain's
// intermediate modules from a working copy before searching again. The
// result is a set of witnesses, not an exhaustive edge enumeration:
// an illegal edge sharing its middle with an already-recorded Route is
// absorbed into that Route's heads and tails. Sources and neighbors are
// always visited in lexicographic order and the result is sorted by
// (importer, imported), so equal-length ties resolve deterministically.
func (g *ImportGraph) FindIllegalDependenciesForLayers(layers []Layer, containers []string) ([]PackageDependency, error) {
	g.mu.RLock()
	for _, container := range containers {
		if !g.contains(container) {
			g.mu.RUnlock()
			return nil, &NoSuchContainerError{Container: container}
		}
	}
	snapshot := g.clone()
	g.mu.RUnlock()

	permutations := generateLayerPermutations(snapshot, layers, containers)

	var dependencies []PackageDependency
	for _, perm := range permutations {
		others := resolvedLayerModules(snapshot, layers, perm.container)
		others.Remove(perm.importer)
		others.Remove(perm.imported)

		routes := findRoutes(snapshot, perm.importer, perm.imported, others)
		if len(routes) > 0 {
			dependencies = append(dependencies, PackageDependency{
				Importer: perm.importer,
				Imported: perm.imported,
				Routes:   routes,
			})
		}
	}

	sort.Slice(dependencies, func(i, j int) bool {
		if dependencies[i].Importer != dependencies[j].Importer {
			return dependencies[i].Importer < dependencies[j].Importer
		}
		return dependencies[i].Imported < dependencies[j].Imported
	})
	return dependencies, nil
}

// generateLayerPermutations yields every illegal direction to probe:
// each lower layer module importing each higher layer module, plus both
// directions between independent siblings of a single layer.
func generateLayerPermutations(g *ImportGraph, layers []Layer, containers []string) []layerPermutation {
	quasiContainers := containers
	if len(quasiContainers) == 0 {
		quasiContainers = []string{""}
	}

	var permutations []layerPermutation
	for _, container := range quasiContainers {
		for index, higher := range layers {
			for _, higherTail := range higher.Modules {
				higherModule := resolveLayerModule(higherTail, container)
				if !g.contains(higherModule) {
					continue
				}
				for _, lower := range layers[index+1:] {
					for _, lowerTail := range lower.Modules {
						lowerModule := resolveLayerModule(lowerTail, container)
						if !g.contains(lowerModule) {
							continue
						}
						permutations = append(permutations, layerPermutation{
							importer:  lowerModule,
							imported:  higherModule,
							container: container,
						})
					}
				}
			}
		}

		// Independent siblings are checked in both directions.
		for _, layer := range layers {
			if !layer.Independent || len(layer.Modules) < 2 {
				continue
			}
			for _, first := range layer.Modules {
				firstModule := resolveLayerModule(first, container)
				if !g.contains(firstModule) {
					continue
				}
				for _, second := range layer.Modules {
					if second == first {
						continue
					}
					secondModule := resolveLayerModule(second, container)
					if !g.contains(secondModule) {
						continue
					}
					permutations = append(permutations, layerPermutation{
						importer:  secondModule,
						imported:  firstModule,
						container: container,
					})
				}
			}
		}
	}
	return permutations
}

func resolveLayerModule(tail, container string) string {
	if container == "" {
		return tail
	}
	return container + "." + tail
}

func resolvedLayerModules(g *ImportGraph, layers []Layer, container string) ModuleSet {
	out := NewModuleSet()
	for _, layer := range layers {
		for _, tail := range layer.Modules {
			module := resolveLayerModule(tail, container)
			if g.contains(module) {
				out.Add(module)
			}
		}
	}
	return out
}

// findRoutes collects the Routes by which importerPackage reaches
// importedPackage. It works on a clone of the graph with the other
// layers' closures removed, so chains passing through a different layer
// are reported against that layer's own permutation instead.
func findRoutes(g *ImportGraph, importerPackage, importedPackage string, otherLayers ModuleSet) []Route {
	working := g.clone()
	for other := range otherLayers {
		for descendant := range working.namespace.descendantsOf(other) {
			working.removeModule(descendant)
		}
		working.removeModule(other)
	}

	downstream := working.allModulesInPackage(importerPackage)
	upstream := working.allModulesInPackage(importedPackage)

	var routes []Route

	// Direct imports between the two closures become a single Route
	// with an empty middle.
	heads, tails := NewModuleSet(), NewModuleSet()
	for _, importer := range downstream.Sorted() {
		for _, imported := range working.importedsByImporter[importer].Sorted() {
			if upstream.Contains(imported) {
				heads.Add(importer)
				tails.Add(imported)
			}
		}
	}
	for importer := range heads {
		for imported := range working.importedsByImporter[importer].Copy() {
			if upstream.Contains(imported) {
				working.removeImportAll(importKey{importer, imported})
			}
		}
	}
	if len(heads) > 0 {
		routes = append(routes, Route{Heads: heads, Middle: nil, Tails: tails})
	}

	// Indirect chains: pop the shortest remaining chain, fan its ends
	// out across the closures, then remove the middle modules so the
	// next iteration discovers a structurally different chain.
	for {
		chain := shortestChainBetweenSets(working.importedsByImporter, downstream, upstream)
		if chain == nil {
			break
		}
		middle := chain[1 : len(chain)-1]

		routeHeads := NewModuleSet()
		for member := range downstream {
			if working.importedsByImporter[member].Contains(middle[0]) {
				routeHeads.Add(member)
			}
		}
		routeTails := NewModuleSet()
		for imported := range working.importedsByImporter[middle[len(middle)-1]] {
			if upstream.Contains(imported) {
				routeTails.Add(imported)
			}
		}
		routes = append(routes, Route{
			Heads:  routeHeads,
			Middle: append([]string(nil), middle...),
			Tails:  routeTails,
		})

		for _, module := range middle {
			working.removeModule(module)
		}
	}

	return mergeRoutesByMiddle(routes)
}

// mergeRoutesByMiddle unions the heads and tails of routes that share
// an identical middle, keeping first-seen order.
func mergeRoutesByMiddle(routes []Route) []Route {
	var out []Route
	index := make(map[string]int)
	for _, route := range routes {
		key := route.middleKey()
		if i, ok := index[key]; ok {
			out[i].Heads = out[i].Heads.Union(route.Heads)
			out[i].Tails = out[i].Tails.Union(route.Tails)
			continue
		}
		index[key] = len(out)
		out = append(out, route)
	}
	return out
}
