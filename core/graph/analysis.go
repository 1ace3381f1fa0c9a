package graph

import (
	"fmt"
	"strings"
)

// Route is a fan-in/fan-out aggregate of import chains that share an
// identical internal sequence of modules. Heads are the importer-side
// start modules, Tails the imported-side end modules, and Middle the
// shared intermediate hops (empty for direct imports). Routes are
// computed fresh per query and never stored.
type Route struct {
	Heads  ModuleSet
	Middle []string
	Tails  ModuleSet
}

func (r Route) String() string {
	parts := []string{formatEndpoints(r.Heads)}
	parts = append(parts, r.Middle...)
	parts = append(parts, formatEndpoints(r.Tails))
	return strings.Join(parts, " -> ")
}

// middleKey identifies the route's shape for deduplication.
func (r Route) middleKey() string {
	return strings.Join(r.Middle, "\x1f")
}

func formatEndpoints(modules ModuleSet) string {
	names := modules.Sorted()
	if len(names) == 1 {
		return names[0]
	}
	return "{" + strings.Join(names, ", ") + "}"
}

// PackageDependency aggregates every Route found from one package to
// another during a layer check. Routes are deduplicated by middle.
type PackageDependency struct {
	// Importer is the package on the downstream (illegal) side.
	Importer string
	// Imported is the package that must not be reached from Importer.
	Imported string
	Routes   []Route
}

func (d PackageDependency) String() string {
	return fmt.Sprintf("%s -> %s (%d routes)", d.Importer, d.Imported, len(d.Routes))
}
