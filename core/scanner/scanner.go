package scanner

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/depscope/depscope/core/logger"
)

// DirectImport is one resolved import found in a module's source.
type DirectImport struct {
	Importer     string `json:"importer"`
	Imported     string `json:"imported"`
	LineNumber   int    `json:"line_number"`
	LineContents string `json:"line_contents"`
}

// ImportScanner resolves the raw imported names found in source files
// against the set of known internal modules. Names that resolve to no
// internal module are external, kept (distilled to their top level
// portion) only when the scanner includes external packages.
type ImportScanner struct {
	foundPackages           []FoundPackage
	internalModules         map[string]struct{}
	includeExternalPackages bool
}

// NewImportScanner returns a scanner for modules belonging to the
// supplied packages.
func NewImportScanner(foundPackages []FoundPackage, includeExternalPackages bool) *ImportScanner {
	internal := make(map[string]struct{})
	for _, pkg := range foundPackages {
		for _, mf := range pkg.ModuleFiles {
			internal[mf.Module] = struct{}{}
		}
	}
	return &ImportScanner{
		foundPackages:           foundPackages,
		internalModules:         internal,
		includeExternalPackages: includeExternalPackages,
	}
}

// ScanForImports reads and parses one module file, returning its
// resolved imports. Identical import statements collapse to one record.
func (s *ImportScanner) ScanForImports(mf ModuleFile, excludeTypeCheckingImports bool) ([]DirectImport, error) {
	contents, err := os.ReadFile(mf.Path)
	if err != nil {
		return nil, fmt.Errorf("reading module %q: %w", mf.Module, err)
	}

	var out []DirectImport
	seen := make(map[DirectImport]struct{})
	for _, parsed := range parseImports(string(contents)) {
		if excludeTypeCheckingImports && parsed.typeCheckingOnly {
			continue
		}

		name := resolveRelativeName(mf.Module, mf.IsPackage, parsed.name)

		imported, ok := s.resolveInternalModule(name)
		if !ok {
			if !s.includeExternalPackages {
				continue
			}
			imported, ok = s.distillExternalModule(name)
			if !ok {
				logger.Debug("Ignoring import of %s by %s", name, mf.Module)
				continue
			}
		}

		record := DirectImport{
			Importer:     mf.Module,
			Imported:     imported,
			LineNumber:   parsed.lineNumber,
			LineContents: parsed.lineContents,
		}
		if _, duplicate := seen[record]; duplicate {
			continue
		}
		seen[record] = struct{}{}
		out = append(out, record)
	}
	return out, nil
}

// resolveRelativeName turns a relative imported name into an absolute
// one. For a package (__init__.py), one dot refers to the module
// itself; for a plain module, one dot refers to its parent. Each
// further dot climbs one more level.
func resolveRelativeName(module string, isPackage bool, name string) string {
	dots := 0
	for dots < len(name) && name[dots] == '.' {
		dots++
	}
	if dots == 0 {
		return name
	}

	parts := strings.Split(module, ".")
	var keep int
	if isPackage {
		keep = len(parts) - dots + 1
	} else {
		keep = len(parts) - dots
	}
	if keep < 1 {
		keep = 1
	}
	return strings.Join(parts[:keep], ".") + "." + name[dots:]
}

// resolveInternalModule maps an absolute imported name to an internal
// module: the name itself if it is a module, else its parent (the name
// was a member such as a function or class).
func (s *ImportScanner) resolveInternalModule(name string) (string, bool) {
	if _, ok := s.internalModules[name]; ok {
		return name, true
	}
	if parent, ok := parentOf(name); ok {
		if _, found := s.internalModules[parent]; found {
			return parent, true
		}
	}
	return "", false
}

// distillExternalModule reduces an external imported name to the module
// worth adding to the graph, normally its top level package. Names
// sharing a namespace with an internal package keep the shallowest
// component that does not clash with that namespace, so that namespace
// portions stay distinct. Names that are ancestors of an internal
// package are dropped, since they are namespace packages rather than
// real imports.
func (s *ImportScanner) distillExternalModule(name string) (string, bool) {
	for _, pkg := range s.foundPackages {
		if strings.HasPrefix(pkg.Name, name+".") {
			return "", false
		}
	}

	root := name
	if i := strings.Index(name, "."); i >= 0 {
		root = name[:i]
	}

	var portions []string
	for _, pkg := range s.foundPackages {
		if !strings.HasPrefix(pkg.Name, root+".") {
			continue
		}
		internal := strings.Split(pkg.Name, ".")
		external := strings.Split(name, ".")
		shared := 0
		for shared < len(internal) && shared < len(external) && internal[shared] == external[shared] {
			shared++
		}
		if shared < len(external) {
			portions = append(portions, strings.Join(external[:shared+1], "."))
		}
	}

	if len(portions) == 0 {
		return root, true
	}

	// With several clashing namespaces, the deepest portion is the one
	// that is certainly not internal.
	sort.Slice(portions, func(i, j int) bool {
		return strings.Count(portions[i], ".") > strings.Count(portions[j], ".")
	})
	return portions[0], true
}

func parentOf(name string) (string, bool) {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return "", false
	}
	return name[:i], true
}
