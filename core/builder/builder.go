// Package builder assembles an import graph from Python packages on
// disk, routing scans through the disk and in-memory caches.
package builder

import (
	"fmt"

	"github.com/depscope/depscope/core/cache"
	"github.com/depscope/depscope/core/graph"
	"github.com/depscope/depscope/core/logger"
	"github.com/depscope/depscope/core/scanner"
)

// Options configure one build.
type Options struct {
	// SearchPaths are the directories package names are resolved
	// against, in order. Defaults to the working directory.
	SearchPaths []string
	// IncludeExternalPackages adds imported third-party packages to the
	// graph as squashed modules.
	IncludeExternalPackages bool
	// ExcludeTypeCheckingImports drops imports guarded by
	// `if TYPE_CHECKING:` blocks.
	ExcludeTypeCheckingImports bool
	// CacheDir overrides the default cache directory.
	CacheDir string
	// NoCache disables the disk cache entirely.
	NoCache bool
	// ScanCache, when set, reuses scan results across builds in the
	// same process. Watch mode passes one in.
	ScanCache *cache.ScanCache
}

// Build scans the named packages and returns their import graph. Every
// discovered module is added even when nothing imports it; external
// imports become squashed modules.
func Build(packageNames []string, opts Options) (*graph.ImportGraph, error) {
	if len(packageNames) == 0 {
		return nil, fmt.Errorf("no packages to build")
	}
	searchPaths := opts.SearchPaths
	if len(searchPaths) == 0 {
		searchPaths = []string{"."}
	}

	var foundPackages []scanner.FoundPackage
	for _, name := range packageNames {
		dir, err := scanner.FindPackageDirectory(name, searchPaths)
		if err != nil {
			return nil, err
		}
		found, err := scanner.FindPackage(name, dir)
		if err != nil {
			return nil, err
		}
		logger.Debug("Found package %s at %s (%d modules)", name, dir, len(found.ModuleFiles))
		foundPackages = append(foundPackages, found)
	}

	importsByModule, err := scanPackages(foundPackages, opts)
	if err != nil {
		return nil, err
	}
	return assembleGraph(foundPackages, importsByModule)
}

// scanPackages produces the imports of every module, consulting the
// in-memory scan cache, then the disk cache, before scanning source.
func scanPackages(foundPackages []scanner.FoundPackage, opts Options) (map[string][]scanner.DirectImport, error) {
	s := scanner.NewImportScanner(foundPackages, opts.IncludeExternalPackages)

	var disk *cache.DiskCache
	if !opts.NoCache {
		disk = cache.Setup(opts.CacheDir, foundPackages, opts.IncludeExternalPackages, opts.ExcludeTypeCheckingImports)
	}

	importsByModule := make(map[string][]scanner.DirectImport)
	scanned := 0
	for _, pkg := range foundPackages {
		for _, mf := range pkg.ModuleFiles {
			if opts.ScanCache != nil {
				if imports, ok := opts.ScanCache.Get(mf.Path, mf.ModTime); ok {
					importsByModule[mf.Module] = imports
					continue
				}
			}
			if disk != nil {
				if imports, ok := disk.ReadImports(mf); ok {
					importsByModule[mf.Module] = imports
					if opts.ScanCache != nil {
						opts.ScanCache.Put(mf.Path, mf.ModTime, imports)
					}
					continue
				}
			}

			imports, err := s.ScanForImports(mf, opts.ExcludeTypeCheckingImports)
			if err != nil {
				return nil, err
			}
			scanned++
			importsByModule[mf.Module] = imports
			if opts.ScanCache != nil {
				opts.ScanCache.Put(mf.Path, mf.ModTime, imports)
			}
		}
	}
	logger.Debug("Scanned %d modules from source", scanned)

	if disk != nil {
		if err := disk.Write(importsByModule); err != nil {
			return nil, err
		}
	}
	return importsByModule, nil
}

func assembleGraph(foundPackages []scanner.FoundPackage, importsByModule map[string][]scanner.DirectImport) (*graph.ImportGraph, error) {
	g := graph.NewImportGraph()

	internal := make(map[string]struct{})
	for _, pkg := range foundPackages {
		for _, mf := range pkg.ModuleFiles {
			g.AddModule(mf.Module)
			internal[mf.Module] = struct{}{}
		}
	}

	for _, pkg := range foundPackages {
		for _, mf := range pkg.ModuleFiles {
			for _, imp := range importsByModule[mf.Module] {
				if _, ok := internal[imp.Imported]; !ok {
					if err := g.AddSquashedModule(imp.Imported); err != nil {
						return nil, fmt.Errorf("adding external module %q: %w", imp.Imported, err)
					}
				}
				g.AddImportWithDetails(imp.Importer, imp.Imported, imp.LineNumber, imp.LineContents)
			}
		}
	}
	return g, nil
}
