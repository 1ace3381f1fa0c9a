// Package cache persists scan results between builds. The disk cache
// stores per-package module mtimes plus one data file per analysis
// configuration; the in-memory scan cache keeps per-file results alive
// across rebuilds in watch mode.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/depscope/depscope/core/logger"
	"github.com/depscope/depscope/core/scanner"
)

// DefaultDir is used when no cache directory is configured.
const DefaultDir = ".depscope_cache"

// DiskCache holds the deserialized contents of the cache directory for
// one analysis configuration. Build it with Setup, query it with
// ReadImports, and persist fresh results with Write.
type DiskCache struct {
	dir                        string
	foundPackages              []scanner.FoundPackage
	includeExternalPackages    bool
	excludeTypeCheckingImports bool

	mtimes  map[string]int64
	imports map[string][]scanner.DirectImport
}

// Setup reads the cache directory's meta and data files. Missing or
// corrupt files simply leave the cache empty; they are never an error.
func Setup(dir string, foundPackages []scanner.FoundPackage, includeExternalPackages, excludeTypeCheckingImports bool) *DiskCache {
	if dir == "" {
		dir = DefaultDir
	}
	c := &DiskCache{
		dir:                        dir,
		foundPackages:              foundPackages,
		includeExternalPackages:    includeExternalPackages,
		excludeTypeCheckingImports: excludeTypeCheckingImports,
		mtimes:                     make(map[string]int64),
		imports:                    make(map[string][]scanner.DirectImport),
	}
	c.readMetaFiles()
	c.readDataFile()
	return c
}

// ReadImports returns the cached imports for a module file, missing
// when the module is unknown or its file has changed since caching.
func (c *DiskCache) ReadImports(mf scanner.ModuleFile) ([]scanner.DirectImport, bool) {
	cachedMtime, ok := c.mtimes[mf.Module]
	if !ok || cachedMtime != mf.ModTime.UnixNano() {
		return nil, false
	}
	imports, ok := c.imports[mf.Module]
	if !ok {
		return nil, false
	}
	return imports, true
}

// Write persists the supplied scan results: one data file for this
// configuration and one meta file per package. The cache directory is
// created on first write, with marker files so it is ignored by git
// and recognized as a cache directory.
func (c *DiskCache) Write(importsByModule map[string][]scanner.DirectImport) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	c.writeMarkerFiles()

	data := make(map[string][]scanner.DirectImport)
	for _, pkg := range c.foundPackages {
		for _, mf := range pkg.ModuleFiles {
			imports := importsByModule[mf.Module]
			if imports == nil {
				imports = []scanner.DirectImport{}
			}
			data[mf.Module] = imports
		}
	}
	if err := writeJSON(c.dataFilename(), data); err != nil {
		return err
	}
	logger.Debug("Wrote data cache file %s", c.dataFilename())

	for _, pkg := range c.foundPackages {
		mtimes := make(map[string]int64, len(pkg.ModuleFiles))
		for _, mf := range pkg.ModuleFiles {
			mtimes[mf.Module] = mf.ModTime.UnixNano()
		}
		filename := c.metaFilename(pkg)
		if err := writeJSON(filename, mtimes); err != nil {
			return err
		}
		logger.Debug("Wrote meta cache file %s", filename)
	}
	return nil
}

func (c *DiskCache) metaFilename(pkg scanner.FoundPackage) string {
	return filepath.Join(c.dir, pkg.Name+".meta.json")
}

// dataFilename hashes the analysis configuration so that differently
// flagged builds of the same packages never share a data file.
func (c *DiskCache) dataFilename() string {
	packageNames := make([]string, len(c.foundPackages))
	for i, pkg := range c.foundPackages {
		packageNames[i] = pkg.Name
	}
	sort.Strings(packageNames)

	identifier := strings.Join(packageNames, ",")
	if c.includeExternalPackages {
		identifier += ":external"
	}
	if c.excludeTypeCheckingImports {
		identifier += ":no_type_checking"
	}

	sum := sha256.Sum256([]byte(identifier))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:20])+".data.json")
}

func (c *DiskCache) readMetaFiles() {
	for _, pkg := range c.foundPackages {
		filename := c.metaFilename(pkg)
		mtimes := make(map[string]int64)
		if !readJSON(filename, &mtimes) {
			continue
		}
		for module, mtime := range mtimes {
			c.mtimes[module] = mtime
		}
	}
}

func (c *DiskCache) readDataFile() {
	imports := make(map[string][]scanner.DirectImport)
	if readJSON(c.dataFilename(), &imports) {
		c.imports = imports
	}
}

func (c *DiskCache) writeMarkerFiles() {
	markers := map[string]string{
		".gitignore": "# Automatically created by depscope.\n*",
		"CACHEDIR.TAG": "Signature: 8a477f597d28d172789f06886806bc55\n" +
			"# This file is a cache directory tag automatically created by depscope.\n" +
			"# For information about cache directory tags see https://bford.info/cachedir/",
	}
	for name, contents := range markers {
		filename := filepath.Join(c.dir, name)
		if _, err := os.Stat(filename); err == nil {
			continue
		}
		if err := os.WriteFile(filename, []byte(contents), 0o644); err != nil {
			logger.Warn("Could not write cache marker file %s: %v", filename, err)
		}
	}
}

// readJSON reports whether the file was read and parsed. Corrupt files
// are logged and treated as absent.
func readJSON(filename string, target any) bool {
	contents, err := os.ReadFile(filename)
	if err != nil {
		logger.Debug("No cache file: %s", filename)
		return false
	}
	if err := json.Unmarshal(contents, target); err != nil {
		logger.Warn("Could not use corrupt cache file %s", filename)
		return false
	}
	logger.Debug("Used cache file %s", filename)
	return true
}

func writeJSON(filename string, value any) error {
	serialized, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("serializing cache file %s: %w", filename, err)
	}
	if err := os.WriteFile(filename, serialized, 0o644); err != nil {
		return fmt.Errorf("writing cache file %s: %w", filename, err)
	}
	return nil
}
