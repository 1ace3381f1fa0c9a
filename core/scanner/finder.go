// Package scanner discovers the Python modules inside a package
// directory and statically extracts the import statements from each
// module's source.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/depscope/depscope/core/logger"
)

// ModuleFile is one discovered Python module.
type ModuleFile struct {
	// Module is the absolute dotted module name, e.g. "mypackage.foo".
	Module string
	// Path is the filesystem path of the source file.
	Path string
	// ModTime is the file's modification time, used for cache staleness.
	ModTime time.Time
	// IsPackage reports whether the file is an __init__.py.
	IsPackage bool
}

// FoundPackage is the result of walking one top level package.
type FoundPackage struct {
	Name        string
	Directory   string
	ModuleFiles []ModuleFile
}

// Modules returns the dotted names of every module file in the package.
func (p FoundPackage) Modules() []string {
	out := make([]string, len(p.ModuleFiles))
	for i, mf := range p.ModuleFiles {
		out[i] = mf.Module
	}
	return out
}

// FindPackageDirectory locates the directory for a package name by
// checking each search path in order. The name may be dotted, in which
// case the dots map to nested directories.
func FindPackageDirectory(packageName string, searchPaths []string) (string, error) {
	relative := filepath.Join(strings.Split(packageName, ".")...)
	for _, searchPath := range searchPaths {
		candidate := filepath.Join(searchPath, relative)
		if info, err := os.Stat(filepath.Join(candidate, "__init__.py")); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not find package %q in search paths %v", packageName, searchPaths)
}

// FindPackage walks the package directory and collects its module
// files. Subdirectories are only descended into when they contain an
// __init__.py; hidden directories, hidden files and filenames with
// more than one dot are skipped.
func FindPackage(packageName, packageDirectory string) (FoundPackage, error) {
	found := FoundPackage{Name: packageName, Directory: packageDirectory}

	err := filepath.Walk(packageDirectory, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path == packageDirectory {
				return nil
			}
			if strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			if _, err := os.Stat(filepath.Join(path, "__init__.py")); err != nil {
				return filepath.SkipDir
			}
			return nil
		}

		if !isPythonFile(info.Name(), path) {
			return nil
		}

		moduleName, err := moduleNameFromPath(packageName, packageDirectory, path)
		if err != nil {
			return err
		}
		found.ModuleFiles = append(found.ModuleFiles, ModuleFile{
			Module:    moduleName,
			Path:      path,
			ModTime:   info.ModTime(),
			IsPackage: info.Name() == "__init__.py",
		})
		return nil
	})
	if err != nil {
		return FoundPackage{}, fmt.Errorf("walking package %q: %w", packageName, err)
	}

	if len(found.ModuleFiles) == 0 {
		return FoundPackage{}, fmt.Errorf("package %q has no Python modules under %q (missing __init__.py?)", packageName, packageDirectory)
	}
	return found, nil
}

func isPythonFile(name, path string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	if !strings.HasSuffix(name, ".py") {
		return false
	}
	// Files like some.module.py aren't importable.
	if strings.Count(name, ".") > 1 {
		logger.Warn("Skipping module with too many dots in the name: %s", path)
		return false
	}
	return true
}

// moduleNameFromPath turns a file path inside the package directory
// into an absolute dotted module name. An __init__.py names its
// containing directory.
func moduleNameFromPath(packageName, packageDirectory, path string) (string, error) {
	relative, err := filepath.Rel(packageDirectory, path)
	if err != nil {
		return "", err
	}
	relative = strings.TrimSuffix(relative, ".py")

	components := append([]string{packageName}, strings.Split(relative, string(filepath.Separator))...)
	if components[len(components)-1] == "__init__" {
		components = components[:len(components)-1]
	}
	return strings.Join(components, "."), nil
}
