package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depscope/depscope/core/scanner"
)

func fixturePackage(mtime time.Time) scanner.FoundPackage {
	return scanner.FoundPackage{
		Name:      "mypackage",
		Directory: "/src/mypackage",
		ModuleFiles: []scanner.ModuleFile{
			{Module: "mypackage", Path: "/src/mypackage/__init__.py", ModTime: mtime, IsPackage: true},
			{Module: "mypackage.foo", Path: "/src/mypackage/foo.py", ModTime: mtime},
		},
	}
}

func TestDiskCache(t *testing.T) {
	t.Run("round trips imports for unchanged files", func(t *testing.T) {
		dir := t.TempDir()
		mtime := time.Now()
		pkg := fixturePackage(mtime)
		imports := []scanner.DirectImport{{
			Importer:     "mypackage.foo",
			Imported:     "mypackage",
			LineNumber:   3,
			LineContents: "from . import thing",
		}}

		writer := Setup(dir, []scanner.FoundPackage{pkg}, false, false)
		require.NoError(t, writer.Write(map[string][]scanner.DirectImport{
			"mypackage":     {},
			"mypackage.foo": imports,
		}))

		reader := Setup(dir, []scanner.FoundPackage{pkg}, false, false)
		cached, hit := reader.ReadImports(pkg.ModuleFiles[1])
		require.True(t, hit)
		assert.Equal(t, imports, cached)

		cached, hit = reader.ReadImports(pkg.ModuleFiles[0])
		require.True(t, hit)
		assert.Empty(t, cached)
	})

	t.Run("misses when the file has changed", func(t *testing.T) {
		dir := t.TempDir()
		mtime := time.Now()
		pkg := fixturePackage(mtime)

		writer := Setup(dir, []scanner.FoundPackage{pkg}, false, false)
		require.NoError(t, writer.Write(map[string][]scanner.DirectImport{}))

		changed := pkg.ModuleFiles[1]
		changed.ModTime = mtime.Add(time.Second)

		reader := Setup(dir, []scanner.FoundPackage{pkg}, false, false)
		_, hit := reader.ReadImports(changed)
		assert.False(t, hit)
	})

	t.Run("misses on an empty cache directory", func(t *testing.T) {
		pkg := fixturePackage(time.Now())
		reader := Setup(t.TempDir(), []scanner.FoundPackage{pkg}, false, false)

		_, hit := reader.ReadImports(pkg.ModuleFiles[0])
		assert.False(t, hit)
	})

	t.Run("configurations do not share data files", func(t *testing.T) {
		dir := t.TempDir()
		pkg := fixturePackage(time.Now())
		imports := map[string][]scanner.DirectImport{
			"mypackage.foo": {{Importer: "mypackage.foo", Imported: "django"}},
		}

		withExternal := Setup(dir, []scanner.FoundPackage{pkg}, true, false)
		require.NoError(t, withExternal.Write(imports))

		withoutExternal := Setup(dir, []scanner.FoundPackage{pkg}, false, false)
		_, hit := withoutExternal.ReadImports(pkg.ModuleFiles[1])
		assert.False(t, hit, "the external-packages build must not satisfy the plain build")
	})

	t.Run("tolerates corrupt cache files", func(t *testing.T) {
		dir := t.TempDir()
		pkg := fixturePackage(time.Now())
		require.NoError(t, os.WriteFile(filepath.Join(dir, "mypackage.meta.json"), []byte("{not json"), 0o644))

		reader := Setup(dir, []scanner.FoundPackage{pkg}, false, false)
		_, hit := reader.ReadImports(pkg.ModuleFiles[0])
		assert.False(t, hit)
	})

	t.Run("writes marker files once", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "cache")
		pkg := fixturePackage(time.Now())

		c := Setup(dir, []scanner.FoundPackage{pkg}, false, false)
		require.NoError(t, c.Write(map[string][]scanner.DirectImport{}))

		gitignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
		require.NoError(t, err)
		assert.Contains(t, string(gitignore), "*")
		_, err = os.Stat(filepath.Join(dir, "CACHEDIR.TAG"))
		assert.NoError(t, err)
	})
}

func TestScanCache(t *testing.T) {
	t.Run("hits on matching modification time", func(t *testing.T) {
		c, err := NewScanCache(8)
		require.NoError(t, err)

		mtime := time.Now()
		imports := []scanner.DirectImport{{Importer: "a", Imported: "b"}}
		c.Put("/src/a.py", mtime, imports)

		cached, hit := c.Get("/src/a.py", mtime)
		require.True(t, hit)
		assert.Equal(t, imports, cached)
	})

	t.Run("misses when the file has changed", func(t *testing.T) {
		c, err := NewScanCache(8)
		require.NoError(t, err)

		mtime := time.Now()
		c.Put("/src/a.py", mtime, nil)

		_, hit := c.Get("/src/a.py", mtime.Add(time.Millisecond))
		assert.False(t, hit)
	})

	t.Run("invalidation drops the entry", func(t *testing.T) {
		c, err := NewScanCache(8)
		require.NoError(t, err)

		mtime := time.Now()
		c.Put("/src/a.py", mtime, nil)
		c.Invalidate("/src/a.py")

		_, hit := c.Get("/src/a.py", mtime)
		assert.False(t, hit)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("evicts least recently used entries", func(t *testing.T) {
		c, err := NewScanCache(2)
		require.NoError(t, err)

		mtime := time.Now()
		c.Put("/src/a.py", mtime, nil)
		c.Put("/src/b.py", mtime, nil)
		c.Put("/src/c.py", mtime, nil)

		_, hit := c.Get("/src/a.py", mtime)
		assert.False(t, hit)
		assert.Equal(t, 2, c.Len())
	})
}
