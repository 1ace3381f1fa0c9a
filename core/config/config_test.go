package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadFrom(t *testing.T) {
	t.Run("parses a full config", func(t *testing.T) {
		path := writeConfig(t, `
packages:
  - mypackage
search_paths:
  - src
include_external_packages: true
exclude_type_checking_imports: true
cache_dir: .cache
contracts:
  - name: layered architecture
    containers:
      - mypackage
    layers:
      - api
      - [green, blue]
      - db
`)

		cfg, err := LoadFrom(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"mypackage"}, cfg.Packages)
		assert.Equal(t, []string{"src"}, cfg.SearchPaths)
		assert.True(t, cfg.IncludeExternalPackages)
		assert.True(t, cfg.ExcludeTypeCheckingImports)
		assert.Equal(t, ".cache", cfg.CacheDir)

		require.Len(t, cfg.Contracts, 1)
		contract := cfg.Contracts[0]
		assert.Equal(t, "layered architecture", contract.Name)
		assert.Equal(t, []string{"mypackage"}, contract.Containers)
		require.Len(t, contract.Layers, 3)
		assert.Equal(t, []string{"api"}, contract.Layers[0].Modules)
		assert.Equal(t, []string{"green", "blue"}, contract.Layers[1].Modules)
		assert.Equal(t, []string{"db"}, contract.Layers[2].Modules)
	})

	t.Run("scalar and sequence layers map to analyzer layers", func(t *testing.T) {
		path := writeConfig(t, `
packages: [mypackage]
contracts:
  - name: c
    layers:
      - api
      - [green, blue]
`)
		cfg, err := LoadFrom(path)
		require.NoError(t, err)

		layer := cfg.Contracts[0].Layers[1].ToLayer()
		assert.Equal(t, []string{"green", "blue"}, layer.Modules)
		assert.True(t, layer.Independent)
	})

	t.Run("rejects a mapping as a layer entry", func(t *testing.T) {
		path := writeConfig(t, `
contracts:
  - name: c
    layers:
      - api
      - modules: [green]
`)
		_, err := LoadFrom(path)
		assert.Error(t, err)
	})

	t.Run("rejects a contract without a name", func(t *testing.T) {
		path := writeConfig(t, `
contracts:
  - layers:
      - api
      - db
`)
		_, err := LoadFrom(path)
		assert.Error(t, err)
	})

	t.Run("rejects a contract with fewer than two layers", func(t *testing.T) {
		path := writeConfig(t, `
contracts:
  - name: c
    layers:
      - api
`)
		_, err := LoadFrom(path)
		assert.Error(t, err)
	})

	t.Run("errors for a missing file", func(t *testing.T) {
		_, err := LoadFrom(filepath.Join(t.TempDir(), FileName))
		assert.Error(t, err)
	})

	t.Run("defaults apply when fields are omitted", func(t *testing.T) {
		path := writeConfig(t, "packages: [mypackage]\n")

		cfg, err := LoadFrom(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"."}, cfg.SearchPaths)
		assert.False(t, cfg.NoCache)
		assert.Empty(t, cfg.Contracts)
	})
}
