package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindIllegalDependenciesForLayers(t *testing.T) {
	t.Run("no violations in a compliant graph", func(t *testing.T) {
		g := NewImportGraph()
		g.AddModule("pkg")
		g.AddModule("pkg.high")
		g.AddModule("pkg.low")
		g.AddImport("pkg.high", "pkg.low") // higher importing lower is legal

		deps, err := g.FindIllegalDependenciesForLayers(
			[]Layer{NewLayer("high"), NewLayer("low")},
			[]string{"pkg"},
		)
		require.NoError(t, err)
		assert.Empty(t, deps)
	})

	t.Run("reports a direct violation as an empty-middle route", func(t *testing.T) {
		g := NewImportGraph()
		g.AddModule("pkg")
		g.AddModule("pkg.high")
		g.AddModule("pkg.low")
		g.AddImport("pkg.low", "pkg.high")

		deps, err := g.FindIllegalDependenciesForLayers(
			[]Layer{NewLayer("high"), NewLayer("low")},
			[]string{"pkg"},
		)
		require.NoError(t, err)
		require.Len(t, deps, 1)
		assert.Equal(t, "pkg.low", deps[0].Importer)
		assert.Equal(t, "pkg.high", deps[0].Imported)
		require.Len(t, deps[0].Routes, 1)
		assert.Equal(t, NewModuleSet("pkg.low"), deps[0].Routes[0].Heads)
		assert.Empty(t, deps[0].Routes[0].Middle)
		assert.Equal(t, NewModuleSet("pkg.high"), deps[0].Routes[0].Tails)
	})

	t.Run("fans indirect chains out into a single route", func(t *testing.T) {
		g := NewImportGraph()
		for _, m := range []string{
			"pkg", "pkg.high", "pkg.high.green", "pkg.high.blue",
			"pkg.low", "pkg.low.orange", "pkg.low.red",
			"pkg.utils", "pkg.helpers",
		} {
			g.AddModule(m)
		}
		g.AddImport("pkg.low.orange", "pkg.utils")
		g.AddImport("pkg.low.red", "pkg.utils")
		g.AddImport("pkg.utils", "pkg.helpers")
		g.AddImport("pkg.helpers", "pkg.high.green")
		g.AddImport("pkg.helpers", "pkg.high.blue")

		deps, err := g.FindIllegalDependenciesForLayers(
			[]Layer{NewLayer("high"), NewLayer("low")},
			[]string{"pkg"},
		)
		require.NoError(t, err)
		require.Len(t, deps, 1)
		assert.Equal(t, "pkg.low", deps[0].Importer)
		assert.Equal(t, "pkg.high", deps[0].Imported)

		require.Len(t, deps[0].Routes, 1)
		route := deps[0].Routes[0]
		assert.Equal(t, NewModuleSet("pkg.low.orange", "pkg.low.red"), route.Heads)
		assert.Equal(t, []string{"pkg.utils", "pkg.helpers"}, route.Middle)
		assert.Equal(t, NewModuleSet("pkg.high.green", "pkg.high.blue"), route.Tails)
	})

	t.Run("chains through another layer are not reported twice", func(t *testing.T) {
		g := NewImportGraph()
		for _, m := range []string{"pkg", "pkg.high", "pkg.mid", "pkg.low"} {
			g.AddModule(m)
		}
		// low reaches high only through mid, which is itself a layer, so
		// the low->high permutation sees nothing once mid is removed.
		g.AddImport("pkg.low", "pkg.mid")
		g.AddImport("pkg.mid", "pkg.high")

		deps, err := g.FindIllegalDependenciesForLayers(
			[]Layer{NewLayer("high"), NewLayer("mid"), NewLayer("low")},
			[]string{"pkg"},
		)
		require.NoError(t, err)
		require.Len(t, deps, 2)
		assert.Equal(t, "pkg.low", deps[0].Importer)
		assert.Equal(t, "pkg.mid", deps[0].Imported)
		assert.Equal(t, "pkg.mid", deps[1].Importer)
		assert.Equal(t, "pkg.high", deps[1].Imported)
	})

	t.Run("independent siblings may not import each other", func(t *testing.T) {
		g := NewImportGraph()
		g.AddModule("pkg")
		g.AddModule("pkg.green")
		g.AddModule("pkg.blue")
		g.AddModule("pkg.db")
		g.AddImport("pkg.green", "pkg.blue")
		g.AddImport("pkg.green", "pkg.db") // legal, lower layer

		deps, err := g.FindIllegalDependenciesForLayers(
			[]Layer{NewLayer("green", "blue"), NewLayer("db")},
			[]string{"pkg"},
		)
		require.NoError(t, err)
		require.Len(t, deps, 1)
		assert.Equal(t, "pkg.green", deps[0].Importer)
		assert.Equal(t, "pkg.blue", deps[0].Imported)
	})

	t.Run("non-independent siblings may import each other", func(t *testing.T) {
		g := NewImportGraph()
		g.AddModule("pkg")
		g.AddModule("pkg.green")
		g.AddModule("pkg.blue")
		g.AddImport("pkg.green", "pkg.blue")

		deps, err := g.FindIllegalDependenciesForLayers(
			[]Layer{{Modules: []string{"green", "blue"}, Independent: false}},
			[]string{"pkg"},
		)
		require.NoError(t, err)
		assert.Empty(t, deps)
	})

	t.Run("checks each container separately", func(t *testing.T) {
		g := NewImportGraph()
		for _, m := range []string{
			"one", "one.high", "one.low",
			"two", "two.high", "two.low",
		} {
			g.AddModule(m)
		}
		g.AddImport("one.low", "one.high")
		g.AddImport("two.high", "two.low")

		deps, err := g.FindIllegalDependenciesForLayers(
			[]Layer{NewLayer("high"), NewLayer("low")},
			[]string{"one", "two"},
		)
		require.NoError(t, err)
		require.Len(t, deps, 1)
		assert.Equal(t, "one.low", deps[0].Importer)
	})

	t.Run("layers without containers are absolute names", func(t *testing.T) {
		g := NewImportGraph()
		g.AddModule("high")
		g.AddModule("low")
		g.AddImport("low", "high")

		deps, err := g.FindIllegalDependenciesForLayers(
			[]Layer{NewLayer("high"), NewLayer("low")},
			nil,
		)
		require.NoError(t, err)
		require.Len(t, deps, 1)
		assert.Equal(t, "low", deps[0].Importer)
		assert.Equal(t, "high", deps[0].Imported)
	})

	t.Run("layers absent from the graph are skipped", func(t *testing.T) {
		g := NewImportGraph()
		g.AddModule("pkg")
		g.AddModule("pkg.low")

		deps, err := g.FindIllegalDependenciesForLayers(
			[]Layer{NewLayer("high"), NewLayer("low")},
			[]string{"pkg"},
		)
		require.NoError(t, err)
		assert.Empty(t, deps)
	})

	t.Run("a missing container is an error", func(t *testing.T) {
		g := NewImportGraph()
		g.AddModule("pkg")

		_, err := g.FindIllegalDependenciesForLayers(
			[]Layer{NewLayer("high")},
			[]string{"pkg", "ghost"},
		)
		var missing *NoSuchContainerError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "ghost", missing.Container)
	})

	t.Run("leaves the graph untouched", func(t *testing.T) {
		g := NewImportGraph()
		g.AddModule("pkg")
		g.AddModule("pkg.high")
		g.AddModule("pkg.low")
		g.AddImport("pkg.low", "pkg.via")
		g.AddImport("pkg.via", "pkg.high")

		before := g.CountImports()
		_, err := g.FindIllegalDependenciesForLayers(
			[]Layer{NewLayer("high"), NewLayer("low")},
			[]string{"pkg"},
		)
		require.NoError(t, err)
		assert.Equal(t, before, g.CountImports())
		assert.True(t, g.Contains("pkg.via"))
	})
}
