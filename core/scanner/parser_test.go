package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(imports []parsedImport) []string {
	out := make([]string, len(imports))
	for i, imp := range imports {
		out[i] = imp.name
	}
	return out
}

func TestParseImports(t *testing.T) {
	t.Run("plain import statements", func(t *testing.T) {
		imports := parseImports("import os\nimport mypackage.foo as foo, sys\n")

		assert.Equal(t, []string{"os", "mypackage.foo", "sys"}, names(imports))
		assert.Equal(t, 1, imports[0].lineNumber)
		assert.Equal(t, 2, imports[1].lineNumber)
		assert.Equal(t, "import mypackage.foo as foo, sys", imports[1].lineContents)
	})

	t.Run("from imports", func(t *testing.T) {
		imports := parseImports("from mypackage.foo import one, two as alias\n")

		assert.Equal(t, []string{"mypackage.foo.one", "mypackage.foo.two"}, names(imports))
	})

	t.Run("relative from imports keep their dots", func(t *testing.T) {
		imports := parseImports("from . import sibling\nfrom ..other import thing\nfrom .sub import x\n")

		assert.Equal(t, []string{".sibling", "..other.thing", ".sub.x"}, names(imports))
	})

	t.Run("star import yields the source module", func(t *testing.T) {
		imports := parseImports("from mypackage.foo import *\n")

		assert.Equal(t, []string{"mypackage.foo"}, names(imports))
	})

	t.Run("parenthesized continuation", func(t *testing.T) {
		source := "from mypackage.foo import (\n    one,\n    two,\n)\nimport os\n"
		imports := parseImports(source)

		require.Equal(t, []string{"mypackage.foo.one", "mypackage.foo.two", "os"}, names(imports))
		assert.Equal(t, 1, imports[0].lineNumber)
		assert.Equal(t, 5, imports[2].lineNumber)
	})

	t.Run("trailing comma adds no extra name", func(t *testing.T) {
		imports := parseImports("from mypackage.foo import one, two,\n")

		assert.Equal(t, []string{"mypackage.foo.one", "mypackage.foo.two"}, names(imports))
	})

	t.Run("backslash continuation", func(t *testing.T) {
		imports := parseImports("from mypackage.foo import one, \\\n    two\n")

		assert.Equal(t, []string{"mypackage.foo.one", "mypackage.foo.two"}, names(imports))
	})

	t.Run("trailing comments are ignored", func(t *testing.T) {
		imports := parseImports("import os  # noqa\n")

		assert.Equal(t, []string{"os"}, names(imports))
	})

	t.Run("imports inside docstrings are ignored", func(t *testing.T) {
		source := "\"\"\"\nimport not_really\n\"\"\"\nimport os\n'''also\nimport nope\n'''\n"
		imports := parseImports(source)

		assert.Equal(t, []string{"os"}, names(imports))
	})

	t.Run("type checking guard flags its block", func(t *testing.T) {
		source := "from typing import TYPE_CHECKING\n" +
			"if TYPE_CHECKING:\n" +
			"    import expensive\n" +
			"    from mypackage import foo\n" +
			"import always\n"
		imports := parseImports(source)

		byName := make(map[string]bool)
		for _, imp := range imports {
			byName[imp.name] = imp.typeCheckingOnly
		}
		assert.False(t, byName["typing.TYPE_CHECKING"])
		assert.True(t, byName["expensive"])
		assert.True(t, byName["mypackage.foo"])
		assert.False(t, byName["always"])
	})

	t.Run("aliased type checking guard", func(t *testing.T) {
		source := "import typing as t\nif t.TYPE_CHECKING:\n    import expensive\n"
		imports := parseImports(source)

		require.Len(t, imports, 2)
		assert.True(t, imports[1].typeCheckingOnly)
	})

	t.Run("else branch of a guard runs at import time", func(t *testing.T) {
		source := "if TYPE_CHECKING:\n    import checked\nelse:\n    import runtime\n"
		imports := parseImports(source)

		require.Len(t, imports, 2)
		assert.True(t, imports[0].typeCheckingOnly)
		assert.False(t, imports[1].typeCheckingOnly)
	})

	t.Run("nested guard only flags its own indentation", func(t *testing.T) {
		source := "def f():\n    if TYPE_CHECKING:\n        import checked\n    import unchecked\n"
		imports := parseImports(source)

		require.Len(t, imports, 2)
		assert.True(t, imports[0].typeCheckingOnly)
		assert.False(t, imports[1].typeCheckingOnly)
	})
}
