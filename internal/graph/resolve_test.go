package graph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/codegraph/internal/lang"
)

func resolver(t *testing.T, files ...string) *pathResolver {
	t.Helper()
	return newPathResolver(t.TempDir(), files)
}

// ---------------------------------------------------------------------------
// TestPathResolver_Python
// ---------------------------------------------------------------------------

func TestPathResolver_Python(t *testing.T) {
	r := resolver(t, "pkg/mod.py", "pkg/__init__.py", "app.py")

	cases := []struct {
		source string
		want   string
		ok     bool
	}{
		{"pkg.mod", "pkg/mod.py", true},
		{"pkg", "pkg/__init__.py", true},
		{".app", "app.py", true},
		{"..pkg.mod", "pkg/mod.py", true},
		{"requests", "", false},
		{"", "", false},
		{".", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.source, func(t *testing.T) {
			got, ok := r.resolve(tc.source, lang.LangPython, "app.py")
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

// ---------------------------------------------------------------------------
// TestPathResolver_JS
// ---------------------------------------------------------------------------

func TestPathResolver_JS(t *testing.T) {
	r := resolver(t, "src/util.ts", "src/lib/index.ts", "src/app.js")

	got, ok := r.resolve("./util", lang.LangTypeScript, "src/app.js")
	require.True(t, ok)
	assert.Equal(t, "src/util.ts", got)

	got, ok = r.resolve("./lib", lang.LangJavaScript, "src/app.js")
	require.True(t, ok)
	assert.Equal(t, "src/lib/index.ts", got, "directory imports probe index files")

	got, ok = r.resolve("../src/util", lang.LangTSX, "src/app.js")
	require.True(t, ok)
	assert.Equal(t, "src/util.ts", got)

	_, ok = r.resolve("lodash", lang.LangJavaScript, "src/app.js")
	assert.False(t, ok, "bare specifiers are external")
}

// ---------------------------------------------------------------------------
// TestPathResolver_Go
// ---------------------------------------------------------------------------

func TestPathResolver_Go(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"),
		[]byte("module example.com/demo\n\ngo 1.25.0\n"), 0o644))

	files := []string{
		"internal/store/store.go",
		"internal/store/store_test.go",
		"main.go",
	}
	r := newPathResolver(root, files)

	got, ok := r.resolve("example.com/demo/internal/store", lang.LangGo, "main.go")
	require.True(t, ok)
	assert.Equal(t, "internal/store/store.go", got, "test files are never resolution targets")

	_, ok = r.resolve("fmt", lang.LangGo, "main.go")
	assert.False(t, ok)

	_, ok = r.resolve("example.com/other/pkg", lang.LangGo, "main.go")
	assert.False(t, ok)
}

func TestPathResolver_GoWithoutGoMod(t *testing.T) {
	r := resolver(t, "main.go")
	_, ok := r.resolve("example.com/demo/main", lang.LangGo, "main.go")
	assert.False(t, ok, "no module path means no resolution")
}

// ---------------------------------------------------------------------------
// TestPathResolver_Rust
// ---------------------------------------------------------------------------

func TestPathResolver_Rust(t *testing.T) {
	r := resolver(t, "src/store.rs", "src/engine/mod.rs", "src/engine/core.rs", "src/main.rs")

	got, ok := r.resolve("crate::store", lang.LangRust, "src/main.rs")
	require.True(t, ok)
	assert.Equal(t, "src/store.rs", got)

	got, ok = r.resolve("crate::engine", lang.LangRust, "src/main.rs")
	require.True(t, ok)
	assert.Equal(t, "src/engine/mod.rs", got)

	got, ok = r.resolve("self::core", lang.LangRust, "src/engine/mod.rs")
	require.True(t, ok)
	assert.Equal(t, "src/engine/core.rs", got)

	got, ok = r.resolve("super::store", lang.LangRust, "src/engine/core.rs")
	require.True(t, ok)
	assert.Equal(t, "src/store.rs", got)

	got, ok = r.resolve("crate::store::{Store, save}", lang.LangRust, "src/main.rs")
	require.True(t, ok)
	assert.Equal(t, "src/store.rs", got, "brace groups resolve to their module")

	_, ok = r.resolve("std::collections::HashMap", lang.LangRust, "src/main.rs")
	assert.False(t, ok)
}

// ---------------------------------------------------------------------------
// TestReadGoModule
// ---------------------------------------------------------------------------

func TestReadGoModule(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"),
		[]byte("// sample\nmodule example.com/demo\n"), 0o644))

	assert.Equal(t, "example.com/demo", readGoModule(root))
	assert.Empty(t, readGoModule(t.TempDir()))
}
