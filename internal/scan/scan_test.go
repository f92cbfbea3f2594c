package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile creates a file (and its parents) under root with dummy content.
func writeFile(t *testing.T, root, relPath string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(relPath))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte("// placeholder\n"), 0o644))
}

// ---------------------------------------------------------------------------
// TestMatcher
// ---------------------------------------------------------------------------

func TestMatcher_Defaults(t *testing.T) {
	m := NewMatcher(nil)

	assert.True(t, m.Excluded("node_modules"))
	assert.True(t, m.Excluded("node_modules/react/index.js"))
	assert.True(t, m.Excluded("__pycache__/models.cpython-312.pyc"))
	assert.True(t, m.Excluded("bundle.min.js"))
	assert.True(t, m.Excluded("package-lock.json"))

	assert.False(t, m.Excluded("src/main.go"))
	assert.False(t, m.Excluded("app/models.py"))
}

func TestMatcher_CustomPatterns(t *testing.T) {
	m := NewMatcher([]string{"generated", "*.pb.go"})

	assert.True(t, m.Excluded("generated/schema.go"))
	assert.True(t, m.Excluded("api/v1/service.pb.go"))

	// Custom patterns replace the defaults entirely.
	assert.False(t, m.Excluded("node_modules/left-pad/index.js"))
}

// ---------------------------------------------------------------------------
// TestCollect
// ---------------------------------------------------------------------------

func TestCollect(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.py")
	writeFile(t, root, "app/service.py")
	writeFile(t, root, "app/handler.ts")
	writeFile(t, root, "web/App.tsx")
	writeFile(t, root, "README.md")
	writeFile(t, root, "node_modules/pkg/index.js")
	writeFile(t, root, "__pycache__/main.pyc")

	files, err := Collect(root, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"app/handler.ts",
		"app/service.py",
		"main.py",
		"web/App.tsx",
	}, files, "sorted, supported, non-excluded files only")
}

func TestCollect_CustomExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/lib.rs")
	writeFile(t, root, "vendored/dep.rs")

	files, err := Collect(root, []string{"vendored"})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/lib.rs"}, files)
}

func TestCollect_EmptyProject(t *testing.T) {
	files, err := Collect(t.TempDir(), nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestCollect_MissingPath(t *testing.T) {
	files, err := Collect(filepath.Join(t.TempDir(), "nope"), nil)
	// The walk root itself failing is swallowed per-entry, yielding no files.
	require.NoError(t, err)
	assert.Empty(t, files)
}

// ---------------------------------------------------------------------------
// TestTree
// ---------------------------------------------------------------------------

func TestTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.py")
	writeFile(t, root, "app/service.py")
	writeFile(t, root, "app/notes.txt")
	writeFile(t, root, "node_modules/pkg/index.js")

	tree, err := Tree(root, nil)
	require.NoError(t, err)
	require.NotNil(t, tree)
	assert.Equal(t, "directory", tree.Type)

	byName := make(map[string]TreeNode, len(tree.Children))
	for _, c := range tree.Children {
		byName[c.Name] = c
	}

	main, ok := byName["main.py"]
	require.True(t, ok, "main.py should appear at the root")
	assert.Equal(t, "file", main.Type)
	assert.Equal(t, "python", main.Language)
	assert.True(t, main.Supported)

	app, ok := byName["app"]
	require.True(t, ok, "app directory should appear")
	assert.Equal(t, "directory", app.Type)
	require.Len(t, app.Children, 2)

	_, ok = byName["node_modules"]
	assert.False(t, ok, "excluded directories are omitted")
}

func TestTree_UnsupportedFilesKeepEntries(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/guide.md")
	writeFile(t, root, "src/main.go")

	tree, err := Tree(root, nil)
	require.NoError(t, err)

	byName := make(map[string]TreeNode, len(tree.Children))
	for _, c := range tree.Children {
		byName[c.Name] = c
	}

	docs, ok := byName["docs"]
	require.True(t, ok, "directories with only unsupported files are kept when non-empty")
	require.Len(t, docs.Children, 1)
	assert.False(t, docs.Children[0].Supported)
}
