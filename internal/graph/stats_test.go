package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ---------------------------------------------------------------------------
// TestIsTestPath
// ---------------------------------------------------------------------------

func TestIsTestPath(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"tests/test_models.py", true},
		{"app/test_service.py", true},
		{"internal/store/store_test.go", true},
		{"src/user_spec.rb", true},
		{"src/Button.test.tsx", true},
		{"src/Button.spec.ts", true},
		{"__tests__/app.js", true},
		{"pkg/spec/helper.py", true},
		{"app/models.py", false},
		{"src/testing_utils.py", false},
		{"contest/entry.py", false},
		{"src/latest.rs", false},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTestPath(tc.path))
		})
	}
}

// ---------------------------------------------------------------------------
// TestComputeStats
// ---------------------------------------------------------------------------

func TestComputeStats(t *testing.T) {
	nodes := []Node{
		{ID: "f1", Kind: NodeKindFile, FilePath: "app.py"},
		{ID: "f2", Kind: NodeKindFile, FilePath: "tests/test_app.py"},
		{ID: "c1", Kind: NodeKindClass, FilePath: "app.py"},
		{ID: "v1", Kind: NodeKindVariable, FilePath: "app.py"},
		{ID: "i1", Kind: NodeKindImport, FilePath: "app.py"},
		{ID: "fn1", Kind: NodeKindFunction, Name: "run", FilePath: "app.py"},
		{ID: "fn2", Kind: NodeKindFunction, Name: "setup", FilePath: "app.py"},
		{ID: "t1", Kind: NodeKindFunction, Name: "test_run", FilePath: "tests/test_app.py",
			Meta: NodeMeta{Calls: []string{"run"}}},
	}
	edges := []Edge{{SourceID: "t1", TargetID: "fn1", Kind: EdgeKindCalls}}

	stats := computeStats(nodes, edges)

	assert.Equal(t, 2, stats.FileCount)
	assert.Equal(t, 1, stats.TestFileCount)
	assert.Equal(t, 1, stats.ClassCount)
	assert.Equal(t, 1, stats.VariableCount)
	assert.Equal(t, 1, stats.ImportCount)
	assert.Equal(t, 3, stats.FunctionCount)
	assert.Equal(t, len(nodes), stats.NodeCount)
	assert.Equal(t, len(edges), stats.EdgeCount)

	// run is called from a test, setup is not: 1 of 2 → 50%.
	assert.Equal(t, 50, stats.CoveragePercent)
}

func TestComputeStats_NoTestableFunctions(t *testing.T) {
	stats := computeStats([]Node{{ID: "f1", Kind: NodeKindFile, FilePath: "a.py"}}, nil)
	assert.Equal(t, 0, stats.CoveragePercent)
}
