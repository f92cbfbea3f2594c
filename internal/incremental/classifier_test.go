package incremental

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/codegraph/internal/gitcmd"
	"github.com/dusk-indust/codegraph/internal/graph"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// priorBuild returns a ten-file prior graph where each file owns one
// function, plus a calls edge into a function in file0.py.
func priorBuild() ([]graph.Node, []graph.Edge) {
	var nodes []graph.Node
	for i := 0; i < 10; i++ {
		filePath := fileName(i)
		nodes = append(nodes,
			graph.Node{ID: fileID(i), Kind: graph.NodeKindFile, Name: filePath, FilePath: filePath},
			graph.Node{ID: funcID(i), Kind: graph.NodeKindFunction, Name: funcName(i), FilePath: filePath},
		)
	}
	edges := []graph.Edge{
		{SourceID: funcID(1), TargetID: funcID(0), Kind: graph.EdgeKindCalls},
	}
	return nodes, edges
}

func fileName(i int) string { return "file" + string(rune('0'+i)) + ".py" }
func fileID(i int) string   { return "file-" + string(rune('0'+i)) }
func funcID(i int) string   { return "func-" + string(rune('0'+i)) }
func funcName(i int) string { return "fn" + string(rune('0'+i)) }

// ---------------------------------------------------------------------------
// TestClassify
// ---------------------------------------------------------------------------

func TestClassify_NoChanges(t *testing.T) {
	nodes, edges := priorBuild()
	cs := classify(gitcmd.Changes{}, nodes, edges, PolicyAlwaysFull)

	assert.False(t, cs.NeedsFullRebuild)
	assert.Equal(t, "No changes detected", cs.Summary)
	assert.Empty(t, cs.BrokenReferences)
	assert.Empty(t, cs.InvalidatedCaches)
}

func TestClassify_RatioBoundary(t *testing.T) {
	nodes, edges := priorBuild() // 10 file nodes

	// 3 of 10 = 0.30 exactly: the strict comparison keeps the diagnostic
	// path.
	atBoundary := gitcmd.Changes{Modified: []string{fileName(2), fileName(3), fileName(4)}}
	cs := classify(atBoundary, nodes, edges, PolicyAlwaysFull)
	assert.NotContains(t, cs.Summary, "full rebuild recommended")
	assert.Len(t, cs.InvalidatedCaches, 3)

	// 4 of 10 = 0.40: volume path, no diagnostics.
	overBoundary := gitcmd.Changes{Modified: []string{fileName(2), fileName(3), fileName(4), fileName(5)}}
	cs = classify(overBoundary, nodes, edges, PolicyAlwaysFull)
	assert.True(t, cs.NeedsFullRebuild)
	assert.Contains(t, cs.Summary, "full rebuild recommended")
	assert.Empty(t, cs.BrokenReferences)
	assert.Empty(t, cs.InvalidatedCaches)
}

func TestClassify_EmptyPriorBuildAvoidsDivisionByZero(t *testing.T) {
	cs := classify(gitcmd.Changes{Added: []string{"new.py"}}, nil, nil, PolicyAlwaysFull)
	assert.True(t, cs.NeedsFullRebuild, "one change against zero known files is a large change set")
}

func TestClassify_BrokenReferences(t *testing.T) {
	nodes, edges := priorBuild()

	cs := classify(gitcmd.Changes{Deleted: []string{fileName(0)}}, nodes, edges, PolicyAlwaysFull)

	require.Len(t, cs.BrokenReferences, 1)
	br := cs.BrokenReferences[0]
	assert.Equal(t, funcName(1), br.Source)
	assert.Equal(t, fileName(1), br.SourceFile)
	assert.Equal(t, funcName(0), br.Target)
	assert.Equal(t, fileName(0), br.TargetFile)
	assert.Equal(t, graph.EdgeKindCalls, br.EdgeKind)
	assert.Contains(t, cs.Summary, "1 broken reference(s)")
}

func TestClassify_InvalidatedCaches(t *testing.T) {
	nodes, edges := priorBuild()

	cs := classify(gitcmd.Changes{Modified: []string{fileName(3)}}, nodes, edges, PolicyAlwaysFull)

	assert.Equal(t, []string{funcID(3)}, cs.InvalidatedCaches,
		"function nodes in modified files lose their cached artifacts")
}

func TestClassify_PolicyControlsRebuildFlag(t *testing.T) {
	nodes, edges := priorBuild()
	small := gitcmd.Changes{Modified: []string{fileName(0)}}

	always := classify(small, nodes, edges, PolicyAlwaysFull)
	assert.True(t, always.NeedsFullRebuild, "default policy always rebuilds")
	assert.NotEmpty(t, always.InvalidatedCaches, "diagnostics are still carried")

	ratio := classify(small, nodes, edges, PolicyRatio)
	assert.False(t, ratio.NeedsFullRebuild, "ratio policy defers below the threshold")
	assert.Equal(t, always.InvalidatedCaches, ratio.InvalidatedCaches)
}

func TestClassify_Summary(t *testing.T) {
	nodes, edges := priorBuild()
	cs := classify(gitcmd.Changes{
		Added:    []string{"brand_new.py"},
		Modified: []string{fileName(1)},
		Deleted:  []string{fileName(9)},
	}, nodes, edges, PolicyAlwaysFull)

	assert.Equal(t, "Synced: 1 added, 1 modified, 1 deleted", cs.Summary)
}

// ---------------------------------------------------------------------------
// TestFilterSupported
// ---------------------------------------------------------------------------

func TestFilterSupported(t *testing.T) {
	changes := gitcmd.Changes{
		Added:    []string{"new.py", "README.md", "node_modules/pkg/index.js"},
		Modified: []string{"app/service.ts", "Makefile"},
		Deleted:  []string{"old.rs", "image.png"},
	}

	filtered := filterSupported(changes, nil)

	assert.Equal(t, []string{"new.py"}, filtered.Added)
	assert.Equal(t, []string{"app/service.ts"}, filtered.Modified)
	assert.Equal(t, []string{"old.rs"}, filtered.Deleted)
}

func TestFilterSupported_CustomExcludes(t *testing.T) {
	changes := gitcmd.Changes{Modified: []string{"generated/api.py", "app/api.py"}}
	filtered := filterSupported(changes, []string{"generated"})
	assert.Equal(t, []string{"app/api.py"}, filtered.Modified)
}

// ---------------------------------------------------------------------------
// TestNewClassifier
// ---------------------------------------------------------------------------

func TestNewClassifier_Defaults(t *testing.T) {
	c := NewClassifier(nil, "", nil)
	require.NotNil(t, c)
	assert.Equal(t, PolicyAlwaysFull, c.policy)
	assert.NotNil(t, c.git)
	assert.NotNil(t, c.log)
}
