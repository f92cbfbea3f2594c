// Package incremental classifies working-tree changes against a previously
// built graph and decides the rebuild strategy.
package incremental

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dusk-indust/codegraph/internal/gitcmd"
	"github.com/dusk-indust/codegraph/internal/graph"
	"github.com/dusk-indust/codegraph/internal/lang"
	"github.com/dusk-indust/codegraph/internal/scan"
)

// changeRatioThreshold is the fraction of known files above which the
// classifier skips diagnostics and recommends a full rebuild outright. The
// boundary is strictly greater-than: a ratio of exactly 0.3 still takes the
// diagnostic path.
const changeRatioThreshold = 0.3

// RebuildPolicy selects how the full-rebuild flag is derived.
type RebuildPolicy string

const (
	// PolicyAlwaysFull signals a full rebuild whenever anything changed.
	// Broken-reference and invalidation data are still computed below the
	// change-ratio threshold, as advisory diagnostics for callers.
	PolicyAlwaysFull RebuildPolicy = "always-full"

	// PolicyRatio signals a full rebuild only above the change-ratio
	// threshold, allowing an incremental-apply mode to act on the
	// diagnostics.
	PolicyRatio RebuildPolicy = "ratio"
)

// BrokenReference describes an existing edge whose target node belongs to a
// deleted file.
type BrokenReference struct {
	Source     string         `json:"source"`
	SourceFile string         `json:"sourceFile"`
	Target     string         `json:"target"`
	TargetFile string         `json:"targetFile"`
	EdgeKind   graph.EdgeKind `json:"edgeKind"`
}

// ChangeSet is the classifier's per-request output. It is ephemeral and
// never persisted.
type ChangeSet struct {
	Changes          gitcmd.Changes `json:"changes"`
	NeedsFullRebuild bool           `json:"needsFullRebuild"`
	// BrokenReferences and InvalidatedCaches are only populated on the
	// diagnostic path (at or below the change-ratio threshold).
	BrokenReferences []BrokenReference `json:"brokenReferences,omitempty"`
	// InvalidatedCaches lists function node ids whose cached artifacts must
	// be discarded because their owning file was modified.
	InvalidatedCaches []string `json:"invalidatedCaches,omitempty"`
	Summary           string   `json:"summary"`
}

// Classifier computes ChangeSets from git state and a prior build.
type Classifier struct {
	git    *gitcmd.Runner
	policy RebuildPolicy
	log    *slog.Logger
}

// NewClassifier creates a Classifier. A nil runner gets a default-timeout
// one; an empty policy defaults to PolicyAlwaysFull.
func NewClassifier(git *gitcmd.Runner, policy RebuildPolicy, log *slog.Logger) *Classifier {
	if log == nil {
		log = slog.Default()
	}
	if git == nil {
		git = gitcmd.NewRunner(0, log)
	}
	if policy == "" {
		policy = PolicyAlwaysFull
	}
	return &Classifier{git: git, policy: policy, log: log}
}

// Compute diffs the working tree at projectPath against the last commit and
// classifies the result against the previously stored node/edge set. Git
// failures yield an empty change set, never an error.
func (c *Classifier) Compute(
	ctx context.Context,
	projectPath string,
	existingNodes []graph.Node,
	existingEdges []graph.Edge,
	excludePatterns []string,
) ChangeSet {
	changes := c.git.ChangedFiles(ctx, projectPath)
	changes = filterSupported(changes, excludePatterns)
	return classify(changes, existingNodes, existingEdges, c.policy)
}

// classify turns a filtered change list into a ChangeSet against the prior
// build. Pure; all git interaction happens before this point.
func classify(changes gitcmd.Changes, existingNodes []graph.Node, existingEdges []graph.Edge, policy RebuildPolicy) ChangeSet {
	if changes.Empty() {
		return ChangeSet{Changes: changes, Summary: "No changes detected"}
	}

	existingFiles := 0
	for i := range existingNodes {
		if existingNodes[i].Kind == graph.NodeKindFile {
			existingFiles++
		}
	}

	changed := len(changes.All())
	ratio := float64(changed) / float64(max(existingFiles, 1))
	if ratio > changeRatioThreshold {
		return ChangeSet{
			Changes:          changes,
			NeedsFullRebuild: true,
			Summary:          fmt.Sprintf("Large change set (%d files), full rebuild recommended", changed),
		}
	}

	cs := ChangeSet{
		Changes:           changes,
		NeedsFullRebuild:  policy == PolicyAlwaysFull,
		BrokenReferences:  brokenReferences(changes.Deleted, existingNodes, existingEdges),
		InvalidatedCaches: invalidatedCaches(changes.Modified, existingNodes),
	}
	cs.Summary = summarize(changes, len(cs.BrokenReferences))
	return cs
}

// Branches lists the repository's local branches.
func (c *Classifier) Branches(ctx context.Context, projectPath string) ([]gitcmd.Branch, error) {
	return c.git.Branches(ctx, projectPath)
}

// CompareBranches returns the name-status diff between two branches.
func (c *Classifier) CompareBranches(ctx context.Context, projectPath, branchA, branchB string) (gitcmd.Changes, error) {
	return c.git.DiffBranches(ctx, projectPath, branchA, branchB)
}

// filterSupported keeps only extension-supported, non-excluded paths.
func filterSupported(changes gitcmd.Changes, excludePatterns []string) gitcmd.Changes {
	matcher := scan.NewMatcher(excludePatterns)
	keep := func(paths []string) []string {
		var out []string
		for _, p := range paths {
			if lang.Supported(p) && !matcher.Excluded(p) {
				out = append(out, p)
			}
		}
		return out
	}
	return gitcmd.Changes{
		Added:    keep(changes.Added),
		Modified: keep(changes.Modified),
		Deleted:  keep(changes.Deleted),
	}
}

// brokenReferences finds existing edges whose target node belongs to a
// deleted file, with resolved names for diagnostics.
func brokenReferences(deleted []string, nodes []graph.Node, edges []graph.Edge) []BrokenReference {
	deletedSet := make(map[string]bool, len(deleted))
	for _, p := range deleted {
		deletedSet[p] = true
	}

	byID := make(map[string]*graph.Node, len(nodes))
	deletedNodeIDs := make(map[string]bool)
	for i := range nodes {
		n := &nodes[i]
		byID[n.ID] = n
		if deletedSet[n.FilePath] {
			deletedNodeIDs[n.ID] = true
		}
	}

	var broken []BrokenReference
	for _, e := range edges {
		if !deletedNodeIDs[e.TargetID] {
			continue
		}
		source, target := byID[e.SourceID], byID[e.TargetID]
		if source == nil || target == nil {
			continue
		}
		broken = append(broken, BrokenReference{
			Source:     source.Name,
			SourceFile: source.FilePath,
			Target:     target.Name,
			TargetFile: target.FilePath,
			EdgeKind:   e.Kind,
		})
	}
	return broken
}

// invalidatedCaches lists function node ids owned by modified files.
func invalidatedCaches(modified []string, nodes []graph.Node) []string {
	modifiedSet := make(map[string]bool, len(modified))
	for _, p := range modified {
		modifiedSet[p] = true
	}

	var ids []string
	for i := range nodes {
		n := &nodes[i]
		if n.Kind == graph.NodeKindFunction && modifiedSet[n.FilePath] {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

func summarize(changes gitcmd.Changes, broken int) string {
	var parts []string
	if n := len(changes.Added); n > 0 {
		parts = append(parts, fmt.Sprintf("%d added", n))
	}
	if n := len(changes.Modified); n > 0 {
		parts = append(parts, fmt.Sprintf("%d modified", n))
	}
	if n := len(changes.Deleted); n > 0 {
		parts = append(parts, fmt.Sprintf("%d deleted", n))
	}
	if broken > 0 {
		parts = append(parts, fmt.Sprintf("%d broken reference(s)", broken))
	}
	if len(parts) == 0 {
		return "No changes"
	}
	return "Synced: " + strings.Join(parts, ", ")
}
