// Package impact computes the blast radius of a set of graph nodes: every
// node that depends on them directly or transitively, with the dependency
// chain that led there.
package impact

import (
	"errors"

	"github.com/dusk-indust/codegraph/internal/graph"
)

// ErrEmptySelection indicates Analyze was called with no seed node ids.
var ErrEmptySelection = errors.New("impact: no nodes selected")

// Dependent is one affected node plus the chain of names that connects it
// back to a seed. The chain lists the path from the seed up to (and
// including) the dependent's immediate predecessor.
type Dependent struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	FilePath string   `json:"filePath"`
	Chain    []string `json:"chain"`
}

// Report is the result of an impact analysis. Direct and Indirect are
// disjoint: a node reachable both ways is reported as direct only.
type Report struct {
	Seeds    []string    `json:"seeds"`
	Direct   []Dependent `json:"direct"`
	Indirect []Dependent `json:"indirect"`

	// Tests lists the affected nodes living in test files; every entry also
	// appears in Direct or Indirect.
	Tests []Dependent `json:"tests"`

	TotalAffected int `json:"totalAffected"`
}

// Analyze walks the reverse dependency graph from the seed node ids. Every
// edge kind counts as a dependency: a caller depends on its callee, a
// subclass on its superclass, an importing file on the imported one.
// Unknown seed ids contribute nothing; they are not an error.
func Analyze(nodeIDs []string, nodes []graph.Node, edges []graph.Edge) (*Report, error) {
	if len(nodeIDs) == 0 {
		return nil, ErrEmptySelection
	}

	byID := make(map[string]*graph.Node, len(nodes))
	for i := range nodes {
		byID[nodes[i].ID] = &nodes[i]
	}

	// reverse[target] = ids of nodes that depend on target.
	reverse := make(map[string][]string)
	for _, e := range edges {
		reverse[e.TargetID] = append(reverse[e.TargetID], e.SourceID)
	}

	report := &Report{Seeds: nodeIDs}
	visited := make(map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		visited[id] = true
	}

	// Direct dependents first, in seed input order.
	type queued struct {
		node  *graph.Node
		chain []string
	}
	var frontier []queued
	for _, seedID := range nodeIDs {
		seed := byID[seedID]
		if seed == nil {
			continue
		}
		for _, depID := range reverse[seedID] {
			if visited[depID] {
				continue
			}
			dep := byID[depID]
			if dep == nil {
				continue
			}
			visited[depID] = true
			chain := []string{seed.Name}
			report.Direct = append(report.Direct, asDependent(dep, chain))
			frontier = append(frontier, queued{node: dep, chain: chain})
		}
	}

	// Breadth-first expansion for indirect dependents. Each node's chain is
	// its predecessor's chain plus the predecessor's name.
	for len(frontier) > 0 {
		var next []queued
		for _, q := range frontier {
			chain := append(append([]string{}, q.chain...), q.node.Name)
			for _, depID := range reverse[q.node.ID] {
				if visited[depID] {
					continue
				}
				dep := byID[depID]
				if dep == nil {
					continue
				}
				visited[depID] = true
				report.Indirect = append(report.Indirect, asDependent(dep, chain))
				next = append(next, queued{node: dep, chain: chain})
			}
		}
		frontier = next
	}

	for _, d := range report.Direct {
		if graph.IsTestPath(d.FilePath) {
			report.Tests = append(report.Tests, d)
		}
	}
	for _, d := range report.Indirect {
		if graph.IsTestPath(d.FilePath) {
			report.Tests = append(report.Tests, d)
		}
	}
	report.TotalAffected = len(report.Direct) + len(report.Indirect)
	return report, nil
}

func asDependent(n *graph.Node, chain []string) Dependent {
	return Dependent{
		ID:       n.ID,
		Name:     n.Name,
		Kind:     string(n.Kind),
		FilePath: n.FilePath,
		Chain:    chain,
	}
}
