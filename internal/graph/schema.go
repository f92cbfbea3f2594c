// Package graph builds a queryable dependency graph from per-file extraction
// results: files, classes, functions, variables and imports as nodes; calls,
// inheritance and import relationships as edges.
package graph

import (
	"strings"

	"github.com/google/uuid"

	"github.com/dusk-indust/codegraph/internal/lang"
)

// NodeKind classifies nodes in the dependency graph.
type NodeKind string

const (
	NodeKindFile     NodeKind = "file"
	NodeKindClass    NodeKind = "class"
	NodeKindFunction NodeKind = "function"
	NodeKindVariable NodeKind = "variable"
	NodeKindImport   NodeKind = "import"
)

// EdgeKind classifies relationships between nodes.
type EdgeKind string

const (
	EdgeKindCalls    EdgeKind = "calls"
	EdgeKindInherits EdgeKind = "inherits"
	EdgeKindImports  EdgeKind = "imports"
)

// Node is one structural unit of the graph. Identifiers are unique within a
// build and never reused across rebuilds; a full rebuild issues fresh ones.
type Node struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Kind     NodeKind      `json:"kind"`
	Language lang.Language `json:"language"`
	// FilePath is relative to the project root, forward slashes.
	FilePath string `json:"filePath"`
	// StartLine and EndLine are 1-based inclusive; zero for file nodes.
	StartLine int `json:"startLine,omitempty"`
	EndLine   int `json:"endLine,omitempty"`
	// CodeHash is empty for file and import nodes.
	CodeHash string `json:"codeHash,omitempty"`
	// ParentID is empty only for file nodes; every other node resolves to an
	// existing node in the same build.
	ParentID string   `json:"parentId,omitempty"`
	Meta     NodeMeta `json:"meta"`
}

// NodeMeta carries kind-specific metadata. Only the fields relevant to the
// node's kind are populated.
type NodeMeta struct {
	// Class nodes.
	Methods      []string `json:"methods,omitempty"`
	Superclasses []string `json:"superclasses,omitempty"`
	Attributes   []string `json:"attributes,omitempty"`
	MethodCount  int      `json:"methodCount,omitempty"`

	// Function nodes.
	Params      []string `json:"params,omitempty"`
	Calls       []string `json:"calls,omitempty"`
	ParentClass string   `json:"parentClass,omitempty"`
	FullName    string   `json:"fullName,omitempty"`

	// Variable nodes.
	Scope string `json:"scope,omitempty"`

	// Import nodes.
	Source   string `json:"source,omitempty"`
	External bool   `json:"external,omitempty"`
}

// Edge is a directed, typed relationship between two nodes. Multiple edges
// of the same kind may exist between a pair when produced by distinct raw
// references; the builder performs no deduplication.
type Edge struct {
	SourceID string    `json:"sourceId"`
	TargetID string    `json:"targetId"`
	Kind     EdgeKind  `json:"kind"`
	Meta     *EdgeMeta `json:"meta,omitempty"`
}

// EdgeMeta carries the raw reference that produced an edge.
type EdgeMeta struct {
	CallName string `json:"callName,omitempty"`
	Source   string `json:"source,omitempty"`
	External bool   `json:"external,omitempty"`
}

// Stats summarizes one build.
type Stats struct {
	FileCount     int `json:"fileCount"`
	FunctionCount int `json:"functionCount"`
	ClassCount    int `json:"classCount"`
	VariableCount int `json:"variableCount"`
	ImportCount   int `json:"importCount"`
	TestFileCount int `json:"testFileCount"`
	// CoveragePercent is a name-based heuristic: the share of non-test
	// function names referenced by test function call lists. Not execution
	// coverage.
	CoveragePercent int `json:"coveragePercent"`
	NodeCount       int `json:"nodeCount"`
	EdgeCount       int `json:"edgeCount"`
}

// Result is the builder's output. Nodes and edges are immutable once
// returned. Errors holds non-fatal per-file diagnostics.
type Result struct {
	Nodes  []Node   `json:"nodes"`
	Edges  []Edge   `json:"edges"`
	Stats  Stats    `json:"stats"`
	Errors []string `json:"errors,omitempty"`
}

// newID returns a fresh 16-hex node identifier.
func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
