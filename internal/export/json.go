// Package export serializes a built graph for consumers outside the
// process: a JSON document and a Mermaid diagram. Exporters are pure; they
// never touch the filesystem.
package export

import (
	"encoding/json"
	"time"

	"github.com/dusk-indust/codegraph/internal/graph"
)

// GraphExport is the top-level JSON export structure.
type GraphExport struct {
	Project    string       `json:"project"`
	ExportedAt string       `json:"exportedAt"`
	Nodes      []graph.Node `json:"nodes"`
	Edges      []graph.Edge `json:"edges"`
	Stats      graph.Stats  `json:"stats"`
	Errors     []string     `json:"errors,omitempty"`
}

// JSON renders a build result as an indented JSON document.
func JSON(project string, res *graph.Result) ([]byte, error) {
	export := GraphExport{
		Project:    project,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Nodes:      res.Nodes,
		Edges:      res.Edges,
		Stats:      res.Stats,
		Errors:     res.Errors,
	}
	return json.MarshalIndent(export, "", "  ")
}
