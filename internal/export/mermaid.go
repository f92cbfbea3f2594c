package export

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/dusk-indust/codegraph/internal/graph"
)

// Mermaid produces a Mermaid graph TD diagram of the file-level structure.
// Files are grouped by directory subgraph; imports edges become arrows.
func Mermaid(res *graph.Result) string {
	// Stable alphanumeric Mermaid ids in first-assignment order.
	mermaidIDs := make(map[string]string)
	nextID := 0
	getID := func(key string) string {
		if id, ok := mermaidIDs[key]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", nextID)
		nextID++
		mermaidIDs[key] = id
		return id
	}

	// Group file nodes by directory.
	byDir := make(map[string][]*graph.Node)
	fileByID := make(map[string]*graph.Node)
	for i := range res.Nodes {
		n := &res.Nodes[i]
		if n.Kind != graph.NodeKindFile {
			continue
		}
		dir := path.Dir(n.FilePath)
		byDir[dir] = append(byDir[dir], n)
		fileByID[n.ID] = n
	}

	dirs := make([]string, 0, len(byDir))
	for dir := range byDir {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, dir := range dirs {
		files := byDir[dir]
		sort.Slice(files, func(i, j int) bool { return files[i].FilePath < files[j].FilePath })

		sb.WriteString(fmt.Sprintf("  subgraph %s[\"%.40s\"]\n", getID(dir+"_dir"), dir))
		for _, f := range files {
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", getID(f.FilePath), shortPath(f.FilePath)))
		}
		sb.WriteString("  end\n")
	}

	for _, e := range res.Edges {
		if e.Kind != graph.EdgeKindImports {
			continue
		}
		src, ok := fileByID[e.SourceID]
		if !ok {
			continue
		}
		tgt, ok := fileByID[e.TargetID]
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s --> %s\n", getID(src.FilePath), getID(tgt.FilePath)))
	}

	return sb.String()
}

// shortPath returns the last 2 path segments for readability.
func shortPath(p string) string {
	parts := strings.Split(p, "/")
	if len(parts) <= 2 {
		return p
	}
	return strings.Join(parts[len(parts)-2:], "/")
}
