package graph

import (
	"math"
	"path"
	"strings"
)

// testDirNames are path segments that mark everything beneath them as tests.
var testDirNames = map[string]bool{
	"test":      true,
	"tests":     true,
	"__tests__": true,
	"spec":      true,
}

// IsTestPath reports whether a repo-relative file path looks like a test
// file, by filename convention or by living under a test directory.
func IsTestPath(filePath string) bool {
	base := path.Base(filePath)
	stem := strings.ToLower(strings.TrimSuffix(base, path.Ext(base)))

	if strings.HasPrefix(stem, "test_") ||
		strings.HasSuffix(stem, "_test") ||
		strings.HasSuffix(stem, "_spec") ||
		strings.HasSuffix(stem, ".test") ||
		strings.HasSuffix(stem, ".spec") {
		return true
	}

	for _, segment := range strings.Split(path.Dir(filePath), "/") {
		if testDirNames[segment] {
			return true
		}
	}
	return false
}

// computeStats counts nodes by kind and derives the test heuristics. The
// coverage percentage is the fraction of non-test function names that appear
// among the call names recorded by test functions.
func computeStats(nodes []Node, edges []Edge) Stats {
	stats := Stats{
		NodeCount: len(nodes),
		EdgeCount: len(edges),
	}

	testedNames := make(map[string]bool)
	var testableFunctions []string

	for i := range nodes {
		n := &nodes[i]
		switch n.Kind {
		case NodeKindFile:
			stats.FileCount++
			if IsTestPath(n.FilePath) {
				stats.TestFileCount++
			}
		case NodeKindClass:
			stats.ClassCount++
		case NodeKindVariable:
			stats.VariableCount++
		case NodeKindImport:
			stats.ImportCount++
		case NodeKindFunction:
			stats.FunctionCount++
			if IsTestPath(n.FilePath) {
				for _, call := range n.Meta.Calls {
					testedNames[call] = true
				}
			} else {
				testableFunctions = append(testableFunctions, n.Name)
			}
		}
	}

	if len(testableFunctions) > 0 {
		covered := 0
		for _, name := range testableFunctions {
			if testedNames[name] {
				covered++
			}
		}
		stats.CoveragePercent = int(math.Round(float64(covered) / float64(len(testableFunctions)) * 100))
	}
	return stats
}
