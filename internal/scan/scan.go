// Package scan enumerates the source files of a project, filtered by
// supported extension and exclude patterns.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/dusk-indust/codegraph/internal/lang"
)

// DefaultExcludePatterns are directories and files skipped when the caller
// provides no explicit patterns.
var DefaultExcludePatterns = []string{
	"node_modules", "__pycache__", ".git", "venv", ".venv", "env",
	"dist", "build", ".idea", ".vscode", ".DS_Store",
	"*.pyc", "*.pyo", "*.so", "*.dylib", "*.dll",
	"*.min.js", "*.min.css", "*.map",
	"package-lock.json", "yarn.lock", "pnpm-lock.yaml",
	"Cargo.lock", "go.sum", "Gemfile.lock", "composer.lock",
}

// Matcher decides whether a repo-relative path is excluded from analysis.
// Patterns use gitignore syntax; directory patterns exclude whole subtrees.
type Matcher struct {
	ign *ignore.GitIgnore
}

// NewMatcher compiles exclude patterns into a Matcher. Nil or empty patterns
// fall back to DefaultExcludePatterns.
func NewMatcher(patterns []string) *Matcher {
	if len(patterns) == 0 {
		patterns = DefaultExcludePatterns
	}
	return &Matcher{ign: ignore.CompileIgnoreLines(patterns...)}
}

// Excluded reports whether the given repo-relative path matches any pattern.
func (m *Matcher) Excluded(relPath string) bool {
	return m.ign.MatchesPath(filepath.ToSlash(relPath))
}

// Collect walks projectPath and returns the repo-relative paths of every
// supported, non-excluded source file, sorted lexicographically. The sort
// order is the canonical processing order for graph construction.
func Collect(projectPath string, excludePatterns []string) ([]string, error) {
	matcher := NewMatcher(excludePatterns)

	var files []string
	err := filepath.WalkDir(projectPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(projectPath, path)
		if relErr != nil || rel == "." {
			return nil
		}

		if d.IsDir() {
			if matcher.Excluded(rel) {
				return fs.SkipDir
			}
			return nil
		}

		if matcher.Excluded(rel) || !lang.Supported(rel) {
			return nil
		}

		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", projectPath, err)
	}

	sort.Strings(files)
	return files, nil
}

// TreeNode is one entry in a hierarchical project file tree.
type TreeNode struct {
	Name      string     `json:"name"`
	Path      string     `json:"path"`
	Type      string     `json:"type"` // "file" or "directory"
	Language  string     `json:"language,omitempty"`
	Supported bool       `json:"supported,omitempty"`
	Children  []TreeNode `json:"children,omitempty"`
}

// Tree builds a hierarchical file tree for projectPath, omitting excluded
// entries and directories containing no supported files.
func Tree(projectPath string, excludePatterns []string) (*TreeNode, error) {
	matcher := NewMatcher(excludePatterns)
	root := &TreeNode{
		Name: filepath.Base(projectPath),
		Path: "",
		Type: "directory",
	}

	children, _, err := subtree(projectPath, projectPath, matcher)
	if err != nil {
		return nil, err
	}
	root.Children = children
	return root, nil
}

// subtree returns the child entries of dir plus whether any supported file
// exists anywhere beneath it.
func subtree(dir, projectPath string, matcher *Matcher) ([]TreeNode, bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, false, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var children []TreeNode
	hasSupported := false

	for _, entry := range entries {
		abs := filepath.Join(dir, entry.Name())
		rel, err := filepath.Rel(projectPath, abs)
		if err != nil {
			continue
		}
		if matcher.Excluded(rel) {
			continue
		}

		if entry.IsDir() {
			sub, subSupported, err := subtree(abs, projectPath, matcher)
			if err != nil {
				continue // unreadable subdirectory
			}
			if len(sub) == 0 && !subSupported {
				continue
			}
			children = append(children, TreeNode{
				Name:     entry.Name(),
				Path:     filepath.ToSlash(rel),
				Type:     "directory",
				Children: sub,
			})
			hasSupported = hasSupported || subSupported
			continue
		}

		language, supported := lang.Detect(entry.Name())
		children = append(children, TreeNode{
			Name:      entry.Name(),
			Path:      filepath.ToSlash(rel),
			Type:      "file",
			Language:  string(language),
			Supported: supported,
		})
		hasSupported = hasSupported || supported
	}

	return children, hasSupported, nil
}
