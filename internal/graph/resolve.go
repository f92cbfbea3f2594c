package graph

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dusk-indust/codegraph/internal/lang"
)

// pathResolver rewrites raw import specifiers into repo-relative file paths
// matching known file nodes. It is built once per build with the set of
// collected file paths plus module metadata found in the repository root.
// Resolution is a pure lookup against that set; no filesystem probing per
// import.
type pathResolver struct {
	fileSet  map[string]bool
	dirIndex map[string][]string
	goModule string
}

func newPathResolver(projectPath string, files []string) *pathResolver {
	r := &pathResolver{
		fileSet:  make(map[string]bool, len(files)),
		dirIndex: make(map[string][]string),
	}
	for _, f := range files {
		r.fileSet[f] = true
		dir := path.Dir(f)
		r.dirIndex[dir] = append(r.dirIndex[dir], f)
	}
	r.goModule = readGoModule(projectPath)
	return r
}

// resolve maps an import source string to a repo-relative file path using
// language-specific heuristics. fromFile is the importing file's
// repo-relative path.
func (r *pathResolver) resolve(source string, language lang.Language, fromFile string) (string, bool) {
	if source == "" {
		return "", false
	}
	switch language {
	case lang.LangPython:
		return r.resolvePython(source)
	case lang.LangJavaScript, lang.LangTypeScript, lang.LangTSX:
		return r.resolveJS(source, fromFile)
	case lang.LangGo:
		return r.resolveGo(source)
	case lang.LangRust:
		return r.resolveRust(source, fromFile)
	default:
		return "", false
	}
}

// resolvePython converts dotted-module notation to root-relative paths,
// probing both module.py and package/__init__.py.
func (r *pathResolver) resolvePython(source string) (string, bool) {
	trimmed := strings.TrimLeft(source, ".")
	if trimmed == "" {
		return "", false
	}
	base := strings.ReplaceAll(trimmed, ".", "/")
	return r.probe(base, []string{".py", "/__init__.py"})
}

var jsExtensions = []string{".js", ".ts", ".tsx", ".jsx", "/index.js", "/index.ts"}

// resolveJS resolves relative specifiers against the importing file's
// directory with extension probing. Bare specifiers are external packages.
func (r *pathResolver) resolveJS(source, fromFile string) (string, bool) {
	if !strings.HasPrefix(source, ".") {
		return "", false
	}
	base := path.Clean(path.Join(path.Dir(fromFile), source))
	return r.probe(base, jsExtensions)
}

// resolveGo strips the module path from a package import and picks the
// first non-test .go file in the target directory.
func (r *pathResolver) resolveGo(source string) (string, bool) {
	if r.goModule == "" || !strings.HasPrefix(source, r.goModule) {
		return "", false
	}
	relDir := strings.TrimPrefix(strings.TrimPrefix(source, r.goModule), "/")
	if relDir == "" {
		relDir = "."
	}

	files := r.dirIndex[relDir]
	if len(files) == 0 {
		return "", false
	}
	sorted := make([]string, len(files))
	copy(sorted, files)
	sort.Strings(sorted)
	for _, f := range sorted {
		if strings.HasSuffix(f, ".go") && !strings.HasSuffix(f, "_test.go") {
			return f, true
		}
	}
	return "", false
}

// resolveRust handles crate::, self:: and super:: module paths, probing
// module.rs and module/mod.rs.
func (r *pathResolver) resolveRust(source, fromFile string) (string, bool) {
	if idx := strings.Index(source, "::{"); idx != -1 {
		source = source[:idx]
	}

	rustExts := []string{".rs", "/mod.rs"}
	switch {
	case strings.HasPrefix(source, "crate::"):
		rel := strings.ReplaceAll(strings.TrimPrefix(source, "crate::"), "::", "/")
		for _, base := range []string{path.Join("src", rel), rel} {
			if resolved, ok := r.probe(base, rustExts); ok {
				return resolved, true
			}
		}
		return "", false
	case strings.HasPrefix(source, "self::"):
		rel := strings.ReplaceAll(strings.TrimPrefix(source, "self::"), "::", "/")
		return r.probe(path.Join(path.Dir(fromFile), rel), rustExts)
	case strings.HasPrefix(source, "super::"):
		rel := strings.ReplaceAll(strings.TrimPrefix(source, "super::"), "::", "/")
		return r.probe(path.Join(path.Dir(path.Dir(fromFile)), rel), rustExts)
	default:
		return "", false
	}
}

// probe checks basePath itself and basePath with each extension appended
// against the known file set.
func (r *pathResolver) probe(basePath string, extensions []string) (string, bool) {
	if r.fileSet[basePath] {
		return basePath, true
	}
	for _, ext := range extensions {
		if candidate := basePath + ext; r.fileSet[candidate] {
			return candidate, true
		}
	}
	return "", false
}

// readGoModule reads the module path from go.mod in the project root, if
// one exists.
func readGoModule(projectPath string) string {
	f, err := os.Open(filepath.Join(projectPath, "go.mod"))
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "module ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "module"))
		}
	}
	return ""
}
