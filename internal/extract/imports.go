package extract

import (
	"os"
	"path/filepath"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/codegraph/internal/lang"
)

// importSource extracts the display name and literal source string from an
// import node. Import syntax varies too much between grammars for the table
// approach, so this is one of the few per-language branches.
func importSource(node *tree_sitter.Node, source []byte, language lang.Language) (string, string) {
	switch language {
	case lang.LangPython:
		return pythonImportSource(node, source)
	case lang.LangJavaScript, lang.LangTypeScript, lang.LangTSX:
		return jsImportSource(node, source)
	case lang.LangGo:
		return goImportSource(node, source)
	case lang.LangRust:
		return rustImportSource(node, source)
	default:
		text := strings.TrimSpace(node.Utf8Text(source))
		fields := strings.Fields(text)
		if len(fields) > 0 {
			name := strings.Trim(fields[len(fields)-1], `'";<>`)
			return name, name
		}
		return text, text
	}
}

func pythonImportSource(node *tree_sitter.Node, source []byte) (string, string) {
	if node.Kind() == "import_from_statement" {
		if module := node.ChildByFieldName("module_name"); module != nil {
			src := module.Utf8Text(source)
			return src, src
		}
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if child.Kind() == "dotted_name" || child.Kind() == "aliased_import" {
			name := child.Utf8Text(source)
			return name, name
		}
	}
	text := strings.TrimSpace(node.Utf8Text(source))
	return text, ""
}

func jsImportSource(node *tree_sitter.Node, source []byte) (string, string) {
	if sourceNode := node.ChildByFieldName("source"); sourceNode != nil {
		src := strings.Trim(sourceNode.Utf8Text(source), `'"`)
		return lastSegment(src, "/"), src
	}

	// require("...") style: the module string is the first string argument.
	if args := node.ChildByFieldName("arguments"); args != nil {
		for i := uint(0); i < args.ChildCount(); i++ {
			child := args.Child(i)
			if child != nil && child.Kind() == "string" {
				src := strings.Trim(child.Utf8Text(source), `'"`)
				return lastSegment(src, "/"), src
			}
		}
	}

	text := strings.TrimSpace(node.Utf8Text(source))
	return text, ""
}

func goImportSource(node *tree_sitter.Node, source []byte) (string, string) {
	name, src := "", ""
	record := func(spec *tree_sitter.Node) {
		if pathNode := spec.ChildByFieldName("path"); pathNode != nil {
			src = strings.Trim(pathNode.Utf8Text(source), `"`)
			name = lastSegment(src, "/")
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "import_spec":
			record(child)
		case "import_spec_list":
			for j := uint(0); j < child.ChildCount(); j++ {
				spec := child.Child(j)
				if spec != nil && spec.Kind() == "import_spec" {
					record(spec)
				}
			}
		}
	}

	if src == "" {
		name = strings.TrimSpace(node.Utf8Text(source))
	}
	return name, src
}

func rustImportSource(node *tree_sitter.Node, source []byte) (string, string) {
	if arg := node.ChildByFieldName("argument"); arg != nil {
		src := arg.Utf8Text(source)
		return src, src
	}
	text := strings.TrimSpace(node.Utf8Text(source))
	return text, ""
}

// isExternalImport classifies an import as external (third-party) or
// internal to the project. This is a filesystem/string heuristic, not a
// package-registry lookup: an import is external unless its source is a
// relative path or resolves to an existing path inside the project root.
func isExternalImport(source string, language lang.Language, projectPath string) bool {
	if source == "" {
		return false
	}

	switch language {
	case lang.LangPython:
		if strings.HasPrefix(source, ".") {
			return false
		}
		parts := strings.Split(source, ".")
		candidate := filepath.Join(projectPath, filepath.Join(parts...))
		if pathExists(candidate+".py") || pathExists(candidate) {
			return false
		}
		return true
	case lang.LangJavaScript, lang.LangTypeScript, lang.LangTSX:
		return !strings.HasPrefix(source, ".") && !strings.HasPrefix(source, "/")
	case lang.LangGo:
		// External Go packages carry domain-qualified paths.
		return strings.Contains(source, "/")
	case lang.LangRust:
		return !strings.HasPrefix(source, "crate::") &&
			!strings.HasPrefix(source, "self::") &&
			!strings.HasPrefix(source, "super::")
	default:
		return false
	}
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func lastSegment(s, sep string) string {
	if idx := strings.LastIndex(s, sep); idx != -1 {
		return s[idx+1:]
	}
	return s
}
