package lang

import (
	"path/filepath"
	"strings"
)

// Language identifies a programming language for parsing.
type Language string

const (
	LangGo         Language = "go"
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangRust       Language = "rust"
)

// extensions maps lowercase file extensions to the language that parses them.
var extensions = map[string]Language{
	".go":  LangGo,
	".py":  LangPython,
	".js":  LangJavaScript,
	".jsx": LangJavaScript,
	".ts":  LangTypeScript,
	".tsx": LangTSX,
	".rs":  LangRust,
}

// Detect returns the language for a file path based on its extension.
// The second return value is false for unsupported extensions.
func Detect(path string) (Language, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	l, ok := extensions[ext]
	return l, ok
}

// Supported reports whether the file at path can be parsed.
func Supported(path string) bool {
	_, ok := Detect(path)
	return ok
}

// All returns every registered language identifier.
func All() []Language {
	return []Language{LangGo, LangPython, LangJavaScript, LangTypeScript, LangTSX, LangRust}
}
