package lang

import (
	"errors"
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// ErrUnsupportedLanguage is returned when no grammar mapping exists for a
// requested language. This is a caller-contract error, not a file-local one.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Registry maps language identifiers to tree-sitter grammars and extraction
// tables. Parser instances are constructed lazily and cached per language.
type Registry struct {
	mu       sync.Mutex
	grammars map[Language]*tree_sitter.Language
	parsers  map[Language]*tree_sitter.Parser
}

// NewRegistry creates a Registry with all bundled grammars registered.
func NewRegistry() *Registry {
	return &Registry{
		grammars: map[Language]*tree_sitter.Language{
			LangGo:         tree_sitter.NewLanguage(tree_sitter_go.Language()),
			LangPython:     tree_sitter.NewLanguage(tree_sitter_python.Language()),
			LangJavaScript: tree_sitter.NewLanguage(tree_sitter_javascript.Language()),
			LangTypeScript: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
			LangTSX:        tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
			LangRust:       tree_sitter.NewLanguage(tree_sitter_rust.Language()),
		},
		parsers: make(map[Language]*tree_sitter.Parser),
	}
}

// Parser returns the cached parser for a language, constructing it on first
// use. Fails with ErrUnsupportedLanguage when no grammar mapping exists.
func (r *Registry) Parser(l Language) (*tree_sitter.Parser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.parsers[l]; ok {
		return p, nil
	}

	grammar, ok := r.grammars[l]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, l)
	}

	p := tree_sitter.NewParser()
	if err := p.SetLanguage(grammar); err != nil {
		p.Close()
		return nil, fmt.Errorf("set language %s: %w", l, err)
	}

	r.parsers[l] = p
	return p, nil
}

// Config returns the extraction tables for a language. Fails with
// ErrUnsupportedLanguage when the language has no tables.
func (r *Registry) Config(l Language) (*Config, error) {
	cfg := ConfigFor(l)
	if cfg == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, l)
	}
	return cfg, nil
}

// Evict removes a language's cached parser without closing it. Called when a
// parse exceeded its time budget: the instance may still be running on
// another goroutine, so it is abandoned rather than closed and the next
// Parser call constructs a fresh one.
func (r *Registry) Evict(l Language) {
	r.mu.Lock()
	delete(r.parsers, l)
	r.mu.Unlock()
}

// Close releases all cached parsers.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for l, p := range r.parsers {
		p.Close()
		delete(r.parsers, l)
	}
	return nil
}
