// Package extract walks concrete syntax trees and produces typed records for
// classes, functions, variables and imports. One generic walker serves every
// registered grammar through the per-language tables in internal/lang.
package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/codegraph/internal/lang"
)

// AnonymousName marks a declaration whose name could not be determined.
const AnonymousName = "<anonymous>"

// Class is a class-like declaration extracted from one file.
type Class struct {
	Name         string
	StartLine    int
	EndLine      int
	CodeHash     string
	Methods      []string
	Superclasses []string
	Attributes   []string
}

// Function is a function or method declaration.
type Function struct {
	Name      string
	StartLine int
	EndLine   int
	CodeHash  string
	Params    []string
	Calls     []string
	// ParentClass is the enclosing class name when the function is lexically
	// nested under a class declaration.
	ParentClass string
}

// Variable is a module-level variable declaration.
type Variable struct {
	Name      string
	StartLine int
	EndLine   int
	CodeHash  string
	Scope     string
}

// Import is a single import statement.
type Import struct {
	Name      string
	StartLine int
	EndLine   int
	Source    string
	External  bool
}

// FileResult holds everything extracted from one file. Errors are
// informational: a populated Errors slice never aborts sibling files.
type FileResult struct {
	Path     string // repo-relative, forward slashes
	Language lang.Language

	Classes   []Class
	Functions []Function
	Variables []Variable
	Imports   []Import
	Errors    []string
}

// DefaultParseBudget bounds a single file's parse time. An over-budget parse
// is recorded as a file-local error and contributes zero entities.
const DefaultParseBudget = 10 * time.Second

// Extractor parses single files and extracts structural records. An
// Extractor's cached parsers are not safe for concurrent use; give each
// worker goroutine its own Extractor.
type Extractor struct {
	reg    *lang.Registry
	budget time.Duration
}

// New creates an Extractor. A non-positive budget falls back to
// DefaultParseBudget.
func New(reg *lang.Registry, budget time.Duration) *Extractor {
	if budget <= 0 {
		budget = DefaultParseBudget
	}
	return &Extractor{reg: reg, budget: budget}
}

// File extracts structural records from one source file. relPath is the
// repo-relative path under projectPath. Read and parse failures are recorded
// in the result's Errors; the only hard failure mode is caller misuse, which
// is likewise folded into the result so a build never aborts on one file.
func (e *Extractor) File(ctx context.Context, projectPath, relPath string) FileResult {
	result := FileResult{Path: filepath.ToSlash(relPath)}

	language, ok := lang.Detect(relPath)
	if !ok {
		result.Language = "unknown"
		result.Errors = append(result.Errors, "unsupported file type")
		return result
	}
	result.Language = language

	cfg, err := e.reg.Config(language)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	source, err := os.ReadFile(filepath.Join(projectPath, relPath))
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot read file: %v", err))
		return result
	}

	tree, err := e.parse(ctx, language, source)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("parse error: %v", err))
		return result
	}
	defer tree.Close()

	w := &walker{
		cfg:         cfg,
		language:    language,
		projectPath: projectPath,
		source:      source,
		result:      &result,
	}
	w.walk(tree.RootNode(), "")
	return result
}

// errParseBudget is recorded when a single file's parse exceeds its budget.
var errParseBudget = errors.New("parse exceeded time budget")

// parse runs the tree-sitter parser under the per-file budget. On expiry the
// cached parser is evicted (it may still be running) and an error returned.
func (e *Extractor) parse(ctx context.Context, language lang.Language, source []byte) (*tree_sitter.Tree, error) {
	parser, err := e.reg.Parser(language)
	if err != nil {
		return nil, err
	}

	done := make(chan *tree_sitter.Tree, 1)
	go func() {
		done <- parser.Parse(source, nil)
	}()

	timer := time.NewTimer(e.budget)
	defer timer.Stop()

	select {
	case tree := <-done:
		if tree == nil {
			return nil, errors.New("parser returned no tree")
		}
		return tree, nil
	case <-timer.C:
		e.reg.Evict(language)
		return nil, errParseBudget
	case <-ctx.Done():
		e.reg.Evict(language)
		return nil, ctx.Err()
	}
}

// walker carries the per-file state for one extraction pass.
type walker struct {
	cfg         *lang.Config
	language    lang.Language
	projectPath string
	source      []byte
	result      *FileResult
}

// walk visits node and its subtree. classCtx is the name of the lexically
// enclosing class, or empty at module level. Function nodes are structural
// leaves: their bodies are mined for callee names but never re-walked for
// nested class/function entities.
func (w *walker) walk(node *tree_sitter.Node, classCtx string) {
	kind := node.Kind()

	if w.cfg.ClassKinds[kind] {
		w.recordClass(node)
		name := w.declName(node)
		for i := uint(0); i < node.ChildCount(); i++ {
			if child := node.Child(i); child != nil {
				w.walk(child, name)
			}
		}
		return
	}

	if w.cfg.FunctionKinds[kind] {
		w.recordFunction(node, classCtx)
		return
	}

	if w.cfg.ImportKinds[kind] {
		if w.isImport(node, kind) {
			w.recordImport(node)
			return
		}
		// A call expression that is not an import-like call: fall through so
		// its children are still walked for other entities.
	}

	if w.cfg.VariableKinds[kind] && classCtx == "" {
		if parent := node.Parent(); parent != nil && w.cfg.ContainerKinds[parent.Kind()] {
			w.recordVariable(node)
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			w.walk(child, classCtx)
		}
	}
}

// isImport reports whether an import-kind node really is an import. Call
// expressions only count when the callee is one of the configured
// import-like function names (e.g. require).
func (w *walker) isImport(node *tree_sitter.Node, kind string) bool {
	if !w.cfg.CallKinds[kind] {
		return true
	}
	if len(w.cfg.ImportCallNames) == 0 {
		return false
	}
	callee := node.ChildByFieldName(w.cfg.CalleeField)
	if callee == nil {
		return false
	}
	return w.cfg.ImportCallNames[callee.Utf8Text(w.source)]
}

func (w *walker) recordClass(node *tree_sitter.Node) {
	code := node.Utf8Text(w.source)
	w.result.Classes = append(w.result.Classes, Class{
		Name:         w.declName(node),
		StartLine:    int(node.StartPosition().Row) + 1,
		EndLine:      int(node.EndPosition().Row) + 1,
		CodeHash:     HashCode(code),
		Methods:      w.methodNames(node),
		Superclasses: w.superclasses(node),
	})
}

func (w *walker) recordFunction(node *tree_sitter.Node, classCtx string) {
	code := node.Utf8Text(w.source)
	w.result.Functions = append(w.result.Functions, Function{
		Name:        w.declName(node),
		StartLine:   int(node.StartPosition().Row) + 1,
		EndLine:     int(node.EndPosition().Row) + 1,
		CodeHash:    HashCode(code),
		Params:      w.paramNames(node),
		Calls:       w.calleeNames(node),
		ParentClass: classCtx,
	})
}

func (w *walker) recordVariable(node *tree_sitter.Node) {
	code := node.Utf8Text(w.source)
	w.result.Variables = append(w.result.Variables, Variable{
		Name:      w.variableName(node),
		StartLine: int(node.StartPosition().Row) + 1,
		EndLine:   int(node.EndPosition().Row) + 1,
		CodeHash:  HashCode(code),
		Scope:     "module",
	})
}

func (w *walker) recordImport(node *tree_sitter.Node) {
	name, source := importSource(node, w.source, w.language)
	w.result.Imports = append(w.result.Imports, Import{
		Name:      name,
		StartLine: int(node.StartPosition().Row) + 1,
		EndLine:   int(node.EndPosition().Row) + 1,
		Source:    source,
		External:  isExternalImport(source, w.language, w.projectPath),
	})
}

// declName extracts a declaration's name via the configured name field, with
// a fallback to the first identifier child.
func (w *walker) declName(node *tree_sitter.Node) string {
	if nameNode := node.ChildByFieldName(w.cfg.NameField); nameNode != nil {
		return nameNode.Utf8Text(w.source)
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == "identifier" {
			return child.Utf8Text(w.source)
		}
	}
	return AnonymousName
}

// variableName extracts a variable's name from its left-hand side.
func (w *walker) variableName(node *tree_sitter.Node) string {
	for _, field := range []string{"left", w.cfg.NameField} {
		if n := node.ChildByFieldName(field); n != nil {
			return n.Utf8Text(w.source)
		}
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && (child.Kind() == "identifier" || child.Kind() == "variable_name") {
			return child.Utf8Text(w.source)
		}
	}
	return AnonymousName
}

// methodNames collects the names of function-kind descendants of a class
// node.
func (w *walker) methodNames(node *tree_sitter.Node) []string {
	var methods []string
	w.visitDescendants(node, func(n *tree_sitter.Node) bool {
		if w.cfg.FunctionKinds[n.Kind()] {
			methods = append(methods, w.declName(n))
			return false // a method body cannot contain further methods of this class
		}
		return true
	})
	return methods
}

// superclasses extracts declared superclass names. Both plain identifier
// lists (extends clauses) and call-with-arguments base classes
// (Python-style argument lists) are handled.
func (w *walker) superclasses(node *tree_sitter.Node) []string {
	super := (*tree_sitter.Node)(nil)
	if w.cfg.SuperclassField != "" {
		super = node.ChildByFieldName(w.cfg.SuperclassField)
	}
	if super == nil && w.cfg.SuperclassKind != "" {
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child != nil && child.Kind() == w.cfg.SuperclassKind {
				super = child
				break
			}
		}
	}
	if super == nil {
		return nil
	}

	var names []string
	var collect func(n *tree_sitter.Node)
	collect = func(n *tree_sitter.Node) {
		for i := uint(0); i < n.ChildCount(); i++ {
			child := n.Child(i)
			if child == nil {
				continue
			}
			switch {
			case lang.IsSuperclassName(child.Kind()):
				names = append(names, child.Utf8Text(w.source))
			case child.Kind() == "argument_list":
				for j := uint(0); j < child.ChildCount(); j++ {
					arg := child.Child(j)
					if arg != nil && (arg.Kind() == "identifier" || arg.Kind() == "attribute") {
						names = append(names, arg.Utf8Text(w.source))
					}
				}
			case child.Kind() == "extends_clause":
				collect(child)
			}
		}
	}
	collect(super)
	return names
}

// paramNames extracts parameter names from a function node, covering plain,
// typed and defaulted parameter shapes.
func (w *walker) paramNames(node *tree_sitter.Node) []string {
	paramsNode := node.ChildByFieldName(w.cfg.ParamsField)
	if paramsNode == nil {
		return nil
	}

	var params []string
	for i := uint(0); i < paramsNode.ChildCount(); i++ {
		child := paramsNode.Child(i)
		if child == nil || !lang.IsParameter(child.Kind()) {
			continue
		}
		if child.Kind() == "identifier" {
			params = append(params, child.Utf8Text(w.source))
			continue
		}
		named := false
		for _, field := range []string{"name", "pattern"} {
			if n := child.ChildByFieldName(field); n != nil {
				params = append(params, n.Utf8Text(w.source))
				named = true
				break
			}
		}
		if !named {
			for j := uint(0); j < child.ChildCount(); j++ {
				inner := child.Child(j)
				if inner != nil && inner.Kind() == "identifier" {
					params = append(params, inner.Utf8Text(w.source))
					break
				}
			}
		}
	}
	return params
}

// calleeNames collects the distinct callee names referenced anywhere inside
// a function body, in first-seen order. Qualified accesses keep only the
// trailing member name: obj.method() records "method".
func (w *walker) calleeNames(node *tree_sitter.Node) []string {
	seen := make(map[string]bool)
	var calls []string

	w.visitDescendants(node, func(n *tree_sitter.Node) bool {
		if !w.cfg.CallKinds[n.Kind()] {
			return true
		}
		callee := n.ChildByFieldName(w.cfg.CalleeField)
		if callee == nil {
			callee = n.ChildByFieldName("name")
		}
		var text string
		if callee != nil {
			text = callee.Utf8Text(w.source)
		} else if n.ChildCount() > 0 && n.Child(0) != nil {
			text = n.Child(0).Utf8Text(w.source)
		}
		if text == "" {
			return true
		}
		if idx := strings.LastIndex(text, "."); idx != -1 {
			text = text[idx+1:]
		}
		if text != "" && !seen[text] {
			seen[text] = true
			calls = append(calls, text)
		}
		return true
	})
	return calls
}

// visitDescendants walks the subtree below node in document order, calling
// visit for every descendant. Returning false skips that node's subtree.
func (w *walker) visitDescendants(node *tree_sitter.Node, visit func(*tree_sitter.Node) bool) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if visit(child) {
			w.visitDescendants(child, visit)
		}
	}
}

// HashCode returns the truncated sha256 of a code unit's source text, used
// as the unit's content hash.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])[:16]
}
