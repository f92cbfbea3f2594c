package graph

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/codegraph/internal/extract"
	"github.com/dusk-indust/codegraph/internal/lang"
	"github.com/dusk-indust/codegraph/internal/scan"
)

// Options configures a Builder.
type Options struct {
	// ExcludePatterns override scan.DefaultExcludePatterns when non-empty.
	ExcludePatterns []string

	// Workers bounds parallel file extraction; defaults to GOMAXPROCS.
	Workers int

	// ParseBudget bounds a single file's parse time.
	ParseBudget time.Duration

	Logger *slog.Logger
}

// Builder turns a source tree into a dependency graph. Each Build invocation
// is independent; the Builder retains no state between builds.
type Builder struct {
	opts Options
	log  *slog.Logger
}

// NewBuilder creates a Builder with the given options.
func NewBuilder(opts Options) *Builder {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Builder{opts: opts, log: log}
}

// Build is a convenience wrapper around NewBuilder for callers with no
// options beyond exclude patterns.
func Build(ctx context.Context, projectPath string, excludePatterns []string) (*Result, error) {
	return NewBuilder(Options{ExcludePatterns: excludePatterns}).Build(ctx, projectPath)
}

// Build parses every supported file under projectPath and assembles the
// graph. Extraction runs in parallel across files; node creation, index
// population and edge resolution run as a sequential merge because the
// cross-file name indexes are shared state. Per-file problems are collected
// into Result.Errors and never abort the build.
func (b *Builder) Build(ctx context.Context, projectPath string) (*Result, error) {
	files, err := scan.Collect(projectPath, b.opts.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("collect files: %w", err)
	}

	results, err := b.extractAll(ctx, projectPath, files)
	if err != nil {
		return nil, err
	}

	st := newBuildState(projectPath, files)

	// Phase 1: nodes and indexes. Files are processed in lexicographic path
	// order, which fixes the tie-break for bare-name collisions.
	for i := range results {
		st.addFile(&results[i])
	}

	// Phase 2: edge resolution. Requires the complete Phase-1 indexes.
	st.resolveCalls()
	st.resolveInheritance()
	st.resolveImports()

	res := &Result{
		Nodes:  st.nodes,
		Edges:  st.edges,
		Errors: st.errors,
	}
	res.Stats = computeStats(res.Nodes, res.Edges)

	b.log.Info("graph build complete",
		"files", len(files),
		"nodes", len(res.Nodes),
		"edges", len(res.Edges),
		"errors", len(res.Errors))
	return res, nil
}

// extractAll fans extraction out over a bounded worker pool. Each worker
// owns its own registry because cached tree-sitter parsers are not safe for
// concurrent use; workers write only to their per-file result slot.
func (b *Builder) extractAll(ctx context.Context, projectPath string, files []string) ([]extract.FileResult, error) {
	workers := b.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(files) && len(files) > 0 {
		workers = len(files)
	}

	results := make([]extract.FileResult, len(files))
	indexes := make(chan int)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(indexes)
		for i := range files {
			select {
			case indexes <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			reg := lang.NewRegistry()
			defer reg.Close()
			ex := extract.New(reg, b.opts.ParseBudget)

			for i := range indexes {
				results[i] = ex.File(gctx, projectPath, files[i])
				if err := gctx.Err(); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extract files: %w", err)
	}
	return results, nil
}

// buildState accumulates nodes, edges and the cross-file name indexes during
// one build.
type buildState struct {
	nodes  []Node
	edges  []Edge
	errors []string

	// funcIndex maps a callee name to candidate function node ids. Every
	// function is registered under its bare name, its Class.method qualified
	// name, and a file-qualified key.
	funcIndex map[string][]string

	// classIndex maps class names to node ids under both a file-qualified
	// key and the bare name. A class redefining an already-seen bare name
	// overwrites the bare entry (last processed wins).
	classIndex map[string]string

	// fileIndex maps repo-relative file paths to file node ids.
	fileIndex map[string]string

	resolver *pathResolver
}

func newBuildState(projectPath string, files []string) *buildState {
	return &buildState{
		funcIndex:  make(map[string][]string),
		classIndex: make(map[string]string),
		fileIndex:  make(map[string]string, len(files)),
		resolver:   newPathResolver(projectPath, files),
	}
}

// addFile creates the file node and one node per extracted entity, wiring
// parent ids and populating the name indexes.
func (st *buildState) addFile(fr *extract.FileResult) {
	for _, e := range fr.Errors {
		st.errors = append(st.errors, fmt.Sprintf("%s: %s", fr.Path, e))
	}
	if len(fr.Errors) > 0 &&
		len(fr.Classes)+len(fr.Functions)+len(fr.Variables)+len(fr.Imports) == 0 {
		// Total extraction failure: the file contributes no nodes.
		return
	}

	fileID := newID()
	st.fileIndex[fr.Path] = fileID
	st.nodes = append(st.nodes, Node{
		ID:       fileID,
		Name:     path.Base(fr.Path),
		Kind:     NodeKindFile,
		Language: fr.Language,
		FilePath: fr.Path,
	})

	for _, cls := range fr.Classes {
		id := newID()
		st.classIndex[fr.Path+":"+cls.Name] = id
		st.classIndex[cls.Name] = id
		st.nodes = append(st.nodes, Node{
			ID:        id,
			Name:      cls.Name,
			Kind:      NodeKindClass,
			Language:  fr.Language,
			FilePath:  fr.Path,
			StartLine: cls.StartLine,
			EndLine:   cls.EndLine,
			CodeHash:  cls.CodeHash,
			ParentID:  fileID,
			Meta: NodeMeta{
				Methods:      cls.Methods,
				Superclasses: cls.Superclasses,
				Attributes:   cls.Attributes,
				MethodCount:  len(cls.Methods),
			},
		})
	}

	for _, fn := range fr.Functions {
		id := newID()

		parentID := ""
		if fn.ParentClass != "" {
			parentID = st.classIndex[fr.Path+":"+fn.ParentClass]
			if parentID == "" {
				parentID = st.classIndex[fn.ParentClass]
			}
		}
		if parentID == "" {
			parentID = fileID
		}

		fullName := fn.Name
		if fn.ParentClass != "" {
			fullName = fn.ParentClass + "." + fn.Name
		}
		st.funcIndex[fn.Name] = append(st.funcIndex[fn.Name], id)
		if fullName != fn.Name {
			st.funcIndex[fullName] = append(st.funcIndex[fullName], id)
		}
		st.funcIndex[fr.Path+":"+fullName] = append(st.funcIndex[fr.Path+":"+fullName], id)

		st.nodes = append(st.nodes, Node{
			ID:        id,
			Name:      fn.Name,
			Kind:      NodeKindFunction,
			Language:  fr.Language,
			FilePath:  fr.Path,
			StartLine: fn.StartLine,
			EndLine:   fn.EndLine,
			CodeHash:  fn.CodeHash,
			ParentID:  parentID,
			Meta: NodeMeta{
				Params:      fn.Params,
				Calls:       fn.Calls,
				ParentClass: fn.ParentClass,
				FullName:    fullName,
			},
		})
	}

	for _, v := range fr.Variables {
		st.nodes = append(st.nodes, Node{
			ID:        newID(),
			Name:      v.Name,
			Kind:      NodeKindVariable,
			Language:  fr.Language,
			FilePath:  fr.Path,
			StartLine: v.StartLine,
			EndLine:   v.EndLine,
			CodeHash:  v.CodeHash,
			ParentID:  fileID,
			Meta:      NodeMeta{Scope: v.Scope},
		})
	}

	for _, imp := range fr.Imports {
		st.nodes = append(st.nodes, Node{
			ID:        newID(),
			Name:      imp.Name,
			Kind:      NodeKindImport,
			Language:  fr.Language,
			FilePath:  fr.Path,
			StartLine: imp.StartLine,
			EndLine:   imp.EndLine,
			ParentID:  fileID,
			Meta:      NodeMeta{Source: imp.Source, External: imp.External},
		})
	}
}

// resolveCalls creates one calls edge per (function, recorded callee,
// matching target). Ambiguous names fan out to every candidate; a target
// equal to the source is skipped so recursion never yields a self-loop.
func (st *buildState) resolveCalls() {
	for i := range st.nodes {
		n := &st.nodes[i]
		if n.Kind != NodeKindFunction {
			continue
		}
		for _, callName := range n.Meta.Calls {
			for _, targetID := range st.funcIndex[callName] {
				if targetID == n.ID {
					continue
				}
				st.edges = append(st.edges, Edge{
					SourceID: n.ID,
					TargetID: targetID,
					Kind:     EdgeKindCalls,
					Meta:     &EdgeMeta{CallName: callName},
				})
			}
		}
	}
}

// resolveInheritance creates one inherits edge per matched superclass name.
// Unmatched names are dropped silently; that is ambiguity, not an error.
func (st *buildState) resolveInheritance() {
	for i := range st.nodes {
		n := &st.nodes[i]
		if n.Kind != NodeKindClass {
			continue
		}
		for _, super := range n.Meta.Superclasses {
			if targetID, ok := st.classIndex[super]; ok {
				st.edges = append(st.edges, Edge{
					SourceID: n.ID,
					TargetID: targetID,
					Kind:     EdgeKindInherits,
				})
			}
		}
	}
}

// resolveImports creates file-to-file imports edges for import sources that
// resolve to a known project file.
func (st *buildState) resolveImports() {
	for i := range st.nodes {
		n := &st.nodes[i]
		if n.Kind != NodeKindImport {
			continue
		}
		sourceFileID, ok := st.fileIndex[n.FilePath]
		if !ok {
			continue
		}
		target, ok := st.resolver.resolve(n.Meta.Source, n.Language, n.FilePath)
		if !ok {
			continue
		}
		targetID, ok := st.fileIndex[target]
		if !ok {
			continue
		}
		st.edges = append(st.edges, Edge{
			SourceID: sourceFileID,
			TargetID: targetID,
			Kind:     EdgeKindImports,
			Meta:     &EdgeMeta{Source: n.Meta.Source, External: n.Meta.External},
		})
	}
}
