// Package graph holds the in-memory repository graph: resolved elements and
// edges built from internal/ingestion's parse results, the query surface
// consumers call against it, and the snapshot codec that persists it. A
// single sync.RWMutex covers the graph, its global index, and its search
// index together, the way standardbeagle-lci's SymbolLinkerEngine guards
// its node/edge maps and symbol tables with one mutex rather than several.
package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/graphkernel/codegraph/internal/globalindex"
	"github.com/graphkernel/codegraph/internal/ingestion"
	"github.com/graphkernel/codegraph/internal/logging"
	"github.com/graphkernel/codegraph/internal/models"
	"github.com/graphkernel/codegraph/internal/search"
)

// BuildOptions configures a full (re)index.
type BuildOptions struct {
	Root             string
	RespectGitignore bool
	ExtraIgnoreGlobs []string
	Languages        map[string]bool
	Workers          int
	SearchK1         float64
	SearchB          float64
}

// Stats summarizes the current state of the graph, for `codegraph status`.
type Stats struct {
	Files    int
	Elements int
	Edges    int
	ByLang   map[string]int

	// Errors collects per-file parse failures from the last full Build;
	// a failed file contributes zero elements but never aborts indexing.
	Errors []StatError
	// UnresolvedImports/Calls/Inheritance count ImportStatement/CallSite/
	// InheritanceEdge facts that none of the resolver tiers could match to
	// a live element, as of the last full resolution pass. A dropped
	// reference isn't an error; these are purely informational.
	UnresolvedImports     int
	UnresolvedCalls       int
	UnresolvedInheritance int
}

// Repository is the queryable, mutable code graph for one indexed root.
// Every exported method takes the lock it needs; callers never see
// inconsistent intermediate state, even mid-rebuild, because Build swaps in
// a fully-formed replacement index rather than mutating in place.
type Repository struct {
	mu sync.RWMutex

	root string

	elements map[string]*models.CodeElement // element ID -> element
	byPath   map[string][]string            // file path -> element IDs defined in it
	byName   map[string][]string            // simple name -> element IDs (local mirror of globalindex, maintained on insert/remove/Load; no query method reads it)

	edges      []models.GraphEdge
	edgesByFrom map[string][]int // element ID -> indices into edges, as source
	edgesByTo   map[string][]int // element ID -> indices into edges, as target
	edgeSet     map[string]bool  // (from,to,kind) already present, so addEdge collapses duplicates per spec

	pending        map[string][]models.CallSite        // file path -> call sites, re-resolved on every rebuild so a later file's addition can resolve them
	pendingInherit map[string][]models.InheritanceEdge // file path -> inheritance edges, re-resolved the same way
	pendingImports map[string][]models.ImportStatement // file path -> import statements, re-resolved the same way

	global *globalindex.Index
	kw     *search.Index

	indexed bool
	opts    BuildOptions

	parseErrors           []StatError
	unresolvedImports     int
	unresolvedCalls       int
	unresolvedInheritance int
}

// StatError records one file's bulk-indexing failure, surfaced via
// Stats.Errors instead of aborting the build.
type StatError struct {
	Path    string
	Message string
}

// New returns an empty, unindexed Repository. Call Build before querying it.
func New() *Repository {
	return &Repository{
		elements:       map[string]*models.CodeElement{},
		byPath:         map[string][]string{},
		byName:         map[string][]string{},
		edgesByFrom:    map[string][]int{},
		edgesByTo:      map[string][]int{},
		edgeSet:        map[string]bool{},
		pending:        map[string][]models.CallSite{},
		pendingInherit: map[string][]models.InheritanceEdge{},
		pendingImports: map[string][]models.ImportStatement{},
		global:         globalindex.New(),
		kw:             search.New(1.2, 0.75),
	}
}

// Build performs a full walk-and-parse of opts.Root and replaces the
// repository's contents with the result. It is safe to call again later to
// fully re-index from scratch.
func (r *Repository) Build(ctx context.Context, opts BuildOptions) error {
	if opts.Root == "" {
		return ErrInvalidPath
	}
	if _, err := os.Stat(opts.Root); err != nil {
		return &wrappedError{Sentinel: ErrInvalidPath, Detail: fmt.Sprintf("codegraph: cannot stat root %s: %v", opts.Root, err)}
	}

	walkOpts := ingestion.WalkOptions{
		Root:             opts.Root,
		RespectGitignore: opts.RespectGitignore,
		ExtraIgnoreGlobs: opts.ExtraIgnoreGlobs,
		Languages:        opts.Languages,
	}
	cfg := ingestion.ProcessorConfig{Workers: opts.Workers}

	results, err := ingestion.ParseRepository(ctx, walkOpts, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return ErrCanceled
		}
		return err
	}

	fresh := New()
	fresh.root = opts.Root
	fresh.opts = opts
	if opts.SearchK1 > 0 || opts.SearchB > 0 {
		fresh.kw = search.New(opts.SearchK1, opts.SearchB)
	}
	if modPath := readGoModulePath(opts.Root); modPath != "" {
		fresh.global.SetGoModulePrefix(modPath)
	}

	for _, res := range results {
		if res.Error != nil {
			logging.Warn("skipping file with parse error", "path", res.Path, "error", res.Error)
			fresh.parseErrors = append(fresh.parseErrors, StatError{Path: res.Path, Message: res.Error.Error()})
			continue
		}
		fresh.insertFile(res)
	}
	fresh.resolveAllPending()
	fresh.indexed = true

	r.mu.Lock()
	*r = *fresh
	r.mu.Unlock()
	return nil
}

// insertFile adds one file's elements and edge candidates to the graph
// without resolving cross-file references; callers resolve afterward so a
// whole batch of files can be inserted before any lookups run against them.
func (r *Repository) insertFile(res models.ParseResult) {
	ids := make([]string, 0, len(res.Elements))
	for i := range res.Elements {
		el := res.Elements[i]
		r.elements[el.ID] = &el
		ids = append(ids, el.ID)
		r.byName[el.Name] = append(r.byName[el.Name], el.ID)

		if el.ParentID != "" {
			r.addEdge(models.GraphEdge{From: el.ParentID, To: el.ID, Kind: models.EdgeDefines})
		}
	}
	r.byPath[res.Path] = ids
	r.global.AddFile(res)

	for _, el := range res.Elements {
		if el.Kind != models.KindFile {
			r.kw.Index(el)
		}
	}

	if len(res.Calls) > 0 {
		r.pending[res.Path] = res.Calls
	}
	if len(res.Inheritance) > 0 {
		r.pendingInherit[res.Path] = res.Inheritance
	}
	if len(res.Imports) > 0 {
		r.pendingImports[res.Path] = res.Imports
	}
}

// resolveImport resolves one ImportStatement against the current module
// map, returning whether it produced an edge. It does not addEdge itself
// so resolveAllPending can count the miss consistently with resolveCall and
// resolveInheritance.
func (r *Repository) resolveImport(fromPath string, imp models.ImportStatement) bool {
	targetPath, ok := r.global.ResolveImportPath(fromPath, imp)
	if !ok {
		return false
	}
	fileID := r.fileElementID(fromPath)
	targetFileID := r.fileElementID(targetPath)
	if fileID == "" || targetFileID == "" {
		return false
	}
	r.addEdge(models.GraphEdge{From: fileID, To: targetFileID, Kind: models.EdgeImports, Line: imp.Line})
	return true
}

// readGoModulePath returns the module directive declared by root/go.mod, or
// "" if the file is missing or has none. Go import paths are always
// fully-qualified from the module root, so resolving them against the
// directory-based module map requires knowing that prefix up front.
func readGoModulePath(root string) string {
	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "module ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "module"))
		}
	}
	return ""
}

func (r *Repository) fileElementID(path string) string {
	for _, id := range r.byPath[path] {
		if el := r.elements[id]; el != nil && el.Kind == models.KindFile {
			return id
		}
	}
	return ""
}

// resolveAllPending (re-)runs import, call and inheritance resolution for
// every file with outstanding pending edges. It first drops every
// previously-resolved Imports/Calls/Inherits/Implements edge, since the
// pending maps retain each file's imports, call sites and inheritance
// edges across incremental updates so a later change elsewhere can change
// how they resolve — without dropping the old edges first, re-running
// resolution would just pile duplicate edges on top of the existing ones.
func (r *Repository) resolveAllPending() {
	kept := r.edges[:0]
	for _, e := range r.edges {
		switch e.Kind {
		case models.EdgeCalls, models.EdgeInherits, models.EdgeImplements, models.EdgeImports:
			continue
		}
		kept = append(kept, e)
	}
	r.edges = kept
	r.rebuildEdgeIndexes()

	r.unresolvedImports = 0
	r.unresolvedCalls = 0
	r.unresolvedInheritance = 0

	for path, imps := range r.pendingImports {
		for _, imp := range imps {
			if !r.resolveImport(path, imp) {
				r.unresolvedImports++
			}
		}
	}
	for path, calls := range r.pending {
		for _, call := range calls {
			if !r.resolveCall(path, call) {
				r.unresolvedCalls++
			}
		}
	}
	for path, edges := range r.pendingInherit {
		for _, edge := range edges {
			if !r.resolveInheritance(path, edge) {
				r.unresolvedInheritance++
			}
		}
	}
}

// edgeKey identifies an edge by (from, to, kind) only, ignoring Line: the
// graph invariant in spec section 3 is that duplicates on this triple
// collapse to a single edge, since the same caller can invoke the same
// callee from more than one call site, or an import statement can appear
// twice across incremental re-indexing passes.
func edgeKey(from, to string, kind models.EdgeKind) string {
	return from + "\x00" + to + "\x00" + string(kind)
}

func (r *Repository) addEdge(edge models.GraphEdge) {
	key := edgeKey(edge.From, edge.To, edge.Kind)
	if r.edgeSet[key] {
		return
	}
	r.edgeSet[key] = true
	idx := len(r.edges)
	r.edges = append(r.edges, edge)
	r.edgesByFrom[edge.From] = append(r.edgesByFrom[edge.From], idx)
	r.edgesByTo[edge.To] = append(r.edgesByTo[edge.To], idx)
}

// rebuildEdgeIndexes recomputes edgesByFrom/edgesByTo/edgeSet from scratch.
// Used after removing edges from r.edges, since deletion shifts every later
// index; a full rebuild is simpler and cheap enough at this repo's scale to
// prefer over maintaining stable positions through deletions.
func (r *Repository) rebuildEdgeIndexes() {
	r.edgesByFrom = map[string][]int{}
	r.edgesByTo = map[string][]int{}
	r.edgeSet = map[string]bool{}
	for i, e := range r.edges {
		r.edgesByFrom[e.From] = append(r.edgesByFrom[e.From], i)
		r.edgesByTo[e.To] = append(r.edgesByTo[e.To], i)
		r.edgeSet[edgeKey(e.From, e.To, e.Kind)] = true
	}
}

// Stats reports the current size of the graph.
func (r *Repository) Stats() (Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.indexed {
		return Stats{}, ErrNotIndexed
	}
	stats := Stats{
		Elements:              len(r.elements),
		Edges:                 len(r.edges),
		Files:                 len(r.byPath),
		ByLang:                map[string]int{},
		Errors:                append([]StatError(nil), r.parseErrors...),
		UnresolvedImports:     r.unresolvedImports,
		UnresolvedCalls:       r.unresolvedCalls,
		UnresolvedInheritance: r.unresolvedInheritance,
	}
	for _, ids := range r.byPath {
		for _, id := range ids {
			if el := r.elements[id]; el != nil && el.Kind == models.KindFile {
				stats.ByLang[el.Language]++
			}
		}
	}
	return stats, nil
}

// ListFiles returns every indexed file path in sorted order.
func (r *Repository) ListFiles() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.indexed {
		return nil, ErrNotIndexed
	}
	paths := make([]string, 0, len(r.byPath))
	for p := range r.byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

// GetSource returns the element with the given ID.
func (r *Repository) GetSource(id string) (models.CodeElement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.indexed {
		return models.CodeElement{}, ErrNotIndexed
	}
	el, ok := r.elements[id]
	if !ok {
		return models.CodeElement{}, NotFound(id)
	}
	return *el, nil
}
