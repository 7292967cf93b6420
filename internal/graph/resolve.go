package graph

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/graphkernel/codegraph/internal/langdetect"
	"github.com/graphkernel/codegraph/internal/logging"
	"github.com/graphkernel/codegraph/internal/models"
	"github.com/graphkernel/codegraph/internal/treesitter"
)

// resolveCall implements the call resolution pipeline in three tiers: a
// same-file match, then the exported callables of the files the caller's
// imports resolve to (skipping an aliased import whose alias differs from
// the call's qualifier), then a global fallback across every file in the
// repository.
// The first tier to produce any candidates wins; ties within a tier break
// deterministically on element ID so resolution is a pure function of graph
// state, never of map iteration order.
func (r *Repository) resolveCall(fromPath string, call models.CallSite) bool {
	simpleName := call.CalleeName
	if idx := strings.LastIndexByte(simpleName, '.'); idx >= 0 {
		simpleName = simpleName[idx+1:]
	}

	if target, ok := r.resolveSameFile(fromPath, simpleName); ok {
		r.addEdge(models.GraphEdge{From: call.CallerID, To: target, Kind: models.EdgeCalls, Line: call.Line})
		return true
	}
	if target, ok := r.resolveViaImports(fromPath, call.CalleeName, simpleName); ok {
		r.addEdge(models.GraphEdge{From: call.CallerID, To: target, Kind: models.EdgeCalls, Line: call.Line})
		return true
	}
	if target, ok := r.resolveGlobalFallback(simpleName); ok {
		r.addEdge(models.GraphEdge{From: call.CallerID, To: target, Kind: models.EdgeCalls, Line: call.Line})
		return true
	}
	// No candidate anywhere: the call targets something outside the
	// indexed tree (stdlib, third-party package, builtin). Left
	// unresolved rather than erroring, per the shallow name-based
	// resolution the search/graph layer promises.
	return false
}

func (r *Repository) resolveSameFile(fromPath, simpleName string) (string, bool) {
	var candidates []string
	for _, id := range r.byPath[fromPath] {
		if el := r.elements[id]; el != nil && el.Name == simpleName && isCallable(el.Kind) {
			candidates = append(candidates, id)
		}
	}
	return pickDeterministic(candidates)
}

func (r *Repository) resolveViaImports(fromPath, calleeName, simpleName string) (string, bool) {
	info, ok := r.global.File(fromPath)
	if !ok {
		return "", false
	}

	qualifier := ""
	if idx := strings.LastIndexByte(calleeName, '.'); idx >= 0 {
		qualifier = calleeName[:idx]
	}

	for _, imp := range info.Imports {
		if qualifier != "" && imp.Alias != "" && imp.Alias != qualifier {
			continue
		}
		targetPath, ok := r.global.ResolveImportPath(fromPath, imp)
		if !ok {
			continue
		}
		var candidates []string
		for _, id := range r.byPath[targetPath] {
			if el := r.elements[id]; el != nil && el.Name == simpleName && isCallable(el.Kind) && el.Exported {
				candidates = append(candidates, id)
			}
		}
		if target, ok := pickDeterministic(candidates); ok {
			return target, true
		}
	}
	return "", false
}

func (r *Repository) resolveGlobalFallback(simpleName string) (string, bool) {
	var candidates []string
	for _, id := range r.global.SymbolsNamed(simpleName) {
		if el := r.elements[id]; el != nil && isCallable(el.Kind) {
			candidates = append(candidates, id)
		}
	}
	return pickDeterministic(candidates)
}

func isCallable(kind models.ElementKind) bool {
	return kind == models.KindFunction || kind == models.KindMethod
}

// pickDeterministic returns the lexicographically smallest ID among
// candidates, giving a total order when more than one element shares a
// name — ambiguous resolution is a documented limitation, not a crash.
func pickDeterministic(candidates []string) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	sort.Strings(candidates)
	return candidates[0], true
}

// resolveInheritance resolves one extends/implements/impl-trait edge against
// same-file types first, then the repository-wide symbol map.
func (r *Repository) resolveInheritance(fromPath string, edge models.InheritanceEdge) bool {
	var candidates []string
	for _, id := range r.byPath[fromPath] {
		if el := r.elements[id]; el != nil && el.Name == edge.ParentName && isType(el.Kind) {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		for _, id := range r.global.SymbolsNamed(edge.ParentName) {
			if el := r.elements[id]; el != nil && isType(el.Kind) {
				candidates = append(candidates, id)
			}
		}
	}
	target, ok := pickDeterministic(candidates)
	if !ok {
		return false
	}
	r.addEdge(models.GraphEdge{From: edge.ChildID, To: target, Kind: edge.Kind, Line: edge.Line})
	return true
}

func isType(kind models.ElementKind) bool {
	switch kind {
	case models.KindClass, models.KindInterface, models.KindStruct, models.KindEnum:
		return true
	default:
		return false
	}
}

// UpdateFile re-parses path and merges the result into the graph, replacing
// any prior contents for that file. It proceeds in five phases: remove the
// file's old elements/edges, re-register it in the global index, insert the
// freshly parsed elements, re-resolve every file's pending imports, then
// re-resolve every file's pending calls and inheritance edges, since a
// renamed or newly-added symbol in path can change what other files
// resolve to. ctx is not checked between the phases.
func (r *Repository) UpdateFile(ctx context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.indexed {
		return ErrNotIndexed
	}

	lang, ok := langdetect.Detect(path, r.opts.Languages)
	if !ok {
		return UnsupportedLanguage(path)
	}
	code, err := os.ReadFile(path)
	if err != nil {
		return IoError(path, err.Error())
	}

	r.removeFileLocked(path)

	result := treesitter.ParseFile(path, code, lang)
	if result.Error != nil {
		return ParseError(path, result.Error.Error())
	}

	r.insertFile(result)
	r.resolveAllPending()
	return nil
}

// RemoveFile drops path's elements and every edge touching them from the
// graph, then re-resolves remaining pending references, since removing a
// definition can make other files fall through to a different resolution
// tier (or to no resolution at all).
func (r *Repository) RemoveFile(ctx context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.indexed {
		return ErrNotIndexed
	}
	if _, ok := r.byPath[path]; !ok {
		return NotFound(path)
	}
	r.removeFileLocked(path)
	r.resolveAllPending()
	return nil
}

// AddFile indexes a new file not previously part of the graph. It shares
// UpdateFile's logic: removing a nonexistent path's elements is a no-op, so
// the same five-phase routine handles both add and update.
func (r *Repository) AddFile(ctx context.Context, path string) error {
	return r.UpdateFile(ctx, path)
}

func (r *Repository) removeFileLocked(path string) {
	ids, ok := r.byPath[path]
	if !ok {
		return
	}
	removeSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		removeSet[id] = true
	}

	keptEdges := r.edges[:0]
	for _, e := range r.edges {
		if removeSet[e.From] || removeSet[e.To] {
			continue
		}
		keptEdges = append(keptEdges, e)
	}
	r.edges = keptEdges
	r.rebuildEdgeIndexes()

	for _, id := range ids {
		el := r.elements[id]
		if el == nil {
			continue
		}
		r.byName[el.Name] = removeFromSlice(r.byName[el.Name], id)
		if len(r.byName[el.Name]) == 0 {
			delete(r.byName, el.Name)
		}
		r.kw.Remove(id)
		delete(r.elements, id)
	}
	delete(r.byPath, path)
	delete(r.pending, path)
	delete(r.pendingInherit, path)
	delete(r.pendingImports, path)
	r.global.RemoveFile(path)

	logging.Debug("removed file from graph", "path", path, "elements", len(ids))
}

func removeFromSlice(ids []string, target string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
