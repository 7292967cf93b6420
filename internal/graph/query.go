package graph

import (
	"sort"

	"github.com/graphkernel/codegraph/internal/models"
)

// FindCallers returns every element with a resolved "calls" edge targeting id.
func (r *Repository) FindCallers(id string) ([]models.CodeElement, error) {
	return r.neighborsByKind(id, models.EdgeCalls, false)
}

// FindCallees returns every element id has a resolved "calls" edge to.
func (r *Repository) FindCallees(id string) ([]models.CodeElement, error) {
	return r.neighborsByKind(id, models.EdgeCalls, true)
}

// GetDependencies returns the files that the file at path imports.
func (r *Repository) GetDependencies(path string) ([]models.CodeElement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.indexed {
		return nil, ErrNotIndexed
	}
	fileID := r.fileElementID(path)
	if fileID == "" {
		return nil, NotFound(path)
	}
	return r.neighborsByKindLocked(fileID, models.EdgeImports, true), nil
}

// GetDependents returns the files that import path.
func (r *Repository) GetDependents(path string) ([]models.CodeElement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.indexed {
		return nil, ErrNotIndexed
	}
	fileID := r.fileElementID(path)
	if fileID == "" {
		return nil, NotFound(path)
	}
	return r.neighborsByKindLocked(fileID, models.EdgeImports, false), nil
}

// GetSubclasses returns every type with a resolved inherits/implements edge
// pointing at id.
func (r *Repository) GetSubclasses(id string) ([]models.CodeElement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.indexed {
		return nil, ErrNotIndexed
	}
	var out []models.CodeElement
	out = append(out, r.neighborsByKindLocked(id, models.EdgeInherits, false)...)
	out = append(out, r.neighborsByKindLocked(id, models.EdgeImplements, false)...)
	return dedupeElements(out), nil
}

// GetSuperclasses returns id's resolved inherits/implements targets.
func (r *Repository) GetSuperclasses(id string) ([]models.CodeElement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.indexed {
		return nil, ErrNotIndexed
	}
	var out []models.CodeElement
	out = append(out, r.neighborsByKindLocked(id, models.EdgeInherits, true)...)
	out = append(out, r.neighborsByKindLocked(id, models.EdgeImplements, true)...)
	return dedupeElements(out), nil
}

func (r *Repository) neighborsByKind(id string, kind models.EdgeKind, outgoing bool) ([]models.CodeElement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.indexed {
		return nil, ErrNotIndexed
	}
	if _, ok := r.elements[id]; !ok {
		return nil, NotFound(id)
	}
	return r.neighborsByKindLocked(id, kind, outgoing), nil
}

func (r *Repository) neighborsByKindLocked(id string, kind models.EdgeKind, outgoing bool) []models.CodeElement {
	var idxs []int
	if outgoing {
		idxs = r.edgesByFrom[id]
	} else {
		idxs = r.edgesByTo[id]
	}

	var out []models.CodeElement
	for _, i := range idxs {
		e := r.edges[i]
		if e.Kind != kind {
			continue
		}
		var other string
		if outgoing {
			other = e.To
		} else {
			other = e.From
		}
		if el := r.elements[other]; el != nil {
			out = append(out, *el)
		}
	}
	out = dedupeElements(out)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func dedupeElements(in []models.CodeElement) []models.CodeElement {
	seen := map[string]bool{}
	out := in[:0]
	for _, el := range in {
		if seen[el.ID] {
			continue
		}
		seen[el.ID] = true
		out = append(out, el)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindPath returns the shortest chain of edges connecting from to to,
// breadth-first across all edge kinds, with the earliest-discovered path
// winning ties (deterministic because edge traversal order is sorted by
// target ID at each step). maxDepth is a hard cap on the number of edges
// in the returned path; a path longer than maxDepth is treated the same as
// no path at all. maxDepth <= 0 means unbounded.
func (r *Repository) FindPath(from, to string, maxDepth int) ([]models.GraphEdge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.indexed {
		return nil, ErrNotIndexed
	}
	if _, ok := r.elements[from]; !ok {
		return nil, NotFound(from)
	}
	if _, ok := r.elements[to]; !ok {
		return nil, NotFound(to)
	}
	if from == to {
		return nil, nil
	}

	visited := map[string]bool{from: true}
	queue := []*pathStep{{id: from, depth: 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if maxDepth > 0 && cur.depth >= maxDepth {
			continue
		}

		idxs := append([]int{}, r.edgesByFrom[cur.id]...)
		sort.Slice(idxs, func(i, j int) bool { return r.edges[idxs[i]].To < r.edges[idxs[j]].To })

		for _, i := range idxs {
			e := r.edges[i]
			if visited[e.To] {
				continue
			}
			visited[e.To] = true
			next := &pathStep{id: e.To, edge: e, prev: cur, depth: cur.depth + 1}
			if e.To == to {
				return next.path(), nil
			}
			queue = append(queue, next)
		}
	}
	return nil, nil
}

type pathStep struct {
	id    string
	edge  models.GraphEdge
	prev  *pathStep
	depth int
}

func (s *pathStep) path() []models.GraphEdge {
	var edges []models.GraphEdge
	for cur := s; cur.prev != nil; cur = cur.prev {
		edges = append(edges, cur.edge)
	}
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}
	return edges
}

// GetRelated returns every element reachable from id in at most hops steps,
// following resolved edges of any kind in kinds (or every kind, if kinds is
// empty) in either direction, excluding id itself. hops <= 0 is treated as 1.
func (r *Repository) GetRelated(id string, hops int, kinds []models.EdgeKind) ([]models.CodeElement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.indexed {
		return nil, ErrNotIndexed
	}
	if _, ok := r.elements[id]; !ok {
		return nil, NotFound(id)
	}
	if hops <= 0 {
		hops = 1
	}

	allowed := func(models.EdgeKind) bool { return true }
	if len(kinds) > 0 {
		set := make(map[models.EdgeKind]bool, len(kinds))
		for _, k := range kinds {
			set[k] = true
		}
		allowed = func(k models.EdgeKind) bool { return set[k] }
	}

	visited := map[string]bool{id: true}
	frontier := []string{id}
	var out []models.CodeElement

	for step := 0; step < hops && len(frontier) > 0; step++ {
		var next []string
		for _, cur := range frontier {
			for _, i := range r.edgesByFrom[cur] {
				e := r.edges[i]
				if !allowed(e.Kind) || visited[e.To] {
					continue
				}
				visited[e.To] = true
				next = append(next, e.To)
				if el := r.elements[e.To]; el != nil {
					out = append(out, *el)
				}
			}
			for _, i := range r.edgesByTo[cur] {
				e := r.edges[i]
				if !allowed(e.Kind) || visited[e.From] {
					continue
				}
				visited[e.From] = true
				next = append(next, e.From)
				if el := r.elements[e.From]; el != nil {
					out = append(out, *el)
				}
			}
		}
		frontier = next
	}
	return dedupeElements(out), nil
}

// Search runs a BM25 keyword query against the indexed elements and
// resolves the top results back into full CodeElements.
func (r *Repository) Search(query string, limit int) ([]models.CodeElement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.indexed {
		return nil, ErrNotIndexed
	}
	results := r.kw.Search(query, limit)
	out := make([]models.CodeElement, 0, len(results))
	for _, res := range results {
		if el := r.elements[res.ID]; el != nil {
			out = append(out, *el)
		}
	}
	return out, nil
}
