package graph

import (
	"bytes"
	"encoding/gob"
	"io"

	"github.com/graphkernel/codegraph/internal/globalindex"
	"github.com/graphkernel/codegraph/internal/models"
)

// snapshotVersion is bumped whenever the envelope's shape changes in a way
// that breaks decoding older blobs. Load rejects any version it doesn't
// recognize rather than guessing at a compatible layout.
const snapshotVersion = 1

// snapshotEnvelope is the opaque binary blob Snapshot/Load exchange.
// It carries enough of Repository's state to reconstruct an equivalent
// graph: elements, resolved edges, the global index's file registry, and
// the raw call/inheritance facts still pending re-resolution (a call site
// or impl/extends clause is never fully "done" resolving, since a later
// change elsewhere in the tree can change its target — see
// resolveAllPending). The keyword index is rebuilt from the elements on
// Load rather than serialized, since it is fully derived from them; pending
// imports are likewise reconstructed from Files' Imports rather than
// duplicated into their own field.
type snapshotEnvelope struct {
	Version        int
	Root           string
	Elements       []models.CodeElement
	Edges          []models.GraphEdge
	Files          []globalindex.FileInfo
	PendingCalls   map[string][]models.CallSite
	PendingInherit map[string][]models.InheritanceEdge
	GoModulePrefix string

	ParseErrors           []StatError
	UnresolvedImports     int
	UnresolvedCalls       int
	UnresolvedInheritance int
}

// Snapshot encodes the current graph into an opaque, versioned blob. The
// result carries no meaning outside Load and should not be inspected or
// hand-edited by callers.
func (r *Repository) Snapshot(w io.Writer) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.indexed {
		return ErrNotIndexed
	}

	env := snapshotEnvelope{
		Version:               snapshotVersion,
		Root:                  r.root,
		Edges:                 r.edges,
		PendingCalls:          r.pending,
		PendingInherit:        r.pendingInherit,
		GoModulePrefix:        r.global.GoModulePrefix(),
		ParseErrors:           r.parseErrors,
		UnresolvedImports:     r.unresolvedImports,
		UnresolvedCalls:       r.unresolvedCalls,
		UnresolvedInheritance: r.unresolvedInheritance,
	}
	for _, el := range r.elements {
		env.Elements = append(env.Elements, *el)
	}
	for path := range r.byPath {
		if info, ok := r.global.File(path); ok {
			env.Files = append(env.Files, *info)
		}
	}

	return gob.NewEncoder(w).Encode(env)
}

// Load decodes a blob written by Snapshot and replaces the repository's
// contents with it. It returns ErrSnapshotVersionMismatch if the blob was
// written by an incompatible version.
func (r *Repository) Load(data []byte) error {
	var env snapshotEnvelope
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
		return IoError("snapshot", err.Error())
	}
	if env.Version != snapshotVersion {
		return ErrSnapshotVersionMismatch
	}

	fresh := New()
	fresh.root = env.Root
	fresh.edges = env.Edges
	if env.GoModulePrefix != "" {
		fresh.global.SetGoModulePrefix(env.GoModulePrefix)
	}
	if env.PendingCalls != nil {
		fresh.pending = env.PendingCalls
	}
	if env.PendingInherit != nil {
		fresh.pendingInherit = env.PendingInherit
	}
	fresh.parseErrors = env.ParseErrors
	fresh.unresolvedImports = env.UnresolvedImports
	fresh.unresolvedCalls = env.UnresolvedCalls
	fresh.unresolvedInheritance = env.UnresolvedInheritance

	byPath := map[string][]string{}
	for _, el := range env.Elements {
		el := el
		fresh.elements[el.ID] = &el
		byPath[el.Path] = append(byPath[el.Path], el.ID)
		fresh.byName[el.Name] = append(fresh.byName[el.Name], el.ID)
		if el.Kind != models.KindFile {
			fresh.kw.Index(el)
		}
	}
	fresh.byPath = byPath

	for _, info := range env.Files {
		fresh.global.AddFile(models.ParseResult{
			Path:     info.Path,
			Language: info.Language,
			Elements: info.Elements,
			Imports:  info.Imports,
		})
		if len(info.Imports) > 0 {
			fresh.pendingImports[info.Path] = info.Imports
		}
	}

	fresh.rebuildEdgeIndexes()
	fresh.indexed = true

	r.mu.Lock()
	*r = *fresh
	r.mu.Unlock()
	return nil
}
