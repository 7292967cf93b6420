// Package codegraph wires internal/graph, internal/config, and
// internal/cachestore together into the index-control surface cmd/codegraph
// drives: build a repository's graph, keep it current as files change, and
// persist/restore it as an opaque snapshot, so the CLI commands never touch
// internal/graph directly but go through this small coordinating layer.
package codegraph

import (
	"bytes"
	"context"
	"fmt"

	"github.com/graphkernel/codegraph/internal/cachestore"
	"github.com/graphkernel/codegraph/internal/config"
	"github.com/graphkernel/codegraph/internal/graph"
	"github.com/graphkernel/codegraph/internal/logging"
)

// Index is the handle CLI commands and embedders hold: a repository graph
// plus the cache store its snapshots round-trip through.
type Index struct {
	Repo  *graph.Repository
	cache *cachestore.Store
	cfg   *config.Config
}

// Open loads cfg's cache store and returns an Index with an empty, unbuilt
// graph. Call Build or Restore next.
func Open(cfg *config.Config) (*Index, error) {
	store, err := cachestore.Open(cfg.Cache.Directory)
	if err != nil {
		return nil, fmt.Errorf("opening cache store: %w", err)
	}
	return &Index{Repo: graph.New(), cache: store, cfg: cfg}, nil
}

// Close releases the underlying cache store.
func (ix *Index) Close() error {
	if ix.cache == nil {
		return nil
	}
	return ix.cache.Close()
}

// Build performs a full walk-and-parse of root and stores the resulting
// graph under root's cache key, so a later Restore(root) can load it
// instead of walking and re-parsing the tree. Build itself always
// re-parses every file; it does not check which files changed.
func (ix *Index) Build(ctx context.Context, root string) error {
	opts := graph.BuildOptions{
		Root:             root,
		RespectGitignore: ix.cfg.Index.RespectVCSIgnore,
		ExtraIgnoreGlobs: ix.cfg.Index.ExtraIgnoreGlobs,
		Languages:        ix.cfg.Index.LanguageSet(),
		Workers:          ix.cfg.Index.Workers,
		SearchK1:         ix.cfg.Search.K1,
		SearchB:          ix.cfg.Search.B,
	}
	if err := ix.Repo.Build(ctx, opts); err != nil {
		return err
	}

	stats, err := ix.Repo.Stats()
	if err != nil {
		return err
	}
	logging.Info("build complete", "root", root, "files", stats.Files, "elements", stats.Elements, "edges", stats.Edges)

	return ix.persist(root)
}

// UpdateFile re-parses a single file and merges it into the graph, then
// refreshes the on-disk snapshot for root.
func (ix *Index) UpdateFile(ctx context.Context, root, path string) error {
	if err := ix.Repo.UpdateFile(ctx, path); err != nil {
		return err
	}
	return ix.persist(root)
}

// RemoveFile drops path from the graph and refreshes the on-disk snapshot.
func (ix *Index) RemoveFile(ctx context.Context, root, path string) error {
	if err := ix.Repo.RemoveFile(ctx, path); err != nil {
		return err
	}
	return ix.persist(root)
}

// Restore loads root's most recent snapshot from the cache store, if any,
// returning false when nothing has been cached yet for root.
func (ix *Index) Restore(root string) (bool, error) {
	data, ok, err := ix.cache.Load(root)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := ix.Repo.Load(data); err != nil {
		return false, err
	}
	return true, nil
}

func (ix *Index) persist(root string) error {
	var buf bytes.Buffer
	if err := ix.Repo.Snapshot(&buf); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return ix.cache.Save(root, buf.Bytes())
}

// Languages returns the configured language allow-list, for status reporting.
func (ix *Index) Languages() []string { return ix.cfg.Index.Languages }
