package codegraph

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphkernel/codegraph/internal/config"
)

func writeSourceFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Cache.Directory = t.TempDir()
	return cfg
}

func TestIndex_BuildThenRestore(t *testing.T) {
	root := t.TempDir()
	writeSourceFile(t, root, "a.go", "package sample\n\nfunc Greet() string {\n\treturn \"hi\"\n}\n")

	cfg := testConfig(t)
	ix, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ix.Close() })

	require.NoError(t, ix.Build(context.Background(), root))

	stats, err := ix.Repo.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Files)

	restored, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = restored.Close() })

	ok, err := restored.Restore(root)
	require.NoError(t, err)
	require.True(t, ok)

	restoredStats, err := restored.Repo.Stats()
	require.NoError(t, err)
	assert.Equal(t, stats.Elements, restoredStats.Elements)
}

func TestIndex_Restore_NoPriorSnapshotReturnsFalse(t *testing.T) {
	cfg := testConfig(t)
	ix, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ix.Close() })

	ok, err := ix.Restore(t.TempDir())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIndex_UpdateFile_RefreshesPersistedSnapshot(t *testing.T) {
	root := t.TempDir()
	writeSourceFile(t, root, "a.go", "package sample\n\nfunc Greet() string {\n\treturn \"hi\"\n}\n")

	cfg := testConfig(t)
	ix, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ix.Close() })
	require.NoError(t, ix.Build(context.Background(), root))

	bPath := writeSourceFile(t, root, "b.go", "package sample\n\nfunc Main() {\n\tGreet()\n}\n")
	require.NoError(t, ix.UpdateFile(context.Background(), root, bPath))

	restored, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = restored.Close() })

	ok, err := restored.Restore(root)
	require.NoError(t, err)
	require.True(t, ok)

	stats, err := restored.Repo.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Files)
}

func TestIndex_Languages_ReflectsConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Index.Languages = []string{"go", "python"}

	ix, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ix.Close() })

	assert.Equal(t, []string{"go", "python"}, ix.Languages())
}
