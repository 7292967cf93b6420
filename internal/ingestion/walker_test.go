package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func collectPaths(t *testing.T, ch <-chan string) []string {
	t.Helper()
	var paths []string
	for p := range ch {
		paths = append(paths, p)
	}
	return paths
}

func TestWalkSourceFiles_SkipsDefaultDirsAndUnknownExtensions(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "main.go", "package main\n")
	writeTestFile(t, root, "README.md", "# hello\n")
	writeTestFile(t, root, "vendor/dep.go", "package dep\n")
	writeTestFile(t, root, "node_modules/pkg/index.js", "module.exports = {};\n")

	ch, err := WalkSourceFiles(context.Background(), WalkOptions{Root: root})
	require.NoError(t, err)

	paths := collectPaths(t, ch)
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(root, "main.go"), paths[0])
}

func TestWalkSourceFiles_RespectsGitignore(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, ".gitignore", "ignored/\n")
	writeTestFile(t, root, "main.go", "package main\n")
	writeTestFile(t, root, "ignored/skip.go", "package skip\n")

	ch, err := WalkSourceFiles(context.Background(), WalkOptions{Root: root, RespectGitignore: true})
	require.NoError(t, err)

	paths := collectPaths(t, ch)
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(root, "main.go"), paths[0])
}

func TestWalkSourceFiles_SkipsGeneratedAndFixtureFiles(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "app.min.js", "console.log(1);\n")
	writeTestFile(t, root, "__tests__/fixtures/sample.js", "console.log(1);\n")
	writeTestFile(t, root, "real.js", "console.log(1);\n")

	ch, err := WalkSourceFiles(context.Background(), WalkOptions{Root: root})
	require.NoError(t, err)

	paths := collectPaths(t, ch)
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(root, "real.js"), paths[0])
}

func TestWalkSourceFiles_LanguagesFilterRestrictsResults(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "main.go", "package main\n")
	writeTestFile(t, root, "script.py", "print(1)\n")

	ch, err := WalkSourceFiles(context.Background(), WalkOptions{Root: root, Languages: map[string]bool{"go": true}})
	require.NoError(t, err)

	paths := collectPaths(t, ch)
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(root, "main.go"), paths[0])
}

func TestCountFiles_TalliesByLanguage(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "a.go", "package a\n")
	writeTestFile(t, root, "b.go", "package b\n")
	writeTestFile(t, root, "c.py", "print(1)\n")

	stats, err := CountFiles(context.Background(), WalkOptions{Root: root})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.ByLang["go"])
	assert.Equal(t, 1, stats.ByLang["python"])
}
