package ingestion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphkernel/codegraph/internal/models"
)

func TestParseRepository_ParsesEveryDiscoveredFile(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "a.go", "package sample\n\nfunc Greet() string {\n\treturn \"hi\"\n}\n")
	writeTestFile(t, root, "b.go", "package sample\n\nfunc Main() {\n\tGreet()\n}\n")

	results, err := ParseRepository(context.Background(), WalkOptions{Root: root}, ProcessorConfig{Workers: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, r := range results {
		assert.NoError(t, r.Error)
		assert.Equal(t, models.LangGo, r.Language)
	}
}

func TestParseRepository_SingleWorkerParsesFileWithoutError(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "good.go", "package sample\n\nfunc Greet() string {\n\treturn \"hi\"\n}\n")

	results, err := ParseRepository(context.Background(), WalkOptions{Root: root}, ProcessorConfig{Workers: 1})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Error)
}

func TestDefaultProcessorConfig_UsesPositiveWorkerCount(t *testing.T) {
	cfg := DefaultProcessorConfig()
	assert.Greater(t, cfg.Workers, 0)
}
