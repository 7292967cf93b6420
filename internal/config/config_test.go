package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_SetsSaneBaseline(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.Index.IgnoreHidden)
	assert.True(t, cfg.Index.RespectVCSIgnore)
	assert.Equal(t, 1.2, cfg.Search.K1)
	assert.Equal(t, 0.75, cfg.Search.B)
	assert.NotEmpty(t, cfg.Cache.Directory)
}

func TestConfig_SaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := Default()
	cfg.Index.Workers = 4
	cfg.Search.K1 = 2.0
	cfg.Logging.Debug = true

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.Index.Workers)
	assert.Equal(t, 2.0, loaded.Search.K1)
	assert.True(t, loaded.Logging.Debug)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 1.2, cfg.Search.K1)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("CODEGRAPH_LANGUAGES", "go,python")
	t.Setenv("CODEGRAPH_WORKERS", "8")
	t.Setenv("CODEGRAPH_DEBUG", "true")

	cfg := Default()
	applyEnvOverrides(cfg)

	assert.Equal(t, []string{"go", "python"}, cfg.Index.Languages)
	assert.Equal(t, 8, cfg.Index.Workers)
	assert.True(t, cfg.Logging.Debug)
}

func TestApplyEnvOverrides_InvalidWorkersIsIgnored(t *testing.T) {
	t.Setenv("CODEGRAPH_WORKERS", "not-a-number")

	cfg := Default()
	cfg.Index.Workers = 3
	applyEnvOverrides(cfg)

	assert.Equal(t, 3, cfg.Index.Workers)
}

func TestExpandPath(t *testing.T) {
	assert.Equal(t, "/etc/codegraph", expandPath("/etc/codegraph"))
	assert.Equal(t, "", expandPath(""))

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "codegraph"), expandPath("~/codegraph"))
}

func TestIndexConfig_LanguageSet(t *testing.T) {
	var empty IndexConfig
	assert.Nil(t, empty.LanguageSet())

	withLangs := IndexConfig{Languages: []string{"go", " python "}}
	set := withLangs.LanguageSet()
	assert.True(t, set["go"])
	assert.True(t, set["python"])
	assert.Len(t, set, 2)
}
