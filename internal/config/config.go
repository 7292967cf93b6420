// Package config loads codegraph's build/runtime options from a YAML file,
// environment variables, and .env files, layered with viper and godotenv.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all settings cmd/codegraph needs.
type Config struct {
	Index   IndexConfig   `yaml:"index"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
	Search  SearchConfig  `yaml:"search"`
}

// IndexConfig controls the walker/parser pipeline's build options.
type IndexConfig struct {
	IgnoreHidden     bool     `yaml:"ignore_hidden"`
	RespectVCSIgnore bool     `yaml:"respect_vcs_ignore"`
	ExtraIgnoreGlobs []string `yaml:"extra_ignore_globs"`
	Languages        []string `yaml:"languages"` // empty = all languages except csharp enabled
	Workers          int      `yaml:"workers"`   // 0 = runtime.NumCPU()
}

// CacheConfig points at the local snapshot cache (internal/cachestore).
type CacheConfig struct {
	Directory string `yaml:"directory"`
}

// LoggingConfig mirrors internal/logging.Config's user-facing knobs.
type LoggingConfig struct {
	Debug      bool   `yaml:"debug"`
	JSONFormat bool   `yaml:"json_format"`
	OutputFile string `yaml:"output_file"`
}

// SearchConfig tunes the BM25 keyword index.
type SearchConfig struct {
	K1 float64 `yaml:"k1"`
	B  float64 `yaml:"b"`
}

// Default returns the out-of-the-box configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Index: IndexConfig{
			IgnoreHidden:     true,
			RespectVCSIgnore: true,
		},
		Cache: CacheConfig{
			Directory: filepath.Join(homeDir, ".codegraph", "cache"),
		},
		Logging: LoggingConfig{
			Debug:      false,
			JSONFormat: true,
		},
		Search: SearchConfig{
			K1: 1.2,
			B:  0.75,
		},
	}
}

// Load reads configuration from path (searching standard locations when
// path is empty), applying .env files and CODEGRAPH_-prefixed environment
// variables on top of the defaults.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("index", cfg.Index)
	v.SetDefault("cache", cfg.Cache)
	v.SetDefault("logging", cfg.Logging)
	v.SetDefault("search", cfg.Search)

	v.SetEnvPrefix("CODEGRAPH")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".codegraph")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".codegraph"))
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing explicit path surfaces as an fs error rather than
		// viper.ConfigFileNotFoundError; both fall back to the defaults.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func loadEnvFiles() {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}
	homeDir, _ := os.UserHomeDir()
	homeEnvFile := filepath.Join(homeDir, ".codegraph", ".env")
	if _, err := os.Stat(homeEnvFile); err == nil {
		_ = godotenv.Load(homeEnvFile)
	}
}

func applyEnvOverrides(cfg *Config) {
	if dir := os.Getenv("CODEGRAPH_CACHE_DIRECTORY"); dir != "" {
		cfg.Cache.Directory = expandPath(dir)
	}
	if langs := os.Getenv("CODEGRAPH_LANGUAGES"); langs != "" {
		cfg.Index.Languages = strings.Split(langs, ",")
	}
	if workers := os.Getenv("CODEGRAPH_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil {
			cfg.Index.Workers = n
		}
	}
	if debug := os.Getenv("CODEGRAPH_DEBUG"); debug != "" {
		cfg.Logging.Debug = debug == "true"
	}
}

func expandPath(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, path[1:])
}

// Save writes cfg to path as YAML, creating parent directories as needed.
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("index", c.Index)
	v.Set("cache", c.Cache)
	v.Set("logging", c.Logging)
	v.Set("search", c.Search)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// LanguageSet converts Index.Languages into the map[string]bool form
// internal/langdetect expects, returning nil (meaning "all enabled except
// csharp") when the list is empty.
func (c *IndexConfig) LanguageSet() map[string]bool {
	if len(c.Languages) == 0 {
		return nil
	}
	set := make(map[string]bool, len(c.Languages))
	for _, l := range c.Languages {
		set[strings.TrimSpace(l)] = true
	}
	return set
}
