package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/graphkernel/codegraph/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or initialize codegraph configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active configuration",
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := getConfigPath()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("configuration file already exists at %s", path)
	}

	def := config.Default()
	if err := def.Save(path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Printf("created configuration file: %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	fmt.Printf("index.ignore_hidden = %v\n", cfg.Index.IgnoreHidden)
	fmt.Printf("index.respect_vcs_ignore = %v\n", cfg.Index.RespectVCSIgnore)
	fmt.Printf("index.languages = %v\n", cfg.Index.Languages)
	fmt.Printf("index.workers = %d\n", cfg.Index.Workers)
	fmt.Printf("cache.directory = %s\n", cfg.Cache.Directory)
	fmt.Printf("logging.debug = %v\n", cfg.Logging.Debug)
	fmt.Printf("logging.json_format = %v\n", cfg.Logging.JSONFormat)
	fmt.Printf("search.k1 = %.2f\n", cfg.Search.K1)
	fmt.Printf("search.b = %.2f\n", cfg.Search.B)
	return nil
}

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".codegraph", "config.yaml")
}
