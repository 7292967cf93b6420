package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/graphkernel/codegraph/internal/config"
	"github.com/graphkernel/codegraph/internal/logging"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	cfgFile string
	verbose bool
	cfg     *config.Config
)

func main() {
	color.NoColor = !term.IsTerminal(int(os.Stdout.Fd()))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "codegraph",
	Short: "Build and query an in-memory structural graph of a codebase",
	Long: `codegraph parses a repository with tree-sitter, resolves calls,
imports, and inheritance across files, and exposes the result as a
queryable graph plus a BM25 keyword index.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			cfg = config.Default()
		}

		logCfg := logging.DefaultConfig(verbose)
		if cfg.Logging.OutputFile != "" {
			logCfg.OutputFile = cfg.Logging.OutputFile
		}
		logCfg.JSONFormat = cfg.Logging.JSONFormat
		if verbose || cfg.Logging.Debug {
			logCfg.Level = logging.DEBUG
		}
		return logging.Initialize(logCfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .codegraph/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.SetVersionTemplate(`codegraph {{.Version}}
Build time: ` + BuildTime + `
Git commit: ` + GitCommit + `
`)

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
}
