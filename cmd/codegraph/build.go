package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/graphkernel/codegraph/internal/codegraph"
	"github.com/graphkernel/codegraph/internal/logging"
)

var buildCmd = &cobra.Command{
	Use:   "build [path]",
	Short: "Parse a repository and build its structural graph",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	runID := uuid.NewString()
	logger := logging.With("run_id", runID, "root", root)
	logger.Info("build started")

	ix, err := codegraph.Open(cfg)
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}
	defer ix.Close()

	start := time.Now()
	if err := ix.Build(cmd.Context(), root); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	elapsed := time.Since(start)

	stats, err := ix.Repo.Stats()
	if err != nil {
		return err
	}

	bold := color.New(color.Bold).SprintFunc()
	fmt.Printf("%s %s\n", bold("root:"), root)
	fmt.Printf("%s %d\n", bold("files:"), stats.Files)
	fmt.Printf("%s %d\n", bold("elements:"), stats.Elements)
	fmt.Printf("%s %d\n", bold("edges:"), stats.Edges)
	for lang, count := range stats.ByLang {
		fmt.Printf("  %s: %d\n", lang, count)
	}
	fmt.Printf("%s %s\n", bold("elapsed:"), elapsed.Round(time.Millisecond))

	return nil
}
