package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/graphkernel/codegraph/internal/codegraph"
	"github.com/graphkernel/codegraph/internal/ingestion"
)

var statusCmd = &cobra.Command{
	Use:   "status [path]",
	Short: "Show cache and graph status for a repository",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	ix, err := codegraph.Open(cfg)
	if err != nil {
		return err
	}
	defer ix.Close()

	bold := color.New(color.Bold).SprintFunc()
	ok, err := ix.Restore(root)
	if err != nil {
		return fmt.Errorf("restoring cached snapshot: %w", err)
	}

	fmt.Printf("%s %s\n", bold("root:"), root)
	if !ok {
		color.Yellow("no cached graph for this root; run `codegraph build %s`", root)
	} else {
		stats, err := ix.Repo.Stats()
		if err != nil {
			return err
		}
		fmt.Printf("%s %d\n", bold("files:"), stats.Files)
		fmt.Printf("%s %d\n", bold("elements:"), stats.Elements)
		fmt.Printf("%s %d\n", bold("edges:"), stats.Edges)
		if n := len(stats.Errors); n > 0 {
			color.Yellow("%d file(s) failed to parse during the last build:", n)
			for _, e := range stats.Errors {
				fmt.Printf("  %s: %s\n", e.Path, e.Message)
			}
		}
		fmt.Printf("%s %d imports, %d calls, %d inheritance edges\n",
			bold("unresolved:"), stats.UnresolvedImports, stats.UnresolvedCalls, stats.UnresolvedInheritance)
	}

	fileStats, err := ingestion.CountFiles(cmd.Context(), ingestion.WalkOptions{
		Root:             root,
		RespectGitignore: cfg.Index.RespectVCSIgnore,
		ExtraIgnoreGlobs: cfg.Index.ExtraIgnoreGlobs,
		Languages:        cfg.Index.LanguageSet(),
	})
	if err == nil {
		fmt.Printf("\n%s\n", bold("on-disk source files:"))
		fmt.Printf("  total: %d\n", fileStats.Total)
		for lang, count := range fileStats.ByLang {
			fmt.Printf("  %s: %d\n", lang, count)
		}
	}

	return nil
}
