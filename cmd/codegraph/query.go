package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/graphkernel/codegraph/internal/codegraph"
	"github.com/graphkernel/codegraph/internal/graph"
	"github.com/graphkernel/codegraph/internal/models"
)

var queryRoot string
var relatedHops int
var relatedKinds string
var pathMaxDepth int

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the cached structural graph",
}

func init() {
	queryCmd.PersistentFlags().StringVar(&queryRoot, "root", ".", "indexed repository root")

	queryCmd.AddCommand(&cobra.Command{
		Use:   "callers <element-id>",
		Short: "List elements that call the given element",
		Args:  cobra.ExactArgs(1),
		RunE:  withRestoredRepo(func(repo *graph.Repository, args []string) ([]models.CodeElement, error) { return repo.FindCallers(args[0]) }),
	})
	queryCmd.AddCommand(&cobra.Command{
		Use:   "callees <element-id>",
		Short: "List elements the given element calls",
		Args:  cobra.ExactArgs(1),
		RunE:  withRestoredRepo(func(repo *graph.Repository, args []string) ([]models.CodeElement, error) { return repo.FindCallees(args[0]) }),
	})
	queryCmd.AddCommand(&cobra.Command{
		Use:   "deps <file-path>",
		Short: "List files the given file imports",
		Args:  cobra.ExactArgs(1),
		RunE:  withRestoredRepo(func(repo *graph.Repository, args []string) ([]models.CodeElement, error) { return repo.GetDependencies(args[0]) }),
	})
	queryCmd.AddCommand(&cobra.Command{
		Use:   "dependents <file-path>",
		Short: "List files that import the given file",
		Args:  cobra.ExactArgs(1),
		RunE:  withRestoredRepo(func(repo *graph.Repository, args []string) ([]models.CodeElement, error) { return repo.GetDependents(args[0]) }),
	})
	queryCmd.AddCommand(&cobra.Command{
		Use:   "subclasses <element-id>",
		Short: "List types that inherit from or implement the given element",
		Args:  cobra.ExactArgs(1),
		RunE:  withRestoredRepo(func(repo *graph.Repository, args []string) ([]models.CodeElement, error) { return repo.GetSubclasses(args[0]) }),
	})
	queryCmd.AddCommand(&cobra.Command{
		Use:   "superclasses <element-id>",
		Short: "List types the given element inherits from or implements",
		Args:  cobra.ExactArgs(1),
		RunE:  withRestoredRepo(func(repo *graph.Repository, args []string) ([]models.CodeElement, error) { return repo.GetSuperclasses(args[0]) }),
	})
	relatedCmd := &cobra.Command{
		Use:   "related <element-id>",
		Short: "List every element reachable from the given element within N hops",
		Args:  cobra.ExactArgs(1),
		RunE: withRestoredRepo(func(repo *graph.Repository, args []string) ([]models.CodeElement, error) {
			return repo.GetRelated(args[0], relatedHops, parseEdgeKinds(relatedKinds))
		}),
	}
	relatedCmd.Flags().IntVar(&relatedHops, "hops", 1, "maximum number of edge hops to traverse")
	relatedCmd.Flags().StringVar(&relatedKinds, "kinds", "", "comma-separated edge kinds to follow (default: all)")
	queryCmd.AddCommand(relatedCmd)
	queryCmd.AddCommand(&cobra.Command{
		Use:   "source <element-id>",
		Short: "Show one element's full record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := restoreRepo(cmd, queryRoot)
			if err != nil {
				return err
			}
			el, err := repo.GetSource(args[0])
			if err != nil {
				return err
			}
			printElements([]models.CodeElement{el})
			return nil
		},
	})
	pathCmd := &cobra.Command{
		Use:   "path <from-id> <to-id>",
		Short: "Find the shortest chain of edges between two elements",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := restoreRepo(cmd, queryRoot)
			if err != nil {
				return err
			}
			edges, err := repo.FindPath(args[0], args[1], pathMaxDepth)
			if err != nil {
				return err
			}
			if len(edges) == 0 {
				fmt.Println("no path found")
				return nil
			}
			for _, e := range edges {
				fmt.Printf("%s --%s--> %s\n", e.From, e.Kind, e.To)
			}
			return nil
		},
	}
	pathCmd.Flags().IntVar(&pathMaxDepth, "max-depth", 10, "maximum path length to search (edge count)")
	queryCmd.AddCommand(pathCmd)
	queryCmd.AddCommand(&cobra.Command{
		Use:   "files",
		Short: "List every indexed file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := restoreRepo(cmd, queryRoot)
			if err != nil {
				return err
			}
			files, err := repo.ListFiles()
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Println(f)
			}
			return nil
		},
	})
}

func withRestoredRepo(fn func(repo *graph.Repository, args []string) ([]models.CodeElement, error)) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		repo, err := restoreRepo(cmd, queryRoot)
		if err != nil {
			return err
		}
		els, err := fn(repo, args)
		if err != nil {
			return err
		}
		printElements(els)
		return nil
	}
}

func restoreRepo(cmd *cobra.Command, root string) (*graph.Repository, error) {
	ix, err := codegraph.Open(cfg)
	if err != nil {
		return nil, err
	}
	ok, err := ix.Restore(root)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no cached graph for %s; run `codegraph build %s` first", root, root)
	}
	return ix.Repo, nil
}

func parseEdgeKinds(csv string) []models.EdgeKind {
	if csv == "" {
		return nil
	}
	var kinds []models.EdgeKind
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kinds = append(kinds, models.EdgeKind(part))
	}
	return kinds
}

func printElements(els []models.CodeElement) {
	if len(els) == 0 {
		fmt.Println("(no results)")
		return
	}
	for _, el := range els {
		fmt.Printf("%s\t%s\t%s\t%s:%d\n", el.ID, el.Kind, el.QualifiedName, el.Path, el.StartLine)
	}
}
