package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a BM25 keyword search over the cached graph",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&queryRoot, "root", ".", "indexed repository root")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum results to return")
}

func runSearch(cmd *cobra.Command, args []string) error {
	repo, err := restoreRepo(cmd, queryRoot)
	if err != nil {
		return err
	}
	els, err := repo.Search(strings.Join(args, " "), searchLimit)
	if err != nil {
		return err
	}
	if len(els) == 0 {
		fmt.Println("(no matches)")
		return nil
	}
	for _, el := range els {
		fmt.Printf("%s\t%s\t%s:%d\n", el.Kind, el.QualifiedName, el.Path, el.StartLine)
	}
	return nil
}
