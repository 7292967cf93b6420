package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/graphkernel/codegraph/internal/codegraph"
	"github.com/graphkernel/codegraph/internal/langdetect"
	"github.com/graphkernel/codegraph/internal/logging"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Build the graph, then keep it current as files change",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	ix, err := codegraph.Open(cfg)
	if err != nil {
		return err
	}
	defer ix.Close()

	ctx := cmd.Context()

	if ok, _ := ix.Restore(root); !ok {
		fmt.Printf("no cached graph for %s, building first\n", root)
		if err := ix.Build(ctx, root); err != nil {
			return err
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := addWatchDirs(watcher, root); err != nil {
		return err
	}

	fmt.Printf("watching %s for changes (ctrl-c to stop)\n", root)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			handleWatchEvent(ctx, ix, root, event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("watch error", "error", err)
		}
	}
}

func handleWatchEvent(ctx context.Context, ix *codegraph.Index, root string, event fsnotify.Event) {
	if _, ok := langdetect.Detect(event.Name, cfg.Index.LanguageSet()); !ok {
		return
	}

	switch {
	case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
		if err := ix.UpdateFile(ctx, root, event.Name); err != nil {
			logging.Warn("failed to update file in graph", "path", event.Name, "error", err)
			return
		}
		logging.Info("updated", "path", event.Name)
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		if err := ix.RemoveFile(ctx, root, event.Name); err != nil {
			logging.Warn("failed to remove file from graph", "path", event.Name, "error", err)
			return
		}
		logging.Info("removed", "path", event.Name)
	}
}

// addWatchDirs registers every directory under root with watcher, since
// fsnotify watches directories, not whole trees, and a new subdirectory
// needs its own watch before files inside it can be seen.
func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if info.Name() == ".git" || info.Name() == "node_modules" {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}
