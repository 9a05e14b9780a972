package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"cog/internal/indexstore"
)

var indexCmd = &cobra.Command{
	Use:   "index [pattern]",
	Short: "Build or refresh the workspace index",
	Long: `Walks the workspace, extracting symbols from every file matching pattern
and persisting the result to .cog/index.scip.

pattern follows the glob rules from spec.md §6: a bare "*" stays within one
path segment, "**" crosses directory boundaries, and "?" matches a single
non-slash character. It defaults to "**/*" (everything the Grammar Registry
recognizes).

If no .cog directory exists above the current directory, one is created
here.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	root, err := findRoot()
	if err != nil {
		return err
	}
	cogDir := filepath.Join(root, cogDirName)
	if err := os.MkdirAll(cogDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", cogDirName, err)
	}

	w, err := openWorkspace()
	if err != nil {
		return err
	}
	defer w.Close()

	pattern := "**/*"
	if len(args) == 1 {
		pattern = args[0]
	}

	start := time.Now()
	count, err := w.Maintainer.IndexGlob(context.Background(), pattern)
	if err != nil {
		return err
	}
	if err := w.Store.Persist(); err != nil {
		return err
	}

	meta := &indexstore.IndexMeta{
		CreatedAt:   time.Now(),
		FileCount:   count,
		Duration:    time.Since(start).String(),
		Indexer:     "cog",
		IndexerArgs: []string{pattern},
		ContentHash: w.Store.ContentHash(),
	}
	if err := indexstore.Save(cogDir, meta); err != nil {
		return err
	}

	fmt.Printf("Indexed %d files in %s\n", count, meta.Duration)
	return nil
}
