package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	cogerrors "cog/internal/errors"
)

var (
	editOld string
	editNew string
)

var editCmd = &cobra.Command{
	Use:   "edit FILE",
	Short: "Replace text in a file and re-index it",
	Long: `Replaces the first occurrence of --old with --new in FILE, then
re-extracts its symbols and persists the index. If re-indexing fails, the
file write is rolled back to its prior content (spec §4.D).`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().StringVar(&editOld, "old", "", "Text to replace (required)")
	editCmd.Flags().StringVar(&editNew, "new", "", "Replacement text")
	editCmd.MarkFlagRequired("old")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	w, err := openWorkspace()
	if err != nil {
		return err
	}
	defer w.Close()

	file := args[0]
	abs := filepath.Join(w.Root, file)
	content, err := os.ReadFile(abs)
	if err != nil {
		return cogerrors.Wrap(cogerrors.Filesystem, "reading "+file, err)
	}
	if !strings.Contains(string(content), editOld) {
		return cogerrors.New(cogerrors.UserInput, "old text not found in "+file)
	}
	updated := strings.Replace(string(content), editOld, editNew, 1)

	if err := w.Maintainer.EditWithRollback(file, []byte(updated)); err != nil {
		return err
	}
	if err := w.Store.Persist(); err != nil {
		return err
	}
	fmt.Printf("Edited %s\n", file)
	return nil
}
