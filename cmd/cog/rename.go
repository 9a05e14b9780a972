package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var renameTo string

var renameCmd = &cobra.Command{
	Use:   "rename OLD",
	Short: "Rename a file and update the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runRename,
}

func init() {
	renameCmd.Flags().StringVar(&renameTo, "to", "", "New path (required)")
	renameCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(renameCmd)
}

func runRename(cmd *cobra.Command, args []string) error {
	w, err := openWorkspace()
	if err != nil {
		return err
	}
	defer w.Close()

	oldPath := args[0]
	if err := w.Maintainer.RenameWithRollback(oldPath, renameTo); err != nil {
		return err
	}
	if err := w.Store.Persist(); err != nil {
		return err
	}
	fmt.Printf("Renamed %s -> %s\n", oldPath, renameTo)
	return nil
}
