package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete FILE",
	Short: "Delete a file and remove it from the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	w, err := openWorkspace()
	if err != nil {
		return err
	}
	defer w.Close()

	file := args[0]
	if err := w.Maintainer.DeleteWithRollback(file); err != nil {
		return err
	}
	if err := w.Store.Persist(); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", file)
	return nil
}
