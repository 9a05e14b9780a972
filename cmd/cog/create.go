package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var createContent string

var createCmd = &cobra.Command{
	Use:   "create FILE",
	Short: "Create a new file and index it",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createContent, "content", "", "Initial file content")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	w, err := openWorkspace()
	if err != nil {
		return err
	}
	defer w.Close()

	file := args[0]
	if err := w.Maintainer.CreateWithRollback(file, []byte(createContent)); err != nil {
		return err
	}
	if err := w.Store.Persist(); err != nil {
		return err
	}
	fmt.Printf("Created %s\n", file)
	return nil
}
