package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cog/internal/mcp"
	"cog/internal/version"
)

var mcpCmd = &cobra.Command{
	Use:     "mcp",
	Aliases: []string{"serve"},
	Short:   "Start the MCP server over stdio",
	Long: `Starts the Model Context Protocol server, communicating over stdio
using Content-Length-framed JSON-RPC 2.0 (spec.md §6).

It exposes seven tools backed directly by the workspace index:
cog_code_index, cog_code_query, cog_code_edit, cog_code_create,
cog_code_delete, cog_code_rename, and cog_code_status.

This command is normally invoked by an MCP client, not run interactively.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	root, err := findRoot()
	if err != nil {
		return fmt.Errorf("resolving workspace root: %w", err)
	}
	// Stderr output (in the configured log format): stdout is reserved for
	// the Content-Length-framed JSON-RPC transport.
	logger := newLogger(root, os.Stderr)

	w, err := openWorkspaceAt(root, logger)
	if err != nil {
		return fmt.Errorf("opening workspace: %w", err)
	}
	defer w.Close()

	server := mcp.NewMCPServer(version.Version, w.Root, w.Store, w.Maintainer, logger)
	return server.Start()
}
