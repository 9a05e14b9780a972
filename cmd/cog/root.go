package main

import (
	"cog/internal/version"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cog",
	Short: "cog - code intelligence over a single workspace",
	Long: `cog indexes a workspace into a SCIP-shaped symbol store and exposes
find/refs/symbols/structure queries and rollback-safe edit operations over
it, both as a CLI and as an MCP server for editor and agent integration.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("cog version {{.Version}}\n")
}
