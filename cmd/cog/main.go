package main

import (
	"fmt"
	"os"
	"path/filepath"

	"cog/internal/logging"
)

func main() {
	logger := logging.NewLogger(logging.Config{
		Format: logging.HumanFormat,
		Level:  logging.InfoLevel,
		Output: os.Stderr,
	})

	// Non-mcp/serve invocations get a chance to report one-line startup
	// diagnostics to stderr; mcp/serve must keep stdio clean for the
	// JSON-RPC transport.
	if !isMCPCommand() {
		checkWorkspaceHint(logger)
	}

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// isMCPCommand reports whether the invocation is 'mcp' or 'serve', which
// communicate over stdio and must never have anything else written to it.
func isMCPCommand() bool {
	if len(os.Args) < 2 {
		return false
	}
	cmd := os.Args[1]
	return cmd == "mcp" || cmd == "serve"
}

// checkWorkspaceHint is a best-effort, silent-on-success nudge: it logs a
// debug-level hint if no .cog directory is found above cwd, since most
// subcommands other than "index" need one to already exist. At the info
// level main's logger uses, the hint is not printed.
func checkWorkspaceHint(logger *logging.Logger) {
	root, err := findRoot()
	if err != nil {
		return
	}
	if _, statErr := os.Stat(filepath.Join(root, cogDirName)); statErr != nil {
		logger.Debug("no .cog directory found above the current directory; run \"cog index\" to create one", nil)
	}
}
