package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cog/internal/config"
	"cog/internal/grammar"
	"cog/internal/indexstore"
	"cog/internal/logging"
	"cog/internal/maintainer"
	"cog/internal/symbols"
)

const cogDirName = ".cog"

// findRoot walks up from cwd to the nearest directory containing .cog,
// per spec.md §6's environment-discovery rule. It returns the cwd itself
// if no .cog is found anywhere above it, so `cog index` can initialize one.
func findRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	dir := cwd
	for {
		if info, err := os.Stat(filepath.Join(dir, cogDirName)); err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd, nil
		}
		dir = parent
	}
}

// workspace bundles the components every cog subcommand needs, wired
// together the way internal/maintainer expects them.
type workspace struct {
	Root       string
	Registry   *grammar.Registry
	Extractor  *symbols.Extractor
	Store      *indexstore.Store
	Maintainer *maintainer.Maintainer
	Logger     *logging.Logger
	lock       *indexstore.Lock
}

// newLogger builds the ambient logger from .cog/config.json (falling back
// to built-in defaults, or the COG_LOG_LEVEL/COG_LOG_FORMAT env overrides),
// so every subcommand honors the same configured level and format. output
// overrides where logs are written; mcp/serve must pass os.Stderr since
// stdout is reserved for the JSON-RPC transport.
func newLogger(root string, output io.Writer) *logging.Logger {
	cfg, err := config.LoadConfig(root)
	if err != nil {
		cfg = config.DefaultConfig()
	}
	format := logging.Format(cfg.Logging.Format)
	if format != logging.JSONFormat && format != logging.HumanFormat {
		format = logging.HumanFormat
	}
	return logging.NewLogger(logging.Config{
		Format: format,
		Level:  logging.LogLevel(cfg.Logging.Level),
		Output: output,
	})
}

// openWorkspace discovers the workspace root, loading an existing index if
// .cog/index.scip is present or starting from an empty Store otherwise.
// The logger is built from .cog/config.json, so callers don't configure
// one themselves; it writes to stderr, keeping stdout free for JSON output.
func openWorkspace() (*workspace, error) {
	root, err := findRoot()
	if err != nil {
		return nil, err
	}
	return openWorkspaceAt(root, newLogger(root, os.Stderr))
}

// openWorkspaceAt builds a workspace at an already-resolved root with an
// already-constructed logger, for callers (like `cog mcp`) that need
// control over where logs go before the workspace exists. It takes an
// exclusive process-level lock on .cog/index.lock for the workspace's
// lifetime, so two cog processes can't touch the same index concurrently;
// the lock is released by Close.
func openWorkspaceAt(root string, logger *logging.Logger) (*workspace, error) {
	cogDir := filepath.Join(root, cogDirName)

	lock, err := indexstore.AcquireLock(cogDir)
	if err != nil {
		return nil, err
	}

	store, err := indexstore.Load(cogDir)
	if err != nil {
		lock.Release()
		return nil, err
	}

	reg := grammar.NewRegistry()
	extractor := symbols.NewExtractor(reg)
	m := maintainer.New(root, reg, extractor, store, logger)

	return &workspace{
		Root: root, Registry: reg, Extractor: extractor,
		Store: store, Maintainer: m, Logger: logger, lock: lock,
	}, nil
}

func (w *workspace) Close() {
	w.Extractor.Close()
	w.lock.Release()
}
