// Package maintainer dispatches filesystem change events (from the watcher
// or from CLI mutation commands) through the Grammar Registry, Symbol
// Extractor, and Index Store, implementing spec.md §4.D's single-document
// state machine and its write-through-with-rollback recovery rule.
package maintainer

import (
	"context"
	"os"
	"path/filepath"
	"time"

	cogerrors "cog/internal/errors"
	"cog/internal/grammar"
	"cog/internal/indexstore"
	"cog/internal/logging"
	"cog/internal/symbols"
	"cog/internal/watcher"

	"github.com/gobwas/glob"
)

// Maintainer ties the watcher, registry, extractor, and store together.
type Maintainer struct {
	Root      string
	Registry  *grammar.Registry
	Extractor *symbols.Extractor
	Store     *indexstore.Store
	Logger    *logging.Logger
}

// New constructs a Maintainer rooted at root.
func New(root string, registry *grammar.Registry, extractor *symbols.Extractor, store *indexstore.Store, logger *logging.Logger) *Maintainer {
	return &Maintainer{Root: root, Registry: registry, Extractor: extractor, Store: store, Logger: logger}
}

// Run drains events from w until its channel closes, applying each one to
// the store. Per spec.md §5, watcher events are hints, not ground truth —
// every event re-reads the file from disk rather than trusting event
// payload contents.
func (m *Maintainer) Run(w *watcher.Watcher) {
	for ev := range w.Events() {
		if err := m.applyWatcherEvent(ev); err != nil && m.Logger != nil {
			m.Logger.Warn("failed to apply watcher event", map[string]interface{}{
				"path":  ev.Path,
				"error": err.Error(),
			})
		}
	}
}

func (m *Maintainer) applyWatcherEvent(ev watcher.Event) error {
	switch ev.Type {
	case watcher.EventDelete:
		m.Store.Remove(ev.Path)
		return nil
	default:
		return m.IndexFile(ev.Path)
	}
}

// IndexFile implements the Absent/Indexed→Indexed transitions: extract
// relPath and Replace it in the store. A read or extraction failure leaves
// the prior document in place, per spec.md §4.D failure semantics.
func (m *Maintainer) IndexFile(relPath string) error {
	abs := filepath.Join(m.Root, relPath)

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			m.Store.Remove(relPath)
			return nil
		}
		return cogerrors.Wrap(cogerrors.Filesystem, "statting "+relPath, err)
	}

	cfg, ok := m.Registry.Resolve(filepath.Ext(relPath))
	if !ok {
		return nil // unsupported extension: no-op per the state table
	}

	source, err := os.ReadFile(abs)
	if err != nil {
		return cogerrors.Wrap(cogerrors.Filesystem, "reading "+relPath, err)
	}

	if cfg.Kind != grammar.KindTreeSitter {
		return cogerrors.New(cogerrors.Invariant, "external grammar indexing is not yet wired into the maintainer")
	}

	doc, err := m.Extractor.Extract(relPath, source, cfg)
	if err != nil {
		return err
	}

	m.Store.Replace(relPath, doc, info.ModTime())
	return nil
}

// IndexGlob implements `cog index [pattern]` (spec.md §6): pattern defaults
// to "**/*" and is compiled with '/' as the path separator so a bare `*`
// stays within one path segment while `**` crosses directory boundaries,
// matching spec.md's glob rules exactly. Walking is cancellable between
// files via ctx, since extraction itself is CPU-bounded and not
// cancellable mid-parse.
func (m *Maintainer) IndexGlob(ctx context.Context, pattern string) (int, error) {
	if pattern == "" {
		pattern = "**/*"
	}
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return 0, cogerrors.Wrap(cogerrors.UserInput, "compiling glob pattern "+pattern, err)
	}

	count := 0
	err = filepath.Walk(m.Root, func(abs string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rel, relErr := filepath.Rel(m.Root, abs)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		if info.IsDir() {
			name := info.Name()
			if (len(name) > 1 && name[0] == '.') || watcher.IsExcludedDir(name) {
				return filepath.SkipDir
			}
			return nil
		}
		rel = filepath.ToSlash(rel)
		// The "/"-prefixed retry lets a leading "**/" also match zero
		// directories, so root-level files are included.
		if !g.Match(rel) && !g.Match("/"+rel) {
			return nil
		}
		if err := m.IndexFile(rel); err != nil {
			if m.Logger != nil {
				m.Logger.Warn("failed to index file during glob index", map[string]interface{}{
					"path":  rel,
					"error": err.Error(),
				})
			}
			return nil
		}
		count++
		return nil
	})
	if err != nil {
		return count, err
	}
	return count, m.Store.Persist()
}

// RemoveFile implements the Indexed→Absent transition.
func (m *Maintainer) RemoveFile(relPath string) {
	m.Store.Remove(relPath)
}

// RenameFile implements the Indexed→Absent (old) / Absent→Indexed (new)
// pair atomically from the store's perspective.
func (m *Maintainer) RenameFile(oldPath, newPath string) error {
	abs := filepath.Join(m.Root, newPath)
	info, err := os.Stat(abs)
	if err != nil {
		m.Store.Remove(oldPath)
		return cogerrors.Wrap(cogerrors.Filesystem, "statting renamed file "+newPath, err)
	}

	cfg, ok := m.Registry.Resolve(filepath.Ext(newPath))
	if !ok {
		m.Store.Remove(oldPath)
		return nil
	}

	source, err := os.ReadFile(abs)
	if err != nil {
		return cogerrors.Wrap(cogerrors.Filesystem, "reading renamed file "+newPath, err)
	}

	doc, err := m.Extractor.Extract(newPath, source, cfg)
	if err != nil {
		return err
	}

	m.Store.Rename(oldPath, newPath, doc, info.ModTime())
	return nil
}

// EditWithRollback implements spec.md §4.D's write-through-with-rollback
// recovery rule for the CLI `edit` command: write newContent to relPath,
// re-extract, and persist; on any failure, restore the original bytes and
// re-extract the prior state so the index never reflects a half-applied
// mutation.
func (m *Maintainer) EditWithRollback(relPath string, newContent []byte) error {
	abs := filepath.Join(m.Root, relPath)

	oldContent, readErr := os.ReadFile(abs)
	hadFile := readErr == nil

	if err := os.WriteFile(abs, newContent, 0o644); err != nil {
		return cogerrors.Wrap(cogerrors.Filesystem, "writing "+relPath, err)
	}

	if err := m.IndexFile(relPath); err != nil {
		m.rollbackWrite(relPath, oldContent, hadFile)
		return err
	}
	if err := m.Store.Persist(); err != nil {
		m.rollbackWrite(relPath, oldContent, hadFile)
		return err
	}
	return nil
}

// CreateWithRollback implements the Absent→Indexed transition for the CLI
// `create` command, with the same rollback guarantee as EditWithRollback.
func (m *Maintainer) CreateWithRollback(relPath string, content []byte) error {
	abs := filepath.Join(m.Root, relPath)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return cogerrors.Wrap(cogerrors.Filesystem, "creating parent directory for "+relPath, err)
	}
	if err := os.WriteFile(abs, content, 0o644); err != nil {
		return cogerrors.Wrap(cogerrors.Filesystem, "creating "+relPath, err)
	}

	if err := m.IndexFile(relPath); err != nil {
		_ = os.Remove(abs)
		m.Store.Remove(relPath)
		return err
	}
	if err := m.Store.Persist(); err != nil {
		_ = os.Remove(abs)
		m.Store.Remove(relPath)
		return err
	}
	return nil
}

// DeleteWithRollback implements the Indexed→Absent transition for the CLI
// `delete` command: capture the old bytes, remove the file, drop its
// document from the store, and persist; on a persist failure, restore the
// file and its prior document.
func (m *Maintainer) DeleteWithRollback(relPath string) error {
	abs := filepath.Join(m.Root, relPath)

	oldContent, err := os.ReadFile(abs)
	if err != nil {
		return cogerrors.Wrap(cogerrors.Filesystem, "reading "+relPath+" before delete", err)
	}
	oldDoc, hadDoc := m.Store.Document(relPath)

	if err := os.Remove(abs); err != nil {
		return cogerrors.Wrap(cogerrors.Filesystem, "deleting "+relPath, err)
	}
	m.Store.Remove(relPath)

	if err := m.Store.Persist(); err != nil {
		_ = os.WriteFile(abs, oldContent, 0o644)
		if hadDoc {
			m.Store.Replace(relPath, &oldDoc, time.Now())
		}
		return err
	}
	return nil
}

// RenameWithRollback implements the rename transition pair for the CLI
// `rename` command.
func (m *Maintainer) RenameWithRollback(oldPath, newPath string) error {
	oldAbs := filepath.Join(m.Root, oldPath)
	newAbs := filepath.Join(m.Root, newPath)

	if err := os.Rename(oldAbs, newAbs); err != nil {
		return cogerrors.Wrap(cogerrors.Filesystem, "renaming "+oldPath+" to "+newPath, err)
	}

	if err := m.RenameFile(oldPath, newPath); err != nil {
		_ = os.Rename(newAbs, oldAbs)
		m.Store.Remove(newPath)
		_ = m.IndexFile(oldPath)
		return err
	}
	if err := m.Store.Persist(); err != nil {
		_ = os.Rename(newAbs, oldAbs)
		m.Store.Remove(newPath)
		_ = m.IndexFile(oldPath)
		return err
	}
	return nil
}

func (m *Maintainer) rollbackWrite(relPath string, oldContent []byte, hadFile bool) {
	abs := filepath.Join(m.Root, relPath)
	if hadFile {
		_ = os.WriteFile(abs, oldContent, 0o644)
		if err := m.IndexFile(relPath); err != nil && m.Logger != nil {
			m.Logger.Warn("re-extraction after rollback failed", map[string]interface{}{
				"path":  relPath,
				"error": err.Error(),
			})
		}
	} else {
		_ = os.Remove(abs)
		m.Store.Remove(relPath)
	}
}
