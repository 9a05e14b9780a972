// Package watcher delivers a stream of relative paths whose files changed,
// filtered to extensions the Grammar Registry recognizes and excluding
// uninteresting subtrees (spec §4.E). It watches the real filesystem via
// fsnotify rather than polling git state.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"cog/internal/grammar"
	"cog/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// EventType classifies a filesystem change.
type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
	EventRename
)

func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	case EventRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Event is one filesystem change, already relativized to the workspace root.
type Event struct {
	Type      EventType
	Path      string
	Timestamp time.Time
}

// excludedDirNames are path components that always exclude a subtree,
// regardless of extension (spec §4.E).
var excludedDirNames = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"target":       true,
	"zig-out":      true,
	"zig-cache":    true,
	".zig-cache":   true,
	"build":        true,
	"dist":         true,
	"__pycache__":  true,
}

// IsExcludedDir reports whether a directory name is always excluded from
// watching and glob indexing, regardless of a leading-dot hidden check
// (spec §4.E).
func IsExcludedDir(name string) bool {
	return excludedDirNames[name]
}

// Config configures a Watcher.
type Config struct {
	// DebounceDuration coalesces bursts of events for the same path before
	// they're batched for delivery. 500ms per spec §4.E.
	DebounceDuration time.Duration
	// BatchSize forces an early flush if this many events accumulate.
	BatchSize int
}

// DefaultConfig returns spec-mandated defaults.
func DefaultConfig() Config {
	return Config{DebounceDuration: 500 * time.Millisecond, BatchSize: 200}
}

// Watcher watches root recursively and emits Events on its channel, already
// filtered per spec §4.E. The channel is single-producer; callers must
// drain it promptly and may see duplicate events for the same path within
// a burst.
type Watcher struct {
	root     string
	registry *grammar.Registry
	config   Config
	logger   *logging.Logger

	fsWatcher *fsnotify.Watcher
	events    chan Event

	debouncer *BatchDebouncer

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// New constructs a Watcher for root. registry decides which extensions are
// interesting; events for any other extension are dropped before delivery.
func New(root string, registry *grammar.Registry, config Config, logger *logging.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		root:      root,
		registry:  registry,
		config:    config,
		logger:    logger,
		fsWatcher: fsw,
		events:    make(chan Event, config.BatchSize*2),
		done:      make(chan struct{}),
	}
	w.debouncer = NewBatchDebouncer(config.DebounceDuration, w.emitBatch)
	return w, nil
}

// Events returns the channel Event values are delivered on. Closed when the
// Watcher stops.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start installs a recursive watch on root and begins delivering events.
// Directory creation triggers recursive watch installation for the new
// subtree, matching the inotify/FSEvents backend behavior spec §4.E
// describes in platform-specific terms.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.addTree(w.root); err != nil {
		return fmt.Errorf("installing initial watch on %s: %w", w.root, err)
	}

	go w.loop()
	return nil
}

// Stop closes the underlying fsnotify watcher and the event channel. Per
// spec §4.E, shutdown completes within one poll interval.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	close(w.done)
	w.debouncer.Cancel()
	return w.fsWatcher.Close()
}

func (w *Watcher) addTree(dir string) error {
	if err := w.fsWatcher.Add(dir); err != nil {
		return err
	}
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() || path == dir {
			return nil
		}
		if w.excludedDir(path) {
			return filepath.SkipDir
		}
		if addErr := w.fsWatcher.Add(path); addErr != nil && w.logger != nil {
			w.logger.Warn("failed to watch directory", map[string]interface{}{"path": path, "error": addErr.Error()})
		}
		return nil
	})
}

func (w *Watcher) excludedDir(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
		if excludedDirNames[part] {
			return true
		}
	}
	return false
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				close(w.events)
				return
			}
			w.handleRaw(ev)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				close(w.events)
				return
			}
			if w.logger != nil {
				w.logger.Warn("watcher error", map[string]interface{}{"error": err.Error()})
			}
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleRaw(ev fsnotify.Event) {
	info, statErr := os.Stat(ev.Name)
	isDir := statErr == nil && info.IsDir()

	if ev.Op&fsnotify.Create == fsnotify.Create && isDir {
		if !w.excludedDir(ev.Name) {
			_ = w.addTree(ev.Name)
		}
		return
	}

	if !w.accept(ev.Name) {
		return
	}

	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		rel = ev.Name
	}
	rel = filepath.ToSlash(rel)

	var typ EventType
	switch {
	case ev.Op&fsnotify.Create == fsnotify.Create:
		typ = EventCreate
	case ev.Op&fsnotify.Write == fsnotify.Write:
		typ = EventModify
	case ev.Op&fsnotify.Remove == fsnotify.Remove:
		typ = EventDelete
	case ev.Op&fsnotify.Rename == fsnotify.Rename:
		typ = EventRename
	default:
		return
	}

	w.debouncer.Add(Event{Type: typ, Path: rel, Timestamp: time.Now()})
	if w.config.BatchSize > 0 && w.debouncer.EventCount() >= w.config.BatchSize {
		w.debouncer.Flush()
	}
}

// accept applies the extension and excluded-subtree filter from spec §4.E.
func (w *Watcher) accept(path string) bool {
	if w.excludedDir(filepath.Dir(path)) {
		return false
	}
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	_, ok := w.registry.Resolve(filepath.Ext(path))
	return ok
}

func (w *Watcher) emitBatch(events []Event) {
	for _, ev := range events {
		select {
		case w.events <- ev:
		case <-w.done:
			return
		}
	}
}
