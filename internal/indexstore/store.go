// Package indexstore holds the in-memory Index plus its on-disk mirror
// (spec §4.D): Replace/Remove/Rename keep the path→document map current,
// Persist atomically rewrites .cog/index.scip, and Query answers the
// find/refs/symbols/structure modes the CLI and MCP surfaces expose.
package indexstore

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	cogerrors "cog/internal/errors"
	"cog/internal/scip"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

const backupFile = "index.scip.bak.zst"

const indexFile = "index.scip"

// Store guards an in-memory Index with a single RWMutex (spec §5): queries
// hold it shared, mutations hold it exclusively, each for the operation's
// full duration, including the encode+write+rename inside Persist.
type Store struct {
	mu   sync.RWMutex
	cogDir string

	index *scip.Index
	byPath map[string]int // relative path -> index into index.Documents

	// mtimes tracks the last-known source mtime a document was extracted
	// from, so a stale extraction racing in after a newer one loses
	// (spec §5 ordering guarantee: "most recent successful Replace wins").
	mtimes map[string]time.Time

	// lastHash is the blake2b fingerprint of the most recently persisted
	// index.scip bytes, surfaced to `cog status` via ContentHash.
	lastHash string
}

// New constructs an empty Store rooted at cogDir (the ".cog" directory).
func New(cogDir string) *Store {
	return &Store{
		cogDir: cogDir,
		index:  &scip.Index{},
		byPath: make(map[string]int),
		mtimes: make(map[string]time.Time),
	}
}

// Load reads and decodes cogDir/index.scip into a new Store. A missing file
// yields an empty, ready-to-use Store rather than an error.
func Load(cogDir string) (*Store, error) {
	s := New(cogDir)
	path := filepath.Join(cogDir, indexFile)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return s, nil
	}

	idx, err := scip.Load(path)
	if err != nil {
		return nil, err
	}
	s.index = idx
	s.reindex()
	return s, nil
}

func (s *Store) reindex() {
	s.byPath = make(map[string]int, len(s.index.Documents))
	for i, doc := range s.index.Documents {
		s.byPath[doc.RelativePath] = i
	}
}

// Replace removes any existing document at relativePath and inserts doc in
// its place. sourceMTime lets a caller skip a stale re-extraction that
// raced in behind a newer one for the same path.
func (s *Store) Replace(relativePath string, doc *scip.Document, sourceMTime time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.mtimes[relativePath]; ok && sourceMTime.Before(prev) {
		return
	}
	s.mtimes[relativePath] = sourceMTime

	if i, ok := s.byPath[relativePath]; ok {
		s.index.Documents[i] = *doc
		return
	}
	s.index.Documents = append(s.index.Documents, *doc)
	s.byPath[relativePath] = len(s.index.Documents) - 1
}

// Remove drops the document at relativePath if present. Idempotent.
func (s *Store) Remove(relativePath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(relativePath)
}

func (s *Store) removeLocked(relativePath string) {
	i, ok := s.byPath[relativePath]
	if !ok {
		return
	}
	last := len(s.index.Documents) - 1
	s.index.Documents[i] = s.index.Documents[last]
	s.index.Documents = s.index.Documents[:last]
	if i != last {
		s.byPath[s.index.Documents[i].RelativePath] = i
	}
	delete(s.byPath, relativePath)
	delete(s.mtimes, relativePath)
}

// Rename atomically moves a document from oldPath to newPath. Symbol IDs
// embedded in the document are left unchanged — IDs are opaque, and
// consumers key off the occurrence set rather than the ID's path prefix.
func (s *Store) Rename(oldPath, newPath string, doc *scip.Document, sourceMTime time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(oldPath)

	if prev, ok := s.mtimes[newPath]; ok && sourceMTime.Before(prev) {
		return
	}
	s.mtimes[newPath] = sourceMTime
	if i, ok := s.byPath[newPath]; ok {
		s.index.Documents[i] = *doc
		return
	}
	s.index.Documents = append(s.index.Documents, *doc)
	s.byPath[newPath] = len(s.index.Documents) - 1
}

// Persist atomically rewrites cogDir/index.scip via write-to-temp + rename,
// holding the store lock for the full encode+write+rename.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := scip.Encode(s.index)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.cogDir, 0o755); err != nil {
		return cogerrors.Wrap(cogerrors.Filesystem, "creating cog directory", err)
	}

	final := filepath.Join(s.cogDir, indexFile)
	s.backupPrevious(final)

	tmp := filepath.Join(s.cogDir, indexFile+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return cogerrors.Wrap(cogerrors.Filesystem, "writing index", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return cogerrors.Wrap(cogerrors.Filesystem, "committing index", err)
	}
	s.lastHash = HashIndex(data)
	return nil
}

// ContentHash returns the blake2b fingerprint of the most recently
// persisted index.scip bytes, or "" if Persist has not run this process.
func (s *Store) ContentHash() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastHash
}

// backupPrevious zstd-compresses the existing index.scip (if any) into a
// single rotating backup before it gets overwritten, so a corrupt Persist
// elsewhere in the pipeline can be recovered from with RestoreBackup. Best
// effort: a failure here must never block the real write.
func (s *Store) backupPrevious(final string) {
	old, err := os.ReadFile(final)
	if err != nil {
		return
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return
	}
	defer enc.Close()
	compressed := enc.EncodeAll(old, nil)

	_ = os.WriteFile(filepath.Join(s.cogDir, backupFile), compressed, 0o644)
}

// RestoreBackup decodes the rotating zstd backup (if present) and returns
// its raw protobuf bytes, for recovering from a corrupt index.scip.
func RestoreBackup(cogDir string) ([]byte, error) {
	path := filepath.Join(cogDir, backupFile)
	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, cogerrors.Wrap(cogerrors.Filesystem, "reading index backup", err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, cogerrors.Wrap(cogerrors.Invariant, "constructing zstd decoder", err)
	}
	defer dec.Close()

	data, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, cogerrors.Wrap(cogerrors.Codec, "decompressing index backup", err)
	}
	return data, nil
}

// Document returns a copy of the document at relativePath, if present.
func (s *Store) Document(relativePath string) (scip.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byPath[relativePath]
	if !ok {
		return scip.Document{}, false
	}
	return s.index.Documents[i], true
}

// DocumentCount reports how many documents the store currently holds.
func (s *Store) DocumentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.index.Documents)
}

// SymbolCount reports the total number of symbols across all documents.
func (s *Store) SymbolCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, doc := range s.index.Documents {
		total += len(doc.Symbols)
	}
	return total
}

// QueryMode selects the Query operation's behavior (spec §4.D).
type QueryMode int

const (
	ModeFind QueryMode = iota
	ModeRefs
	ModeSymbols
	ModeStructure
)

// ResultEntry is one row of a find/refs result set.
type ResultEntry struct {
	Path           string  `json:"path"`
	Line           int32   `json:"line"`
	Column         int32   `json:"column"`
	Name           string  `json:"name"`
	Kind           int32   `json:"kind"`
	EnclosingRange []int32 `json:"enclosing_range"`
}

// FindRefsResult is the JSON envelope for find/refs.
type FindRefsResult struct {
	Results []ResultEntry `json:"results"`
}

// SymbolsResult is the JSON envelope for the symbols mode.
type SymbolsResult struct {
	Symbols []scip.SymbolInformation `json:"symbols"`
}

// DirStructure summarizes one top-level directory for the structure mode.
type DirStructure struct {
	Documents int           `json:"documents"`
	Symbols   int           `json:"symbols"`
	ByKind    map[int32]int `json:"by_kind"`
}

// StructureResult is the JSON envelope for the structure mode.
type StructureResult struct {
	Structure map[string]DirStructure `json:"structure"`
}

// Find implements the `find` query mode: exact/case-insensitive matches on
// display_name among Definition occurrences, ranked per spec §4.D and cut
// to limit (default 1 when limit <= 0).
func (s *Store) Find(name string, kind *int32, limit int) FindRefsResult {
	if limit <= 0 {
		limit = 1
	}
	return s.findOrRefs(name, kind, limit, false)
}

// Refs implements the `refs` query mode: all occurrences (Definition or
// reference-role) whose display name equals name. Limit defaults to 100.
func (s *Store) Refs(name string, kind *int32, limit int) FindRefsResult {
	if limit <= 0 {
		limit = 100
	}
	return s.findOrRefs(name, kind, limit, true)
}

func (s *Store) findOrRefs(name string, kind *int32, limit int, includeReferences bool) FindRefsResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type candidate struct {
		entry       ResultEntry
		exactCase   bool
		kindMatches bool
		pathDepth   int
	}

	var candidates []candidate
	lowerName := strings.ToLower(name)

	for _, doc := range s.index.Documents {
		symKind := make(map[string]int32, len(doc.Symbols))
		for _, sym := range doc.Symbols {
			symKind[sym.Symbol] = sym.Kind
		}

		for _, occ := range doc.Occurrences {
			if occ.SymbolRoles&int32(scip.RoleDefinition) == 0 && !includeReferences {
				continue
			}
			displayName := displayNameFor(doc, occ.Symbol)
			if displayName == "" {
				continue
			}
			exact := displayName == name
			if !exact && strings.ToLower(displayName) != lowerName {
				continue
			}

			k := symKind[occ.Symbol]
			kindOK := kind == nil || *kind == k

			candidates = append(candidates, candidate{
				entry: ResultEntry{
					Path:           doc.RelativePath,
					Line:           occ.Range.StartLine,
					Column:         occ.Range.StartChar,
					Name:           displayName,
					Kind:           k,
					EnclosingRange: packEnclosing(occ),
				},
				exactCase:   exact,
				kindMatches: kindOK,
				pathDepth:   strings.Count(doc.RelativePath, "/"),
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return rankLess(candidates[i].exactCase, candidates[i].kindMatches, candidates[i].pathDepth, candidates[i].entry,
			candidates[j].exactCase, candidates[j].kindMatches, candidates[j].pathDepth, candidates[j].entry)
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	result := FindRefsResult{Results: make([]ResultEntry, 0, len(candidates))}
	for _, c := range candidates {
		result.Results = append(result.Results, c.entry)
	}
	return result
}

func displayNameFor(doc scip.Document, symbolID string) string {
	for _, sym := range doc.Symbols {
		if sym.Symbol == symbolID {
			return sym.DisplayName
		}
	}
	return ""
}

func packEnclosing(occ scip.Occurrence) []int32 {
	if !occ.HasEnclosing {
		return nil
	}
	return occ.EnclosingRange.Pack()
}

// Symbols implements the `symbols` query mode.
func (s *Store) Symbols(file string, kind *int32) SymbolsResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byPath[file]
	if !ok {
		return SymbolsResult{Symbols: []scip.SymbolInformation{}}
	}

	out := SymbolsResult{Symbols: []scip.SymbolInformation{}}
	for _, sym := range s.index.Documents[i].Symbols {
		if kind != nil && sym.Kind != *kind {
			continue
		}
		out.Symbols = append(out.Symbols, sym)
	}
	return out
}

// Structure implements the `structure` query mode: per top-level
// directory, document count and symbol count grouped by kind.
func (s *Store) Structure() StructureResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dirs := make(map[string]DirStructure)
	for _, doc := range s.index.Documents {
		dir := topLevelDir(doc.RelativePath)
		d := dirs[dir]
		d.Documents++
		if d.ByKind == nil {
			d.ByKind = make(map[int32]int)
		}
		for _, sym := range doc.Symbols {
			d.Symbols++
			d.ByKind[sym.Kind]++
		}
		dirs[dir] = d
	}
	return StructureResult{Structure: dirs}
}

func topLevelDir(relativePath string) string {
	if i := strings.Index(relativePath, "/"); i >= 0 {
		return relativePath[:i]
	}
	return "."
}
