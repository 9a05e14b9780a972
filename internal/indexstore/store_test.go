package indexstore

import (
	"testing"
	"time"

	"cog/internal/scip"
)

func sampleDoc(path, name string, kind int32, line int32) *scip.Document {
	return &scip.Document{
		RelativePath: path,
		Language:     "go",
		Occurrences: []scip.Occurrence{
			{
				Range:          scip.Range{StartLine: line, StartChar: 0, EndLine: line, EndChar: int32(len(name))},
				Symbol:         "local " + path + ":0",
				SymbolRoles:    int32(scip.RoleDefinition),
				EnclosingRange: scip.Range{StartLine: line, StartChar: 0, EndLine: line + 2, EndChar: 1},
				HasEnclosing:   true,
			},
		},
		Symbols: []scip.SymbolInformation{
			{Symbol: "local " + path + ":0", Kind: kind, DisplayName: name},
		},
	}
}

func TestReplaceAndDocument(t *testing.T) {
	s := New(t.TempDir())
	s.Replace("a.go", sampleDoc("a.go", "Foo", int32(scip.KindFunction), 1), time.Now())

	doc, ok := s.Document("a.go")
	if !ok {
		t.Fatal("expected document to be present")
	}
	if doc.Symbols[0].DisplayName != "Foo" {
		t.Errorf("DisplayName = %q, want Foo", doc.Symbols[0].DisplayName)
	}
	if s.DocumentCount() != 1 {
		t.Errorf("DocumentCount = %d, want 1", s.DocumentCount())
	}
}

func TestReplaceStaleMTimeIsDiscarded(t *testing.T) {
	s := New(t.TempDir())
	newer := time.Now()
	older := newer.Add(-time.Hour)

	s.Replace("a.go", sampleDoc("a.go", "New", int32(scip.KindFunction), 1), newer)
	s.Replace("a.go", sampleDoc("a.go", "Stale", int32(scip.KindFunction), 1), older)

	doc, _ := s.Document("a.go")
	if doc.Symbols[0].DisplayName != "New" {
		t.Errorf("expected the newer extraction to win, got %q", doc.Symbols[0].DisplayName)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	s := New(t.TempDir())
	s.Replace("a.go", sampleDoc("a.go", "Foo", int32(scip.KindFunction), 1), time.Now())
	s.Remove("a.go")
	s.Remove("a.go")

	if _, ok := s.Document("a.go"); ok {
		t.Fatal("expected document to be gone")
	}
	if s.DocumentCount() != 0 {
		t.Errorf("DocumentCount = %d, want 0", s.DocumentCount())
	}
}

func TestRename(t *testing.T) {
	s := New(t.TempDir())
	s.Replace("old.go", sampleDoc("old.go", "Foo", int32(scip.KindFunction), 1), time.Now())
	s.Rename("old.go", "new.go", sampleDoc("new.go", "Foo", int32(scip.KindFunction), 1), time.Now())

	if _, ok := s.Document("old.go"); ok {
		t.Fatal("expected old path to be gone")
	}
	if _, ok := s.Document("new.go"); !ok {
		t.Fatal("expected new path to be present")
	}
}

func TestFindRanksExactCaseOverInsensitive(t *testing.T) {
	s := New(t.TempDir())
	s.Replace("b.go", sampleDoc("b.go", "foo", int32(scip.KindFunction), 1), time.Now())
	s.Replace("a.go", sampleDoc("a.go", "Foo", int32(scip.KindFunction), 1), time.Now())

	result := s.Find("Foo", nil, 10)
	if len(result.Results) == 0 {
		t.Fatal("expected at least one result")
	}
	if result.Results[0].Path != "a.go" {
		t.Errorf("expected exact-case match a.go first, got %q", result.Results[0].Path)
	}
}

func TestFindDefaultLimitIsOne(t *testing.T) {
	s := New(t.TempDir())
	s.Replace("a.go", sampleDoc("a.go", "Foo", int32(scip.KindFunction), 1), time.Now())
	s.Replace("b.go", sampleDoc("b.go", "Foo", int32(scip.KindFunction), 1), time.Now())

	result := s.Find("Foo", nil, 0)
	if len(result.Results) != 1 {
		t.Fatalf("expected exactly 1 result by default, got %d", len(result.Results))
	}
}

func TestFindKindFilterRanksRatherThanExcludes(t *testing.T) {
	s := New(t.TempDir())
	s.Replace("a.go", sampleDoc("a.go", "Foo", int32(scip.KindFunction), 1), time.Now())
	s.Replace("b.go", sampleDoc("b.go", "Foo", int32(scip.KindClass), 1), time.Now())

	classKind := int32(scip.KindClass)
	result := s.Find("Foo", &classKind, 10)
	if len(result.Results) != 2 {
		t.Fatalf("expected both kind-matching and kind-missing results, got %d", len(result.Results))
	}
	if result.Results[0].Path != "b.go" {
		t.Errorf("expected kind-matching result b.go ranked first, got %q", result.Results[0].Path)
	}
	if result.Results[1].Path != "a.go" {
		t.Errorf("expected kind-missing result a.go still present, ranked second, got %q", result.Results[1].Path)
	}
}

func TestSymbolsFiltersByFileAndKind(t *testing.T) {
	s := New(t.TempDir())
	s.Replace("a.go", sampleDoc("a.go", "Foo", int32(scip.KindFunction), 1), time.Now())

	fnKind := int32(scip.KindFunction)
	result := s.Symbols("a.go", &fnKind)
	if len(result.Symbols) != 1 {
		t.Fatalf("expected 1 symbol, got %d", len(result.Symbols))
	}

	classKind := int32(scip.KindClass)
	result = s.Symbols("a.go", &classKind)
	if len(result.Symbols) != 0 {
		t.Fatalf("expected 0 symbols for mismatched kind, got %d", len(result.Symbols))
	}
}

func TestStructureGroupsByTopLevelDir(t *testing.T) {
	s := New(t.TempDir())
	s.Replace("pkg/a.go", sampleDoc("pkg/a.go", "Foo", int32(scip.KindFunction), 1), time.Now())
	s.Replace("pkg/b.go", sampleDoc("pkg/b.go", "Bar", int32(scip.KindFunction), 1), time.Now())
	s.Replace("main.go", sampleDoc("main.go", "main", int32(scip.KindFunction), 1), time.Now())

	result := s.Structure()
	if result.Structure["pkg"].Documents != 2 {
		t.Errorf("pkg documents = %d, want 2", result.Structure["pkg"].Documents)
	}
	if result.Structure["."].Documents != 1 {
		t.Errorf("root documents = %d, want 1", result.Structure["."].Documents)
	}
}

func TestPersistAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	s.Replace("a.go", sampleDoc("a.go", "Foo", int32(scip.KindFunction), 1), time.Now())

	if err := s.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.DocumentCount() != 1 {
		t.Fatalf("DocumentCount = %d, want 1", loaded.DocumentCount())
	}
	doc, ok := loaded.Document("a.go")
	if !ok || doc.Symbols[0].DisplayName != "Foo" {
		t.Fatalf("round-tripped document mismatch: %+v", doc)
	}
}

func TestSymbolCount(t *testing.T) {
	s := New(t.TempDir())
	s.Replace("a.go", sampleDoc("a.go", "Foo", int32(scip.KindFunction), 1), time.Now())
	s.Replace("b.go", sampleDoc("b.go", "Bar", int32(scip.KindFunction), 1), time.Now())

	if s.SymbolCount() != 2 {
		t.Errorf("SymbolCount = %d, want 2", s.SymbolCount())
	}
}

func TestPersistWritesContentHashAndBackup(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	s.Replace("a.go", sampleDoc("a.go", "Foo", int32(scip.KindFunction), 1), time.Now())

	if err := s.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if s.ContentHash() == "" {
		t.Fatal("expected a non-empty content hash after Persist")
	}

	// A second Persist should back up the first version.
	s.Replace("a.go", sampleDoc("a.go", "Bar", int32(scip.KindFunction), 1), time.Now())
	if err := s.Persist(); err != nil {
		t.Fatalf("second Persist: %v", err)
	}

	backup, err := RestoreBackup(dir)
	if err != nil {
		t.Fatalf("RestoreBackup: %v", err)
	}
	if len(backup) == 0 {
		t.Fatal("expected non-empty backup bytes")
	}
}

func TestLoadMissingFileYieldsEmptyStore(t *testing.T) {
	s, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.DocumentCount() != 0 {
		t.Errorf("DocumentCount = %d, want 0", s.DocumentCount())
	}
}
