package symbols

import (
	"testing"

	"cog/internal/grammar"
	"cog/internal/scip"
)

func newTestExtractor() (*Extractor, *grammar.Registry) {
	reg := grammar.NewRegistry()
	return NewExtractor(reg), reg
}

func TestExtractGoFunction(t *testing.T) {
	e, reg := newTestExtractor()
	defer e.Close()

	cfg, ok := reg.Resolve(".go")
	if !ok {
		t.Fatal("expected .go to resolve")
	}

	src := []byte("package main\n\nfunc hello() {}\n")
	doc, err := e.Extract("main.go", src, cfg)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(doc.Symbols) != 1 {
		t.Fatalf("expected 1 symbol, got %d: %+v", len(doc.Symbols), doc.Symbols)
	}
	sym := doc.Symbols[0]
	if sym.DisplayName != "hello" {
		t.Errorf("DisplayName = %q, want hello", sym.DisplayName)
	}
	if len(doc.Occurrences) != 1 {
		t.Fatalf("expected 1 occurrence, got %d", len(doc.Occurrences))
	}
	occ := doc.Occurrences[0]
	if occ.Range.StartLine != 2 {
		t.Errorf("StartLine = %d, want 2", occ.Range.StartLine)
	}
	if occ.Symbol != "local main.go:0" {
		t.Errorf("Symbol = %q, want %q", occ.Symbol, "local main.go:0")
	}
}

func TestExtractGoStructIsKindStruct(t *testing.T) {
	e, reg := newTestExtractor()
	defer e.Close()

	cfg, ok := reg.Resolve(".go")
	if !ok {
		t.Fatal("expected .go to resolve")
	}

	src := []byte("package main\n\ntype Point struct {\n\tX int\n\tY int\n}\n")
	doc, err := e.Extract("b.go", src, cfg)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(doc.Symbols) != 1 {
		t.Fatalf("expected 1 symbol, got %d: %+v", len(doc.Symbols), doc.Symbols)
	}
	sym := doc.Symbols[0]
	if sym.DisplayName != "Point" {
		t.Errorf("DisplayName = %q, want Point", sym.DisplayName)
	}
	if sym.Kind != int32(scip.KindStruct) {
		t.Errorf("Kind = %d, want %d (KindStruct)", sym.Kind, scip.KindStruct)
	}
}

func TestExtractPythonClassAndMethod(t *testing.T) {
	e, reg := newTestExtractor()
	defer e.Close()

	cfg, ok := reg.Resolve(".py")
	if !ok {
		t.Fatal("expected .py to resolve")
	}

	src := []byte("class MyClass:\n    def my_method(self):\n        pass\n")
	doc, err := e.Extract("m.py", src, cfg)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(doc.Symbols) != 2 {
		t.Fatalf("expected 2 symbols, got %d: %+v", len(doc.Symbols), doc.Symbols)
	}
	if doc.Symbols[0].DisplayName != "MyClass" {
		t.Errorf("first symbol = %q, want MyClass", doc.Symbols[0].DisplayName)
	}
	if doc.Symbols[1].DisplayName != "my_method" {
		t.Errorf("second symbol = %q, want my_method", doc.Symbols[1].DisplayName)
	}
}

func TestExtractJSFlowPragma(t *testing.T) {
	e, reg := newTestExtractor()
	defer e.Close()

	cfg, ok := reg.Resolve(".js")
	if !ok {
		t.Fatal("expected .js to resolve")
	}

	src := []byte("// @flow\nfunction greet(name: string): string { return name; }\n")
	doc, err := e.Extract("a.js", src, cfg)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	var found bool
	for _, sym := range doc.Symbols {
		if sym.DisplayName == "string" {
			t.Fatalf("keyword/type name %q leaked into symbols", sym.DisplayName)
		}
		if sym.DisplayName == "greet" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a greet symbol, got %+v", doc.Symbols)
	}
}

func TestExtractDedupesExportedFunction(t *testing.T) {
	e, reg := newTestExtractor()
	defer e.Close()

	cfg, ok := reg.Resolve(".js")
	if !ok {
		t.Fatal("expected .js to resolve")
	}

	src := []byte("export function foo() {}\n")
	doc, err := e.Extract("a.js", src, cfg)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	count := 0
	for _, sym := range doc.Symbols {
		if sym.DisplayName == "foo" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one foo definition, got %d", count)
	}
}

func TestExtractEmptySource(t *testing.T) {
	e, reg := newTestExtractor()
	defer e.Close()

	cfg, ok := reg.Resolve(".go")
	if !ok {
		t.Fatal("expected .go to resolve")
	}

	doc, err := e.Extract("empty.go", nil, cfg)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(doc.Symbols) != 0 || len(doc.Occurrences) != 0 {
		t.Fatalf("expected empty document, got %+v", doc)
	}
}

func TestExtractDeterministic(t *testing.T) {
	e, reg := newTestExtractor()
	defer e.Close()

	cfg, ok := reg.Resolve(".go")
	if !ok {
		t.Fatal("expected .go to resolve")
	}
	src := []byte("package main\n\nfunc a() {}\nfunc b() {}\n")

	doc1, err := e.Extract("x.go", src, cfg)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	doc2, err := e.Extract("x.go", src, cfg)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(doc1.Symbols) != len(doc2.Symbols) {
		t.Fatalf("non-deterministic symbol count: %d vs %d", len(doc1.Symbols), len(doc2.Symbols))
	}
	for i := range doc1.Symbols {
		if doc1.Symbols[i] != doc2.Symbols[i] {
			t.Fatalf("non-deterministic symbol at %d: %+v vs %+v", i, doc1.Symbols[i], doc2.Symbols[i])
		}
	}
}
