package grammar

import "testing"

func TestResolveBuiltinGo(t *testing.T) {
	r := NewRegistry()
	cfg, ok := r.Resolve(".go")
	if !ok {
		t.Fatal("expected .go to resolve")
	}
	if cfg.Kind != KindTreeSitter {
		t.Errorf("Kind = %v, want KindTreeSitter", cfg.Kind)
	}
	if cfg.LanguageTag != LangGo {
		t.Errorf("LanguageTag = %q, want %q", cfg.LanguageTag, LangGo)
	}
	if cfg.Language == nil {
		t.Error("Language handle is nil")
	}
	if cfg.Query == "" {
		t.Error("Query text is empty")
	}
}

func TestResolveUnknownExtension(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Resolve(".xyz"); ok {
		t.Error("expected .xyz to not resolve")
	}
}

func TestResolveNormalizesExtensionWithoutDot(t *testing.T) {
	r := NewRegistry()
	cfg, ok := r.Resolve("go")
	if !ok {
		t.Fatal("expected bare 'go' to normalize to '.go' and resolve")
	}
	if cfg.LanguageTag != LangGo {
		t.Errorf("LanguageTag = %q, want %q", cfg.LanguageTag, LangGo)
	}
}

func TestResolveForFlow(t *testing.T) {
	r := NewRegistry()
	cfg, ok := r.ResolveForFlow()
	if !ok {
		t.Fatal("expected ResolveForFlow to succeed")
	}
	if cfg.LanguageTag != LangJavaScript {
		t.Errorf("LanguageTag = %q, want %q", cfg.LanguageTag, LangJavaScript)
	}
	if cfg.Language == nil {
		t.Error("expected TypeScript Language handle")
	}
	if cfg.Query != queryText[LangJavaScript] {
		t.Error("expected JavaScript query text under the Flow override")
	}
}

func TestRegisterExternalOverridesBuiltin(t *testing.T) {
	r := NewRegistry()
	r.RegisterExternal(".go", "custom-go", "my-indexer {file} {output}")

	cfg, ok := r.Resolve(".go")
	if !ok {
		t.Fatal("expected .go to resolve")
	}
	if cfg.Kind != KindExternal {
		t.Errorf("Kind = %v, want KindExternal", cfg.Kind)
	}
	if cfg.LanguageTag != "custom-go" {
		t.Errorf("LanguageTag = %q, want custom-go", cfg.LanguageTag)
	}
	if cfg.Command == "" {
		t.Error("Command should be set for an external override")
	}
}

func TestTreeSitterLanguagesAreCached(t *testing.T) {
	r := NewRegistry()
	first, _ := r.treeSitterFor(LangPython)
	second, _ := r.treeSitterFor(LangPython)
	if first != second {
		t.Error("expected the same Language pointer to be returned from cache")
	}
}
