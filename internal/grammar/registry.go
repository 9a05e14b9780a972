// Package grammar binds a file extension to a grammar handle plus its
// symbol-capture query, or to an externally-installed extension's process
// invocation template. Built-in languages use the official tree-sitter Go
// binding; user-installed extensions run as an external process producing
// a SCIP document.
package grammar

import (
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Language tags. These double as the "lang" key into queryText and the
// Document.Language field emitted by the extractor.
const (
	LangGo         = "go"
	LangPython     = "python"
	LangTypeScript = "typescript"
	LangJavaScript = "javascript"
	LangRust       = "rust"
	LangJava       = "java"
	LangC          = "c"
	LangCPP        = "cpp"
)

// Kind distinguishes a tree-sitter-backed grammar from an external-process one.
type Kind int

const (
	KindTreeSitter Kind = iota
	KindExternal
)

// Config is what Resolve returns for a given extension.
type Config struct {
	Kind        Kind
	LanguageTag string
	Language    *sitter.Language // set when Kind == KindTreeSitter
	Query       string           // capture query text, tree-sitter only
	Command     string           // invocation template, external only; {file} {output} placeholders
}

// builtinExtensions maps a built-in extension to its language tag.
var builtinExtensions = map[string]string{
	".go":  LangGo,
	".ts":  LangTypeScript,
	".tsx": LangTypeScript,
	".js":  LangJavaScript,
	".jsx": LangJavaScript,
	".mjs": LangJavaScript,
	".cjs": LangJavaScript,
	".py":  LangPython,
	".pyi": LangPython,
	".java": LangJava,
	".rs":  LangRust,
	".c":   LangC,
	".h":   LangC,
	".cpp": LangCPP,
	".cc":  LangCPP,
	".cxx": LangCPP,
	".hpp": LangCPP,
	".hxx": LangCPP,
	".hh":  LangCPP,
}

func builtinLanguage(tag string) *sitter.Language {
	switch tag {
	case LangGo:
		return sitter.NewLanguage(tree_sitter_go.Language())
	case LangPython:
		return sitter.NewLanguage(tree_sitter_python.Language())
	case LangTypeScript:
		return sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	case LangJavaScript:
		return sitter.NewLanguage(tree_sitter_javascript.Language())
	case LangRust:
		return sitter.NewLanguage(tree_sitter_rust.Language())
	case LangJava:
		return sitter.NewLanguage(tree_sitter_java.Language())
	case LangC:
		return sitter.NewLanguage(tree_sitter_c.Language())
	case LangCPP:
		return sitter.NewLanguage(tree_sitter_cpp.Language())
	default:
		return nil
	}
}

// Registry resolves a file extension to a Config. Languages are loaded
// lazily and cached; an installed extension overrides a built-in grammar
// for the same file extension.
type Registry struct {
	mu        sync.RWMutex
	languages map[string]*sitter.Language
	external  map[string]Config // ext -> external override
}

// NewRegistry constructs a Registry with the built-in language table ready
// to resolve; tree-sitter Language handles are compiled lazily on first use.
func NewRegistry() *Registry {
	return &Registry{
		languages: make(map[string]*sitter.Language),
		external:  make(map[string]Config),
	}
}

// RegisterExternal installs (or overrides) the grammar for ext with an
// out-of-process indexer described by cmdTemplate (containing {file} and
// {output} placeholders). The registry only records the template; no code
// in this module runs it.
func (r *Registry) RegisterExternal(ext, languageTag, cmdTemplate string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.external[normalizeExt(ext)] = Config{
		Kind:        KindExternal,
		LanguageTag: languageTag,
		Command:     cmdTemplate,
	}
}

// Resolve maps a file extension (as returned by filepath.Ext, dot included)
// to a grammar Config. The second return value is false for unsupported
// extensions — callers must skip such files silently, not treat it as an error.
func (r *Registry) Resolve(ext string) (Config, bool) {
	ext = normalizeExt(ext)

	r.mu.RLock()
	if cfg, ok := r.external[ext]; ok {
		r.mu.RUnlock()
		return cfg, true
	}
	r.mu.RUnlock()

	tag, ok := builtinExtensions[ext]
	if !ok {
		return Config{}, false
	}

	lang, query := r.treeSitterFor(tag)
	if lang == nil {
		return Config{}, false
	}
	return Config{Kind: KindTreeSitter, LanguageTag: tag, Language: lang, Query: query}, true
}

// treeSitterFor returns the cached (or freshly compiled) Language and its
// capture query text for a built-in language tag.
func (r *Registry) treeSitterFor(tag string) (*sitter.Language, string) {
	r.mu.RLock()
	lang, ok := r.languages[tag]
	r.mu.RUnlock()
	if !ok {
		lang = builtinLanguage(tag)
		if lang == nil {
			return nil, ""
		}
		r.mu.Lock()
		r.languages[tag] = lang
		r.mu.Unlock()
	}
	return lang, queryText[tag]
}

// ResolveForFlow returns the TypeScript grammar's Language but the
// JavaScript grammar's capture query text, per the Flow-pragma override
// (spec §4.B step 1): Flow's generic syntax is invalid JS but accepted by
// the TS grammar, which produces compatible node types for JS patterns.
func (r *Registry) ResolveForFlow() (Config, bool) {
	tsLang, _ := r.treeSitterFor(LangTypeScript)
	if tsLang == nil {
		return Config{}, false
	}
	return Config{Kind: KindTreeSitter, LanguageTag: LangJavaScript, Language: tsLang, Query: queryText[LangJavaScript]}, true
}

func normalizeExt(ext string) string {
	if ext == "" {
		return ext
	}
	if !strings.HasPrefix(ext, ".") {
		return "." + ext
	}
	return ext
}
