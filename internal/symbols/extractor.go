// Package symbols implements the tree-sitter driven symbol extractor
// (spec §4.B): parses a source buffer with a resolved grammar, runs its
// capture query, and yields a normalized scip.Document plus the backing
// string buffer its slices reference.
package symbols

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	cogerrors "cog/internal/errors"
	"cog/internal/grammar"
	"cog/internal/scip"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// flowPragma is the literal substring that triggers the JS→TS grammar
// override (spec §4.B step 1). Only the first 256 bytes are inspected.
const flowPragma = "@flow"

const flowScanWindow = 256

// jsReservedWords guards against error-recovery fabrications; applied only
// to JavaScript/TypeScript/Flow extraction (Open Question 2 in DESIGN.md).
var jsReservedWords = map[string]bool{
	"if": true, "else": true, "for": true, "while": true, "do": true,
	"switch": true, "case": true, "break": true, "continue": true,
	"return": true, "throw": true, "try": true, "catch": true, "finally": true,
	"with": true, "debugger": true, "delete": true, "typeof": true,
	"instanceof": true, "void": true, "in": true, "of": true, "new": true,
	"yield": true, "await": true, "this": true, "super": true, "null": true,
	"true": true, "false": true, "undefined": true,
}

func isJSFamily(tag string) bool {
	return tag == grammar.LangJavaScript || tag == grammar.LangTypeScript
}

// kindNumeric maps a capture kind label to the wire-level SCIP SymbolKind.
var kindNumeric = map[string]int32{
	"function":       int32(scip.KindFunction),
	"method":         int32(scip.KindMethod),
	"class":          int32(scip.KindClass),
	"interface":      int32(scip.KindInterface),
	"type":           int32(scip.KindType),
	"module":         int32(scip.KindModule),
	"constant":       int32(scip.KindConstant),
	"variable":       int32(scip.KindVariable),
	"struct":         int32(scip.KindStruct),
	"enum":           int32(scip.KindEnum),
	"trait":          int32(scip.KindTrait),
	"implementation": int32(scip.KindImplementation),
	"constructor":    int32(scip.KindConstructor),
}

func mapKind(label string) int32 {
	if v, ok := kindNumeric[label]; ok {
		return v
	}
	return int32(scip.KindUnspecified)
}

// Extractor owns a single tree-sitter Parser. The parser handle is NOT
// thread-safe; callers must give each worker goroutine its own Extractor.
type Extractor struct {
	registry *grammar.Registry
	parser   *sitter.Parser

	mu      sync.Mutex
	queries map[string]*sitter.Query // compiled capture query, keyed by language tag + grammar handle
}

// NewExtractor constructs an Extractor bound to registry, with its own
// tree-sitter parser instance.
func NewExtractor(registry *grammar.Registry) *Extractor {
	return &Extractor{
		registry: registry,
		parser:   sitter.NewParser(),
		queries:  make(map[string]*sitter.Query),
	}
}

// Close releases the underlying parser.
func (e *Extractor) Close() {
	e.parser.Close()
}

type rawDef struct {
	name      string
	startLine uint32
	startChar uint32
	endLine   uint32
	endChar   uint32
	encStart  sitter.Point
	encEnd    sitter.Point
	kind      string
}

// Extract parses source (already resolved to cfg by the Grammar Registry)
// and returns a Document ready for the Index Store. An empty source yields
// an empty, non-error Document.
func (e *Extractor) Extract(relativePath string, source []byte, cfg grammar.Config) (*scip.Document, error) {
	if cfg.Kind != grammar.KindTreeSitter {
		return nil, cogerrors.New(cogerrors.Invariant, "Extract called with a non-tree-sitter grammar config")
	}

	effectiveCfg := cfg
	if cfg.LanguageTag == grammar.LangJavaScript && hasFlowPragma(source) {
		if flowCfg, ok := e.registry.ResolveForFlow(); ok {
			effectiveCfg = flowCfg
		}
	}

	if len(source) == 0 {
		return &scip.Document{RelativePath: relativePath, Language: effectiveCfg.LanguageTag}, nil
	}

	if err := e.parser.SetLanguage(effectiveCfg.Language); err != nil {
		return nil, cogerrors.Wrap(cogerrors.ParseQuery, "setting parser language (grammar ABI mismatch)", err)
	}

	tree := e.parser.Parse(source, nil)
	if tree == nil {
		return nil, cogerrors.New(cogerrors.ParseQuery, fmt.Sprintf("parse failed for %s", relativePath))
	}
	defer tree.Close()

	query, err := e.compiledQuery(effectiveCfg)
	if err != nil {
		// Query-compilation failure is fatal per spec, but languages with a
		// known node-walk fallback degrade instead of failing the file.
		if doc, legacyErr := ExtractLegacy(relativePath, effectiveCfg.LanguageTag, source); legacyErr == nil && doc != nil {
			return doc, nil
		}
		return nil, cogerrors.Wrap(cogerrors.ParseQuery, fmt.Sprintf("compiling capture query for %s", effectiveCfg.LanguageTag), err)
	}

	raws := e.runQuery(query, tree.RootNode(), source, relativePath, effectiveCfg.LanguageTag)

	return buildDocument(relativePath, effectiveCfg.LanguageTag, raws), nil
}

func hasFlowPragma(source []byte) bool {
	end := flowScanWindow
	if end > len(source) {
		end = len(source)
	}
	return bytes.Contains(source[:end], []byte(flowPragma))
}

func (e *Extractor) compiledQuery(cfg grammar.Config) (*sitter.Query, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := fmt.Sprintf("%s|%p", cfg.LanguageTag, cfg.Language)
	if q, ok := e.queries[key]; ok {
		return q, nil
	}
	q, err := sitter.NewQuery(cfg.Language, cfg.Query)
	if err != nil {
		return nil, err
	}
	e.queries[key] = q
	return q, nil
}

// runQuery executes the capture query and applies the collection rules
// from spec §4.B steps 4-6: drop error-node matches, suppress JS/TS
// reserved words, and dedupe by (start-line, name) within the file.
func (e *Extractor) runQuery(query *sitter.Query, root *sitter.Node, source []byte, relativePath, langTag string) []rawDef {
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	captureNames := query.CaptureNames()
	nameIndex := -1
	defIndexes := make(map[uint32]string)
	for i, captureName := range captureNames {
		if captureName == "name" {
			nameIndex = i
		} else if strings.HasPrefix(captureName, "definition.") {
			defIndexes[uint32(i)] = strings.TrimPrefix(captureName, "definition.")
		}
	}

	var out []rawDef
	seenLines := make(map[string]bool)

	matches := cursor.Matches(query, root, source)
	for match := matches.Next(); match != nil; match = matches.Next() {
		var nameNode *sitter.Node
		var defNode *sitter.Node
		var kind string

		for _, capture := range match.Captures {
			if int(capture.Index) == nameIndex {
				node := capture.Node
				nameNode = &node
			}
			if k, ok := defIndexes[capture.Index]; ok {
				node := capture.Node
				defNode = &node
				kind = k
			}
		}
		if nameNode == nil || defNode == nil {
			continue
		}

		// Step 4: drop error-node matches. Only the name node and its
		// immediate parent are checked — further ancestors are not walked,
		// since Flow's recovery fabricates error nodes around type
		// annotations while the function-name identifier stays valid.
		if nameNode.IsError() {
			continue
		}
		if parent := nameNode.Parent(); parent != nil && parent.IsError() {
			continue
		}

		start, end := nameNode.StartByte(), nameNode.EndByte()
		if start >= end || int(end) > len(source) {
			continue
		}

		name := string(source[start:end])
		if name == "" {
			continue
		}

		// Step 5: keyword suppression, gated to JS/TS/Flow.
		if isJSFamily(langTag) && jsReservedWords[name] {
			continue
		}

		startPos := nameNode.StartPosition()

		// Step 6: per-line dedup on (start-line, name-text).
		lineKey := fmt.Sprintf("%d:%s", startPos.Row, name)
		if seenLines[lineKey] {
			continue
		}
		seenLines[lineKey] = true

		out = append(out, rawDef{
			name:      name,
			startLine: uint32(startPos.Row),
			startChar: uint32(startPos.Column),
			endLine:   uint32(nameNode.EndPosition().Row),
			endChar:   uint32(nameNode.EndPosition().Column),
			encStart:  defNode.StartPosition(),
			encEnd:    defNode.EndPosition(),
			kind:      kind,
		})
	}

	// Stable order: first appearance (already the query's natural order,
	// but sort defensively by position since QueryCursor.Matches does not
	// document an ordering guarantee across pattern indices).
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].startLine != out[j].startLine {
			return out[i].startLine < out[j].startLine
		}
		return out[i].startChar < out[j].startChar
	})
	_ = relativePath
	return out
}

// buildDocument implements step 7 (string pool + ID assignment) and step 8
// (Occurrence/SymbolInformation shape) of spec §4.B.
func buildDocument(relativePath, langTag string, raws []rawDef) *scip.Document {
	doc := &scip.Document{RelativePath: relativePath, Language: langTag}

	var pool bytes.Buffer
	type slice struct{ off, n int }
	ids := make([]slice, len(raws))
	names := make([]slice, len(raws))

	for i, r := range raws {
		idOff := pool.Len()
		pool.WriteString("local ")
		pool.WriteString(relativePath)
		pool.WriteByte(':')
		pool.WriteString(strconv.Itoa(i))
		ids[i] = slice{idOff, pool.Len() - idOff}

		nameOff := pool.Len()
		pool.WriteString(r.name)
		names[i] = slice{nameOff, pool.Len() - nameOff}
	}

	frozen := pool.Bytes()
	sliceStr := func(s slice) string { return string(frozen[s.off : s.off+s.n]) }

	for i, r := range raws {
		id := sliceStr(ids[i])
		name := sliceStr(names[i])

		doc.Occurrences = append(doc.Occurrences, scip.Occurrence{
			Range:          scip.Range{StartLine: int32(r.startLine), StartChar: int32(r.startChar), EndLine: int32(r.endLine), EndChar: int32(r.endChar)},
			Symbol:         id,
			SymbolRoles:    int32(scip.RoleDefinition),
			SyntaxKind:     0,
			EnclosingRange: scip.Range{StartLine: int32(r.encStart.Row), StartChar: int32(r.encStart.Column), EndLine: int32(r.encEnd.Row), EndChar: int32(r.encEnd.Column)},
			HasEnclosing:   true,
		})
		doc.Symbols = append(doc.Symbols, scip.SymbolInformation{
			Symbol:      id,
			Kind:        mapKind(r.kind),
			DisplayName: name,
		})
	}

	return doc
}
