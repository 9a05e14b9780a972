// Package scip implements the reduced SCIP-subset binary index codec:
// the in-memory Index/Document/Occurrence/SymbolInformation model and its
// protobuf-compatible encode/decode, matching field numbers and wire types
// of the upstream SCIP schema exactly so the on-disk file interoperates
// with third-party SCIP tooling.
package scip

// SymbolKind is the numeric tag carried on a SymbolInformation. Values are
// wire-level contractual: they match the SCIP enum.
type SymbolKind int32

const (
	KindUnspecified   SymbolKind = 0
	KindFunction      SymbolKind = 17
	KindClass         SymbolKind = 7
	KindMethod        SymbolKind = 26
	KindInterface     SymbolKind = 21
	KindModule        SymbolKind = 29
	KindConstant      SymbolKind = 8
	KindVariable      SymbolKind = 61
	KindType          SymbolKind = 54
	KindEnum          SymbolKind = 11
	KindStruct        SymbolKind = 49
	KindConstructor   SymbolKind = 9
	KindField         SymbolKind = 15
	KindProperty      SymbolKind = 41
	KindMacro         SymbolKind = 25
	KindNamespace     SymbolKind = 30
	KindTrait         SymbolKind = 53
	KindImplementation SymbolKind = 20
)

// KindByName maps the lowercase names accepted by the CLI's --kind flag and
// the MCP tools' "kind" parameter to their wire values.
var KindByName = map[string]int32{
	"function":       int32(KindFunction),
	"class":          int32(KindClass),
	"method":         int32(KindMethod),
	"interface":      int32(KindInterface),
	"module":         int32(KindModule),
	"constant":       int32(KindConstant),
	"variable":       int32(KindVariable),
	"type":           int32(KindType),
	"enum":           int32(KindEnum),
	"struct":         int32(KindStruct),
	"constructor":    int32(KindConstructor),
	"field":          int32(KindField),
	"property":       int32(KindProperty),
	"macro":          int32(KindMacro),
	"namespace":      int32(KindNamespace),
	"trait":          int32(KindTrait),
	"implementation": int32(KindImplementation),
}

// SymbolRole is a bitset. The core extractor emits only Definition.
type SymbolRole int32

const (
	RoleDefinition        SymbolRole = 1
	RoleImport            SymbolRole = 2
	RoleWriteAccess       SymbolRole = 4
	RoleReadAccess        SymbolRole = 8
	RoleGenerated         SymbolRole = 16
	RoleTest              SymbolRole = 32
	RoleForwardDefinition SymbolRole = 64
)

// Range is a closed-open span: start inclusive, end exclusive, zero-based.
// Occurrence/EnclosingRange fields store it packed as either
// [start_line, start_char, end_char] (when start_line == end_line) or
// [start_line, start_char, end_line, end_char].
type Range struct {
	StartLine int32
	StartChar int32
	EndLine   int32
	EndChar   int32
}

// Pack produces the wire-shaped packed-int32 slice per §4.C's encoding rule.
func (r Range) Pack() []int32 {
	if r.StartLine == r.EndLine {
		return []int32{r.StartLine, r.StartChar, r.EndChar}
	}
	return []int32{r.StartLine, r.StartChar, r.EndLine, r.EndChar}
}

// UnpackRange reconstructs a Range from its packed 3- or 4-element wire form.
func UnpackRange(packed []int32) Range {
	switch len(packed) {
	case 3:
		return Range{StartLine: packed[0], StartChar: packed[1], EndLine: packed[0], EndChar: packed[2]}
	case 4:
		return Range{StartLine: packed[0], StartChar: packed[1], EndLine: packed[2], EndChar: packed[3]}
	default:
		return Range{}
	}
}

// Relationship describes a symbol-to-symbol relation. Not emitted by the
// core extractor but must round-trip.
type Relationship struct {
	Symbol             string
	IsReference        bool
	IsImplementation   bool
	IsTypeDefinition   bool
	IsDefinition       bool
}

// Occurrence locates one mention of a symbol within a document.
type Occurrence struct {
	Range          Range
	Symbol         string
	SymbolRoles    int32
	SyntaxKind     int32
	EnclosingRange Range
	HasEnclosing   bool
}

// SymbolInformation describes a symbol referenced by at least one Occurrence.
type SymbolInformation struct {
	Symbol          string
	Documentation   []string
	Relationships   []Relationship
	Kind            int32
	DisplayName     string
	EnclosingSymbol string
}

// Document is one source file's extracted occurrences and symbol table.
type Document struct {
	RelativePath string
	Language     string
	Occurrences  []Occurrence
	Symbols      []SymbolInformation
}

// ToolInfo identifies the indexer that produced the Index.
type ToolInfo struct {
	Name    string
	Version string
}

// Metadata is the Index's field-1 header message.
type Metadata struct {
	Version              int32
	ToolInfo             *ToolInfo
	ProjectRoot          string
	TextDocumentEncoding int32
}

// Index is the top-level SCIP-subset message persisted to .cog/index.scip.
type Index struct {
	Metadata        *Metadata
	Documents       []Document
	ExternalSymbols []SymbolInformation
}
