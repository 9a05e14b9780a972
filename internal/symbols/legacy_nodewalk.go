package symbols

import (
	"context"
	"strconv"

	"cog/internal/scip"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// legacyLanguage resolves a smacker grammar for the node-walk fallback path.
// This path is only reached when the primary capture-query grammar fails
// to compile (see Extract's fallback branch) — it exists for the languages
// whose built-in queries are most likely to need a stable escape hatch.
func legacyLanguage(tag string) *sitter.Language {
	switch tag {
	case "go":
		return golang.GetLanguage()
	case "javascript":
		return javascript.GetLanguage()
	case "typescript":
		return typescript.GetLanguage()
	case "python":
		return python.GetLanguage()
	default:
		return nil
	}
}

var legacyFunctionNodeTypes = map[string][]string{
	"go":         {"function_declaration", "method_declaration"},
	"javascript": {"function_declaration", "method_definition"},
	"typescript": {"function_declaration", "method_definition"},
	"python":     {"function_definition"},
}

var legacyTypeNodeTypes = map[string][]string{
	"go":         {"type_spec"},
	"javascript": {"class_declaration"},
	"typescript": {"class_declaration", "interface_declaration"},
	"python":     {"class_definition"},
}

// ExtractLegacy walks the concrete syntax tree directly instead of running
// a capture query, for grammars whose query failed to compile. It produces
// the same Document shape as the primary path, with syntax_kind 0 and
// Definition-only occurrences.
func ExtractLegacy(relativePath, langTag string, source []byte) (*scip.Document, error) {
	lang := legacyLanguage(langTag)
	doc := &scip.Document{RelativePath: relativePath, Language: langTag}
	if lang == nil || len(source) == 0 {
		return doc, nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil || tree == nil {
		return doc, nil
	}
	defer tree.Close()

	var raws []rawDef
	seen := map[string]bool{}

	collect := func(nodeTypes []string, kind string) {
		for _, n := range findLegacyNodes(tree.RootNode(), nodeTypes) {
			nameNode := n.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			name := nameNode.Content(source)
			if name == "" {
				continue
			}
			if isJSFamily(langTag) && jsReservedWords[name] {
				continue
			}
			key := strconv.Itoa(int(nameNode.StartPoint().Row)) + ":" + name
			if seen[key] {
				continue
			}
			seen[key] = true
			raws = append(raws, rawDef{
				name:      name,
				startLine: nameNode.StartPoint().Row,
				startChar: nameNode.StartPoint().Column,
				endLine:   nameNode.EndPoint().Row,
				endChar:   nameNode.EndPoint().Column,
				encStart:  toSitterPoint(n.StartPoint()),
				encEnd:    toSitterPoint(n.EndPoint()),
				kind:      kind,
			})
		}
	}

	collect(legacyFunctionNodeTypes[langTag], "function")
	collect(legacyTypeNodeTypes[langTag], "class")

	return buildDocument(relativePath, langTag, raws), nil
}

func findLegacyNodes(root *sitter.Node, types []string) []*sitter.Node {
	if root == nil || len(types) == 0 {
		return nil
	}
	set := map[string]bool{}
	for _, t := range types {
		set[t] = true
	}
	var out []*sitter.Node
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if set[n.Type()] {
			out = append(out, n)
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return out
}

// toSitterPoint adapts a smacker Point to the official binding's Point
// shape used by rawDef, so buildDocument stays shared across both paths.
func toSitterPoint(p sitter.Point) officialPoint {
	return officialPoint{Row: uint(p.Row), Column: uint(p.Column)}
}

// officialPoint mirrors github.com/tree-sitter/go-tree-sitter's Point —
// rawDef stores encStart/encEnd as this shape regardless of which
// extraction path produced them.
type officialPoint = struct {
	Row, Column uint
}
