package scip

import (
	"reflect"
	"testing"
)

func TestRangePacking(t *testing.T) {
	cases := []struct {
		name string
		r    Range
		want []int32
	}{
		{"same-line", Range{StartLine: 10, StartChar: 5, EndLine: 10, EndChar: 15}, []int32{10, 5, 15}},
		{"multi-line", Range{StartLine: 2, StartChar: 0, EndLine: 4, EndChar: 1}, []int32{2, 0, 4, 1}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := c.r.Pack()
			if !reflect.DeepEqual(got, c.want) {
				t.Fatalf("Pack() = %v, want %v", got, c.want)
			}
			back := UnpackRange(got)
			if back != c.r {
				t.Fatalf("UnpackRange(Pack()) = %+v, want %+v", back, c.r)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	idx := &Index{
		Metadata: &Metadata{
			Version:     0,
			ToolInfo:    &ToolInfo{Name: "cog", Version: "0.1.0"},
			ProjectRoot: "",
		},
		Documents: []Document{
			{
				RelativePath: "main.go",
				Language:     "go",
				Occurrences: []Occurrence{
					{
						Range:          Range{StartLine: 2, StartChar: 5, EndLine: 2, EndChar: 10},
						Symbol:         "local main.go:0",
						SymbolRoles:    int32(RoleDefinition),
						EnclosingRange: Range{StartLine: 2, StartChar: 0, EndLine: 2, EndChar: 16},
						HasEnclosing:   true,
					},
				},
				Symbols: []SymbolInformation{
					{
						Symbol:      "local main.go:0",
						Kind:        int32(KindFunction),
						DisplayName: "hello",
					},
				},
			},
		},
	}

	data, err := Encode(idx)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(decoded.Documents) != 1 {
		t.Fatalf("expected 1 document, got %d", len(decoded.Documents))
	}
	doc := decoded.Documents[0]
	if doc.RelativePath != "main.go" || doc.Language != "go" {
		t.Fatalf("document mismatch: %+v", doc)
	}
	if len(doc.Occurrences) != 1 || doc.Occurrences[0].Symbol != "local main.go:0" {
		t.Fatalf("occurrence mismatch: %+v", doc.Occurrences)
	}
	if doc.Occurrences[0].Range != (Range{StartLine: 2, StartChar: 5, EndLine: 2, EndChar: 10}) {
		t.Fatalf("range mismatch: %+v", doc.Occurrences[0].Range)
	}
	if len(doc.Symbols) != 1 || doc.Symbols[0].DisplayName != "hello" || doc.Symbols[0].Kind != int32(KindFunction) {
		t.Fatalf("symbol mismatch: %+v", doc.Symbols)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/index.scip")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
