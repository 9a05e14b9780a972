package scip

import (
	"fmt"
	"os"

	cogerrors "cog/internal/errors"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"
)

// Encode serializes an Index to its protobuf wire bytes using the
// generated SCIP bindings, which guarantees field-number and wire-type
// fidelity with third-party SCIP tooling.
func Encode(idx *Index) ([]byte, error) {
	pb := toProto(idx)
	data, err := proto.Marshal(pb)
	if err != nil {
		return nil, cogerrors.Wrap(cogerrors.Codec, "encoding SCIP index", err)
	}
	return data, nil
}

// Decode parses protobuf wire bytes into an Index. Unknown fields are
// tolerated implicitly by proto.Unmarshal's skip-by-wire-type behavior.
func Decode(data []byte) (*Index, error) {
	var pb scippb.Index
	if err := proto.Unmarshal(data, &pb); err != nil {
		return nil, cogerrors.Wrap(cogerrors.Codec, "decoding SCIP index", err)
	}
	return fromProto(&pb), nil
}

// Load reads and decodes the index at path. A missing file yields a
// Filesystem error that wraps the os not-exist error, so callers may check
// for it with errors.Is and fall back to empty.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cogerrors.Wrap(cogerrors.Filesystem, fmt.Sprintf("index not found at %s", path), err)
		}
		return nil, cogerrors.Wrap(cogerrors.Filesystem, fmt.Sprintf("reading index at %s", path), err)
	}
	return Decode(data)
}

func toProto(idx *Index) *scippb.Index {
	pb := &scippb.Index{}
	if idx == nil {
		return pb
	}
	if idx.Metadata != nil {
		m := &scippb.Metadata{
			Version:              idx.Metadata.Version,
			ProjectRoot:          idx.Metadata.ProjectRoot,
			TextDocumentEncoding: scippb.TextEncoding(idx.Metadata.TextDocumentEncoding),
		}
		if idx.Metadata.ToolInfo != nil {
			m.ToolInfo = &scippb.ToolInfo{
				Name:    idx.Metadata.ToolInfo.Name,
				Version: idx.Metadata.ToolInfo.Version,
			}
		}
		pb.Metadata = m
	}
	for _, d := range idx.Documents {
		pb.Documents = append(pb.Documents, documentToProto(d))
	}
	for _, s := range idx.ExternalSymbols {
		pb.ExternalSymbols = append(pb.ExternalSymbols, symbolToProto(s))
	}
	return pb
}

func documentToProto(d Document) *scippb.Document {
	pd := &scippb.Document{
		RelativePath: d.RelativePath,
		Language:     d.Language,
	}
	for _, o := range d.Occurrences {
		pd.Occurrences = append(pd.Occurrences, occurrenceToProto(o))
	}
	for _, s := range d.Symbols {
		pd.Symbols = append(pd.Symbols, symbolToProto(s))
	}
	return pd
}

func occurrenceToProto(o Occurrence) *scippb.Occurrence {
	po := &scippb.Occurrence{
		Range:       o.Range.Pack(),
		Symbol:      o.Symbol,
		SymbolRoles: o.SymbolRoles,
		SyntaxKind:  scippb.SyntaxKind(o.SyntaxKind),
	}
	if o.HasEnclosing {
		po.EnclosingRange = o.EnclosingRange.Pack()
	}
	return po
}

func symbolToProto(s SymbolInformation) *scippb.SymbolInformation {
	ps := &scippb.SymbolInformation{
		Symbol:          s.Symbol,
		Documentation:   s.Documentation,
		Kind:            scippb.SymbolInformation_Kind(s.Kind),
		DisplayName:     s.DisplayName,
		EnclosingSymbol: s.EnclosingSymbol,
	}
	for _, r := range s.Relationships {
		ps.Relationships = append(ps.Relationships, &scippb.Relationship{
			Symbol:           r.Symbol,
			IsReference:      r.IsReference,
			IsImplementation: r.IsImplementation,
			IsTypeDefinition: r.IsTypeDefinition,
			IsDefinition:     r.IsDefinition,
		})
	}
	return ps
}

func fromProto(pb *scippb.Index) *Index {
	idx := &Index{}
	if pb.Metadata != nil {
		m := &Metadata{
			Version:              pb.Metadata.Version,
			ProjectRoot:          pb.Metadata.ProjectRoot,
			TextDocumentEncoding: int32(pb.Metadata.TextDocumentEncoding),
		}
		if pb.Metadata.ToolInfo != nil {
			m.ToolInfo = &ToolInfo{Name: pb.Metadata.ToolInfo.Name, Version: pb.Metadata.ToolInfo.Version}
		}
		idx.Metadata = m
	}
	for _, d := range pb.Documents {
		idx.Documents = append(idx.Documents, documentFromProto(d))
	}
	for _, s := range pb.ExternalSymbols {
		idx.ExternalSymbols = append(idx.ExternalSymbols, symbolFromProto(s))
	}
	return idx
}

func documentFromProto(pd *scippb.Document) Document {
	d := Document{RelativePath: pd.RelativePath, Language: pd.Language}
	for _, po := range pd.Occurrences {
		d.Occurrences = append(d.Occurrences, occurrenceFromProto(po))
	}
	for _, ps := range pd.Symbols {
		d.Symbols = append(d.Symbols, symbolFromProto(ps))
	}
	return d
}

func occurrenceFromProto(po *scippb.Occurrence) Occurrence {
	o := Occurrence{
		Range:       UnpackRange(po.Range),
		Symbol:      po.Symbol,
		SymbolRoles: po.SymbolRoles,
		SyntaxKind:  int32(po.SyntaxKind),
	}
	if len(po.EnclosingRange) > 0 {
		o.EnclosingRange = UnpackRange(po.EnclosingRange)
		o.HasEnclosing = true
	}
	return o
}

func symbolFromProto(ps *scippb.SymbolInformation) SymbolInformation {
	s := SymbolInformation{
		Symbol:          ps.Symbol,
		Documentation:   ps.Documentation,
		Kind:            int32(ps.Kind),
		DisplayName:     ps.DisplayName,
		EnclosingSymbol: ps.EnclosingSymbol,
	}
	for _, pr := range ps.Relationships {
		s.Relationships = append(s.Relationships, Relationship{
			Symbol:           pr.Symbol,
			IsReference:      pr.IsReference,
			IsImplementation: pr.IsImplementation,
			IsTypeDefinition: pr.IsTypeDefinition,
			IsDefinition:     pr.IsDefinition,
		})
	}
	return s
}
