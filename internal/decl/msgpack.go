package decl

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"bindsadapter/internal/diag"
)

// EncodeMsgpack writes the snapshot in the binary form a host build pipeline
// can hand over instead of Go sources.
func EncodeMsgpack(w io.Writer, s *Snapshot) error {
	return encodeDocument(w, s.Document())
}

func encodeDocument(w io.Writer, doc *Document) error {
	if err := msgpack.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// DecodeMsgpack reads a binary snapshot. Positions are not part of the wire
// form, so every span of the result is source.NoSpan and diagnostics fall back
// to declaration IDs. The declarations are validated again by Build.
func DecodeMsgpack(rd io.Reader, r diag.Reporter) (*Snapshot, error) {
	var doc Document
	if err := msgpack.NewDecoder(rd).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if doc.Schema != SchemaVersion {
		return nil, fmt.Errorf("snapshot schema %d, want %d", doc.Schema, SchemaVersion)
	}
	doc.normalize()
	clearSpans(doc.Containers, doc.Variants)
	return Build(doc.Containers, doc.Variants, r), nil
}
