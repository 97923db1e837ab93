package decl

import (
	"bytes"
	"fmt"
	"io"

	"fortio.org/safecast"
	"gopkg.in/yaml.v3"

	"bindsadapter/internal/diag"
	"bindsadapter/internal/source"
)

// LoadManifest reads a YAML declaration manifest into the file set and builds
// a snapshot from it. Read failures are returned as errors; a manifest that
// does not parse is reported as ScanManifestInvalid and yields an empty
// snapshot.
func LoadManifest(fs *source.FileSet, path string, r diag.Reporter) (*Snapshot, error) {
	id, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return DecodeManifest(fs, id, r), nil
}

// DecodeManifest parses an already loaded manifest file.
func DecodeManifest(fs *source.FileSet, id source.FileID, r diag.Reporter) *Snapshot {
	if r == nil {
		r = diag.NopReporter{}
	}
	file := fs.Get(id)
	fileSpan := source.Span{File: id}

	var root yaml.Node
	if err := yaml.Unmarshal(file.Content, &root); err != nil {
		diag.ReportError(r, diag.ScanManifestInvalid, file.Path, fileSpan, err.Error()).Emit()
		return Build(nil, nil, r)
	}
	var doc Document
	if err := root.Decode(&doc); err != nil {
		diag.ReportError(r, diag.ScanManifestInvalid, file.Path, fileSpan, err.Error()).Emit()
		return Build(nil, nil, r)
	}
	if doc.Schema > SchemaVersion {
		diag.ReportError(r, diag.ScanManifestInvalid, file.Path, fileSpan,
			fmt.Sprintf("manifest schema %d is newer than supported %d", doc.Schema, SchemaVersion)).Emit()
		return Build(nil, nil, r)
	}

	containerNodes := sequenceItems(&root, "containers")
	for i := range doc.Containers {
		sp := nodeSpan(file, id, containerNodes, i)
		doc.Containers[i].Span = sp
		spanRoutine(doc.Containers[i].Ctor, sp)
	}
	variantNodes := sequenceItems(&root, "variants")
	for i := range doc.Variants {
		sp := nodeSpan(file, id, variantNodes, i)
		v := &doc.Variants[i]
		v.Span = sp
		spanRoutine(v.Ctor, sp)
		for j := range v.Binds {
			spanRoutine(&v.Binds[j], sp)
		}
	}

	doc.normalize()
	return Build(doc.Containers, doc.Variants, r)
}

// EncodeYAML writes the snapshot as a manifest.
func EncodeYAML(w io.Writer, s *Snapshot) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s.Document()); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func sequenceItems(root *yaml.Node, key string) []*yaml.Node {
	n := root
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key && n.Content[i+1].Kind == yaml.SequenceNode {
			return n.Content[i+1].Content
		}
	}
	return nil
}

func nodeSpan(file *source.File, id source.FileID, nodes []*yaml.Node, i int) source.Span {
	if i >= len(nodes) {
		return source.Span{File: id}
	}
	line, err := safecast.Conv[uint32](nodes[i].Line)
	if err != nil {
		return source.Span{File: id}
	}
	col, err := safecast.Conv[uint32](nodes[i].Column)
	if err != nil {
		return source.Span{File: id}
	}
	off := file.Offset(source.LineCol{Line: line, Col: col})
	return source.Span{File: id, Start: off, End: off}
}
