package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("adapter.go", []byte("package a"), 0)
	id2 := fs.Add("adapter.go", []byte("package b"), 0)
	if id1 != 0 || id2 != 1 {
		t.Fatalf("expected ids 0 and 1, got %d and %d", id1, id2)
	}

	latest, ok := fs.GetLatest("adapter.go")
	if !ok || latest != id2 {
		t.Errorf("expected latest id %d, got %d (ok=%v)", id2, latest, ok)
	}
	if got := string(fs.Get(id1).Content); got != "package a" {
		t.Errorf("expected first version to be kept, got %q", got)
	}
	if fs.Get(FileID(7)) != nil {
		t.Error("expected nil for unknown id")
	}
}

func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("decls.yaml", []byte("a\nb\n"))
	file := fs.Get(id)

	expected := []uint32{1, 3}
	if len(file.LineIdx) != len(expected) {
		t.Fatalf("expected LineIdx length %d, got %d", len(expected), len(file.LineIdx))
	}
	for i, val := range expected {
		if file.LineIdx[i] != val {
			t.Errorf("expected LineIdx[%d] = %d, got %d", i, val, file.LineIdx[i])
		}
	}
	if file.Flags&FileVirtual == 0 {
		t.Error("expected FileVirtual flag to be set")
	}
}

func TestLoadNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.go")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFpackage a\r\ntype X int\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	file := fs.Get(id)
	if string(file.Content) != "package a\ntype X int\n" {
		t.Errorf("unexpected content %q", file.Content)
	}
	if file.Flags&FileHadBOM == 0 || file.Flags&FileNormalizedCRLF == 0 {
		t.Errorf("expected BOM and CRLF flags, got %b", file.Flags)
	}
}

func TestResolveAndGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("x.go", []byte("package x\n\ntype Adapter struct{}\n"))

	start, end := fs.Resolve(Span{File: id, Start: 16, End: 23})
	if start != (LineCol{Line: 3, Col: 6}) {
		t.Errorf("expected start 3:6, got %d:%d", start.Line, start.Col)
	}
	if end != (LineCol{Line: 3, Col: 13}) {
		t.Errorf("expected end 3:13, got %d:%d", end.Line, end.Col)
	}

	file := fs.Get(id)
	if got := file.GetLine(3); got != "type Adapter struct{}" {
		t.Errorf("unexpected line 3: %q", got)
	}
	if got := file.GetLine(2); got != "" {
		t.Errorf("expected empty line 2, got %q", got)
	}
	if got := file.GetLine(9); got != "" {
		t.Errorf("expected empty result past EOF, got %q", got)
	}
}

func TestFileOffset(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("m.yaml", []byte("a: 1\nbb: 2\n"))
	file := fs.Get(id)

	if got := file.Offset(LineCol{Line: 2, Col: 1}); got != 5 {
		t.Errorf("expected offset 5, got %d", got)
	}
	if got := file.Offset(LineCol{Line: 2, Col: 3}); got != 7 {
		t.Errorf("expected offset 7, got %d", got)
	}
	if got := file.Offset(LineCol{Line: 40, Col: 1}); got != uint32(len(file.Content)) {
		t.Errorf("expected clamp to file size, got %d", got)
	}
	start, _ := fs.Resolve(Span{File: id, Start: 7, End: 7})
	if start != (LineCol{Line: 2, Col: 3}) {
		t.Errorf("expected round trip to 2:3, got %v", start)
	}
}
