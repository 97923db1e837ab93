package driver

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bindsadapter/internal/buildpipeline"
	"bindsadapter/internal/decl"
	"bindsadapter/internal/diag"
	"bindsadapter/internal/emit"
	"bindsadapter/internal/scan"
	"bindsadapter/internal/source"
)

const adapterSrc = `package ui

import "example.com/widget"

//bindsadapter:adapter FooHolder BarHolder
//bindsadapter:parent *widget.Group
type MyAdapter struct {
	listener func(string)
	items    []string
}

//bindsadapter:role listener Listener
func NewMyAdapter(listener func(string)) *MyAdapter {
	return &MyAdapter{listener: listener}
}

func (a *MyAdapter) Item(position int) string      { return a.items[position] }
func (a *MyAdapter) ItemViewType(position int) int { return position % 2 }
`

const fooHolderSrc = `package ui

import "example.com/widget"

type FooHolder struct{ binding *widget.FooBinding }

//bindsadapter:role listener Listener
func NewFooHolder(binding *widget.FooBinding, listener func(string)) *FooHolder {
	return &FooHolder{binding: binding}
}

//bindsadapter:bind
//bindsadapter:role listener BindListener
func (h *FooHolder) Bind(item string, listener func(string)) {}
`

const barHolderSrc = `package ui

import "example.com/widget"

type BarHolder struct{}

func NewBarHolder(binding *widget.BarBinding) BarHolder { return BarHolder{} }

//bindsadapter:bind
func (h BarHolder) Bind(item string) {}
`

// Both FooHolder constructor parameters lack a role.
const fooHolderUnboundSrc = `package ui

import "example.com/widget"

type FooHolder struct{}

func NewFooHolder(binding *widget.FooBinding, count int) *FooHolder { return &FooHolder{} }

//bindsadapter:bind
func (h *FooHolder) Bind(item string) {}
`

// secondAdapterSrc has no bind routine on its only variant.
const secondAdapterSrc = `package ui

//bindsadapter:adapter Plain
type Other struct{}

type Plain struct{}
`

func snapshot(t *testing.T, files map[string]string) (*decl.Snapshot, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	pkg, err := scan.ParseSources(fs, "example.com/ui", files)
	if err != nil {
		t.Fatal(err)
	}
	bag := diag.NewBag(0)
	snap := scan.Extract([]*scan.Package{pkg}, diag.BagReporter{Bag: bag})
	if bag.Len() != 0 {
		t.Fatalf("unexpected scan diagnostics:\n%s", diag.FormatShortDiagnostics(bag.Items(), fs, false))
	}
	return snap, fs
}

func TestGenerateFooBar(t *testing.T) {
	snap, fs := snapshot(t, map[string]string{
		"adapter.go": adapterSrc,
		"foo.go":     fooHolderSrc,
		"bar.go":     barHolderSrc,
	})
	var rec buildpipeline.RecordingSink
	res, err := Generate(context.Background(), snap, Options{Jobs: 2, Progress: &rec})
	if err != nil {
		t.Fatal(err)
	}
	if res.Bag.Len() != 0 {
		t.Fatalf("expected no diagnostics, got:\n%s", diag.FormatShortDiagnostics(res.Bag.Items(), fs, false))
	}
	if len(res.Files) != 1 {
		t.Fatalf("expected one file, got %d", len(res.Files))
	}
	src := string(res.Files[0].Content)
	for _, want := range []string{
		"MyAdapterImpl_TYPE_FOO_HOLDER = 0",
		"MyAdapterImpl_TYPE_BAR_HOLDER = 1",
		"func (a *MyAdapterImpl) CreateViewHolder(parent *widget.Group, viewType int) any {",
		"context := widget.InflateFooBinding(parent)",
		"return NewFooHolder(context, a.listener)",
		"context := widget.InflateBarBinding(parent)",
		"return NewBarHolder(context)",
		"holder.(*FooHolder).Bind(item, a.listener)",
		"holder.(BarHolder).Bind(item)",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("generated source misses %q:\n%s", want, src)
		}
	}

	var sawQueued, sawEmitDone bool
	for _, ev := range rec.Events() {
		if ev.Container != "example.com/ui.MyAdapter" {
			continue
		}
		sawQueued = sawQueued || ev.Status == buildpipeline.StatusQueued
		sawEmitDone = sawEmitDone || (ev.Stage == buildpipeline.StageEmit && ev.Status == buildpipeline.StatusDone)
	}
	if !sawQueued || !sawEmitDone {
		t.Errorf("expected queued and emit-done events, got %+v", rec.Events())
	}
}

func TestGenerateInsufficientBindingKeepsOtherVariant(t *testing.T) {
	snap, fs := snapshot(t, map[string]string{
		"adapter.go": adapterSrc,
		"foo.go":     fooHolderUnboundSrc,
		"bar.go":     barHolderSrc,
	})
	res, err := Generate(context.Background(), snap, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Bag.Count(diag.GenInsufficientRoleBinding); got != 1 || res.Bag.Len() != 1 {
		t.Fatalf("expected exactly one GEN2002, got:\n%s", diag.FormatShortDiagnostics(res.Bag.Items(), fs, false))
	}
	d := res.Bag.Items()[0]
	if d.Decl != "example.com/ui.FooHolder" {
		t.Errorf("expected the diagnostic on FooHolder, got %q", d.Decl)
	}
	if len(res.Files) != 1 {
		t.Fatalf("expected BarHolder output to be produced, got %d files", len(res.Files))
	}
	src := string(res.Files[0].Content)
	if !strings.Contains(src, "return NewBarHolder(context)") || !strings.Contains(src, "holder.(BarHolder).Bind(item)") {
		t.Errorf("expected BarHolder dispatch:\n%s", src)
	}
	if strings.Contains(src, "NewFooHolder(") {
		t.Errorf("expected no FooHolder construction:\n%s", src)
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	files := map[string]string{
		"adapter.go": adapterSrc,
		"foo.go":     fooHolderUnboundSrc,
		"bar.go":     barHolderSrc,
		"other.go":   secondAdapterSrc,
	}
	run := func(jobs int) (*Result, string) {
		snap, fs := snapshot(t, files)
		res, err := Generate(context.Background(), snap, Options{Jobs: jobs})
		if err != nil {
			t.Fatal(err)
		}
		return res, diag.FormatShortDiagnostics(res.Bag.Items(), fs, false)
	}
	a, da := run(1)
	b, db := run(8)
	if da != db {
		t.Errorf("diagnostics differ between runs:\n%s\n---\n%s", da, db)
	}
	if len(a.Files) != len(b.Files) {
		t.Fatalf("file count differs: %d vs %d", len(a.Files), len(b.Files))
	}
	for i := range a.Files {
		if a.Files[i].Filename != b.Files[i].Filename || !bytes.Equal(a.Files[i].Content, b.Files[i].Content) {
			t.Errorf("file %d differs between runs", i)
		}
	}
	if a.Files[0].Container != "example.com/ui.MyAdapter" || a.Files[1].Container != "example.com/ui.Other" {
		t.Errorf("expected declaration order, got %s, %s", a.Files[0].Container, a.Files[1].Container)
	}
}

func TestGenerateMissingBindRoutine(t *testing.T) {
	snap, fs := snapshot(t, map[string]string{"other.go": secondAdapterSrc})
	res, err := Generate(context.Background(), snap, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Bag.Count(diag.GenMissingBindRoutine) != 1 {
		t.Fatalf("expected one GEN2001, got:\n%s", diag.FormatShortDiagnostics(res.Bag.Items(), fs, false))
	}
	src := string(res.Files[0].Content)
	if strings.Contains(src, "holder.(") {
		t.Errorf("expected no bind invocation:\n%s", src)
	}
	if !strings.Contains(src, "return &Plain{}") {
		t.Errorf("expected literal construction for Plain:\n%s", src)
	}
}

func TestGenerateDuplicateTagSkipsContainer(t *testing.T) {
	snap, _ := snapshot(t, map[string]string{"dup.go": `package ui

//bindsadapter:adapter FooBar Foo_bar
type Dup struct{}

type FooBar struct{}

type Foo_bar struct{}
`})
	res, err := Generate(context.Background(), snap, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Bag.Count(diag.GenDuplicateTagName) != 1 || len(res.Files) != 0 {
		t.Fatalf("expected the container to be skipped with GEN2004, got %d files, %d diagnostics", len(res.Files), res.Bag.Len())
	}
	if skipped := res.Skipped(); len(skipped) != 1 || skipped[0] != "example.com/ui.Dup" {
		t.Errorf("unexpected skipped list %v", skipped)
	}
}

func TestGenerateHonorsCancellation(t *testing.T) {
	snap, _ := snapshot(t, map[string]string{"other.go": secondAdapterSrc})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Generate(ctx, snap, Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGenerateTimingsAndObserver(t *testing.T) {
	snap, _ := snapshot(t, map[string]string{"other.go": secondAdapterSrc})
	var phases []PhaseEvent
	res, err := Generate(context.Background(), snap, Options{
		Timings:  true,
		Observer: func(ev PhaseEvent) { phases = append(phases, ev) },
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Bag.Count(diag.ObsTimings) != 1 {
		t.Error("expected a timings diagnostic")
	}
	if len(res.Timing.Phases) != 1 || res.Timing.Phases[0].Name != "example.com/ui.Other" {
		t.Errorf("unexpected timer report %+v", res.Timing)
	}
	if len(phases) != 2 || phases[0].Status != PhaseStart || phases[1].Status != PhaseEnd || phases[1].Name != "generate" {
		t.Errorf("unexpected phase events %+v", phases)
	}
}

func TestWriteFilesAndCheck(t *testing.T) {
	snap, _ := snapshot(t, map[string]string{"other.go": secondAdapterSrc})
	dir := t.TempDir()
	res, err := Generate(context.Background(), snap, Options{OutDir: dir})
	if err != nil {
		t.Fatal(err)
	}

	bag := diag.NewBag(0)
	r := diag.BagReporter{Bag: bag}
	if stale := Stale(WriteFiles(context.Background(), res.Files, true, nil, nil, r)); len(stale) != 1 || stale[0].Status != emit.Created {
		t.Fatalf("expected one missing file in check mode, got %+v", stale)
	}
	if _, err := os.Stat(filepath.Join(dir, "other_bindsadapter.go")); !os.IsNotExist(err) {
		t.Fatal("check mode must not write")
	}

	ws := WriteFiles(context.Background(), res.Files, false, nil, nil, r)
	if len(ws) != 1 || ws[0].Status != emit.Created {
		t.Fatalf("expected the file to be created, got %+v", ws)
	}
	if stale := Stale(WriteFiles(context.Background(), res.Files, true, nil, nil, r)); len(stale) != 0 {
		t.Errorf("expected no drift after writing, got %+v", stale)
	}
	if bag.Len() != 0 {
		t.Errorf("unexpected diagnostics %+v", bag.Items())
	}
}

func TestWriteFilesReportsFailures(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	files := []emit.GeneratedFile{
		{Container: "example.com/ui.A", Dir: filepath.Join(blocker, "sub"), Filename: "a_bindsadapter.go", Content: []byte("package ui\n")},
		{Container: "example.com/ui.B", Dir: dir, Filename: "b_bindsadapter.go", Content: []byte("package ui\n")},
	}
	bag := diag.NewBag(0)
	ws := WriteFiles(context.Background(), files, false, nil, nil, diag.BagReporter{Bag: bag})
	if bag.Count(diag.IOWriteFileError) != 1 || bag.Items()[0].Decl != "example.com/ui.A" {
		t.Fatalf("expected one IO4002 on A, got %+v", bag.Items())
	}
	if ws[1].Err != nil || ws[1].Status != emit.Created {
		t.Errorf("expected B to be written, got %+v", ws[1])
	}
}

func TestDiscoverRejectsConflictingInputs(t *testing.T) {
	_, err := Discover(context.Background(), source.NewFileSet(), Input{Manifest: "a.yaml", Snapshot: "a.mp"}, nil, nil, nil)
	if !errors.Is(err, ErrConflictingInputs) {
		t.Fatalf("expected ErrConflictingInputs, got %v", err)
	}
}

func TestDiscoverManifestAndSnapshot(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "decls.yaml")
	const doc = `package:
  name: ui
  path: example.com/ui
containers:
  - name: Other
    variants: [Plain]
variants:
  - name: Plain
    bind:
      - name: Bind
        params:
          - name: item
            type: {expr: string}
`
	if err := os.WriteFile(manifest, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	bag := diag.NewBag(0)
	snap, err := Discover(context.Background(), source.NewFileSet(), Input{Manifest: manifest}, nil, nil, diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatal(err)
	}
	if bag.Len() != 0 || len(snap.Containers()) != 1 {
		t.Fatalf("unexpected manifest result: %d containers, %+v", len(snap.Containers()), bag.Items())
	}

	mp := filepath.Join(dir, "decls.mp")
	var buf bytes.Buffer
	if err := decl.EncodeMsgpack(&buf, snap); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(mp, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	again, err := Discover(context.Background(), source.NewFileSet(), Input{Snapshot: mp}, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(again.Containers()) != 1 || again.Containers()[0].ID != "example.com/ui.Other" {
		t.Errorf("unexpected snapshot containers %+v", again.Containers())
	}
}

func TestGenerateRenderFailureSkipsOnlyThatContainer(t *testing.T) {
	ui := decl.Package{Name: "ui", Path: "example.com/ui"}
	plain := decl.Variant{ID: "example.com/ui.Plain", Name: "Plain", Binds: []decl.Routine{{Name: "Bind"}}}
	containers := []decl.Container{
		// выражение, но не тип: проходит разбор, ломает сгенерированный файл
		{ID: "example.com/ui.Bad", Name: "Bad", Package: ui, Variants: []decl.ID{plain.ID}, Holder: decl.TypeRef{Expr: "1 << 2"}},
		{ID: "example.com/ui.Good", Name: "Good", Package: ui, Variants: []decl.ID{plain.ID}},
	}
	bag := diag.NewBag(0)
	snap := decl.Build(containers, []decl.Variant{plain}, diag.BagReporter{Bag: bag})
	if bag.Len() != 0 || len(snap.Containers()) != 2 {
		t.Fatalf("expected both containers in the snapshot, got %d (%+v)", len(snap.Containers()), bag.Items())
	}

	var rec buildpipeline.RecordingSink
	res, err := Generate(context.Background(), snap, Options{Jobs: 2, Progress: &rec})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Bag.Count(diag.GenRenderFailed) != 1 || res.Bag.Items()[0].Decl != "example.com/ui.Bad" {
		t.Fatalf("expected one GEN2005 on Bad, got:\n%s", diag.FormatShortDiagnostics(res.Bag.Items(), nil, false))
	}
	if len(res.Files) != 1 || res.Files[0].Container != "example.com/ui.Good" {
		t.Fatalf("expected Good to be generated, got %+v", res.Files)
	}
	if skipped := res.Skipped(); len(skipped) != 1 || skipped[0] != "example.com/ui.Bad" {
		t.Errorf("unexpected skipped list %v", skipped)
	}
	var sawError bool
	for _, ev := range rec.Events() {
		sawError = sawError || (ev.Container == "example.com/ui.Bad" && ev.Status == buildpipeline.StatusError)
	}
	if !sawError {
		t.Errorf("expected an error event for Bad, got %+v", rec.Events())
	}
}

func TestGenerateManifestWithInvalidParamType(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "decls.yaml")
	const doc = `package:
  name: ui
  path: example.com/ui
containers:
  - name: Good
    variants: [Plain]
  - name: Bad
    variants: [Plain]
    constructor:
      name: NewBad
      params:
        - name: f
          type: {expr: "func(string"}
variants:
  - name: Plain
    bind:
      - name: Bind
`
	if err := os.WriteFile(manifest, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	bag := diag.NewBag(0)
	snap, err := Discover(context.Background(), source.NewFileSet(), Input{Manifest: manifest}, nil, nil, diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatal(err)
	}
	if bag.Count(diag.GenMalformedContainerAnnotation) != 1 || bag.Items()[0].Decl != "example.com/ui.Bad" {
		t.Fatalf("expected one GEN2003 on Bad, got %+v", bag.Items())
	}
	res, err := Generate(context.Background(), snap, Options{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(res.Files) != 1 || res.Files[0].Container != "example.com/ui.Good" {
		t.Fatalf("expected only Good to be generated, got %+v", res.Files)
	}
}
