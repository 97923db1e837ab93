package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bindsadapter/internal/diag"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadWalksUpAndOverlaysDefaults(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `
[generate]
impl_suffix = "Dispatcher"
jobs = 4
out_dir = "gen"

[output]
format = "short"
`)
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	m, ok, err := Load(nested)
	if err != nil || !ok {
		t.Fatalf("expected config to be found, got ok=%v err=%v", ok, err)
	}
	if m.Root != root {
		t.Errorf("expected root %q, got %q", root, m.Root)
	}
	if m.Config.Generate.ImplSuffix != "Dispatcher" || m.Config.Generate.Jobs != 4 {
		t.Errorf("unexpected generate section %+v", m.Config.Generate)
	}
	if m.Config.Generate.ItemMethod != "Item" || m.Config.Output.Color != "auto" {
		t.Errorf("expected defaults for unset keys, got %+v", m.Config)
	}
	if !m.IsDefined("generate", "jobs") || m.IsDefined("output", "color") {
		t.Error("unexpected IsDefined results")
	}
	if got := m.OutDir(); got != filepath.Join(root, "gen") {
		t.Errorf("expected out dir under root, got %q", got)
	}
	if opts := m.Config.SynthOptions(); opts.ImplSuffix != "Dispatcher" || opts.ViewTypeMethod != "ItemViewType" {
		t.Errorf("unexpected synth options %+v", opts)
	}
	if err := m.Validate(nil); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	m, ok, err := Load(t.TempDir())
	if err != nil || ok {
		t.Fatalf("expected no config, got ok=%v err=%v", ok, err)
	}
	if m.Config != Default() || m.IsDefined("generate") {
		t.Errorf("expected defaults, got %+v", m.Config)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[generate]\nimpl_sufix = \"X\"\n")
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected an error for a misspelled key")
	}
}

func TestValidateReportsEveryBadValue(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[generate]
impl_suffix = "-x"
file_suffix = ".txt"
item_method = "item"
jobs = -1

[output]
format = "xml"
`)
	m, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	bag := diag.NewBag(0)
	if err := m.Validate(diag.BagReporter{Bag: bag}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if got := bag.Count(diag.CfgInvalidValue); got != 5 {
		t.Errorf("expected 5 CFG5001 diagnostics, got %d", got)
	}
	if first := bag.Items()[0].Decl; first != path+": generate.impl_suffix" {
		t.Errorf("unexpected first diagnostic %q", first)
	}
}

func TestWriteDefault(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteDefault(dir)
	if err != nil {
		t.Fatal(err)
	}
	m, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Config != Default() {
		t.Errorf("expected the written file to decode to defaults, got %+v", m.Config)
	}
	if _, err := WriteDefault(dir); err == nil {
		t.Error("expected WriteDefault to refuse overwriting")
	}
}
