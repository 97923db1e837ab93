package diag

import (
	"testing"

	"bindsadapter/internal/source"
)

func TestBagLimitAndMerge(t *testing.T) {
	a := NewBag(2)
	for i := 0; i < 3; i++ {
		a.Add(NewError(GenMissingBindRoutine, "x", source.NoSpan, "m"))
	}
	if a.Len() != 2 {
		t.Fatalf("expected limit of 2, got %d", a.Len())
	}

	b := NewBag(0)
	b.Add(New(SevWarning, ScanDirectiveInvalid, "first", source.NoSpan, "w"))
	other := NewBag(0)
	other.Add(NewError(GenInsufficientRoleBinding, "second", source.NoSpan, "e"))
	b.Merge(other)

	if b.Len() != 2 || b.Items()[0].Decl != "first" || b.Items()[1].Decl != "second" {
		t.Errorf("expected merge to keep order, got %+v", b.Items())
	}
	if !b.HasErrors() {
		t.Error("expected HasErrors after merging an error")
	}
	if b.Count(GenInsufficientRoleBinding) != 1 {
		t.Errorf("expected one GEN2002, got %d", b.Count(GenInsufficientRoleBinding))
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(10)
	rb := ReportError(BagReporter{Bag: bag}, GenDuplicateTagName, "ui.A", source.NoSpan, "dup").
		WithNote(source.NoSpan, "other variant")
	rb.Emit()
	rb.Emit()
	if bag.Len() != 1 {
		t.Fatalf("expected a single diagnostic, got %d", bag.Len())
	}
	if len(bag.Items()[0].Notes) != 1 {
		t.Errorf("expected note to be kept")
	}
}

func TestCodeID(t *testing.T) {
	cases := map[Code]string{
		GenMalformedContainerAnnotation: "GEN2003",
		ScanDirectiveInvalid:            "SCN1001",
		IOLoadFileError:                 "IO4001",
		UnknownCode:                     "E0000",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Errorf("code %d: expected %s, got %s", code, want, got)
		}
	}
}

func TestBagDedup(t *testing.T) {
	b := NewBag(0)
	b.Add(New(SevWarning, ScanDirectiveInvalid, "ui.A", source.NoSpan, "unknown role \"x\""))
	b.Add(New(SevWarning, ScanDirectiveInvalid, "ui.A", source.NoSpan, "unknown role \"x\""))
	b.Add(New(SevWarning, ScanDirectiveInvalid, "ui.B", source.NoSpan, "unknown role \"x\""))
	b.Dedup()
	if b.Len() != 2 {
		t.Fatalf("expected 2 diagnostics after dedup, got %d", b.Len())
	}
	if !b.HasWarnings() || b.HasErrors() {
		t.Error("expected warnings only")
	}
}
