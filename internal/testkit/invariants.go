package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"bindsadapter/internal/decl"
	"bindsadapter/internal/source"
	"bindsadapter/internal/synth"
)

// CheckImplInvariants verifies the structural promises of a synthesized type:
// 1) tag values are exactly 0..N-1 in declared variant order
// 2) tag names are pairwise distinct
// 3) both dispatches carry one case per tag, in tag order
func CheckImplInvariants(impl *synth.Impl, c *decl.Container) error {
	if impl == nil || c == nil {
		return fmt.Errorf("nil impl or container")
	}
	if len(impl.Tags) != len(c.Variants) {
		return fmt.Errorf("tag count %d, want %d", len(impl.Tags), len(c.Variants))
	}
	names := make(map[string]decl.ID, len(impl.Tags))
	for i, tag := range impl.Tags {
		if int(tag.Value) != i {
			return fmt.Errorf("tag %s has value %d at index %d", tag.Name, tag.Value, i)
		}
		if tag.Variant != c.Variants[i] {
			return fmt.Errorf("tag %d belongs to %s, want %s", i, tag.Variant, c.Variants[i])
		}
		if tag.Ident != impl.Name+"_"+tag.Name {
			return fmt.Errorf("tag %s is emitted as %s, want it scoped to %s", tag.Name, tag.Ident, impl.Name)
		}
		if prev, dup := names[tag.Name]; dup {
			return fmt.Errorf("tag name %s used by %s and %s", tag.Name, prev, tag.Variant)
		}
		names[tag.Name] = tag.Variant
	}

	if len(impl.Create.Cases) != len(impl.Tags) {
		return fmt.Errorf("construct-dispatch has %d cases for %d tags", len(impl.Create.Cases), len(impl.Tags))
	}
	if len(impl.Bind.Cases) != len(impl.Tags) {
		return fmt.Errorf("bind-dispatch has %d cases for %d tags", len(impl.Bind.Cases), len(impl.Tags))
	}
	for i, tag := range impl.Tags {
		if impl.Create.Cases[i].Tag != tag {
			return fmt.Errorf("construct case %d is for %s, want %s", i, impl.Create.Cases[i].Tag.Name, tag.Name)
		}
		if impl.Bind.Cases[i].Tag != tag {
			return fmt.Errorf("bind case %d is for %s, want %s", i, impl.Bind.Cases[i].Tag.Name, tag.Name)
		}
		if impl.Bind.Cases[i].Routine == "" && impl.Bind.Cases[i].Skipped == "" {
			return fmt.Errorf("bind case %d has neither an invocation nor a reason", i)
		}
	}
	return nil
}

// CheckSpanInvariants verifies that every declaration of a snapshot built
// from sources points inside its file.
func CheckSpanInvariants(fs *source.FileSet, snap *decl.Snapshot) error {
	check := func(what string, sp source.Span) error {
		f := fs.Get(sp.File)
		if f == nil {
			return fmt.Errorf("%s: span %v points to unknown file", what, sp)
		}
		size, err := safecast.Conv[uint32](len(f.Content))
		if err != nil {
			return fmt.Errorf("len content overflow: %w", err)
		}
		if sp.End < sp.Start || sp.End > size {
			return fmt.Errorf("%s: span %v outside of %s (%d bytes)", what, sp, f.Path, size)
		}
		return nil
	}
	for _, c := range snap.Containers() {
		if err := check(string(c.ID), c.Span); err != nil {
			return err
		}
	}
	for _, v := range snap.Variants() {
		if err := check(string(v.ID), v.Span); err != nil {
			return err
		}
		for _, b := range v.Binds {
			if err := check(string(v.ID)+"."+b.Name, b.Span); err != nil {
				return err
			}
		}
	}
	return nil
}
