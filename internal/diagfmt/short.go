package diagfmt

import (
	"fmt"
	"io"

	"bindsadapter/internal/diag"
	"bindsadapter/internal/source"
)

// Short writes one line per diagnostic in bag order:
//
//	error GEN2002 ui/foo.go:12:6 FooHolder: ...
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, includeNotes bool) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	_, err := fmt.Fprintln(w, diag.FormatShortDiagnostics(bag.Items(), fs, includeNotes))
	return err
}

// Write dispatches on format.
func Write(w io.Writer, format Format, bag *diag.Bag, fs *source.FileSet, color bool) error {
	switch format {
	case FormatJSON:
		return JSON(w, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeRelative, IncludeNotes: true})
	case FormatShort:
		return Short(w, bag, fs, false)
	default:
		if bag == nil || bag.Len() == 0 {
			return nil
		}
		Pretty(w, bag, fs, PrettyOpts{Color: color, Context: 1, PathMode: PathModeRelative})
		return nil
	}
}
