package diag

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"bindsadapter/internal/source"
)

type goldenDiagnostic struct {
	Severity string
	Code     string
	Location string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatGoldenDiagnostics renders diagnostics one per line, sorted by location,
// for golden comparisons in tests.
func FormatGoldenDiagnostics(diags []*Diagnostic, fs *source.FileSet, includeNotes bool) string {
	rendered := renderAll(diags, fs, includeNotes)
	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Location != dj.Location {
			return di.Location < dj.Location
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})
	return join(rendered)
}

// FormatShortDiagnostics renders diagnostics one per line in emission order,
// which for generation results is container declaration order.
func FormatShortDiagnostics(diags []*Diagnostic, fs *source.FileSet, includeNotes bool) string {
	return join(renderAll(diags, fs, includeNotes))
}

func renderAll(diags []*Diagnostic, fs *source.FileSet, includeNotes bool) []goldenDiagnostic {
	rendered := make([]goldenDiagnostic, 0, len(diags))
	for _, d := range diags {
		if d == nil {
			continue
		}
		rendered = append(rendered, locate(fs, d.Primary, d.Decl, severityLabel(d.Severity), d.Code, d.Message))
		if includeNotes {
			for _, note := range d.Notes {
				rendered = append(rendered, locate(fs, note.Span, d.Decl, "note", d.Code, note.Msg))
			}
		}
	}
	return rendered
}

func join(rendered []goldenDiagnostic) string {
	var b strings.Builder
	for i, d := range rendered {
		if d.Line > 0 {
			fmt.Fprintf(&b, "%s %s %s:%d:%d %s", d.Severity, d.Code, d.Location, d.Line, d.Column, d.Message)
		} else {
			fmt.Fprintf(&b, "%s %s %s %s", d.Severity, d.Code, d.Location, d.Message)
		}
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// locate resolves a span to path:line:col, falling back to the declaration id
// when the span does not point into the file set.
func locate(fs *source.FileSet, span source.Span, decl, sev string, code Code, msg string) goldenDiagnostic {
	out := goldenDiagnostic{
		Severity: sev,
		Code:     code.ID(),
		Location: decl,
		Message:  sanitizeMessage(msg),
	}
	if out.Location == "" {
		out.Location = "-"
	}
	if fs == nil || !span.Valid() {
		return out
	}
	file := fs.Get(span.File)
	if file == nil {
		return out
	}
	start, _ := fs.Resolve(span)
	out.Location = normalizePath(file.FormatPath("relative", fs.BaseDir()))
	out.Line = start.Line
	out.Column = start.Col
	return out
}

func normalizePath(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}

func severityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
