package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"bindsadapter/internal/diag"
	"bindsadapter/internal/source"
)

type palette struct {
	err, warn, info, note *color.Color
	code, gutter, caret   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgBlue),
		code:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.code, p.gutter, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty форматирует диагностики в человекочитаемый вид, в порядке bag.Items().
// Для каждой диагностики:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//
// затем строки контекста с подчёркиванием ^~~~ по Span и заметки. Без
// позиции вместо пути печатается идентификатор декларации.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil {
		return
	}
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		writeOne(w, p, d, fs, opts)
	}
}

func writeOne(w io.Writer, p palette, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	fmt.Fprintf(w, "%s: %s %s: %s\n",
		location(fs, d.Primary, d.Decl, opts.PathMode),
		p.severity(d.Severity).Sprint(d.Severity.String()),
		p.code.Sprint(d.Code.ID()),
		d.Message)
	writeSnippet(w, p, fs, d.Primary, opts.Context)

	// заметки к info/warning (в том числе JSON таймингов) только по запросу
	if !opts.ShowNotes && d.Severity < diag.SevError {
		return
	}
	for _, n := range d.Notes {
		if n.Span.Valid() && fs != nil && fs.Get(n.Span.File) != nil {
			fmt.Fprintf(w, "  %s %s: %s\n", p.note.Sprint("note:"), location(fs, n.Span, "", opts.PathMode), n.Msg)
			continue
		}
		fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("note:"), n.Msg)
	}
}

func location(fs *source.FileSet, span source.Span, decl string, mode PathMode) string {
	if fs == nil || !span.Valid() {
		if decl == "" {
			return "-"
		}
		return decl
	}
	f := fs.Get(span.File)
	if f == nil {
		return decl
	}
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", f.FormatPath(mode.String(), fs.BaseDir()), start.Line, start.Col)
}

func writeSnippet(w io.Writer, p palette, fs *source.FileSet, span source.Span, context int8) {
	if fs == nil || !span.Valid() {
		return
	}
	f := fs.Get(span.File)
	if f == nil {
		return
	}
	start, end := fs.Resolve(span)
	if start.Line == 0 {
		return
	}
	first := start.Line
	if context > 0 {
		first = max(1, start.Line-uint32(context)) //nolint:gosec // context > 0
	}
	width := len(fmt.Sprint(start.Line))
	for n := first; n <= start.Line; n++ {
		fmt.Fprintf(w, " %s %s\n", p.gutter.Sprintf("%*d |", width, n), f.GetLine(n))
	}

	line := f.GetLine(start.Line)
	col := min(max(int(start.Col)-1, 0), len(line))
	stop := len(line)
	if end.Line == start.Line {
		stop = min(int(end.Col)-1, len(line))
	}
	marks := "^"
	if stop-col > 1 {
		marks += strings.Repeat("~", runewidth.StringWidth(line[col+1:stop]))
	}
	fmt.Fprintf(w, " %s %s%s\n", p.gutter.Sprintf("%*s |", width, ""), pad(line[:col]), p.caret.Sprint(marks))
}

// pad replaces text by blanks of the same display width, keeping tabs.
func pad(prefix string) string {
	var sb strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			sb.WriteByte('\t')
			continue
		}
		sb.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return sb.String()
}

// Summary is the closing line: "2 errors, 1 warning".
func Summary(bag *diag.Bag) string {
	if bag == nil {
		return "no diagnostics"
	}
	var errs, warns int
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	if errs == 0 && warns == 0 {
		return "no problems"
	}
	return fmt.Sprintf("%s, %s", plural(errs, "error"), plural(warns, "warning"))
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
