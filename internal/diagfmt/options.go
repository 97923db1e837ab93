package diagfmt

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto keeps short paths and shortens long absolute ones.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

func (m PathMode) String() string {
	switch m {
	case PathModeAbsolute:
		return "absolute"
	case PathModeRelative:
		return "relative"
	case PathModeBasename:
		return "basename"
	}
	return "auto"
}

// Format selects a renderer.
type Format string

const (
	FormatPretty Format = "pretty"
	FormatShort  Format = "short"
	FormatJSON   Format = "json"
)

// ParseFormat accepts pretty, short and json.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatPretty, FormatShort, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown diagnostics format %q (expected pretty|short|json)", s)
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color    bool
	Context  int8 // строк контекста перед основной строкой
	PathMode PathMode
	// ShowNotes prints notes under each diagnostic. Timing payloads are
	// printed only with ShowNotes.
	ShowNotes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool // добавить line/col
	PathMode         PathMode
	Max              int // обрезка вывода, не Bag
	IncludeNotes     bool
}

// ColorEnabled resolves an auto|on|off mode against the output file.
// NO_COLOR in the environment turns auto off.
func ColorEnabled(mode string, f *os.File) bool {
	switch strings.ToLower(mode) {
	case "on", "always", "true":
		return true
	case "off", "never", "false":
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
