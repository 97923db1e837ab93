package scan

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/tools/go/packages"

	"bindsadapter/internal/decl"
	"bindsadapter/internal/diag"
	"bindsadapter/internal/emit"
	"bindsadapter/internal/source"
)

// LoadOptions select the packages to scan.
type LoadOptions struct {
	Dir      string
	Patterns []string
	// Env overrides the environment of the go command; nil inherits it.
	Env []string
}

// Load locates packages with go/packages, parses them with comments and
// extracts their declarations. Only syntax is needed, so packages that do not
// type-check yet (the generated file may be missing) still load.
func Load(ctx context.Context, fs *source.FileSet, opts LoadOptions, r diag.Reporter) (*decl.Snapshot, error) {
	if r == nil {
		r = diag.NopReporter{}
	}
	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	cfg := &packages.Config{
		Context: ctx,
		Mode:    packages.NeedName | packages.NeedFiles | packages.NeedSyntax,
		Dir:     opts.Dir,
		Env:     opts.Env,
		Fset:    token.NewFileSet(),
		ParseFile: func(fset *token.FileSet, filename string, src []byte) (*ast.File, error) {
			return parser.ParseFile(fset, filename, src, parser.ParseComments|parser.SkipObjectResolution)
		},
	}
	loaded, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}
	slices.SortFunc(loaded, func(a, b *packages.Package) int { return strings.Compare(a.PkgPath, b.PkgPath) })

	pkgs := make([]*Package, 0, len(loaded))
	for _, lp := range loaded {
		for _, e := range lp.Errors {
			diag.ReportError(r, diag.ScanPackageError, lp.PkgPath, source.NoSpan, e.Error()).Emit()
		}
		pkg, err := fromLoaded(fs, lp, r)
		if err != nil {
			return nil, err
		}
		if pkg != nil {
			pkgs = append(pkgs, pkg)
		}
	}
	return Extract(pkgs, r), nil
}

func fromLoaded(fs *source.FileSet, lp *packages.Package, r diag.Reporter) (*Package, error) {
	if len(lp.Syntax) == 0 {
		return nil, nil
	}
	pkg := &Package{Name: lp.Name, Path: lp.PkgPath, Fset: lp.Fset}
	type entry struct {
		name string
		file *ast.File
	}
	entries := make([]entry, 0, len(lp.Syntax))
	for _, f := range lp.Syntax {
		entries = append(entries, entry{name: lp.Fset.File(f.Pos()).Name(), file: f})
	}
	slices.SortFunc(entries, func(a, b entry) int { return strings.Compare(a.name, b.name) })

	for _, e := range entries {
		if isGeneratedByUs(e.file, emit.Header) {
			continue
		}
		// #nosec G304 -- file names come from the go command
		content, err := os.ReadFile(e.name)
		if err != nil {
			diag.ReportError(r, diag.IOLoadFileError, lp.PkgPath, source.NoSpan,
				fmt.Sprintf("failed to read %s: %v", e.name, err)).Emit()
			continue
		}
		// содержимое кладём как есть: смещения go/token считаются по сырым байтам
		pkg.IDs = append(pkg.IDs, fs.Add(e.name, content, 0))
		pkg.Files = append(pkg.Files, e.file)
		if pkg.Dir == "" {
			pkg.Dir = filepath.Dir(e.name)
		}
	}
	return pkg, nil
}

// ParseSources parses in-memory files as one package; used by tests and by
// hosts that already hold the sources.
func ParseSources(fs *source.FileSet, pkgPath string, files map[string]string) (*Package, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)

	pkg := &Package{Path: pkgPath, Fset: token.NewFileSet()}
	for _, name := range names {
		src := files[name]
		f, err := parser.ParseFile(pkg.Fset, name, src, parser.ParseComments|parser.SkipObjectResolution)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		if pkg.Name == "" {
			pkg.Name = f.Name.Name
		}
		pkg.IDs = append(pkg.IDs, fs.AddVirtual(name, []byte(src)))
		pkg.Files = append(pkg.Files, f)
	}
	return pkg, nil
}
