package scan

import (
	"go/ast"
	"go/types"
	"path"
	"slices"
	"strconv"
	"strings"

	"bindsadapter/internal/decl"
)

// fileImports maps the qualifier used in a file to its import.
type fileImports map[string]decl.Import

func importsOf(f *ast.File) fileImports {
	out := make(fileImports, len(f.Imports))
	for _, spec := range f.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := assumedName(p)
		if spec.Name != nil {
			name = spec.Name.Name
		}
		if name == "_" || name == "." {
			continue
		}
		out[name] = decl.Import{Name: name, Path: p}
	}
	return out
}

// typeRef renders a type expression and the imports its qualifiers need.
func typeRef(expr ast.Expr, imps fileImports) decl.TypeRef {
	ref := decl.TypeRef{Expr: types.ExprString(expr)}
	seen := map[string]bool{}
	ast.Inspect(expr, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if id, ok := sel.X.(*ast.Ident); ok && !seen[id.Name] {
			if imp, ok := imps[id.Name]; ok {
				seen[id.Name] = true
				ref.Imports = append(ref.Imports, imp)
			}
		}
		return true
	})
	slices.SortFunc(ref.Imports, func(a, b decl.Import) int { return strings.Compare(a.Path, b.Path) })
	return ref
}

// assumedName guesses the package name of an import path the way goimports
// does: last element, skipping a major version suffix, without "go-" prefix
// and anything after the first dot or dash.
func assumedName(importPath string) string {
	base := path.Base(importPath)
	if strings.HasPrefix(base, "v") {
		if _, err := strconv.Atoi(base[1:]); err == nil {
			if dir := path.Dir(importPath); dir != "." {
				base = path.Base(dir)
			}
		}
	}
	base = strings.TrimPrefix(base, "go-")
	if i := strings.IndexAny(base, ".-"); i >= 0 {
		base = base[:i]
	}
	return base
}
