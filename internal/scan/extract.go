// Package scan discovers container and variant declarations in Go packages.
//
// Declarations are marked with line directives in doc comments:
//
//	//bindsadapter:adapter FooHolder BarHolder   on the container type
//	//bindsadapter:parent *ui.Group              construct-dispatch parent type
//	//bindsadapter:holder ui.Holder              variant instance type
//	//bindsadapter:constructor                   on a function returning T or *T
//	//bindsadapter:bind                          on the bind method of a variant
//	//bindsadapter:role listener Listener        on a constructor or bind method
//
// Without a constructor directive the function New<T> returning T or *T is
// the constructor of T.
package scan

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"slices"
	"strings"
	"unicode"

	"bindsadapter/internal/decl"
	"bindsadapter/internal/diag"
	"bindsadapter/internal/source"
)

// Package is one parsed Go package ready for extraction.
type Package struct {
	Name  string
	Path  string
	Dir   string
	Fset  *token.FileSet
	Files []*ast.File
	// IDs are the source.FileSet ids of Files, index for index.
	IDs []source.FileID
}

type typeDecl struct {
	name  string
	span  source.Span
	dirs  []directive
	imps  fileImports
	order int
}

type ctorCandidate struct {
	routine decl.Routine
	pointer bool
	marked  bool
}

type extractor struct {
	pkg   *Package
	rep   diag.Reporter
	types map[string]*typeDecl
	order []*typeDecl
	ctors map[string][]ctorCandidate
	binds map[string][]decl.Routine
}

// Extract builds the declaration snapshot of the given packages. Problems with
// single directives are reported and the rest of the package is still used.
func Extract(pkgs []*Package, r diag.Reporter) *decl.Snapshot {
	if r == nil {
		r = diag.NopReporter{}
	}
	var containers []decl.Container
	var variants []decl.Variant
	for _, pkg := range pkgs {
		ex := &extractor{
			pkg:   pkg,
			rep:   r,
			types: make(map[string]*typeDecl),
			ctors: make(map[string][]ctorCandidate),
			binds: make(map[string][]decl.Routine),
		}
		cs, vs := ex.run()
		containers = append(containers, cs...)
		variants = append(variants, vs...)
	}
	return decl.Build(containers, variants, r)
}

func (ex *extractor) spanIn(i int) func(ast.Node) source.Span {
	id := ex.pkg.IDs[i]
	return func(n ast.Node) source.Span {
		start := ex.pkg.Fset.Position(n.Pos()).Offset
		end := ex.pkg.Fset.Position(n.End()).Offset
		return source.SpanOf(id, start, end)
	}
}

func (ex *extractor) id(name string) string {
	return string(decl.Qualify(ex.pkg.Path, name))
}

func (ex *extractor) invalid(d directive, name string, format string, args ...any) {
	diag.ReportError(ex.rep, diag.ScanDirectiveInvalid, ex.id(name), d.span, fmt.Sprintf(format, args...)).Emit()
}

func (ex *extractor) run() ([]decl.Container, []decl.Variant) {
	var funcs []func()
	for i, f := range ex.pkg.Files {
		spanOf := ex.spanIn(i)
		imps := importsOf(f)
		for _, d := range f.Decls {
			switch d := d.(type) {
			case *ast.GenDecl:
				if d.Tok != token.TYPE {
					continue
				}
				for _, spec := range d.Specs {
					ts := spec.(*ast.TypeSpec)
					doc := ts.Doc
					if doc == nil && len(d.Specs) == 1 {
						doc = d.Doc
					}
					ex.addType(ts, doc, imps, spanOf)
				}
			case *ast.FuncDecl:
				// функции разбираем после типов: нужен полный список типов пакета
				funcs = append(funcs, func() { ex.addFunc(d, imps, spanOf) })
			}
		}
	}
	for _, fn := range funcs {
		fn()
	}

	var containers []decl.Container
	referenced := make(map[string]bool)
	var refOrder []string
	for _, t := range ex.order {
		adapter, ok := first(t.dirs, verbAdapter)
		if !ok {
			continue
		}
		c := decl.Container{
			ID:      decl.Qualify(ex.pkg.Path, t.name),
			Name:    t.name,
			Package: decl.Package{Name: ex.pkg.Name, Path: ex.pkg.Path, Dir: ex.pkg.Dir},
			Span:    t.span,
		}
		for _, arg := range splitRefs(adapter.raw) {
			c.Variants = append(c.Variants, decl.Qualify(ex.pkg.Path, arg))
			if !referenced[arg] {
				referenced[arg] = true
				refOrder = append(refOrder, arg)
			}
		}
		if d, ok := first(t.dirs, verbParent); ok {
			c.Parent = ex.directiveType(d, t)
		}
		if d, ok := first(t.dirs, verbHolder); ok {
			c.Holder = ex.directiveType(d, t)
		}
		c.Ctor, c.CtorPointer = ex.ctorOf(t.name)
		containers = append(containers, c)
	}

	var variants []decl.Variant
	for _, name := range refOrder {
		t, ok := ex.types[name]
		if !ok {
			continue // decl.Build reports the dangling reference
		}
		v := decl.Variant{
			ID:      decl.Qualify(ex.pkg.Path, name),
			Name:    name,
			Package: decl.Package{Name: ex.pkg.Name, Path: ex.pkg.Path, Dir: ex.pkg.Dir},
			Binds:   ex.binds[name],
			Span:    t.span,
		}
		v.Ctor, v.CtorPointer = ex.ctorOf(name)
		variants = append(variants, v)
	}
	return containers, variants
}

func (ex *extractor) addType(ts *ast.TypeSpec, doc *ast.CommentGroup, imps fileImports, spanOf func(ast.Node) source.Span) {
	name := ts.Name.Name
	dirs, bad := directives(doc, spanOf)
	for _, d := range bad {
		ex.invalid(d, name, "malformed directive on type %s", name)
	}
	kept := dirs[:0]
	seen := map[verb]bool{}
	for _, d := range dirs {
		switch d.verb {
		case verbAdapter, verbParent, verbHolder:
			if seen[d.verb] {
				ex.invalid(d, name, "duplicate %s directive on type %s", d.verb, name)
				continue
			}
			seen[d.verb] = true
			kept = append(kept, d)
		default:
			ex.invalid(d, name, "%s directive is not allowed on type %s", d.verb, name)
		}
	}
	if _, exists := ex.types[name]; exists {
		return
	}
	t := &typeDecl{name: name, span: spanOf(ts.Name), dirs: kept, imps: imps, order: len(ex.order)}
	ex.types[name] = t
	ex.order = append(ex.order, t)
}

func (ex *extractor) addFunc(fn *ast.FuncDecl, imps fileImports, spanOf func(ast.Node) source.Span) {
	name := fn.Name.Name
	if fn.Recv != nil {
		if recv := receiverType(fn.Recv); recv != "" {
			name = recv + "." + name
		}
	}
	dirs, bad := directives(fn.Doc, spanOf)
	for _, d := range bad {
		ex.invalid(d, name, "malformed directive on %s", name)
	}
	routine := ex.routineOf(fn, name, dirs, imps, spanOf)
	routine.PointerReceiver = pointerReceiver(fn.Recv)

	for _, d := range dirs {
		switch d.verb {
		case verbAdapter, verbParent, verbHolder:
			ex.invalid(d, name, "%s directive belongs on a type declaration, not on %s", d.verb, name)
		}
	}

	if fn.Recv != nil {
		recv := receiverType(fn.Recv)
		if d, ok := first(dirs, verbConstructor); ok {
			ex.invalid(d, name, "constructor directive on method %s", name)
		}
		if has(dirs, verbBind) && recv != "" {
			ex.binds[recv] = append(ex.binds[recv], routine)
		}
		return
	}
	if d, ok := first(dirs, verbBind); ok {
		ex.invalid(d, name, "bind directive on %s, which is not a method", name)
	}
	result, pointer, ok := constructedType(fn.Type)
	marked := has(dirs, verbConstructor)
	if !ok || ex.types[result] == nil {
		if marked {
			d, _ := first(dirs, verbConstructor)
			ex.invalid(d, name, "constructor %s must return a single T or *T declared in this package", name)
		}
		return
	}
	ex.ctors[result] = append(ex.ctors[result], ctorCandidate{routine: routine, pointer: pointer, marked: marked})
}

// ctorOf picks the marked constructor of a type, else New<T>.
func (ex *extractor) ctorOf(typeName string) (*decl.Routine, bool) {
	var chosen *ctorCandidate
	for i := range ex.ctors[typeName] {
		c := &ex.ctors[typeName][i]
		if !c.marked {
			continue
		}
		if chosen != nil {
			diag.ReportError(ex.rep, diag.ScanDirectiveInvalid, ex.id(c.routine.Name), c.routine.Span,
				fmt.Sprintf("type %s has more than one constructor directive, %s is used", typeName, chosen.routine.Name)).Emit()
			continue
		}
		chosen = c
	}
	if chosen == nil {
		for i := range ex.ctors[typeName] {
			if c := &ex.ctors[typeName][i]; c.routine.Name == "New"+typeName {
				chosen = c
				break
			}
		}
	}
	if chosen == nil {
		return nil, false
	}
	r := chosen.routine
	return &r, chosen.pointer
}

func (ex *extractor) routineOf(fn *ast.FuncDecl, qualified string, dirs []directive, imps fileImports, spanOf func(ast.Node) source.Span) decl.Routine {
	r := decl.Routine{Name: fn.Name.Name, Span: spanOf(fn.Name)}
	idx := 0
	for _, field := range fn.Type.Params.List {
		ref := typeRef(field.Type, imps)
		if len(field.Names) == 0 {
			r.Params = append(r.Params, decl.Param{Name: fmt.Sprintf("arg%d", idx), Type: ref, Span: spanOf(field)})
			idx++
			continue
		}
		for _, n := range field.Names {
			pname := n.Name
			if pname == "_" {
				pname = fmt.Sprintf("arg%d", idx)
			}
			r.Params = append(r.Params, decl.Param{Name: pname, Type: ref, Span: spanOf(n)})
			idx++
		}
	}
	for _, d := range dirs {
		if d.verb != verbRole {
			continue
		}
		i := slices.IndexFunc(r.Params, func(p decl.Param) bool { return p.Name == d.args[0] })
		if i < 0 {
			ex.invalid(d, qualified, "role directive names unknown parameter %q of %s", d.args[0], qualified)
			continue
		}
		// неизвестные роли молча пропускаются
		role, ok := decl.ParseRole(d.args[1])
		if !ok {
			continue
		}
		r.Params[i].Roles = append(r.Params[i].Roles, role)
	}
	return r
}

func (ex *extractor) directiveType(d directive, t *typeDecl) decl.TypeRef {
	expr, err := parser.ParseExpr(d.raw)
	if err != nil {
		ex.invalid(d, t.name, "%s directive on %s: %q is not a type expression", d.verb, t.name, d.raw)
		return decl.TypeRef{}
	}
	return typeRef(expr, t.imps)
}

// splitRefs splits a variant list on spaces and commas.
func splitRefs(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
}

func receiverType(recv *ast.FieldList) string {
	if recv == nil || len(recv.List) == 0 {
		return ""
	}
	expr := recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	switch e := expr.(type) {
	case *ast.IndexExpr:
		expr = e.X
	case *ast.IndexListExpr:
		expr = e.X
	}
	if id, ok := expr.(*ast.Ident); ok {
		return id.Name
	}
	return ""
}

func pointerReceiver(recv *ast.FieldList) bool {
	if recv == nil || len(recv.List) == 0 {
		return false
	}
	_, ok := recv.List[0].Type.(*ast.StarExpr)
	return ok
}

// constructedType matches func(...) T and func(...) *T.
func constructedType(ft *ast.FuncType) (name string, pointer bool, ok bool) {
	if ft.Results == nil || len(ft.Results.List) != 1 || len(ft.Results.List[0].Names) > 1 {
		return "", false, false
	}
	expr := ft.Results.List[0].Type
	if star, isStar := expr.(*ast.StarExpr); isStar {
		expr, pointer = star.X, true
	}
	id, isIdent := expr.(*ast.Ident)
	if !isIdent {
		return "", false, false
	}
	return id.Name, pointer, true
}

// isGeneratedByUs reports whether the file is one of our own outputs.
func isGeneratedByUs(f *ast.File, header string) bool {
	for _, cg := range f.Comments {
		if cg.Pos() >= f.Package {
			return false
		}
		for _, c := range cg.List {
			if strings.TrimSpace(c.Text) == header {
				return true
			}
		}
	}
	return false
}
