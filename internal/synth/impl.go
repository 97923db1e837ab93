package synth

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"bindsadapter/internal/decl"
	"bindsadapter/internal/diag"
	"bindsadapter/internal/resolve"
	"bindsadapter/internal/tagname"
)

// Impl is the generated type for one container: it embeds the container,
// keeps the role-bound constructor arguments and carries both dispatches.
type Impl struct {
	Package   decl.Package
	Container decl.ID
	Base      string // container type name
	Name      string
	// Embed is the embedded field type, "*Base" or "Base".
	Embed string
	// BaseCtor is the container constructor; empty means &Base{}.
	BaseCtor string
	Ctor     string
	Params   []decl.Param
	Fields   []decl.Param

	Parent         string
	Holder         string
	ItemMethod     string
	ViewTypeMethod string

	Tags    []TagConst
	Create  CreateDispatch
	Bind    BindDispatch
	Imports []decl.Import
}

// BuildImpl synthesizes the generated type of c. It returns nil when the
// container cannot produce compilable output at all (colliding tags or
// unresolvable variants); individual broken cases do not stop it.
func BuildImpl(snap *decl.Snapshot, c *decl.Container, opts Options) (*Impl, []*diag.Diagnostic) {
	opts = opts.withDefaults()
	var diags []*diag.Diagnostic

	variants := snap.VariantsOf(c)
	if len(variants) != len(c.Variants) || len(variants) == 0 {
		d := diag.NewError(diag.GenMalformedContainerAnnotation, string(c.ID), c.Span,
			fmt.Sprintf("container %s: variant list does not resolve; no code is generated for it", c.Name))
		return nil, append(diags, d)
	}
	if dups := duplicateTags(c, variants); len(dups) > 0 {
		return nil, dups
	}

	binding := resolve.BuildBinding(c)
	name := c.Name + opts.ImplSuffix
	tags := TagTable(name, variants)
	create, cd := BuildCreateDispatch(c, tags, variants, binding, opts)
	bind, bd := BuildBindDispatch(tags, variants, binding)
	diags = append(diags, cd...)
	diags = append(diags, bd...)

	impl := &Impl{
		Package:        c.Package,
		Container:      c.ID,
		Base:           c.Name,
		Name:           name,
		Embed:          "*" + c.Name,
		Ctor:           "New" + name,
		Params:         slices.Clone(c.CtorParams()),
		Fields:         fieldsOf(binding),
		Parent:         c.Parent.Or("any").Expr,
		Holder:         c.Holder.Or("any").Expr,
		ItemMethod:     opts.ItemMethod,
		ViewTypeMethod: opts.ViewTypeMethod,
		Tags:           tags,
		Create:         create,
		Bind:           bind,
	}
	if c.Ctor != nil {
		impl.BaseCtor = c.Ctor.Name
		if !c.CtorPointer {
			impl.Embed = c.Name
		}
	}
	impl.Imports = collectImports(c, variants, create)
	return impl, diags
}

func duplicateTags(c *decl.Container, variants []*decl.Variant) []*diag.Diagnostic {
	names := make([]string, len(variants))
	for i, v := range variants {
		names[i] = v.Name
	}
	var out []*diag.Diagnostic
	for _, col := range tagname.Collisions(names) {
		d := diag.NewError(diag.GenDuplicateTagName, string(c.ID), c.Span,
			fmt.Sprintf("container %s: variants %s map to the same tag %s; no code is generated for it",
				c.Name, strings.Join(col.Names, ", "), col.Tag))
		for _, v := range variants {
			if slices.Contains(col.Names, v.Name) {
				d.WithNote(v.Span, v.Name+" declared here")
			}
		}
		out = append(out, d)
	}
	return out
}

func fieldsOf(b resolve.Binding) []decl.Param {
	params := b.Params()
	out := make([]decl.Param, len(params))
	for i, p := range params {
		out[i] = p
		if rest, ok := strings.CutPrefix(p.Type.Expr, "..."); ok {
			out[i].Type.Expr = "[]" + rest
		}
	}
	return out
}

// collectImports gathers what the generated file refers to: the types in
// the mirrored constructor and method signatures, the packages of inflate
// helpers, and fmt for the default branch.
func collectImports(c *decl.Container, variants []*decl.Variant, create CreateDispatch) []decl.Import {
	seen := map[string]decl.Import{"fmt": {Path: "fmt"}}
	add := func(imps []decl.Import) {
		for _, imp := range imps {
			if imp.Path == c.Package.Path || imp.Path == "" {
				continue
			}
			if _, ok := seen[imp.Path]; !ok {
				seen[imp.Path] = imp
			}
		}
	}
	for _, p := range c.CtorParams() {
		add(p.Type.Imports)
	}
	add(c.Parent.Imports)
	add(c.Holder.Imports)
	for i, cc := range create.Cases {
		if cc.ContextPkg == "" {
			continue
		}
		for _, p := range variants[i].CtorParams() {
			for _, imp := range p.Type.Imports {
				if ImportName(imp) == cc.ContextPkg {
					add([]decl.Import{imp})
				}
			}
		}
	}
	out := make([]decl.Import, 0, len(seen))
	for _, imp := range seen {
		out = append(out, imp)
	}
	slices.SortFunc(out, func(a, b decl.Import) int { return strings.Compare(a.Path, b.Path) })
	return out
}

// ImportName is the identifier an import is referred to by.
func ImportName(imp decl.Import) string {
	if imp.Name != "" {
		return imp.Name
	}
	return path.Base(imp.Path)
}
