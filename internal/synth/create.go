package synth

import (
	"fmt"
	"regexp"
	"strings"

	"bindsadapter/internal/decl"
	"bindsadapter/internal/diag"
	"bindsadapter/internal/resolve"
)

// CreateCase constructs the variant for one tag.
type CreateCase struct {
	Tag     TagConst
	Variant string
	// Context is the right-hand side of the context prelude; empty when no
	// parameter takes the construction context.
	Context string
	// ContextPkg is the package qualifier the context prelude refers to.
	ContextPkg string
	// Ctor is the constructor function; empty means a composite literal.
	Ctor string
	Args []string
	// Addr is set when the constructor returns a value but the bind routine
	// has a pointer receiver; the case hands out the address of that value.
	Addr bool
	// Broken holds the panic message emitted instead of a construction.
	Broken string
}

// CreateDispatch is the whole construct-dispatch routine.
type CreateDispatch struct {
	Cases []CreateCase
	// Default is the format of the panic raised for an unknown tag; it takes
	// the tag value.
	Default string
}

var namedType = regexp.MustCompile(`^\*?(?:([A-Za-z_][A-Za-z0-9_]*)\.)?([A-Za-z_][A-Za-z0-9_]*)$`)

// BuildCreateDispatch builds one case per tag, in tag order.
func BuildCreateDispatch(c *decl.Container, tags []TagConst, variants []*decl.Variant, b resolve.Binding, opts Options) (CreateDispatch, []*diag.Diagnostic) {
	opts = opts.withDefaults()
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	out := CreateDispatch{
		Cases:   make([]CreateCase, 0, len(tags)),
		Default: "bindsadapter: unrecognized dispatch tag %d for " + c.Name + opts.ImplSuffix,
	}
	parent := c.Parent.Or("any")
	for i, v := range variants {
		args := resolve.ForConstruction(b, v, rep)
		cc := CreateCase{Tag: tags[i], Variant: v.Name, Args: args.Exprs(), Addr: addressed(v)}
		if v.Ctor != nil {
			cc.Ctor = v.Ctor.Name
		}
		switch {
		case args.Insufficient:
			cc.Args = nil
			cc.Broken = fmt.Sprintf("bindsadapter: %s cannot be constructed, parameters %s have no role binding",
				v.Name, strings.Join(args.Unresolved, ", "))
		case args.UsesImplicit():
			p := firstImplicit(args)
			var ok bool
			cc.Context, cc.ContextPkg, ok = contextExpr(p.Type, parent, opts)
			if !ok {
				diag.ReportError(rep, diag.GenInsufficientRoleBinding, string(v.ID), p.Span,
					fmt.Sprintf("%s: parameter %s of type %s cannot take the construction context from %s",
						v.Name, p.Name, p.Type.Expr, parent.Expr)).Emit()
				cc.Args = nil
				cc.Broken = fmt.Sprintf("bindsadapter: %s cannot be constructed, parameter %s of type %s has no inflate helper",
					v.Name, p.Name, p.Type.Expr)
			}
		}
		out.Cases = append(out.Cases, cc)
	}
	return out, bag.Items()
}

func firstImplicit(args resolve.Args) decl.Param {
	for _, a := range args.List {
		if a.Implicit {
			return a.Param
		}
	}
	return decl.Param{}
}

// contextExpr derives how the construction context is obtained from the
// parent: passed through when the types agree, inflated for named types.
// Unnamed types other than the parent have no inflate helper to call.
func contextExpr(t decl.TypeRef, parent decl.TypeRef, opts Options) (expr, pkg string, ok bool) {
	typ := strings.TrimSpace(t.Expr)
	if typ == "" || typ == strings.TrimSpace(parent.Expr) {
		return "parent", "", true
	}
	m := namedType.FindStringSubmatch(typ)
	if m == nil {
		return "", "", false
	}
	fn := opts.InflatePrefix + m[2]
	if m[1] != "" {
		fn = m[1] + "." + fn
	}
	return fn + "(parent)", m[1], true
}
