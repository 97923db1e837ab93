package resolve

import (
	"fmt"
	"strings"

	"bindsadapter/internal/decl"
	"bindsadapter/internal/diag"
	"bindsadapter/internal/source"
)

const (
	// ContextExpr names the freshly inflated construction context.
	ContextExpr = "context"
	// ItemExpr names the list item at the bound position.
	ItemExpr = "item"
	// Receiver is the receiver name used by the generated methods.
	Receiver = "a"
)

// Arg is one resolved argument.
type Arg struct {
	Param    decl.Param
	Expr     string
	Role     decl.Role // RoleUnset for the implicit default
	Implicit bool
}

// Args is the resolution of one parameter sequence.
type Args struct {
	List []Arg
	// Unresolved holds the names of parameters no role could bind, in order.
	Unresolved []string
	// Insufficient is set when more than one parameter was left unresolved;
	// only the first one legitimately receives the implicit default.
	Insufficient bool
}

// UsesImplicit reports whether any argument is the implicit default.
func (a Args) UsesImplicit() bool {
	return len(a.Unresolved) > 0
}

// Exprs returns the argument expressions in parameter order.
func (a Args) Exprs() []string {
	out := make([]string, len(a.List))
	for i, arg := range a.List {
		out[i] = arg.Expr
	}
	return out
}

// ForConstruction resolves a variant constructor. Unresolved parameters get
// the construction context; a second unresolved parameter is reported once.
func ForConstruction(b Binding, v *decl.Variant, r diag.Reporter) Args {
	params := v.CtorParams()
	args := resolve(b, params, ContextExpr)
	if args.Insufficient {
		span := v.Span
		name := "&" + v.Name + "{}"
		if v.Ctor != nil {
			span = v.Ctor.Span
			name = v.Ctor.Name
		}
		report(r, v, span, name, "construction context", args.Unresolved)
	}
	return args
}

// ForBind resolves a bind routine. Unresolved parameters get the current item.
func ForBind(b Binding, v *decl.Variant, routine *decl.Routine, r diag.Reporter) Args {
	args := resolve(b, routine.Params, ItemExpr)
	if args.Insufficient {
		report(r, v, routine.Span, v.Name+"."+routine.Name, "current item", args.Unresolved)
	}
	return args
}

func resolve(b Binding, params []decl.Param, implicit string) Args {
	out := Args{List: make([]Arg, 0, len(params))}
	for _, p := range params {
		if arg, ok := bindByRole(b, p); ok {
			out.List = append(out.List, arg)
			continue
		}
		out.Unresolved = append(out.Unresolved, p.Name)
		out.List = append(out.List, Arg{Param: p, Expr: implicit, Implicit: true})
	}
	out.Insufficient = len(out.Unresolved) > 1
	return out
}

// bindByRole takes the first role of the parameter that the binding knows.
func bindByRole(b Binding, p decl.Param) (Arg, bool) {
	for _, role := range p.Roles {
		if field, ok := b.Field(role); ok {
			return Arg{Param: p, Expr: Receiver + "." + field, Role: role}, true
		}
	}
	return Arg{}, false
}

func report(r diag.Reporter, v *decl.Variant, span source.Span, routine, implicit string, unresolved []string) {
	if r == nil {
		return
	}
	diag.ReportError(r, diag.GenInsufficientRoleBinding, string(v.ID), span,
		fmt.Sprintf("%s: %s has %d parameters without a role binding (%s); only one can receive the %s",
			v.Name, routine, len(unresolved), strings.Join(unresolved, ", "), implicit)).
		WithNote(v.Span, "add a role directive matching a container constructor parameter").
		Emit()
}
