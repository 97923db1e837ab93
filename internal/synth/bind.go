package synth

import (
	"fmt"

	"bindsadapter/internal/decl"
	"bindsadapter/internal/diag"
	"bindsadapter/internal/resolve"
)

// BindCase invokes the bind routine of one variant.
type BindCase struct {
	Tag TagConst
	// Holder is the asserted dynamic type of the variant instance.
	Holder  string
	Routine string
	// NeedsItem is set when an argument is the current item.
	NeedsItem bool
	Args      []string
	// Skipped explains an empty case body; the case has no invocation.
	Skipped string
}

// BindDispatch is the whole bind-dispatch routine.
type BindDispatch struct {
	Cases []BindCase
}

// BuildBindDispatch builds one case per tag, in tag order. A variant without
// exactly one bind routine is reported and keeps a case with no invocation.
func BuildBindDispatch(tags []TagConst, variants []*decl.Variant, b resolve.Binding) (BindDispatch, []*diag.Diagnostic) {
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	out := BindDispatch{Cases: make([]BindCase, 0, len(tags))}
	for i, v := range variants {
		bc := BindCase{Tag: tags[i], Holder: holderType(v)}
		switch len(v.Binds) {
		case 0:
			diag.ReportError(rep, diag.GenMissingBindRoutine, string(v.ID), v.Span,
				fmt.Sprintf("%s has no bind routine to dispatch to", v.Name)).Emit()
			bc.Skipped = v.Name + " has no bind routine"
		case 1:
			routine := &v.Binds[0]
			args := resolve.ForBind(b, v, routine, rep)
			if args.Insufficient {
				bc.Skipped = v.Name + "." + routine.Name + " has unbound parameters"
				break
			}
			bc.Routine = routine.Name
			bc.Args = args.Exprs()
			bc.NeedsItem = args.UsesImplicit()
		default:
			rb := diag.ReportError(rep, diag.GenMissingBindRoutine, string(v.ID), v.Span,
				fmt.Sprintf("%s marks %d routines as bind routine, expected one", v.Name, len(v.Binds)))
			for _, r := range v.Binds {
				rb.WithNote(r.Span, r.Name+" marked here")
			}
			rb.Emit()
			bc.Skipped = v.Name + " has more than one bind routine"
		}
		out.Cases = append(out.Cases, bc)
	}
	return out, bag.Items()
}

// holderType is the type the construct-dispatch hands out.
func holderType(v *decl.Variant) string {
	if v.Ctor == nil || v.CtorPointer || addressed(v) {
		return "*" + v.Name
	}
	return v.Name
}

// addressed reports whether a value returned by the constructor has to be
// taken by address so that its bind routine can be called on it.
func addressed(v *decl.Variant) bool {
	return v.Ctor != nil && !v.CtorPointer && len(v.Binds) == 1 && v.Binds[0].PointerReceiver
}
