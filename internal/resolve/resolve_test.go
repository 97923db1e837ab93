package resolve

import (
	"strings"
	"testing"

	"bindsadapter/internal/decl"
	"bindsadapter/internal/diag"
	"bindsadapter/internal/source"
)

func param(name string, roles ...decl.Role) decl.Param {
	return decl.Param{Name: name, Type: decl.TypeRef{Expr: "any"}, Roles: roles, Span: source.NoSpan}
}

func container(params ...decl.Param) *decl.Container {
	return &decl.Container{
		ID:   "p.MyAdapter",
		Name: "MyAdapter",
		Ctor: &decl.Routine{Name: "NewMyAdapter", Params: params, Span: source.NoSpan},
		Span: source.NoSpan,
	}
}

func variant(ctor ...decl.Param) *decl.Variant {
	return &decl.Variant{
		ID:   "p.FooHolder",
		Name: "FooHolder",
		Ctor: &decl.Routine{Name: "NewFooHolder", Params: ctor, Span: source.NoSpan},
		Span: source.NoSpan,
	}
}

func TestBuildBindingLaterParamWins(t *testing.T) {
	b := BuildBinding(container(
		param("first", decl.RoleListener, decl.RolePrefix),
		param("plain"),
		param("second", decl.RoleListener),
	))
	if f, _ := b.Field(decl.RoleListener); f != "second" {
		t.Errorf("expected later parameter to win Listener, got %q", f)
	}
	if f, _ := b.Field(decl.RolePrefix); f != "first" {
		t.Errorf("expected Prefix to stay on first, got %q", f)
	}
	if _, ok := b.Field(decl.RoleSuffix); ok {
		t.Error("expected Suffix to be unbound")
	}
	ps := b.Params()
	if len(ps) != 2 || ps[0].Name != "first" || ps[1].Name != "second" {
		t.Errorf("expected backing params [first second], got %+v", ps)
	}
}

func TestForConstructionSingleUnresolved(t *testing.T) {
	b := BuildBinding(container(param("listener", decl.RoleListener)))
	bag := diag.NewBag(10)
	args := ForConstruction(b, variant(param("binding"), param("listener", decl.RoleListener)), diag.BagReporter{Bag: bag})

	if bag.Len() != 0 {
		t.Fatalf("expected no diagnostics, got %d", bag.Len())
	}
	if got := strings.Join(args.Exprs(), ", "); got != "context, a.listener" {
		t.Errorf("unexpected args %q", got)
	}
	if !args.UsesImplicit() || args.Insufficient {
		t.Errorf("expected implicit use without insufficiency, got %+v", args)
	}
}

func TestForConstructionFirstKnownRoleWins(t *testing.T) {
	b := BuildBinding(container(param("pre", decl.RolePrefix)))
	args := ForConstruction(b, variant(param("x", decl.RoleSuffix, decl.RolePrefix, decl.RoleListener)), nil)
	if args.List[0].Expr != "a.pre" || args.List[0].Role != decl.RolePrefix {
		t.Errorf("expected Prefix binding, got %+v", args.List[0])
	}
}

func TestForConstructionInsufficientReportsOnce(t *testing.T) {
	b := BuildBinding(container())
	bag := diag.NewBag(10)
	args := ForConstruction(b, variant(param("x"), param("y"), param("z")), diag.BagReporter{Bag: bag})

	if !args.Insufficient {
		t.Fatal("expected insufficient bindings")
	}
	if bag.Count(diag.GenInsufficientRoleBinding) != 1 {
		t.Fatalf("expected exactly one diagnostic, got %d", bag.Len())
	}
	if d := bag.Items()[0]; d.Decl != "p.FooHolder" || !strings.Contains(d.Message, "x, y, z") {
		t.Errorf("unexpected diagnostic %+v", d)
	}
}

func TestForBindUsesItem(t *testing.T) {
	b := BuildBinding(container(param("listener", decl.RoleListener)))
	v := variant()
	bind := &decl.Routine{Name: "Bind", Params: []decl.Param{param("item"), param("l", decl.RoleListener)}, Span: source.NoSpan}
	args := ForBind(b, v, bind, nil)
	if got := strings.Join(args.Exprs(), ", "); got != "item, a.listener" {
		t.Errorf("unexpected bind args %q", got)
	}

	bag := diag.NewBag(10)
	bind2 := &decl.Routine{Name: "Bind", Params: []decl.Param{param("item"), param("extra")}, Span: source.NoSpan}
	ForBind(b, v, bind2, diag.BagReporter{Bag: bag})
	if bag.Count(diag.GenInsufficientRoleBinding) != 1 {
		t.Errorf("expected one diagnostic for the bind routine, got %d", bag.Len())
	}
	if !strings.Contains(bag.Items()[0].Message, "FooHolder.Bind") {
		t.Errorf("expected routine name in message, got %q", bag.Items()[0].Message)
	}
}

func TestNoParams(t *testing.T) {
	args := ForConstruction(BuildBinding(container()), &decl.Variant{ID: "p.A", Name: "A", Span: source.NoSpan}, nil)
	if len(args.List) != 0 || args.UsesImplicit() {
		t.Errorf("expected empty resolution, got %+v", args)
	}
}
