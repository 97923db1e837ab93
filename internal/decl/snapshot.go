package decl

import (
	"fmt"
	"go/parser"
	"go/token"
	"slices"
	"strings"

	"bindsadapter/internal/diag"
	"bindsadapter/internal/source"
)

// Snapshot is the read-only declaration model of one generation run.
// It is rebuilt from source every run and never mutated after Build.
type Snapshot struct {
	containers []Container
	variants   []Variant // sorted by ID
	index      map[ID]int
}

// Containers returns containers in declaration order. The slice is shared;
// callers must not modify it.
func (s *Snapshot) Containers() []Container {
	if s == nil {
		return nil
	}
	return s.containers
}

// Variants returns every known variant sorted by ID. The slice is shared.
func (s *Snapshot) Variants() []Variant {
	if s == nil {
		return nil
	}
	return s.variants
}

// Variant looks a variant up by ID.
func (s *Snapshot) Variant(id ID) (*Variant, bool) {
	if s == nil {
		return nil, false
	}
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return &s.variants[i], true
}

// VariantsOf resolves the container's edges in order. Build guarantees every
// edge of a container in the snapshot resolves.
func (s *Snapshot) VariantsOf(c *Container) []*Variant {
	out := make([]*Variant, 0, len(c.Variants))
	for _, id := range c.Variants {
		if v, ok := s.Variant(id); ok {
			out = append(out, v)
		}
	}
	return out
}

// Container looks a container up by ID.
func (s *Snapshot) Container(id ID) (*Container, bool) {
	for i := range s.Containers() {
		if s.containers[i].ID == id {
			return &s.containers[i], true
		}
	}
	return nil, false
}

// Build validates raw declarations and freezes them into a Snapshot.
//
// A container whose variant list is empty, names something that is not a type
// identifier, references a variant that is not declared or lives in another
// package gets a GenMalformedContainerAnnotation diagnostic and is left out of
// the snapshot, so no partial output is ever produced for it. The same goes
// for declarations whose names or type expressions are not valid Go, which
// only hand-written manifests and snapshots can carry. Other containers are
// unaffected.
func Build(containers []Container, variants []Variant, r diag.Reporter) *Snapshot {
	if r == nil {
		r = diag.NopReporter{}
	}
	snap := &Snapshot{
		variants: slices.Clone(variants),
		index:    make(map[ID]int, len(variants)),
	}
	slices.SortStableFunc(snap.variants, func(a, b Variant) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})
	// первый побеждает при повторе ID
	broken := make(map[ID]bool)
	kept := snap.variants[:0]
	for _, v := range snap.variants {
		if _, dup := snap.index[v.ID]; dup || broken[v.ID] {
			continue
		}
		if problem, bad := checkVariant(&v); bad {
			diag.ReportError(r, diag.GenMalformedContainerAnnotation, string(v.ID), v.Span,
				fmt.Sprintf("variant %s: %s", v.Name, problem)).Emit()
			broken[v.ID] = true
			continue
		}
		snap.index[v.ID] = len(kept)
		kept = append(kept, v)
	}
	snap.variants = kept

	for _, c := range containers {
		problem, bad := checkContainer(&c)
		if !bad {
			problem, bad = checkEdges(&c, snap.index, broken)
		}
		if bad {
			diag.ReportError(r, diag.GenMalformedContainerAnnotation, string(c.ID), c.Span,
				fmt.Sprintf("container %s: %s; no code is generated for it", c.Name, problem)).Emit()
			continue
		}
		c.Variants = slices.Clone(c.Variants)
		snap.containers = append(snap.containers, c)
	}
	return snap
}

func checkEdges(c *Container, known map[ID]int, broken map[ID]bool) (string, bool) {
	if len(c.Variants) == 0 {
		return "variant list is empty", true
	}
	for _, id := range c.Variants {
		if !id.Valid() {
			return fmt.Sprintf("variant reference %q is not a type name", string(id)), true
		}
		// сгенерированный код ссылается на варианты без квалификатора пакета
		if id.PkgPath() != c.Package.Path {
			return fmt.Sprintf("variant %s is declared in package %s, not in %s",
				id.Name(), id.PkgPath(), c.Package.Path), true
		}
		if broken[id] {
			return fmt.Sprintf("variant %s is malformed", id.Name()), true
		}
		if _, ok := known[id]; !ok {
			return fmt.Sprintf("variant %s is not declared", id.Name()), true
		}
	}
	return "", false
}

func checkContainer(c *Container) (string, bool) {
	if !token.IsIdentifier(c.Name) {
		return fmt.Sprintf("%q is not a type name", c.Name), true
	}
	if problem, bad := checkRoutine(c.Ctor, "constructor"); bad {
		return problem, true
	}
	for _, t := range []struct {
		what string
		ref  TypeRef
	}{{"parent", c.Parent}, {"holder", c.Holder}} {
		if !t.ref.IsZero() && !validTypeExpr(t.ref.Expr) {
			return fmt.Sprintf("%s type %q is not a type expression", t.what, t.ref.Expr), true
		}
	}
	return "", false
}

func checkVariant(v *Variant) (string, bool) {
	if !token.IsIdentifier(v.Name) {
		return fmt.Sprintf("%q is not a type name", v.Name), true
	}
	if problem, bad := checkRoutine(v.Ctor, "constructor"); bad {
		return problem, true
	}
	for i := range v.Binds {
		if problem, bad := checkRoutine(&v.Binds[i], "bind routine"); bad {
			return problem, true
		}
	}
	return "", false
}

func checkRoutine(r *Routine, what string) (string, bool) {
	if r == nil {
		return "", false
	}
	if !token.IsIdentifier(r.Name) {
		return fmt.Sprintf("%s name %q is not an identifier", what, r.Name), true
	}
	for i, p := range r.Params {
		if !token.IsIdentifier(p.Name) {
			return fmt.Sprintf("parameter %q of %s is not an identifier", p.Name, r.Name), true
		}
		expr := p.Type.Expr
		if rest, ok := strings.CutPrefix(expr, "..."); ok && i == len(r.Params)-1 {
			expr = rest
		}
		if !validTypeExpr(expr) {
			return fmt.Sprintf("parameter %s of %s: %q is not a type expression", p.Name, r.Name, p.Type.Expr), true
		}
	}
	return "", false
}

func validTypeExpr(expr string) bool {
	if strings.TrimSpace(expr) == "" {
		return false
	}
	_, err := parser.ParseExpr(expr)
	return err == nil
}

// clearSpans marks every span as pointing nowhere; used for decoded snapshots.
func clearSpans(containers []Container, variants []Variant) {
	clearRoutine := func(r *Routine) {
		if r == nil {
			return
		}
		r.Span = source.NoSpan
		for i := range r.Params {
			r.Params[i].Span = source.NoSpan
		}
	}
	for i := range containers {
		containers[i].Span = source.NoSpan
		clearRoutine(containers[i].Ctor)
	}
	for i := range variants {
		variants[i].Span = source.NoSpan
		clearRoutine(variants[i].Ctor)
		for j := range variants[i].Binds {
			clearRoutine(&variants[i].Binds[j])
		}
	}
}
