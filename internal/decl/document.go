package decl

import (
	"slices"

	"bindsadapter/internal/source"
)

// SchemaVersion is bumped whenever the Document layout changes.
const SchemaVersion uint16 = 1

// Document is the serialized form of a declaration set. It doubles as the
// hand-written manifest format: entries may omit package and ID, and variant
// references may be simple names, in which case Package fills them in.
type Document struct {
	Schema     uint16      `yaml:"schema,omitempty" msgpack:"schema"`
	Package    Package     `yaml:"package,omitempty" msgpack:"package"`
	Containers []Container `yaml:"containers" msgpack:"containers"`
	Variants   []Variant   `yaml:"variants" msgpack:"variants"`
}

// Document returns the snapshot in serializable form with fully qualified IDs.
func (s *Snapshot) Document() *Document {
	return &Document{
		Schema:     SchemaVersion,
		Containers: s.Containers(),
		Variants:   s.Variants(),
	}
}

// normalize fills package, IDs and qualified edges from document defaults.
func (d *Document) normalize() {
	for i := range d.Containers {
		c := &d.Containers[i]
		if c.Package.Path == "" {
			c.Package = d.Package
		}
		if c.ID == "" {
			c.ID = Qualify(c.Package.Path, c.Name)
		}
		for j, edge := range c.Variants {
			c.Variants[j] = Qualify(c.Package.Path, string(edge))
		}
	}
	for i := range d.Variants {
		v := &d.Variants[i]
		if v.Package.Path == "" {
			v.Package = d.Package
		}
		if v.ID == "" {
			v.ID = Qualify(v.Package.Path, v.Name)
		}
		if v.Name == "" {
			v.Name = v.ID.Name()
		}
		dropUnset(v.Ctor)
		for j := range v.Binds {
			dropUnset(&v.Binds[j])
		}
	}
	for i := range d.Containers {
		dropUnset(d.Containers[i].Ctor)
	}
}

func dropUnset(r *Routine) {
	if r == nil {
		return
	}
	for i := range r.Params {
		p := &r.Params[i]
		p.Roles = slices.DeleteFunc(p.Roles, func(role Role) bool { return role == RoleUnset })
		if len(p.Roles) == 0 {
			p.Roles = nil
		}
	}
}

// spanRoutine sets the routine span and its parameter spans to sp.
func spanRoutine(r *Routine, sp source.Span) {
	if r == nil {
		return
	}
	r.Span = sp
	for i := range r.Params {
		r.Params[i].Span = sp
	}
}
