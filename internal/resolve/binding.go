// Package resolve matches routine parameters to container fields by role.
package resolve

import (
	"bindsadapter/internal/decl"
)

// Binding maps each role to the container field that supplies it.
// Fields are named after the container constructor parameters.
type Binding struct {
	fields map[decl.Role]string
	order  []decl.Param // winning parameters, in constructor order
}

// BuildBinding groups the container constructor parameters by role. Every
// recognized role of a parameter maps to that parameter; when two parameters
// carry the same role the later one wins.
func BuildBinding(c *decl.Container) Binding {
	b := Binding{fields: make(map[decl.Role]string)}
	params := c.CtorParams()
	for _, p := range params {
		for _, role := range p.Roles {
			if role == decl.RoleUnset {
				continue
			}
			b.fields[role] = p.Name
		}
	}
	for _, p := range params {
		for _, role := range p.Roles {
			if b.fields[role] == p.Name {
				b.order = append(b.order, p)
				break
			}
		}
	}
	return b
}

// Field returns the field bound to role.
func (b Binding) Field(role decl.Role) (string, bool) {
	name, ok := b.fields[role]
	return name, ok
}

// Params returns the constructor parameters that back at least one role,
// in constructor order. The generated type keeps a copy of each.
func (b Binding) Params() []decl.Param {
	return b.order
}

// Len reports how many roles are bound.
func (b Binding) Len() int {
	return len(b.fields)
}
