package decl

import (
	"go/token"
	"strings"

	"bindsadapter/internal/source"
)

// ID is the stable identifier of a declaration: "<package path>.<Name>".
type ID string

// Qualify turns a simple name written next to a container into an ID in the
// container's package. References that already contain a dot are kept as is.
func Qualify(pkgPath, ref string) ID {
	if strings.Contains(ref, ".") || pkgPath == "" {
		return ID(ref)
	}
	return ID(pkgPath + "." + ref)
}

// Name returns the simple name part.
func (id ID) Name() string {
	s := string(id)
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// PkgPath returns everything before the simple name.
func (id ID) PkgPath() string {
	s := string(id)
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[:i]
	}
	return ""
}

// Valid reports whether the simple name is a Go identifier.
func (id ID) Valid() bool {
	return token.IsIdentifier(id.Name())
}

type Import struct {
	Name string `yaml:"name,omitempty" msgpack:"name,omitempty"`
	Path string `yaml:"path" msgpack:"path"`
}

// TypeRef is a Go type expression as written at the declaration site, plus
// the imports the expression needs outside its own package.
type TypeRef struct {
	Expr    string   `yaml:"expr" msgpack:"expr"`
	Imports []Import `yaml:"imports,omitempty" msgpack:"imports,omitempty"`
}

func (t TypeRef) IsZero() bool {
	return t.Expr == ""
}

// Or returns t, or def when t is empty.
func (t TypeRef) Or(def string) TypeRef {
	if t.IsZero() {
		return TypeRef{Expr: def}
	}
	return t
}

type Param struct {
	Name  string      `yaml:"name" msgpack:"name"`
	Type  TypeRef     `yaml:"type" msgpack:"type"`
	Roles []Role      `yaml:"roles,omitempty" msgpack:"roles,omitempty"`
	Span  source.Span `yaml:"-" msgpack:"-"`
}

// Routine is a constructor or a bind method.
type Routine struct {
	Name   string  `yaml:"name" msgpack:"name"`
	Params []Param `yaml:"params,omitempty" msgpack:"params,omitempty"`
	// PointerReceiver is set for bind methods declared on *T.
	PointerReceiver bool        `yaml:"pointer_receiver,omitempty" msgpack:"pointer_receiver,omitempty"`
	Span            source.Span `yaml:"-" msgpack:"-"`
}

type Package struct {
	Name string `yaml:"name" msgpack:"name"`
	Path string `yaml:"path" msgpack:"path"`
	Dir  string `yaml:"dir,omitempty" msgpack:"dir,omitempty"`
}

// Variant is one concrete handler a container dispatches to.
type Variant struct {
	ID      ID      `yaml:"id,omitempty" msgpack:"id"`
	Name    string  `yaml:"name" msgpack:"name"`
	Package Package `yaml:"package,omitempty" msgpack:"package"`
	// Ctor is nil when the type has no constructor; it is then built as &T{}.
	Ctor        *Routine    `yaml:"constructor,omitempty" msgpack:"constructor,omitempty"`
	CtorPointer bool        `yaml:"pointer,omitempty" msgpack:"pointer,omitempty"`
	Binds       []Routine   `yaml:"bind,omitempty" msgpack:"bind,omitempty"`
	Span        source.Span `yaml:"-" msgpack:"-"`
}

// CtorParams returns the constructor parameters, empty without a constructor.
func (v *Variant) CtorParams() []Param {
	if v.Ctor == nil {
		return nil
	}
	return v.Ctor.Params
}

// Container is the dispatcher declaration together with its ordered variant
// edges. Edge order fixes the tag values.
type Container struct {
	ID          ID          `yaml:"id,omitempty" msgpack:"id"`
	Name        string      `yaml:"name" msgpack:"name"`
	Package     Package     `yaml:"package,omitempty" msgpack:"package"`
	Ctor        *Routine    `yaml:"constructor,omitempty" msgpack:"constructor,omitempty"`
	CtorPointer bool        `yaml:"pointer,omitempty" msgpack:"pointer,omitempty"`
	Variants    []ID        `yaml:"variants" msgpack:"variants"`
	Parent      TypeRef     `yaml:"parent,omitempty" msgpack:"parent,omitempty"`
	Holder      TypeRef     `yaml:"holder,omitempty" msgpack:"holder,omitempty"`
	Span        source.Span `yaml:"-" msgpack:"-"`
}

func (c *Container) CtorParams() []Param {
	if c.Ctor == nil {
		return nil
	}
	return c.Ctor.Params
}
