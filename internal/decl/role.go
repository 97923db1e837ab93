package decl

import (
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Role is a semantic marker on a routine parameter. Roles are the only
// channel through which a container hands its own fields to variants.
type Role int

const (
	RoleUnset Role = iota
	RoleListener
	RolePrefix
	RoleSuffix
	RoleComplexPassthrough
)

var roleNames = [...]string{
	RoleUnset:              "Unset",
	RoleListener:           "Listener",
	RolePrefix:             "Prefix",
	RoleSuffix:             "Suffix",
	RoleComplexPassthrough: "ComplexPassthrough",
}

// roleAliases maps lower-cased marker spellings to roles. The Bind* and
// ComplexType forms are the marker names used by Android hosts; "sufix" is
// a spelling those hosts shipped with and is kept for compatibility.
var roleAliases = map[string]Role{
	"listener":           RoleListener,
	"bindlistener":       RoleListener,
	"prefix":             RolePrefix,
	"bindprefix":         RolePrefix,
	"suffix":             RoleSuffix,
	"sufix":              RoleSuffix,
	"bindsuffix":         RoleSuffix,
	"bindsufix":          RoleSuffix,
	"complexpassthrough": RoleComplexPassthrough,
	"complex":            RoleComplexPassthrough,
	"complextype":        RoleComplexPassthrough,
}

// ParseRole maps marker text to a Role. Unrecognized markers report false and
// must be dropped by the caller.
func ParseRole(s string) (Role, bool) {
	r, ok := roleAliases[strings.ToLower(strings.TrimSpace(s))]
	return r, ok
}

func (r Role) String() string {
	if r >= 0 && int(r) < len(roleNames) {
		return roleNames[r]
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// Roles lists every recognized role in enum order.
func Roles() []Role {
	return []Role{RoleListener, RolePrefix, RoleSuffix, RoleComplexPassthrough}
}

func (r Role) MarshalYAML() (any, error) {
	return r.String(), nil
}

// UnmarshalYAML maps unknown markers to RoleUnset; Document.normalize drops them.
func (r *Role) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: role must be a string", value.Line)
	}
	*r, _ = ParseRole(value.Value)
	return nil
}

func (r Role) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeString(r.String())
}

func (r *Role) DecodeMsgpack(dec *msgpack.Decoder) error {
	s, err := dec.DecodeString()
	if err != nil {
		return err
	}
	*r, _ = ParseRole(s)
	return nil
}
