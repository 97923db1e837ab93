package scan

import (
	"go/ast"
	"strings"

	"bindsadapter/internal/source"
)

// DirectivePrefix starts every directive comment, with no space after //.
const DirectivePrefix = "//bindsadapter:"

type verb string

const (
	verbAdapter     verb = "adapter"
	verbParent      verb = "parent"
	verbHolder      verb = "holder"
	verbConstructor verb = "constructor"
	verbBind        verb = "bind"
	verbRole        verb = "role"
)

// arity: minimum and maximum argument count, -1 for unbounded.
var arity = map[verb][2]int{
	verbAdapter:     {0, -1},
	verbParent:      {1, -1},
	verbHolder:      {1, -1},
	verbConstructor: {0, 0},
	verbBind:        {0, 0},
	verbRole:        {2, 2},
}

type directive struct {
	verb verb
	args []string
	raw  string // everything after the verb, trimmed
	span source.Span
}

// directives extracts bindsadapter directives from a doc comment group.
// Malformed lines are returned separately so the caller can report them.
func directives(doc *ast.CommentGroup, spanOf func(ast.Node) source.Span) (out []directive, bad []directive) {
	if doc == nil {
		return nil, nil
	}
	for _, c := range doc.List {
		rest, ok := strings.CutPrefix(c.Text, DirectivePrefix)
		if !ok {
			continue
		}
		fields := strings.Fields(rest)
		d := directive{span: spanOf(c)}
		if len(fields) == 0 {
			bad = append(bad, d)
			continue
		}
		d.verb = verb(fields[0])
		d.args = fields[1:]
		d.raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), fields[0]))
		limits, known := arity[d.verb]
		if !known || len(d.args) < limits[0] || (limits[1] >= 0 && len(d.args) > limits[1]) {
			bad = append(bad, d)
			continue
		}
		out = append(out, d)
	}
	return out, bad
}

func has(ds []directive, v verb) bool {
	for _, d := range ds {
		if d.verb == v {
			return true
		}
	}
	return false
}

func first(ds []directive, v verb) (directive, bool) {
	for _, d := range ds {
		if d.verb == v {
			return d, true
		}
	}
	return directive{}, false
}
