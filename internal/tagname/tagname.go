// Package tagname derives the constant name of a variant's dispatch tag.
package tagname

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Prefix starts every tag name.
const Prefix = "TYPE"

// Name maps a simple variant name to its tag constant: every ASCII capital
// letter becomes "_" followed by the letter, every other character is
// replaced by its upper-case form, and the result is prefixed with TYPE.
//
//	MyViewHolder1 -> TYPE_MY_VIEW_HOLDER1
//	A             -> TYPE_A
//
// Only 'A'..'Z' get the separator; non-ASCII capitals pass through as is.
func Name(simple string) string {
	var b strings.Builder
	b.Grow(len(Prefix) + 2*len(simple))
	b.WriteString(Prefix)
	for _, r := range simple {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteByte('_')
			b.WriteRune(r)
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - ('a' - 'A'))
		case r < 0x80:
			b.WriteRune(r)
		default:
			// полное отображение регистра: ß -> SS
			b.WriteString(cases.Upper(language.Und).String(string(r)))
		}
	}
	return b.String()
}

// Collision is a set of variant names that map to one tag.
type Collision struct {
	Tag   string
	Names []string
}

// Collisions reports tags shared by more than one name, ordered by the first
// occurrence of each tag.
func Collisions(names []string) []Collision {
	pos := make(map[string]int, len(names))
	var all []Collision
	for _, n := range names {
		tag := Name(n)
		if i, ok := pos[tag]; ok {
			all[i].Names = append(all[i].Names, n)
			continue
		}
		pos[tag] = len(all)
		all = append(all, Collision{Tag: tag, Names: []string{n}})
	}
	return slices.DeleteFunc(all, func(c Collision) bool { return len(c.Names) < 2 })
}
