package synth

import (
	"fortio.org/safecast"

	"bindsadapter/internal/decl"
	"bindsadapter/internal/tagname"
)

// TagConst is one entry of the tag table.
type TagConst struct {
	Name string
	// Ident is the Go constant, Name prefixed with the generated type so that
	// containers of one package sharing a variant do not clash.
	Ident   string
	Value   int32
	Variant decl.ID
}

// TagTable assigns 0..N-1 to the variants in the given order. scope is the
// generated type name.
func TagTable(scope string, variants []*decl.Variant) []TagConst {
	out := make([]TagConst, 0, len(variants))
	for i, v := range variants {
		value, err := safecast.Conv[int32](i)
		if err != nil {
			panic(err) // больше 2^31 вариантов не бывает
		}
		name := tagname.Name(v.Name)
		out = append(out, TagConst{Name: name, Ident: scope + "_" + name, Value: value, Variant: v.ID})
	}
	return out
}
