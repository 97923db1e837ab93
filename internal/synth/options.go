package synth

// Options are the naming knobs of the generated code.
type Options struct {
	// ImplSuffix is appended to the container name to name the generated type.
	ImplSuffix string
	// InflatePrefix names the function that builds a construction context
	// of a given type: ui.FooBinding is built by ui.<InflatePrefix>FooBinding(parent).
	InflatePrefix string
	// ItemMethod and ViewTypeMethod are container methods the generated code
	// calls to fetch the item and its tag for a position.
	ItemMethod     string
	ViewTypeMethod string
}

func DefaultOptions() Options {
	return Options{
		ImplSuffix:     "Impl",
		InflatePrefix:  "Inflate",
		ItemMethod:     "Item",
		ViewTypeMethod: "ItemViewType",
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.ImplSuffix == "" {
		o.ImplSuffix = def.ImplSuffix
	}
	if o.InflatePrefix == "" {
		o.InflatePrefix = def.InflatePrefix
	}
	if o.ItemMethod == "" {
		o.ItemMethod = def.ItemMethod
	}
	if o.ViewTypeMethod == "" {
		o.ViewTypeMethod = def.ViewTypeMethod
	}
	return o
}
