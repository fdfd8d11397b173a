package crate

// Merge combines definition maps. Later maps override earlier ones.
//
// Example:
//
//	defs := crate.Merge(coreDefinitions, pluginDefinitions)
func Merge(defs ...Definitions) Definitions {
	size := 0
	for _, d := range defs {
		size += len(d)
	}

	merged := make(Definitions, size)
	for _, d := range defs {
		for name, def := range d {
			merged[name] = def
		}
	}

	return merged
}

// GetMany resolves several services at once. It stops at the first failure.
//
// Example:
//
//	services, err := crate.GetMany(c, "document", "vue", "selectorList")
func GetMany(r Resolver, names ...string) (map[string]any, error) {
	services := make(map[string]any, len(names))

	for _, name := range names {
		service, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		services[name] = service
	}

	return services, nil
}
