package crate

// ServiceQuery defines criteria for querying services.
type ServiceQuery struct {
	// Kind filters by definition kind (value, factory, constructor).
	// Empty string matches all kinds.
	Kind string

	// Resolved filters by whether the service has been resolved.
	// nil matches all services.
	Resolved *bool

	// Companions filters companion instances in or out.
	// nil matches all services.
	Companions *bool
}

// Query returns detailed information about services matching the query criteria.
//
// Example:
//
//	resolved := true
//	results := crate.Query(c, crate.ServiceQuery{
//	    Kind:     "constructor",
//	    Resolved: &resolved,
//	})
func Query(c *Container, query ServiceQuery) []ServiceInfo {
	var results []ServiceInfo

	for _, name := range c.Services() {
		info := c.Inspect(name)

		if query.Kind != "" && info.Kind != query.Kind {
			continue
		}

		if query.Resolved != nil && info.Resolved != *query.Resolved {
			continue
		}

		if query.Companions != nil && (info.CompanionOf != "") != *query.Companions {
			continue
		}

		results = append(results, info)
	}

	return results
}

// QueryNames returns the names of services matching the query criteria.
func QueryNames(c *Container, query ServiceQuery) []string {
	results := Query(c, query)
	names := make([]string, len(results))
	for i, info := range results {
		names[i] = info.Name
	}
	return names
}

// FindByKind returns all services of a definition kind.
func FindByKind(c *Container, kind Kind) []ServiceInfo {
	return Query(c, ServiceQuery{Kind: kind.String()})
}

// FindResolved returns all services that have been resolved.
func FindResolved(c *Container) []ServiceInfo {
	resolved := true
	return Query(c, ServiceQuery{Resolved: &resolved})
}

// FindCompanions returns all companion instance services.
func FindCompanions(c *Container) []ServiceInfo {
	companions := true
	return Query(c, ServiceQuery{Companions: &companions})
}
