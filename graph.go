package crate

// DependencyGraph records the services each provider declares it needs.
// Edges to names that are not nodes are kept but never visited.
type DependencyGraph struct {
	edges map[string][]string
	names []string
}

// NewDependencyGraph creates an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{edges: make(map[string][]string)}
}

// AddNode sets the dependencies of name. Re-adding a node replaces its
// dependencies and keeps its original position.
func (g *DependencyGraph) AddNode(name string, dependencies []string) {
	if _, exists := g.edges[name]; !exists {
		g.names = append(g.names, name)
	}

	g.edges[name] = append([]string(nil), dependencies...)
}

// Has reports whether name is a node.
func (g *DependencyGraph) Has(name string) bool {
	_, ok := g.edges[name]

	return ok
}

// Dependencies returns the direct dependencies of name.
func (g *DependencyGraph) Dependencies(name string) []string {
	deps, ok := g.edges[name]
	if !ok {
		return nil
	}

	return append([]string(nil), deps...)
}

// Dependents returns the nodes that depend directly on name, in
// registration order.
func (g *DependencyGraph) Dependents(name string) []string {
	var out []string

	for _, n := range g.names {
		for _, dep := range g.edges[n] {
			if dep == name {
				out = append(out, n)

				break
			}
		}
	}

	return out
}

// Order returns the nodes so that every node follows its dependencies.
// Independent nodes keep their registration order. A cycle is reported as
// a CIRCULAR_DEPENDENCY error naming the chain.
func (g *DependencyGraph) Order() ([]string, error) {
	const (
		unvisited = iota
		visiting
		done
	)

	state := make(map[string]int, len(g.names))
	order := make([]string, 0, len(g.names))

	var (
		chain []string
		visit func(name string) error
	)

	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			for i, n := range chain {
				if n == name {
					return ErrCircularDependency(append(append([]string(nil), chain[i:]...), name))
				}
			}
		}

		deps, ok := g.edges[name]
		if !ok {
			return nil
		}

		state[name] = visiting
		chain = append(chain, name)

		for _, dep := range deps {
			if err := visit(dep); err != nil {
				return err
			}
		}

		chain = chain[:len(chain)-1]
		state[name] = done
		order = append(order, name)

		return nil
	}

	for _, name := range g.names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}

	return order, nil
}
