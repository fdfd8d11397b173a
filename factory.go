package crate

import (
	"sort"
	"strings"

	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/xraph/crate/reflection"
)

// Factory builds containers from service definitions.
type Factory struct {
	logger     *zap.Logger
	middleware []Middleware
}

// provider knows how to produce one service on first demand.
type provider struct {
	name        string
	def         Definition
	companionOf string
	deps        []string
	build       func(r *resolution) (any, error)
}

// NewFactory creates a container factory.
func NewFactory(opts ...Option) *Factory {
	f := &Factory{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Make creates a container holding the given definitions. Nothing is
// resolved and nothing is validated here: broken definitions fail when
// their service is first requested.
func (f *Factory) Make(defs Definitions) *Container {
	c := &Container{
		id:         ksuid.New(),
		providers:  make(map[string]*provider, len(defs)),
		instances:  make(map[string]any),
		building:   make(map[string]*build),
		graph:      NewDependencyGraph(),
		middleware: append(middlewareChain(nil), f.middleware...),
		logger:     f.logger,
	}

	keys := make([]string, 0, len(defs))
	for key := range defs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	classified := make(map[string]Definition, len(keys))
	for _, key := range keys {
		def := classify(defs[key])
		classified[key] = def
		c.add(newProvider(key, def))
	}

	for _, key := range keys {
		def := classified[key]

		companion, ok := def.CompanionName(key)
		if !ok {
			continue
		}

		if existing, taken := c.providers[companion]; taken {
			c.logger.Warn("companion name already registered",
				zap.String("container", c.ID()),
				zap.String("service", key),
				zap.String("companion", companion),
				zap.String("registered_by", registeredBy(existing)),
			)

			continue
		}

		c.add(newCompanion(companion, key, def))
	}

	c.logger.Debug("container made",
		zap.String("container", c.ID()),
		zap.Int("services", len(c.order)),
	)

	return c
}

func (c *Container) add(p *provider) {
	c.providers[p.name] = p
	c.order = append(c.order, p.name)
	c.graph.AddNode(p.name, p.deps)

	c.logger.Debug("service registered",
		zap.String("container", c.ID()),
		zap.String("service", p.name),
		zap.String("kind", p.def.Kind().String()),
		zap.Strings("dependencies", p.deps),
	)
}

func registeredBy(p *provider) string {
	if p.companionOf != "" {
		return p.companionOf
	}

	return p.name
}

// newProvider classifies a definition into one of the resolution strategies.
func newProvider(name string, def Definition) *provider {
	p := &provider{name: name, def: def}

	switch {
	case def.Kind() == KindValue:
		p.build = func(*resolution) (any, error) {
			return def.Target(), nil
		}
	case def.IsInjectable():
		args := def.Arguments()
		p.deps = injectedDeps(def, args)
		p.build = func(r *resolution) (any, error) {
			return buildInjected(name, def, args, r)
		}
	case def.Kind() == KindConstructor:
		p.build = func(*resolution) (any, error) {
			return def.Target(), nil
		}
	default:
		p.deps, p.build = factoryBuild(name, def)
	}

	return p
}

// newCompanion creates the provider for the instance companion of a
// constructor. It always builds with injected arguments.
func newCompanion(name, owner string, def Definition) *provider {
	args := def.Arguments()

	return &provider{
		name:        name,
		def:         def,
		companionOf: owner,
		deps:        injectedDeps(def, args),
		build: func(r *resolution) (any, error) {
			return buildInjected(name, def, args, r)
		},
	}
}

// factoryBuild handles non-injectable functions: they either receive the
// whole registry or have each named argument looked up by name.
func factoryBuild(name string, def Definition) ([]string, func(*resolution) (any, error)) {
	info, err := analyzeCallable(def.Target(), def.Arguments())
	if err != nil {
		return nil, func(*resolution) (any, error) {
			return nil, ErrInvalidDefinition(name, err.Error())
		}
	}

	if info.takesContainer() {
		return nil, func(r *resolution) (any, error) {
			return info.callWithContainer(name, r)
		}
	}

	return info.args, func(r *resolution) (any, error) {
		values := make([]any, len(info.args))

		for i, arg := range info.args {
			if !r.Has(arg) {
				continue
			}

			value, err := r.Get(arg)
			if err != nil {
				return nil, err
			}
			values[i] = value
		}

		return info.call(name, values)
	}
}

// buildInjected resolves every declared argument by deep path lookup, then
// calls the function or instantiates the class.
func buildInjected(name string, def Definition, args []string, r *resolution) (any, error) {
	params := def.Params()

	first := func(segment string) (any, bool, error) {
		if !r.Has(segment) {
			return nil, false, nil
		}

		value, err := r.Get(segment)
		if err != nil {
			return nil, false, err
		}

		return value, true, nil
	}

	values := make([]any, len(args))

	for i, arg := range args {
		path, fallback := arg, any(nil)
		if p, ok := params[arg]; ok {
			fallback = p.Default
			if p.From != "" {
				path = p.From
			}
		}

		value, err := lookupPath(first, path, fallback)
		if err != nil {
			return nil, err
		}
		values[i] = value
	}

	if reflection.IsClass(def.Target()) {
		return construct(name, reflection.StructType(def.Target()), args, values)
	}

	info, err := analyzeCallable(def.Target(), args)
	if err != nil {
		return nil, ErrInvalidDefinition(name, err.Error())
	}

	return info.call(name, values)
}

// injectedDeps returns the services named by the first segment of every
// injected path.
func injectedDeps(def Definition, args []string) []string {
	params := def.Params()
	seen := make(map[string]bool)

	var deps []string

	for _, arg := range args {
		path := arg
		if p, ok := params[arg]; ok && p.From != "" {
			path = p.From
		}

		root, _, _ := strings.Cut(path, ".")
		if !seen[root] {
			seen[root] = true
			deps = append(deps, root)
		}
	}

	return deps
}
