package crate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/ksuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var errProviderPanicked = errors.New("provider panicked")

// Resolver gives factories access to sibling services while the container
// resolves them. Factories should use the Resolver they receive rather than
// the Container that owns them: only the Resolver reports cycles. A Resolver
// kept after its factory returned stays usable.
type Resolver interface {
	// Get resolves a service by name.
	Get(name string) (any, error)
	// Has reports whether a service is registered.
	Has(name string) bool
}

// Container holds resolved services and the providers for services that
// have not been requested yet. It is read-only for its consumers: services
// are only added to the backing store by lazy resolution.
//
// The container lock guards the backing store only; providers run without
// it. A service being built is tracked in building so that concurrent
// lookups of it wait for the one build instead of starting another.
type Container struct {
	id         ksuid.KSUID
	providers  map[string]*provider
	order      []string
	instances  map[string]any
	building   map[string]*build
	graph      *DependencyGraph
	middleware middlewareChain
	logger     *zap.Logger
	mu         sync.Mutex
}

// ServiceInfo contains diagnostic information.
type ServiceInfo struct {
	Name         string   `json:"name"`
	Kind         string   `json:"kind,omitempty"`
	Type         string   `json:"type,omitempty"`
	Injectable   bool     `json:"injectable"`
	Resolved     bool     `json:"resolved"`
	Dependencies []string `json:"dependencies,omitempty"`
	Dependents   []string `json:"dependents,omitempty"`
	CompanionOf  string   `json:"companion_of,omitempty"`
}

// build is a provider run in progress. done is closed once instance and
// err are set.
type build struct {
	done     chan struct{}
	instance any
	err      error
}

// resolution is the Resolver handed to providers. It carries the chain of
// services being resolved so that cycles are reported instead of recursing.
// Once the provider returns, lookups go through Container.Get.
type resolution struct {
	c     *Container
	stack []string
	done  atomic.Bool
}

func (r *resolution) Get(name string) (any, error) {
	if r.done.Load() {
		return r.c.Get(name)
	}

	return r.c.resolve(name, r.stack)
}

func (r *resolution) Has(name string) bool {
	_, ok := r.c.providers[name]

	return ok
}

// ID returns the unique identifier of the container.
func (c *Container) ID() string {
	return c.id.String()
}

// Get returns a service by name, resolving it on first access.
// A service that resolved to a zero value is returned as such; only names
// that were never registered fail with a SERVICE_NOT_FOUND error.
func (c *Container) Get(name string) (any, error) {
	ctx := context.Background()

	if ran, err := c.middleware.beforeResolve(ctx, name); err != nil {
		_ = c.middleware[:ran].afterResolve(ctx, name, nil, err)

		return nil, err
	}

	service, err := c.resolve(name, nil)

	if mwErr := c.middleware.afterResolve(ctx, name, service, err); mwErr != nil {
		return nil, mwErr
	}

	return service, err
}

// resolve returns the memoized instance of name, building it when no other
// lookup already is. stack holds the services whose providers are running
// in this chain of lookups.
func (c *Container) resolve(name string, stack []string) (any, error) {
	p, ok := c.providers[name]
	if !ok {
		return nil, ErrServiceNotFound(name)
	}

	for i, resolving := range stack {
		if resolving == name {
			cycle := append(append([]string(nil), stack[i:]...), name)

			return nil, ErrCircularDependency(cycle)
		}
	}

	instance, cached, b, owner := c.claim(name)
	if cached {
		return instance, nil
	}

	if !owner {
		<-b.done

		return b.instance, b.err
	}

	chain := make([]string, len(stack), len(stack)+1)
	copy(chain, stack)
	chain = append(chain, name)

	start := time.Now()

	c.run(p, chain, b)
	if b.err != nil {
		return nil, b.err
	}

	c.logger.Debug("service resolved",
		zap.String("container", c.ID()),
		zap.String("service", name),
		zap.Duration("duration", time.Since(start)),
	)

	return b.instance, nil
}

// claim returns the memoized instance of name, or the build in progress to
// wait for, or a new build owned by the caller.
func (c *Container) claim(name string) (instance any, cached bool, b *build, owner bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if instance, ok := c.instances[name]; ok {
		return instance, true, nil, false
	}

	if b, ok := c.building[name]; ok {
		return nil, false, b, false
	}

	b = &build{done: make(chan struct{})}
	c.building[name] = b

	return nil, false, b, true
}

// run calls the provider and publishes its outcome. A panicking provider
// is recorded as a failed build before the panic propagates.
func (c *Container) run(p *provider, stack []string, b *build) {
	scope := &resolution{c: c, stack: stack}
	completed := false

	defer func() {
		scope.done.Store(true)
		if !completed {
			b.instance, b.err = nil, NewServiceError(p.name, "resolve", errProviderPanicked)
		}
		c.finish(p.name, b)
	}()

	b.instance, b.err = p.build(scope)
	completed = true
}

func (c *Container) finish(name string, b *build) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if b.err == nil {
		c.instances[name] = b.instance
	}
	delete(c.building, name)
	close(b.done)
}

// Has checks if a service is registered.
func (c *Container) Has(name string) bool {
	_, ok := c.providers[name]

	return ok
}

// Services returns all registered service names in sorted order.
func (c *Container) Services() []string {
	names := make([]string, len(c.order))
	copy(names, c.order)
	sort.Strings(names)

	return names
}

// Export resolves every registered service and returns them keyed by name.
// The map is a fresh copy; the services themselves are shared. Names that
// fail to resolve are left out and their errors are combined.
func (c *Container) Export() (map[string]any, error) {
	out := make(map[string]any, len(c.order))

	var errs error

	for _, name := range c.order {
		service, err := c.Get(name)
		if err != nil {
			errs = multierr.Append(errs, err)

			continue
		}
		out[name] = service
	}

	return out, errs
}

// Resolved returns the services resolved so far without resolving any other.
func (c *Container) Resolved() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]any, len(c.instances))
	for name, instance := range c.instances {
		out[name] = instance
	}

	return out
}

func (c *Container) instance(name string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	instance, ok := c.instances[name]

	return instance, ok
}

// ResolutionOrder returns the services so that every service follows the
// services it declares as dependencies.
func (c *Container) ResolutionOrder() ([]string, error) {
	return c.graph.Order()
}

// Validate checks the declared dependencies for cycles. Dependencies that
// are only known at resolution time, such as factories receiving the whole
// container, are not considered.
func (c *Container) Validate() error {
	_, err := c.graph.Order()

	return err
}

// Inspect returns diagnostic information about a service.
func (c *Container) Inspect(name string) ServiceInfo {
	p, ok := c.providers[name]
	if !ok {
		return ServiceInfo{Name: name}
	}

	instance, resolved := c.instance(name)

	typeName := "unknown"
	if resolved {
		typeName = fmt.Sprintf("%T", instance)
	}

	return ServiceInfo{
		Name:         name,
		Kind:         p.def.Kind().String(),
		Type:         typeName,
		Injectable:   p.def.IsInjectable() || p.companionOf != "",
		Resolved:     resolved,
		Dependencies: c.graph.Dependencies(name),
		Dependents:   c.graph.Dependents(name),
		CompanionOf:  p.companionOf,
	}
}
