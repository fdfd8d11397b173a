package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/xraph/crate"
)

// Plugin contributes definitions before the container is made and runs
// once it is ready.
type Plugin interface {
	// Register returns the definitions updated with the plugin's own.
	Register(defs crate.Definitions) crate.Definitions
	// Run is called with the ready container.
	Run(c *crate.Container) error
}

// Registry holds named plugins and notifies waiters as they arrive.
type Registry struct {
	plugins map[string]Plugin
	order   []string
	changed chan struct{}
	mu      sync.Mutex
}

// NewRegistry creates an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		plugins: make(map[string]Plugin),
		changed: make(chan struct{}),
	}
}

// Register adds a plugin under a unique name.
func (r *Registry) Register(name string, plugin Plugin) error {
	if plugin == nil {
		return fmt.Errorf("plugin %s is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[name]; exists {
		return fmt.Errorf("plugin %s already registered", name)
	}

	r.plugins[name] = plugin
	r.order = append(r.order, name)

	close(r.changed)
	r.changed = make(chan struct{})

	return nil
}

// Get returns a registered plugin.
func (r *Registry) Get(name string) (Plugin, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.plugins[name]

	return p, ok
}

// Names returns plugin names in registration order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.order...)
}

// WaitFor blocks until every named plugin is registered or ctx is done.
// The plugins are returned in the order of names.
func (r *Registry) WaitFor(ctx context.Context, names ...string) ([]Plugin, error) {
	for {
		r.mu.Lock()
		plugins, missing := r.lookup(names)
		changed := r.changed
		r.mu.Unlock()

		if missing == "" {
			return plugins, nil
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for plugin %s: %w", missing, ctx.Err())
		}
	}
}

// lookup must be called with r.mu held. It returns the first missing name.
func (r *Registry) lookup(names []string) ([]Plugin, string) {
	plugins := make([]Plugin, 0, len(names))

	for _, name := range names {
		p, ok := r.plugins[name]
		if !ok {
			return nil, name
		}
		plugins = append(plugins, p)
	}

	return plugins, ""
}
