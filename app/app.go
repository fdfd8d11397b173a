// Package app mounts UI components onto a page using services from a crate
// container, and bootstraps containers from plugins.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/xraph/crate"
	"github.com/xraph/crate/dom"
)

// Service names read from the container.
const (
	ServiceDocument     = "document"
	ServiceMounter      = "vue"
	ServiceSelectorList = "selectorList"
	ServiceComponents   = "components"
)

// Mounter mounts a component tree on an element. It is implemented by the
// host UI framework; provide is the injectable context for the components.
type Mounter interface {
	Mount(element dom.Element, components any, provide map[string]any) (any, error)
}

// MounterFunc adapts a function to Mounter.
type MounterFunc func(element dom.Element, components any, provide map[string]any) (any, error)

// Mount implements Mounter.
func (f MounterFunc) Mount(element dom.Element, components any, provide map[string]any) (any, error) {
	return f(element, components, provide)
}

// App mounts components for every configured selector.
type App struct {
	container *crate.Container
	logger    *zap.Logger
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the app logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an app over a container.
func New(c *crate.Container, opts ...Option) *App {
	a := &App{container: c, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init mounts the container's components on the container's selectors.
func (a *App) Init() (map[string][]any, error) {
	selectors, err := crate.Get[[]string](a.container, ServiceSelectorList)
	if err != nil {
		return nil, err
	}

	components, err := a.container.Get(ServiceComponents)
	if err != nil {
		return nil, err
	}

	return a.RegisterComponents(selectors, components)
}

// RegisterComponents mounts components on every element matching each
// selector. The result maps each selector to the mounted instances, in
// document order; selectors without matches map to an empty slice.
func (a *App) RegisterComponents(selectors []string, components any) (map[string][]any, error) {
	document, err := crate.Get[dom.Document](a.container, ServiceDocument)
	if err != nil {
		return nil, err
	}

	d, err := dom.New(document)
	if err != nil {
		return nil, err
	}

	mounter, err := crate.Get[Mounter](a.container, ServiceMounter)
	if err != nil {
		return nil, err
	}

	provide, err := a.container.Export()
	if err != nil {
		return nil, err
	}

	if named, ok := components.(map[string]any); ok {
		components, err = InjectComponents(named, provide)
		if err != nil {
			return nil, err
		}
	}

	elements := make(map[string][]any, len(selectors))

	for _, selector := range selectors {
		if _, ok := elements[selector]; !ok {
			elements[selector] = []any{}
		}

		for _, element := range d.Elements(selector) {
			instance, err := mounter.Mount(element, components, provide)
			if err != nil {
				return nil, fmt.Errorf("mount %s: %w", selector, err)
			}
			elements[selector] = append(elements[selector], instance)
		}

		a.logger.Debug("components mounted",
			zap.String("container", a.container.ID()),
			zap.String("selector", selector),
			zap.Int("instances", len(elements[selector])),
		)
	}

	return elements, nil
}

// InjectComponents replaces components declared by name with the injected
// service of the same key. Components that are not strings are kept.
func InjectComponents(components map[string]any, injected map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(components))

	for key, component := range components {
		if name, ok := component.(string); !ok || name == "" {
			out[key] = component

			continue
		}

		inject, ok := injected[key]
		if !ok || inject == nil {
			return nil, fmt.Errorf("%s not injected", key)
		}
		out[key] = inject
	}

	return out, nil
}
