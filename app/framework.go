package app

import (
	"context"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/xraph/crate"
	"github.com/xraph/crate/hook"
	"github.com/xraph/crate/i18n"
)

// Default service names registered by Bootstrap.
const (
	ServiceHooks      = "hooks"
	ServiceTranslator = "translator"
)

// CoreDefinitions returns the services every container starts with.
// Definitions passed to Bootstrap and plugins may replace them.
func CoreDefinitions() crate.Definitions {
	return crate.Definitions{
		ServiceHooks: crate.Func(func() *hook.Service {
			return hook.New()
		}),
		ServiceTranslator: crate.Func(func() i18n.Translator {
			return i18n.NewFormatTranslator(nil)
		}),
	}
}

// Framework coordinates plugins, the container factory and the event bus.
type Framework struct {
	Registry *Registry
	Bus      *Bus

	factory *crate.Factory
	logger  *zap.Logger
}

// FrameworkOption configures a Framework.
type FrameworkOption func(*Framework)

// WithFactory sets the container factory.
func WithFactory(f *crate.Factory) FrameworkOption {
	return func(fw *Framework) {
		if f != nil {
			fw.factory = f
		}
	}
}

// WithFrameworkLogger sets the framework logger.
func WithFrameworkLogger(logger *zap.Logger) FrameworkOption {
	return func(fw *Framework) {
		if logger != nil {
			fw.logger = logger
		}
	}
}

// NewFramework creates a framework with an empty registry and bus.
func NewFramework(opts ...FrameworkOption) *Framework {
	fw := &Framework{
		Registry: NewRegistry(),
		Bus:      NewBus(),
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(fw)
	}

	if fw.factory == nil {
		fw.factory = crate.NewFactory(crate.WithLogger(fw.logger))
	}

	return fw
}

// RegisterPlugin adds a plugin to the registry and announces it on the bus.
func (fw *Framework) RegisterPlugin(name string, plugin Plugin) error {
	if err := fw.Registry.Register(name, plugin); err != nil {
		return err
	}

	fw.logger.Info("plugin registered", zap.String("plugin", name))
	fw.Bus.Emit(EventPluginRegistered, name)

	return nil
}

// Boot waits for the named plugins, lets them register definitions in the
// given order, makes the container and runs the plugins. Errors returned
// by Run are combined; the container is returned either way.
func (fw *Framework) Boot(ctx context.Context, defs crate.Definitions, plugins ...string) (*crate.Container, error) {
	loaded, err := fw.Registry.WaitFor(ctx, plugins...)
	if err != nil {
		return nil, err
	}

	return Bootstrap(fw.factory, defs, fw.Bus, loaded...)
}

// Start boots the container and mounts the components.
func (fw *Framework) Start(ctx context.Context, defs crate.Definitions, plugins ...string) (map[string][]any, error) {
	c, err := fw.Boot(ctx, defs, plugins...)
	if err != nil {
		return nil, err
	}

	return New(c, WithLogger(fw.logger)).Init()
}

// Bootstrap builds a container from the core definitions, defs and
// plugins, in that order of precedence. bus may be nil.
func Bootstrap(f *crate.Factory, defs crate.Definitions, bus *Bus, plugins ...Plugin) (*crate.Container, error) {
	merged := crate.Merge(CoreDefinitions(), defs)
	for _, p := range plugins {
		merged = p.Register(merged)
	}

	c := f.Make(merged)
	if bus != nil {
		bus.Emit(EventContainerMade, c)
	}

	var errs error
	for _, p := range plugins {
		errs = multierr.Append(errs, p.Run(c))
	}

	if bus != nil {
		bus.Emit(EventPluginsRan, c)
	}

	return c, errs
}
