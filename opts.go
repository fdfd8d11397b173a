package crate

import "go.uber.org/zap"

// Option configures a Factory.
type Option func(*Factory)

// WithLogger sets the logger used by the factory and its containers.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithMiddleware adds middleware to every container made by the factory.
// Middleware is called in the order it is added.
func WithMiddleware(middleware ...Middleware) Option {
	return func(f *Factory) {
		f.middleware = append(f.middleware, middleware...)
	}
}
