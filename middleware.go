package crate

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Middleware intercepts lookups made through Container.Get. Lookups a
// provider makes through its Resolver are not reported.
type Middleware interface {
	// BeforeResolve runs first. An error aborts the lookup and is returned
	// to the caller.
	BeforeResolve(ctx context.Context, name string) error

	// AfterResolve runs with the outcome of the lookup. It is called on every
	// middleware whose BeforeResolve succeeded, including when a later
	// middleware aborted the lookup. An error replaces the result.
	AfterResolve(ctx context.Context, name string, service any, err error) error
}

type middlewareChain []Middleware

// beforeResolve returns how many middleware passed before one failed.
func (m middlewareChain) beforeResolve(ctx context.Context, name string) (int, error) {
	for i, mw := range m {
		if err := mw.BeforeResolve(ctx, name); err != nil {
			return i, err
		}
	}

	return len(m), nil
}

func (m middlewareChain) afterResolve(ctx context.Context, name string, service any, err error) error {
	for _, mw := range m {
		if mwErr := mw.AfterResolve(ctx, name, service, err); mwErr != nil {
			return mwErr
		}
	}

	return nil
}

// FuncMiddleware builds a Middleware from optional functions.
type FuncMiddleware struct {
	BeforeResolveFunc func(ctx context.Context, name string) error
	AfterResolveFunc  func(ctx context.Context, name string, service any, err error) error
}

// BeforeResolve implements Middleware.
func (f *FuncMiddleware) BeforeResolve(ctx context.Context, name string) error {
	if f.BeforeResolveFunc == nil {
		return nil
	}

	return f.BeforeResolveFunc(ctx, name)
}

// AfterResolve implements Middleware.
func (f *FuncMiddleware) AfterResolve(ctx context.Context, name string, service any, err error) error {
	if f.AfterResolveFunc == nil {
		return nil
	}

	return f.AfterResolveFunc(ctx, name, service, err)
}

// LogMiddleware logs every lookup at debug level and failed lookups at
// warn level.
func LogMiddleware(logger *zap.Logger) Middleware {
	return &FuncMiddleware{
		AfterResolveFunc: func(_ context.Context, name string, service any, err error) error {
			if err != nil {
				logger.Warn("service lookup failed", zap.String("service", name), zap.Error(err))

				return nil
			}

			logger.Debug("service lookup",
				zap.String("service", name),
				zap.String("type", fmt.Sprintf("%T", service)),
			)

			return nil
		},
	}
}
