package crate

import (
	"fmt"
)

// Get resolves a service with type safety.
func Get[T any](r Resolver, name string) (T, error) {
	var zero T

	instance, err := r.Get(name)
	if err != nil {
		return zero, err
	}

	if instance == nil {
		return zero, nil
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("%w: service %s is not of type %T", ErrTypeMismatchSentinel, name, zero)
	}

	return typed, nil
}

// Must resolves or panics - use only during startup.
func Must[T any](r Resolver, name string) T {
	instance, err := Get[T](r, name)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %s: %v", name, err))
	}

	return instance
}

// Path resolves a dot-delimited path against the container, returning def
// when any segment is missing or an intermediate value is falsy.
//
//	url := crate.Path(c, "config.api.url", "http://localhost")
func Path(r Resolver, path string, def any) (any, error) {
	return lookupPath(func(segment string) (any, bool, error) {
		if !r.Has(segment) {
			return nil, false, nil
		}

		value, err := r.Get(segment)
		if err != nil {
			return nil, false, err
		}

		return value, true, nil
	}, path, def)
}
