package crate

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Lazy defers the lookup of a service until Get is first called. The
// outcome, value or error, is kept for later calls.
//
// A factory may hold a Lazy built on the Resolver it receives; lookups made
// after the factory returned go through the container like any other Get.
type Lazy[T any] struct {
	resolver Resolver
	name     string
	optional bool

	once  sync.Once
	value T
	err   error
	found atomic.Bool
}

// NewLazy creates a deferred lookup of name.
func NewLazy[T any](r Resolver, name string) *Lazy[T] {
	return &Lazy[T]{resolver: r, name: name}
}

func (l *Lazy[T]) load() (T, error) {
	l.once.Do(func() {
		if l.optional && !l.resolver.Has(l.name) {
			return
		}

		l.value, l.err = Get[T](l.resolver, l.name)
		l.found.Store(l.err == nil)
	})

	return l.value, l.err
}

// Get returns the service, looking it up on the first call.
func (l *Lazy[T]) Get() (T, error) {
	return l.load()
}

// MustGet is Get that panics on error.
func (l *Lazy[T]) MustGet() T {
	value, err := l.load()
	if err != nil {
		panic(fmt.Sprintf("lazy dependency %s failed: %v", l.name, err))
	}

	return value
}

// IsResolved reports whether a lookup succeeded.
func (l *Lazy[T]) IsResolved() bool {
	return l.found.Load()
}

// Name returns the service name.
func (l *Lazy[T]) Name() string {
	return l.name
}

// OptionalLazy is a Lazy for a service that may not be registered. A
// missing service yields the zero value and no error.
type OptionalLazy[T any] struct {
	lazy Lazy[T]
}

// NewOptionalLazy creates a deferred lookup of an optional service.
func NewOptionalLazy[T any](r Resolver, name string) *OptionalLazy[T] {
	return &OptionalLazy[T]{lazy: Lazy[T]{resolver: r, name: name, optional: true}}
}

// Get returns the service or the zero value when it is not registered.
func (l *OptionalLazy[T]) Get() (T, error) {
	return l.lazy.load()
}

// IsFound reports whether the service was registered and resolved. It is
// false until Get is called.
func (l *OptionalLazy[T]) IsFound() bool {
	return l.lazy.found.Load()
}

// Name returns the service name.
func (l *OptionalLazy[T]) Name() string {
	return l.lazy.name
}
