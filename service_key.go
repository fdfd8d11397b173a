package crate

// ServiceKey provides type-safe service identification.
// Use NewServiceKey to create typed keys for your services.
type ServiceKey[T any] struct {
	name string
}

// NewServiceKey creates a new typed service key.
//
// Example:
//
//	var SelectorListKey = NewServiceKey[[]string]("selectorList")
func NewServiceKey[T any](name string) ServiceKey[T] {
	return ServiceKey[T]{name: name}
}

// Name returns the string name of the service key.
func (k ServiceKey[T]) Name() string {
	return k.name
}

// String returns the string representation of the service key.
func (k ServiceKey[T]) String() string {
	return k.name
}

// Define adds the definition under the key's name.
//
// Example:
//
//	defs := crate.Definitions{}
//	SelectorListKey.Define(defs, crate.Value([]string{"#app"}))
func (k ServiceKey[T]) Define(defs Definitions, def any) {
	defs[k.name] = def
}

// GetWithKey resolves a service using a typed service key.
//
// Example:
//
//	selectors, err := GetWithKey(c, SelectorListKey)
func GetWithKey[T any](r Resolver, key ServiceKey[T]) (T, error) {
	return Get[T](r, key.name)
}

// MustWithKey resolves a service using a typed service key, panicking on error.
func MustWithKey[T any](r Resolver, key ServiceKey[T]) T {
	return Must[T](r, key.name)
}
