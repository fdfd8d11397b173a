package crate

import (
	"reflect"

	"github.com/xraph/crate/reflection"
)

// Kind tells the factory how a definition is turned into a service.
type Kind uint8

const (
	// KindValue is a plain value returned as-is.
	KindValue Kind = iota
	// KindFactory is a function invoked to produce the service.
	KindFactory
	// KindConstructor is a class-style constructor: a function or a struct
	// type that is only instantiated when injection is requested.
	KindConstructor
)

func (k Kind) String() string {
	switch k {
	case KindFactory:
		return "factory"
	case KindConstructor:
		return "constructor"
	default:
		return "value"
	}
}

// Param describes where an injected argument comes from.
type Param struct {
	// From is a dot-delimited path into the container, e.g. "config.api.url".
	From string
	// Default is used when the path does not resolve.
	Default any
}

// Definitions maps service names to definitions. Values that are not a
// Definition are classified automatically: functions become factories,
// struct types become constructors and anything else is a plain value.
type Definitions map[string]any

// Definition is a service definition plus optional injection metadata.
// It is immutable once built.
type Definition struct {
	kind        Kind
	target      any
	args        []string
	injectable  bool
	params      map[string]Param
	as          string
	newInstance bool
}

// DefinitionOption configures injection metadata.
type DefinitionOption func(*Definition)

// Value defines a plain value.
func Value(v any) Definition {
	return Definition{kind: KindValue, target: v}
}

// Func defines a factory function.
func Func(fn any, opts ...DefinitionOption) Definition {
	return newDefinition(KindFactory, fn, opts)
}

// Constructor defines a class-style constructor. target is either a
// function or a reflect.Type of a struct.
func Constructor(target any, opts ...DefinitionOption) Definition {
	return newDefinition(KindConstructor, target, opts)
}

// Class defines a struct type T as a constructor.
func Class[T any](opts ...DefinitionOption) Definition {
	return Constructor(reflect.TypeOf((*T)(nil)).Elem(), opts...)
}

func newDefinition(kind Kind, target any, opts []DefinitionOption) Definition {
	d := Definition{kind: kind, target: target}
	for _, opt := range opts {
		opt(&d)
	}

	return d
}

// Args declares the argument names explicitly, overriding source lookup.
func Args(names ...string) DefinitionOption {
	return func(d *Definition) {
		d.args = append([]string(nil), names...)
	}
}

// Injectable marks the definition for deep path injection.
func Injectable() DefinitionOption {
	return func(d *Definition) {
		d.injectable = true
	}
}

// InjectParam sources argument arg from path, falling back to def.
// It marks the definition injectable.
func InjectParam(arg, path string, def any) DefinitionOption {
	return func(d *Definition) {
		if d.params == nil {
			d.params = make(map[string]Param)
		}
		d.params[arg] = Param{From: path, Default: def}
		d.injectable = true
	}
}

// InjectAs names the companion instance. It marks the definition injectable.
func InjectAs(name string) DefinitionOption {
	return func(d *Definition) {
		d.as = name
		d.injectable = true
	}
}

// InjectNewInstance registers a companion service that holds an instance
// built with injected arguments.
func InjectNewInstance() DefinitionOption {
	return func(d *Definition) {
		d.newInstance = true
	}
}

// Kind returns the definition kind.
func (d Definition) Kind() Kind { return d.kind }

// Target returns the wrapped value, function or type.
func (d Definition) Target() any { return d.target }

// IsInjectable reports whether arguments are resolved by deep path lookup.
func (d Definition) IsInjectable() bool { return d.injectable }

// Params returns a copy of the injected parameter mapping.
func (d Definition) Params() map[string]Param {
	out := make(map[string]Param, len(d.params))
	for k, v := range d.params {
		out[k] = v
	}

	return out
}

// Arguments returns the declared argument names.
func (d Definition) Arguments() []string {
	if d.args != nil {
		return append([]string(nil), d.args...)
	}

	if d.kind == KindValue {
		return nil
	}

	args, _ := reflection.Arguments(d.target)

	return args
}

// CompanionName returns the name of the companion instance and whether the
// definition registers one.
func (d Definition) CompanionName(key string) (string, bool) {
	if !d.newInstance {
		return "", false
	}

	if d.as != "" {
		return d.as, true
	}

	return reflection.LowerFirst(key), true
}

// classify turns a raw definition value into a Definition.
func classify(raw any) Definition {
	switch v := raw.(type) {
	case Definition:
		return v
	case *Definition:
		if v != nil {
			return *v
		}

		return Value(nil)
	}

	switch {
	case reflection.IsClass(raw):
		return Constructor(raw)
	case reflection.IsFunction(raw):
		return Func(raw)
	default:
		return Value(raw)
	}
}
