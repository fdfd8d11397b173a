package crate

import (
	"errors"
	"reflect"

	"github.com/xraph/crate/reflection"
)

var (
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
	resolverType = reflect.TypeOf((*Resolver)(nil)).Elem()
	scopeType    = reflect.TypeOf((*resolution)(nil))
)

// callInfo holds analyzed metadata of a factory or constructor function.
type callInfo struct {
	fn       reflect.Value
	fnType   reflect.Type
	args     []string
	hasError bool
}

// analyzeCallable inspects a function and pairs its parameters with the
// declared argument names.
func analyzeCallable(fn any, args []string) (*callInfo, error) {
	if !reflection.IsFunction(fn) {
		return nil, errors.New("target must be a function")
	}

	fnValue := reflect.ValueOf(fn)
	fnType := fnValue.Type()

	if len(args) != fnType.NumIn() {
		return nil, errors.New("declared arguments do not match the function parameters")
	}

	info := &callInfo{
		fn:     fnValue,
		fnType: fnType,
		args:   args,
	}

	// The error result, if any, must be last.
	for i := 0; i < fnType.NumOut(); i++ {
		if fnType.Out(i) == errorType {
			if i != fnType.NumOut()-1 {
				return nil, errors.New("error must be the last return value")
			}
			info.hasError = true
		}
	}

	return info, nil
}

// takesContainer reports whether the function receives the whole registry:
// it declares no parameters, its first parameter is a Resolver, its first
// parameter is named "container" and accepts one, or it spreads a single
// variadic parameter.
func (c *callInfo) takesContainer() bool {
	n := c.fnType.NumIn()
	if n == 0 {
		return true
	}

	first := c.fnType.In(0)

	if c.fnType.IsVariadic() && n == 1 {
		return scopeType.AssignableTo(first.Elem())
	}

	if first == resolverType {
		return true
	}

	return c.args[0] == "container" && scopeType.AssignableTo(first)
}

// call invokes the function with the given values, one per parameter.
func (c *callInfo) call(service string, values []any) (any, error) {
	in := make([]reflect.Value, len(values))

	for i, v := range values {
		target := c.fnType.In(i)
		arg, err := argumentValue(service, c.args[i], target, v)
		if err != nil {
			return nil, err
		}
		in[i] = arg
	}

	var results []reflect.Value
	if c.fnType.IsVariadic() {
		results = c.fn.CallSlice(in)
	} else {
		results = c.fn.Call(in)
	}

	return c.result(service, results)
}

// callWithContainer invokes the function passing the registry as its only
// argument. Remaining parameters receive their zero values.
func (c *callInfo) callWithContainer(service string, r *resolution) (any, error) {
	n := c.fnType.NumIn()
	if n == 0 {
		return c.result(service, c.fn.Call(nil))
	}

	if c.fnType.IsVariadic() && n == 1 {
		return c.result(service, c.fn.Call([]reflect.Value{reflect.ValueOf(r)}))
	}

	in := make([]reflect.Value, n)
	in[0] = reflect.ValueOf(r)
	for i := 1; i < n; i++ {
		in[i] = reflect.Zero(c.fnType.In(i))
	}

	if c.fnType.IsVariadic() {
		return c.result(service, c.fn.CallSlice(in))
	}

	return c.result(service, c.fn.Call(in))
}

func (c *callInfo) result(service string, results []reflect.Value) (any, error) {
	if c.hasError {
		last := results[len(results)-1]
		if !last.IsNil() {
			return nil, NewServiceError(service, "resolve", last.Interface().(error))
		}
		results = results[:len(results)-1]
	}

	if len(results) == 0 {
		return nil, nil
	}

	return results[0].Interface(), nil
}

// construct allocates a new instance of a struct type and assigns the
// values to the fields carrying the argument names.
func construct(service string, class reflect.Type, args []string, values []any) (any, error) {
	st := reflection.StructType(class)
	ptr := reflect.New(st)
	elem := ptr.Elem()

	for i, name := range args {
		idx := reflection.FieldIndex(st, name)
		if idx < 0 {
			return nil, ErrInvalidDefinition(service, "no field for argument '"+name+"'")
		}

		field := elem.Field(idx)
		value, err := argumentValue(service, name, field.Type(), values[i])
		if err != nil {
			return nil, err
		}
		field.Set(value)
	}

	return ptr.Interface(), nil
}

// argumentValue adapts v to the parameter type t. nil becomes the zero
// value; values of the same kind or of numeric kinds are converted.
func argumentValue(service, arg string, t reflect.Type, v any) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}

	if rv.Type().ConvertibleTo(t) && (rv.Kind() == t.Kind() || (isNumeric(rv.Kind()) && isNumeric(t.Kind()))) {
		return rv.Convert(t), nil
	}

	return reflect.Value{}, ErrTypeMismatch(service, arg, t.String(), v)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
