package crate

import (
	"reflect"
	"strings"
)

// Lookup resolves a dot-delimited path against a nested value. Maps with
// string keys, structs (exported fields, matched exactly and then without
// regard to case), pointers, interfaces and Resolvers are traversed. The
// default is returned as soon as a segment is absent or an intermediate
// value is falsy. The value found at the last segment is returned as-is.
//
//	crate.Lookup(cfg, "api.url", "http://localhost")
func Lookup(root any, path string, def any) any {
	v, _ := lookupPath(func(string) (any, bool, error) {
		return root, true, nil
	}, "."+path, def)

	return v
}

// lookupPath walks path. The first segment is handed to first; the rest are
// read from the values it returns. Only errors raised by first are returned.
func lookupPath(first func(string) (any, bool, error), path string, def any) (any, error) {
	segments := strings.Split(path, ".")

	current, ok, err := first(segments[0])
	if err != nil {
		return nil, err
	}
	if !ok {
		return def, nil
	}

	for _, seg := range segments[1:] {
		if isFalsy(current) {
			return def, nil
		}

		next, found, err := child(current, seg)
		if err != nil {
			return nil, err
		}
		if !found {
			return def, nil
		}

		current = next
	}

	return current, nil
}

// child returns the member seg of v.
func child(v any, seg string) (any, bool, error) {
	if r, ok := v.(Resolver); ok {
		if !r.Has(seg) {
			return nil, false, nil
		}

		value, err := r.Get(seg)

		return value, err == nil, err
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false, nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false, nil
		}

		value := rv.MapIndex(reflect.ValueOf(seg).Convert(rv.Type().Key()))
		if !value.IsValid() {
			return nil, false, nil
		}

		return value.Interface(), true, nil
	case reflect.Struct:
		field, ok := structField(rv, seg)
		if !ok {
			return nil, false, nil
		}

		return field.Interface(), true, nil
	default:
		return nil, false, nil
	}
}

func structField(rv reflect.Value, name string) (reflect.Value, bool) {
	t := rv.Type()

	if f, ok := t.FieldByName(name); ok && f.IsExported() {
		// A field promoted through a nil embedded pointer is absent.
		field, err := rv.FieldByIndexErr(f.Index)
		if err != nil {
			return reflect.Value{}, false
		}

		return field, true
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.IsExported() && strings.EqualFold(f.Name, name) {
			return rv.Field(i), true
		}
	}

	return reflect.Value{}, false
}

// isFalsy reports whether v is nil, false, numeric zero or the empty string.
func isFalsy(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	case reflect.Bool:
		return !rv.Bool()
	case reflect.String:
		return rv.Len() == 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	default:
		return false
	}
}
