// Package reflection inspects callables and class-like types without
// invoking them. It reports declared parameter names, tells plain functions
// apart from struct types used as constructors, and detects anonymous
// functions.
package reflection

import (
	"reflect"
	"regexp"
	"runtime"
	"strconv"
	"strings"
)

// Kind classifies an inspected value.
type Kind string

const (
	KindFunc  Kind = "func"
	KindClass Kind = "class"
	KindValue Kind = "value"
)

// Info is a diagnostic summary of a value.
type Info struct {
	Kind      Kind
	Name      string
	Args      []string
	Anonymous bool
}

var anonymousName = regexp.MustCompile(`\.func\d+(\.\d+)*$`)

// IsFunction reports whether v is a non-nil function value.
func IsFunction(v any) bool {
	if v == nil {
		return false
	}

	rv := reflect.ValueOf(v)

	return rv.Kind() == reflect.Func && !rv.IsNil()
}

// IsClass reports whether v is a reflect.Type naming a struct or a pointer
// to a struct. Such types are constructed with reflect.New rather than called.
func IsClass(v any) bool {
	t, ok := v.(reflect.Type)
	if !ok || t == nil {
		return false
	}

	return structType(t) != nil
}

// Arguments returns the declared argument names of v in declaration order.
// The second result is false when v is neither a function nor a class.
//
// Function parameter names are read from the function's source file.
// Unnamed parameters, and every parameter when the source cannot be found,
// are reported as argN. Class arguments are the exported struct fields,
// renamed by an `inject:"name"` tag or skipped by `inject:"-"`.
func Arguments(v any) ([]string, bool) {
	if IsClass(v) {
		return fieldNames(structType(v.(reflect.Type))), true
	}

	if !IsFunction(v) {
		return nil, false
	}

	fn := reflect.ValueOf(v)
	n := fn.Type().NumIn()

	if n == 0 {
		return []string{}, true
	}

	if names, ok := sourceArguments(fn.Pointer(), n); ok {
		return names, true
	}

	return positional(n), true
}

// IsAnonymous reports whether v is a function literal or an unnamed struct type.
func IsAnonymous(v any) bool {
	if t, ok := v.(reflect.Type); ok {
		st := structType(t)

		return st != nil && st.Name() == ""
	}

	if !IsFunction(v) {
		return false
	}

	return anonymousName.MatchString(FuncName(v))
}

// FuncName returns the fully qualified runtime name of a function value.
func FuncName(v any) string {
	if !IsFunction(v) {
		return ""
	}

	f := runtime.FuncForPC(reflect.ValueOf(v).Pointer())
	if f == nil {
		return ""
	}

	return f.Name()
}

// Describe summarizes v for diagnostics.
func Describe(v any) Info {
	args, _ := Arguments(v)
	info := Info{
		Kind:      KindValue,
		Args:      args,
		Anonymous: IsAnonymous(v),
	}

	switch {
	case IsClass(v):
		info.Kind = KindClass
		info.Name = structType(v.(reflect.Type)).String()
	case IsFunction(v):
		info.Kind = KindFunc
		info.Name = FuncName(v)
	default:
		if v != nil {
			info.Name = reflect.TypeOf(v).String()
		}
	}

	return info
}

func structType(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return nil
	}

	return t
}

func fieldNames(t reflect.Type) []string {
	names := make([]string, 0, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		switch tag := field.Tag.Get("inject"); tag {
		case "-":
			continue
		case "":
			names = append(names, field.Name)
		default:
			names = append(names, tag)
		}
	}

	return names
}

func positional(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = "arg" + strconv.Itoa(i)
	}

	return names
}

// FieldIndex returns the index of the struct field that carries the given
// argument name, following the same rules as Arguments. It returns -1 when
// no field matches.
func FieldIndex(t reflect.Type, arg string) int {
	st := structType(t)
	if st == nil {
		return -1
	}

	for i := 0; i < st.NumField(); i++ {
		field := st.Field(i)
		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("inject")
		if tag == "-" {
			continue
		}

		if tag == arg || (tag == "" && field.Name == arg) {
			return i
		}
	}

	return -1
}

// StructType returns the struct type behind a class, or nil.
func StructType(v any) reflect.Type {
	t, ok := v.(reflect.Type)
	if !ok || t == nil {
		return nil
	}

	return structType(t)
}

// LowerFirst lower-cases the first rune of s.
func LowerFirst(s string) string {
	if s == "" {
		return s
	}

	r := []rune(s)

	return strings.ToLower(string(r[0])) + string(r[1:])
}
