// Package match compiles declarative match specifications into predicates.
//
// A specification is compiled by shape:
//
//	Kind (Number, String, ...)   value is of that primitive kind
//	*regexp.Regexp                pattern matches the stringified value
//	reflect.Type                  value is of that type, implements it or embeds it
//	func or core.Callable         called with the value; result tested for truthiness
//	slice or array                OR over the elements, in order
//	map[string]T, *Object         AND over the named keys
//	anything else                 equality with core.Equal
//
// Predicates return a bool, or a pending bool when a leaf predicate returned
// a pending value. Compound specs settle their leaves strictly in order, so a
// later branch never decides the result ahead of an earlier pending one.
package match

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/lguimbarda/anyfn/fn/container"
	"github.com/lguimbarda/anyfn/fn/core"
)

// Predicate is a compiled match specification. It implements core.Callable
// with arity 1, so it can be passed anywhere a callback is accepted.
type Predicate func(v any) (any, error)

// Call tests the first argument; other arguments are ignored.
func (p Predicate) Call(args ...any) (any, error) {
	var v any
	if len(args) > 0 {
		v = args[0]
	}
	return p(v)
}

// Arity returns 1.
func (p Predicate) Arity() int { return 1 }

// Kind is a primitive-kind tag usable as a specification.
type Kind uint8

const (
	Number Kind = iota + 1 // any integer, unsigned or float kind
	String                 // string kinds
	Bool                   // bool kinds
	Array                  // slices and arrays
	Object                 // mappings: *Object, string-keyed maps, structs
	Func                   // anything core.IsCallable accepts
)

var kindNames = [...]string{"", "Number", "String", "Bool", "Array", "Object", "Func"}

func (k Kind) String() string {
	if int(k) < len(kindNames) && k != 0 {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

func (k Kind) test(v any) bool {
	if v == nil {
		return false
	}
	switch k {
	case Number:
		return core.IsNumber(v)
	case String:
		return reflect.TypeOf(v).Kind() == reflect.String
	case Bool:
		return reflect.TypeOf(v).Kind() == reflect.Bool
	case Array:
		return container.Classify(v) == container.KindSequence
	case Object:
		return container.Classify(v) == container.KindMapping
	case Func:
		return core.IsCallable(v)
	}
	return false
}

// Type returns the reflect.Type of T, for type specifications of interfaces
// and named types:
//
//	match.Match(match.Type[io.Reader]())
func Type[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// Match compiles spec strictly: object specs require every named key and no
// other key.
func Match(spec any) (Predicate, error) {
	return compile(spec, false)
}

// MatchLoose compiles spec loosely: object specs ignore extra keys, and a key
// missing from the value is tested as core.Undefined, so it passes only when
// its sub-spec accepts Undefined. Looseness applies to nested specs too.
func MatchLoose(spec any) (Predicate, error) {
	return compile(spec, true)
}

// MatchKeys compiles spec strictly and returns a predicate that applies it to
// every key of a container. Values that are not containers never match.
func MatchKeys(spec any) (Predicate, error) {
	p, err := compile(spec, false)
	if err != nil {
		return nil, err
	}
	return func(v any) (any, error) {
		keys, err := container.Keys(v)
		if err != nil {
			return false, nil
		}
		return all(len(keys), func(i int) (any, error) { return p(keys[i]) })
	}, nil
}

// Test compiles spec strictly and applies it to v.
func Test(spec any, v any) (any, error) {
	p, err := Match(spec)
	if err != nil {
		return nil, err
	}
	return p(v)
}

func compile(spec any, loose bool) (Predicate, error) {
	switch s := spec.(type) {
	case Predicate:
		return s, nil
	case Kind:
		if s < Number || s > Func {
			return nil, core.Usagef("match: unknown kind %d", uint8(s))
		}
		return always(s.test), nil
	case *regexp.Regexp:
		return always(func(v any) bool { return s.MatchString(stringify(v)) }), nil
	case reflect.Type:
		return always(typeTest(s)), nil
	case *container.Object:
		return object(s.Pairs(), loose)
	case core.Callable:
		return callable(s), nil
	}

	rv := reflect.ValueOf(spec)
	switch rv.Kind() {
	case reflect.Func:
		if rv.IsNil() {
			return nil, core.Usagef("match: nil function")
		}
		t := rv.Type()
		fixed := t.NumIn()
		if t.IsVariadic() {
			fixed--
		}
		if fixed > 1 || t.NumOut() == 0 {
			return nil, core.Usagef("match: %s cannot be used as a predicate", t)
		}
		return callable(spec), nil
	case reflect.Slice, reflect.Array:
		return alternatives(rv, loose)
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			pairs, err := container.Enumerate(spec)
			if err != nil {
				return nil, err
			}
			return object(pairs, loose)
		}
	case reflect.Chan, reflect.UnsafePointer:
		return nil, core.Usagef("match: unsupported specification %T", spec)
	}
	return always(func(v any) bool { return core.Equal(spec, v) }), nil
}

func always(test func(any) bool) Predicate {
	return func(v any) (any, error) { return test(v), nil }
}

// callable wraps a user predicate; its result, settled, is tested for
// truthiness.
func callable(fn any) Predicate {
	return func(v any) (any, error) {
		r, err := core.Invoke(fn, v)
		if err != nil {
			return nil, err
		}
		return core.Chain(r, func(r any) (any, error) { return core.Truthy(r), nil }, nil)
	}
}

func alternatives(rv reflect.Value, loose bool) (Predicate, error) {
	alts := make([]Predicate, rv.Len())
	for i := range alts {
		p, err := compile(rv.Index(i).Interface(), loose)
		if err != nil {
			return nil, fmt.Errorf("alternative %d: %w", i, err)
		}
		alts[i] = p
	}
	return func(v any) (any, error) {
		return anyOf(len(alts), func(i int) (any, error) { return alts[i](v) })
	}, nil
}

// anyOf reports, in order, whether any of the n results is truthy.
func anyOf(n int, step func(i int) (any, error)) (any, error) {
	idx, err := core.Scan(n, step, core.Truthy)
	if err != nil {
		return nil, err
	}
	return core.Chain(idx, func(i any) (any, error) { return i.(int) >= 0, nil }, nil)
}

// all reports, in order, whether all of the n results are truthy.
func all(n int, step func(i int) (any, error)) (any, error) {
	idx, err := core.Scan(n, step, func(r any) bool { return !core.Truthy(r) })
	if err != nil {
		return nil, err
	}
	return core.Chain(idx, func(i any) (any, error) { return i.(int) < 0, nil }, nil)
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

var (
	anySliceType = reflect.TypeFor[[]any]()
	anyMapType   = reflect.TypeFor[map[string]any]()
)

// typeTest tests type identity, interface implementation, pointers to t and
// structs embedding t. []any and map[string]any test structurally.
func typeTest(t reflect.Type) func(any) bool {
	switch t {
	case anySliceType:
		return Array.test
	case anyMapType:
		return Object.test
	}
	return func(v any) bool {
		if v == nil {
			return false
		}
		vt := reflect.TypeOf(v)
		if t.Kind() == reflect.Interface {
			return vt.Implements(t)
		}
		return derives(vt, t)
	}
}

func derives(vt, t reflect.Type) bool {
	if vt == t {
		return true
	}
	if vt.Kind() == reflect.Pointer {
		vt = vt.Elem()
		if vt == t {
			return true
		}
	}
	if vt.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < vt.NumField(); i++ {
		if f := vt.Field(i); f.Anonymous && derives(f.Type, t) {
			return true
		}
	}
	return false
}
