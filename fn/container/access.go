package container

import (
	"fmt"
	"reflect"

	"github.com/lguimbarda/anyfn/fn/core"
)

// Enumerate classifies c and returns its pairs in enumeration order.
func Enumerate(c any) ([]Pair, error) {
	a, err := Of(c)
	if err != nil {
		return nil, err
	}
	return a.Enumerate()
}

// Rebuild returns a container of the same kind as c holding pairs.
func Rebuild(c any, pairs []Pair) (any, error) {
	a, err := Of(c)
	if err != nil {
		return nil, err
	}
	return a.Rebuild(pairs)
}

// Keys returns the enumeration keys of c.
func Keys(c any) ([]any, error) {
	pairs, err := Enumerate(c)
	if err != nil {
		return nil, err
	}
	keys := make([]any, len(pairs))
	for i, p := range pairs {
		keys[i] = p.Key
	}
	return keys, nil
}

// Len returns the number of entries in c.
func Len(c any) (int, error) {
	if Classify(c) == KindInvalid {
		return 0, fmt.Errorf("%w: %T", ErrNotContainer, c)
	}
	switch v := c.(type) {
	case *Object:
		return v.Len(), nil
	case *Set:
		return v.Len(), nil
	case *Assoc:
		return v.Len(), nil
	case Range:
		return v.Len(), nil
	case *Range:
		return v.Len(), nil
	}
	a, err := Of(c)
	if err != nil {
		return 0, err
	}
	if a.kind == KindStream {
		return 0, ErrStream
	}
	if a.rv.Kind() == reflect.Struct {
		return len(structFields(a.rv.Type())), nil
	}
	return a.rv.Len(), nil
}

// Get looks up key in c: an index for sequences and ranges, a property name
// for mappings, a pair key for associations and the member itself for sets.
// It reports false when the key is absent or c is not a container.
func Get(c any, key any) (any, bool) {
	if Classify(c) == KindInvalid {
		return nil, false
	}
	switch v := c.(type) {
	case *Object:
		k, ok := key.(string)
		if !ok {
			k = fmt.Sprint(key)
		}
		return v.Get(k)
	case *Assoc:
		return v.Get(key)
	case *Set:
		if v.Has(key) {
			return key, true
		}
		return nil, false
	case Range:
		return rangeAt(v, key)
	case *Range:
		return rangeAt(*v, key)
	}

	a, err := Of(c)
	if err != nil || a.kind == KindStream {
		return nil, false
	}
	switch a.rv.Kind() {
	case reflect.Slice, reflect.Array:
		i, ok := index(key)
		if !ok || i < 0 || i >= a.rv.Len() {
			return nil, false
		}
		return a.rv.Index(i).Interface(), true
	case reflect.Struct:
		name := fmt.Sprint(key)
		for _, f := range structFields(a.rv.Type()) {
			if f.name == name {
				return a.rv.FieldByIndex(f.index).Interface(), true
			}
		}
		return nil, false
	case reflect.Map:
		k, ok := mapKey(key, a.rv.Type().Key())
		if !ok {
			return nil, false
		}
		v := a.rv.MapIndex(k)
		if !v.IsValid() {
			return nil, false
		}
		if a.kind == KindSet {
			return k.Interface(), true
		}
		return v.Interface(), true
	}
	return nil, false
}

func rangeAt(r Range, key any) (any, bool) {
	i, ok := index(key)
	if !ok || i < 0 || i >= r.Len() {
		return nil, false
	}
	return r.At(i), true
}

func index(key any) (int, bool) {
	if !core.IsNumber(key) {
		return 0, false
	}
	rv := reflect.ValueOf(key)
	i := int(rv.Convert(reflect.TypeOf(0)).Int())
	if !core.Equal(i, key) {
		return 0, false
	}
	return i, true
}

func mapKey(key any, t reflect.Type) (reflect.Value, bool) {
	if key == nil {
		return reflect.Value{}, false
	}
	if k, ok := hashableAs(key, t); ok {
		return k, true
	}
	rv := reflect.ValueOf(key)
	switch {
	case core.IsNumber(key) && isNumeric(t):
		k := rv.Convert(t)
		return k, core.Equal(k.Interface(), key)
	case rv.Kind() == reflect.String && t.Kind() == reflect.String:
		return rv.Convert(t), true
	}
	return reflect.Value{}, false
}

func isNumeric(t reflect.Type) bool {
	return core.IsNumber(reflect.Zero(t).Interface())
}
