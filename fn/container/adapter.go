package container

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/lguimbarda/anyfn/fn/core"
)

// Adapter is a classified container. The zero value is not usable; obtain one
// with Of.
type Adapter struct {
	kind  Kind
	value any
	rv    reflect.Value
}

// Of classifies c and returns its Adapter, or ErrNotContainer.
func Of(c any) (Adapter, error) {
	kind := Classify(c)
	if kind == KindInvalid {
		return Adapter{}, fmt.Errorf("%w: %T", ErrNotContainer, c)
	}
	rv, _ := indirect(reflect.ValueOf(c))
	return Adapter{kind: kind, value: c, rv: rv}, nil
}

// Kind returns the classification.
func (a Adapter) Kind() Kind { return a.kind }

// Value returns the classified container itself.
func (a Adapter) Value() any { return a.value }

// Source returns the container as a Source, or nil when it is not a stream.
func (a Adapter) Source() Source {
	s, _ := a.value.(Source)
	return s
}

// Enumerate returns the container's pairs in enumeration order.
func (a Adapter) Enumerate() ([]Pair, error) {
	c := capabilities[a.kind]
	if c.enumerate == nil {
		return nil, ErrStream
	}
	if a.kind == KindRange {
		if _, ok := rangeOf(a).size(); !ok {
			return nil, fmt.Errorf("%w: %v", ErrRangeTooLong, rangeOf(a))
		}
	}
	return c.enumerate(a), nil
}

// Rebuild returns a new container of the same kind holding pairs. Duplicate
// keys resolve last write wins; Set and Sequence discard keys.
func (a Adapter) Rebuild(pairs []Pair) (any, error) {
	c := capabilities[a.kind]
	if c.rebuild == nil {
		return nil, ErrStream
	}
	return c.rebuild(a, pairs), nil
}

type capability struct {
	enumerate func(Adapter) []Pair
	rebuild   func(Adapter, []Pair) any
}

var capabilities = [...]capability{
	KindInvalid:     {},
	KindSequence:    {enumerateSequence, rebuildSequence},
	KindMapping:     {enumerateMapping, rebuildMapping},
	KindSet:         {enumerateSet, rebuildSet},
	KindAssociation: {enumerateAssociation, rebuildAssociation},
	KindRange:       {enumerateRange, rebuildRange},
	KindStream:      {},
}

func enumerateSequence(a Adapter) []Pair {
	pairs := make([]Pair, a.rv.Len())
	for i := range pairs {
		pairs[i] = Pair{Key: i, Value: a.rv.Index(i).Interface()}
	}
	return pairs
}

func rebuildSequence(a Adapter, pairs []Pair) any {
	t := a.rv.Type()
	if t.Kind() == reflect.Array {
		t = reflect.SliceOf(t.Elem())
	}
	vals := values(pairs)
	if out, ok := makeSlice(t, vals); ok {
		return out
	}
	return vals
}

func enumerateMapping(a Adapter) []Pair {
	if o, ok := a.value.(*Object); ok {
		return o.Pairs()
	}
	if a.rv.Kind() == reflect.Struct {
		fields := structFields(a.rv.Type())
		pairs := make([]Pair, len(fields))
		for i, f := range fields {
			pairs[i] = Pair{Key: f.name, Value: a.rv.FieldByIndex(f.index).Interface()}
		}
		return pairs
	}
	return lo.Map(sortedKeys(a.rv), func(k reflect.Value, _ int) Pair {
		return Pair{Key: k.String(), Value: a.rv.MapIndex(k).Interface()}
	})
}

func rebuildMapping(a Adapter, pairs []Pair) any {
	if a.rv.Kind() == reflect.Map {
		t := a.rv.Type()
		out := reflect.MakeMapWithSize(t, len(pairs))
		ok := true
		for _, p := range pairs {
			v, assignable := assignableTo(p.Value, t.Elem())
			if !assignable {
				ok = false
				break
			}
			out.SetMapIndex(reflect.ValueOf(fmt.Sprint(p.Key)).Convert(t.Key()), v)
		}
		if ok {
			return out.Interface()
		}
		generic := make(map[string]any, len(pairs))
		for _, p := range pairs {
			generic[fmt.Sprint(p.Key)] = p.Value
		}
		return generic
	}
	// Objects and structs both rebuild as Objects: a struct cannot drop fields.
	return NewObject(pairs...)
}

func enumerateSet(a Adapter) []Pair {
	if s, ok := a.value.(*Set); ok {
		return lo.Map(s.items, func(v any, _ int) Pair { return Pair{Key: v, Value: v} })
	}
	return lo.Map(sortedKeys(a.rv), func(k reflect.Value, _ int) Pair {
		v := k.Interface()
		return Pair{Key: v, Value: v}
	})
}

func rebuildSet(a Adapter, pairs []Pair) any {
	vals := values(pairs)
	if a.rv.Kind() == reflect.Map {
		t := a.rv.Type()
		out := reflect.MakeMapWithSize(t, len(vals))
		member := reflect.New(t.Elem()).Elem()
		ok := true
		for _, v := range vals {
			k, assignable := hashableAs(v, t.Key())
			if !assignable {
				ok = false
				break
			}
			out.SetMapIndex(k, member)
		}
		if ok {
			return out.Interface()
		}
	}
	return NewSet(vals...)
}

func enumerateAssociation(a Adapter) []Pair {
	if as, ok := a.value.(*Assoc); ok {
		return as.Pairs()
	}
	return lo.Map(sortedKeys(a.rv), func(k reflect.Value, _ int) Pair {
		return Pair{Key: k.Interface(), Value: a.rv.MapIndex(k).Interface()}
	})
}

func rebuildAssociation(a Adapter, pairs []Pair) any {
	if a.rv.Kind() == reflect.Map {
		t := a.rv.Type()
		out := reflect.MakeMapWithSize(t, len(pairs))
		ok := true
		for _, p := range pairs {
			k, keyOK := hashableAs(p.Key, t.Key())
			v, valOK := assignableTo(p.Value, t.Elem())
			if !keyOK || !valOK {
				ok = false
				break
			}
			out.SetMapIndex(k, v)
		}
		if ok {
			return out.Interface()
		}
	}
	return NewAssoc(pairs...)
}

func rangeOf(a Adapter) Range {
	if r, ok := a.value.(*Range); ok {
		return *r
	}
	return a.value.(Range)
}

func enumerateRange(a Adapter) []Pair {
	r := rangeOf(a)
	pairs := make([]Pair, r.Len())
	for i := range pairs {
		pairs[i] = Pair{Key: i, Value: r.At(i)}
	}
	return pairs
}

// rebuildRange stays a Range while the values are a contiguous run of ints
// and falls back to a sequence otherwise.
func rebuildRange(_ Adapter, pairs []Pair) any {
	vals := values(pairs)
	if r, ok := runOf(vals); ok {
		return r
	}
	if out, ok := makeSlice(reflect.TypeOf([]int(nil)), vals); ok {
		return out
	}
	return vals
}

func values(pairs []Pair) []any {
	return lo.Map(pairs, func(p Pair, _ int) any { return p.Value })
}

func makeSlice(t reflect.Type, vals []any) (any, bool) {
	out := reflect.MakeSlice(t, len(vals), len(vals))
	for i, v := range vals {
		rv, ok := assignableTo(v, t.Elem())
		if !ok {
			return nil, false
		}
		out.Index(i).Set(rv)
	}
	return out.Interface(), true
}

func assignableTo(v any, t reflect.Type) (reflect.Value, bool) {
	if v == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), true
		}
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, true
	}
	return reflect.Value{}, false
}

// hashableAs is assignableTo for map keys: the dynamic type must be comparable.
func hashableAs(v any, t reflect.Type) (reflect.Value, bool) {
	if v != nil && !reflect.TypeOf(v).Comparable() {
		return reflect.Value{}, false
	}
	return assignableTo(v, t)
}

func sortedKeys(m reflect.Value) []reflect.Value {
	keys := m.MapKeys()
	slices.SortFunc(keys, func(a, b reflect.Value) int {
		return compareKeys(a.Interface(), b.Interface())
	})
	return keys
}

func compareKeys(a, b any) int {
	if core.IsNumber(a) && core.IsNumber(b) {
		return core.CompareNumbers(a, b)
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if !aok || !bok {
		as, bs = fmt.Sprint(a), fmt.Sprint(b)
	}
	return strings.Compare(as, bs)
}

type fieldInfo struct {
	name  string
	index []int
}

// structFields lists exported fields in declaration order, named by their
// json tag when one is present.
func structFields(t reflect.Type) []fieldInfo {
	var fields []fieldInfo
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || len(f.Index) > 1 {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		fields = append(fields, fieldInfo{name: name, index: f.Index})
	}
	return fields
}
