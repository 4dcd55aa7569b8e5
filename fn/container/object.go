package container

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Object is a string-keyed mapping that remembers insertion order.
// Setting an existing key replaces its value in place.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject builds an Object from pairs. Keys must be strings.
func NewObject(pairs ...Pair) *Object {
	o := &Object{values: make(map[string]any, len(pairs))}
	for _, p := range pairs {
		o.Set(fmt.Sprint(p.Key), p.Value)
	}
	return o
}

// ObjectOf builds an Object from alternating keys and values:
//
//	ObjectOf("id", 1, "name", "ada")
//
// It panics when kv has odd length or a key is not a string.
func ObjectOf(kv ...any) *Object {
	if len(kv)%2 != 0 {
		panic("container.ObjectOf: odd number of arguments")
	}
	o := &Object{values: make(map[string]any, len(kv)/2)}
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("container.ObjectOf: key %v is %T, not string", kv[i], kv[i]))
		}
		o.Set(key, kv[i+1])
	}
	return o
}

// Set stores value under key and returns o.
func (o *Object) Set(key string, value any) *Object {
	if o.values == nil {
		o.values = make(map[string]any)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
	return o
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Len returns the number of keys.
func (o *Object) Len() int { return len(o.keys) }

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Pairs returns the entries in insertion order.
func (o *Object) Pairs() []Pair {
	return lo.Map(o.keys, func(k string, _ int) Pair {
		return Pair{Key: k, Value: o.values[k]}
	})
}

// With returns a copy of o with key set to value. o is not modified.
func (o *Object) With(key string, value any) *Object {
	return NewObject(o.Pairs()...).Set(key, value)
}

// Without returns a copy of o without the given keys.
func (o *Object) Without(keys ...string) *Object {
	return NewObject(lo.Filter(o.Pairs(), func(p Pair, _ int) bool {
		return !lo.Contains(keys, p.Key.(string))
	})...)
}

// Merge returns a new Object holding the entries of all objects; later
// objects win on key collisions.
func Merge(objects ...*Object) *Object {
	out := NewObject()
	for _, o := range objects {
		if o == nil {
			continue
		}
		for _, p := range o.Pairs() {
			out.Set(p.Key.(string), p.Value)
		}
	}
	return out
}

func (o *Object) String() string {
	parts := lo.Map(o.Pairs(), func(p Pair, _ int) string {
		return fmt.Sprintf("%v: %v", p.Key, p.Value)
	})
	return "{" + strings.Join(parts, ", ") + "}"
}

// Set is an insertion-ordered collection of unique values. Membership uses
// core.Equal, so 1 and 1.0 are the same element.
type Set struct {
	items []any
	index memberIndex
}

// NewSet returns a Set of the given values, dropping duplicates.
func NewSet(values ...any) *Set {
	s := &Set{}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add inserts v if it is not already a member and returns s.
func (s *Set) Add(v any) *Set {
	if !s.Has(v) {
		s.index.add(v, len(s.items))
		s.items = append(s.items, v)
	}
	return s
}

// Has reports membership.
func (s *Set) Has(v any) bool {
	_, ok := s.index.find(v, func(i int) any { return s.items[i] })
	return ok
}

// Len returns the number of members.
func (s *Set) Len() int { return len(s.items) }

// Values returns the members in insertion order.
func (s *Set) Values() []any {
	return append([]any(nil), s.items...)
}

func (s *Set) String() string {
	return fmt.Sprintf("Set%v", s.items)
}

// Assoc is an ordered key-value association whose keys may be of any type.
// Keys are unique under core.Equal; setting an existing key keeps its position.
type Assoc struct {
	pairs []Pair
	index memberIndex
}

// NewAssoc builds an Assoc from pairs; the last value for a key wins.
func NewAssoc(pairs ...Pair) *Assoc {
	a := &Assoc{}
	for _, p := range pairs {
		a.Set(p.Key, p.Value)
	}
	return a
}

// Set stores value under key and returns a.
func (a *Assoc) Set(key, value any) *Assoc {
	if i, ok := a.find(key); ok {
		a.pairs[i].Value = value
		return a
	}
	a.index.add(key, len(a.pairs))
	a.pairs = append(a.pairs, Pair{Key: key, Value: value})
	return a
}

// Get returns the value stored under key.
func (a *Assoc) Get(key any) (any, bool) {
	i, ok := a.find(key)
	if !ok {
		return nil, false
	}
	return a.pairs[i].Value, true
}

func (a *Assoc) find(key any) (int, bool) {
	return a.index.find(key, func(i int) any { return a.pairs[i].Key })
}

// Len returns the number of entries.
func (a *Assoc) Len() int { return len(a.pairs) }

// Keys returns the keys in insertion order.
func (a *Assoc) Keys() []any {
	return lo.Map(a.pairs, func(p Pair, _ int) any { return p.Key })
}

// Pairs returns the entries in insertion order.
func (a *Assoc) Pairs() []Pair {
	return append([]Pair(nil), a.pairs...)
}

func (a *Assoc) String() string {
	parts := lo.Map(a.pairs, func(p Pair, _ int) string {
		return fmt.Sprintf("%v => %v", p.Key, p.Value)
	})
	return "Assoc{" + strings.Join(parts, ", ") + "}"
}
