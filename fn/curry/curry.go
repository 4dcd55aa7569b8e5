// Package curry provides automatic currying with placeholders and composition
// of sync/async-transparent pipelines.
package curry

import (
	"fmt"

	"github.com/lguimbarda/anyfn/fn/core"
)

type placeholder struct{}

func (placeholder) String() string { return "_" }

// P is the placeholder: a P argument leaves its slot open, to be filled by a
// later call before any trailing slot.
//
//	sub := curry.Must(func(a, b int) int { return a - b })
//	from10, _ := sub.Call(curry.P, 10) // b = 10
//	from10.(*curry.Fn).Call(15)        // 5
var P any = placeholder{}

func isPlaceholder(v any) bool {
	_, ok := v.(placeholder)
	return ok
}

// Fn is a curried function. It is immutable: every partial application
// returns a new Fn. Fn implements core.Callable.
type Fn struct {
	target any
	arity  int
	slots  []any
}

// Curry returns a curried fn whose arity is the declared parameter count of
// fn, not counting a variadic tail.
func Curry(fn any) (*Fn, error) {
	if !core.IsCallable(fn) {
		return nil, fmt.Errorf("curry: %w: %T", core.ErrNotCallable, fn)
	}
	return &Fn{target: fn, arity: core.Arity(fn)}, nil
}

// CurryN returns a curried fn of arity n.
func CurryN(n int, fn any) (*Fn, error) {
	if n < 0 {
		return nil, core.Usagef("curry: negative arity %d", n)
	}
	if !core.IsCallable(fn) {
		return nil, fmt.Errorf("curry: %w: %T", core.ErrNotCallable, fn)
	}
	return &Fn{target: fn, arity: n}, nil
}

// Must is like Curry but panics on error.
func Must(fn any) *Fn {
	f, err := Curry(fn)
	if err != nil {
		panic(err)
	}
	return f
}

// MustN is like CurryN but panics on error.
func MustN(n int, fn any) *Fn {
	f, err := CurryN(n, fn)
	if err != nil {
		panic(err)
	}
	return f
}

// Arity returns the number of slots still open.
func (f *Fn) Arity() int {
	return f.arity - filled(f.slots, f.arity)
}

// Partial returns f with args applied, without invoking it even when every
// slot is filled.
func (f *Fn) Partial(args ...any) *Fn {
	return &Fn{target: f.target, arity: f.arity, slots: merge(f.slots, args)}
}

// Call applies args. While slots remain open the result is a new *Fn. Once
// every slot is filled, pending arguments are settled and the target is
// invoked; its result is returned as-is, pending or not.
func (f *Fn) Call(args ...any) (any, error) {
	slots := merge(f.slots, args)
	if filled(slots, f.arity) < f.arity {
		return &Fn{target: f.target, arity: f.arity, slots: slots}, nil
	}
	for i, v := range slots {
		if isPlaceholder(v) {
			slots[i] = core.Undefined
		}
	}
	return core.Chain(core.Settle(slots), func(v any) (any, error) {
		return core.Invoke(f.target, v.([]any)...)
	}, nil)
}

func (f *Fn) String() string {
	return fmt.Sprintf("curry.Fn(%T/%d)", f.target, f.Arity())
}

// merge fills open placeholder slots with args in order and appends the rest.
func merge(slots, args []any) []any {
	out := make([]any, len(slots), len(slots)+len(args))
	copy(out, slots)
	j := 0
	for i := range out {
		if j == len(args) {
			break
		}
		if isPlaceholder(out[i]) {
			out[i] = args[j]
			j++
		}
	}
	return append(out, args[j:]...)
}

// filled counts the non-placeholder values among the first arity slots.
func filled(slots []any, arity int) int {
	n := 0
	for _, v := range slots[:min(len(slots), arity)] {
		if !isPlaceholder(v) {
			n++
		}
	}
	return n
}
