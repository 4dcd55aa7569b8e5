// Package fn is the entry point of anyfn: higher-order operations over
// heterogeneous containers that stay synchronous when every input is plain
// and turn into a single pending value as soon as any input is pending.
//
// The traversal operators are exposed as curried functions. Supplying only
// the callback returns a function waiting for the container:
//
//	double := fn.Map.Partial(func(x int) int { return x * 2 })
//	out, err := double.Call([]int{1, 2, 3}) // []int{2, 4, 6}
//
// When a callback or a container element is pending the result is a
// core.Deferred; use Await to block on it:
//
//	v, err := fn.Reduce.Call(add, 0, fn.Range(1, 10))
//	sum, err := fn.Await(ctx, v) // 55
//
// The subpackages hold the building blocks: core (the resolution kernel),
// container (the container adapter), traverse, match, curry, stream and
// observe.
package fn

import (
	"context"
	"reflect"

	"github.com/lguimbarda/anyfn/fn/container"
	"github.com/lguimbarda/anyfn/fn/core"
	"github.com/lguimbarda/anyfn/fn/curry"
	"github.com/lguimbarda/anyfn/fn/match"
	"github.com/lguimbarda/anyfn/fn/traverse"
)

// Curried traversal operators. Callbacks receive (value, key, container).
var (
	// Map transforms every element: Map(callback, container).
	Map = curry.MustN(2, traverse.Map)
	// Filter keeps elements whose callback result is truthy. The callback may
	// be a match specification.
	Filter = curry.MustN(2, traverse.Filter)
	// Reject keeps elements whose callback result is falsy.
	Reject = curry.MustN(2, traverse.Reject)
	// Reduce folds sequentially: Reduce(callback, initial, container).
	Reduce = curry.MustN(3, traverse.Reduce)
	// Find returns the first matching element, or nil.
	Find = curry.MustN(2, traverse.Find)
	// FindKey returns the key of the first matching element, or nil.
	FindKey = curry.MustN(2, traverse.FindKey)
	// Some reports whether any element matches.
	Some = curry.MustN(2, traverse.Some)
	// Every reports whether all elements match.
	Every = curry.MustN(2, traverse.Every)
	// ForEach invokes the callback for its side effects.
	ForEach = curry.MustN(2, func(cb, c any) (any, error) {
		return nil, traverse.ForEach(cb, c)
	})
)

// Placeholder skips a slot in a curried call.
var P = curry.P

// Undefined is the value of an absent key.
var Undefined = core.Undefined

// Kind tags for match specifications.
const (
	Number = match.Number
	String = match.String
	Bool   = match.Bool
	Array  = match.Array
	Object = match.Object
	Func   = match.Func
)

type (
	// Deferred is a pending value.
	Deferred = core.Deferred
	// Future is the pending value created by anyfn.
	Future = core.Future
	// Curried is a curried function.
	Curried = curry.Fn
	// Predicate is a compiled match specification.
	Predicate = match.Predicate
	// Source is a push-based stream.
	Source = container.Source
)

// Curry returns fn curried to its declared arity.
func Curry(fn any) (*curry.Fn, error) { return curry.Curry(fn) }

// CurryN returns fn curried to arity n.
func CurryN(n int, fn any) (*curry.Fn, error) { return curry.CurryN(n, fn) }

// Compose chains steps left to right. See curry.Compose.
func Compose(steps ...any) (*curry.Fn, error) { return curry.Compose(steps...) }

// Catch marks a Compose step that recovers from earlier failures.
func Catch(handler any) curry.CatchStep { return curry.Catch(handler) }

// Match compiles a strict match specification.
func Match(spec any) (match.Predicate, error) { return match.Match(spec) }

// MatchLoose compiles a loose match specification.
func MatchLoose(spec any) (match.Predicate, error) { return match.MatchLoose(spec) }

// MatchKeys compiles a specification applied to every key of a container.
func MatchKeys(spec any) (match.Predicate, error) { return match.MatchKeys(spec) }

// Type returns the reflect.Type used as an instance-of specification.
func Type[T any]() reflect.Type { return match.Type[T]() }

// IsPending reports whether v is a pending value.
func IsPending(v any) bool { return core.IsPending(v) }

// Settle resolves every pending element of values.
func Settle(values []any) any { return core.Settle(values) }

// Guard invokes fn and turns a synchronous failure into a rejected Future.
func Guard(fn any, args ...any) any { return core.Guard(fn, args...) }

// Chain continues v with onSuccess or onFailure, synchronously when v is plain.
func Chain(v any, onSuccess func(any) (any, error), onFailure func(error) (any, error)) (any, error) {
	return core.Chain(v, onSuccess, onFailure)
}

// Await blocks until v settles or ctx is done.
func Await(ctx context.Context, v any) (any, error) { return core.Await(ctx, v) }

// Range returns the integers from..to inclusive.
func Range(from, to int) container.Range { return container.NewRange(from, to) }
