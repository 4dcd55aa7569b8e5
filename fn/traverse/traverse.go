// Package traverse implements the higher-order operators Map, Filter, Reduce,
// Find, Some, Every and ForEach over every container kind.
//
// Callbacks receive (value, key, container); surplus parameters may be
// omitted from the callback signature. Container elements that are pending are
// settled before the callback sees them, and callbacks may themselves return
// pending values.
//
// Every operator returns a plain result when nothing pending was involved. As
// soon as a pending value is observed the result becomes a single pending
// value. A callback failure is returned as an error if nothing pending has
// been observed yet in that call, and as a rejected pending value otherwise.
//
// Over a stream, Map, Filter and Reject return a new stream that subscribes to
// its source lazily; Reduce, Find, FindKey, Some and Every return a pending
// scalar.
package traverse

import (
	"fmt"

	"github.com/lguimbarda/anyfn/fn/container"
	"github.com/lguimbarda/anyfn/fn/core"
	"github.com/lguimbarda/anyfn/fn/match"
)

// Map applies fn to every element of c and rebuilds a container of the same
// kind with the results, preserving keys and order.
func Map(fn any, c any) (any, error) {
	if !core.IsCallable(fn) {
		return nil, fmt.Errorf("traverse.Map: %w: %T", core.ErrNotCallable, fn)
	}
	a, err := container.Of(c)
	if err != nil {
		return nil, err
	}
	if src := a.Source(); src != nil {
		return mapStream(fn, src), nil
	}

	pairs, err := a.Enumerate()
	if err != nil {
		return nil, err
	}
	results, err := eager(pairs, func(p container.Pair) (any, error) {
		return apply(fn, p, c)
	})
	if err != nil || core.IsPending(results) {
		return results, err
	}
	return core.Chain(core.Settle(results.([]any)), func(v any) (any, error) {
		settled := v.([]any)
		out := make([]container.Pair, len(pairs))
		for i, p := range pairs {
			out[i] = container.Pair{Key: p.Key, Value: settled[i]}
		}
		return a.Rebuild(out)
	}, nil)
}

// Filter keeps the elements of c for which pred returns a truthy result and
// rebuilds a container of the same kind. pred may be a match specification.
func Filter(pred any, c any) (any, error) {
	return filter("traverse.Filter", pred, c, true)
}

// Reject is the complement of Filter: it keeps the elements for which pred
// returns a falsy result.
func Reject(pred any, c any) (any, error) {
	return filter("traverse.Reject", pred, c, false)
}

type kept struct {
	value any
	ok    bool
}

func filter(op string, pred any, c any, want bool) (any, error) {
	fn, err := predicate(op, pred)
	if err != nil {
		return nil, err
	}
	a, err := container.Of(c)
	if err != nil {
		return nil, err
	}
	if src := a.Source(); src != nil {
		return filterStream(fn, src, want), nil
	}

	pairs, err := a.Enumerate()
	if err != nil {
		return nil, err
	}
	results, err := eager(pairs, func(p container.Pair) (any, error) {
		return test(fn, p, c, want)
	})
	if err != nil || core.IsPending(results) {
		return results, err
	}
	return core.Chain(core.Settle(results.([]any)), func(v any) (any, error) {
		var out []container.Pair
		for i, r := range v.([]any) {
			if k := r.(kept); k.ok {
				out = append(out, container.Pair{Key: pairs[i].Key, Value: k.value})
			}
		}
		return a.Rebuild(out)
	}, nil)
}

// Reduce folds c from left to right: acc = fn(acc, value, key, c), starting
// from initial. Each step waits for the previous accumulator to settle, so
// steps never overlap.
func Reduce(fn any, initial any, c any) (any, error) {
	if !core.IsCallable(fn) {
		return nil, fmt.Errorf("traverse.Reduce: %w: %T", core.ErrNotCallable, fn)
	}
	a, err := container.Of(c)
	if err != nil {
		return nil, err
	}
	if src := a.Source(); src != nil {
		return reduceStream(fn, initial, src), nil
	}

	pairs, err := a.Enumerate()
	if err != nil {
		return nil, err
	}
	acc := initial
	for _, p := range pairs {
		// acc is only plain while nothing pending has been seen, so a sync
		// error here is always reported synchronously.
		acc, err = core.Chain(acc, func(prev any) (any, error) {
			return core.Chain(p.Value, func(v any) (any, error) {
				return core.Invoke(fn, prev, v, p.Key, c)
			}, nil)
		}, nil)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// ForEach calls fn for every element of c in enumeration order, for its side
// effects. Pending results are not waited for. The first synchronous failure
// stops the iteration and is returned.
//
// Over a stream, ForEach subscribes and returns immediately; failures of fn
// are ignored and there is no way to learn when the stream has ended.
func ForEach(fn any, c any) error {
	if !core.IsCallable(fn) {
		return fmt.Errorf("traverse.ForEach: %w: %T", core.ErrNotCallable, fn)
	}
	a, err := container.Of(c)
	if err != nil {
		return err
	}
	if src := a.Source(); src != nil {
		forEachStream(fn, src)
		return nil
	}

	pairs, err := a.Enumerate()
	if err != nil {
		return err
	}
	for _, p := range pairs {
		if _, err := apply(fn, p, c); err != nil {
			return err
		}
	}
	return nil
}

// eager evaluates each pair with fn without waiting on any of them. It returns
// the results, an error when fn fails before anything pending was produced, or
// a rejected Future when it fails afterwards.
func eager(pairs []container.Pair, fn func(container.Pair) (any, error)) (any, error) {
	results := make([]any, len(pairs))
	async := false
	for i, p := range pairs {
		r, err := fn(p)
		if err != nil {
			if async {
				return core.Rejected(err), nil
			}
			return nil, err
		}
		async = async || core.IsPending(r)
		results[i] = r
	}
	return results, nil
}

// apply settles the element and calls fn(value, key, c).
func apply(fn any, p container.Pair, c any) (any, error) {
	return core.Chain(p.Value, func(v any) (any, error) {
		return core.Invoke(fn, v, p.Key, c)
	}, nil)
}

// test settles the element, calls fn on it and reports whether the result's
// truthiness equals want.
func test(fn any, p container.Pair, c any, want bool) (any, error) {
	return core.Chain(p.Value, func(v any) (any, error) {
		return invokeThen(func(r any) (any, error) {
			return kept{value: v, ok: core.Truthy(r) == want}, nil
		}, fn, v, p.Key, c)
	}, nil)
}

// invokeThen calls fn with args and passes the settled result to next.
func invokeThen(next func(any) (any, error), fn any, args ...any) (any, error) {
	r, err := core.Invoke(fn, args...)
	if err != nil {
		return nil, err
	}
	return core.Chain(r, next, nil)
}

// predicate returns fn when it is callable and otherwise compiles it as a
// loose match specification, so object specs ignore extra properties.
func predicate(op string, fn any) (any, error) {
	if fn == nil {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotCallable)
	}
	if core.IsCallable(fn) {
		return fn, nil
	}
	p, err := match.MatchLoose(fn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}
