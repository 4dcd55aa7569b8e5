package traverse

import (
	"github.com/lguimbarda/anyfn/fn/container"
	"github.com/lguimbarda/anyfn/fn/core"
)

// Find returns the first element of c, in enumeration order, for which pred
// returns a truthy result, or nil when there is none.
//
// Elements are tested one at a time: an element is not tested until the
// previous test has settled, so a later synchronous match can never win over
// an earlier pending one.
func Find(pred any, c any) (any, error) {
	return search("traverse.Find", pred, c, true, func(p container.Pair, found bool) any {
		if !found {
			return nil
		}
		return p.Value
	})
}

// FindKey is Find returning the key of the first match instead of its value.
func FindKey(pred any, c any) (any, error) {
	return search("traverse.FindKey", pred, c, true, func(p container.Pair, found bool) any {
		if !found {
			return nil
		}
		return p.Key
	})
}

// Some reports whether pred returns a truthy result for any element of c. It
// stops at the first truthy result.
func Some(pred any, c any) (any, error) {
	return search("traverse.Some", pred, c, true, func(_ container.Pair, found bool) any {
		return found
	})
}

// Every reports whether pred returns a truthy result for all elements of c.
// It stops at the first falsy result.
func Every(pred any, c any) (any, error) {
	return search("traverse.Every", pred, c, false, func(_ container.Pair, found bool) any {
		return !found
	})
}

// search scans c in order for the first element whose test result has
// truthiness want, and maps the outcome with result. The Pair passed to result
// holds the settled element value.
func search(op string, pred any, c any, want bool, result func(p container.Pair, found bool) any) (any, error) {
	fn, err := predicate(op, pred)
	if err != nil {
		return nil, err
	}
	a, err := container.Of(c)
	if err != nil {
		return nil, err
	}
	if src := a.Source(); src != nil {
		return searchStream(fn, src, want, result), nil
	}

	pairs, err := a.Enumerate()
	if err != nil {
		return nil, err
	}
	var hit any
	idx, err := core.Scan(len(pairs), func(i int) (any, error) {
		return test(fn, pairs[i], c, want)
	}, func(r any) bool {
		k := r.(kept)
		hit = k.value
		return k.ok
	})
	if err != nil {
		return nil, err
	}
	return core.Chain(idx, func(v any) (any, error) {
		i := v.(int)
		if i < 0 {
			return result(container.Pair{}, false), nil
		}
		return result(container.Pair{Key: pairs[i].Key, Value: hit}, true), nil
	}, nil)
}
