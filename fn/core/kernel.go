// Package core is the resolution kernel: it decides whether anything is
// pending and turns mixed plain/pending inputs into either a plain result or
// a single pending one.
//
// Every other anyfn package goes through IsPending, Settle, Guard, Chain and
// Scan and never inspects a Deferred directly.
//
// NOTE: this package should have no dependencies outside the standard
// library, including other anyfn packages.
package core

import (
	"reflect"
	"sync"
)

// IsPending reports whether v is a pending value. A nil pointer that
// implements Deferred is a plain value: it has nothing to settle.
func IsPending(v any) bool {
	d, ok := v.(Deferred)
	if !ok {
		return false
	}
	if f, ok := d.(*Future); ok {
		return f != nil
	}
	rv := reflect.ValueOf(d)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	}
	return true
}

// Settle returns values unchanged when none of them is pending. Otherwise it
// returns a single Future resolving to a new slice in which every pending
// element is replaced by its settled value. The first failure observed wins.
func Settle(values []any) any {
	remaining := 0
	for _, v := range values {
		if IsPending(v) {
			remaining++
		}
	}
	if remaining == 0 {
		return values
	}

	out := make([]any, len(values))
	copy(out, values)

	f, resolve, reject := NewFuture()
	var mu sync.Mutex
	for i, v := range values {
		if !IsPending(v) {
			continue
		}
		From(v).Then(func(settled any) {
			mu.Lock()
			out[i] = settled
			remaining--
			last := remaining == 0
			mu.Unlock()
			if last {
				resolve(out)
			}
		}, reject)
	}
	return f
}

// Guard invokes fn with args and folds a synchronous failure into a rejected
// Future, so callers handle sync errors and async rejections on one path.
// A pending result is returned as-is.
func Guard(fn any, args ...any) any {
	v, err := Invoke(fn, args...)
	if err != nil {
		return Rejected(err)
	}
	return v
}

// Chain sequences onSuccess after v.
//
// When v is plain, onSuccess runs immediately and its outcome is returned
// synchronously. When v is pending, Chain returns a Future that settles with
// the outcome of onSuccess or, on failure, of onFailure. A nil onSuccess
// passes the value through; a nil onFailure propagates the failure. Panics in
// either continuation are recovered as ErrPanic.
func Chain(v any, onSuccess func(any) (any, error), onFailure func(error) (any, error)) (any, error) {
	if !IsPending(v) {
		if onSuccess == nil {
			return v, nil
		}
		return protect(onSuccess, v)
	}

	f, resolve, reject := NewFuture()
	From(v).Then(func(value any) {
		if onSuccess == nil {
			resolve(value)
			return
		}
		forward(resolve, reject)(protect(onSuccess, value))
	}, func(err error) {
		if onFailure == nil {
			reject(err)
			return
		}
		forward(resolve, reject)(protect(func(any) (any, error) { return onFailure(err) }, nil))
	})
	return f, nil
}

func forward(resolve func(any), reject func(error)) func(any, error) {
	return func(v any, err error) {
		if err != nil {
			reject(err)
			return
		}
		resolve(v)
	}
}

func protect(fn func(any) (any, error), v any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, panicked(r)
		}
	}()
	return fn(v)
}

// Scan evaluates step(0), step(1), ... strictly in order and stops at the
// first index whose settled result satisfies stop. It returns that index, or
// -1 when no index matched; if any step was pending, the index is delivered
// as a pending value instead.
//
// A step is not started before every earlier step has settled, so a later
// synchronous result can never overtake an earlier pending one.
func Scan(n int, step func(i int) (any, error), stop func(any) bool) (any, error) {
	return scanFrom(0, n, step, stop)
}

func scanFrom(i, n int, step func(int) (any, error), stop func(any) bool) (any, error) {
	for ; i < n; i++ {
		r, err := step(i)
		if err != nil {
			return nil, err
		}
		if IsPending(r) {
			at := i
			return Chain(r, func(v any) (any, error) {
				if stop(v) {
					return at, nil
				}
				return scanFrom(at+1, n, step, stop)
			}, nil)
		}
		if stop(r) {
			return i, nil
		}
	}
	return -1, nil
}
