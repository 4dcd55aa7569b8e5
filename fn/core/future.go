package core

import (
	"context"
	"sync"
	"time"
)

// Deferred is the capability that makes a value pending: it accepts a success
// and a failure continuation and invokes exactly one of them, at most once,
// once the underlying computation settles.
//
// Any type with this method is treated as pending by the kernel, so futures
// from other libraries can be adapted with a one-method wrapper.
type Deferred interface {
	Then(onSuccess func(any), onFailure func(error))
}

type futureState uint8

const (
	statePending futureState = iota
	stateResolved
	stateRejected
)

type continuation struct {
	onSuccess func(any)
	onFailure func(error)
}

// Future is the kernel's Deferred implementation. It settles exactly once and
// notifies continuations in registration order. Continuations registered after
// settlement run immediately on the registering goroutine; the others run on
// the goroutine that settles the future.
type Future struct {
	mu      sync.Mutex
	claimed bool
	state   futureState
	value   any
	err     error
	waiters []continuation
	done    chan struct{}
}

// NewFuture returns an unsettled Future with its resolve and reject functions.
// Only the first call to either function has an effect. Resolving with a
// Deferred adopts that value's outcome.
func NewFuture() (f *Future, resolve func(any), reject func(error)) {
	f = &Future{done: make(chan struct{})}
	return f, f.resolve, f.reject
}

// Resolved returns a Future that settles with v. If v is itself pending the
// returned Future follows it.
func Resolved(v any) *Future {
	f, resolve, _ := NewFuture()
	resolve(v)
	return f
}

// Rejected returns a Future that has failed with err.
func Rejected(err error) *Future {
	f, _, reject := NewFuture()
	reject(err)
	return f
}

// From converts v into a Future: Futures are returned unchanged, other
// Deferred values are adopted and plain values are wrapped as resolved.
func From(v any) *Future {
	if f, ok := v.(*Future); ok && f != nil {
		return f
	}
	return Resolved(v)
}

// Go runs fn on a new goroutine and returns a Future for its outcome.
// A panic in fn rejects the Future with ErrPanic.
func Go(fn func() (any, error)) *Future {
	f, resolve, reject := NewFuture()
	go func() {
		v, err := protect(func(any) (any, error) { return fn() }, nil)
		if err != nil {
			reject(err)
			return
		}
		resolve(v)
	}()
	return f
}

// Delay returns a Future that resolves with v once d has elapsed.
func Delay(d time.Duration, v any) *Future {
	f, resolve, _ := NewFuture()
	time.AfterFunc(d, func() { resolve(v) })
	return f
}

func (f *Future) claim() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.claimed {
		return false
	}
	f.claimed = true
	return true
}

func (f *Future) resolve(v any) {
	if !f.claim() {
		return
	}
	f.adopt(v)
}

func (f *Future) reject(err error) {
	if !f.claim() {
		return
	}
	f.fail(err)
}

func (f *Future) fail(err error) {
	if err == nil {
		err = ErrRejected
	}
	f.settle(nil, err)
}

// adopt settles f with v, following v first when it is pending.
func (f *Future) adopt(v any) {
	if !IsPending(v) {
		f.settle(v, nil)
		return
	}
	d := v.(Deferred)
	if other, ok := d.(*Future); ok && other == f {
		f.settle(nil, Usagef("future resolved with itself"))
		return
	}
	d.Then(f.adopt, f.fail)
}

func (f *Future) settle(v any, err error) {
	f.mu.Lock()
	if f.state != statePending {
		f.mu.Unlock()
		return
	}
	if err != nil {
		f.state, f.err = stateRejected, err
	} else {
		f.state, f.value = stateResolved, v
	}
	waiters := f.waiters
	f.waiters = nil
	close(f.done)
	f.mu.Unlock()

	for _, w := range waiters {
		f.notify(w)
	}
}

func (f *Future) notify(w continuation) {
	if f.state == stateRejected {
		if w.onFailure != nil {
			w.onFailure(f.err)
		}
		return
	}
	if w.onSuccess != nil {
		w.onSuccess(f.value)
	}
}

// Then registers continuations. Either may be nil.
func (f *Future) Then(onSuccess func(any), onFailure func(error)) {
	w := continuation{onSuccess: onSuccess, onFailure: onFailure}
	f.mu.Lock()
	if f.state == statePending {
		f.waiters = append(f.waiters, w)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	f.notify(w)
}

// Done returns a channel closed once the future has settled.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Settled reports whether the future has settled, and with what outcome.
func (f *Future) Settled() (value any, err error, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == statePending {
		return nil, nil, false
	}
	return f.value, f.err, true
}

// Await blocks until the future settles or ctx is done.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		v, err, _ := f.Settled()
		return v, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Await is the blocking bridge out of the kernel: plain values are returned
// as-is, pending values are waited for until they settle or ctx is done.
func Await(ctx context.Context, v any) (any, error) {
	if !IsPending(v) {
		return v, nil
	}
	return From(v).Await(ctx)
}
