package traverse

import (
	"sync"
	"sync/atomic"

	"github.com/lguimbarda/anyfn/fn/container"
	"github.com/lguimbarda/anyfn/fn/core"
)

// sequencer orders the work triggered by stream chunks. Each chunk appends a
// step to tail, and a step only runs once every earlier step has settled.
// Downstream handlers are serialised and none runs after the sequence has
// ended or failed.
type sequencer struct {
	mu    sync.Mutex
	tail  any
	index int

	handlerMu sync.Mutex
	done      atomic.Bool
	onError   func(error)
}

func newSequencer(initial any, onError func(error)) *sequencer {
	return &sequencer{tail: initial, onError: onError}
}

// next assigns the chunk its index and appends the step built for it.
func (s *sequencer) next(build func(i int) (func(prev any) (any, error), error)) {
	if s.done.Load() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index
	s.index++
	step, err := build(i)
	if err != nil {
		s.fail(err)
		return
	}
	next, err := core.Chain(s.tail, step, nil)
	if err != nil {
		s.fail(err)
		return
	}
	s.tail = next
	s.watch(next)
}

// end runs fn with the final tail value once every step has settled.
func (s *sequencer) end(fn func(last any)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, _ := core.Chain(s.tail, func(last any) (any, error) {
		s.close(func() { fn(last) })
		return nil, nil
	}, nil)
	s.watch(next)
}

func (s *sequencer) watch(v any) {
	if core.IsPending(v) {
		core.From(v).Then(nil, s.fail)
	}
}

// deliver runs fn unless the sequence has finished.
func (s *sequencer) deliver(fn func()) {
	s.handlerMu.Lock()
	defer s.handlerMu.Unlock()
	if !s.done.Load() {
		fn()
	}
}

// close finishes the sequence and runs fn, at most once overall.
func (s *sequencer) close(fn func()) {
	s.handlerMu.Lock()
	defer s.handlerMu.Unlock()
	if s.done.Swap(true) {
		return
	}
	fn()
}

func (s *sequencer) fail(err error) {
	s.close(func() { s.onError(err) })
}

// derived is a stream computed from an upstream Source. It subscribes
// upstream only when it is itself subscribed, and only once.
type derived struct {
	upstream container.Source
	used     atomic.Bool
	// process computes the outcome for chunk i eagerly; it settles to a kept.
	process func(chunk any, i int) (any, error)
}

func (d *derived) Subscribe(onChunk func(any), onEnd func(), onError func(error)) {
	if !d.used.CompareAndSwap(false, true) {
		onError(container.ErrConsumed)
		return
	}
	seq := newSequencer(nil, onError)
	d.upstream.Subscribe(func(chunk any) {
		seq.next(func(i int) (func(any) (any, error), error) {
			r, err := d.process(chunk, i)
			if err != nil {
				return nil, err
			}
			return func(any) (any, error) {
				return core.Chain(r, func(v any) (any, error) {
					if k := v.(kept); k.ok {
						seq.deliver(func() { onChunk(k.value) })
					}
					return nil, nil
				}, nil)
			}, nil
		})
	}, func() {
		seq.end(func(any) { onEnd() })
	}, seq.fail)
}

func mapStream(fn any, src container.Source) container.Source {
	return &derived{upstream: src, process: func(chunk any, i int) (any, error) {
		return core.Chain(chunk, func(v any) (any, error) {
			return invokeThen(func(r any) (any, error) {
				return kept{value: r, ok: true}, nil
			}, fn, v, i, src)
		}, nil)
	}}
}

func filterStream(fn any, src container.Source, want bool) container.Source {
	return &derived{upstream: src, process: func(chunk any, i int) (any, error) {
		return test(fn, container.Pair{Key: i, Value: chunk}, src, want)
	}}
}

func reduceStream(fn any, initial any, src container.Source) *core.Future {
	f, resolve, reject := core.NewFuture()
	seq := newSequencer(initial, reject)
	src.Subscribe(func(chunk any) {
		seq.next(func(i int) (func(any) (any, error), error) {
			return func(acc any) (any, error) {
				return core.Chain(chunk, func(v any) (any, error) {
					return core.Invoke(fn, acc, v, i, src)
				}, nil)
			}, nil
		})
	}, func() {
		seq.end(resolve)
	}, seq.fail)
	return f
}

func searchStream(fn any, src container.Source, want bool, result func(container.Pair, bool) any) *core.Future {
	f, resolve, reject := core.NewFuture()
	seq := newSequencer(nil, reject)
	src.Subscribe(func(chunk any) {
		seq.next(func(i int) (func(any) (any, error), error) {
			return func(any) (any, error) {
				if seq.done.Load() {
					return nil, nil
				}
				r, err := test(fn, container.Pair{Key: i, Value: chunk}, src, want)
				if err != nil {
					return nil, err
				}
				return core.Chain(r, func(v any) (any, error) {
					if k := v.(kept); k.ok {
						seq.close(func() {
							resolve(result(container.Pair{Key: i, Value: k.value}, true))
						})
					}
					return nil, nil
				}, nil)
			}, nil
		})
	}, func() {
		seq.end(func(any) { resolve(result(container.Pair{}, false)) })
	}, seq.fail)
	return f
}

func forEachStream(fn any, src container.Source) {
	var (
		mu    sync.Mutex
		index int
	)
	src.Subscribe(func(chunk any) {
		mu.Lock()
		i := index
		index++
		mu.Unlock()
		_, _ = apply(fn, container.Pair{Key: i, Value: chunk}, src)
	}, func() {}, func(error) {})
}
