package stream

import (
	"errors"
	"sync"
)

// ErrClosed is returned by Emitter methods called after End or Fail.
var ErrClosed = errors.New("stream: emitter closed")

// Emitter is a Source fed by hand. Chunks written before the subscription
// are buffered and replayed to the subscriber; afterwards Write delivers on
// the calling goroutine.
type Emitter struct {
	mu         sync.Mutex
	hooks      *hookInvoker
	subscribed bool
	closed     bool
	buffered   []any
	endErr     error

	onChunk func(any)
	onEnd   func()
	onError func(error)
}

// New returns an Emitter.
func New(opts ...Option) *Emitter {
	return &Emitter{hooks: newHookInvoker(newConfig(opts).hooks)}
}

// Subscribe registers the handlers and replays anything written so far.
func (e *Emitter) Subscribe(onChunk func(any), onEnd func(), onError func(error)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.subscribed {
		onError(ErrAlreadyConsumed)
		return
	}
	e.subscribed = true
	e.hooks.invokeSubscribe()
	e.onChunk, e.onEnd, e.onError = e.hooks.wrap(onChunk, onEnd, onError)

	for _, v := range e.buffered {
		e.onChunk(v)
	}
	e.buffered = nil
	if e.closed {
		e.finish()
	}
}

// Write emits v.
func (e *Emitter) Write(v any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if !e.subscribed {
		e.buffered = append(e.buffered, v)
		return nil
	}
	e.onChunk(v)
	return nil
}

// End ends the stream normally.
func (e *Emitter) End() error {
	return e.close(nil)
}

// Fail ends the stream with err.
func (e *Emitter) Fail(err error) error {
	if err == nil {
		err = errors.New("stream: failed with nil error")
	}
	return e.close(err)
}

func (e *Emitter) close(err error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	e.closed, e.endErr = true, err
	if e.subscribed {
		e.finish()
	}
	return nil
}

func (e *Emitter) finish() {
	if e.endErr != nil {
		e.onError(e.endErr)
		return
	}
	e.onEnd()
}
