// Package stream provides push-based sources implementing container.Source,
// plus blocking terminals and lifecycle hooks for them.
//
// Every source can be subscribed to once. A second subscription is failed
// with ErrAlreadyConsumed. After zero or more chunks, exactly one of the end
// or error handlers runs, and nothing runs after it.
//
// Producer-backed sources run the producer on its own goroutine and deliver
// chunks from a second goroutine, so handlers never run inside Subscribe.
// An Emitter instead delivers on the goroutine that writes to it.
package stream

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/lguimbarda/anyfn/fn/container"
)

var (
	// ErrAlreadyConsumed is delivered to the error handler of a second
	// subscription.
	ErrAlreadyConsumed = container.ErrConsumed

	// ErrEmpty is returned by First when the stream ends without a chunk.
	ErrEmpty = errors.New("stream is empty")
)

// Stream is a source fed by a producer that sends Results on a channel.
type Stream struct {
	ctx   context.Context
	emit  func(ctx context.Context) <-chan Result[any]
	hooks *hookInvoker
	used  atomic.Bool
}

// Emit creates a Stream from a producer. The producer is started on
// subscription with a context derived from ctx that is cancelled once the
// stream has ended or failed; it must close the channel when done.
func Emit[T any](ctx context.Context, fn func(ctx context.Context) <-chan Result[T], opts ...Option) *Stream {
	cfg := newConfig(opts)
	return &Stream{
		ctx:   ctx,
		hooks: newHookInvoker(cfg.hooks),
		emit: func(ctx context.Context) <-chan Result[any] {
			in := fn(ctx)
			out := make(chan Result[any], cfg.bufferSize)
			go func() {
				defer close(out)
				for res := range in {
					select {
					case <-ctx.Done():
						return
					case out <- res.erase():
					}
				}
			}()
			return out
		},
	}
}

// produce creates a Stream whose producer sends on a channel buffered per
// opts. send reports false once the stream has been cancelled.
func produce(ctx context.Context, opts []Option, run func(ctx context.Context, send func(Result[any]) bool)) *Stream {
	cfg := newConfig(opts)
	return &Stream{
		ctx:   ctx,
		hooks: newHookInvoker(cfg.hooks),
		emit: func(ctx context.Context) <-chan Result[any] {
			out := make(chan Result[any], cfg.bufferSize)
			go func() {
				defer close(out)
				run(ctx, func(r Result[any]) bool {
					select {
					case <-ctx.Done():
						return false
					case out <- r:
						return true
					}
				})
			}()
			return out
		},
	}
}

// Subscribe starts the producer and delivers its Results to the handlers.
func (s *Stream) Subscribe(onChunk func(any), onEnd func(), onError func(error)) {
	if !s.used.CompareAndSwap(false, true) {
		onError(ErrAlreadyConsumed)
		return
	}
	s.hooks.invokeSubscribe()
	onChunk, onEnd, onError = s.hooks.wrap(onChunk, onEnd, onError)

	ctx, cancel := context.WithCancel(s.ctx)
	in := s.emit(ctx)
	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				onError(ctx.Err())
				return
			case res, ok := <-in:
				switch {
				case !ok:
					// The producer also stops when ctx is done.
					if err := ctx.Err(); err != nil {
						onError(err)
					} else {
						onEnd()
					}
					return
				case res.IsError():
					onError(res.Error())
					return
				case res.IsSentinel():
					if errors.Is(res.Sentinel(), ErrEndOfStream) {
						onEnd()
						return
					}
				default:
					onChunk(res.Value())
				}
			}
		}
	}()
}
