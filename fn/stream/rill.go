package stream

import (
	"context"

	"github.com/destel/rill"

	"github.com/lguimbarda/anyfn/fn/container"
)

// FromRill creates a Stream from a rill channel. The first Try carrying an
// error fails the stream; the rest of the channel is drained in the
// background so rill's producers can exit.
func FromRill[T any](ctx context.Context, in <-chan rill.Try[T], opts ...Option) *Stream {
	return produce(ctx, opts, func(ctx context.Context, send func(Result[any]) bool) {
		defer rill.DrainNB(in)
		for {
			select {
			case <-ctx.Done():
				return
			case item, ok := <-in:
				if !ok {
					return
				}
				if item.Error != nil {
					send(Err[any](item.Error))
					return
				}
				if !send(Ok[any](item.Value)) {
					return
				}
			}
		}
	})
}

// ToRill subscribes to src and returns its chunks as a rill channel, so
// rill's concurrent operators can take over. A stream failure is sent as a
// final Try carrying the error. The channel is closed when src ends or fails;
// the caller must keep receiving until then or cancel ctx.
func ToRill(ctx context.Context, src container.Source) <-chan rill.Try[any] {
	out := make(chan rill.Try[any], DefaultBufferSize)
	send := func(t rill.Try[any]) bool {
		select {
		case <-ctx.Done():
			return false
		case out <- t:
			return true
		}
	}
	var done bool
	src.Subscribe(func(v any) {
		if !done {
			done = !send(rill.Try[any]{Value: v})
		}
	}, func() {
		close(out)
	}, func(err error) {
		send(rill.Try[any]{Error: err})
		close(out)
	})
	return out
}
