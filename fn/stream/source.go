package stream

import (
	"context"
	"iter"
	"time"
)

// FromSlice creates a Stream that emits each element of items in order.
func FromSlice[T any](items []T, opts ...Option) *Stream {
	return produce(context.Background(), opts, func(ctx context.Context, send func(Result[any]) bool) {
		for _, item := range items {
			if !send(Ok[any](item)) {
				return
			}
		}
	})
}

// FromChannel creates a Stream that emits values received from ch. The
// stream ends when ch is closed and fails when ctx is done. The caller is
// responsible for closing ch.
func FromChannel[T any](ctx context.Context, ch <-chan T, opts ...Option) *Stream {
	return produce(ctx, opts, func(ctx context.Context, send func(Result[any]) bool) {
		for {
			select {
			case <-ctx.Done():
				return
			case item, ok := <-ch:
				if !ok || !send(Ok[any](item)) {
					return
				}
			}
		}
	})
}

// FromResults creates a Stream from a channel of Results. The first error
// Result fails the stream; an end-of-stream sentinel ends it.
func FromResults[T any](ctx context.Context, ch <-chan Result[T], opts ...Option) *Stream {
	return Emit(ctx, func(context.Context) <-chan Result[T] { return ch }, opts...)
}

// FromIter creates a Stream from an iterator sequence.
func FromIter[T any](seq iter.Seq[T], opts ...Option) *Stream {
	return produce(context.Background(), opts, func(ctx context.Context, send func(Result[any]) bool) {
		for item := range seq {
			if !send(Ok[any](item)) {
				return
			}
		}
	})
}

// Empty creates a Stream that ends without emitting.
func Empty(opts ...Option) *Stream {
	return produce(context.Background(), opts, func(context.Context, func(Result[any]) bool) {})
}

// Once creates a Stream that emits value and ends.
func Once[T any](value T, opts ...Option) *Stream {
	return produce(context.Background(), opts, func(ctx context.Context, send func(Result[any]) bool) {
		send(Ok[any](value))
	})
}

// Generate creates a Stream from fn, called repeatedly until it reports
// false. An error from fn fails the stream.
func Generate[T any](fn func() (T, bool, error), opts ...Option) *Stream {
	return produce(context.Background(), opts, func(ctx context.Context, send func(Result[any]) bool) {
		for {
			value, ok, err := fn()
			if err != nil {
				send(Err[any](err))
				return
			}
			if !ok || !send(Ok[any](value)) {
				return
			}
		}
	})
}

// Repeat creates a Stream that emits value n times. If n is negative it
// repeats until ctx is done, at which point the stream fails with ctx.Err().
func Repeat[T any](ctx context.Context, value T, n int, opts ...Option) *Stream {
	return produce(ctx, opts, func(ctx context.Context, send func(Result[any]) bool) {
		for count := 0; n < 0 || count < n; count++ {
			if !send(Ok[any](value)) {
				return
			}
		}
	})
}

// Interval creates a Stream that emits 0, 1, 2, ... every d. It runs until
// ctx is done, at which point the stream fails with ctx.Err().
func Interval(ctx context.Context, d time.Duration, opts ...Option) *Stream {
	return produce(ctx, opts, func(ctx context.Context, send func(Result[any]) bool) {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for tick := 0; ; tick++ {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !send(Ok[any](tick)) {
					return
				}
			}
		}
	})
}
