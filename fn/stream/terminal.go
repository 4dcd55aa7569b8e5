package stream

import (
	"context"
	"sync"

	"github.com/lguimbarda/anyfn/fn/container"
)

// Terminal functions subscribe to a source and block until it ends, fails
// or ctx is done. Returning early on ctx does not stop the source.

// outcome collects the single end-or-error signal of a subscription.
type outcome struct {
	done chan error
}

func newOutcome() *outcome {
	return &outcome{done: make(chan error, 1)}
}

func (o *outcome) finish(err error) {
	select {
	case o.done <- err:
	default:
	}
}

func (o *outcome) wait(ctx context.Context) error {
	select {
	case err := <-o.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Slice collects every chunk of src.
func Slice(ctx context.Context, src container.Source) ([]any, error) {
	var (
		mu     sync.Mutex
		result []any
	)
	o := newOutcome()
	src.Subscribe(func(v any) {
		mu.Lock()
		result = append(result, v)
		mu.Unlock()
	}, func() {
		o.finish(nil)
	}, o.finish)

	if err := o.wait(ctx); err != nil {
		return nil, err
	}
	mu.Lock()
	defer mu.Unlock()
	return result, nil
}

// First returns the first chunk of src, or ErrEmpty.
func First(ctx context.Context, src container.Source) (any, error) {
	var (
		once  sync.Once
		first = make(chan any, 1)
	)
	o := newOutcome()
	src.Subscribe(func(v any) {
		once.Do(func() { first <- v })
	}, func() {
		o.finish(ErrEmpty)
	}, o.finish)

	select {
	case v := <-first:
		return v, nil
	case err := <-o.done:
		// A chunk may have arrived just before the end.
		select {
		case v := <-first:
			return v, nil
		default:
		}
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run consumes src for its side effects.
func Run(ctx context.Context, src container.Source) error {
	o := newOutcome()
	src.Subscribe(func(any) {}, func() { o.finish(nil) }, o.finish)
	return o.wait(ctx)
}
