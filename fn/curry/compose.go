package curry

import (
	"fmt"

	"github.com/lguimbarda/anyfn/fn/container"
	"github.com/lguimbarda/anyfn/fn/core"
)

// CatchStep is a Compose step that only runs when an earlier step failed.
// Create one with Catch.
type CatchStep struct {
	handler any
}

// Catch wraps handler as a recovery step. Its return value replaces the
// failure and the pipeline resumes with the following step.
func Catch(handler any) CatchStep {
	return CatchStep{handler: handler}
}

type step struct {
	fn    any    // callable, nil for key and catch steps
	key   string // property to extract
	catch any    // recovery handler
}

func (s step) apply(v any) (any, error) {
	if s.fn != nil {
		return core.Invoke(s.fn, v)
	}
	if value, ok := container.Get(v, s.key); ok {
		return value, nil
	}
	return core.Undefined, nil
}

// Compose returns a curried pipeline that feeds its arguments to the first
// step and each step's settled result to the next, left to right. Its arity
// is the arity of the first step.
//
// A step is a callable, a string key (the result is that property of the
// previous value, or core.Undefined) or a CatchStep. When a step fails,
// synchronously or through a rejected pending result, the following steps
// are skipped up to the nearest CatchStep, which receives the error. A
// failure that reaches the end is the pipeline's failure.
func Compose(steps ...any) (*Fn, error) {
	if len(steps) == 0 {
		return nil, core.Usagef("compose: no steps")
	}
	compiled := make([]step, len(steps))
	for i, s := range steps {
		switch s := s.(type) {
		case CatchStep:
			if i == 0 {
				return nil, core.Usagef("compose: step 0 is a catch step")
			}
			if !core.IsCallable(s.handler) {
				return nil, fmt.Errorf("compose: step %d: catch handler: %w: %T", i, core.ErrNotCallable, s.handler)
			}
			compiled[i] = step{catch: s.handler}
		case string:
			compiled[i] = step{key: s}
		default:
			if !core.IsCallable(s) {
				return nil, fmt.Errorf("compose: step %d: %w: %T", i, core.ErrNotCallable, s)
			}
			compiled[i] = step{fn: s}
		}
	}

	arity := 1
	if first := compiled[0]; first.fn != nil {
		arity = core.Arity(first.fn)
	}
	run := func(args ...any) (any, error) {
		var (
			v   any
			err error
		)
		if first := compiled[0]; first.fn != nil {
			v, err = core.Invoke(first.fn, args...)
		} else if len(args) > 0 {
			v, err = first.apply(args[0])
		} else {
			v = core.Undefined
		}
		return proceed(compiled, 1, v, err)
	}
	return CurryN(arity, run)
}

// proceed runs steps[i:] given the outcome of the step before i.
func proceed(steps []step, i int, v any, err error) (any, error) {
	for ; i < len(steps); i++ {
		s := steps[i]
		if err == nil && core.IsPending(v) {
			at := i
			return core.Chain(v, func(settled any) (any, error) {
				return proceed(steps, at, settled, nil)
			}, func(failure error) (any, error) {
				return proceed(steps, at, nil, failure)
			})
		}
		switch {
		case err != nil && s.catch != nil:
			v, err = core.Invoke(s.catch, err)
		case err == nil && s.catch == nil:
			v, err = s.apply(v)
		}
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Pipe composes steps and applies the pipeline to v.
func Pipe(v any, steps ...any) (any, error) {
	f, err := Compose(steps...)
	if err != nil {
		return nil, err
	}
	return f.Call(v)
}

// Tap returns a step that calls fn with its input for side effects and passes
// the input on once fn's result has settled. A failure of fn fails the step.
func Tap(fn any) func(v any) (any, error) {
	return func(v any) (any, error) {
		r, err := core.Invoke(fn, v)
		if err != nil {
			return nil, err
		}
		return core.Chain(r, func(any) (any, error) { return v, nil }, nil)
	}
}
