package stream

import "errors"

// Result is the envelope producers send on a channel: a value, an error, or
// a sentinel control signal.
//
// An error Result ends the stream with that error. A sentinel carrying
// ErrEndOfStream ends it normally; other sentinels are dropped.
type Result[T any] struct {
	value      T
	err        error
	isSentinel bool
}

// Ok creates a successful Result containing the given value.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Err creates an error Result.
func Err[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// Sentinel creates a sentinel Result with an optional descriptive error.
func Sentinel[T any](err error) Result[T] {
	return Result[T]{err: err, isSentinel: true}
}

// ErrEndOfStream is the sentinel error indicating normal stream termination.
var ErrEndOfStream = errors.New("end of stream")

// EndOfStream creates a sentinel Result that ends the stream normally.
func EndOfStream[T any]() Result[T] {
	return Sentinel[T](ErrEndOfStream)
}

// IsValue returns true if this Result contains a successful value.
func (r Result[T]) IsValue() bool {
	return r.err == nil && !r.isSentinel
}

// IsSentinel returns true if this Result is a sentinel.
func (r Result[T]) IsSentinel() bool {
	return r.isSentinel
}

// IsError returns true if this Result contains an error.
func (r Result[T]) IsError() bool {
	return r.err != nil && !r.isSentinel
}

// Value returns the contained value, or the zero value for errors and
// sentinels.
func (r Result[T]) Value() T {
	return r.value
}

// Error returns the error of an error Result, and nil otherwise.
func (r Result[T]) Error() error {
	if r.isSentinel {
		return nil
	}
	return r.err
}

// Sentinel returns the context error of a sentinel Result, and nil otherwise.
func (r Result[T]) Sentinel() error {
	if !r.isSentinel {
		return nil
	}
	return r.err
}

// erase drops the value type.
func (r Result[T]) erase() Result[any] {
	return Result[any]{value: r.value, err: r.err, isSentinel: r.isSentinel}
}
