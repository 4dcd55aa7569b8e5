package core

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

var (
	// ErrUsage marks construction-time misuse: a non-callable where a function is
	// required, a negative arity, an unsupported specification shape. Usage errors
	// are always returned synchronously.
	ErrUsage = errors.New("anyfn: usage error")

	// ErrNotCallable is returned when a value that must be invoked is not a func
	// and does not implement Callable.
	ErrNotCallable = fmt.Errorf("%w: value is not callable", ErrUsage)

	// ErrArgument is returned when an argument cannot be converted to the
	// parameter type of the function being invoked, including numbers an
	// integer parameter cannot hold exactly.
	ErrArgument = errors.New("anyfn: argument type mismatch")

	// ErrRejected is the failure used when a pending value is rejected with a nil error.
	ErrRejected = errors.New("anyfn: rejected")
)

// ErrPanic is the failure recorded when a callback panics, either while
// Invoke calls it or while a Chain continuation or Go body runs during
// settlement. Stack lists only the callback side of the goroutine: frames of
// the runtime, of reflect and of anyfn itself are omitted.
type ErrPanic struct {
	Value any
	Stack string
}

func (e ErrPanic) Error() string {
	msg := fmt.Sprintf("anyfn: callback panicked: %v", e.Value)
	if e.Stack == "" {
		return msg
	}
	return msg + "\n" + e.Stack
}

// Unwrap returns the panic value when the callback panicked with an error.
func (e ErrPanic) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// panicked builds an ErrPanic for a value returned by recover. It must be
// called directly from the deferred function that recovered.
func panicked(r any) ErrPanic {
	var pcs [32]uintptr
	// Skip runtime.Callers, panicked and the deferred function.
	n := runtime.Callers(3, pcs[:])
	return ErrPanic{Value: r, Stack: callbackStack(pcs[:n])}
}

func callbackStack(pcs []uintptr) string {
	if len(pcs) == 0 {
		return ""
	}
	var lines []string
	frames := runtime.CallersFrames(pcs)
	for {
		f, more := frames.Next()
		if !evaluatorFrame(f) {
			lines = append(lines, f.Function, fmt.Sprintf("\t%s:%d", f.File, f.Line))
		}
		if !more {
			break
		}
	}
	return strings.Join(lines, "\n")
}

// evaluatorFrame reports frames that belong to the machinery calling the
// callback rather than to the callback. Tests of anyfn packages count as
// callers.
func evaluatorFrame(f runtime.Frame) bool {
	switch {
	case strings.HasPrefix(f.Function, "runtime."), strings.HasPrefix(f.Function, "reflect."):
		return true
	case strings.HasSuffix(f.File, "_test.go"):
		return false
	}
	return strings.Contains(f.Function, "github.com/lguimbarda/anyfn/fn/")
}

// Usagef builds an error wrapping ErrUsage.
func Usagef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}
