package core

import (
	"fmt"
	"reflect"
)

// Callable is implemented by function-like values that are not plain Go funcs,
// such as curried functions and compiled predicates.
type Callable interface {
	Call(args ...any) (any, error)
	Arity() int
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// IsCallable reports whether fn can be passed to Invoke.
func IsCallable(fn any) bool {
	if fn == nil {
		return false
	}
	if _, ok := fn.(Callable); ok {
		return true
	}
	rv := reflect.ValueOf(fn)
	return rv.Kind() == reflect.Func && !rv.IsNil()
}

// Arity returns the declared number of parameters of fn, not counting a
// variadic tail, or -1 if fn is not callable.
func Arity(fn any) int {
	if c, ok := fn.(Callable); ok {
		return c.Arity()
	}
	if !IsCallable(fn) {
		return -1
	}
	t := reflect.TypeOf(fn)
	if t.IsVariadic() {
		return t.NumIn() - 1
	}
	return t.NumIn()
}

// Invoke calls fn with args.
//
// Missing trailing arguments are passed as zero values and surplus arguments
// are dropped unless fn is variadic. Arguments are converted to the parameter
// types: assignable values pass through, numeric values convert across numeric
// kinds, nil and Undefined become zero values.
//
// Results are normalised to (value, error): no result yields nil, a trailing
// error result is returned as the error. A panic inside fn is recovered and
// returned as ErrPanic.
func Invoke(fn any, args ...any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, panicked(r)
		}
	}()

	switch f := fn.(type) {
	case Callable:
		return f.Call(args...)
	case func(any) (any, error):
		return f(arg(args, 0))
	case func(any) any:
		return f(arg(args, 0)), nil
	case func(any) bool:
		return f(arg(args, 0)), nil
	}

	rv := reflect.ValueOf(fn)
	if !rv.IsValid() || rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, fmt.Errorf("%w: %T", ErrNotCallable, fn)
	}
	in, err := convertArgs(rv.Type(), args)
	if err != nil {
		return nil, err
	}
	return collectResults(rv.Call(in))
}

func arg(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return nil
}

func convertArgs(t reflect.Type, args []any) ([]reflect.Value, error) {
	fixed := t.NumIn()
	if t.IsVariadic() {
		fixed--
	}

	in := make([]reflect.Value, 0, max(fixed, len(args)))
	for i := 0; i < fixed; i++ {
		v, err := convertArg(arg(args, i), t.In(i))
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		in = append(in, v)
	}
	if t.IsVariadic() {
		elem := t.In(fixed).Elem()
		for i := fixed; i < len(args); i++ {
			v, err := convertArg(args[i], elem)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			in = append(in, v)
		}
	}
	return in, nil
}

func convertArg(a any, t reflect.Type) (reflect.Value, error) {
	if a == nil {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(a)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if isNumberKind(v.Kind()) && isNumberKind(t.Kind()) {
		converted := v.Convert(t)
		// Float targets may round; integer targets must hold the exact value.
		if !isFloatKind(t.Kind()) && !Equal(converted.Interface(), a) {
			return reflect.Value{}, fmt.Errorf("%w: %v does not fit %s", ErrArgument, a, t)
		}
		return converted, nil
	}
	if a == Undefined {
		return reflect.Zero(t), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: cannot use %T as %s", ErrArgument, a, t)
}

func collectResults(out []reflect.Value) (any, error) {
	if len(out) == 0 {
		return nil, nil
	}

	last := out[len(out)-1]
	if last.Type() == errorType {
		var err error
		if !last.IsNil() {
			err = last.Interface().(error)
		}
		switch len(out) {
		case 1:
			return nil, err
		case 2:
			return resultValue(out[0]), err
		}
		return tuple(out[:len(out)-1]), err
	}

	if len(out) == 1 {
		return resultValue(out[0]), nil
	}
	return tuple(out), nil
}

// resultValue unboxes a result, turning typed nil pending values into nil so
// that IsPending never sees a Deferred it cannot call.
func resultValue(v reflect.Value) any {
	if v.Kind() == reflect.Pointer && v.IsNil() && v.Type().Implements(deferredType) {
		return nil
	}
	if v.Kind() == reflect.Interface && v.IsNil() {
		return nil
	}
	return v.Interface()
}

func tuple(out []reflect.Value) []any {
	values := make([]any, len(out))
	for i, v := range out {
		values[i] = resultValue(v)
	}
	return values
}

var deferredType = reflect.TypeOf((*Deferred)(nil)).Elem()

func isFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
