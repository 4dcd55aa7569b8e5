package curry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lguimbarda/anyfn/fn/container"
	"github.com/lguimbarda/anyfn/fn/core"
)

func await(t *testing.T, v any, err error) any {
	t.Helper()
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, err := core.Await(ctx, v)
	require.NoError(t, err, "await")
	return got
}

func awaitErr(t *testing.T, v any, err error) error {
	t.Helper()
	if err != nil {
		return err
	}
	require.True(t, core.IsPending(v), "got %v, want a failure", v)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = core.Await(ctx, v)
	return err
}

// call applies each argument list in turn, as f(a)(b)(c) would.
func call(t *testing.T, f any, argLists ...[]any) (any, error) {
	t.Helper()
	var (
		v   = f
		err error
	)
	for _, args := range argLists {
		fn, ok := v.(*Fn)
		require.True(t, ok, "intermediate result %v is %T, want *Fn", v, v)
		v, err = fn.Call(args...)
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

var formula = func(a, b, c int) int { return (a + b) * c }

func TestCurry(t *testing.T) {
	f := Must(formula)
	require.Equal(t, 3, f.Arity())

	tests := []struct {
		name string
		args [][]any
	}{
		{"one at a time", [][]any{{2}, {3}, {5}}},
		{"two then one", [][]any{{2, 3}, {5}}},
		{"all at once", [][]any{{2, 3, 5}}},
		{"empty call keeps waiting", [][]any{{}, {2, 3}, {}, {5}}},
		{"surplus arguments", [][]any{{2}, {3, 5, 99}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := call(t, f, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, 25, got)
		})
	}
}

func TestCurryPendingArgument(t *testing.T) {
	v, err := call(t, Must(formula), []any{2, core.Delay(5*time.Millisecond, 3)}, []any{5})
	require.True(t, core.IsPending(v), "result %v is not pending", v)
	assert.Equal(t, 25, await(t, v, err))

	v, err = call(t, Must(formula), []any{2, core.Rejected(errors.New("no b"))}, []any{5})
	assert.EqualError(t, awaitErr(t, v, err), "no b")
}

func TestCurryArgumentOutOfRange(t *testing.T) {
	half := Must(func(a, b int) int { return a / b })
	_, err := call(t, half, []any{3}, []any{1.5})
	assert.ErrorIs(t, err, core.ErrArgument, "fractions are not truncated")
}

func TestCurryPlaceholder(t *testing.T) {
	sub := Must(func(a, b int) int { return a - b })

	got, err := call(t, sub, []any{P, 10}, []any{15})
	require.NoError(t, err)
	assert.Equal(t, 5, got, "sub(_, 10)(15)")

	f := Must(formula)
	got, err = call(t, f, []any{P, P, 5}, []any{P, 3}, []any{2})
	require.NoError(t, err)
	assert.Equal(t, 25, got, "f(_, _, 5)(_, 3)(2)")

	partial := f.Partial(P, 3)
	assert.Equal(t, 2, partial.Arity(), "arity after placeholder partial")
	assert.Equal(t, 3, f.Arity(), "partial application modified the original")
}

func TestCurryN(t *testing.T) {
	sum := MustN(3, func(xs ...int) int {
		total := 0
		for _, x := range xs {
			total += x
		}
		return total
	})
	got, err := call(t, sum, []any{1}, []any{2}, []any{3})
	require.NoError(t, err)
	assert.Equal(t, 6, got)

	zero := MustN(0, func() string { return "now" })
	got, err = zero.Call()
	require.NoError(t, err)
	assert.Equal(t, "now", got)
}

func TestCurryUsageErrors(t *testing.T) {
	_, err := Curry(42)
	assert.ErrorIs(t, err, core.ErrUsage)
	_, err = CurryN(-1, formula)
	assert.ErrorIs(t, err, core.ErrUsage)
	assert.Panics(t, func() { Must(nil) })
}

var (
	sum = Must(func(a, b int) int { return a + b })
	mul = Must(func(a, b int) int { return a * b })
)

func partial(f *Fn, arg any) *Fn {
	v, err := f.Call(arg)
	if err != nil {
		panic(err)
	}
	return v.(*Fn)
}

func TestCompose(t *testing.T) {
	pipeline, err := Compose(partial(sum, 10), partial(mul, 2), partial(sum, 3))
	require.NoError(t, err)
	assert.Equal(t, 1, pipeline.Arity())

	got, err := pipeline.Call(10)
	require.NoError(t, err)
	assert.Equal(t, 43, got, "sync pipeline")

	v, err := pipeline.Call(core.Delay(5*time.Millisecond, 10))
	assert.Equal(t, 43, await(t, v, err), "pending input")

	slowMul := func(x int) any { return core.Delay(5*time.Millisecond, x*2) }
	pipeline, err = Compose(partial(sum, 10), slowMul, partial(sum, 3))
	require.NoError(t, err)
	v, err = pipeline.Call(10)
	assert.Equal(t, 43, await(t, v, err), "pending intermediate")
}

func TestComposeArityFromFirstStep(t *testing.T) {
	pipeline, err := Compose(func(a, b int) int { return a + b }, partial(mul, 3))
	require.NoError(t, err)
	got, err := call(t, pipeline, []any{1}, []any{2})
	require.NoError(t, err)
	assert.Equal(t, 9, got)
}

var errBoom = errors.New("boom")

func TestComposeCatch(t *testing.T) {
	recovered := func(err error) string { return "recovered: " + err.Error() }
	shout := func(s string) string { return s + "!" }

	t.Run("sync throw", func(t *testing.T) {
		pipeline, err := Compose(func(int) (int, error) { return 0, errBoom }, Catch(recovered), shout)
		require.NoError(t, err)
		got, err := pipeline.Call(1)
		require.NoError(t, err)
		assert.Equal(t, "recovered: boom!", got)
	})

	t.Run("rejected pending value", func(t *testing.T) {
		pipeline, err := Compose(func(int) any { return core.Rejected(errBoom) }, partial(sum, 1), Catch(recovered))
		require.NoError(t, err)
		v, err := pipeline.Call(1)
		assert.Equal(t, "recovered: boom", await(t, v, err))
	})

	t.Run("catch skipped on success", func(t *testing.T) {
		pipeline, err := Compose(partial(sum, 1), Catch(recovered), partial(mul, 10))
		require.NoError(t, err)
		got, err := pipeline.Call(1)
		require.NoError(t, err)
		assert.Equal(t, 20, got)
	})

	t.Run("uncaught sync failure", func(t *testing.T) {
		pipeline, err := Compose(partial(sum, 1), func(int) error { return errBoom })
		require.NoError(t, err)
		_, err = pipeline.Call(1)
		assert.ErrorIs(t, err, errBoom)
	})

	t.Run("uncaught async failure", func(t *testing.T) {
		pipeline, err := Compose(func(x int) any { return core.Delay(time.Millisecond, x) }, func(int) error { return errBoom })
		require.NoError(t, err)
		v, err := pipeline.Call(1)
		assert.ErrorIs(t, awaitErr(t, v, err), errBoom)
	})
}

func TestComposeKeySteps(t *testing.T) {
	user := container.ObjectOf("profile", map[string]any{"name": "ada"})
	got, err := Pipe(user, "profile", "name")
	require.NoError(t, err)
	assert.Equal(t, "ada", got)

	got, err = Pipe(user, "missing", "name")
	require.NoError(t, err)
	assert.Equal(t, core.Undefined, got)
}

func TestComposeUsageErrors(t *testing.T) {
	tests := map[string][]any{
		"no steps":          nil,
		"non-callable step": {partial(sum, 1), 42},
		"leading catch":     {Catch(func(error) int { return 0 })},
		"bad catch handler": {partial(sum, 1), Catch("nope")},
	}
	for name, steps := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Compose(steps...)
			assert.ErrorIs(t, err, core.ErrUsage)
		})
	}
}

func TestTap(t *testing.T) {
	var seen any
	got, err := Pipe(4, Tap(func(v int) { seen = v }), partial(mul, 2))
	require.NoError(t, err)
	assert.Equal(t, 8, got)
	assert.Equal(t, 4, seen)
}
