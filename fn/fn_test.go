package fn_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lguimbarda/anyfn/fn"
	"github.com/lguimbarda/anyfn/fn/container"
	"github.com/lguimbarda/anyfn/fn/core"
	"github.com/lguimbarda/anyfn/fn/stream"
)

func await(t *testing.T, v any, err error) any {
	t.Helper()
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, err := fn.Await(ctx, v)
	require.NoError(t, err)
	return got
}

func TestCurriedOperators(t *testing.T) {
	double, err := fn.Map.Call(func(x int) int { return x * 2 })
	require.NoError(t, err)
	require.IsType(t, &fn.Curried{}, double)

	got, err := double.(*fn.Curried).Call([]int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 6}, got)

	got, err = fn.Map.Call(func(x int) int { return x * 2 }, []int{4})
	require.NoError(t, err)
	assert.Equal(t, []int{8}, got, "all arguments at once")

	sum := func(acc, v int) int { return acc + v }
	got, err = fn.Reduce.Call(sum, 0, fn.Range(1, 10))
	require.NoError(t, err)
	assert.Equal(t, 55, got)

	fromTen, err := fn.Reduce.Call(sum, 10)
	require.NoError(t, err)
	got, err = fromTen.(*fn.Curried).Call([]int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 13, got)

	got, err = fn.Filter.Call(map[string]any{"role": "admin"}, []any{
		map[string]any{"name": "a", "role": "admin"},
		map[string]any{"name": "b", "role": "user"},
	})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = fn.Find.Call(fn.String, []any{1, "x", "y"})
	require.NoError(t, err)
	assert.Equal(t, "x", got)

	got, err = fn.Every.Call(fn.Number, []any{1, 2.5, uint8(3)})
	require.NoError(t, err)
	assert.Equal(t, true, got)

	var seen []any
	_, err = fn.ForEach.Call(func(v any) { seen = append(seen, v) }, container.NewSet("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, seen)
}

func TestComposedPipeline(t *testing.T) {
	isEven := func(x int) bool { return x%2 == 0 }
	square := func(x int) any { return core.Delay(time.Millisecond, x*x) }

	evens, err := fn.Filter.Call(isEven)
	require.NoError(t, err)
	squares, err := fn.Map.Call(square)
	require.NoError(t, err)
	total, err := fn.Reduce.Call(func(acc, v int) int { return acc + v }, 0)
	require.NoError(t, err)

	pipeline, err := fn.Compose(evens, squares, total)
	require.NoError(t, err)

	v, err := pipeline.Call(fn.Range(1, 6))
	assert.True(t, fn.IsPending(v))
	assert.Equal(t, 4+16+36, await(t, v, err))
}

func TestComposeWithCatch(t *testing.T) {
	errNotFound := errors.New("not found")
	lookup := func(id int) (map[string]any, error) {
		if id != 1 {
			return nil, errNotFound
		}
		return map[string]any{"name": "ada"}, nil
	}
	name, err := fn.Compose(lookup, "name", strings.ToUpper, fn.Catch(func(err error) string {
		return fmt.Sprintf("unknown (%v)", err)
	}))
	require.NoError(t, err)

	got, err := name.Call(1)
	require.NoError(t, err)
	assert.Equal(t, "ADA", got)

	got, err = name.Call(2)
	require.NoError(t, err)
	assert.Equal(t, "unknown (not found)", got)
}

func TestPlaceholder(t *testing.T) {
	sub, err := fn.Curry(func(a, b int) int { return a - b })
	require.NoError(t, err)

	minusThree, err := sub.Call(fn.P, 3)
	require.NoError(t, err)
	got, err := minusThree.(*fn.Curried).Call(10)
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestStreamThroughFacade(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	positive, err := fn.Filter.Call(func(x int) bool { return x > 0 }, stream.FromSlice([]int{-1, 2, -3, 4}))
	require.NoError(t, err)
	got, err := stream.Slice(ctx, positive.(fn.Source))
	require.NoError(t, err)
	assert.Equal(t, []any{2, 4}, got)
}

func TestMatchHelpers(t *testing.T) {
	strict, err := fn.Match(map[string]any{"id": fn.Number})
	require.NoError(t, err)
	loose, err := fn.MatchLoose(map[string]any{"id": fn.Number})
	require.NoError(t, err)

	record := map[string]any{"id": 1, "extra": true}
	ok, err := strict(record)
	require.NoError(t, err)
	assert.Equal(t, false, ok)
	ok, err = loose(record)
	require.NoError(t, err)
	assert.Equal(t, true, ok)

	keys, err := fn.MatchKeys(fn.String)
	require.NoError(t, err)
	ok, err = keys(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, true, ok)
}

func TestUsageErrors(t *testing.T) {
	_, err := fn.Map.Call(42, []int{1})
	assert.ErrorIs(t, err, core.ErrUsage)

	_, err = fn.Compose()
	assert.ErrorIs(t, err, core.ErrUsage)

	_, err = fn.Match(make(chan int))
	assert.ErrorIs(t, err, core.ErrUsage)
}
