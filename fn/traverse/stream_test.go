package traverse

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ahmetb/go-linq/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lguimbarda/anyfn/fn/container"
	"github.com/lguimbarda/anyfn/fn/core"
	"github.com/lguimbarda/anyfn/fn/stream"
)

func collect(acc []any, v any) []any {
	return append(acc, v)
}

func sliceOf(t *testing.T, v any, err error) []any {
	t.Helper()
	require.NoError(t, err)
	src, ok := v.(container.Source)
	require.True(t, ok, "got %T, want a stream", v)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	out, err := stream.Slice(ctx, src)
	require.NoError(t, err)
	return out
}

func TestStreamFilterReduceMatchesInMemory(t *testing.T) {
	data := make([]int, 200)
	for i := range data {
		data[i] = i
	}
	keep := func(x int) bool { return x%3 == 0 || x%7 == 0 }

	var want []any
	linq.From(data).WhereT(keep).SelectT(func(x int) any { return x * x }).ToSlice(&want)

	filtered, err := Filter(keep, stream.FromSlice(data, stream.WithBufferSize(8)))
	require.NoError(t, err)
	squared, err := Map(func(x int) int { return x * x }, filtered)
	require.NoError(t, err)
	v, err := Reduce(collect, []any{}, squared)
	assert.True(t, core.IsPending(v))
	assert.Equal(t, want, await(t, v, err))
}

func TestStreamThrowStopsProcessing(t *testing.T) {
	errBoom := errors.New("boom")
	var processed []int
	src := stream.New()

	filtered, err := Filter(func(x int) (bool, error) {
		processed = append(processed, x)
		if x == 3 {
			return false, errBoom
		}
		return true, nil
	}, src)
	require.NoError(t, err)

	var reduced []any
	v, err := Reduce(func(acc []any, x int) []any {
		reduced = append(reduced, x)
		return append(acc, x)
	}, []any{}, filtered)
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		require.NoError(t, src.Write(i))
	}
	require.NoError(t, src.End())

	assert.ErrorIs(t, awaitErr(t, v, err), errBoom)
	assert.Equal(t, []int{1, 2, 3}, processed, "no chunk processed after the failure")
	assert.Equal(t, []any{1, 2}, reduced)
}

func TestStreamMapKeepsOrder(t *testing.T) {
	slow := func(x int) any {
		return core.Delay(time.Duration(5-x)*time.Millisecond, x*10)
	}
	mapped, err := Map(slow, stream.FromSlice([]int{1, 2, 3, 4}))
	got := sliceOf(t, mapped, err)
	assert.Equal(t, []any{10, 20, 30, 40}, got)
}

func TestStreamMapPendingFailure(t *testing.T) {
	errBoom := errors.New("boom")
	mapped, err := Map(func(x int) any {
		if x == 2 {
			return core.Rejected(errBoom)
		}
		return x
	}, stream.FromSlice([]int{1, 2, 3}))
	require.NoError(t, err)

	var (
		mu     sync.Mutex
		chunks []any
	)
	done := make(chan error, 1)
	mapped.(container.Source).Subscribe(func(v any) {
		mu.Lock()
		chunks = append(chunks, v)
		mu.Unlock()
	}, func() {
		done <- nil
	}, func(err error) {
		done <- err
	})

	select {
	case err := <-done:
		assert.ErrorIs(t, err, errBoom)
	case <-time.After(2 * time.Second):
		t.Fatal("stream never finished")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []any{1}, chunks)
}

func TestStreamSearch(t *testing.T) {
	gt2 := func(x int) bool { return x > 2 }

	v, err := Find(gt2, stream.FromSlice([]int{1, 2, 3, 4}))
	assert.Equal(t, 3, await(t, v, err))

	v, err = FindKey(gt2, stream.FromSlice([]int{1, 2, 3, 4}))
	assert.Equal(t, 2, await(t, v, err), "stream keys are chunk indexes")

	v, err = Find(gt2, stream.FromSlice([]int{1, 2}))
	assert.Nil(t, await(t, v, err))

	v, err = Some(gt2, stream.FromSlice([]int{1, 5}))
	assert.Equal(t, true, await(t, v, err))

	v, err = Every(gt2, stream.FromSlice([]int{3, 1, 4}))
	assert.Equal(t, false, await(t, v, err))

	v, err = Every(gt2, stream.Empty())
	assert.Equal(t, true, await(t, v, err))
}

func TestStreamReduceRange(t *testing.T) {
	asyncSum := func(acc, v int) any { return later(acc + v) }
	v, err := Reduce(asyncSum, 0, stream.FromSlice([]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}))
	assert.Equal(t, 55, await(t, v, err))
}

func TestStreamUpstreamFailure(t *testing.T) {
	errBoom := errors.New("boom")
	src := stream.Generate(func() (int, bool, error) { return 0, false, errBoom })
	v, err := Reduce(collect, []any{}, src)
	assert.ErrorIs(t, awaitErr(t, v, err), errBoom)
}

func TestDerivedStreamSingleUse(t *testing.T) {
	mapped, err := Map(identity, stream.FromSlice([]int{1}))
	require.NoError(t, err)
	assert.Equal(t, []any{1}, sliceOf(t, mapped, nil))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = stream.Slice(ctx, mapped.(container.Source))
	assert.ErrorIs(t, err, container.ErrConsumed)
}

func TestStreamForEach(t *testing.T) {
	seen := make(chan int, 3)
	err := ForEach(func(v, k int) { seen <- v*10 + k }, stream.FromSlice([]int{1, 2, 3}))
	require.NoError(t, err)

	var got []int
	for range 3 {
		select {
		case v := <-seen:
			got = append(got, v)
		case <-time.After(2 * time.Second):
			t.Fatal("callback not invoked")
		}
	}
	assert.Equal(t, []int{10, 21, 32}, got)
}
