package stream

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/destel/rill"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestSources(t *testing.T) {
	tests := []struct {
		name string
		src  func() *Stream
		want []any
	}{
		{"slice", func() *Stream { return FromSlice([]int{1, 2, 3}) }, []any{1, 2, 3}},
		{"unbuffered slice", func() *Stream { return FromSlice([]string{"a", "b"}, WithBufferSize(0)) }, []any{"a", "b"}},
		{"iter", func() *Stream { return FromIter(slices.Values([]int{4, 5})) }, []any{4, 5}},
		{"empty", func() *Stream { return Empty() }, nil},
		{"once", func() *Stream { return Once("x") }, []any{"x"}},
		{"repeat", func() *Stream { return Repeat(context.Background(), 7, 3) }, []any{7, 7, 7}},
		{"generate", func() *Stream {
			n := 0
			return Generate(func() (int, bool, error) {
				n++
				return n, n <= 3, nil
			})
		}, []any{1, 2, 3}},
		{"channel", func() *Stream {
			ch := make(chan int, 2)
			ch <- 1
			ch <- 2
			close(ch)
			return FromChannel(context.Background(), ch)
		}, []any{1, 2}},
		{"results until end sentinel", func() *Stream {
			ch := make(chan Result[int], 4)
			ch <- Ok(1)
			ch <- Sentinel[int](errors.New("page break"))
			ch <- Ok(2)
			ch <- EndOfStream[int]()
			return FromResults(context.Background(), ch)
		}, []any{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Slice(testContext(t), tt.src())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSourceFailures(t *testing.T) {
	errBoom := errors.New("boom")

	t.Run("generate error", func(t *testing.T) {
		src := Generate(func() (int, bool, error) { return 0, false, errBoom })
		_, err := Slice(testContext(t), src)
		assert.ErrorIs(t, err, errBoom)
	})

	t.Run("error result", func(t *testing.T) {
		ch := make(chan Result[int], 2)
		ch <- Ok(1)
		ch <- Err[int](errBoom)
		close(ch)
		_, err := Slice(testContext(t), FromResults(context.Background(), ch))
		assert.ErrorIs(t, err, errBoom)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		src := Repeat(ctx, 1, -1)
		time.AfterFunc(10*time.Millisecond, cancel)
		err := Run(testContext(t), src)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSingleSubscription(t *testing.T) {
	sources := map[string]interface {
		Subscribe(func(any), func(), func(error))
	}{
		"stream":   FromSlice([]int{1}),
		"emitter":  New(),
		"observed": Observe(FromSlice([]int{1})),
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			src.Subscribe(func(any) {}, func() {}, func(error) {})
			var got error
			src.Subscribe(func(any) {}, func() {}, func(err error) { got = err })
			assert.ErrorIs(t, got, ErrAlreadyConsumed)
		})
	}
}

func TestEmitter(t *testing.T) {
	e := New()
	require.NoError(t, e.Write(1))

	var (
		chunks []any
		ended  bool
	)
	e.Subscribe(func(v any) { chunks = append(chunks, v) }, func() { ended = true }, func(err error) {
		t.Errorf("unexpected error: %v", err)
	})
	assert.Equal(t, []any{1}, chunks, "buffered chunk replayed on subscribe")

	require.NoError(t, e.Write(2))
	assert.Equal(t, []any{1, 2}, chunks, "chunk delivered synchronously")

	require.NoError(t, e.End())
	assert.True(t, ended)
	assert.ErrorIs(t, e.Write(3), ErrClosed)
	assert.ErrorIs(t, e.Fail(errors.New("late")), ErrClosed)
}

func TestEmitterFailBeforeSubscribe(t *testing.T) {
	errBoom := errors.New("boom")
	e := New()
	require.NoError(t, e.Write("a"))
	require.NoError(t, e.Fail(errBoom))

	var chunks []any
	var got error
	e.Subscribe(func(v any) { chunks = append(chunks, v) }, func() {
		t.Error("end after failure")
	}, func(err error) { got = err })
	assert.Equal(t, []any{"a"}, chunks)
	assert.ErrorIs(t, got, errBoom)
}

func TestTerminals(t *testing.T) {
	ctx := testContext(t)

	v, err := First(ctx, FromSlice([]int{9, 8}))
	require.NoError(t, err)
	assert.Equal(t, 9, v)

	_, err = First(ctx, Empty())
	assert.ErrorIs(t, err, ErrEmpty)

	require.NoError(t, Run(ctx, FromSlice([]int{1, 2})))

	stalled := New()
	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	_, err = Slice(short, stalled)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHooks(t *testing.T) {
	var (
		mu     sync.Mutex
		events []string
	)
	record := func(s string) {
		mu.Lock()
		events = append(events, s)
		mu.Unlock()
	}
	first := Hooks{
		OnSubscribe: func() { record("subscribe") },
		OnChunk:     func(v any) { record("chunk") },
		OnEnd:       func() { record("end") },
	}
	second := Hooks{OnEnd: func() { record("end2") }}

	_, err := Slice(testContext(t), FromSlice([]int{1, 2}, WithHooks(first, second)))
	require.NoError(t, err)
	assert.Equal(t, []string{"subscribe", "chunk", "chunk", "end", "end2"}, events)
}

func TestObserveErrors(t *testing.T) {
	errBoom := errors.New("boom")
	var seen atomic.Value
	src := Observe(Generate(func() (int, bool, error) { return 0, false, errBoom }), Hooks{
		OnError: func(err error) { seen.Store(err) },
	})
	_, err := Slice(testContext(t), src)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, errBoom, seen.Load())
}

func TestSafeHooks(t *testing.T) {
	var recovered atomic.Value
	hooks := NewSafeHooks(Hooks{
		OnChunk: func(any) { panic("hook exploded") },
	}, func(r any) { recovered.Store(r) })

	got, err := Slice(testContext(t), Observe(FromSlice([]int{1}), hooks))
	require.NoError(t, err)
	assert.Equal(t, []any{1}, got)
	assert.Equal(t, "hook exploded", recovered.Load())
}

func TestRill(t *testing.T) {
	ctx := testContext(t)

	doubled := rill.Map(rill.FromSlice([]int{1, 2, 3}, nil), 1, func(x int) (int, error) {
		return x * 2, nil
	})
	got, err := Slice(ctx, FromRill(ctx, doubled))
	require.NoError(t, err)
	assert.Equal(t, []any{2, 4, 6}, got)

	errBoom := errors.New("boom")
	failing := rill.Map(rill.FromSlice([]int{1, 2, 3}, nil), 1, func(x int) (int, error) {
		if x == 2 {
			return 0, errBoom
		}
		return x, nil
	})
	_, err = Slice(ctx, FromRill(ctx, failing))
	assert.ErrorIs(t, err, errBoom)

	back, err := rill.ToSlice(ToRill(ctx, FromSlice([]string{"a", "b"})))
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, back)
}

type user struct {
	ID   int
	Name string
}

func scanUser(rows *sql.Rows) (user, error) {
	var u user
	err := rows.Scan(&u.ID, &u.Name)
	return u, err
}

func TestQuery(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO users (id, name) VALUES (1, 'ada'), (2, 'grace'), (3, 'linus')`)
	require.NoError(t, err)

	ctx := testContext(t)
	got, err := Slice(ctx, Query(ctx, db, `SELECT id, name FROM users WHERE id >= ? ORDER BY id`, scanUser, 2))
	require.NoError(t, err)
	assert.Equal(t, []any{user{2, "grace"}, user{3, "linus"}}, got)

	_, err = Slice(ctx, Query(ctx, db, `SELECT nope FROM missing`, scanUser))
	assert.Error(t, err)
}

func TestInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(testContext(t))
	defer cancel()

	var ticks atomic.Int64
	src := Interval(ctx, time.Millisecond, WithHooks(Hooks{OnChunk: func(any) { ticks.Add(1) }}))
	time.AfterFunc(20*time.Millisecond, cancel)

	err := Run(testContext(t), src)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Positive(t, ticks.Load())
}
