// Package benchmarks compares anyfn against popular Go collection and
// stream processing libraries.
package benchmarks

import (
	"context"
	"time"

	"github.com/lguimbarda/anyfn/fn/core"
)

// Test data sizes
const (
	SmallSize  = 100
	MediumSize = 1_000
	LargeSize  = 10_000
)

var ctx = context.Background()

// generateInts creates a slice of integers for benchmarking.
func generateInts(n int) []int {
	data := make([]int, n)
	for i := range data {
		data[i] = i
	}
	return data
}

func square(x int) int {
	return x * x
}

func isEven(x int) bool {
	return x%2 == 0
}

func add(a, b int) int {
	return a + b
}

// squareLater squares x on a resolved future, forcing the asynchronous path.
func squareLater(x int) any {
	return core.Resolved(x * x)
}

// mustAwait resolves v or panics.
func mustAwait(v any, err error) any {
	if err != nil {
		panic(err)
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	got, err := core.Await(ctx, v)
	if err != nil {
		panic(err)
	}
	return got
}
