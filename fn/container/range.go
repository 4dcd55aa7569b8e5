package container

import (
	"fmt"
	"math"
)

// Range is the inclusive integer sequence From..To. It counts down when
// To < From. Elements are generated on demand.
type Range struct {
	From, To int
}

// NewRange returns the inclusive range from..to.
func NewRange(from, to int) Range {
	return Range{From: from, To: to}
}

// Len returns the number of elements; a range is never empty. A range
// whose length does not fit in an int reports math.MaxInt.
func (r Range) Len() int {
	n, ok := r.size()
	if !ok {
		return math.MaxInt
	}
	return n
}

// size is the exact element count, or false when it overflows int.
func (r Range) size() (int, bool) {
	lo, hi := r.From, r.To
	if hi < lo {
		lo, hi = hi, lo
	}
	span := uint64(hi) - uint64(lo)
	if span >= math.MaxInt {
		return 0, false
	}
	return int(span) + 1, true
}

// At returns the element at offset i.
func (r Range) At(i int) int {
	if r.To >= r.From {
		return r.From + i
	}
	return r.From - i
}

func (r Range) String() string {
	return fmt.Sprintf("%d..%d", r.From, r.To)
}

// runOf returns the Range holding vals when they are ints forming a
// contiguous ascending or descending run.
func runOf(vals []any) (Range, bool) {
	if len(vals) == 0 {
		return Range{}, false
	}
	ints := make([]int, len(vals))
	for i, v := range vals {
		n, ok := v.(int)
		if !ok {
			return Range{}, false
		}
		ints[i] = n
	}
	up := len(ints) == 1 || ints[0] < ints[1]
	for i := 1; i < len(ints); i++ {
		prev, n := ints[i-1], ints[i]
		if up && (prev == math.MaxInt || n != prev+1) {
			return Range{}, false
		}
		if !up && (prev == math.MinInt || n != prev-1) {
			return Range{}, false
		}
	}
	return NewRange(ints[0], ints[len(ints)-1]), true
}
