package container

import (
	"math"
	"reflect"

	"github.com/samber/lo"

	"github.com/lguimbarda/anyfn/fn/core"
)

// memberIndex finds positions of values equal under core.Equal. Scalars are
// bucketed by hashKey; everything else sits in loose and is scanned.
type memberIndex struct {
	buckets map[any][]int
	loose   []int
}

func (x *memberIndex) add(v any, pos int) {
	k, ok := hashKey(v)
	if !ok {
		x.loose = append(x.loose, pos)
		return
	}
	if x.buckets == nil {
		x.buckets = make(map[any][]int)
	}
	x.buckets[k] = append(x.buckets[k], pos)
}

// find returns the position of the member equal to v; at reads the member
// stored at a position.
func (x *memberIndex) find(v any, at func(int) any) (int, bool) {
	candidates := x.loose
	if k, ok := hashKey(v); ok {
		candidates = x.buckets[k]
	}
	pos, _, ok := lo.FindIndexOf(candidates, func(i int) bool { return core.Equal(at(i), v) })
	return pos, ok
}

// hashKey normalizes scalars so that values equal under core.Equal share a
// key: every number becomes its float64 value. Distinct large integers may
// share a bucket, which find resolves with core.Equal. NaN and non-scalar
// values have no key.
func hashKey(v any) (any, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, true
	}
	switch rv.Kind() {
	case reflect.Bool, reflect.String:
		return v, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) {
			return nil, false
		}
		return f, true
	}
	return nil, false
}
