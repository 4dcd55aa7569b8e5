package core

import (
	"math"
	"reflect"
)

type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined stands for an absent value, such as a key that a mapping does not
// have. It is distinct from nil, which is a present value.
var Undefined any = undefined{}

// Truthy applies ordinary truthiness: nil, Undefined, false, numeric zero,
// NaN and the empty string are falsy; every other value, including empty
// containers, is truthy.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil, undefined:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case float64:
		return x != 0 && !math.IsNaN(x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// Equal compares numbers by value across numeric kinds and everything else
// with reflect.DeepEqual. NaN is not equal to anything, itself included.
func Equal(a, b any) bool {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.IsValid() && rb.IsValid() && isNumberKind(ra.Kind()) && isNumberKind(rb.Kind()) {
		if isNaN(ra) || isNaN(rb) {
			return false
		}
		return compareNumbers(ra, rb) == 0
	}
	return reflect.DeepEqual(a, b)
}

// IsNumber reports whether v is of an integer or floating point kind.
func IsNumber(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.IsValid() && isNumberKind(rv.Kind())
}

// CompareNumbers orders two numeric values; both must satisfy IsNumber.
// The order is total: NaN sorts after every other number and compares
// equal to itself.
func CompareNumbers(a, b any) int {
	return compareNumbers(reflect.ValueOf(a), reflect.ValueOf(b))
}

func compareNumbers(a, b reflect.Value) int {
	switch {
	case isSigned(a.Kind()) && isSigned(b.Kind()):
		return cmp3(a.Int() < b.Int(), a.Int() > b.Int())
	case isUnsigned(a.Kind()) && isUnsigned(b.Kind()):
		return cmp3(a.Uint() < b.Uint(), a.Uint() > b.Uint())
	case isSigned(a.Kind()) && isUnsigned(b.Kind()):
		if a.Int() < 0 {
			return -1
		}
		return cmp3(uint64(a.Int()) < b.Uint(), uint64(a.Int()) > b.Uint())
	case isUnsigned(a.Kind()) && isSigned(b.Kind()):
		return -compareNumbers(b, a)
	}
	fa, fb := toFloat(a), toFloat(b)
	switch an, bn := math.IsNaN(fa), math.IsNaN(fb); {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	}
	return cmp3(fa < fb, fa > fb)
}

func isNaN(v reflect.Value) bool {
	k := v.Kind()
	return (k == reflect.Float32 || k == reflect.Float64) && math.IsNaN(v.Float())
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}

func toFloat(v reflect.Value) float64 {
	switch {
	case isSigned(v.Kind()):
		return float64(v.Int())
	case isUnsigned(v.Kind()):
		return float64(v.Uint())
	}
	return v.Float()
}

func isSigned(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUnsigned(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}
