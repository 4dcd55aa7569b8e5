// Package container classifies arbitrary values into a closed set of
// container kinds and gives every kind the same two capabilities: enumerate
// its (key, value) pairs in a deterministic order, and rebuild a container of
// the same kind from pairs.
//
// Supported shapes:
//
//	KindSequence     slices and arrays
//	KindMapping      *Object, map[string]T, structs and pointers to structs
//	KindSet          *Set, map[T]struct{}
//	KindAssociation  *Assoc, maps with non-string keys
//	KindRange        Range
//	KindStream       any Source
//
// Go maps have no insertion order, so they enumerate in sorted key order.
package container

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/lguimbarda/anyfn/fn/core"
)

// Kind is the classification of a container.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindSequence
	KindMapping
	KindSet
	KindAssociation
	KindRange
	KindStream
)

var kindNames = [...]string{"invalid", "sequence", "mapping", "set", "association", "range", "stream"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

var (
	// ErrNotContainer is returned for values that have no container kind.
	ErrNotContainer = fmt.Errorf("%w: value is not a container", core.ErrUsage)

	// ErrStream is returned when a stream is enumerated or rebuilt; streams are
	// push-driven and can only be subscribed to.
	ErrStream = errors.New("anyfn: streams cannot be enumerated or rebuilt")

	// ErrRangeTooLong is returned when a range has more elements than an int
	// can count.
	ErrRangeTooLong = errors.New("anyfn: range too long to enumerate")

	// ErrConsumed is delivered to the error handler of a second subscription
	// on a single-use Source.
	ErrConsumed = errors.New("anyfn: stream already consumed")
)

// Source is a push-based stream: Subscribe registers three handlers. onChunk
// is invoked once per chunk; then exactly one of onEnd or onError is invoked
// once. No handler is invoked after onEnd or onError.
type Source interface {
	Subscribe(onChunk func(chunk any), onEnd func(), onError func(err error))
}

// Pair is one enumerated entry of a container.
type Pair struct {
	Key   any
	Value any
}

var emptyStructType = reflect.TypeOf(struct{}{})

// Classify returns the Kind of c, or KindInvalid.
func Classify(c any) Kind {
	if rv := reflect.ValueOf(c); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return KindInvalid
	}
	switch c.(type) {
	case nil:
		return KindInvalid
	case Source:
		return KindStream
	case Range, *Range:
		return KindRange
	case *Set:
		return KindSet
	case *Assoc:
		return KindAssociation
	case *Object:
		return KindMapping
	}

	rv, ok := indirect(reflect.ValueOf(c))
	if !ok {
		return KindInvalid
	}
	switch rv.Kind() {
	case reflect.Map:
		switch {
		case rv.Type().Elem() == emptyStructType:
			return KindSet
		case rv.Type().Key().Kind() == reflect.String:
			return KindMapping
		}
		return KindAssociation
	case reflect.Slice, reflect.Array:
		return KindSequence
	case reflect.Struct:
		return KindMapping
	}
	return KindInvalid
}

// indirect follows pointers to structs; other pointers are not containers.
func indirect(rv reflect.Value) (reflect.Value, bool) {
	if !rv.IsValid() {
		return rv, false
	}
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return rv, false
		}
		return rv.Elem(), true
	}
	return rv, true
}
