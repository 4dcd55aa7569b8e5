package match

import (
	"fmt"

	"github.com/lguimbarda/anyfn/fn/container"
	"github.com/lguimbarda/anyfn/fn/core"
)

type field struct {
	key  string
	pred Predicate
}

// object compiles an AND over the named keys. Strict objects reject values
// missing a key or carrying one the spec does not name.
func object(pairs []container.Pair, loose bool) (Predicate, error) {
	fields := make([]field, len(pairs))
	names := make(map[string]struct{}, len(pairs))
	for i, p := range pairs {
		key := fmt.Sprint(p.Key)
		pred, err := compile(p.Value, loose)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		fields[i] = field{key: key, pred: pred}
		names[key] = struct{}{}
	}

	return func(v any) (any, error) {
		switch container.Classify(v) {
		case container.KindMapping, container.KindAssociation:
		default:
			return false, nil
		}
		if !loose && !exact(v, names) {
			return false, nil
		}
		return all(len(fields), func(i int) (any, error) {
			f := fields[i]
			value, ok := container.Get(v, f.key)
			if !ok {
				value = core.Undefined
			}
			return f.pred(value)
		})
	}, nil
}

// exact reports whether v has exactly the keys in names.
func exact(v any, names map[string]struct{}) bool {
	keys, err := container.Keys(v)
	if err != nil || len(keys) != len(names) {
		return false
	}
	for _, k := range keys {
		if _, ok := names[fmt.Sprint(k)]; !ok {
			return false
		}
	}
	return true
}
