package match

import (
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/lguimbarda/anyfn/fn/container"
	"github.com/lguimbarda/anyfn/fn/core"
)

// FromYAML decodes a specification from a YAML document. Mappings become
// object specs in document order, sequences become alternatives and plain
// scalars become literals. Local tags select the other shapes:
//
//	id: !number
//	email: !re '^[^@]+@'
//	nickname: [!string, !undefined]
//
// Recognised tags are !number, !string, !bool, !array, !object, !func, !re
// and !undefined.
func FromYAML(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("match: decode yaml: %w", err)
	}
	if doc.Kind == 0 {
		return nil, core.Usagef("match: empty yaml document")
	}
	return fromNode(&doc)
}

var kindTags = map[string]Kind{
	"!number": Number,
	"!string": String,
	"!bool":   Bool,
	"!array":  Array,
	"!object": Object,
	"!func":   Func,
}

func fromNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, core.Usagef("match: empty yaml document")
		}
		return fromNode(n.Content[0])
	case yaml.AliasNode:
		return fromNode(n.Alias)
	case yaml.SequenceNode:
		alts := make([]any, len(n.Content))
		for i, c := range n.Content {
			spec, err := fromNode(c)
			if err != nil {
				return nil, err
			}
			alts[i] = spec
		}
		return alts, nil
	case yaml.MappingNode:
		obj := container.NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			spec, err := fromNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Set(n.Content[i].Value, spec)
		}
		return obj, nil
	case yaml.ScalarNode:
		return fromScalar(n)
	}
	return nil, core.Usagef("match: unsupported yaml node at line %d", n.Line)
}

func fromScalar(n *yaml.Node) (any, error) {
	if k, ok := kindTags[n.Tag]; ok {
		return k, nil
	}
	switch n.Tag {
	case "!undefined":
		return core.Undefined, nil
	case "!re":
		re, err := regexp.Compile(n.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", core.ErrUsage, n.Line, err)
		}
		return re, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, fmt.Errorf("match: line %d: %w", n.Line, err)
	}
	return v, nil
}
