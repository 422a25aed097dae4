package filter

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// JSONPath returns a predicate Spec that decodes a textual field as JSON and
// evaluates path against it. The spec passes when any selected value equals
// expected, or, when expected is nil, when the path selects anything at all.
// Fields that are not valid JSON do not match.
//
//	filter.JSONPath("$.action", "subscribe")
//	filter.JSONPath("$.data.items[*].id", 42)
func JSONPath(path string, expected any) (Spec, error) {
	x, err := jp.ParseString(path)
	if err != nil {
		return Spec{}, fmt.Errorf("%w: %v", ErrInvalidJSONPath, err)
	}

	return Func(func(value any) (bool, error) {
		text, ok := textOf(value)
		if !ok {
			return false, nil
		}
		data, err := oj.ParseString(text)
		if err != nil {
			return false, nil
		}

		results := x.Get(data)
		if expected == nil {
			return len(results) > 0, nil
		}
		for _, r := range results {
			if Equal(r, expected) {
				return true, nil
			}
		}
		return false, nil
	}), nil
}
