// Package filter evaluates filter sets against captured records.
//
// A Set maps a field name to a Spec. A record matches a Set when every entry
// passes. Prefixing a key with "!" inverts that entry:
//
//	set := filter.Set{
//	    "direction":  filter.Exact("in"),
//	    "!payload":   filter.MustRegexp(`^\{"type":"heartbeat"`),
//	    "transportId": filter.Func(func(v any) (bool, error) { ... }),
//	}
//	ok, err := filter.Match(event, set)
//
// An empty Set matches every record.
package filter

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
)

// Negate is the key prefix that inverts a filter entry.
const Negate = "!"

// Kind identifies which variant a Spec holds.
type Kind int

const (
	// KindExact requires the field to equal a value.
	KindExact Kind = iota
	// KindPattern requires a textual field to match a regular expression.
	KindPattern
	// KindPredicate calls a function with the field value.
	KindPredicate
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindExact:
		return "exact"
	case KindPattern:
		return "pattern"
	case KindPredicate:
		return "predicate"
	default:
		return "unknown"
	}
}

// Predicate decides whether a field value passes. value is nil when the field
// is absent from the record.
type Predicate func(value any) (bool, error)

// Spec is a single filter condition.
type Spec struct {
	kind  Kind
	value any
	re    *regexp.Regexp
	fn    Predicate
}

// Exact returns a Spec matching fields equal to v.
// Strings compare with strings and numbers with numbers regardless of their
// declared Go type, so Exact("in") matches a capture.Direction of "in".
func Exact(v any) Spec {
	return Spec{kind: KindExact, value: v}
}

// Pattern returns a Spec matching textual fields against re.
func Pattern(re *regexp.Regexp) Spec {
	return Spec{kind: KindPattern, re: re}
}

// Regexp compiles expr and returns a pattern Spec.
func Regexp(expr string) (Spec, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Spec{}, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return Pattern(re), nil
}

// MustRegexp is like Regexp but panics on an invalid expression.
func MustRegexp(expr string) Spec {
	return Pattern(regexp.MustCompile(expr))
}

// Func returns a Spec that delegates to fn.
func Func(fn Predicate) Spec {
	return Spec{kind: KindPredicate, fn: fn}
}

// Bool adapts an infallible boolean function into a Spec.
func Bool(fn func(value any) bool) Spec {
	return Func(func(v any) (bool, error) { return fn(v), nil })
}

// Kind returns the variant held by s.
func (s Spec) Kind() Kind {
	return s.kind
}

// String describes the spec for logs.
func (s Spec) String() string {
	switch s.kind {
	case KindPattern:
		if s.re == nil {
			return "pattern(<nil>)"
		}
		return "pattern(" + s.re.String() + ")"
	case KindPredicate:
		return "predicate"
	default:
		return fmt.Sprintf("exact(%v)", s.value)
	}
}

// Eval applies the spec to a resolved field value.
func (s Spec) Eval(value any) (bool, error) {
	switch s.kind {
	case KindPredicate:
		if s.fn == nil {
			return false, ErrNilPredicate
		}
		return s.fn(value)
	case KindPattern:
		if s.re == nil {
			return false, ErrInvalidPattern
		}
		text, ok := textOf(value)
		if !ok {
			return false, nil
		}
		return s.re.MatchString(text), nil
	default:
		return Equal(value, s.value), nil
	}
}

// Record is anything whose fields can be resolved by name.
type Record interface {
	Field(name string) (any, bool)
}

// Set is a conjunction of per-field conditions.
type Set map[string]Spec

// Keys returns the set's keys in sorted order.
func (set Set) Keys() []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy of the set.
func (set Set) Clone() Set {
	if set == nil {
		return nil
	}
	out := make(Set, len(set))
	for k, v := range set {
		out[k] = v
	}
	return out
}

// Match reports whether rec satisfies every entry in set.
// A predicate error stops evaluation and is returned to the caller.
func Match(rec Record, set Set) (bool, error) {
	if len(set) == 0 {
		return true, nil
	}

	for _, key := range set.Keys() {
		field, negated := strings.CutPrefix(key, Negate)

		value, _ := rec.Field(field)
		ok, err := set[key].Eval(value)
		if err != nil {
			return false, fmt.Errorf("filter %q: %w", key, err)
		}
		if negated {
			ok = !ok
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// textOf returns the textual form of string-kinded values.
func textOf(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case []byte:
		return string(t), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

// Equal compares two field values. Values of string kind compare as strings
// and values of numeric kind compare as numbers; anything else falls back to
// reflect.DeepEqual.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if as, ok := textOf(a); ok {
		bs, ok := textOf(b)
		return ok && as == bs
	}

	if an, ok := numberOf(a); ok {
		bn, ok := numberOf(b)
		return ok && an == bn
	}

	return reflect.DeepEqual(a, b)
}

func numberOf(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// All returns a Spec passing when every spec passes. It lets several
// conditions share one field key.
func All(specs ...Spec) Spec {
	return Func(func(v any) (bool, error) {
		for _, s := range specs {
			ok, err := s.Eval(v)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	})
}

// Any returns a Spec passing when at least one spec passes.
func Any(specs ...Spec) Spec {
	return Func(func(v any) (bool, error) {
		for _, s := range specs {
			ok, err := s.Eval(v)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	})
}
