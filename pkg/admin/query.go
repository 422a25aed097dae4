package admin

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/getmockd/wsdebug/pkg/capture"
	"github.com/getmockd/wsdebug/pkg/filter"
	"github.com/getmockd/wsdebug/pkg/inspector"
)

// Reserved query parameters.
const (
	paramColumns  = "columns"
	paramLimit    = "limit"
	paramRaw      = "raw"
	paramNoXML    = "noXml"
	paramWhere    = "where"
	paramJSONPath = "jsonpath"
	paramGzip     = "gzip"
)

var errInvalidQuery = errors.New("invalid query")

// parseQuery turns URL query parameters into an inspector query.
func parseQuery(values url.Values) (inspector.Query, error) {
	var q inspector.Query
	set := filter.Set{}

	for key, vals := range values {
		switch key {
		case paramColumns:
			q.Columns = splitColumns(vals)
		case paramLimit:
			n, ok := parseNonNegativeInt(last(vals))
			if !ok {
				return q, fmt.Errorf("%w: limit %q must be a non-negative integer", errInvalidQuery, last(vals))
			}
			q.Limit = n
		case paramRaw, paramNoXML:
			b, err := parseBool(last(vals))
			if err != nil {
				return q, fmt.Errorf("%w: %s %q must be a boolean", errInvalidQuery, key, last(vals))
			}
			if key == paramRaw {
				q.Raw = b
			} else {
				q.NoXML = b
			}
		case paramWhere:
			for _, v := range vals {
				spec, err := filter.Expr(v)
				if err != nil {
					return q, fmt.Errorf("%w: %v", errInvalidQuery, err)
				}
				add(set, capture.FieldPayload, spec)
			}
		case paramJSONPath:
			for _, v := range vals {
				spec, err := parseJSONPath(v)
				if err != nil {
					return q, err
				}
				add(set, capture.FieldPayload, spec)
			}
		case paramGzip:
		default:
			if err := addFieldFilter(set, key, vals); err != nil {
				return q, err
			}
		}
	}

	if len(set) > 0 {
		q.Filters = set
	}
	return q, nil
}

func addFieldFilter(set filter.Set, key string, vals []string) error {
	name, negated := strings.CutPrefix(key, filter.Negate)
	name = capture.CanonicalField(name)
	if !slices.Contains(capture.Fields(), name) {
		return fmt.Errorf("%w: unknown field %q", errInvalidQuery, name)
	}
	setKey := name
	if negated {
		setKey = filter.Negate + name
	}

	for _, v := range vals {
		spec, err := parseValue(name, v)
		if err != nil {
			return err
		}
		add(set, setKey, spec)
	}
	return nil
}

// parseValue builds the spec for one field=value pair.
func parseValue(field, v string) (filter.Spec, error) {
	if len(v) >= 2 && strings.HasPrefix(v, "/") && strings.HasSuffix(v, "/") {
		spec, err := filter.Regexp(v[1 : len(v)-1])
		if err != nil {
			return spec, fmt.Errorf("%w: %v", errInvalidQuery, err)
		}
		return spec, nil
	}

	switch field {
	case capture.FieldTransportID, capture.FieldTimestamp:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter.Spec{}, fmt.Errorf("%w: %s %q must be an integer", errInvalidQuery, field, v)
		}
		return filter.Exact(n), nil
	case capture.FieldDirection:
		dir, err := capture.ParseDirection(v)
		if err != nil {
			return filter.Spec{}, fmt.Errorf("%w: %v", errInvalidQuery, err)
		}
		return filter.Exact(dir), nil
	default:
		return filter.Exact(v), nil
	}
}

// parseJSONPath reads "path" (existence) or "path=value". Numeric and
// boolean values are compared as such, anything else as a string.
func parseJSONPath(v string) (filter.Spec, error) {
	path, want, hasValue := strings.Cut(v, "=")
	var expected any
	if hasValue {
		expected = jsonValue(want)
	}
	spec, err := filter.JSONPath(path, expected)
	if err != nil {
		return spec, fmt.Errorf("%w: %v", errInvalidQuery, err)
	}
	return spec, nil
}

func jsonValue(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// add stores spec under key, combining with an existing entry. Positive
// entries are combined with All; negated ones with Any, so that every
// negated condition must fail.
func add(set filter.Set, key string, spec filter.Spec) {
	existing, ok := set[key]
	switch {
	case !ok:
		set[key] = spec
	case strings.HasPrefix(key, filter.Negate):
		set[key] = filter.Any(existing, spec)
	default:
		set[key] = filter.All(existing, spec)
	}
}

func splitColumns(vals []string) []string {
	var cols []string
	for _, v := range vals {
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				cols = append(cols, c)
			}
		}
	}
	return cols
}

func last(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[len(vals)-1]
}

// parseBool accepts an empty value as true, so "?raw" works.
func parseBool(v string) (bool, error) {
	if v == "" {
		return true, nil
	}
	return strconv.ParseBool(v)
}

// parseNonNegativeInt returns a parsed int only when v is a valid non-negative integer.
func parseNonNegativeInt(v string) (int, bool) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
