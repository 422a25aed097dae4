package filter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// record is a minimal Record backed by a map.
type record map[string]any

func (r record) Field(name string) (any, bool) {
	v, ok := r[name]
	return v, ok
}

type direction string

func TestMatch_EmptySetMatchesEverything(t *testing.T) {
	records := []record{
		{},
		{"direction": "in"},
		{"direction": "out", "payload": "x", "transportId": 4},
	}
	for _, r := range records {
		ok, err := Match(r, Set{})
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = Match(r, nil)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestMatch_ExactAndNegation(t *testing.T) {
	in := record{"direction": "in"}

	ok, err := Match(in, Set{"direction": Exact("out")})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = Match(in, Set{"!direction": Exact("out")})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Match(in, Set{"!direction": Exact("in")})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatch_AllKeysMustPass(t *testing.T) {
	r := record{"direction": "in", "payload": "hello world"}

	ok, err := Match(r, Set{
		"direction": Exact("in"),
		"payload":   MustRegexp("world$"),
	})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Match(r, Set{
		"direction": Exact("in"),
		"payload":   MustRegexp("^world"),
	})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatch_ExactNormalizesKinds(t *testing.T) {
	r := record{"direction": direction("in"), "transportId": int64(3)}

	ok, err := Match(r, Set{"direction": Exact("in"), "transportId": Exact(3)})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Match(r, Set{"transportId": Exact("3")})
	require.NoError(t, err)
	assert.False(t, ok, "a number never equals a string")
}

func TestMatch_AbsentField(t *testing.T) {
	r := record{"payload": "x"}

	tests := []struct {
		name string
		set  Set
		want bool
	}{
		{"exact nil matches absent", Set{"missing": Exact(nil)}, true},
		{"exact value fails absent", Set{"missing": Exact("x")}, false},
		{"pattern fails absent", Set{"missing": MustRegexp(".*")}, false},
		{"negated pattern passes absent", Set{"!missing": MustRegexp(".*")}, true},
		{"predicate sees nil", Set{"missing": Bool(func(v any) bool { return v == nil })}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := Match(r, tt.set)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestMatch_PatternIgnoresNonText(t *testing.T) {
	ok, err := Match(record{"transportId": 12}, Set{"transportId": MustRegexp("1")})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatch_PredicateErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	_, err := Match(record{"payload": "x"}, Set{
		"payload": Func(func(any) (bool, error) { return false, boom }),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `"payload"`)
}

func TestMatch_NilPredicate(t *testing.T) {
	_, err := Match(record{"payload": "x"}, Set{"payload": Func(nil)})
	assert.ErrorIs(t, err, ErrNilPredicate)
}

func TestRegexp_Invalid(t *testing.T) {
	_, err := Regexp("(")
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestSpec_Kind(t *testing.T) {
	assert.Equal(t, KindExact, Exact(1).Kind())
	assert.Equal(t, KindPattern, MustRegexp("a").Kind())
	assert.Equal(t, KindPredicate, Bool(func(any) bool { return true }).Kind())
	assert.Equal(t, "pattern(a)", MustRegexp("a").String())
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(nil, ""))
	assert.True(t, Equal(int32(5), float64(5)))
	assert.True(t, Equal([]byte("ab"), "ab"))
	assert.True(t, Equal([]any{1.0, "a"}, []any{1.0, "a"}))
	assert.False(t, Equal(true, 1))
}

func TestExpr(t *testing.T) {
	contains, err := Expr(`value contains "subscribe"`)
	require.NoError(t, err)

	ok, err := Match(record{"payload": `{"op":"subscribe"}`}, Set{"payload": contains})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Match(record{"payload": `{"op":"ping"}`}, Set{"payload": contains})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExpr_JSONVariable(t *testing.T) {
	spec, err := Expr(`json?.type == "ping"`)
	require.NoError(t, err)

	ok, err := spec.Eval(`{"type":"ping"}`)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = spec.Eval(`not json`)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExpr_CommonForms(t *testing.T) {
	tests := []struct {
		expression string
		payload    string
		want       bool
	}{
		{`value contains "sub"`, `{"op":"subscribe"}`, true},
		{`value contains "sub"`, `ping`, false},
		{`value matches "^p"`, `ping`, true},
		{`len(value) > 3`, `ping`, true},
		{`json?.type == "ping"`, `{"type":"ping"}`, true},
		{`json.items[1] == 2`, `{"items":[1,2]}`, true},
		{`json?.id > 5`, `{"id":7}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			spec, err := Expr(tt.expression)
			require.NoError(t, err)
			ok, err := Match(record{"payload": tt.payload}, Set{"payload": spec})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestExpr_FieldOfMissingJSONFails(t *testing.T) {
	spec, err := Expr(`json.op == "x"`)
	require.NoError(t, err)

	_, err = Match(record{"payload": "ping"}, Set{"payload": spec})
	assert.Error(t, err)
}

func TestExpr_Invalid(t *testing.T) {
	_, err := Expr(`value ==`)
	assert.ErrorIs(t, err, ErrInvalidExpression)
}

func TestTruthy(t *testing.T) {
	assert.False(t, truthy(nil))
	assert.False(t, truthy(0))
	assert.False(t, truthy(""))
	assert.False(t, truthy([]any{}))
	assert.True(t, truthy("x"))
	assert.True(t, truthy(2.5))
	assert.True(t, truthy(map[string]any{"a": 1}))
}

func TestJSONPath(t *testing.T) {
	action, err := JSONPath("$.action", "subscribe")
	require.NoError(t, err)

	ok, err := action.Eval(`{"action":"subscribe","id":7}`)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = action.Eval(`{"action":"unsubscribe"}`)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = action.Eval(`<xml/>`)
	require.NoError(t, err)
	assert.False(t, ok, "non-JSON payloads never match")

	id, err := JSONPath("$.id", 7)
	require.NoError(t, err)
	ok, err = id.Eval(`{"id":7}`)
	require.NoError(t, err)
	assert.True(t, ok)

	exists, err := JSONPath("$.data", nil)
	require.NoError(t, err)
	ok, err = exists.Eval(`{"data":{}}`)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = exists.Eval(`{"other":1}`)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestJSONPath_Invalid(t *testing.T) {
	_, err := JSONPath("$[", nil)
	assert.ErrorIs(t, err, ErrInvalidJSONPath)
}

func TestAllAny(t *testing.T) {
	hasA := MustRegexp("a")
	hasB := MustRegexp("b")

	ok, err := All(hasA, hasB).Eval("ab")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = All(hasA, hasB).Eval("a")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = Any(hasA, hasB).Eval("b")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = Any(hasA, hasB).Eval("c")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = All().Eval("x")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = Any(Func(nil)).Eval("x")
	assert.ErrorIs(t, err, ErrNilPredicate)
}
