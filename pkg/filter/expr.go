package filter

import (
	"fmt"
	"reflect"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/ohler55/ojg/oj"
)

// Expr compiles an expr-lang expression into a predicate Spec.
//
// The expression sees two variables:
//
//	value  the field value (nil when the field is absent)
//	json   value decoded as JSON when it is text holding a JSON document, else nil
//
// The result is coerced to a boolean: nil, false, zero numbers, and empty
// strings or collections are false. Evaluation errors are returned from Eval.
//
//	filter.Expr(`value contains "subscribe"`)
//	filter.Expr(`json?.type == "ping"`)
func Expr(expression string) (Spec, error) {
	program, err := expr.Compile(expression, expr.Env(exprEnv{}))
	if err != nil {
		return Spec{}, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}
	return Func(exprPredicate(program)), nil
}

func exprPredicate(program *vm.Program) Predicate {
	return func(value any) (bool, error) {
		out, err := expr.Run(program, newExprEnv(value))
		if err != nil {
			return false, err
		}
		return truthy(out), nil
	}
}

// exprEnv is the environment expressions compile and run against. The
// fields are interface typed so the checker accepts any operation on them.
type exprEnv struct {
	Value any `expr:"value"`
	JSON  any `expr:"json"`
}

func newExprEnv(value any) exprEnv {
	env := exprEnv{Value: value}
	if text, ok := textOf(value); ok {
		if v, err := oj.ParseString(text); err == nil {
			env.JSON = v
		}
	}
	return env
}

// truthy mirrors the loose boolean coercion callers expect from predicates.
func truthy(v any) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	if n, ok := numberOf(v); ok {
		return n != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	default:
		return true
	}
}
