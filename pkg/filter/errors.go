package filter

import "errors"

// Common errors for the filter package.
var (
	// ErrInvalidPattern indicates a pattern spec could not be compiled.
	ErrInvalidPattern = errors.New("invalid pattern")
	// ErrInvalidExpression indicates an expression spec could not be compiled.
	ErrInvalidExpression = errors.New("invalid expression")
	// ErrInvalidJSONPath indicates a JSONPath spec could not be parsed.
	ErrInvalidJSONPath = errors.New("invalid JSONPath")
	// ErrNilPredicate indicates a predicate spec was built with a nil function.
	ErrNilPredicate = errors.New("nil predicate")
)
