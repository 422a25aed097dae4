package config

import "errors"

var (
	// ErrInvalidValue is returned for values that cannot be parsed.
	ErrInvalidValue = errors.New("invalid config value")
	// ErrUnknownKey is returned by Set for keys it does not know.
	ErrUnknownKey = errors.New("unknown config key")
	// ErrMissingUpstream is returned when the proxy has nowhere to connect.
	ErrMissingUpstream = errors.New("upstream is required")
)
