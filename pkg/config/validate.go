package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/getmockd/wsdebug/pkg/capture"
	"github.com/getmockd/wsdebug/pkg/filter"
	"github.com/getmockd/wsdebug/pkg/logging"
)

// Validate checks every value that is set. It does not require an upstream;
// see ValidateProxy.
func (c *Config) Validate() error {
	if c.Upstream != "" {
		if err := ValidateUpstream(c.Upstream); err != nil {
			return fmt.Errorf("upstream: %w", err)
		}
	}
	if !logging.ValidLevel(c.Log.Level) {
		return fmt.Errorf("%w: log.level %q", ErrInvalidValue, c.Log.Level)
	}
	if !logging.ValidFormat(c.Log.Format) {
		return fmt.Errorf("%w: log.format %q", ErrInvalidValue, c.Log.Format)
	}
	if _, err := c.Live.Filters(); err != nil {
		return err
	}
	if err := c.Record.Validate(); err != nil {
		return err
	}
	return nil
}

// Validate checks every include and exclude pattern.
func (r RecordConfig) Validate() error {
	for _, p := range r.Include {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%w: record.include %q", ErrInvalidValue, p)
		}
	}
	for _, p := range r.Exclude {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%w: record.exclude %q", ErrInvalidValue, p)
		}
	}
	return nil
}

// ValidateProxy is Validate plus the settings the proxy cannot run without.
func (c *Config) ValidateProxy() error {
	if c.Upstream == "" {
		return ErrMissingUpstream
	}
	if c.Listen == "" {
		return fmt.Errorf("%w: listen is empty", ErrInvalidValue)
	}
	return c.Validate()
}

// ValidateUpstream checks that raw is a WebSocket or HTTP URL with a host.
func ValidateUpstream(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "ws", "wss", "http", "https":
	default:
		return fmt.Errorf("%w: scheme %q is not ws or wss", ErrInvalidValue, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %q has no host", ErrInvalidValue, raw)
	}
	return nil
}

// Filters builds the live filter set. Direction becomes an exact match, Match
// a payload pattern and Where a payload expression.
func (l LiveConfig) Filters() (filter.Set, error) {
	set := filter.Set{}

	if l.Direction != "" {
		dir, err := capture.ParseDirection(l.Direction)
		if err != nil {
			return nil, fmt.Errorf("live.direction: %w", err)
		}
		set[capture.FieldDirection] = filter.Exact(dir)
	}

	if l.Match != "" {
		key := capture.FieldPayload
		pattern := l.Match
		if rest, ok := strings.CutPrefix(pattern, filter.Negate); ok {
			key = filter.Negate + key
			pattern = rest
		}
		spec, err := filter.Regexp(pattern)
		if err != nil {
			return nil, fmt.Errorf("live.match: %w", err)
		}
		set[key] = spec
	}

	if l.Where != "" {
		spec, err := filter.Expr(l.Where)
		if err != nil {
			return nil, fmt.Errorf("live.where: %w", err)
		}
		// "msg" resolves to the payload too, so Where and Match can coexist.
		set["msg"] = spec
	}

	return set, nil
}
