package config

import (
	"fmt"
	"strconv"
	"strings"
)

// EnvPrefix prefixes every environment variable read by FromEnv.
const EnvPrefix = "WSDEBUG_"

// envKeys maps variable names (without prefix) to config keys.
var envKeys = map[string]string{
	"LISTEN":         KeyListen,
	"UPSTREAM":       KeyUpstream,
	"SUBPROTOCOLS":   KeySubprotocols,
	"ADMIN":          KeyAdmin,
	"DUMP":           KeyDump,
	"LOG_LEVEL":      KeyLogLevel,
	"LOG_FORMAT":     KeyLogFormat,
	"LOG_FILE":       KeyLogFile,
	"LIVE":           KeyLiveEnabled,
	"LIVE_DIRECTION": KeyLiveDirection,
	"LIVE_MATCH":     KeyLiveMatch,
	"LIVE_WHERE":     KeyLiveWhere,
	"NO_XML":         KeyLiveNoXML,
	"RECORD_INCLUDE": KeyRecordInclude,
	"RECORD_EXCLUDE": KeyRecordExclude,
}

// EnvName returns the environment variable that sets key, or "".
func EnvName(key string) string {
	for name, k := range envKeys {
		if k == key {
			return EnvPrefix + name
		}
	}
	return ""
}

// FromEnv builds a Config holding only the values set in the environment.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{SetFields: make(map[string]bool)}

	for name, key := range envKeys {
		raw := getenv(EnvPrefix + name)
		if raw == "" {
			continue
		}
		if err := cfg.Set(key, raw); err != nil {
			return nil, fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		cfg.SetFields[key] = true
	}
	return cfg, nil
}

// Set assigns a textual value to key. Lists are comma separated.
func (c *Config) Set(key, raw string) error {
	switch key {
	case KeyListen:
		c.Listen = raw
	case KeyUpstream:
		c.Upstream = raw
	case KeySubprotocols:
		c.Subprotocols = splitList(raw)
	case KeyAdmin:
		c.Admin = raw
	case KeyDump:
		c.Dump = raw
	case KeyLogLevel:
		c.Log.Level = raw
	case KeyLogFormat:
		c.Log.Format = raw
	case KeyLogFile:
		c.Log.File = raw
	case KeyLiveEnabled:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, raw)
		}
		c.Live.Enabled = b
	case KeyLiveDirection:
		c.Live.Direction = raw
	case KeyLiveMatch:
		c.Live.Match = raw
	case KeyLiveWhere:
		c.Live.Where = raw
	case KeyLiveNoXML:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, raw)
		}
		c.Live.NoXML = b
	case KeyRecordInclude:
		c.Record.Include = splitList(raw)
	case KeyRecordExclude:
		c.Record.Exclude = splitList(raw)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
