package config

// DefaultListen is the proxy's default client-facing address.
const DefaultListen = ":8089"

// NewDefault returns a Config holding default values.
func NewDefault() *Config {
	cfg := &Config{
		Listen: DefaultListen,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Live: LiveConfig{
			Enabled: true,
		},
		Sources: make(map[string]string),
	}
	for _, key := range []string{KeyListen, KeyLogLevel, KeyLogFormat, KeyLiveEnabled, KeyLiveNoXML} {
		cfg.Sources[key] = SourceDefault
	}
	return cfg
}

// Source returns where key's value came from, or "" when it was never set.
func (c *Config) Source(key string) string {
	return c.Sources[key]
}
