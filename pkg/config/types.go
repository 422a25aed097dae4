package config

// Config is the complete wsdebug configuration.
// Values are resolved with the following precedence:
//  1. Command-line flags (highest priority)
//  2. WSDEBUG_* environment variables
//  3. The config file (--config, or .wsdebug.yaml in the working directory)
//  4. Default values (lowest priority)
type Config struct {
	// Listen is the proxy's client-facing address.
	Listen string `yaml:"listen" json:"listen"`
	// Upstream is the WebSocket URL the proxy bridges clients to.
	Upstream     string   `yaml:"upstream" json:"upstream"`
	Subprotocols []string `yaml:"subprotocols,omitempty" json:"subprotocols,omitempty"`
	// Admin is the inspection API address. Empty disables it.
	Admin string `yaml:"admin,omitempty" json:"admin,omitempty"`
	// Dump is a file the captured log is written to on shutdown.
	Dump string `yaml:"dump,omitempty" json:"dump,omitempty"`

	Log    LogConfig    `yaml:"log" json:"log"`
	Live   LiveConfig   `yaml:"live" json:"live"`
	Record RecordConfig `yaml:"record,omitempty" json:"record,omitempty"`

	// Sources tracks where each value came from.
	Sources map[string]string `yaml:"-" json:"-"`
	// SetFields records which keys were explicitly present in a loaded
	// source, so an explicit false can override a true default.
	SetFields map[string]bool `yaml:"-" json:"-"`
}

// LogConfig configures operational logging.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file,omitempty" json:"file,omitempty"`
}

// LiveConfig configures live printing of captured traffic.
type LiveConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Direction restricts output to "in" or "out".
	Direction string `yaml:"direction,omitempty" json:"direction,omitempty"`
	// Match is a regular expression payloads must match. A leading "!"
	// inverts it.
	Match string `yaml:"match,omitempty" json:"match,omitempty"`
	// Where is an expression evaluated against each payload.
	Where string `yaml:"where,omitempty" json:"where,omitempty"`
	NoXML bool   `yaml:"noXml" json:"noXml"`
}

// RecordConfig selects which client paths the proxy captures. Patterns use
// doublestar syntax.
type RecordConfig struct {
	Include []string `yaml:"include,omitempty" json:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`
}

// Value sources.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// Keys used in Sources and SetFields.
const (
	KeyListen        = "listen"
	KeyUpstream      = "upstream"
	KeySubprotocols  = "subprotocols"
	KeyAdmin         = "admin"
	KeyDump          = "dump"
	KeyLogLevel      = "log.level"
	KeyLogFormat     = "log.format"
	KeyLogFile       = "log.file"
	KeyLiveEnabled   = "live.enabled"
	KeyLiveDirection = "live.direction"
	KeyLiveMatch     = "live.match"
	KeyLiveWhere     = "live.where"
	KeyLiveNoXML     = "live.noXml"
	KeyRecordInclude = "record.include"
	KeyRecordExclude = "record.exclude"
)
