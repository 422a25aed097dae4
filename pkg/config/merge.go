package config

// Merge copies the values set in source into target and records sourceType
// for each of them. A value counts as set when source.SetFields lists its
// key or, without SetFields, when it is non-zero.
func Merge(target, source *Config, sourceType string) {
	if source == nil {
		return
	}
	if target.Sources == nil {
		target.Sources = make(map[string]string)
	}

	set := func(key string, nonZero bool) bool {
		ok := nonZero
		if source.SetFields != nil {
			ok = source.SetFields[key]
		}
		if ok {
			target.Sources[key] = sourceType
		}
		return ok
	}

	if set(KeyListen, source.Listen != "") {
		target.Listen = source.Listen
	}
	if set(KeyUpstream, source.Upstream != "") {
		target.Upstream = source.Upstream
	}
	if set(KeySubprotocols, len(source.Subprotocols) > 0) {
		target.Subprotocols = append([]string(nil), source.Subprotocols...)
	}
	if set(KeyAdmin, source.Admin != "") {
		target.Admin = source.Admin
	}
	if set(KeyDump, source.Dump != "") {
		target.Dump = source.Dump
	}
	if set(KeyLogLevel, source.Log.Level != "") {
		target.Log.Level = source.Log.Level
	}
	if set(KeyLogFormat, source.Log.Format != "") {
		target.Log.Format = source.Log.Format
	}
	if set(KeyLogFile, source.Log.File != "") {
		target.Log.File = source.Log.File
	}
	if set(KeyLiveEnabled, source.Live.Enabled) {
		target.Live.Enabled = source.Live.Enabled
	}
	if set(KeyLiveDirection, source.Live.Direction != "") {
		target.Live.Direction = source.Live.Direction
	}
	if set(KeyLiveMatch, source.Live.Match != "") {
		target.Live.Match = source.Live.Match
	}
	if set(KeyLiveWhere, source.Live.Where != "") {
		target.Live.Where = source.Live.Where
	}
	if set(KeyLiveNoXML, source.Live.NoXML) {
		target.Live.NoXML = source.Live.NoXML
	}
	if set(KeyRecordInclude, len(source.Record.Include) > 0) {
		target.Record.Include = append([]string(nil), source.Record.Include...)
	}
	if set(KeyRecordExclude, len(source.Record.Exclude) > 0) {
		target.Record.Exclude = append([]string(nil), source.Record.Exclude...)
	}
}
