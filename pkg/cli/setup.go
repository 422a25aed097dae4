package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/getmockd/wsdebug/pkg/config"
	"github.com/getmockd/wsdebug/pkg/logging"
)

// flagKeys maps flag names to the config keys they override.
var flagKeys = map[string]string{
	"listen":      config.KeyListen,
	"upstream":    config.KeyUpstream,
	"subprotocol": config.KeySubprotocols,
	"admin":       config.KeyAdmin,
	"dump":        config.KeyDump,
	"log-level":   config.KeyLogLevel,
	"log-format":  config.KeyLogFormat,
	"log-file":    config.KeyLogFile,
	"direction":   config.KeyLiveDirection,
	"match":       config.KeyLiveMatch,
	"where":       config.KeyLiveWhere,
	"no-xml":      config.KeyLiveNoXML,
	"include":     config.KeyRecordInclude,
	"exclude":     config.KeyRecordExclude,
}

// loadConfig resolves defaults, file, environment and the flags set on cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{Path: configPath})
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cfg, cmd.Flags()); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cfg *config.Config, fs *pflag.FlagSet) error {
	flagCfg := &config.Config{SetFields: make(map[string]bool)}

	var firstErr error
	fs.Visit(func(f *pflag.Flag) {
		if firstErr != nil {
			return
		}
		if f.Name == "quiet" {
			quiet, _ := fs.GetBool("quiet")
			flagCfg.Live.Enabled = !quiet
			flagCfg.SetFields[config.KeyLiveEnabled] = true
			return
		}
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		value := f.Value.String()
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			value = strings.Join(sv.GetSlice(), ",")
		}
		if err := flagCfg.Set(key, value); err != nil {
			firstErr = fmt.Errorf("--%s: %w", f.Name, err)
			return
		}
		flagCfg.SetFields[key] = true
	})
	if firstErr != nil {
		return firstErr
	}

	config.Merge(cfg, flagCfg, config.SourceFlag)
	return nil
}

// newLogger builds the operational logger. The returned closer releases the
// log file, if any.
func newLogger(cfg *config.Config, stderr io.Writer) (*slog.Logger, func(), error) {
	lc := logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: logging.ParseFormat(cfg.Log.Format),
		Output: stderr,
	}
	closer := func() {}
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		lc.File = f
		closer = func() { _ = f.Close() }
	}
	return logging.New(lc), closer, nil
}
