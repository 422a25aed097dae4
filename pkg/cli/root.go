package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Persistent flags available to all subcommands
	configPath string
	jsonOutput bool

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wsdebug",
	Short: "wsdebug records and inspects WebSocket traffic",
	Long: `wsdebug sits between a WebSocket client and server, records every message
in both directions and lets you query, filter and pretty print the traffic.

Configuration can be provided via flags, WSDEBUG_* environment variables, or a
YAML file. By default wsdebug looks for .wsdebug.yaml in the working directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	os.Exit(Run())
}

// Run runs the root command with os.Args and returns the process exit code.
func Run() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var exit *exitError
		if errors.As(err, &exit) {
			return exit.code
		}
		return 1
	}
	return 0
}

// exitError carries a specific exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default: .wsdebug.yaml in the working directory)")
	pf.String("log-level", "", "Operational log level: debug, info, warn, error")
	pf.String("log-format", "", "Operational log format: text, json")
	pf.String("log-file", "", "Also write operational logs as JSON to this file")
	pf.BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
}
