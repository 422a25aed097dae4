package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/wsdebug/pkg/config"
)

// starterUpstream is written when no upstream is given.
const starterUpstream = "ws://localhost:9000"

var (
	initForce       bool
	initOutput      string
	initInteractive bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter .wsdebug.yaml configuration file",
	Example: `  # Write .wsdebug.yaml for a local server
  wsdebug init --upstream ws://localhost:9000

  # Answer a few questions instead
  wsdebug init -i

  # Custom output file, overwriting it if present
  wsdebug init -o staging.yaml --upstream wss://staging.example.com/ws --force`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	f := initCmd.Flags()
	f.BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	f.StringVarP(&initOutput, "output", "o", config.LocalFileNames[0], "Output filename")
	f.BoolVarP(&initInteractive, "interactive", "i", false, "Prompt for each setting")
	f.String("upstream", "", "Upstream WebSocket URL (default "+starterUpstream+")")
	f.String("listen", "", "Client-facing listen address")
	f.String("admin", "", "Admin API listen address")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	cfg := config.NewDefault()
	cfg.Upstream = starterUpstream
	if err := applyFlags(cfg, cmd.Flags()); err != nil {
		return err
	}
	if initInteractive {
		if err := promptStarter(cfg); err != nil {
			return err
		}
	}
	if err := writeStarter(initOutput, cfg, initForce); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", initOutput)
	return nil
}

// writeStarter validates cfg and writes it as YAML to path. An existing file
// is only replaced when force is set.
func writeStarter(path string, cfg *config.Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	if err := cfg.ValidateProxy(); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// promptStarter asks for the common settings. Tests replace it.
var promptStarter = func(cfg *config.Config) error {
	prettyXML := !cfg.Live.NoXML
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Which WebSocket server should clients reach?").
				Placeholder("wss://api.example.com/socket").
				Value(&cfg.Upstream).
				Validate(config.ValidateUpstream),
			huh.NewInput().
				Title("Where should wsdebug listen for clients?").
				Value(&cfg.Listen),
			huh.NewInput().
				Title("Admin API address (leave empty to disable)").
				Placeholder(":8090").
				Value(&cfg.Admin),
			huh.NewSelect[string]().
				Title("Which messages should be printed live?").
				Options(
					huh.NewOption("Both directions", ""),
					huh.NewOption("Inbound only", "in"),
					huh.NewOption("Outbound only", "out"),
				).
				Value(&cfg.Live.Direction),
			huh.NewConfirm().
				Title("Pretty print XML payloads?").
				Value(&prettyXML),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	cfg.Live.NoXML = !prettyXML
	return nil
}
