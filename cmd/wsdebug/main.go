// wsdebug records and inspects WebSocket traffic.
package main

import (
	"os"

	"github.com/getmockd/wsdebug/pkg/cli"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	cli.Version = Version
	cli.Commit = Commit
	cli.BuildDate = BuildDate
	os.Exit(cli.Run())
}
