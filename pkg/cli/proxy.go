package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/getmockd/wsdebug/pkg/admin"
	"github.com/getmockd/wsdebug/pkg/capture"
	"github.com/getmockd/wsdebug/pkg/export"
	"github.com/getmockd/wsdebug/pkg/inspector"
	"github.com/getmockd/wsdebug/pkg/proxy"
)

var proxyMaxConns int

var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Record traffic between WebSocket clients and an upstream server",
	Long: `Listen for WebSocket clients and bridge each one to the upstream server,
recording every message. The request path and query are appended to the
upstream URL.

Matching messages are printed live unless --quiet is given. With --admin the
captured log can be queried over HTTP while the proxy runs.`,
	Example: `  # Record traffic to a local server and print it live
  wsdebug proxy --upstream ws://localhost:9000

  # Only print inbound messages that are not heartbeats
  wsdebug proxy --upstream wss://api.example.com --direction in --match '!^\{"type":"hb"'

  # Serve the admin API and write a dump on exit
  wsdebug proxy --upstream ws://localhost:9000 --admin :8090 --dump traffic.jsonl.gz`,
	Args: cobra.NoArgs,
	RunE: runProxy,
}

func init() {
	f := proxyCmd.Flags()
	f.String("upstream", "", "Upstream WebSocket URL (required)")
	f.String("listen", "", "Client-facing listen address (default :8089)")
	f.String("admin", "", "Admin API listen address (disabled when empty)")
	f.String("dump", "", "Write captured events to this file on exit (.gz compresses)")
	f.StringSlice("subprotocol", nil, "Subprotocol offered upstream when the client offers none, repeatable")
	f.String("direction", "", "Only print messages in this direction: in, out")
	f.String("match", "", "Only print payloads matching this regular expression (prefix ! to invert)")
	f.String("where", "", "Only print payloads for which this expression is true")
	f.StringSlice("include", nil, "Only record client paths matching this glob, repeatable")
	f.StringSlice("exclude", nil, "Never record client paths matching this glob, repeatable")
	f.Bool("no-xml", false, "Do not pretty print XML payloads")
	f.BoolP("quiet", "q", false, "Do not print traffic")
	f.IntVar(&proxyMaxConns, "max-conns", 0, "Maximum concurrent client connections (0 = unlimited)")

	rootCmd.AddCommand(proxyCmd)
}

func runProxy(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateProxy(); err != nil {
		return err
	}

	log, closeLog, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	session := capture.NewSession(capture.WithLogger(log))
	defer session.Shutdown()

	insp := inspector.New(session, inspector.WithOutput(cmd.OutOrStdout()), inspector.WithLogger(log))
	defer insp.Close()

	if cfg.Live.Enabled {
		filters, err := cfg.Live.Filters()
		if err != nil {
			return err
		}
		insp.Live(inspector.Query{Filters: filters, NoXML: cfg.Live.NoXML})
	}

	srv, err := proxy.New(session, cfg.Upstream,
		proxy.WithLogger(log),
		proxy.WithSubprotocols(cfg.Subprotocols),
		proxy.WithMaxConns(proxyMaxConns),
		proxy.WithPathFilter(proxy.PathFilter{
			Include: cfg.Record.Include,
			Exclude: cfg.Record.Exclude,
		}),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(ctx, cfg.Listen)
	})
	if cfg.Admin != "" {
		api := admin.New(insp, admin.WithLogger(log), admin.WithVersion(Version))
		g.Go(func() error {
			return api.ListenAndServe(ctx, cfg.Admin)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if cfg.Dump != "" {
		events := session.Snapshot()
		if err := export.WriteFile(cfg.Dump, events); err != nil {
			return err
		}
		log.Info("dump written", "path", cfg.Dump, "events", len(events))
	}
	return nil
}
