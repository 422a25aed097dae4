package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/getmockd/wsdebug/pkg/capture"
	"github.com/getmockd/wsdebug/pkg/export"
	"github.com/getmockd/wsdebug/pkg/filter"
	"github.com/getmockd/wsdebug/pkg/inspector"
	"github.com/getmockd/wsdebug/pkg/intercept"
	"github.com/getmockd/wsdebug/pkg/transport"
)

// connectOptions are the settings of one connect session.
type connectOptions struct {
	url         string
	subprotocol string
	headers     []string
	timeout     time.Duration
	linger      time.Duration
	csv         bool
	json        bool
	quiet       bool
	noXML       bool
	filters     filter.Set
}

var connectOpts connectOptions

var connectCmd = &cobra.Command{
	Use:   "connect <url>",
	Short: "Open a recorded WebSocket connection from the terminal",
	Long: `Connect to a WebSocket endpoint. Each line read from stdin is sent as a
text message and traffic in both directions is printed as it happens.

When stdin is exhausted wsdebug waits for --linger, closes the connection and,
with --csv or --json, prints the whole session.`,
	Example: `  wsdebug connect ws://localhost:9000/feed
  echo '{"op":"subscribe"}' | wsdebug connect --csv --quiet ws://localhost:9000/feed
  wsdebug connect -H "Authorization:Bearer token" --subprotocol graphql-ws wss://api.example.com/graphql`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log, closeLog, err := newLogger(cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closeLog()

		filters, err := cfg.Live.Filters()
		if err != nil {
			return err
		}

		opts := connectOpts
		opts.filters = filters
		opts.url = args[0]
		opts.json = jsonOutput
		opts.noXML = cfg.Live.NoXML
		opts.quiet = !cfg.Live.Enabled

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runConnect(ctx, opts, cmd.InOrStdin(), cmd.OutOrStdout(), log)
	},
}

func init() {
	f := connectCmd.Flags()
	f.StringVar(&connectOpts.subprotocol, "subprotocol", "", "WebSocket subprotocol")
	f.StringArrayVarP(&connectOpts.headers, "header", "H", nil, "Custom header (key:value), repeatable")
	f.DurationVarP(&connectOpts.timeout, "timeout", "t", 30*time.Second, "Handshake timeout")
	f.DurationVar(&connectOpts.linger, "linger", time.Second, "How long to keep receiving after stdin ends")
	f.BoolVar(&connectOpts.csv, "csv", false, "Print the session as CSV on exit")
	f.BoolVarP(&connectOpts.quiet, "quiet", "q", false, "Do not print traffic live")
	f.BoolVar(&connectOpts.noXML, "no-xml", false, "Do not pretty print XML payloads")

	rootCmd.AddCommand(connectCmd)
}

func runConnect(ctx context.Context, opts connectOptions, stdin io.Reader, stdout io.Writer, log *slog.Logger) error {
	header, err := parseHeaders(opts.headers)
	if err != nil {
		return err
	}

	session := capture.NewSession(capture.WithLogger(log))
	defer session.Shutdown()
	insp := inspector.New(session, inspector.WithOutput(stdout), inspector.WithLogger(log))
	defer insp.Close()
	if !opts.quiet {
		insp.Live(inspector.Query{Filters: opts.filters, NoXML: opts.noXML})
	}

	dial := intercept.Wrap(session,
		transport.GorillaDialer(&websocket.Dialer{HandshakeTimeout: opts.timeout}, header),
		intercept.WithLogger(log),
	)

	var protocols []string
	if opts.subprotocol != "" {
		protocols = []string{opts.subprotocol}
	}
	conn, err := dial(ctx, opts.url, protocols)
	if err != nil {
		return fmt.Errorf("connect %s: %w", opts.url, err)
	}
	log.Info("connected", "url", opts.url, "subprotocol", conn.Subprotocol())

	recvDone := make(chan error, 1)
	go func() {
		for {
			if _, _, err := conn.Receive(ctx); err != nil {
				recvDone <- err
				return
			}
		}
	}()

	sendErr := sendLines(ctx, conn, stdin)

	select {
	case <-ctx.Done():
	case err := <-recvDone:
		log.Debug("receive loop ended", "error", err)
	case <-time.After(opts.linger):
	}
	_ = conn.Close()

	if err := printSession(insp, opts, stdout); err != nil {
		return err
	}
	if sendErr != nil && !errors.Is(sendErr, context.Canceled) {
		return sendErr
	}
	return nil
}

// sendLines sends each stdin line as a text message until EOF.
func sendLines(ctx context.Context, conn intercept.Transport, stdin io.Reader) error {
	sc := bufio.NewScanner(stdin)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := sc.Text()
		if line == "" {
			continue
		}
		if err := conn.Send(ctx, intercept.MessageText, []byte(line)); err != nil {
			return fmt.Errorf("send: %w", err)
		}
	}
	return sc.Err()
}

func printSession(insp *inspector.Inspector, opts connectOptions, stdout io.Writer) error {
	switch {
	case opts.json:
		res, err := insp.Logs(inspector.Query{Raw: true})
		if err != nil {
			return err
		}
		return export.Write(stdout, res.Events, export.Options{})
	case opts.csv:
		out, err := insp.CSV(inspector.Query{})
		if err != nil {
			return err
		}
		if out != "" {
			_, err = fmt.Fprintln(stdout, out)
		}
		return err
	}
	return nil
}

// parseHeaders turns "Key:Value" pairs into a header.
func parseHeaders(pairs []string) (http.Header, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	header := http.Header{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, ":")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid header %q, want key:value", p)
		}
		header.Add(strings.TrimSpace(k), strings.TrimSpace(v))
	}
	return header, nil
}
