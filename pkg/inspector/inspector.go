package inspector

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"

	"github.com/getmockd/wsdebug/pkg/capture"
	"github.com/getmockd/wsdebug/pkg/logging"
)

// Option configures an Inspector.
type Option func(*Inspector)

// WithOutput sets where Pretty and live output are written. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(i *Inspector) {
		if w != nil {
			i.out = w
		}
	}
}

// WithLogger sets the logger used for live-mode failures.
func WithLogger(log *slog.Logger) Option {
	return func(i *Inspector) {
		if log != nil {
			i.log = log
		}
	}
}

// WithRenderer sets the lipgloss renderer used for colored prefixes.
// By default a renderer is created for the output writer, which disables
// colors when the writer is not a terminal.
func WithRenderer(r *lipgloss.Renderer) Option {
	return func(i *Inspector) {
		i.renderer = r
	}
}

// Inspector queries a capture session and drives live output.
type Inspector struct {
	session  *capture.Session
	out      io.Writer
	renderer *lipgloss.Renderer
	styles   styles
	log      *slog.Logger

	// writeMu keeps each printed record in a single uninterrupted write.
	writeMu sync.Mutex

	mu          sync.Mutex
	live        *liveState
	unsubscribe func()
}

// New returns an Inspector reading from session. The inspector observes the
// session for live mode until Close is called.
func New(session *capture.Session, opts ...Option) *Inspector {
	i := &Inspector{
		session: session,
		out:     os.Stdout,
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.renderer == nil {
		i.renderer = lipgloss.NewRenderer(i.out)
	}
	i.styles = newStyles(i.renderer)
	i.unsubscribe = session.Subscribe(i.observe)
	return i
}

// Session returns the session being inspected.
func (i *Inspector) Session() *capture.Session {
	return i.session
}

// Close stops live mode and detaches from the session.
func (i *Inspector) Close() {
	i.StopLive()
	i.unsubscribe()
}

// Logs returns the events selected by q, either projected to columns or raw.
func (i *Inspector) Logs(q Query) (Result, error) {
	events, err := selectEvents(i.session, q)
	if err != nil {
		return Result{}, err
	}

	if q.Raw {
		return Result{Raw: true, Events: events}, nil
	}

	columns := q.columns()
	rows := make([]Row, len(events))
	for k, ev := range events {
		rows[k] = project(ev, columns)
	}
	return Result{Columns: columns, Rows: rows}, nil
}

// CSV returns the selected events as text, one line per event with no
// trailing newline. Projected rows are comma separated with standard CSV
// quoting; raw events are written as JSON objects.
func (i *Inspector) CSV(q Query) (string, error) {
	res, err := i.Logs(q)
	if err != nil {
		return "", err
	}

	if res.Raw {
		lines := make([]string, len(res.Events))
		for k, ev := range res.Events {
			data, err := json.Marshal(ev)
			if err != nil {
				return "", err
			}
			lines[k] = string(data)
		}
		return strings.Join(lines, "\n"), nil
	}

	var b strings.Builder
	w := csv.NewWriter(&b)
	for _, row := range res.Rows {
		if err := w.Write(row.Strings()); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

// Clear discards every captured event and returns how many were removed.
// Transport identities and live mode are left untouched.
func (i *Inspector) Clear() int {
	return i.session.Clear()
}

// Sockets returns the target-to-identity registry.
func (i *Inspector) Sockets() map[string]capture.TransportID {
	return i.session.Registry()
}

// DefaultColumns returns the columns used when a query names none.
func (i *Inspector) DefaultColumns() []string {
	return Query{}.columns()
}
