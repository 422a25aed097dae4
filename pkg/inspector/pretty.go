package inspector

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/getmockd/wsdebug/pkg/capture"
	"github.com/getmockd/wsdebug/pkg/format"
)

// Direction glyphs. The trailing variation selector forces text presentation.
const (
	GlyphInbound  = "\u2b07\ufe0e"
	GlyphOutbound = "\u2b06\ufe0e"
)

const (
	colorInbound  = lipgloss.Color("#A45603")
	colorOutbound = lipgloss.Color("#03C207")
)

type styles struct {
	in  lipgloss.Style
	out lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		in:  r.NewStyle().Bold(true).Foreground(colorInbound),
		out: r.NewStyle().Bold(true).Foreground(colorOutbound),
	}
}

func (s styles) prefix(dir capture.Direction, delta int64) string {
	if dir == capture.Inbound {
		return s.in.Render(GlyphInbound + format.Delta(delta))
	}
	return s.out.Render(GlyphOutbound + format.Delta(delta))
}

// line formats one event for display: the colored direction glyph and delta
// followed by the rendered payload.
func line(st styles, ev capture.Event, delta int64, opts format.RenderOptions) string {
	var b strings.Builder
	b.WriteString(st.prefix(ev.Direction, delta))
	b.WriteByte(' ')
	b.WriteString(format.Render(ev.Payload, opts).String())
	b.WriteByte('\n')
	return b.String()
}

// Pretty prints the selected events to the inspector's output. The first
// event shows a zero delta and each later one the time since its predecessor.
func (i *Inspector) Pretty(q Query) error {
	return i.pretty(i.out, i.styles, q)
}

// PrettyTo is like Pretty but writes to w, coloring only when w is a terminal.
func (i *Inspector) PrettyTo(w io.Writer, q Query) error {
	return i.pretty(w, newStyles(lipgloss.NewRenderer(w)), q)
}

func (i *Inspector) pretty(w io.Writer, st styles, q Query) error {
	events, err := selectEvents(i.session, q)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	opts := format.RenderOptions{NoXML: q.NoXML}
	last := events[0].Timestamp
	for _, ev := range events {
		delta := ev.Timestamp - last
		last = ev.Timestamp
		if err := i.write(w, line(st, ev, delta, opts)); err != nil {
			return err
		}
	}
	return nil
}

func (i *Inspector) write(w io.Writer, line string) error {
	i.writeMu.Lock()
	defer i.writeMu.Unlock()
	_, err := io.WriteString(w, line)
	return err
}
