package inspector

import (
	"fmt"
	"slices"

	"github.com/getmockd/wsdebug/pkg/capture"
	"github.com/getmockd/wsdebug/pkg/filter"
)

// DefaultColumns are projected when a query names no columns.
var DefaultColumns = capture.Fields()

// Query selects and shapes captured events.
type Query struct {
	// Columns lists the fields projected into each row. Empty means DefaultColumns.
	Columns []string
	// Filters must all pass for an event to be kept.
	Filters filter.Set
	// Limit keeps only the last Limit matching events. Zero or less keeps all.
	Limit int
	// Raw returns whole events instead of projected rows.
	Raw bool
	// Transform rewrites each payload before filtering.
	Transform func(payload string) string
	// NoXML disables XML rendering in Pretty and live output.
	NoXML bool
}

func (q Query) columns() []string {
	if len(q.Columns) == 0 {
		return slices.Clone(DefaultColumns)
	}
	return q.Columns
}

func (q Query) clone() Query {
	q.Columns = slices.Clone(q.Columns)
	q.Filters = q.Filters.Clone()
	return q
}

// Row is one projected event, with values in column order.
// Columns that do not name a field hold nil.
type Row []any

// Strings returns the row's values as text, with nil as the empty string.
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, v := range r {
		if v != nil {
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

// Result is the outcome of Logs. Rows is set for projected queries and
// Events for raw ones.
type Result struct {
	Columns []string        `json:"columns,omitempty"`
	Rows    []Row           `json:"rows,omitempty"`
	Events  []capture.Event `json:"events,omitempty"`
	Raw     bool            `json:"raw"`
}

// Len returns the number of rows or events.
func (r Result) Len() int {
	if r.Raw {
		return len(r.Events)
	}
	return len(r.Rows)
}

func project(ev capture.Event, columns []string) Row {
	row := make(Row, len(columns))
	for i, c := range columns {
		row[i], _ = ev.Field(c)
	}
	return row
}

// selectEvents runs the shared read pipeline: snapshot, transform, filter, limit.
func selectEvents(session *capture.Session, q Query) ([]capture.Event, error) {
	snapshot := session.Snapshot()
	kept := snapshot[:0]
	for _, ev := range snapshot {
		if q.Transform != nil {
			ev = ev.WithPayload(q.Transform(ev.Payload))
		}
		ok, err := filter.Match(ev, q.Filters)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, ev)
		}
	}

	if q.Limit > 0 && len(kept) > q.Limit {
		kept = kept[len(kept)-q.Limit:]
	}
	return kept, nil
}
