package capture

import (
	"strconv"
	"time"
)

// TransportID identifies a transport within a session.
// IDs are handed out in increasing order starting at 0 and are never reused.
type TransportID int64

// String returns the decimal form of the ID.
func (id TransportID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Direction is the direction a message crossed the transport boundary.
type Direction string

const (
	// Inbound marks a message received from the remote side.
	Inbound Direction = "in"
	// Outbound marks a message sent by the local application.
	Outbound Direction = "out"
)

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	return d == Inbound || d == Outbound
}

// ParseDirection parses "in"/"out" (and the longer "inbound"/"outbound").
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "in", "inbound":
		return Inbound, nil
	case "out", "outbound":
		return Outbound, nil
	default:
		return "", ErrInvalidDirection
	}
}

// Field names understood by Event.Field.
const (
	FieldTransportID = "transportId"
	FieldDirection   = "direction"
	FieldTimestamp   = "timestamp"
	FieldPayload     = "payload"
)

// fieldAliases maps the short names used by older tooling to field names.
var fieldAliases = map[string]string{
	"socket_id": FieldTransportID,
	"time":      FieldTimestamp,
	"msg":       FieldPayload,
}

// Fields lists the canonical field names in display order.
func Fields() []string {
	return []string{FieldTransportID, FieldDirection, FieldTimestamp, FieldPayload}
}

// CanonicalField resolves an alias to its canonical field name.
// Unknown names are returned unchanged.
func CanonicalField(name string) string {
	if canonical, ok := fieldAliases[name]; ok {
		return canonical
	}
	return name
}

// Event is a single observed message.
// Events are created once by Session.Append and never modified afterwards.
type Event struct {
	TransportID TransportID `json:"transportId"`
	Direction   Direction   `json:"direction"`
	// Timestamp is milliseconds since the Unix epoch.
	Timestamp int64  `json:"timestamp"`
	Payload   string `json:"payload"`
}

// Time returns the timestamp as a time.Time.
func (e Event) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// WithPayload returns a copy of the event carrying a different payload.
func (e Event) WithPayload(payload string) Event {
	e.Payload = payload
	return e
}

// Field resolves a field by name. The second result is false for names that
// do not exist on an event.
func (e Event) Field(name string) (any, bool) {
	switch CanonicalField(name) {
	case FieldTransportID:
		return e.TransportID, true
	case FieldDirection:
		return e.Direction, true
	case FieldTimestamp:
		return e.Timestamp, true
	case FieldPayload:
		return e.Payload, true
	default:
		return nil, false
	}
}
