// Package capture holds the captured message traffic for a debugging session.
//
// A Session owns three pieces of state:
//
//   - the event log, an append-only ordered sequence of Event values
//   - the transport registry, mapping a connection target to the identity of
//     the most recent transport created for it
//   - the identity counter, handing out a new TransportID per transport
//
// Everything else in wsdebug reads from a Session. The interceptor appends to
// it, the inspector takes snapshots of it, and live mode subscribes to it.
//
// # Usage
//
//	session := capture.NewSession(capture.WithLogger(logger))
//	id := session.RegisterTransport("ws://localhost:4280/ws")
//	session.Append(id, capture.Outbound, `{"action":"ping"}`)
//
//	for _, ev := range session.Snapshot() {
//	    fmt.Println(ev.TransportID, ev.Direction, ev.Payload)
//	}
//
// # Ordering
//
// Timestamps are assigned at append time and never decrease in append order,
// so the log order is the chronological order. Observers registered with
// Subscribe are called synchronously after each append, one event at a time,
// in the same order the events were appended.
package capture
