// Package intercept instruments transports so their traffic is captured.
//
// Interception is opt-in: callers wrap the Factory they already use to open
// transports, and every transport opened through the wrapped factory records
// its messages into a capture.Session.
//
//	dial := intercept.Wrap(session, transport.CoderDialer(nil))
//	conn, err := dial(ctx, "ws://localhost:4280/ws", []string{"json"})
//	if err != nil {
//	    return err
//	}
//	defer conn.Close()
//
//	_ = conn.Send(ctx, intercept.MessageText, []byte(`{"action":"ping"}`))
//
// The instrumented transport behaves exactly like the one it wraps. Outbound
// messages are recorded before they are handed to the underlying transport, so
// a failed send still shows up in the log; the failure itself is returned
// unchanged. Inbound messages are recorded when Receive returns them.
package intercept
