// Package transport adapts concrete WebSocket libraries to intercept.Transport.
//
// Two implementations are provided:
//
//   - CoderConn wraps github.com/coder/websocket connections. CoderDialer
//     returns an intercept.Factory that dials with it, and NewCoderConn adapts
//     a server-side connection obtained from websocket.Accept.
//   - GorillaConn wraps github.com/gorilla/websocket connections. GorillaDialer
//     returns an intercept.Factory built on a gorilla Dialer.
//
// Neither adapter adds behavior of its own: messages are passed through as-is
// and close/error semantics are those of the underlying library.
package transport
