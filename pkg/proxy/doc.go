// Package proxy is a WebSocket man-in-the-middle.
//
// Each client connection accepted by a Server is bridged to the upstream URL
// through an instrumented transport factory, so every message flowing through
// the bridge lands in the capture session. Messages sent by the client are
// recorded as outbound, messages from upstream as inbound, exactly as if the
// client had opened the upstream connection itself.
package proxy
