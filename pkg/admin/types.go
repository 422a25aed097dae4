package admin

import "github.com/getmockd/wsdebug/pkg/capture"

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Session string `json:"session"`
	Uptime  int    `json:"uptime"`
	Events  int    `json:"events"`
	Version string `json:"version,omitempty"`
}

// SocketsResponse is returned by GET /sockets.
type SocketsResponse struct {
	Sockets map[string]capture.TransportID `json:"sockets"`
}

// ColumnsResponse is returned by GET /columns.
type ColumnsResponse struct {
	Columns []string `json:"columns"`
}

// ClearResponse is returned by DELETE /logs.
type ClearResponse struct {
	Cleared int `json:"cleared"`
}

// Error codes.
const (
	codeInvalidFilter = "invalid_filter"
	codeFilterFailed  = "filter_failed"
	codeInternal      = "internal_error"
)
