package transport

import (
	"context"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/getmockd/wsdebug/pkg/intercept"
)

// CoderConn adapts a coder/websocket connection.
type CoderConn struct {
	conn *ws.Conn
}

// NewCoderConn wraps an open connection.
func NewCoderConn(conn *ws.Conn) *CoderConn {
	return &CoderConn{conn: conn}
}

// Conn returns the underlying connection.
func (c *CoderConn) Conn() *ws.Conn {
	return c.conn
}

// Send writes one message.
func (c *CoderConn) Send(ctx context.Context, typ intercept.MessageType, data []byte) error {
	return c.conn.Write(ctx, toCoderType(typ), data)
}

// Receive reads the next message.
func (c *CoderConn) Receive(ctx context.Context) (intercept.MessageType, []byte, error) {
	typ, data, err := c.conn.Read(ctx)
	if err != nil {
		return 0, nil, err
	}
	return fromCoderType(typ), data, nil
}

// Subprotocol returns the negotiated subprotocol.
func (c *CoderConn) Subprotocol() string {
	return c.conn.Subprotocol()
}

// Close performs a normal closing handshake.
func (c *CoderConn) Close() error {
	return c.conn.Close(ws.StatusNormalClosure, "")
}

// CloseWith closes with the given status code and reason.
func (c *CoderConn) CloseWith(code ws.StatusCode, reason string) error {
	return c.conn.Close(code, reason)
}

// CoderOptions configures CoderDialer.
type CoderOptions struct {
	// Header is sent with the opening handshake.
	Header http.Header
	// HTTPClient is used for the handshake. Defaults to http.DefaultClient.
	HTTPClient *http.Client
	// ReadLimit caps inbound message size in bytes. Zero keeps the library default.
	ReadLimit int64
}

// CoderDialer returns a Factory dialing with coder/websocket.
func CoderDialer(opts *CoderOptions) intercept.Factory {
	if opts == nil {
		opts = &CoderOptions{}
	}
	return func(ctx context.Context, target string, subprotocols []string) (intercept.Transport, error) {
		conn, resp, err := ws.Dial(ctx, target, &ws.DialOptions{
			HTTPClient:      opts.HTTPClient,
			HTTPHeader:      opts.Header.Clone(),
			Subprotocols:    subprotocols,
			CompressionMode: ws.CompressionDisabled,
		})
		if err != nil {
			if resp != nil && resp.Body != nil {
				_ = resp.Body.Close()
			}
			return nil, err
		}
		if opts.ReadLimit > 0 {
			conn.SetReadLimit(opts.ReadLimit)
		}
		return NewCoderConn(conn), nil
	}
}

func toCoderType(t intercept.MessageType) ws.MessageType {
	if t == intercept.MessageBinary {
		return ws.MessageBinary
	}
	return ws.MessageText
}

func fromCoderType(t ws.MessageType) intercept.MessageType {
	if t == ws.MessageBinary {
		return intercept.MessageBinary
	}
	return intercept.MessageText
}

var _ intercept.Transport = (*CoderConn)(nil)
