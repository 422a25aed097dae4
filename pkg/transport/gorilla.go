package transport

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/getmockd/wsdebug/pkg/intercept"
)

// GorillaConn adapts a gorilla/websocket connection.
// gorilla allows one concurrent writer, so Send is serialized.
type GorillaConn struct {
	conn *websocket.Conn
	wmu  sync.Mutex
}

// NewGorillaConn wraps an open connection.
func NewGorillaConn(conn *websocket.Conn) *GorillaConn {
	return &GorillaConn{conn: conn}
}

// Conn returns the underlying connection.
func (c *GorillaConn) Conn() *websocket.Conn {
	return c.conn
}

// Send writes one message. A context deadline becomes the write deadline.
func (c *GorillaConn) Send(ctx context.Context, typ intercept.MessageType, data []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(deadline)
		defer c.conn.SetWriteDeadline(time.Time{})
	}
	return c.conn.WriteMessage(toGorillaType(typ), data)
}

// Receive reads the next message. A context deadline becomes the read
// deadline; cancellation without a deadline is not observed, close the
// connection to unblock a pending Receive.
func (c *GorillaConn) Receive(ctx context.Context) (intercept.MessageType, []byte, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetReadDeadline(deadline)
		defer c.conn.SetReadDeadline(time.Time{})
	}
	typ, data, err := c.conn.ReadMessage()
	if err != nil {
		return 0, nil, err
	}
	return fromGorillaType(typ), data, nil
}

// Subprotocol returns the negotiated subprotocol.
func (c *GorillaConn) Subprotocol() string {
	return c.conn.Subprotocol()
}

// Close sends a normal close frame and closes the connection.
func (c *GorillaConn) Close() error {
	c.wmu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.wmu.Unlock()
	return c.conn.Close()
}

// GorillaDialer returns a Factory dialing with a copy of d (nil uses
// websocket.DefaultDialer). The factory's subprotocols replace d.Subprotocols.
func GorillaDialer(d *websocket.Dialer, header http.Header) intercept.Factory {
	if d == nil {
		d = websocket.DefaultDialer
	}
	return func(ctx context.Context, target string, subprotocols []string) (intercept.Transport, error) {
		dialer := *d
		dialer.Subprotocols = subprotocols

		conn, resp, err := dialer.DialContext(ctx, target, header.Clone())
		if err != nil {
			if resp != nil && resp.Body != nil {
				_ = resp.Body.Close()
			}
			return nil, err
		}
		return NewGorillaConn(conn), nil
	}
}

func toGorillaType(t intercept.MessageType) int {
	if t == intercept.MessageBinary {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

func fromGorillaType(t int) intercept.MessageType {
	if t == websocket.BinaryMessage {
		return intercept.MessageBinary
	}
	return intercept.MessageText
}

var _ intercept.Transport = (*GorillaConn)(nil)
