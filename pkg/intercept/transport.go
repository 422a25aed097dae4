package intercept

import (
	"context"
	"log/slog"

	"github.com/getmockd/wsdebug/pkg/capture"
	"github.com/getmockd/wsdebug/pkg/logging"
)

// MessageType is the frame type of a message.
type MessageType int

const (
	// MessageText indicates a UTF-8 encoded text message.
	MessageText MessageType = 1
	// MessageBinary indicates a binary message.
	MessageBinary MessageType = 2
)

// String returns the string representation of the message type.
func (t MessageType) String() string {
	switch t {
	case MessageText:
		return "text"
	case MessageBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// Transport is a bidirectional message channel.
type Transport interface {
	// Send writes one message.
	Send(ctx context.Context, typ MessageType, data []byte) error
	// Receive blocks until the next message arrives.
	Receive(ctx context.Context) (MessageType, []byte, error)
	// Subprotocol returns the negotiated subprotocol, if any.
	Subprotocol() string
	// Close closes the transport.
	Close() error
}

// Factory opens a transport to target offering the given subprotocols.
type Factory func(ctx context.Context, target string, subprotocols []string) (Transport, error)

// Option configures Wrap.
type Option func(*wrapper)

// WithLogger sets the operational logger used by Wrap.
func WithLogger(log *slog.Logger) Option {
	return func(w *wrapper) {
		if log != nil {
			w.log = log
		}
	}
}

type wrapper struct {
	session *capture.Session
	factory Factory
	log     *slog.Logger
}

// Wrap returns a Factory whose transports record their traffic in session.
//
// Each call assigns the next TransportID and registers it under target before
// the underlying factory runs, so the identity is consumed even when opening
// the transport fails.
func Wrap(session *capture.Session, factory Factory, opts ...Option) Factory {
	w := &wrapper{session: session, factory: factory, log: logging.Nop()}
	for _, opt := range opts {
		opt(w)
	}
	return w.open
}

func (w *wrapper) open(ctx context.Context, target string, subprotocols []string) (Transport, error) {
	id := w.session.RegisterTransport(target)

	inner, err := w.factory(ctx, target, subprotocols)
	if err != nil {
		w.log.Debug("transport open failed", "id", id, "target", target, "error", err)
		return nil, err
	}

	w.log.Debug("transport opened", "id", id, "target", target, "subprotocol", inner.Subprotocol())
	return &Conn{
		id:      id,
		target:  target,
		inner:   inner,
		session: w.session,
	}, nil
}

// Conn is an instrumented Transport.
type Conn struct {
	id      capture.TransportID
	target  string
	inner   Transport
	session *capture.Session
}

// Instrument wraps an already open transport without going through a Factory.
func Instrument(session *capture.Session, target string, inner Transport) *Conn {
	return &Conn{
		id:      session.RegisterTransport(target),
		target:  target,
		inner:   inner,
		session: session,
	}
}

// ID returns the identity assigned to this transport.
func (c *Conn) ID() capture.TransportID {
	return c.id
}

// Target returns the target the transport was opened against.
func (c *Conn) Target() string {
	return c.target
}

// Unwrap returns the underlying transport.
func (c *Conn) Unwrap() Transport {
	return c.inner
}

// Send records the message as outbound, then forwards it unchanged.
func (c *Conn) Send(ctx context.Context, typ MessageType, data []byte) error {
	c.session.Append(c.id, capture.Outbound, string(data))
	return c.inner.Send(ctx, typ, data)
}

// Receive forwards to the underlying transport and records what it returns.
func (c *Conn) Receive(ctx context.Context) (MessageType, []byte, error) {
	typ, data, err := c.inner.Receive(ctx)
	if err != nil {
		return typ, data, err
	}
	c.session.Append(c.id, capture.Inbound, string(data))
	return typ, data, nil
}

// Subprotocol returns the underlying transport's subprotocol.
func (c *Conn) Subprotocol() string {
	return c.inner.Subprotocol()
}

// Close closes the underlying transport.
func (c *Conn) Close() error {
	return c.inner.Close()
}

var _ Transport = (*Conn)(nil)
