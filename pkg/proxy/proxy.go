package proxy

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	ws "github.com/coder/websocket"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"github.com/getmockd/wsdebug/pkg/capture"
	"github.com/getmockd/wsdebug/pkg/intercept"
	"github.com/getmockd/wsdebug/pkg/logging"
	"github.com/getmockd/wsdebug/pkg/transport"
)

// ErrUpstream wraps failures to reach the upstream server.
var ErrUpstream = errors.New("upstream unavailable")

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithDialer sets the factory used to reach upstream. It is instrumented by
// New, so it must not record traffic itself. Defaults to transport.CoderDialer.
func WithDialer(f intercept.Factory) Option {
	return func(s *Server) {
		if f != nil {
			s.rawDial = f
		}
	}
}

// WithSubprotocols sets the subprotocols offered upstream when the client
// offers none.
func WithSubprotocols(protocols []string) Option {
	return func(s *Server) {
		s.subprotocols = append([]string(nil), protocols...)
	}
}

// WithOriginPatterns restricts which client origins are accepted. Without
// patterns every origin is accepted.
func WithOriginPatterns(patterns ...string) Option {
	return func(s *Server) {
		s.originPatterns = patterns
	}
}

// WithMaxConns caps concurrent client connections when serving with
// ListenAndServe. Zero means unlimited.
func WithMaxConns(n int) Option {
	return func(s *Server) {
		s.maxConns = n
	}
}

// WithPathFilter limits recording to the client paths f selects.
func WithPathFilter(f PathFilter) Option {
	return func(s *Server) {
		s.paths = f
	}
}

// Server bridges WebSocket clients to a single upstream.
type Server struct {
	upstream       *url.URL
	paths          PathFilter
	subprotocols   []string
	originPatterns []string
	maxConns       int
	rawDial        intercept.Factory
	dial           intercept.Factory
	log            *slog.Logger

	mu      sync.Mutex
	bridges map[int64]*bridge
	nextID  int64
	served  atomic.Int64
	httpSrv *http.Server
}

// New returns a Server bridging clients to upstream.
func New(session *capture.Session, upstream string, opts ...Option) (*Server, error) {
	u, err := url.Parse(upstream)
	if err != nil {
		return nil, err
	}
	s := &Server{
		upstream: u,
		log:      logging.Nop(),
		rawDial:  transport.CoderDialer(nil),
		bridges:  make(map[int64]*bridge),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.paths.Validate(); err != nil {
		return nil, err
	}
	s.dial = intercept.Wrap(session, s.rawDial, intercept.WithLogger(s.log))
	return s, nil
}

// Target returns the upstream URL for a client request: the request path is
// appended to the upstream path and a request query replaces the upstream one.
func (s *Server) Target(r *http.Request) string {
	u := *s.upstream
	if p := r.URL.Path; p != "" && p != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/") + p
		u.RawPath = ""
	}
	if r.URL.RawQuery != "" {
		u.RawQuery = r.URL.RawQuery
	}
	return u.String()
}

// ServeHTTP upgrades the client and bridges it upstream until either side
// closes. Upstream is dialed first so a failure can be reported as 502.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	target := s.Target(r)
	offered := requestedSubprotocols(r)
	if len(offered) == 0 {
		offered = s.subprotocols
	}

	dial := s.dial
	if !s.paths.Records(r.URL.Path) {
		dial = s.rawDial
	}
	up, err := dial(r.Context(), target, offered)
	if err != nil {
		s.log.Warn("upstream dial failed", "target", target, "error", err)
		http.Error(w, ErrUpstream.Error()+": "+err.Error(), http.StatusBadGateway)
		return
	}

	accept := &ws.AcceptOptions{
		OriginPatterns:     s.originPatterns,
		InsecureSkipVerify: len(s.originPatterns) == 0,
	}
	if p := up.Subprotocol(); p != "" {
		accept.Subprotocols = []string{p}
	}
	c, err := ws.Accept(w, r, accept)
	if err != nil {
		_ = up.Close()
		s.log.Warn("client upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	b := &bridge{
		client:   transport.NewCoderConn(c),
		upstream: up,
	}
	id := s.track(b)
	defer s.untrack(id)

	s.served.Add(1)
	log := s.log.With("target", target, "remote", r.RemoteAddr)
	if conn, ok := up.(*intercept.Conn); ok {
		log = log.With("transportId", conn.ID())
	}
	log.Info("bridge opened", "subprotocol", up.Subprotocol())

	err = b.run(r.Context())
	if err != nil && !isClosure(err) {
		log.Warn("bridge closed", "error", err)
		return
	}
	log.Info("bridge closed")
}

func (s *Server) track(b *bridge) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.bridges[id] = b
	return id
}

func (s *Server) untrack(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bridges, id)
}

// Active returns the number of open bridges.
func (s *Server) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bridges)
}

// Served returns the number of bridges opened since start.
func (s *Server) Served() int64 {
	return s.served.Load()
}

// ListenAndServe accepts clients on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts clients on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.maxConns > 0 {
		ln = netutil.LimitListener(ln, s.maxConns)
	}

	srv := &http.Server{
		Handler:     s,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	s.mu.Lock()
	s.httpSrv = srv
	s.mu.Unlock()

	s.log.Info("proxy listening", "addr", ln.Addr().String(), "upstream", s.upstream.String())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		s.Close()
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Close stops accepting clients and closes every open bridge.
func (s *Server) Close() {
	s.mu.Lock()
	srv := s.httpSrv
	bridges := make([]*bridge, 0, len(s.bridges))
	for _, b := range s.bridges {
		bridges = append(bridges, b)
	}
	s.mu.Unlock()

	if srv != nil {
		_ = srv.Close()
	}
	for _, b := range bridges {
		b.close()
	}
}

// bridge pumps messages between one client and its upstream.
type bridge struct {
	client   *transport.CoderConn
	upstream intercept.Transport
	once     sync.Once
}

func (b *bridge) run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer b.close()
		return pump(ctx, b.client, b.upstream)
	})
	g.Go(func() error {
		defer b.close()
		return pump(ctx, b.upstream, b.client)
	})
	return g.Wait()
}

func (b *bridge) close() {
	b.once.Do(func() {
		_ = b.client.Close()
		_ = b.upstream.Close()
	})
}

// pump forwards messages from src to dst until either fails.
func pump(ctx context.Context, src, dst intercept.Transport) error {
	for {
		typ, data, err := src.Receive(ctx)
		if err != nil {
			return err
		}
		if err := dst.Send(ctx, typ, data); err != nil {
			return err
		}
	}
}

// isClosure reports whether err is an ordinary end of a connection.
func isClosure(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, net.ErrClosed) {
		return true
	}
	switch ws.CloseStatus(err) {
	case ws.StatusNormalClosure, ws.StatusGoingAway, ws.StatusNoStatusRcvd:
		return true
	}
	return false
}

func requestedSubprotocols(r *http.Request) []string {
	var out []string
	for _, h := range r.Header.Values("Sec-WebSocket-Protocol") {
		for _, p := range strings.Split(h, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
