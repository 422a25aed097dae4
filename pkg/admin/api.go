package admin

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/getmockd/wsdebug/pkg/capture"
	"github.com/getmockd/wsdebug/pkg/inspector"
	"github.com/getmockd/wsdebug/pkg/logging"
)

// streamBuffer is how many events a slow stream client may lag behind
// before events are dropped for it.
const streamBuffer = 256

// Option configures an API.
type Option func(*API)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(a *API) {
		if log != nil {
			a.log = log
		}
	}
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(a *API) {
		a.version = v
	}
}

// WithCORS enables CORS headers with the given configuration.
func WithCORS(config CORSConfig) Option {
	return func(a *API) {
		a.cors = &config
	}
}

// API is the admin HTTP API.
type API struct {
	insp      *inspector.Inspector
	session   *capture.Session
	log       *slog.Logger
	version   string
	startTime time.Time
	cors      *CORSConfig
	handler   http.Handler
}

// New returns an API serving insp.
func New(insp *inspector.Inspector, opts ...Option) *API {
	a := &API{
		insp:      insp,
		session:   insp.Session(),
		log:       logging.Nop(),
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(a)
	}

	mux := http.NewServeMux()
	a.registerRoutes(mux)

	var h http.Handler = mux
	if a.cors != nil {
		h = NewCORSMiddleware(h, *a.cors)
	}
	a.handler = NewLoggingMiddleware(h, a.log)
	return a
}

// Handler returns the API's root handler.
func (a *API) Handler() http.Handler {
	return a.handler
}

// Uptime returns whole seconds since the API was created.
func (a *API) Uptime() int {
	return int(time.Since(a.startTime).Seconds())
}

// ListenAndServe serves the API on addr until ctx is cancelled.
func (a *API) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	a.log.Info("admin API listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
