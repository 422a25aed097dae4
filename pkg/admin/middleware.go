package admin

import (
	"bufio"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CORSConfig holds the configuration for CORS middleware.
type CORSConfig struct {
	// AllowedOrigins lists origins allowed to make cross-origin requests.
	// Empty or "*" allows all.
	AllowedOrigins []string

	// MaxAge is how long, in seconds, preflight results may be cached.
	// Default: 86400.
	MaxAge int
}

func (c *CORSConfig) allowOrigin(origin string) string {
	if len(c.AllowedOrigins) == 0 {
		return "*"
	}
	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" {
			return "*"
		}
		if allowed == origin {
			return origin
		}
	}
	return ""
}

func (c *CORSConfig) maxAge() string {
	if c.MaxAge <= 0 {
		return "86400"
	}
	return strconv.Itoa(c.MaxAge)
}

// CORSMiddleware adds CORS headers to responses.
type CORSMiddleware struct {
	handler http.Handler
	config  CORSConfig
}

// NewCORSMiddleware wraps handler with CORS headers.
func NewCORSMiddleware(handler http.Handler, config CORSConfig) *CORSMiddleware {
	return &CORSMiddleware{handler: handler, config: config}
}

// ServeHTTP implements http.Handler.
func (m *CORSMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Vary", "Origin")

	allow := m.config.allowOrigin(r.Header.Get("Origin"))
	if allow == "" {
		m.handler.ServeHTTP(w, r)
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", allow)
	w.Header().Set("Access-Control-Allow-Methods", strings.Join([]string{http.MethodGet, http.MethodDelete, http.MethodOptions}, ", "))
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Max-Age", m.config.maxAge())

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	m.handler.ServeHTTP(w, r)
}

// LoggingMiddleware logs each request at debug level.
type LoggingMiddleware struct {
	handler http.Handler
	log     *slog.Logger
}

// NewLoggingMiddleware wraps handler with request logging.
func NewLoggingMiddleware(handler http.Handler, log *slog.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{handler: handler, log: log}
}

// ServeHTTP implements http.Handler.
func (m *LoggingMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	m.handler.ServeHTTP(lrw, r)

	m.log.Debug("admin request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", lrw.statusCode,
		"duration", time.Since(start),
	)
}

// loggingResponseWriter captures the status code.
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// Hijack lets WebSocket upgrades through the wrapper.
func (lrw *loggingResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := lrw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	lrw.statusCode = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func (lrw *loggingResponseWriter) Flush() {
	if f, ok := lrw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (lrw *loggingResponseWriter) Unwrap() http.ResponseWriter {
	return lrw.ResponseWriter
}
