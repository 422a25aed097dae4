package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ws "github.com/coder/websocket"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/wsdebug/pkg/config"
	"github.com/getmockd/wsdebug/pkg/inspector"
	"github.com/getmockd/wsdebug/pkg/logging"
)

func newEchoServer(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := ws.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer c.CloseNow()
		for {
			typ, data, err := c.Read(r.Context())
			if err != nil {
				return
			}
			if err := c.Write(r.Context(), typ, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestRunConnect_CSV(t *testing.T) {
	url := newEchoServer(t)
	var out bytes.Buffer

	err := runConnect(context.Background(), connectOptions{
		url:     url,
		timeout: 5 * time.Second,
		linger:  500 * time.Millisecond,
		csv:     true,
		quiet:   true,
	}, strings.NewReader("hello\n\nworld\n"), &out, logging.Nop())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4, out.String())
	assert.True(t, strings.HasPrefix(lines[0], "0,out,"))
	assert.True(t, strings.HasSuffix(lines[0], ",hello"))

	var in int
	for _, l := range lines {
		if strings.HasPrefix(l, "0,in,") {
			in++
		}
	}
	assert.Equal(t, 2, in)
}

func TestRunConnect_LiveAndJSON(t *testing.T) {
	url := newEchoServer(t)
	var out bytes.Buffer

	err := runConnect(context.Background(), connectOptions{
		url:     url,
		timeout: 5 * time.Second,
		linger:  500 * time.Millisecond,
		json:    true,
	}, strings.NewReader(`{"op":"ping"}`+"\n"), &out, logging.Nop())
	require.NoError(t, err)

	s := out.String()
	assert.Contains(t, s, "\n  \"op\"", "live output pretty prints JSON")
	assert.Contains(t, s, `"direction":"out"`)
	assert.Contains(t, s, `"direction":"in"`)
}

func TestRunConnect_LiveFilters(t *testing.T) {
	url := newEchoServer(t)
	var out bytes.Buffer

	filters, err := config.LiveConfig{Direction: "in", Match: "!^skip"}.Filters()
	require.NoError(t, err)

	err = runConnect(context.Background(), connectOptions{
		url:     url,
		timeout: 5 * time.Second,
		linger:  500 * time.Millisecond,
		filters: filters,
	}, strings.NewReader("skip me\nkeep me\n"), &out, logging.Nop())
	require.NoError(t, err)

	s := out.String()
	assert.Contains(t, s, inspector.GlyphInbound)
	assert.NotContains(t, s, inspector.GlyphOutbound)
	assert.Contains(t, s, "keep me")
	assert.NotContains(t, s, "skip me")
}

func TestRunConnect_DialFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	err := runConnect(context.Background(), connectOptions{url: url, timeout: time.Second},
		strings.NewReader(""), &bytes.Buffer{}, logging.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect ")
}

func TestParseHeaders(t *testing.T) {
	h, err := parseHeaders([]string{"Authorization: Bearer x", "X-A:1", "X-A:2"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer x", h.Get("Authorization"))
	assert.Equal(t, []string{"1", "2"}, h.Values("X-A"))

	_, err = parseHeaders([]string{"novalue"})
	assert.Error(t, err)

	h, err = parseHeaders(nil)
	require.NoError(t, err)
	assert.Nil(t, h)
}

func TestApplyFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("upstream", "", "")
	fs.String("listen", "", "")
	fs.StringSlice("subprotocol", nil, "")
	fs.Bool("quiet", false, "")
	fs.Bool("no-xml", false, "")
	fs.StringSlice("exclude", nil, "")
	require.NoError(t, fs.Parse([]string{
		"--upstream", "ws://up:1", "--subprotocol", "a", "--subprotocol", "b", "--quiet", "--no-xml",
		"--exclude", "/health,/metrics/**",
	}))

	cfg := config.NewDefault()
	require.NoError(t, applyFlags(cfg, fs))

	assert.Equal(t, "ws://up:1", cfg.Upstream)
	assert.Equal(t, config.SourceFlag, cfg.Source(config.KeyUpstream))
	assert.Equal(t, config.DefaultListen, cfg.Listen, "unset flags do not override")
	assert.Equal(t, []string{"a", "b"}, cfg.Subprotocols)
	assert.False(t, cfg.Live.Enabled)
	assert.True(t, cfg.Live.NoXML)
	assert.Equal(t, []string{"/health", "/metrics/**"}, cfg.Record.Exclude)
}

func TestBuildVersion(t *testing.T) {
	v := buildVersion()
	assert.NotEmpty(t, v.Go)
	assert.NotEmpty(t, v.OS)
}

func TestWriteStarter_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".wsdebug.yaml")

	cfg := config.NewDefault()
	cfg.Upstream = "wss://api.example.com/socket"
	cfg.Admin = ":8090"
	cfg.Live.Direction = "in"
	cfg.Record.Exclude = []string{"/health"}
	require.NoError(t, writeStarter(path, cfg, false))

	loaded, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Upstream, loaded.Upstream)
	assert.Equal(t, cfg.Admin, loaded.Admin)
	assert.Equal(t, config.DefaultListen, loaded.Listen)
	assert.Equal(t, "in", loaded.Live.Direction)
	assert.True(t, loaded.Live.Enabled)
	assert.Equal(t, []string{"/health"}, loaded.Record.Exclude)

	err = writeStarter(path, cfg, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	require.NoError(t, writeStarter(path, cfg, true))
}

func TestWriteStarter_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	cfg := config.NewDefault()
	cfg.Upstream = "ftp://example.com"

	require.Error(t, writeStarter(path, cfg, false))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
