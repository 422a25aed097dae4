package admin

import (
	"net/http"
	"sync/atomic"

	ws "github.com/coder/websocket"
	"github.com/goccy/go-json"

	"github.com/getmockd/wsdebug/pkg/capture"
	"github.com/getmockd/wsdebug/pkg/filter"
)

// handleStream handles GET /logs/stream. Each captured event that passes the
// query's filters is pushed to the client as one JSON text message. Limit
// and columns do not apply.
func (a *API) handleStream(w http.ResponseWriter, r *http.Request) {
	q, ok := a.readQuery(w, r)
	if !ok {
		return
	}

	c, err := ws.Accept(w, r, &ws.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		a.log.Debug("stream upgrade failed", "error", err)
		return
	}
	defer c.CloseNow()

	ctx := c.CloseRead(r.Context())

	events := make(chan capture.Event, streamBuffer)
	var dropped atomic.Int64
	unsubscribe := a.session.Subscribe(func(ev capture.Event) {
		select {
		case events <- ev:
		default:
			dropped.Add(1)
		}
	})
	defer unsubscribe()

	log := a.log.With("remote", r.RemoteAddr)
	log.Debug("stream client connected")
	defer func() {
		log.Debug("stream client disconnected", "dropped", dropped.Load())
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if q.Transform != nil {
				ev = ev.WithPayload(q.Transform(ev.Payload))
			}
			ok, err := filter.Match(ev, q.Filters)
			if err != nil {
				log.Warn("stream filter failed", "transportId", ev.TransportID, "error", err)
				continue
			}
			if !ok {
				continue
			}
			data, err := json.Marshal(ev)
			if err != nil {
				log.Warn("stream encode failed", "error", err)
				continue
			}
			if err := c.Write(ctx, ws.MessageText, data); err != nil {
				return
			}
		}
	}
}
