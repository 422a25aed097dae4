package inspector

import (
	"github.com/getmockd/wsdebug/pkg/capture"
	"github.com/getmockd/wsdebug/pkg/filter"
	"github.com/getmockd/wsdebug/pkg/format"
)

type liveState struct {
	// anchor is the timestamp the next printed delta is measured from.
	anchor int64
	query  Query
}

// Live starts printing newly captured events that match q. Calling Live while
// already live replaces the query but keeps the delta anchor, so the next
// printed delta still measures from the last printed event.
func (i *Inspector) Live(q Query) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.live == nil {
		i.live = &liveState{anchor: i.session.Now()}
		i.log.Debug("live mode started")
	}
	i.live.query = q.clone()
}

// StopLive stops live output. It is a no-op when live mode is off.
func (i *Inspector) StopLive() {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.live != nil {
		i.live = nil
		i.log.Debug("live mode stopped")
	}
}

// LiveActive reports whether live mode is on.
func (i *Inspector) LiveActive() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.live != nil
}

// observe is the session observer behind live mode.
func (i *Inspector) observe(ev capture.Event) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.live == nil {
		return
	}
	q := i.live.query

	if q.Transform != nil {
		ev = ev.WithPayload(q.Transform(ev.Payload))
	}
	ok, err := filter.Match(ev, q.Filters)
	if err != nil {
		i.log.Warn("live filter failed", "transportId", ev.TransportID, "error", err)
		return
	}
	if !ok {
		return
	}

	delta := ev.Timestamp - i.live.anchor
	i.live.anchor = ev.Timestamp

	if err := i.write(i.out, line(i.styles, ev, delta, format.RenderOptions{NoXML: q.NoXML})); err != nil {
		i.log.Warn("live write failed", "error", err)
	}
}
