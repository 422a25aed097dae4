package capture

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock returns a clock that yields the given millisecond times in order,
// repeating the last one once exhausted.
func stepClock(ms ...int64) func() time.Time {
	var mu sync.Mutex
	i := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		v := ms[i]
		if i < len(ms)-1 {
			i++
		}
		return time.UnixMilli(v)
	}
}

func TestRegisterTransport_MonotonicIDs(t *testing.T) {
	s := NewSession()

	a := s.RegisterTransport("ws://a")
	b := s.RegisterTransport("ws://b")
	c := s.RegisterTransport("ws://c")

	assert.Equal(t, TransportID(0), a)
	assert.Equal(t, TransportID(1), b)
	assert.Equal(t, TransportID(2), c)
}

func TestRegisterTransport_SameTargetOverwrites(t *testing.T) {
	s := NewSession()

	first := s.RegisterTransport("ws://same")
	second := s.RegisterTransport("ws://same")
	require.NotEqual(t, first, second)

	s.Append(first, Outbound, "from first")
	s.Append(second, Outbound, "from second")

	id, ok := s.Lookup("ws://same")
	require.True(t, ok)
	assert.Equal(t, second, id)
	assert.Len(t, s.Registry(), 1)

	events := s.Snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, first, events[0].TransportID)
	assert.Equal(t, second, events[1].TransportID)
}

func TestAppend_AssignsTimestampAtAppend(t *testing.T) {
	// First call is consumed by NewSession for CreatedAt.
	s := NewSession(WithClock(stepClock(0, 100, 250)))

	e1 := s.Append(0, Outbound, "a")
	e2 := s.Append(0, Inbound, "b")

	assert.Equal(t, int64(100), e1.Timestamp)
	assert.Equal(t, int64(250), e2.Timestamp)
	assert.Equal(t, Outbound, e1.Direction)
	assert.Equal(t, Inbound, e2.Direction)
}

func TestAppend_TimestampsNeverDecrease(t *testing.T) {
	s := NewSession(WithClock(stepClock(0, 500, 400, 600)))

	e1 := s.Append(0, Outbound, "a")
	e2 := s.Append(0, Outbound, "b")
	e3 := s.Append(0, Outbound, "c")

	assert.Equal(t, int64(500), e1.Timestamp)
	assert.Equal(t, int64(500), e2.Timestamp, "clock went backwards, timestamp should clamp")
	assert.Equal(t, int64(600), e3.Timestamp)
}

func TestSnapshot_IsolatedFromLaterAppends(t *testing.T) {
	s := NewSession()
	s.Append(0, Outbound, "one")

	snap := s.Snapshot()
	s.Append(0, Outbound, "two")
	snap[0].Payload = "mutated"

	assert.Len(t, snap, 1)
	assert.Equal(t, "one", s.Snapshot()[0].Payload)
	assert.Equal(t, 2, s.Len())
}

func TestClear_KeepsRegistryAndCounter(t *testing.T) {
	s := NewSession()
	id := s.RegisterTransport("ws://keep")
	s.Append(id, Outbound, "x")
	s.Append(id, Inbound, "y")

	n := s.Clear()

	assert.Equal(t, 2, n)
	assert.Empty(t, s.Snapshot())
	assert.Equal(t, map[string]TransportID{"ws://keep": id}, s.Registry())
	assert.Equal(t, id+1, s.RegisterTransport("ws://next"))
}

func TestSubscribe_ReceivesInOrderWithoutReplay(t *testing.T) {
	s := NewSession()
	s.Append(0, Outbound, "before")

	var got []string
	unsubscribe := s.Subscribe(func(ev Event) {
		got = append(got, ev.Payload)
	})

	s.Append(0, Outbound, "a")
	s.Append(0, Inbound, "b")
	unsubscribe()
	unsubscribe()
	s.Append(0, Inbound, "after")

	assert.Equal(t, []string{"a", "b"}, got)
}

func TestSubscribe_ObserverMaySnapshot(t *testing.T) {
	s := NewSession()
	var lens []int
	s.Subscribe(func(Event) {
		lens = append(lens, s.Len())
	})

	s.Append(0, Outbound, "a")
	s.Append(0, Outbound, "b")

	assert.Equal(t, []int{1, 2}, lens)
}

func TestShutdown_DetachesObservers(t *testing.T) {
	s := NewSession()
	calls := 0
	s.Subscribe(func(Event) { calls++ })

	s.Append(0, Outbound, "a")
	s.Shutdown()
	s.Append(0, Outbound, "b")

	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, s.Len())
}

func TestAppend_ConcurrentWritersKeepEveryEvent(t *testing.T) {
	s := NewSession()
	const writers, perWriter = 8, 200

	var seen int
	var seenMu sync.Mutex
	s.Subscribe(func(Event) {
		seenMu.Lock()
		seen++
		seenMu.Unlock()
	})

	var wg sync.WaitGroup
	wg.Add(writers)
	for w := 0; w < writers; w++ {
		go func(id TransportID) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				s.Append(id, Outbound, "m")
			}
		}(TransportID(w))
	}
	wg.Wait()

	events := s.Snapshot()
	require.Len(t, events, writers*perWriter)
	assert.Equal(t, writers*perWriter, seen)
	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqual(t, events[i].Timestamp, events[i-1].Timestamp)
	}
}

func TestEvent_Field(t *testing.T) {
	ev := Event{TransportID: 3, Direction: Inbound, Timestamp: 42, Payload: "hi"}

	tests := []struct {
		name    string
		want    any
		present bool
	}{
		{FieldTransportID, TransportID(3), true},
		{FieldDirection, Inbound, true},
		{FieldTimestamp, int64(42), true},
		{FieldPayload, "hi", true},
		{"socket_id", TransportID(3), true},
		{"time", int64(42), true},
		{"msg", "hi", true},
		{"missing", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ev.Field(tt.name)
			assert.Equal(t, tt.present, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("in")
	require.NoError(t, err)
	assert.Equal(t, Inbound, d)

	d, err = ParseDirection("outbound")
	require.NoError(t, err)
	assert.Equal(t, Outbound, d)

	_, err = ParseDirection("sideways")
	assert.ErrorIs(t, err, ErrInvalidDirection)
}
