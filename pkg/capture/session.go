package capture

import (
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/getmockd/wsdebug/pkg/logging"
)

// Observer receives each event right after it has been appended.
// Observers run synchronously on the appending goroutine and must not call
// Append on the same session.
type Observer func(Event)

// Option configures a Session.
type Option func(*Session)

// WithClock sets the clock used to timestamp events.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// WithCapacity preallocates room for n events.
func WithCapacity(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.events = make([]Event, 0, n)
		}
	}
}

type subscription struct {
	id int
	fn Observer
}

// Session is the capture state shared by the interceptor and the inspector.
type Session struct {
	id        string
	createdAt time.Time
	now       func() time.Time
	log       *slog.Logger

	// notifyMu serializes append+notify so observers see events in log order.
	notifyMu sync.Mutex

	mu        sync.RWMutex
	events    []Event
	lastTS    int64
	registry  map[string]TransportID
	nextID    TransportID
	observers []subscription
	nextSubID int
}

// NewSession creates an empty capture session.
func NewSession(opts ...Option) *Session {
	s := &Session{
		id:       uuid.NewString(),
		now:      time.Now,
		log:      logging.Nop(),
		registry: make(map[string]TransportID),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.createdAt = s.now()
	s.log = s.log.With("session", s.id)
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// CreatedAt returns when the session was created.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// Now returns the session clock's current time in milliseconds since the epoch.
func (s *Session) Now() int64 {
	return s.now().UnixMilli()
}

// RegisterTransport assigns the next TransportID and records it as the latest
// transport for target. An earlier transport registered for the same target
// stays valid but can no longer be looked up by target.
func (s *Session) RegisterTransport(target string) TransportID {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	prev, replaced := s.registry[target]
	s.registry[target] = id
	s.mu.Unlock()

	if replaced {
		s.log.Debug("transport target re-registered", "target", target, "id", id, "previous", prev)
	} else {
		s.log.Debug("transport registered", "target", target, "id", id)
	}
	return id
}

// Lookup returns the latest TransportID registered for target.
func (s *Session) Lookup(target string) (TransportID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.registry[target]
	return id, ok
}

// Registry returns a copy of the target → TransportID mapping.
func (s *Session) Registry() map[string]TransportID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.registry)
}

// Append records a message and notifies observers. It never rejects.
func (s *Session) Append(id TransportID, dir Direction, payload string) Event {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	ts := s.now().UnixMilli()
	if ts < s.lastTS {
		ts = s.lastTS
	}
	s.lastTS = ts
	ev := Event{
		TransportID: id,
		Direction:   dir,
		Timestamp:   ts,
		Payload:     payload,
	}
	s.events = append(s.events, ev)
	observers := make([]subscription, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, sub := range observers {
		sub.fn(ev)
	}
	return ev
}

// Snapshot returns a copy of the event log in append order.
func (s *Session) Snapshot() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Len returns the number of events in the log.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Clear discards all events and returns how many were dropped.
// The registry and the identity counter are not affected.
func (s *Session) Clear() int {
	s.mu.Lock()
	n := len(s.events)
	s.events = nil
	s.mu.Unlock()

	s.log.Debug("event log cleared", "count", n)
	return n
}

// Subscribe registers an observer for future appends. Past events are not
// replayed. The returned function removes the observer.
func (s *Session) Subscribe(fn Observer) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.observers = append(s.observers, subscription{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.observers {
				if sub.id == id {
					s.observers = append(s.observers[:i], s.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// Shutdown detaches every observer. Captured events stay readable.
func (s *Session) Shutdown() {
	s.mu.Lock()
	n := len(s.observers)
	s.observers = nil
	s.mu.Unlock()

	s.log.Debug("session shut down", "observers", n)
}
