package monitoring

import (
	"fmt"
	"sync"
)

// Logger defines the logging interface used by the Hub.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the hub logger.
func WithLogger(l Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// Hub tracks connected observer sessions and fans events out to them.
//
// A single mutex serialises Register, Unregister and Broadcast. Sessions
// must therefore make SendText non-blocking; the WebSocket session queues
// into a bounded buffer and fails when it is full.
type Hub struct {
	mu       sync.Mutex
	sessions map[Session]struct{}
	logger   Logger
}

// NewHub creates an empty hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		sessions: make(map[Session]struct{}),
		logger:   noopLogger{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register adds s to the active set and sends it the snapshot event.
// If the snapshot cannot be delivered, s is evicted straight away.
func (h *Hub) Register(s Session) {
	snapshot := NewSnapshotEvent()
	payload, err := Marshal(snapshot)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.sessions[s] = struct{}{}

	if err != nil {
		// The snapshot is built from constants; this is unreachable in practice.
		h.logger.Error("encoding snapshot event", "session_id", sessionID(s), "error", err)
		return
	}

	if err := deliver(s, string(payload)); err != nil {
		delete(h.sessions, s)
		h.logger.Warn("evicting observer on snapshot",
			"session_id", sessionID(s),
			"error", err)
		return
	}

	h.logger.Info("observer registered",
		"session_id", sessionID(s),
		"observers", len(h.sessions))
}

// Unregister removes s from the active set. Removing an absent session is a no-op.
func (h *Hub) Unregister(s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[s]; !ok {
		return
	}
	delete(h.sessions, s)

	h.logger.Info("observer unregistered",
		"session_id", sessionID(s),
		"observers", len(h.sessions))
}

// Broadcast sends ev to every registered session.
//
// The event is encoded once. Sessions that are nil, closed, or fail the
// send are removed before Broadcast returns. Only an encoding failure is
// returned to the caller, in which case nothing was sent.
func (h *Hub) Broadcast(ev Event) error {
	payload, err := Marshal(ev)
	if err != nil {
		return err
	}
	msg := string(payload)

	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for s := range h.sessions {
		if err := deliver(s, msg); err != nil {
			delete(h.sessions, s)
			h.logger.Warn("evicting observer",
				"session_id", sessionID(s),
				"event_id", ev.ID,
				"error", err)
			continue
		}
		delivered++
	}

	h.logger.Debug("event broadcast",
		"event_id", ev.ID,
		"event_type", ev.Type,
		"observers", delivered)

	return nil
}

// ActiveCount returns the number of registered sessions.
func (h *Hub) ActiveCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Close unregisters every session, closing those that support it.
// The hub stays usable afterwards.
func (h *Hub) Close() {
	h.mu.Lock()
	sessions := make([]Session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.sessions = make(map[Session]struct{})
	h.mu.Unlock()

	for _, s := range sessions {
		if err := closeSession(s); err != nil {
			h.logger.Debug("closing observer", "session_id", sessionID(s), "error", err)
		}
	}

	if len(sessions) > 0 {
		h.logger.Info("hub closed", "observers", len(sessions))
	}
}

// deliver performs a single delivery attempt. A panicking session, such
// as a typed nil pointer, is reported as ErrSessionPanicked.
func deliver(s Session, msg string) (err error) {
	if s == nil {
		return ErrNilSession
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrSessionPanicked, r)
		}
	}()
	if !s.IsOpen() {
		return ErrSessionClosed
	}
	return s.SendText(msg)
}

func closeSession(s Session) (err error) {
	c, ok := s.(closer)
	if !ok {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrSessionPanicked, r)
		}
	}()
	return c.Close()
}
