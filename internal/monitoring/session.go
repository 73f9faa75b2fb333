package monitoring

// Session is an observer connection owned by the transport layer.
//
// Implementations are used as map keys and must be comparable
// (pointer receivers in practice).
type Session interface {
	// ID returns a stable identifier used in logs.
	ID() string

	// IsOpen reports whether the session can still accept messages.
	IsOpen() bool

	// SendText delivers one text frame. It must not block on a slow peer.
	SendText(msg string) error
}

// closer is implemented by sessions that release transport resources
// when the hub shuts down.
type closer interface {
	Close() error
}

func sessionID(s Session) (id string) {
	if s == nil {
		return ""
	}
	defer func() {
		if recover() != nil {
			id = ""
		}
	}()
	return s.ID()
}
