package monitoring

import "errors"

// Domain errors for the monitoring package.
var (
	// ErrSerialization is returned by Broadcast when an event cannot be encoded.
	ErrSerialization = errors.New("monitoring: event serialization failed")

	// ErrNilSession is reported when a nil session handle is delivered to.
	ErrNilSession = errors.New("monitoring: nil session")

	// ErrSessionClosed is reported when delivering to a session that is no longer open.
	ErrSessionClosed = errors.New("monitoring: session closed")

	// ErrSessionPanicked is reported when a session method panics during delivery.
	ErrSessionPanicked = errors.New("monitoring: session panicked")
)
