package generator

import "errors"

var (
	// ErrNoBroadcaster is returned by New when no hub is supplied.
	ErrNoBroadcaster = errors.New("generator: broadcaster is required")

	// ErrNoSource is returned by New when no directory is supplied.
	ErrNoSource = errors.New("generator: directory source is required")
)
