package iot

import "errors"

var (
	// ErrInvalidPayload is returned for badge messages that cannot be decoded.
	ErrInvalidPayload = errors.New("iot: invalid payload")

	// ErrMissingBadge is returned for badge messages that name no badge.
	ErrMissingBadge = errors.New("iot: badge id missing")
)
