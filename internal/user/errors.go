package user

import "errors"

// Domain errors for the user package.
var (
	// ErrUserNotFound is returned when a user ID does not exist.
	ErrUserNotFound = errors.New("user: not found")

	// ErrBadgeRegistered is returned when a badge is already assigned to a user.
	ErrBadgeRegistered = errors.New("user: badge already registered")

	// ErrInvalidUser is returned when a required field is blank.
	ErrInvalidUser = errors.New("user: badge id, first name and last name are required")
)
