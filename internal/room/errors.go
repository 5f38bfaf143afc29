package room

import "errors"

var (
	// ErrNotFound is returned when a room ID does not exist for the owner.
	// Rooms belonging to other accounts are indistinguishable from absent ones.
	ErrNotFound = errors.New("room not found")

	// ErrInvalidName is returned when a room name fails validation.
	ErrInvalidName = errors.New("invalid room name")

	// ErrInvalidIcon is returned when an icon is outside the accepted set.
	ErrInvalidIcon = errors.New("invalid room icon")
)
