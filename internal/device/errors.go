package device

import "errors"

var (
	// ErrNotFound is returned when a device ID does not exist for the owner.
	// Devices belonging to other accounts are indistinguishable from absent ones.
	ErrNotFound = errors.New("device not found")

	// ErrInvalidName is returned when a device name fails validation.
	ErrInvalidName = errors.New("invalid device name")

	// ErrInvalidIcon is returned when an icon is outside the accepted set.
	ErrInvalidIcon = errors.New("invalid device icon")

	// ErrRoomOwnership is returned when a device references a room the
	// account does not own.
	ErrRoomOwnership = errors.New("room does not belong to this account")

	// ErrMissingRoom is returned when a device is created without a room.
	ErrMissingRoom = errors.New("device requires a room")
)
