package room

import (
	"fmt"
	"strings"
)

// maxNameLength bounds room names.
const maxNameLength = 100

// ValidateName checks if a room name is valid.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

// ValidateIcon checks that an icon is in the accepted set.
// An empty icon is valid; the default is applied on creation.
func ValidateIcon(icon Icon) error {
	if icon == "" {
		return nil
	}
	if !IsValidIcon(icon) {
		return fmt.Errorf("%w: %q", ErrInvalidIcon, icon)
	}
	return nil
}
