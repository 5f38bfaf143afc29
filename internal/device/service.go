package device

import (
	"context"
	"fmt"
	"strings"

	"github.com/hearthline/hearth-core/internal/infrastructure/logging"
	"github.com/hearthline/hearth-core/internal/notify"
)

// maxNameLength bounds device names.
const maxNameLength = 100

// RoomChecker verifies that a room belongs to an account. The room
// repository implements this; devices never read room rows directly.
type RoomChecker interface {
	ExistsForOwner(ctx context.Context, userID, roomID string) (bool, error)
}

// StateRecorder receives device power transitions for history storage.
// The InfluxDB client implements this; recording is fire-and-forget.
type StateRecorder interface {
	WriteDeviceState(deviceID, roomID, userID string, isOn bool)
}

// Service wraps the device repository with validation, room ownership
// checks, user-facing notifications, and the fallback result contract:
// failed adds yield nil, failed lists yield an empty slice, failed
// updates, deletes, and toggles yield false. Toggle is the one silent
// operation: flipping a switch succeeds without a toast, and only
// failures notify.
type Service struct {
	repo     Repository
	rooms    RoomChecker
	notifier notify.Notifier
	recorder StateRecorder
	logger   *logging.Logger
}

// NewService creates a device service. recorder may be nil, in which
// case power transitions are not recorded.
func NewService(repo Repository, rooms RoomChecker, notifier notify.Notifier, recorder StateRecorder, logger *logging.Logger) *Service {
	return &Service{repo: repo, rooms: rooms, notifier: notifier, recorder: recorder, logger: logger}
}

// AddDevice validates and creates a device for the account. The room
// must exist and belong to the same account. Returns the created
// device, or nil after notifying on any failure.
func (s *Service) AddDevice(ctx context.Context, userID, name string, icon Icon, roomID string) *Device {
	name = strings.TrimSpace(name)

	if err := validateName(name); err != nil {
		s.fail(ctx, userID, "Failed to add device: invalid name", err)
		return nil
	}
	if icon != "" && !IsValidIcon(icon) {
		s.fail(ctx, userID, "Failed to add device: unknown icon", fmt.Errorf("%w: %q", ErrInvalidIcon, icon))
		return nil
	}
	if roomID == "" {
		s.fail(ctx, userID, "Failed to add device: no room selected", ErrMissingRoom)
		return nil
	}
	if !s.ownsRoom(ctx, userID, roomID) {
		s.fail(ctx, userID, "Failed to add device: unknown room", ErrRoomOwnership)
		return nil
	}

	d := &Device{UserID: userID, RoomID: roomID, Name: name, Icon: icon}
	if err := s.repo.Create(ctx, d); err != nil {
		s.fail(ctx, userID, "Failed to add device", err)
		return nil
	}

	s.notifier.Success(ctx, userID, "Device added")
	s.logger.Info("device created", "device_id", d.ID, "room_id", roomID, "user_id", userID)
	return d
}

// GetDevices returns the account's devices. Failures notify and yield
// an empty slice so the caller always has something to render.
func (s *Service) GetDevices(ctx context.Context, userID string) []Device {
	devices, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		s.fail(ctx, userID, "Failed to load devices", err)
		return []Device{}
	}
	return devices
}

// GetDevicesByRoom returns the account's devices in a specific room.
func (s *Service) GetDevicesByRoom(ctx context.Context, userID, roomID string) []Device {
	devices, err := s.repo.ListByOwnerAndRoom(ctx, userID, roomID)
	if err != nil {
		s.fail(ctx, userID, "Failed to load devices", err)
		return []Device{}
	}
	return devices
}

// GetDevice returns a single owned device, or nil when absent.
func (s *Service) GetDevice(ctx context.Context, userID, id string) *Device {
	d, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil
	}
	return d
}

// UpdateDevice applies a partial update to an owned device. Moving the
// device to another room re-checks room ownership. Returns true on
// success.
func (s *Service) UpdateDevice(ctx context.Context, userID, id string, patch Patch) bool {
	d, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		s.fail(ctx, userID, "Failed to update device: not found", err)
		return false
	}

	if patch.Name != nil {
		d.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Icon != nil {
		d.Icon = *patch.Icon
	}
	if patch.RoomID != nil {
		d.RoomID = *patch.RoomID
	}

	if err := validateName(d.Name); err != nil {
		s.fail(ctx, userID, "Failed to update device: invalid name", err)
		return false
	}
	if d.Icon == "" || !IsValidIcon(d.Icon) {
		s.fail(ctx, userID, "Failed to update device: unknown icon", ErrInvalidIcon)
		return false
	}
	if patch.RoomID != nil {
		if d.RoomID == "" {
			s.fail(ctx, userID, "Failed to update device: no room selected", ErrMissingRoom)
			return false
		}
		if !s.ownsRoom(ctx, userID, d.RoomID) {
			s.fail(ctx, userID, "Failed to update device: unknown room", ErrRoomOwnership)
			return false
		}
	}

	if err := s.repo.Update(ctx, d); err != nil {
		s.fail(ctx, userID, "Failed to update device", err)
		return false
	}

	s.notifier.Success(ctx, userID, "Device updated")
	return true
}

// DeleteDevice removes an owned device. Returns true on success.
func (s *Service) DeleteDevice(ctx context.Context, userID, id string) bool {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		s.fail(ctx, userID, "Failed to delete device", err)
		return false
	}

	s.notifier.Success(ctx, userID, "Device deleted")
	s.logger.Info("device deleted", "device_id", id, "user_id", userID)
	return true
}

// ToggleDevice sets an owned device's power state to the given value.
// Repeating the same value leaves the state unchanged. Success is
// silent; only failures reach the notification channel. The resulting
// state is returned alongside the outcome so callers can broadcast it.
func (s *Service) ToggleDevice(ctx context.Context, userID, id string, isOn bool) (*Device, bool) {
	d, err := s.repo.SetOn(ctx, userID, id, isOn)
	if err != nil {
		s.fail(ctx, userID, "Failed to toggle device", err)
		return nil, false
	}

	if s.recorder != nil {
		s.recorder.WriteDeviceState(d.ID, d.RoomID, d.UserID, d.IsOn)
	}
	s.logger.Debug("device toggled", "device_id", d.ID, "is_on", d.IsOn)
	return d, true
}

// fail notifies the user and logs the underlying error.
func (s *Service) fail(ctx context.Context, userID, message string, err error) {
	s.notifier.Failure(ctx, userID, message)
	s.logger.Warn("device operation failed", "error", err, "user_id", userID)
}

// ownsRoom reports whether the room exists and belongs to the account.
// Lookup errors read as not owned; the caller notifies.
func (s *Service) ownsRoom(ctx context.Context, userID, roomID string) bool {
	if s.rooms == nil {
		return true
	}
	ok, err := s.rooms.ExistsForOwner(ctx, userID, roomID)
	if err != nil {
		s.logger.Warn("checking room ownership", "error", err, "room_id", roomID)
		return false
	}
	return ok
}

// validateName checks if a device name is valid.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}
