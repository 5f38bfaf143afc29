package room

import (
	"context"
	"strings"

	"github.com/hearthline/hearth-core/internal/infrastructure/logging"
	"github.com/hearthline/hearth-core/internal/notify"
)

// DeviceCounter reports how many devices reference a room. The device
// repository implements this; rooms never reach into device rows directly.
type DeviceCounter interface {
	CountByOwnerAndRoom(ctx context.Context, userID, roomID string) (int, error)
}

// Service wraps the room repository with validation, user-facing
// notifications, and the fallback result contract the panel UI relies
// on: failed adds yield nil, failed lists yield an empty slice, failed
// updates and deletes yield false. Every outcome, success or failure,
// is pushed to the notification channel; errors never escape to the
// caller as errors.
type Service struct {
	repo     Repository
	devices  DeviceCounter
	notifier notify.Notifier
	logger   *logging.Logger
}

// NewService creates a room service. devices may be nil, in which case
// deletes report zero orphaned devices.
func NewService(repo Repository, devices DeviceCounter, notifier notify.Notifier, logger *logging.Logger) *Service {
	return &Service{repo: repo, devices: devices, notifier: notifier, logger: logger}
}

// AddRoom validates and creates a room for the account. Returns the
// created room, or nil after notifying on any failure.
func (s *Service) AddRoom(ctx context.Context, userID, name string, icon Icon) *Room {
	name = strings.TrimSpace(name)

	if err := ValidateName(name); err != nil {
		s.fail(ctx, userID, "Failed to add room: invalid name", err)
		return nil
	}
	if err := ValidateIcon(icon); err != nil {
		s.fail(ctx, userID, "Failed to add room: unknown icon", err)
		return nil
	}

	rm := &Room{UserID: userID, Name: name, Icon: icon}
	if err := s.repo.Create(ctx, rm); err != nil {
		s.fail(ctx, userID, "Failed to add room", err)
		return nil
	}

	s.notifier.Success(ctx, userID, "Room created")
	s.logger.Info("room created", "room_id", rm.ID, "user_id", userID)
	return rm
}

// GetRooms returns the account's rooms. Failures notify and yield an
// empty slice so the caller always has something to render.
func (s *Service) GetRooms(ctx context.Context, userID string) []Room {
	rooms, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		s.fail(ctx, userID, "Failed to load rooms", err)
		return []Room{}
	}
	return rooms
}

// GetRoom returns a single owned room, or nil when absent.
func (s *Service) GetRoom(ctx context.Context, userID, id string) *Room {
	rm, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil
	}
	return rm
}

// UpdateRoom applies a partial update to an owned room. Nil patch
// fields keep their current value. Returns true on success.
func (s *Service) UpdateRoom(ctx context.Context, userID, id string, patch Patch) bool {
	rm, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		s.fail(ctx, userID, "Failed to update room: not found", err)
		return false
	}

	if patch.Name != nil {
		rm.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Icon != nil {
		rm.Icon = *patch.Icon
	}

	if err := ValidateName(rm.Name); err != nil {
		s.fail(ctx, userID, "Failed to update room: invalid name", err)
		return false
	}
	if rm.Icon == "" || !IsValidIcon(rm.Icon) {
		s.fail(ctx, userID, "Failed to update room: unknown icon", ErrInvalidIcon)
		return false
	}

	if err := s.repo.Update(ctx, rm); err != nil {
		s.fail(ctx, userID, "Failed to update room", err)
		return false
	}

	s.notifier.Success(ctx, userID, "Room updated")
	return true
}

// DeleteRoom removes an owned room. Devices keep their reference to
// the deleted room and are reported back as the orphan count; the
// dashboard groups them under the unassigned bucket.
func (s *Service) DeleteRoom(ctx context.Context, userID, id string) (bool, int) {
	orphaned := 0
	if s.devices != nil {
		count, err := s.devices.CountByOwnerAndRoom(ctx, userID, id)
		if err != nil {
			s.logger.Warn("counting devices for room delete", "error", err, "room_id", id)
		} else {
			orphaned = count
		}
	}

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		s.fail(ctx, userID, "Failed to delete room", err)
		return false, 0
	}

	s.notifier.Success(ctx, userID, "Room deleted")
	s.logger.Info("room deleted", "room_id", id, "user_id", userID, "orphaned_devices", orphaned)
	return true, orphaned
}

// fail notifies the user and logs the underlying error.
func (s *Service) fail(ctx context.Context, userID, message string, err error) {
	s.notifier.Failure(ctx, userID, message)
	s.logger.Warn("room operation failed", "error", err, "user_id", userID)
}
