package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for device persistence operations.
// All reads and writes are scoped to the owning account.
type Repository interface {
	Create(ctx context.Context, device *Device) error
	ListByOwner(ctx context.Context, userID string) ([]Device, error)
	ListByOwnerAndRoom(ctx context.Context, userID, roomID string) ([]Device, error)
	Get(ctx context.Context, userID, id string) (*Device, error)
	Update(ctx context.Context, device *Device) error
	Delete(ctx context.Context, userID, id string) error
	SetOn(ctx context.Context, userID, id string, isOn bool) (*Device, error)
	CountByOwnerAndRoom(ctx context.Context, userID, roomID string) (int, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed device repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new device. The ID is generated if empty and the
// default icon is applied when none is set. New devices start off.
func (r *SQLiteRepository) Create(ctx context.Context, device *Device) error {
	if device.ID == "" {
		device.ID = "dev-" + uuid.NewString()[:8]
	}
	if device.Icon == "" {
		device.Icon = DefaultIcon
	}

	now := time.Now().UTC().Format(time.RFC3339)
	device.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	device.UpdatedAt = device.CreatedAt

	const query = `INSERT INTO devices (id, user_id, room_id, name, icon, is_on, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		device.ID, device.UserID, device.RoomID, device.Name,
		string(device.Icon), boolToInt(device.IsOn), now, now)
	if err != nil {
		return fmt.Errorf("inserting device %s: %w", device.ID, err)
	}
	return nil
}

// ListByOwner returns all devices owned by the account, oldest first.
func (r *SQLiteRepository) ListByOwner(ctx context.Context, userID string) ([]Device, error) {
	const query = `SELECT id, user_id, room_id, name, icon, is_on, created_at, updated_at
		FROM devices WHERE user_id = ? ORDER BY created_at, id`
	return r.queryDevices(ctx, query, userID)
}

// ListByOwnerAndRoom returns the account's devices in a specific room.
func (r *SQLiteRepository) ListByOwnerAndRoom(ctx context.Context, userID, roomID string) ([]Device, error) {
	const query = `SELECT id, user_id, room_id, name, icon, is_on, created_at, updated_at
		FROM devices WHERE user_id = ? AND room_id = ? ORDER BY created_at, id`
	return r.queryDevices(ctx, query, userID, roomID)
}

// Get returns a single device by ID, scoped to the owner.
func (r *SQLiteRepository) Get(ctx context.Context, userID, id string) (*Device, error) {
	const query = `SELECT id, user_id, room_id, name, icon, is_on, created_at, updated_at
		FROM devices WHERE id = ? AND user_id = ?`

	d, err := scanDevice(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting device %s: %w", id, err)
	}
	return d, nil
}

// Update persists the device's mutable fields, scoped to the owner.
func (r *SQLiteRepository) Update(ctx context.Context, device *Device) error {
	now := time.Now().UTC().Format(time.RFC3339)
	device.UpdatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	const query = `UPDATE devices SET name = ?, icon = ?, room_id = ?, is_on = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`
	result, err := r.db.ExecContext(ctx, query,
		device.Name, string(device.Icon), device.RoomID, boolToInt(device.IsOn),
		now, device.ID, device.UserID)
	if err != nil {
		return fmt.Errorf("updating device %s: %w", device.ID, err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a device, scoped to the owner.
func (r *SQLiteRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM devices WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("deleting device %s: %w", id, err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// SetOn writes the device's power state and returns the resulting
// device. Writing the same value twice is a no-op beyond the timestamp,
// so repeated requests to the same state are safe.
func (r *SQLiteRepository) SetOn(ctx context.Context, userID, id string, isOn bool) (*Device, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := r.db.ExecContext(ctx,
		"UPDATE devices SET is_on = ?, updated_at = ? WHERE id = ? AND user_id = ?",
		boolToInt(isOn), now, id, userID)
	if err != nil {
		return nil, fmt.Errorf("setting device %s power: %w", id, err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return nil, ErrNotFound
	}

	return r.Get(ctx, userID, id)
}

// CountByOwnerAndRoom returns how many of the account's devices
// reference the room.
func (r *SQLiteRepository) CountByOwnerAndRoom(ctx context.Context, userID, roomID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM devices WHERE user_id = ? AND room_id = ?",
		userID, roomID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting devices in room %s: %w", roomID, err)
	}
	return count, nil
}

// queryDevices runs a device query and scans all rows.
func (r *SQLiteRepository) queryDevices(ctx context.Context, query string, args ...any) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}

	if devices == nil {
		devices = []Device{}
	}
	return devices, nil
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

// scanDevice scans a device from a row or rows.
func scanDevice(s scanner) (*Device, error) {
	var d Device
	var icon string
	var isOn int
	var createdAt, updatedAt string

	if err := s.Scan(&d.ID, &d.UserID, &d.RoomID, &d.Name, &icon, &isOn, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("scanning device: %w", err)
	}

	d.Icon = Icon(icon)
	d.IsOn = isOn != 0
	d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	d.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &d, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
