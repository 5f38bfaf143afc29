package room

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for room persistence operations.
// All reads and writes are scoped to the owning account.
type Repository interface {
	Create(ctx context.Context, room *Room) error
	ListByOwner(ctx context.Context, userID string) ([]Room, error)
	Get(ctx context.Context, userID, id string) (*Room, error)
	Update(ctx context.Context, room *Room) error
	Delete(ctx context.Context, userID, id string) error
	ExistsForOwner(ctx context.Context, userID, id string) (bool, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed room repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new room. The ID is generated if empty and the
// default icon is applied when none is set.
func (r *SQLiteRepository) Create(ctx context.Context, room *Room) error {
	if room.ID == "" {
		room.ID = "room-" + uuid.NewString()[:8]
	}
	if room.Icon == "" {
		room.Icon = DefaultIcon
	}

	now := time.Now().UTC().Format(time.RFC3339)
	room.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	room.UpdatedAt = room.CreatedAt

	const query = `INSERT INTO rooms (id, user_id, name, icon, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		room.ID, room.UserID, room.Name, string(room.Icon), now, now)
	if err != nil {
		return fmt.Errorf("inserting room %s: %w", room.ID, err)
	}
	return nil
}

// ListByOwner returns all rooms owned by the account, oldest first.
func (r *SQLiteRepository) ListByOwner(ctx context.Context, userID string) ([]Room, error) {
	const query = `SELECT id, user_id, name, icon, created_at, updated_at
		FROM rooms WHERE user_id = ? ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing rooms: %w", err)
	}
	defer rows.Close()

	var rooms []Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, *rm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rooms: %w", err)
	}

	if rooms == nil {
		rooms = []Room{}
	}
	return rooms, nil
}

// Get returns a single room by ID, scoped to the owner. A room owned
// by another account reads as not found.
func (r *SQLiteRepository) Get(ctx context.Context, userID, id string) (*Room, error) {
	const query = `SELECT id, user_id, name, icon, created_at, updated_at
		FROM rooms WHERE id = ? AND user_id = ?`

	var rm Room
	var icon string
	var createdAt, updatedAt string

	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&rm.ID, &rm.UserID, &rm.Name, &icon, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting room %s: %w", id, err)
	}

	rm.Icon = Icon(icon)
	rm.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	rm.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &rm, nil
}

// Update persists the room's mutable fields, scoped to the owner.
func (r *SQLiteRepository) Update(ctx context.Context, room *Room) error {
	now := time.Now().UTC().Format(time.RFC3339)
	room.UpdatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	const query = `UPDATE rooms SET name = ?, icon = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`
	result, err := r.db.ExecContext(ctx, query,
		room.Name, string(room.Icon), now, room.ID, room.UserID)
	if err != nil {
		return fmt.Errorf("updating room %s: %w", room.ID, err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a room, scoped to the owner. Devices referencing the
// room are left in place; the dashboard surfaces them as unassigned.
func (r *SQLiteRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM rooms WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("deleting room %s: %w", id, err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ExistsForOwner reports whether the room exists and belongs to the account.
func (r *SQLiteRepository) ExistsForOwner(ctx context.Context, userID, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM rooms WHERE id = ? AND user_id = ?", id, userID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("checking room %s: %w", id, err)
	}
	return true, nil
}

// scanRoom scans a room from sql.Rows.
func scanRoom(rows *sql.Rows) (*Room, error) {
	var rm Room
	var icon string
	var createdAt, updatedAt string

	if err := rows.Scan(&rm.ID, &rm.UserID, &rm.Name, &icon, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("scanning room: %w", err)
	}

	rm.Icon = Icon(icon)
	rm.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	rm.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &rm, nil
}
