package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Level classifies a user-facing notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a short user-facing message produced by an operation
// outcome. It is transported to whatever the user is watching (WebSocket,
// MQTT) and logged; it is not persisted.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier delivers user-facing notifications. Implementations are
// fire-and-forget: delivery failures are logged, never returned, so an
// unreachable notification channel cannot fail the operation that
// produced the message.
type Notifier interface {
	Success(ctx context.Context, userID, message string)
	Failure(ctx context.Context, userID, message string)
}

// newNotification builds a notification with a fresh ID and timestamp.
func newNotification(userID string, level Level, message string) Notification {
	return Notification{
		ID:        "ntf-" + uuid.NewString()[:8],
		UserID:    userID,
		Level:     level,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
}
