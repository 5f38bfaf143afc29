package notify

import (
	"context"
	"encoding/json"

	"github.com/hearthline/hearth-core/internal/infrastructure/logging"
	"github.com/hearthline/hearth-core/internal/infrastructure/mqtt"
)

// Broadcaster pushes a payload to all connections belonging to a user.
// The WebSocket hub implements this.
type Broadcaster interface {
	BroadcastToUser(userID string, payload []byte)
}

// BroadcastNotifier delivers notifications over a Broadcaster as JSON
// envelopes with type "notification".
type BroadcastNotifier struct {
	broadcaster Broadcaster
	logger      *logging.Logger
}

// NewBroadcastNotifier creates a notifier backed by a Broadcaster.
func NewBroadcastNotifier(b Broadcaster, logger *logging.Logger) *BroadcastNotifier {
	return &BroadcastNotifier{broadcaster: b, logger: logger}
}

func (n *BroadcastNotifier) Success(_ context.Context, userID, message string) {
	n.send(newNotification(userID, LevelSuccess, message))
}

func (n *BroadcastNotifier) Failure(_ context.Context, userID, message string) {
	n.send(newNotification(userID, LevelError, message))
}

func (n *BroadcastNotifier) send(ntf Notification) {
	envelope := struct {
		Type string       `json:"type"`
		Data Notification `json:"data"`
	}{Type: "notification", Data: ntf}

	payload, err := json.Marshal(envelope)
	if err != nil {
		n.logger.Error("marshaling notification", "error", err)
		return
	}
	n.broadcaster.BroadcastToUser(ntf.UserID, payload)
}

// MQTTNotifier publishes notifications to the per-user notification topic.
type MQTTNotifier struct {
	client *mqtt.Client
	logger *logging.Logger
	topics mqtt.Topics
}

// NewMQTTNotifier creates a notifier that publishes over MQTT.
func NewMQTTNotifier(client *mqtt.Client, logger *logging.Logger) *MQTTNotifier {
	return &MQTTNotifier{client: client, logger: logger}
}

func (n *MQTTNotifier) Success(_ context.Context, userID, message string) {
	n.publish(newNotification(userID, LevelSuccess, message))
}

func (n *MQTTNotifier) Failure(_ context.Context, userID, message string) {
	n.publish(newNotification(userID, LevelError, message))
}

func (n *MQTTNotifier) publish(ntf Notification) {
	if !n.client.IsConnected() {
		return
	}
	payload, err := json.Marshal(ntf)
	if err != nil {
		n.logger.Error("marshaling notification", "error", err)
		return
	}
	if err := n.client.PublishJSON(n.topics.Notifications(ntf.UserID), payload); err != nil {
		n.logger.Warn("publishing notification", "error", err, "user_id", ntf.UserID)
	}
}

// LogNotifier writes notifications to the structured log. It is the
// fallback sink so every notification leaves a trace even with no
// client connected.
type LogNotifier struct {
	logger *logging.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Success(_ context.Context, userID, message string) {
	n.logger.Info("notification", "notification_level", LevelSuccess, "user_id", userID, "message", message)
}

func (n *LogNotifier) Failure(_ context.Context, userID, message string) {
	n.logger.Warn("notification", "notification_level", LevelError, "user_id", userID, "message", message)
}

// Multi fans a notification out to several sinks.
type Multi struct {
	sinks []Notifier
}

// NewMulti creates a notifier that forwards to every given sink.
// Nil sinks are skipped.
func NewMulti(sinks ...Notifier) *Multi {
	m := &Multi{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

func (m *Multi) Success(ctx context.Context, userID, message string) {
	for _, s := range m.sinks {
		s.Success(ctx, userID, message)
	}
}

func (m *Multi) Failure(ctx context.Context, userID, message string) {
	for _, s := range m.sinks {
		s.Failure(ctx, userID, message)
	}
}

// Noop discards all notifications. Used in tests.
type Noop struct{}

func (Noop) Success(context.Context, string, string) {}
func (Noop) Failure(context.Context, string, string) {}
