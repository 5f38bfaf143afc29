// Package notify delivers short user-facing messages about operation
// outcomes ("Room created", "Failed to toggle device").
//
// Notifications are transient: they fan out to the active transports
// (WebSocket hub, MQTT) and the structured log, and are gone. Failed
// operations notify and still return their error; callers decide what
// the failure means for control flow.
package notify
