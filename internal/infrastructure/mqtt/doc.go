// Package mqtt provides an optional outbound MQTT client for Hearth Core.
//
// When enabled, Hearth publishes user notifications, entity-change events,
// and its own online/offline status to a broker so external panels and
// integrations can react without polling the HTTP API. Hearth never
// subscribes: there is no inbound command surface over MQTT.
//
// # Topics
//
//	hearth/system/status               - online/offline status (retained, with LWT)
//	hearth/notifications/{user_id}     - user-facing notifications
//	hearth/events/{user_id}/{entity}   - room/device change events
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil { ... }
//	defer client.Close()
//
//	topic := mqtt.Topics{}.Notifications(userID)
//	client.PublishJSON(topic, payload)
package mqtt
