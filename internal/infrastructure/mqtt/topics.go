package mqtt

import "fmt"

// Topic prefixes for Hearth MQTT traffic.
//
// All topics live under the hearth/ root:
//
//	hearth/system/status                         - client online/offline status (retained)
//	hearth/notifications/{user_id}               - user-facing toast notifications
//	hearth/events/{user_id}/{entity}             - entity-change events (rooms, devices)
const (
	// TopicPrefix is the root for all Hearth topics.
	TopicPrefix = "hearth"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "hearth/system"
)

// Topics provides builders for Hearth MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
type Topics struct{}

// SystemStatus returns the topic for the service's online/offline status.
//
// Example: hearth/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// Notifications returns the per-user notification topic.
//
// Example: hearth/notifications/usr-1a2b3c4d
func (Topics) Notifications(userID string) string {
	return fmt.Sprintf("%s/notifications/%s", TopicPrefix, userID)
}

// Events returns the per-user entity-change topic.
//
// Example: hearth/events/usr-1a2b3c4d/devices
func (Topics) Events(userID, entity string) string {
	return fmt.Sprintf("%s/events/%s/%s", TopicPrefix, userID, entity)
}
