package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// boolToState converts an on/off flag to a numeric field value so the
// series can be graphed and aggregated.
func boolToState(on bool) int {
	if on {
		return 1
	}
	return 0
}

// WriteDeviceState records a device power transition.
//
// The write is non-blocking; data is batched and sent asynchronously.
// Room may be empty when the device references a room that no longer
// exists.
//
// Example:
//
//	client.WriteDeviceState("dev-3f2a91c4", "rm-7b01d2ee", "usr-a1b2c3d4", true)
func (c *Client) WriteDeviceState(deviceID, roomID, userID string, isOn bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_state",
		map[string]string{
			"device_id": deviceID,
			"room_id":   roomID,
			"user_id":   userID,
		},
		map[string]interface{}{
			"state": boolToState(isOn),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteEntityEvent records a create, update, or delete of a room or device.
//
// Used for auditing activity over time; the entity payload itself lives
// in SQLite, only the event is recorded here.
func (c *Client) WriteEntityEvent(entityType, entityID, userID, action string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"entity_events",
		map[string]string{
			"entity_type": entityType,
			"user_id":     userID,
			"action":      action,
		},
		map[string]interface{}{
			"entity_id": entityID,
			"count":     1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that do not fit the helper methods.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., backfilled data).
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
