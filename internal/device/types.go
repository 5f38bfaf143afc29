package device

import "time"

// Icon identifies the glyph a device is displayed with.
type Icon string

// The closed set of device icons. Anything else is rejected at the
// edge so stored devices always render.
const (
	IconBulb           Icon = "bulb"
	IconFan            Icon = "fan"
	IconTV             Icon = "tv"
	IconFridge         Icon = "fridge"
	IconOven           Icon = "oven"
	IconWashingMachine Icon = "washing-machine"
	IconAirVent        Icon = "air-vent"
	IconSquare         Icon = "square"
)

// DefaultIcon is applied when a device is created without an icon.
const DefaultIcon = IconSquare

// ValidIcons is the set of accepted device icons.
var ValidIcons = []Icon{
	IconBulb, IconFan, IconTV, IconFridge,
	IconOven, IconWashingMachine, IconAirVent, IconSquare,
}

// IsValidIcon returns true if the icon is in the accepted set.
func IsValidIcon(i Icon) bool {
	for _, v := range ValidIcons {
		if i == v {
			return true
		}
	}
	return false
}

// Device represents a switchable appliance owned by a single account.
// RoomID may reference a room that no longer exists; such devices are
// grouped by the dashboard under the unassigned bucket.
type Device struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	RoomID    string    `json:"room_id"`
	Name      string    `json:"name"`
	Icon      Icon      `json:"icon"`
	IsOn      bool      `json:"is_on"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Patch holds the mutable device fields for partial updates.
// Nil fields are left unchanged.
type Patch struct {
	Name   *string `json:"name,omitempty"`
	Icon   *Icon   `json:"icon,omitempty"`
	RoomID *string `json:"room_id,omitempty"`
}
