package room

import "time"

// Icon identifies the glyph a room is displayed with.
type Icon string

// The closed set of room icons. Anything else is rejected at the edge
// so stored rooms always render.
const (
	IconBed        Icon = "bed"
	IconHouse      Icon = "house"
	IconCookingPot Icon = "cooking-pot"
	IconArmchair   Icon = "armchair"
	IconHome       Icon = "home"
)

// DefaultIcon is applied when a room is created without an icon.
const DefaultIcon = IconHome

// ValidIcons is the set of accepted room icons.
var ValidIcons = []Icon{IconBed, IconHouse, IconCookingPot, IconArmchair, IconHome}

// IsValidIcon returns true if the icon is in the accepted set.
func IsValidIcon(i Icon) bool {
	for _, v := range ValidIcons {
		if i == v {
			return true
		}
	}
	return false
}

// Room represents a named space owned by a single account.
type Room struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Icon      Icon      `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Patch holds the mutable room fields for partial updates.
// Nil fields are left unchanged.
type Patch struct {
	Name *string `json:"name,omitempty"`
	Icon *Icon   `json:"icon,omitempty"`
}
