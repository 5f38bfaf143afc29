// Package room provides the room model for Hearth.
//
// Rooms are flat, account-owned spaces; there is no site or floor
// hierarchy. Each room carries a name and an icon from a closed set.
// Deleting a room never cascades to its devices: the devices keep a
// dangling room reference and surface in the dashboard's unassigned
// group until reassigned.
//
// # Thread Safety
//
// SQLiteRepository is safe for concurrent use from multiple goroutines
// (SQLite WAL mode + connection pooling).
package room
