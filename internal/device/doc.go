// Package device provides the switchable device model for Hearth.
//
// Devices are account-owned appliances with a name, an icon from a
// closed set, an on/off state, and a reference to the room they live
// in. The room reference is validated against ownership at write time
// but carries no foreign key: a deleted room leaves its devices with a
// dangling reference, which the dashboard groups as unassigned.
//
// # Thread Safety
//
// SQLiteRepository is safe for concurrent use from multiple goroutines
// (SQLite WAL mode + connection pooling). Toggle flips state in a
// single UPDATE so concurrent flips serialize instead of clobbering.
package device
