// Package database provides SQLite persistence for Hearth Core.
//
// It wraps database/sql with lifecycle management, health checks, and a
// versioned migration runner fed by embedded SQL files.
//
// # Configuration
//
//	database:
//	  path: "./data/hearth.db"
//	  wal_mode: true
//	  busy_timeout: 5
//
// # Usage
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true, BusyTimeout: 5})
//	if err != nil { ... }
//	defer db.Close()
//	if err := db.Migrate(ctx); err != nil { ... }
//
// The migrations themselves live in the top-level migrations package, which
// registers its embedded filesystem with this package at init time.
package database
