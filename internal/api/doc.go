// Package api implements the HTTP REST API and WebSocket server for Hearth.
//
// This package provides:
//   - REST endpoints for session, room, device, dashboard, and audit operations
//   - WebSocket hub for per-user notifications and entity change events
//   - JWT authentication with ticket-based WebSocket auth
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//   - TLS support for production deployments
//
// # Architecture
//
// The API server sits between the control panel UI and the domain
// services. Mutations flow through the room, device, and session
// services; successful changes are broadcast to the owning user's
// WebSocket clients and optionally mirrored to MQTT event topics.
//
// # Security
//
// Authentication uses short-lived JWT access tokens backed by rotating
// refresh token families. WebSocket connections use single-use tickets
// bound to the requesting account to prevent token leakage in URLs.
//
// # Graceful Degradation
//
// The server operates without MQTT and without the audit repository:
// events then flow over WebSocket only, and the audit trail endpoint
// reports that it is not configured.
package api
