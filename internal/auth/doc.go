// Package auth provides authentication and session management for Hearth.
//
// It implements email/password accounts with:
//   - Argon2id password hashing (OWASP 2025 recommendation)
//   - JWT access/refresh token rotation with family-based theft detection
//   - A session manager that tracks the active identity and fans
//     identity changes out to subscribers
//
// Every account owns its rooms and devices outright; there is no role
// hierarchy or cross-account sharing.
package auth
