package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hearthline/hearth-core/internal/webui"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Control panel UI (embedded via go:embed)
	r.Handle("/app/*", http.StripPrefix("/app", webui.Handler(s.webuiCfg.Dir)))
	r.Handle("/app", http.RedirectHandler("/app/", http.StatusMovedPermanently))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints (no auth required)
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/refresh", s.handleRefresh)

		// WebSocket. No bearer auth: browsers cannot set headers on a
		// WebSocket dial, so the handler authenticates via a single-use
		// ticket minted by POST /auth/ws-ticket.
		r.Get("/ws", s.handleWebSocket)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/auth/me", s.handleMe)
			r.Post("/auth/logout", s.handleLogout)

			// WS ticket requires authentication: the ticket binds the
			// WebSocket connection to the caller's account
			r.Post("/auth/ws-ticket", s.handleWSTicket)

			// Room endpoints
			r.Route("/rooms", func(r chi.Router) {
				r.Get("/", s.handleListRooms)
				r.Post("/", s.handleCreateRoom)

				r.Route("/{roomID}", func(r chi.Router) {
					r.Get("/", s.handleGetRoom)
					r.Patch("/", s.handlePatchRoom)
					r.Delete("/", s.handleDeleteRoom)
				})
			})

			// Device endpoints
			r.Route("/devices", func(r chi.Router) {
				r.Get("/", s.handleListDevices)
				r.Post("/", s.handleCreateDevice)

				r.Route("/{deviceID}", func(r chi.Router) {
					r.Get("/", s.handleGetDevice)
					r.Patch("/", s.handlePatchDevice)
					r.Delete("/", s.handleDeleteDevice)
					r.Post("/toggle", s.handleToggleDevice)
				})
			})

			// Composed dashboard view
			r.Get("/dashboard", s.handleDashboard)

			// Audit trail
			r.Get("/audit", s.handleListAuditLogs)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
