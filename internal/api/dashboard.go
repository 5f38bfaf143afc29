package api

import (
	"net/http"
)

// handleDashboard returns the composed view of rooms with their devices,
// including the unassigned group and aggregate counts.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	view, err := s.dashboard.Compose(r.Context(), identity.UserID)
	if err != nil {
		s.logger.Error("dashboard composition failed", "error", err, "user_id", identity.UserID)
		writeInternalError(w, "failed to compose dashboard")
		return
	}

	writeJSON(w, http.StatusOK, view)
}
