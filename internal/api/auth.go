package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hearthline/hearth-core/internal/audit"
	"github.com/hearthline/hearth-core/internal/auth"
)

// credentialsRequest is the body for register and login.
type credentialsRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceInfo string `json:"device_info,omitempty"`
}

// refreshRequest is the body for token refresh and logout.
type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
	DeviceInfo   string `json:"device_info,omitempty"`
}

// handleRegister creates a new account and signs it in.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	session, err := s.sessions.Register(r.Context(), req.Email, req.Password, req.DeviceInfo)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			writeConflict(w, "an account with this email already exists")
		case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword):
			writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
		default:
			s.logger.Error("registration failed", "error", err)
			writeInternalError(w, "registration failed")
		}
		return
	}

	s.auditLog(audit.ActionRegister, "session", "", session.User.ID, map[string]any{
		"email": session.User.Email,
	})

	writeJSON(w, http.StatusCreated, session)
}

// handleLogin authenticates credentials and starts a session.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	session, err := s.sessions.Login(r.Context(), req.Email, req.Password, req.DeviceInfo)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeUnauthorized(w, "invalid email or password")
		case errors.Is(err, auth.ErrUserInactive):
			writeUnauthorized(w, "account is deactivated")
		default:
			s.logger.Error("login failed", "error", err)
			writeInternalError(w, "login failed")
		}
		return
	}

	s.auditLog(audit.ActionLogin, "session", "", session.User.ID, nil)

	writeJSON(w, http.StatusOK, session)
}

// handleRefresh rotates a refresh token and issues a new access token.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.RefreshToken == "" {
		writeBadRequest(w, "refresh_token is required")
		return
	}

	session, err := s.sessions.Refresh(r.Context(), req.RefreshToken, req.DeviceInfo)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenReuse):
			// Token replay: the whole family has been revoked.
			writeUnauthorized(w, "refresh token reuse detected; session revoked")
		case errors.Is(err, auth.ErrTokenExpired),
			errors.Is(err, auth.ErrTokenRevoked),
			errors.Is(err, auth.ErrTokenInvalid):
			writeUnauthorized(w, "invalid or expired refresh token")
		case errors.Is(err, auth.ErrUserInactive):
			writeUnauthorized(w, "account is deactivated")
		default:
			s.logger.Error("token refresh failed", "error", err)
			writeInternalError(w, "token refresh failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// handleLogout ends the session for the presented refresh token.
// Logout is idempotent: an unknown token still returns 204.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	identity := identityFromContext(r.Context())

	if err := s.sessions.Logout(r.Context(), req.RefreshToken); err != nil {
		s.logger.Error("logout failed", "error", err)
		writeInternalError(w, "logout failed")
		return
	}

	if identity != nil {
		s.auditLog(audit.ActionLogout, "session", "", identity.UserID, nil)
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleMe returns the authenticated identity.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"identity": identity,
		"loading":  s.sessions.Loading(),
	})
}

// handleWSTicket generates a single-use WebSocket authentication ticket.
// The client uses this ticket to authenticate the WebSocket connection
// via the ticket query parameter on GET /ws.
func (s *Server) handleWSTicket(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	ticket := s.tickets.issue(identity.UserID)

	writeJSON(w, http.StatusOK, map[string]any{
		"ticket":     ticket,
		"expires_in": int(ticketTTL / time.Second),
	})
}
