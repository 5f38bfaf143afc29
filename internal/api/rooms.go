package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hearthline/hearth-core/internal/audit"
	"github.com/hearthline/hearth-core/internal/room"
)

// roomRequest is the body for creating a room.
type roomRequest struct {
	Name string    `json:"name"`
	Icon room.Icon `json:"icon,omitempty"`
}

// roomPatchRequest is the body for partial room updates. Absent fields
// keep their current values.
type roomPatchRequest struct {
	Name *string    `json:"name,omitempty"`
	Icon *room.Icon `json:"icon,omitempty"`
}

// handleListRooms returns all rooms for the authenticated account.
func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	rooms := s.rooms.GetRooms(r.Context(), identity.UserID)
	writeJSON(w, http.StatusOK, map[string]any{
		"rooms": rooms,
		"count": len(rooms),
	})
}

// handleGetRoom returns a single room by ID.
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	id := chi.URLParam(r, "roomID")

	rm := s.rooms.GetRoom(r.Context(), identity.UserID, id)
	if rm == nil {
		writeNotFound(w, "room not found")
		return
	}
	writeJSON(w, http.StatusOK, rm)
}

// handleCreateRoom adds a new room.
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	rm := s.rooms.AddRoom(r.Context(), identity.UserID, req.Name, req.Icon)
	if rm == nil {
		writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, "room could not be created")
		return
	}

	s.auditLog(audit.ActionCreate, "room", rm.ID, identity.UserID, map[string]any{
		"name": rm.Name,
		"icon": rm.Icon,
	})
	s.broadcastEntityEvent(identity.UserID, ChannelRoomsChanged, "room", map[string]any{
		"action": "created",
		"room":   rm,
	})

	writeJSON(w, http.StatusCreated, rm)
}

// handlePatchRoom applies a partial update to a room.
func (s *Server) handlePatchRoom(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	id := chi.URLParam(r, "roomID")

	if s.rooms.GetRoom(r.Context(), identity.UserID, id) == nil {
		writeNotFound(w, "room not found")
		return
	}

	var req roomPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	ok := s.rooms.UpdateRoom(r.Context(), identity.UserID, id, room.Patch{
		Name: req.Name,
		Icon: req.Icon,
	})
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, "room could not be updated")
		return
	}

	rm := s.rooms.GetRoom(r.Context(), identity.UserID, id)

	s.auditLog(audit.ActionUpdate, "room", id, identity.UserID, nil)
	s.broadcastEntityEvent(identity.UserID, ChannelRoomsChanged, "room", map[string]any{
		"action": "updated",
		"room":   rm,
	})

	writeJSON(w, http.StatusOK, rm)
}

// handleDeleteRoom removes a room. Devices assigned to it are kept and
// show up in the dashboard's unassigned group.
func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	id := chi.URLParam(r, "roomID")

	if s.rooms.GetRoom(r.Context(), identity.UserID, id) == nil {
		writeNotFound(w, "room not found")
		return
	}

	ok, orphaned := s.rooms.DeleteRoom(r.Context(), identity.UserID, id)
	if !ok {
		writeInternalError(w, "room could not be deleted")
		return
	}

	s.auditLog(audit.ActionDelete, "room", id, identity.UserID, map[string]any{
		"orphaned_devices": orphaned,
	})
	s.broadcastEntityEvent(identity.UserID, ChannelRoomsChanged, "room", map[string]any{
		"action":           "deleted",
		"room_id":          id,
		"orphaned_devices": orphaned,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"deleted":          true,
		"orphaned_devices": orphaned,
	})
}
