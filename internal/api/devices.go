package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hearthline/hearth-core/internal/audit"
	"github.com/hearthline/hearth-core/internal/device"
)

// deviceRequest is the body for creating a device.
type deviceRequest struct {
	Name   string      `json:"name"`
	Icon   device.Icon `json:"icon,omitempty"`
	RoomID string      `json:"room_id"`
}

// devicePatchRequest is the body for partial device updates. Absent
// fields keep their current values.
type devicePatchRequest struct {
	Name   *string      `json:"name,omitempty"`
	Icon   *device.Icon `json:"icon,omitempty"`
	RoomID *string      `json:"room_id,omitempty"`
}

// handleListDevices returns devices for the authenticated account,
// optionally filtered by room via the room_id query parameter.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	var devices []device.Device
	if roomID := r.URL.Query().Get("room_id"); roomID != "" {
		devices = s.devices.GetDevicesByRoom(r.Context(), identity.UserID, roomID)
	} else {
		devices = s.devices.GetDevices(r.Context(), identity.UserID)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

// handleGetDevice returns a single device by ID.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	id := chi.URLParam(r, "deviceID")

	dev := s.devices.GetDevice(r.Context(), identity.UserID, id)
	if dev == nil {
		writeNotFound(w, "device not found")
		return
	}
	writeJSON(w, http.StatusOK, dev)
}

// handleCreateDevice adds a new device to a room.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	dev := s.devices.AddDevice(r.Context(), identity.UserID, req.Name, req.Icon, req.RoomID)
	if dev == nil {
		writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, "device could not be created")
		return
	}

	s.auditLog(audit.ActionCreate, "device", dev.ID, identity.UserID, map[string]any{
		"name":    dev.Name,
		"icon":    dev.Icon,
		"room_id": dev.RoomID,
	})
	s.broadcastEntityEvent(identity.UserID, ChannelDevicesChanged, "device", map[string]any{
		"action": "created",
		"device": dev,
	})

	writeJSON(w, http.StatusCreated, dev)
}

// handlePatchDevice applies a partial update to a device.
func (s *Server) handlePatchDevice(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	id := chi.URLParam(r, "deviceID")

	if s.devices.GetDevice(r.Context(), identity.UserID, id) == nil {
		writeNotFound(w, "device not found")
		return
	}

	var req devicePatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	ok := s.devices.UpdateDevice(r.Context(), identity.UserID, id, device.Patch{
		Name:   req.Name,
		Icon:   req.Icon,
		RoomID: req.RoomID,
	})
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, "device could not be updated")
		return
	}

	dev := s.devices.GetDevice(r.Context(), identity.UserID, id)

	s.auditLog(audit.ActionUpdate, "device", id, identity.UserID, nil)
	s.broadcastEntityEvent(identity.UserID, ChannelDevicesChanged, "device", map[string]any{
		"action": "updated",
		"device": dev,
	})

	writeJSON(w, http.StatusOK, dev)
}

// handleDeleteDevice removes a device.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	id := chi.URLParam(r, "deviceID")

	if s.devices.GetDevice(r.Context(), identity.UserID, id) == nil {
		writeNotFound(w, "device not found")
		return
	}

	if !s.devices.DeleteDevice(r.Context(), identity.UserID, id) {
		writeInternalError(w, "device could not be deleted")
		return
	}

	s.auditLog(audit.ActionDelete, "device", id, identity.UserID, nil)
	s.broadcastEntityEvent(identity.UserID, ChannelDevicesChanged, "device", map[string]any{
		"action":    "deleted",
		"device_id": id,
	})

	w.WriteHeader(http.StatusNoContent)
}

// toggleRequest carries the target power state for a device.
type toggleRequest struct {
	IsOn bool `json:"is_on"`
}

// handleToggleDevice sets a device's power state and returns the new
// state. Requesting the current state again is a no-op.
func (s *Server) handleToggleDevice(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	id := chi.URLParam(r, "deviceID")

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	dev, ok := s.devices.ToggleDevice(r.Context(), identity.UserID, id, req.IsOn)
	if !ok {
		writeNotFound(w, "device not found")
		return
	}

	s.auditLog(audit.ActionToggle, "device", id, identity.UserID, map[string]any{
		"is_on": dev.IsOn,
	})
	s.broadcastEntityEvent(identity.UserID, ChannelDeviceState, "device", map[string]any{
		"device_id": dev.ID,
		"room_id":   dev.RoomID,
		"is_on":     dev.IsOn,
	})

	writeJSON(w, http.StatusOK, dev)
}
