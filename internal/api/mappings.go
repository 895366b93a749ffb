package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/babycare-core/internal/event"
	"github.com/nerrad567/babycare-core/internal/mapping"
)

// handleListMappings returns device mappings.
//
// GET /mappings?enabled=true
// Response: {"mappings": [...], "count": 3}
func (s *Server) handleListMappings(w http.ResponseWriter, r *http.Request) {
	enabledOnly := r.URL.Query().Get("enabled") == "true"

	mappings, err := s.mappings.GetAll(r.Context(), enabledOnly)
	if err != nil {
		s.logger.Error("failed to list mappings", "error", err)
		writeInternalError(w, "failed to list mappings")
		return
	}
	if mappings == nil {
		mappings = []mapping.Mapping{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"mappings": mappings,
		"count":    len(mappings),
	})
}

// handleCreateMapping registers a device trigger mapping.
//
// POST /mappings
// Body: {"device_id": "zigbee2mqtt_front_door_button", "trigger_type": "action_single",
//
//	"baby_care_action": "sleep_start", "device_name": "Nursery button"}
//
// Response: {"id": 7}
func (s *Server) handleCreateMapping(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DeviceID    string `json:"device_id"`
		DeviceName  string `json:"device_name"`
		TriggerType string `json:"trigger_type"`
		Action      string `json:"baby_care_action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if body.DeviceID == "" || body.TriggerType == "" {
		writeBadRequest(w, "device_id and trigger_type are required")
		return
	}
	if !event.ValidType(body.Action) {
		writeBadRequest(w, "unknown baby care action: "+body.Action)
		return
	}

	id, err := s.mappings.Add(r.Context(), mapping.NewMapping{
		DeviceID:    body.DeviceID,
		DeviceName:  body.DeviceName,
		TriggerType: body.TriggerType,
		Action:      body.Action,
	})
	if err != nil {
		s.logger.Error("failed to create mapping", "error", err, "device_id", body.DeviceID)
		writeInternalError(w, "failed to create mapping")
		return
	}

	s.logger.Info("mapping created",
		"mapping_id", id,
		"device_id", body.DeviceID,
		"trigger_type", body.TriggerType,
		"baby_care_action", body.Action,
	)
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

// handleGetMapping returns one mapping.
//
// GET /mappings/{id}
func (s *Server) handleGetMapping(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "invalid mapping id")
		return
	}

	m, err := s.mappings.Get(r.Context(), id)
	if errors.Is(err, mapping.ErrNotFound) {
		writeNotFound(w, "mapping not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to get mapping", "error", err, "mapping_id", id)
		writeInternalError(w, "failed to get mapping")
		return
	}

	writeJSON(w, http.StatusOK, m)
}

// handleSetMappingEnabled enables or disables a mapping.
//
// PATCH /mappings/{id}
// Body: {"enabled": false}
func (s *Server) handleSetMappingEnabled(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "invalid mapping id")
		return
	}

	var body struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Enabled == nil {
		writeBadRequest(w, "enabled field is required")
		return
	}

	err = s.mappings.SetEnabled(r.Context(), id, *body.Enabled)
	if errors.Is(err, mapping.ErrNotFound) {
		writeNotFound(w, "mapping not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to update mapping", "error", err, "mapping_id", id)
		writeInternalError(w, "failed to update mapping")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"id": id, "enabled": *body.Enabled})
}

// handleDeleteMapping removes a mapping.
//
// DELETE /mappings/{id}
func (s *Server) handleDeleteMapping(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "invalid mapping id")
		return
	}

	err = s.mappings.Delete(r.Context(), id)
	if errors.Is(err, mapping.ErrNotFound) {
		writeNotFound(w, "mapping not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to delete mapping", "error", err, "mapping_id", id)
		writeInternalError(w, "failed to delete mapping")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
