package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/babycare-core/internal/event"
)

// handleListEvents returns events matching the query filters.
//
// GET /events?type=sleep_start&start=2026-01-01T00:00:00Z&end=...&limit=50&offset=0
// Response: {"events": [...], "count": 2}
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	f := event.Filter{
		Type: r.URL.Query().Get("type"),
	}

	if f.Type != "" && !event.ValidType(f.Type) {
		writeBadRequest(w, "unknown event type: "+f.Type)
		return
	}

	var err error
	if f.Start, err = parseTimeParam(r, "start"); err != nil {
		writeBadRequest(w, "invalid start time (want RFC3339)")
		return
	}
	if f.End, err = parseTimeParam(r, "end"); err != nil {
		writeBadRequest(w, "invalid end time (want RFC3339)")
		return
	}
	f.Limit = parseIntParam(r, "limit", 0)
	f.Offset = parseIntParam(r, "offset", 0)

	events, err := s.events.Get(r.Context(), f)
	if err != nil {
		s.logger.Error("failed to list events", "error", err)
		writeInternalError(w, "failed to list events")
		return
	}
	if events == nil {
		events = []event.Event{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"count":  len(events),
	})
}

// handleCreateEvent records a manual event.
//
// POST /events
// Body: {"event_type": "sleep_start", "occurred_at": "...", "notes": "...", "duration_minutes": 20}
// Response: {"id": 42}
func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type            string     `json:"event_type"`
		OccurredAt      *time.Time `json:"occurred_at"`
		DurationMinutes *int       `json:"duration_minutes"`
		Notes           string     `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if !event.ValidType(body.Type) {
		writeBadRequest(w, "unknown event type: "+body.Type)
		return
	}

	newEvent := event.NewEvent{
		Type:            body.Type,
		DurationMinutes: body.DurationMinutes,
		Notes:           body.Notes,
	}
	if body.OccurredAt != nil {
		newEvent.OccurredAt = *body.OccurredAt
	}

	id, err := s.events.Add(r.Context(), newEvent)
	if err != nil {
		s.logger.Error("failed to create event", "error", err, "event_type", body.Type)
		writeInternalError(w, "failed to create event")
		return
	}

	s.logger.Info("manual event recorded", "event_type", body.Type, "event_id", id)
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

// handleUpdateEvent edits an event's duration or notes.
//
// PATCH /events/{id}
// Body: {"duration_minutes": 25, "notes": "fell asleep in pram"}
func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "invalid event id")
		return
	}

	var body struct {
		DurationMinutes *int    `json:"duration_minutes"`
		Notes           *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if body.DurationMinutes == nil && body.Notes == nil {
		writeBadRequest(w, "nothing to update")
		return
	}

	err = s.events.Update(r.Context(), id, event.Update{
		DurationMinutes: body.DurationMinutes,
		Notes:           body.Notes,
	})
	if errors.Is(err, event.ErrNotFound) {
		writeNotFound(w, "event not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to update event", "error", err, "event_id", id)
		writeInternalError(w, "failed to update event")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"id": id, "updated": true})
}

// handleDeleteEvent removes an event.
//
// DELETE /events/{id}
func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "invalid event id")
		return
	}

	err = s.events.Delete(r.Context(), id)
	if errors.Is(err, event.ErrNotFound) {
		writeNotFound(w, "event not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to delete event", "error", err, "event_id", id)
		writeInternalError(w, "failed to delete event")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleListEventTypes returns the baby care action vocabulary.
//
// GET /events/types
func (s *Server) handleListEventTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"types": event.Types,
	})
}

// parseTimeParam parses an RFC3339 query parameter, nil when absent.
func parseTimeParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseIntParam parses an integer query parameter, falling back on the
// default for absent or malformed values.
func parseIntParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// parseID parses a URL path id segment.
func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
