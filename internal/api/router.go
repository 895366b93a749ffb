package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
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

	// API v1 routes. Authentication is handled upstream by Home
	// Assistant ingress, so no auth middleware here.
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/version", s.handleVersion)

		// Event endpoints
		r.Route("/events", func(r chi.Router) {
			r.Get("/", s.handleListEvents)
			r.Post("/", s.handleCreateEvent)
			r.Get("/types", s.handleListEventTypes)

			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", s.handleUpdateEvent)
				r.Delete("/", s.handleDeleteEvent)
			})
		})

		// Device mapping endpoints
		r.Route("/mappings", func(r chi.Router) {
			r.Get("/", s.handleListMappings)
			r.Post("/", s.handleCreateMapping)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetMapping)
				r.Patch("/", s.handleSetMappingEnabled)
				r.Delete("/", s.handleDeleteMapping)
			})
		})

		// Analytics endpoints
		r.Route("/analytics", func(r chi.Router) {
			r.Get("/feeding", s.handleFeedingAnalytics)
			r.Get("/sleep", s.handleSleepAnalytics)
			r.Get("/diaper", s.handleDiaperAnalytics)
			r.Get("/snapshot", s.handleAnalyticsSnapshot)
		})

		// Stats endpoints
		r.Route("/stats", func(r chi.Router) {
			r.Get("/daily", s.handleDailyStats)
			r.Get("/weekly", s.handleWeeklyStats)
			r.Get("/live", s.handleLiveStats)
		})

		// Data export
		r.Get("/export", s.handleExport)

		// WebSocket live updates
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// healthCheckTimeout bounds the component probes inside the health handler.
const healthCheckTimeout = 5 * time.Second

// handleHealth reports the server and component health.
//
// GET /health
// Response: {"status": "ok", "version": "...", "components": {...}}
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	components := map[string]string{}
	status := "ok"

	if s.database != nil {
		if err := s.database.HealthCheck(ctx); err != nil {
			components["database"] = err.Error()
			status = "degraded"
		} else {
			components["database"] = "ok"
		}
	}

	if s.mqtt != nil {
		if s.mqtt.IsConnected() {
			components["mqtt"] = "ok"
		} else {
			// The connector reconnects on its own; report but stay up.
			components["mqtt"] = "disconnected"
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     status,
		"version":    s.version,
		"components": components,
	})
}

// handleVersion returns the application version.
//
// GET /version
func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"version": s.version,
	})
}
