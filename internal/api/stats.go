package api

import (
	"net/http"
	"time"
)

// handleFeedingAnalytics returns feeding statistics.
//
// GET /analytics/feeding?days=30
func (s *Server) handleFeedingAnalytics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.analytics.Feeding(r.Context(), parseIntParam(r, "days", 0))
	if err != nil {
		s.logger.Error("feeding analytics failed", "error", err)
		writeInternalError(w, "failed to compute feeding analytics")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleSleepAnalytics returns sleep statistics.
//
// GET /analytics/sleep?days=30
func (s *Server) handleSleepAnalytics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.analytics.Sleep(r.Context(), parseIntParam(r, "days", 0))
	if err != nil {
		s.logger.Error("sleep analytics failed", "error", err)
		writeInternalError(w, "failed to compute sleep analytics")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleDiaperAnalytics returns diaper statistics.
//
// GET /analytics/diaper?days=30
func (s *Server) handleDiaperAnalytics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.analytics.Diaper(r.Context(), parseIntParam(r, "days", 0))
	if err != nil {
		s.logger.Error("diaper analytics failed", "error", err)
		writeInternalError(w, "failed to compute diaper analytics")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleAnalyticsSnapshot returns every metric in one response.
// Individual metric failures degrade to zero values and are listed in
// the failed field rather than failing the whole request.
//
// GET /analytics/snapshot?days=30
func (s *Server) handleAnalyticsSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.analytics.Snapshot(r.Context(), parseIntParam(r, "days", 0))
	if len(snap.Failed) > 0 {
		s.logger.Warn("analytics snapshot partially failed", "failed", snap.Failed)
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleDailyStats returns the summary for one calendar day.
//
// GET /stats/daily?date=2026-01-15 (defaults to today)
func (s *Server) handleDailyStats(w http.ResponseWriter, r *http.Request) {
	var date time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeBadRequest(w, "invalid date (want YYYY-MM-DD)")
			return
		}
		date = parsed
	}

	stats, err := s.analytics.Daily(r.Context(), date)
	if err != nil {
		s.logger.Error("daily stats failed", "error", err)
		writeInternalError(w, "failed to compute daily stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleWeeklyStats returns totals and a per-day breakdown.
//
// GET /stats/weekly?weeks=1
func (s *Server) handleWeeklyStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.analytics.Weekly(r.Context(), parseIntParam(r, "weeks", 1))
	if err != nil {
		s.logger.Error("weekly stats failed", "error", err)
		writeInternalError(w, "failed to compute weekly stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleLiveStats returns the real-time dashboard view.
//
// GET /stats/live
func (s *Server) handleLiveStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.analytics.Live(r.Context())
	if err != nil {
		s.logger.Error("live stats failed", "error", err)
		writeInternalError(w, "failed to compute live stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
