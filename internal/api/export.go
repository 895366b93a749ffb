package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/babycare-core/internal/export"
)

// defaultExportDays is the export window when none is requested.
const defaultExportDays = 30

// handleExport streams event history in the requested format.
//
// GET /export?format=csv&days=30
// Formats: csv, json, report.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = export.FormatCSV
	}

	contentType := export.ContentType(format)
	if contentType == "" {
		writeBadRequest(w, "unsupported export format: "+format)
		return
	}

	days := parseIntParam(r, "days", defaultExportDays)
	if days <= 0 {
		days = defaultExportDays
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	events, err := s.events.GetByRange(r.Context(), start, end)
	if err != nil {
		s.logger.Error("export read failed", "error", err)
		writeInternalError(w, "failed to read events for export")
		return
	}

	ext := format
	if format == export.FormatReport {
		ext = "txt"
	}
	filename := fmt.Sprintf("baby_care_export_%s.%s", time.Now().Format("20060102_150405"), ext)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := export.Write(w, format, events); err != nil {
		if errors.Is(err, export.ErrUnsupportedFormat) {
			// Unreachable: format validated above.
			writeBadRequest(w, err.Error())
			return
		}
		// Headers already sent; log and drop the connection.
		s.logger.Error("export write failed", "error", err, "format", format)
	}
}
