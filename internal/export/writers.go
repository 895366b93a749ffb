package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/nerrad567/babycare-core/internal/event"
)

// Export formats accepted by Write and the Exporter.
const (
	FormatCSV    = "csv"
	FormatJSON   = "json"
	FormatReport = "report"
)

// Write renders events in the requested format.
//
// Parameters:
//   - w: Destination stream
//   - format: One of FormatCSV, FormatJSON, FormatReport
//   - events: The events to render
//
// Returns:
//   - error: ErrUnsupportedFormat for unknown formats, or a write failure
func Write(w io.Writer, format string, events []event.Event) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, events)
	case FormatJSON:
		return WriteJSON(w, events)
	case FormatReport:
		return WriteReport(w, events)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ContentType returns the MIME type for a format, or empty for unknown
// formats.
func ContentType(format string) string {
	switch format {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	case FormatReport:
		return "text/plain; charset=utf-8"
	default:
		return ""
	}
}

// WriteCSV renders events as CSV with a header row.
func WriteCSV(w io.Writer, events []event.Event) error {
	cw := csv.NewWriter(w)

	header := []string{"id", "event_type", "occurred_at", "duration_minutes", "notes", "device_source"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, e := range events {
		duration := ""
		if e.DurationMinutes != nil {
			duration = strconv.Itoa(*e.DurationMinutes)
		}

		record := []string{
			strconv.FormatInt(e.ID, 10),
			e.Type,
			e.OccurredAt.UTC().Format(time.RFC3339),
			duration,
			e.Notes,
			e.DeviceSource,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// jsonExport is the JSON export envelope: the events plus a category
// summary, mirroring the shape consumers of the add-on already parse.
type jsonExport struct {
	ExportTimestamp time.Time     `json:"export_timestamp"`
	TotalEvents     int           `json:"total_events"`
	Events          []event.Event `json:"events"`
	Summary         jsonSummary   `json:"summary"`
}

type jsonSummary struct {
	FeedingEvents int `json:"feeding_events"`
	SleepEvents   int `json:"sleep_events"`
	DiaperEvents  int `json:"diaper_events"`
}

// WriteJSON renders events as a JSON document with a summary block.
func WriteJSON(w io.Writer, events []event.Event) error {
	doc := jsonExport{
		ExportTimestamp: time.Now().UTC(),
		TotalEvents:     len(events),
		Events:          events,
	}
	if doc.Events == nil {
		doc.Events = []event.Event{}
	}

	for _, e := range events {
		switch {
		case isFeedingType(e.Type):
			doc.Summary.FeedingEvents++
		case e.Type == event.TypeSleepStart || e.Type == event.TypeWakeUp:
			doc.Summary.SleepEvents++
		case isDiaperType(e.Type):
			doc.Summary.DiaperEvents++
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteReport renders a plain text summary report with the most recent
// events listed newest first.
func WriteReport(w io.Writer, events []event.Event) error {
	var feeding, sleep, diaper int
	for _, e := range events {
		switch {
		case isFeedingType(e.Type):
			feeding++
		case e.Type == event.TypeSleepStart || e.Type == event.TypeWakeUp:
			sleep++
		case isDiaperType(e.Type):
			diaper++
		}
	}

	recent := make([]event.Event, len(events))
	copy(recent, events)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].OccurredAt.After(recent[j].OccurredAt)
	})
	if len(recent) > 20 {
		recent = recent[:20]
	}

	var b []byte
	b = fmt.Appendf(b, "Baby Care Tracker Report\n")
	b = fmt.Appendf(b, "==============================\n\n")
	b = fmt.Appendf(b, "Generated: %s\n", time.Now().UTC().Format("2006-01-02 15:04:05"))
	b = fmt.Appendf(b, "Total Events: %d\n\n", len(events))
	b = fmt.Appendf(b, "Summary:\n")
	b = fmt.Appendf(b, "- Feeding Events: %d\n", feeding)
	b = fmt.Appendf(b, "- Sleep Events: %d\n", sleep)
	b = fmt.Appendf(b, "- Diaper Changes: %d\n\n", diaper)
	b = fmt.Appendf(b, "Recent Events:\n")
	for _, e := range recent {
		b = fmt.Appendf(b, "- %s: %s\n", e.OccurredAt.UTC().Format(time.RFC3339), e.Type)
	}

	_, err := w.Write(b)
	return err
}

func isFeedingType(t string) bool {
	return t == event.TypeFeedingStartLeft ||
		t == event.TypeFeedingStartRight ||
		t == event.TypeFeedingStop
}

func isDiaperType(t string) bool {
	return t == event.TypeDiaperPee ||
		t == event.TypeDiaperPoo ||
		t == event.TypeDiaperBoth
}
