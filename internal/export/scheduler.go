package export

import (
	"context"
	"time"

	"github.com/nerrad567/babycare-core/internal/event"
)

// Scheduled report defaults: one report per day covering the trailing
// thirty days, matching the HTTP export window.
const (
	defaultReportInterval = 24 * time.Hour
	defaultReportWindow   = 30 * 24 * time.Hour
)

// Reader provides the events included in scheduled reports.
// Implemented by event.SQLiteRepository.
type Reader interface {
	GetByRange(ctx context.Context, start, end time.Time) ([]event.Event, error)
}

// Logger is the subset of logging.Logger the scheduler needs.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Scheduler writes a plain text report to the export directory on a
// fixed interval. Report failures are logged and retried on the next
// tick; the durable record stays in SQLite either way.
type Scheduler struct {
	exporter *Exporter
	reader   Reader
	logger   Logger
	interval time.Duration
	window   time.Duration
	now      func() time.Time
}

// NewScheduler creates a daily report scheduler over the given exporter
// and event reader.
func NewScheduler(exporter *Exporter, reader Reader, logger Logger) *Scheduler {
	return &Scheduler{
		exporter: exporter,
		reader:   reader,
		logger:   logger,
		interval: defaultReportInterval,
		window:   defaultReportWindow,
		now:      time.Now,
	}
}

// Run generates reports until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.generate(ctx)
		}
	}
}

// generate writes one report covering the trailing window.
func (s *Scheduler) generate(ctx context.Context) {
	end := s.now()
	start := end.Add(-s.window)

	events, err := s.reader.GetByRange(ctx, start, end)
	if err != nil {
		s.logger.Error("report read failed", "error", err)
		return
	}

	path, err := s.exporter.Save(FormatReport, events)
	if err != nil {
		s.logger.Error("report write failed", "error", err)
		return
	}

	s.logger.Info("daily report written", "path", path, "events", len(events))
}
