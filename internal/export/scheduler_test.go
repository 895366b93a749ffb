package export

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/babycare-core/internal/event"
)

type fakeReader struct {
	events []event.Event
	err    error

	start time.Time
	end   time.Time
}

func (r *fakeReader) GetByRange(_ context.Context, start, end time.Time) ([]event.Event, error) {
	r.start = start
	r.end = end
	if r.err != nil {
		return nil, r.err
	}
	return r.events, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func TestSchedulerGeneratesReport(t *testing.T) {
	dir := t.TempDir()
	x, err := NewExporter(dir)
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}

	reader := &fakeReader{events: sampleEvents()}
	s := NewScheduler(x, reader, nopLogger{})

	now := time.Date(2026, 1, 20, 3, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.generate(context.Background())

	if want := now.Add(-30 * 24 * time.Hour); !reader.start.Equal(want) {
		t.Errorf("window start: got %v, want %v", reader.start, want)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 report, got %d files", len(entries))
	}
	if !strings.HasSuffix(entries[0].Name(), ".txt") {
		t.Errorf("report name: got %q", entries[0].Name())
	}

	data, err := os.ReadFile(dir + "/" + entries[0].Name())
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if !strings.Contains(string(data), "Total Events: 4") {
		t.Errorf("report content: got %q", string(data))
	}
}

func TestSchedulerReadFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	x, err := NewExporter(dir)
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}

	s := NewScheduler(x, &fakeReader{err: errors.New("db locked")}, nopLogger{})
	s.generate(context.Background())

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no report on read failure, got %d files", len(entries))
	}
}

func TestSchedulerRunStopsOnCancel(t *testing.T) {
	x, err := NewExporter(t.TempDir())
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	s := NewScheduler(x, &fakeReader{}, nopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
