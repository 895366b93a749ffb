package analytics

import (
	"testing"
	"time"

	"github.com/nerrad567/babycare-core/internal/event"
)

// ev builds a bare event for pattern and session tests.
func ev(eventType string, at time.Time) event.Event {
	return event.Event{Type: eventType, OccurredAt: at}
}

func TestSleepSessionsPairsStartAndWake(t *testing.T) {
	start := time.Date(2026, 1, 15, 20, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 16, 6, 0, 0, 0, time.UTC)

	sessions := sleepSessions([]event.Event{
		ev(event.TypeSleepStart, start),
		ev(event.TypeWakeUp, end),
	})

	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}

	s := sessions[0]
	if s.DurationHours != 10.0 {
		t.Errorf("duration: got %v, want 10.0", s.DurationHours)
	}
	if s.StartHour != 20 {
		t.Errorf("start hour: got %d, want 20", s.StartHour)
	}
	if !s.IsNightSleep {
		t.Error("20:00 to 06:00 should classify as night sleep")
	}
}

func TestSleepSessionsSecondStartReplacesOpen(t *testing.T) {
	base := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	sessions := sleepSessions([]event.Event{
		ev(event.TypeSleepStart, base),
		ev(event.TypeSleepStart, base.Add(time.Hour)),
		ev(event.TypeWakeUp, base.Add(3*time.Hour)),
	})

	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	// The later start wins; the first is treated as noise.
	if sessions[0].DurationHours != 2.0 {
		t.Errorf("duration: got %v, want 2.0", sessions[0].DurationHours)
	}
}

func TestSleepSessionsLoneWakeUpIgnored(t *testing.T) {
	sessions := sleepSessions([]event.Event{
		ev(event.TypeWakeUp, time.Date(2026, 1, 15, 7, 0, 0, 0, time.UTC)),
	})

	if len(sessions) != 0 {
		t.Errorf("expected no sessions, got %d", len(sessions))
	}
}

func TestSleepSessionsTrailingOpenStartDropped(t *testing.T) {
	base := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

	sessions := sleepSessions([]event.Event{
		ev(event.TypeSleepStart, base),
		ev(event.TypeWakeUp, base.Add(time.Hour)),
		ev(event.TypeSleepStart, base.Add(4*time.Hour)),
	})

	if len(sessions) != 1 {
		t.Fatalf("expected 1 completed session, got %d", len(sessions))
	}
}

func TestSleepSessionsSortsOutOfOrderInput(t *testing.T) {
	start := time.Date(2026, 1, 15, 13, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)

	// Wake delivered before start, as a store query might return them.
	sessions := sleepSessions([]event.Event{
		ev(event.TypeWakeUp, end),
		ev(event.TypeSleepStart, start),
	})

	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	if sessions[0].DurationHours != 1.5 {
		t.Errorf("duration: got %v, want 1.5", sessions[0].DurationHours)
	}
	if sessions[0].IsNightSleep {
		t.Error("midday nap should not classify as night sleep")
	}
}

func TestIsNightSleep(t *testing.T) {
	day := func(hour int) time.Time {
		return time.Date(2026, 1, 15, hour, 0, 0, 0, time.UTC)
	}
	next := func(hour int) time.Time {
		return time.Date(2026, 1, 16, hour, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  bool
	}{
		{"evening to morning", day(19), next(6), true},
		{"after midnight to morning", next(1), next(7), true},
		{"evening start, late end", day(20), next(11), false},
		{"afternoon nap", day(13), day(15), false},
		{"morning start", day(8), day(10), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNightSleep(tt.start, tt.end); got != tt.want {
				t.Errorf("isNightSleep(%v, %v) = %v, want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestSleepEfficiencyCappedAt100(t *testing.T) {
	start := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)
	sessions := []SleepSession{
		{Start: start, DurationHours: 20},
	}

	if got := sleepEfficiency(sessions, 15.5); got != 100 {
		t.Errorf("efficiency: got %v, want 100", got)
	}
}

func TestSleepEfficiencyCountsUniqueDays(t *testing.T) {
	day1 := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 1, 16, 9, 0, 0, 0, time.UTC)

	sessions := []SleepSession{
		{Start: day1, DurationHours: 8},
		{Start: day1.Add(4 * time.Hour), DurationHours: 7.5},
		{Start: day2, DurationHours: 15.5},
	}

	// 31 hours over 2 days against a 15.5 ideal is exactly 100%.
	if got := sleepEfficiency(sessions, 15.5); got != 100 {
		t.Errorf("efficiency: got %v, want 100", got)
	}
}

func TestSleepEfficiencyEmpty(t *testing.T) {
	if got := sleepEfficiency(nil, 15.5); got != 0 {
		t.Errorf("efficiency with no sessions: got %v, want 0", got)
	}
}

func TestIntervalHours(t *testing.T) {
	base := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)
	events := []event.Event{
		ev(event.TypeDiaperPee, base),
		ev(event.TypeDiaperPoo, base.Add(3*time.Hour)),
	}

	intervals := intervalHours(events)
	if len(intervals) != 1 {
		t.Fatalf("expected 1 interval, got %d", len(intervals))
	}
	if intervals[0] != 3.0 {
		t.Errorf("interval: got %v, want 3.0", intervals[0])
	}
}

func TestIntervalHoursTooFewEvents(t *testing.T) {
	if got := intervalHours([]event.Event{ev(event.TypeDiaperPee, time.Now())}); got != nil {
		t.Errorf("expected nil for a single event, got %v", got)
	}
}

func TestIntervalSummary(t *testing.T) {
	avg, shortest, longest := intervalSummary([]float64{2, 4, 6})
	if avg != 4.0 {
		t.Errorf("avg: got %v, want 4.0", avg)
	}
	if shortest != 2.0 {
		t.Errorf("shortest: got %v, want 2.0", shortest)
	}
	if longest != 6.0 {
		t.Errorf("longest: got %v, want 6.0", longest)
	}

	avg, shortest, longest = intervalSummary(nil)
	if avg != 0 || shortest != 0 || longest != 0 {
		t.Errorf("empty summary: got %v/%v/%v, want zeros", avg, shortest, longest)
	}
}

func TestHourlyPatternAlways24Buckets(t *testing.T) {
	buckets := hourlyPattern([]event.Event{
		ev(event.TypeDiaperPee, time.Date(2026, 1, 15, 8, 30, 0, 0, time.UTC)),
		ev(event.TypeDiaperPee, time.Date(2026, 1, 15, 8, 45, 0, 0, time.UTC)),
	})

	if len(buckets) != 24 {
		t.Fatalf("expected 24 buckets, got %d", len(buckets))
	}
	if buckets[8].Count != 2 {
		t.Errorf("hour 8: got %d, want 2", buckets[8].Count)
	}
	if buckets[9].Count != 0 {
		t.Errorf("hour 9: got %d, want 0", buckets[9].Count)
	}
}

func TestWeeklyPatternMondayFirst(t *testing.T) {
	// 2026-01-12 is a Monday, 2026-01-18 a Sunday.
	buckets := weeklyPattern([]event.Event{
		ev(event.TypeDiaperPee, time.Date(2026, 1, 12, 10, 0, 0, 0, time.UTC)),
		ev(event.TypeDiaperPee, time.Date(2026, 1, 18, 10, 0, 0, 0, time.UTC)),
	})

	if len(buckets) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(buckets))
	}
	if buckets[0].Day != "Monday" || buckets[0].Count != 1 {
		t.Errorf("bucket 0: got %s=%d, want Monday=1", buckets[0].Day, buckets[0].Count)
	}
	if buckets[6].Day != "Sunday" || buckets[6].Count != 1 {
		t.Errorf("bucket 6: got %s=%d, want Sunday=1", buckets[6].Day, buckets[6].Count)
	}
}

func TestSleepHourPatternAttributesToStartHour(t *testing.T) {
	start := time.Date(2026, 1, 15, 20, 0, 0, 0, time.UTC)
	buckets := sleepHourPattern([]SleepSession{
		{Start: start, StartHour: 20, DurationHours: 10},
	})

	if len(buckets) != 24 {
		t.Fatalf("expected 24 buckets, got %d", len(buckets))
	}
	if buckets[20].SleepHours != 10.0 {
		t.Errorf("hour 20: got %v, want 10.0", buckets[20].SleepHours)
	}
}

func TestTimeSinceFormatting(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	ts := timeSince(now.Add(-90*time.Minute), now)
	if ts.Hours != 1 || ts.Minutes != 30 || ts.TotalMinutes != 90 {
		t.Errorf("90m ago: got %d/%d/%d", ts.Hours, ts.Minutes, ts.TotalMinutes)
	}
	if ts.HumanReadable != "1h 30m ago" {
		t.Errorf("human readable: got %q", ts.HumanReadable)
	}

	ts = timeSince(now.Add(-25*time.Minute), now)
	if ts.HumanReadable != "25m ago" {
		t.Errorf("human readable: got %q", ts.HumanReadable)
	}

	// Clock skew: an event timestamped in the future reads as zero.
	ts = timeSince(now.Add(10*time.Minute), now)
	if ts.TotalMinutes != 0 {
		t.Errorf("future event: got %d total minutes, want 0", ts.TotalMinutes)
	}
}
