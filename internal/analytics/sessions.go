package analytics

import (
	"sort"
	"time"

	"github.com/nerrad567/babycare-core/internal/event"
)

// sleepSessions pairs sleep_start and wake_up events into completed
// sessions, in chronological order.
//
// A second sleep_start before any wake_up replaces the open start (the
// earlier one is treated as noise). A wake_up with no open start is
// ignored. An open start with no wake_up yet produces no session.
func sleepSessions(events []event.Event) []SleepSession {
	sorted := make([]event.Event, 0, len(events))
	for _, e := range events {
		if e.Type == event.TypeSleepStart || e.Type == event.TypeWakeUp {
			sorted = append(sorted, e)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OccurredAt.Before(sorted[j].OccurredAt)
	})

	var sessions []SleepSession
	var open *time.Time

	for _, e := range sorted {
		switch e.Type {
		case event.TypeSleepStart:
			t := e.OccurredAt
			open = &t
		case event.TypeWakeUp:
			if open == nil {
				continue
			}
			sessions = append(sessions, SleepSession{
				Start:         *open,
				End:           e.OccurredAt,
				DurationHours: e.OccurredAt.Sub(*open).Hours(),
				StartHour:     open.Hour(),
				IsNightSleep:  isNightSleep(*open, e.OccurredAt),
			})
			open = nil
		}
	}

	return sessions
}

// isNightSleep classifies a session as overnight sleep: it must begin in
// the evening (18:00-02:59) and end in the morning (05:00-10:59).
func isNightSleep(start, end time.Time) bool {
	startHour := start.Hour()
	endHour := end.Hour()
	return (startHour >= 18 || startHour <= 2) && (endHour >= 5 && endHour <= 10)
}

// totalSleepMinutes sums completed session durations, in minutes.
func totalSleepMinutes(events []event.Event) float64 {
	var total float64
	for _, s := range sleepSessions(events) {
		total += s.DurationHours * 60
	}
	return total
}

// sleepEfficiency compares total sleep against the ideal daily amount
// over the days that saw at least one session, capped at 100.
func sleepEfficiency(sessions []SleepSession, idealDailyHours float64) float64 {
	if len(sessions) == 0 {
		return 0
	}

	days := make(map[string]bool)
	var total float64
	for _, s := range sessions {
		days[s.Start.Format("2006-01-02")] = true
		total += s.DurationHours
	}

	ideal := float64(len(days)) * idealDailyHours
	if ideal <= 0 {
		return 0
	}

	efficiency := total / ideal * 100
	if efficiency > 100 {
		efficiency = 100
	}
	return round1(efficiency)
}
