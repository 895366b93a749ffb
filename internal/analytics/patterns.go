package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/nerrad567/babycare-core/internal/event"
)

// weekdayNames is Monday-first, matching how parents read a week.
var weekdayNames = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// intervalHours returns the gaps between consecutive events in hours,
// oldest first. Fewer than two events yields an empty slice.
func intervalHours(events []event.Event) []float64 {
	if len(events) < 2 {
		return nil
	}

	sorted := make([]event.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OccurredAt.Before(sorted[j].OccurredAt)
	})

	intervals := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		intervals = append(intervals, sorted[i].OccurredAt.Sub(sorted[i-1].OccurredAt).Hours())
	}
	return intervals
}

// intervalSummary folds intervals into (average, shortest, longest),
// all zero when there are no intervals.
func intervalSummary(intervals []float64) (avg, shortest, longest float64) {
	if len(intervals) == 0 {
		return 0, 0, 0
	}

	shortest = math.Inf(1)
	var sum float64
	for _, v := range intervals {
		sum += v
		if v < shortest {
			shortest = v
		}
		if v > longest {
			longest = v
		}
	}
	return round1(sum / float64(len(intervals))), round1(shortest), round1(longest)
}

// hourlyPattern counts events per hour of day. All 24 buckets are always
// present so charts have a stable axis.
func hourlyPattern(events []event.Event) []HourlyBucket {
	counts := make([]int, 24)
	for _, e := range events {
		counts[e.OccurredAt.Hour()]++
	}

	buckets := make([]HourlyBucket, 24)
	for hour, count := range counts {
		buckets[hour] = HourlyBucket{Hour: hour, Count: count}
	}
	return buckets
}

// weeklyPattern counts events per day of week, Monday first.
func weeklyPattern(events []event.Event) []WeekdayBucket {
	counts := make([]int, 7)
	for _, e := range events {
		counts[mondayIndex(e.OccurredAt.Weekday())]++
	}

	buckets := make([]WeekdayBucket, 7)
	for day, count := range counts {
		buckets[day] = WeekdayBucket{Day: weekdayNames[day], Count: count}
	}
	return buckets
}

// sleepHourPattern attributes each session's hours to its start hour.
func sleepHourPattern(sessions []SleepSession) []SleepHourBucket {
	hours := make([]float64, 24)
	for _, s := range sessions {
		hours[s.StartHour] += s.DurationHours
	}

	buckets := make([]SleepHourBucket, 24)
	for hour, total := range hours {
		buckets[hour] = SleepHourBucket{Hour: hour, SleepHours: round1(total)}
	}
	return buckets
}

// mondayIndex maps time.Weekday (Sunday=0) to a Monday-first index.
func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// isFeeding reports whether t is any feeding action.
func isFeeding(t string) bool {
	return strings.Contains(t, "feeding")
}

// isDiaper reports whether t is any diaper action.
func isDiaper(t string) bool {
	return strings.Contains(t, "diaper")
}

// isSleepEvent reports whether t participates in sleep sessions.
func isSleepEvent(t string) bool {
	return t == event.TypeSleepStart || t == event.TypeWakeUp
}

// filterEvents returns the events matching keep, preserving order.
func filterEvents(events []event.Event, keep func(string) bool) []event.Event {
	var out []event.Event
	for _, e := range events {
		if keep(e.Type) {
			out = append(out, e)
		}
	}
	return out
}

// round1 rounds to one decimal place, matching the precision reported
// everywhere in the stats payloads.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// timeSince describes how long ago t was, relative to now.
func timeSince(t, now time.Time) *TimeSince {
	diff := now.Sub(t)
	if diff < 0 {
		diff = 0
	}

	totalMinutes := int(diff.Minutes())
	hours := totalMinutes / 60
	minutes := totalMinutes % 60

	human := fmt.Sprintf("%dm ago", minutes)
	if hours >= 1 {
		human = fmt.Sprintf("%dh %dm ago", hours, minutes)
	}

	return &TimeSince{
		Hours:         hours,
		Minutes:       minutes,
		TotalMinutes:  totalMinutes,
		HumanReadable: human,
	}
}
