package analytics

import (
	"time"

	"github.com/nerrad567/babycare-core/internal/event"
)

// SleepSession is one completed sleep period, paired from a sleep_start
// and the wake_up that followed it.
type SleepSession struct {
	Start         time.Time `json:"start_time"`
	End           time.Time `json:"end_time"`
	DurationHours float64   `json:"duration_hours"`
	StartHour     int       `json:"start_hour"`
	IsNightSleep  bool      `json:"is_night_sleep"`
}

// HourlyBucket is an event count for one hour of the day (0-23).
type HourlyBucket struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// WeekdayBucket is an event count for one day of the week, Monday first.
type WeekdayBucket struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// SleepHourBucket is total sleep hours attributed to the session start
// hour.
type SleepHourBucket struct {
	Hour       int     `json:"hour"`
	SleepHours float64 `json:"sleep_hours"`
}

// FeedingEntry is one feeding in the recent timeline.
type FeedingEntry struct {
	Timestamp    time.Time `json:"timestamp"`
	Type         string    `json:"type"`
	Side         string    `json:"side"`
	DeviceSource string    `json:"device_source"`
}

// FeedingStats summarizes feedings over an analysis window.
type FeedingStats struct {
	TotalFeedings        int             `json:"total_feedings"`
	DailyAverage         float64         `json:"daily_average"`
	LeftBreastCount      int             `json:"left_breast_count"`
	RightBreastCount     int             `json:"right_breast_count"`
	BreastBalance        float64         `json:"breast_balance"`
	AverageIntervalHours float64         `json:"average_interval_hours"`
	ShortestInterval     float64         `json:"shortest_interval"`
	LongestInterval      float64         `json:"longest_interval"`
	HourlyPattern        []HourlyBucket  `json:"hourly_pattern"`
	WeeklyPattern        []WeekdayBucket `json:"weekly_pattern"`
	Timeline             []FeedingEntry  `json:"feeding_timeline"`
}

// SleepStats summarizes sleep sessions over an analysis window.
type SleepStats struct {
	TotalSessions          int               `json:"total_sleep_sessions"`
	TotalSleepHours        float64           `json:"total_sleep_hours"`
	DailySleepAverage      float64           `json:"daily_sleep_average"`
	AverageSessionDuration float64           `json:"average_session_duration"`
	LongestSession         float64           `json:"longest_sleep_session"`
	ShortestSession        float64           `json:"shortest_sleep_session"`
	NightSleepHours        float64           `json:"night_sleep_hours"`
	DaySleepHours          float64           `json:"day_sleep_hours"`
	SleepEfficiency        float64           `json:"sleep_efficiency"`
	Pattern                []SleepHourBucket `json:"sleep_pattern"`
	RecentSessions         []SleepSession    `json:"recent_sessions"`
}

// DailyDiaperBucket is the diaper breakdown for one calendar day.
type DailyDiaperBucket struct {
	Date  string `json:"date"`
	Pee   int    `json:"pee"`
	Poo   int    `json:"poo"`
	Both  int    `json:"both"`
	Total int    `json:"total"`
}

// DiaperStats summarizes diaper changes over an analysis window.
type DiaperStats struct {
	TotalChanges         int                 `json:"total_changes"`
	DailyAverage         float64             `json:"daily_average"`
	PeeCount             int                 `json:"pee_count"`
	PooCount             int                 `json:"poo_count"`
	BothCount            int                 `json:"both_count"`
	PeePercentage        float64             `json:"pee_percentage"`
	PooPercentage        float64             `json:"poo_percentage"`
	AverageIntervalHours float64             `json:"average_interval_hours"`
	ShortestInterval     float64             `json:"shortest_interval"`
	LongestInterval      float64             `json:"longest_interval"`
	HourlyPattern        []HourlyBucket      `json:"hourly_pattern"`
	DailyPattern         []DailyDiaperBucket `json:"daily_pattern"`
	RecentChanges        []event.Event       `json:"recent_changes"`
}

// DailyStats summarizes one calendar day.
type DailyStats struct {
	Date               string     `json:"date"`
	FeedingCount       int        `json:"feeding_count"`
	DiaperChanges      int        `json:"diaper_changes"`
	SleepDurationHours float64    `json:"sleep_duration_hours"`
	TotalEvents        int        `json:"total_events"`
	LastFeeding        *time.Time `json:"last_feeding"`
	LastDiaper         *time.Time `json:"last_diaper"`
	SleepStatus        string     `json:"current_sleep_status"`
}

// DayBreakdown is the per-day slice of a weekly summary.
type DayBreakdown struct {
	Feedings   int     `json:"feedings"`
	Diapers    int     `json:"diapers"`
	SleepHours float64 `json:"sleep_hours"`
}

// WeeklyStats summarizes one or more trailing weeks. The trend arrays
// hold one entry per day of the window, oldest first, zero-filled for
// days without events.
type WeeklyStats struct {
	TotalFeedings  int                     `json:"total_feedings"`
	TotalDiapers   int                     `json:"total_diapers"`
	FeedingTrend   []int                   `json:"feeding_trend"`
	SleepTrend     []float64               `json:"sleep_trend"`
	DiaperTrend    []int                   `json:"diaper_trend"`
	DailyBreakdown map[string]DayBreakdown `json:"daily_breakdown"`
}

// TimeSince describes how long ago an event happened.
type TimeSince struct {
	Hours         int    `json:"hours"`
	Minutes       int    `json:"minutes"`
	TotalMinutes  int    `json:"total_minutes"`
	HumanReadable string `json:"human_readable"`
}

// LiveStatus is the real-time dashboard view: today's totals plus the
// current sleep state inferred from the most recent events.
type LiveStatus struct {
	Today            DailyStats    `json:"today"`
	SleepStatus      string        `json:"sleep_status"`
	LastFeeding      *event.Event  `json:"last_feeding"`
	LastDiaper       *event.Event  `json:"last_diaper"`
	TimeSinceFeeding *TimeSince    `json:"time_since_last_feeding"`
	TimeSinceDiaper  *TimeSince    `json:"time_since_last_diaper"`
	RecentEvents     []event.Event `json:"recent_events"`
}

// Snapshot bundles the feeding, sleep, diaper, and daily metrics for one
// point in time. Metrics are computed independently: a failure zeroes
// that metric and records its name in Failed, leaving the rest intact.
type Snapshot struct {
	Feeding     FeedingStats `json:"feeding"`
	Sleep       SleepStats   `json:"sleep"`
	Diaper      DiaperStats  `json:"diaper"`
	Daily       DailyStats   `json:"daily"`
	GeneratedAt time.Time    `json:"generated_at"`
	Failed      []string     `json:"failed,omitempty"`
}

// Sleep status values reported by DailyStats and LiveStatus.
const (
	StatusSleeping = "sleeping"
	StatusAwake    = "awake"
	StatusUnknown  = "unknown"
)
