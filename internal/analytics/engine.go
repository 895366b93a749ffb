package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/nerrad567/babycare-core/internal/event"
)

// DefaultDays is the analysis window used when a caller passes zero.
const DefaultDays = 30

// Reader is the slice of the event store the engine consumes.
// Implemented by event.SQLiteRepository.
type Reader interface {
	Get(ctx context.Context, f event.Filter) ([]event.Event, error)
	GetByRange(ctx context.Context, start, end time.Time) ([]event.Event, error)
}

// Config tunes the engine's derived metrics.
type Config struct {
	// IdealDailySleepHours anchors the sleep efficiency percentage.
	// Zero means the 15.5 hour midpoint of the recommended infant range.
	IdealDailySleepHours float64

	// LiveStatusWindow is how many recent events the live status scan
	// examines. Zero means 20.
	LiveStatusWindow int
}

// Engine computes statistics over events read from the store.
// It holds no state beyond its collaborators and is safe for concurrent
// use.
type Engine struct {
	store      Reader
	idealHours float64
	liveWindow int
	now        func() time.Time
}

// NewEngine creates an analytics engine over the given store.
func NewEngine(store Reader, cfg Config) *Engine {
	idealHours := cfg.IdealDailySleepHours
	if idealHours <= 0 {
		idealHours = 15.5
	}
	liveWindow := cfg.LiveStatusWindow
	if liveWindow <= 0 {
		liveWindow = 20
	}

	return &Engine{
		store:      store,
		idealHours: idealHours,
		liveWindow: liveWindow,
		now:        time.Now,
	}
}

// Feeding computes feeding statistics over the trailing window.
//
// Parameters:
//   - days: Analysis window length; <=0 means DefaultDays
//
// Returns:
//   - FeedingStats: Totals, intervals, and patterns for the window
//   - error: Store read failure
func (e *Engine) Feeding(ctx context.Context, days int) (FeedingStats, error) {
	if days <= 0 {
		days = DefaultDays
	}

	events, err := e.windowEvents(ctx, days)
	if err != nil {
		return FeedingStats{}, fmt.Errorf("reading feeding window: %w", err)
	}

	feedings := filterEvents(events, isFeeding)

	var left, right int
	for _, f := range feedings {
		switch f.Type {
		case event.TypeFeedingStartLeft:
			left++
		case event.TypeFeedingStartRight:
			right++
		}
	}

	var balance float64
	if len(feedings) > 0 {
		balance = round1(float64(left) / float64(len(feedings)) * 100)
	}

	avg, shortest, longest := intervalSummary(intervalHours(feedings))

	return FeedingStats{
		TotalFeedings:        len(feedings),
		DailyAverage:         round1(float64(len(feedings)) / float64(days)),
		LeftBreastCount:      left,
		RightBreastCount:     right,
		BreastBalance:        balance,
		AverageIntervalHours: avg,
		ShortestInterval:     shortest,
		LongestInterval:      longest,
		HourlyPattern:        hourlyPattern(feedings),
		WeeklyPattern:        weeklyPattern(feedings),
		Timeline:             feedingTimeline(feedings),
	}, nil
}

// Sleep computes sleep statistics over the trailing window.
func (e *Engine) Sleep(ctx context.Context, days int) (SleepStats, error) {
	if days <= 0 {
		days = DefaultDays
	}

	events, err := e.windowEvents(ctx, days)
	if err != nil {
		return SleepStats{}, fmt.Errorf("reading sleep window: %w", err)
	}

	sessions := sleepSessions(events)

	var total, night, day, longest float64
	shortest := 0.0
	for i, s := range sessions {
		total += s.DurationHours
		if s.IsNightSleep {
			night += s.DurationHours
		} else {
			day += s.DurationHours
		}
		if s.DurationHours > longest {
			longest = s.DurationHours
		}
		if i == 0 || s.DurationHours < shortest {
			shortest = s.DurationHours
		}
	}

	var avgSession float64
	if len(sessions) > 0 {
		avgSession = total / float64(len(sessions))
	}

	recent := sessions
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}

	return SleepStats{
		TotalSessions:          len(sessions),
		TotalSleepHours:        round1(total),
		DailySleepAverage:      round1(total / float64(days)),
		AverageSessionDuration: round1(avgSession),
		LongestSession:         round1(longest),
		ShortestSession:        round1(shortest),
		NightSleepHours:        round1(night),
		DaySleepHours:          round1(day),
		SleepEfficiency:        sleepEfficiency(sessions, e.idealHours),
		Pattern:                sleepHourPattern(sessions),
		RecentSessions:         recent,
	}, nil
}

// Diaper computes diaper statistics over the trailing window.
func (e *Engine) Diaper(ctx context.Context, days int) (DiaperStats, error) {
	if days <= 0 {
		days = DefaultDays
	}

	events, err := e.windowEvents(ctx, days)
	if err != nil {
		return DiaperStats{}, fmt.Errorf("reading diaper window: %w", err)
	}

	changes := filterEvents(events, isDiaper)

	var pee, poo, both int
	for _, c := range changes {
		switch c.Type {
		case event.TypeDiaperPee:
			pee++
		case event.TypeDiaperPoo:
			poo++
		case event.TypeDiaperBoth:
			both++
		}
	}

	// "both" counts toward each column, matching how a change is logged.
	peeTotal := pee + both
	pooTotal := poo + both

	var peePct, pooPct float64
	if len(changes) > 0 {
		peePct = round1(float64(peeTotal) / float64(len(changes)) * 100)
		pooPct = round1(float64(pooTotal) / float64(len(changes)) * 100)
	}

	avg, shortest, longest := intervalSummary(intervalHours(changes))

	recent := newestFirst(changes)
	if len(recent) > 10 {
		recent = recent[:10]
	}

	return DiaperStats{
		TotalChanges:         len(changes),
		DailyAverage:         round1(float64(len(changes)) / float64(days)),
		PeeCount:             peeTotal,
		PooCount:             pooTotal,
		BothCount:            both,
		PeePercentage:        peePct,
		PooPercentage:        pooPct,
		AverageIntervalHours: avg,
		ShortestInterval:     shortest,
		LongestInterval:      longest,
		HourlyPattern:        hourlyPattern(changes),
		DailyPattern:         dailyDiaperPattern(changes),
		RecentChanges:        recent,
	}, nil
}

// Daily computes the summary for the calendar day containing date.
// A zero date means today.
func (e *Engine) Daily(ctx context.Context, date time.Time) (DailyStats, error) {
	if date.IsZero() {
		date = e.now()
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	// The store's range bounds are inclusive; stop just short of the
	// next midnight so a boundary event lands in one day only.
	end := start.Add(24*time.Hour - time.Nanosecond)

	events, err := e.store.GetByRange(ctx, start, end)
	if err != nil {
		return DailyStats{}, fmt.Errorf("reading day %s: %w", start.Format("2006-01-02"), err)
	}

	feedings := filterEvents(events, isFeeding)
	diapers := filterEvents(events, isDiaper)
	sleeps := filterEvents(events, isSleepEvent)

	return DailyStats{
		Date:               start.Format("2006-01-02"),
		FeedingCount:       len(feedings),
		DiaperChanges:      len(diapers),
		SleepDurationHours: round1(totalSleepMinutes(sleeps) / 60),
		TotalEvents:        len(events),
		LastFeeding:        lastEventTime(feedings),
		LastDiaper:         lastEventTime(diapers),
		SleepStatus:        latestSleepStatus(sleeps),
	}, nil
}

// Weekly computes totals and a per-day breakdown for the trailing weeks.
func (e *Engine) Weekly(ctx context.Context, weeksBack int) (WeeklyStats, error) {
	if weeksBack <= 0 {
		weeksBack = 1
	}

	end := e.now()
	start := end.AddDate(0, 0, -7*weeksBack)

	events, err := e.store.GetByRange(ctx, start, end)
	if err != nil {
		return WeeklyStats{}, fmt.Errorf("reading weekly window: %w", err)
	}

	stats := WeeklyStats{DailyBreakdown: make(map[string]DayBreakdown)}

	byDay := make(map[string][]event.Event)
	for _, ev := range events {
		day := ev.OccurredAt.Format("2006-01-02")
		byDay[day] = append(byDay[day], ev)
		if isFeeding(ev.Type) {
			stats.TotalFeedings++
		}
		if isDiaper(ev.Type) {
			stats.TotalDiapers++
		}
	}

	for day, dayEvents := range byDay {
		sleeps := filterEvents(dayEvents, isSleepEvent)
		stats.DailyBreakdown[day] = DayBreakdown{
			Feedings:   len(filterEvents(dayEvents, isFeeding)),
			Diapers:    len(filterEvents(dayEvents, isDiaper)),
			SleepHours: round1(totalSleepMinutes(sleeps) / 60),
		}
	}

	// Per-day trend arrays, oldest day first, zero-filled for quiet days
	// so charts keep a fixed axis.
	totalDays := 7 * weeksBack
	stats.FeedingTrend = make([]int, 0, totalDays)
	stats.SleepTrend = make([]float64, 0, totalDays)
	stats.DiaperTrend = make([]int, 0, totalDays)
	for i := totalDays - 1; i >= 0; i-- {
		day := end.AddDate(0, 0, -i).Format("2006-01-02")
		breakdown := stats.DailyBreakdown[day]
		stats.FeedingTrend = append(stats.FeedingTrend, breakdown.Feedings)
		stats.SleepTrend = append(stats.SleepTrend, breakdown.SleepHours)
		stats.DiaperTrend = append(stats.DiaperTrend, breakdown.Diapers)
	}

	return stats, nil
}

// Live computes the real-time dashboard view: today's totals plus the
// current sleep state inferred from the most recent events.
func (e *Engine) Live(ctx context.Context) (LiveStatus, error) {
	today, err := e.Daily(ctx, time.Time{})
	if err != nil {
		return LiveStatus{}, err
	}

	recent, err := e.store.Get(ctx, event.Filter{Limit: e.liveWindow})
	if err != nil {
		return LiveStatus{}, fmt.Errorf("reading recent events: %w", err)
	}

	status := LiveStatus{Today: today, SleepStatus: StatusUnknown, RecentEvents: recent}
	now := e.now()

	// recent is newest first, so the first hit in each category wins.
	sleepSettled := false
	for i := range recent {
		ev := recent[i]
		switch {
		case isFeeding(ev.Type):
			if status.LastFeeding == nil {
				status.LastFeeding = &recent[i]
				status.TimeSinceFeeding = timeSince(ev.OccurredAt, now)
			}
		case isDiaper(ev.Type):
			if status.LastDiaper == nil {
				status.LastDiaper = &recent[i]
				status.TimeSinceDiaper = timeSince(ev.OccurredAt, now)
			}
		case ev.Type == event.TypeSleepStart:
			if !sleepSettled {
				status.SleepStatus = StatusSleeping
				sleepSettled = true
			}
		case ev.Type == event.TypeWakeUp:
			if !sleepSettled {
				status.SleepStatus = StatusAwake
				sleepSettled = true
			}
		}
	}

	return status, nil
}

// Snapshot computes every metric for one point in time. Metrics are
// computed independently: a failed metric is zeroed and named in Failed
// while the others are still returned.
func (e *Engine) Snapshot(ctx context.Context, days int) Snapshot {
	snap := Snapshot{GeneratedAt: e.now()}

	var err error
	if snap.Feeding, err = e.Feeding(ctx, days); err != nil {
		snap.Failed = append(snap.Failed, "feeding")
	}
	if snap.Sleep, err = e.Sleep(ctx, days); err != nil {
		snap.Failed = append(snap.Failed, "sleep")
	}
	if snap.Diaper, err = e.Diaper(ctx, days); err != nil {
		snap.Failed = append(snap.Failed, "diaper")
	}
	if snap.Daily, err = e.Daily(ctx, time.Time{}); err != nil {
		snap.Failed = append(snap.Failed, "daily")
	}

	return snap
}

// windowEvents reads the trailing analysis window, oldest bound first.
func (e *Engine) windowEvents(ctx context.Context, days int) ([]event.Event, error) {
	end := e.now()
	start := end.AddDate(0, 0, -days)
	return e.store.GetByRange(ctx, start, end)
}

// feedingTimeline lists the most recent feedings, newest first.
func feedingTimeline(feedings []event.Event) []FeedingEntry {
	sorted := newestFirst(feedings)
	if len(sorted) > 20 {
		sorted = sorted[:20]
	}

	timeline := make([]FeedingEntry, 0, len(sorted))
	for _, f := range sorted {
		side := "Unknown"
		switch f.Type {
		case event.TypeFeedingStartLeft:
			side = "Left"
		case event.TypeFeedingStartRight:
			side = "Right"
		}

		source := f.DeviceSource
		if source == "" {
			source = "Manual"
		}

		timeline = append(timeline, FeedingEntry{
			Timestamp:    f.OccurredAt,
			Type:         f.Type,
			Side:         side,
			DeviceSource: source,
		})
	}
	return timeline
}

// dailyDiaperPattern groups diaper changes by calendar day, oldest first.
func dailyDiaperPattern(changes []event.Event) []DailyDiaperBucket {
	byDay := make(map[string]*DailyDiaperBucket)
	var order []string

	for _, c := range changes {
		day := c.OccurredAt.Format("2006-01-02")
		bucket, ok := byDay[day]
		if !ok {
			bucket = &DailyDiaperBucket{Date: day}
			byDay[day] = bucket
			order = append(order, day)
		}

		switch c.Type {
		case event.TypeDiaperPee:
			bucket.Pee++
		case event.TypeDiaperPoo:
			bucket.Poo++
		case event.TypeDiaperBoth:
			bucket.Both++
		}
		bucket.Total++
	}

	sort.Strings(order)

	buckets := make([]DailyDiaperBucket, 0, len(order))
	for _, day := range order {
		buckets = append(buckets, *byDay[day])
	}
	return buckets
}

// newestFirst returns a copy of events sorted by occurred_at descending.
// Recent lists must not depend on the store's result order.
func newestFirst(events []event.Event) []event.Event {
	sorted := make([]event.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OccurredAt.After(sorted[j].OccurredAt)
	})
	return sorted
}

// lastEventTime returns the latest occurred_at among events, or nil.
func lastEventTime(events []event.Event) *time.Time {
	var latest *time.Time
	for i := range events {
		t := events[i].OccurredAt
		if latest == nil || t.After(*latest) {
			latest = &t
		}
	}
	return latest
}

// latestSleepStatus reports the state implied by the newest sleep event.
func latestSleepStatus(sleeps []event.Event) string {
	if len(sleeps) == 0 {
		return StatusUnknown
	}

	latest := sleeps[0]
	for _, s := range sleeps[1:] {
		if s.OccurredAt.After(latest.OccurredAt) {
			latest = s
		}
	}

	if latest.Type == event.TypeSleepStart {
		return StatusSleeping
	}
	return StatusAwake
}
