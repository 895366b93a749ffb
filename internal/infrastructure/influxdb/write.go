package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteDomainEvent mirrors a recorded baby care event as a time-series
// point in the baby_care_events measurement.
//
// The write is non-blocking; data is batched and sent asynchronously.
// Each event is recorded as a count of 1 tagged by type and source, so
// dashboards can aggregate by event type over time.
//
// Parameters:
//   - eventType: The baby care action (e.g., "sleep_start")
//   - deviceSource: The triggering device id; empty for manual entries
//   - occurredAt: When the event happened
func (c *Client) WriteDomainEvent(eventType, deviceSource string, occurredAt time.Time) {
	if !c.IsConnected() {
		return
	}

	tags := map[string]string{
		"event_type": eventType,
	}
	if deviceSource != "" {
		tags["device_source"] = deviceSource
	}

	point := write.NewPoint(
		"baby_care_events",
		tags,
		map[string]interface{}{
			"count": 1,
		},
		occurredAt,
	)

	c.writeAPI.WritePoint(point)
}

// WriteSleepSession records a completed sleep session's duration.
//
// Parameters:
//   - durationHours: The session length
//   - isNight: Whether the session was classified as overnight sleep
//   - endedAt: When the session ended (the wake_up time)
func (c *Client) WriteSleepSession(durationHours float64, isNight bool, endedAt time.Time) {
	if !c.IsConnected() {
		return
	}

	kind := "day"
	if isNight {
		kind = "night"
	}

	point := write.NewPoint(
		"sleep_sessions",
		map[string]string{
			"kind": kind,
		},
		map[string]interface{}{
			"duration_hours": durationHours,
		},
		endedAt,
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
