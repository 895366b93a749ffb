package ingest

import "time"

// Device id prefixes per dialect. Prefixing avoids cross-dialect
// collisions when two protocols expose a device under the same name.
const (
	DevicePrefixZigbee        = "zigbee2mqtt_"
	DevicePrefixHomeAssistant = "ha_"
	DevicePrefixZWave         = "zwave_"
	DevicePrefixCustom        = "custom_"
)

// NormalizedEvent is the canonical form of a raw broker message:
// a dialect-prefixed device id, an event-type string, the parsed
// payload, and the receive time. It is ephemeral - produced per
// message and never persisted.
type NormalizedEvent struct {
	// DeviceID is the dialect-prefixed device identifier.
	DeviceID string

	// EventType is the device-side event classifier
	// (e.g., "action_single", "state_on", "motion_true").
	EventType string

	// RawData is the parsed payload. Non-JSON payloads arrive as
	// {"value": "<text>"}.
	RawData map[string]any

	// OccurredAt is when the message was received.
	OccurredAt time.Time
}

// Notification describes a recorded domain event, delivered to the
// registered callback after a successful append.
type Notification struct {
	ID         int64     `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"timestamp"`
	DeviceID   string    `json:"device"`
}
