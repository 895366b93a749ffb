package mapping

import "time"

// Mapping links a device trigger to a baby care action.
//
// Rows are mutated only through the admin API (add/delete); the
// ingestion hot path only reads them via Resolve.
type Mapping struct {
	// ID is the auto-incremented primary key.
	ID int64 `json:"id"`

	// DeviceID is the dialect-prefixed device identifier
	// (e.g., "zigbee2mqtt_front_door_button").
	DeviceID string `json:"device_id"`

	// DeviceName is an optional human-readable label.
	DeviceName string `json:"device_name,omitempty"`

	// TriggerType is the device-side event classifier
	// (e.g., "action_single").
	TriggerType string `json:"trigger_type"`

	// Action is the baby care action this trigger maps to.
	Action string `json:"baby_care_action"`

	// Enabled controls whether Resolve considers this row.
	Enabled bool `json:"enabled"`

	// CreatedAt is when the row was inserted (UTC).
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the row was last modified (UTC).
	UpdatedAt time.Time `json:"updated_at"`
}

// NewMapping describes a mapping to register.
type NewMapping struct {
	DeviceID    string
	DeviceName  string
	TriggerType string
	Action      string
}
