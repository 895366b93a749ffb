package event

import (
	"encoding/json"
	"time"
)

// Baby care action vocabulary. This is the fixed enumerated set consumed
// by the mapping and analytics layers.
const (
	TypeFeedingStartLeft  = "feeding_start_left"
	TypeFeedingStartRight = "feeding_start_right"
	TypeFeedingStop       = "feeding_stop"
	TypeSleepStart        = "sleep_start"
	TypeWakeUp            = "wake_up"
	TypeDiaperPee         = "diaper_pee"
	TypeDiaperPoo         = "diaper_poo"
	TypeDiaperBoth        = "diaper_both"
)

// Types lists every valid baby care action, in a stable order.
var Types = []string{
	TypeFeedingStartLeft,
	TypeFeedingStartRight,
	TypeFeedingStop,
	TypeSleepStart,
	TypeWakeUp,
	TypeDiaperPee,
	TypeDiaperPoo,
	TypeDiaperBoth,
}

// ValidType reports whether t is one of the known baby care actions.
func ValidType(t string) bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Event is a recorded baby care domain event.
//
// Events are immutable once created except for notes/duration edits,
// and are removed only by retention cleanup or explicit deletion.
type Event struct {
	// ID is the auto-incremented primary key; strictly increasing.
	ID int64 `json:"id"`

	// Type is one of the baby care action constants.
	Type string `json:"event_type"`

	// OccurredAt is when the event happened (UTC). Manual entries may
	// backdate this; device-triggered events use receive time.
	OccurredAt time.Time `json:"occurred_at"`

	// DurationMinutes is an optional duration (e.g., feeding length).
	DurationMinutes *int `json:"duration_minutes,omitempty"`

	// Notes is optional free-form text.
	Notes string `json:"notes,omitempty"`

	// DeviceSource identifies the device that triggered the event;
	// empty for manual entries.
	DeviceSource string `json:"device_source,omitempty"`

	// TriggerData is the raw device payload that produced the event.
	TriggerData json.RawMessage `json:"trigger_data,omitempty"`

	// CreatedAt is when the row was inserted (UTC).
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the row was last modified (UTC).
	UpdatedAt time.Time `json:"updated_at"`
}

// NewEvent describes an event to append to the store.
// Zero OccurredAt means "now".
type NewEvent struct {
	Type            string
	OccurredAt      time.Time
	DurationMinutes *int
	Notes           string
	DeviceSource    string
	TriggerData     json.RawMessage
}

// Update describes an edit to an existing event.
// Nil fields are left unchanged.
type Update struct {
	DurationMinutes *int
	Notes           *string
}

// Filter narrows a store query.
type Filter struct {
	// Type filters to a single event type; empty means all types.
	Type string

	// Start/End bound occurred_at (inclusive); nil means unbounded.
	Start *time.Time
	End   *time.Time

	// Limit caps the result size (default 50, max 1000).
	Limit int

	// Offset skips rows for pagination.
	Offset int
}
