package ingest

import (
	"testing"
	"time"
)

var receivedAt = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

func TestNormalizeZigbeeAction(t *testing.T) {
	n := NewNormalizer("baby_care_tracker")

	norm, ok := n.Normalize("zigbee2mqtt/front_door_button/action", []byte(`{"action":"single"}`), receivedAt)
	if !ok {
		t.Fatal("expected an event")
	}

	if norm.DeviceID != "zigbee2mqtt_front_door_button" {
		t.Errorf("device id: got %q", norm.DeviceID)
	}
	if norm.EventType != "action_single" {
		t.Errorf("event type: got %q", norm.EventType)
	}
	if !norm.OccurredAt.Equal(receivedAt) {
		t.Errorf("occurred at: got %v", norm.OccurredAt)
	}
}

func TestNormalizeZigbeeFieldPriority(t *testing.T) {
	n := NewNormalizer("baby_care_tracker")

	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"action beats state", `{"action":"double","state":"ON"}`, "action_double"},
		{"state", `{"state":"ON"}`, "state_ON"},
		{"contact", `{"contact":false}`, "contact_false"},
		{"occupancy maps to motion", `{"occupancy":true}`, "motion_true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			norm, ok := n.Normalize("zigbee2mqtt/nursery_sensor", []byte(tt.payload), receivedAt)
			if !ok {
				t.Fatal("expected an event")
			}
			if norm.EventType != tt.want {
				t.Errorf("event type: got %q, want %q", norm.EventType, tt.want)
			}
		})
	}
}

func TestNormalizeZigbeeExcludedSubtopics(t *testing.T) {
	n := NewNormalizer("baby_care_tracker")

	for _, topic := range []string{
		"zigbee2mqtt/nursery_sensor/availability",
		"zigbee2mqtt/nursery_sensor/linkquality",
	} {
		if _, ok := n.Normalize(topic, []byte(`{"state":"online"}`), receivedAt); ok {
			t.Errorf("%s should not produce an event", topic)
		}
	}
}

func TestNormalizeZigbeeNoUsableField(t *testing.T) {
	n := NewNormalizer("baby_care_tracker")

	if _, ok := n.Normalize("zigbee2mqtt/nursery_sensor", []byte(`{"battery":87}`), receivedAt); ok {
		t.Error("payload without a trigger field should be dropped")
	}
}

func TestNormalizeHomeAssistantState(t *testing.T) {
	n := NewNormalizer("baby_care_tracker")

	norm, ok := n.Normalize("homeassistant/binary_sensor/crib_motion/state", []byte(`{"state":"on"}`), receivedAt)
	if !ok {
		t.Fatal("expected an event")
	}
	if norm.DeviceID != "ha_crib_motion" {
		t.Errorf("device id: got %q", norm.DeviceID)
	}
	if norm.EventType != "state_on" {
		t.Errorf("event type: got %q", norm.EventType)
	}
}

func TestNormalizeHomeAssistantFiltersDomains(t *testing.T) {
	n := NewNormalizer("baby_care_tracker")

	// The light domain is not a trigger source.
	if _, ok := n.Normalize("homeassistant/light/nursery/state", []byte(`{"state":"on"}`), receivedAt); ok {
		t.Error("unsupported domain should be dropped")
	}

	// Discovery config topics are not state topics.
	if _, ok := n.Normalize("homeassistant/sensor/crib/config", []byte(`{"state":"on"}`), receivedAt); ok {
		t.Error("non-state topic should be dropped")
	}
}

func TestNormalizeZWaveAction(t *testing.T) {
	n := NewNormalizer("baby_care_tracker")

	norm, ok := n.Normalize("zwave/bedroom_remote/action", []byte(`{"value":2}`), receivedAt)
	if !ok {
		t.Fatal("expected an event")
	}
	if norm.DeviceID != "zwave_bedroom_remote" {
		t.Errorf("device id: got %q", norm.DeviceID)
	}
	if norm.EventType != "action_2" {
		t.Errorf("event type: got %q", norm.EventType)
	}
}

func TestNormalizeCustomTopic(t *testing.T) {
	n := NewNormalizer("baby_care_tracker")

	norm, ok := n.Normalize("baby_care_tracker/kitchen_button/pressed", []byte(`{}`), receivedAt)
	if !ok {
		t.Fatal("expected an event")
	}
	if norm.DeviceID != "custom_kitchen_button" {
		t.Errorf("device id: got %q", norm.DeviceID)
	}
	if norm.EventType != "pressed" {
		t.Errorf("event type: got %q", norm.EventType)
	}
}

func TestNormalizeCustomSkipsOwnPublishes(t *testing.T) {
	n := NewNormalizer("baby_care_tracker")

	for _, topic := range []string{
		"baby_care_tracker/addon/status",
		"baby_care_tracker/events/sleep_start",
	} {
		if _, ok := n.Normalize(topic, []byte(`{"status":"online"}`), receivedAt); ok {
			t.Errorf("%s should not produce an event", topic)
		}
	}
}

func TestNormalizeUnknownPrefixDropped(t *testing.T) {
	n := NewNormalizer("baby_care_tracker")

	if _, ok := n.Normalize("tasmota/plug/STATE", []byte(`{"state":"ON"}`), receivedAt); ok {
		t.Error("unknown topic prefix should be dropped")
	}
}

func TestNormalizeNonJSONPayload(t *testing.T) {
	n := NewNormalizer("baby_care_tracker")

	// A bare text payload is wrapped as {"value": text}. Zigbee topics
	// have no usable field in that shape, but the custom family carries
	// the event type in the topic, so it still records.
	if _, ok := n.Normalize("zigbee2mqtt/plain_sensor", []byte("ON"), receivedAt); ok {
		t.Error("text payload on a zigbee state topic should be dropped")
	}

	norm, ok := n.Normalize("baby_care_tracker/kitchen_button/pressed", []byte("hello"), receivedAt)
	if !ok {
		t.Fatal("expected an event from text payload")
	}
	if norm.RawData["value"] != "hello" {
		t.Errorf("raw data: got %v", norm.RawData)
	}
}
