package ingest

import (
	"fmt"
	"strings"
)

// parseFunc turns a topic and parsed payload into a NormalizedEvent.
// Returning false means the message produces no event (dropped silently).
type parseFunc func(topic string, data map[string]any) (deviceID, eventType string, ok bool)

// dialect pairs a topic prefix with its parser. Dispatch picks the
// registered dialect with the longest matching prefix, so adding a new
// device protocol means registering a new entry, not editing a chain.
type dialect struct {
	prefix string
	parse  parseFunc
}

// Home Assistant entity domains that produce usable state events.
var haDomains = map[string]bool{
	"switch":        true,
	"binary_sensor": true,
	"sensor":        true,
	"button":        true,
}

// Zigbee2MQTT sub-topics that never carry device events.
var zigbeeExcludedSubtopics = map[string]bool{
	"availability": true,
	"linkquality":  true,
}

// parseZigbee handles Zigbee2MQTT messages.
//
// Topics: zigbee2mqtt/<device> and zigbee2mqtt/<device>/action.
// Field priority: action > state > contact > occupancy; first match
// wins. Occupancy maps to a motion_ event type.
func parseZigbee(topic string, data map[string]any) (string, string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) < 2 || parts[1] == "" {
		return "", "", false
	}
	device := parts[1]

	if len(parts) >= 3 && zigbeeExcludedSubtopics[parts[2]] {
		return "", "", false
	}

	deviceID := DevicePrefixZigbee + device

	if v, ok := fieldValue(data, "action"); ok {
		return deviceID, "action_" + v, true
	}
	if v, ok := fieldValue(data, "state"); ok {
		return deviceID, "state_" + v, true
	}
	if v, ok := fieldValue(data, "contact"); ok {
		return deviceID, "contact_" + v, true
	}
	if v, ok := fieldValue(data, "occupancy"); ok {
		return deviceID, "motion_" + v, true
	}

	return "", "", false
}

// parseHomeAssistant handles Home Assistant state topics.
//
// Topic: homeassistant/<domain>/<entity>/state, for the switch,
// binary_sensor, sensor, and button domains. Field priority:
// state > value.
func parseHomeAssistant(topic string, data map[string]any) (string, string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) < 4 || parts[3] != "state" {
		return "", "", false
	}
	if !haDomains[parts[1]] {
		return "", "", false
	}

	deviceID := DevicePrefixHomeAssistant + parts[2]

	if v, ok := fieldValue(data, "state"); ok {
		return deviceID, "state_" + v, true
	}
	if v, ok := fieldValue(data, "value"); ok {
		return deviceID, "state_" + v, true
	}

	return "", "", false
}

// parseZWave handles Z-Wave action topics.
//
// Topic: zwave/<device>/action. Field priority: action > value.
func parseZWave(topic string, data map[string]any) (string, string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 || parts[2] != "action" || parts[1] == "" {
		return "", "", false
	}

	deviceID := DevicePrefixZWave + parts[1]

	if v, ok := fieldValue(data, "action"); ok {
		return deviceID, "action_" + v, true
	}
	if v, ok := fieldValue(data, "value"); ok {
		return deviceID, "action_" + v, true
	}

	return "", "", false
}

// newCustomParser returns the parser for the application's own topic
// family: <prefix>/<device>/<event>. The event type is the raw path
// segment. The addon and events sub-families are the application's own
// publishes and never produce events.
func newCustomParser() parseFunc {
	return func(topic string, data map[string]any) (string, string, bool) {
		parts := strings.Split(topic, "/")
		if len(parts) < 3 || parts[1] == "" || parts[2] == "" {
			return "", "", false
		}
		if parts[1] == "addon" || parts[1] == "events" {
			return "", "", false
		}
		return DevicePrefixCustom + parts[1], parts[2], true
	}
}

// fieldValue extracts a payload field as a string.
// Empty and nil values count as absent.
func fieldValue(data map[string]any, key string) (string, bool) {
	v, ok := data[key]
	if !ok || v == nil {
		return "", false
	}

	var s string
	switch val := v.(type) {
	case string:
		s = val
	case bool:
		s = fmt.Sprintf("%v", val)
	case float64:
		// JSON numbers decode as float64; print integers without decimals.
		if val == float64(int64(val)) {
			s = fmt.Sprintf("%d", int64(val))
		} else {
			s = fmt.Sprintf("%v", val)
		}
	default:
		s = fmt.Sprintf("%v", val)
	}

	if s == "" {
		return "", false
	}
	return s, true
}
