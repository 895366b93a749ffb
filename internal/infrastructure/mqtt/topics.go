package mqtt

import "fmt"

// DefaultPrefix is the default application topic family root.
const DefaultPrefix = "baby_care_tracker"

// Device dialect topic roots. Subscriptions cover these four dialects
// plus the application's own custom topic family.
const (
	// TopicPrefixZigbee is the Zigbee2MQTT topic root.
	TopicPrefixZigbee = "zigbee2mqtt"

	// TopicPrefixHomeAssistant is the Home Assistant state topic root.
	TopicPrefixHomeAssistant = "homeassistant"

	// TopicPrefixZWave is the Z-Wave topic root.
	TopicPrefixZWave = "zwave"
)

// Topics provides builders for application MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{Prefix: cfg.MQTT.TopicPrefix}
//	statusTopic := topics.Status()
//	// Returns: "baby_care_tracker/addon/status"
type Topics struct {
	// Prefix is the application topic family root.
	// Empty means DefaultPrefix.
	Prefix string
}

func (t Topics) prefix() string {
	if t.Prefix == "" {
		return DefaultPrefix
	}
	return t.Prefix
}

// Root returns the application topic family root, applying the default
// when no prefix is configured. Identifiers derived from the topic
// family (discovery unique ids, device identifiers) should use this
// rather than DefaultPrefix so two instances with different prefixes
// stay distinct.
func (t Topics) Root() string {
	return t.prefix()
}

// Status returns the retained add-on status topic.
//
// Example: baby_care_tracker/addon/status
func (t Topics) Status() string {
	return fmt.Sprintf("%s/addon/status", t.prefix())
}

// Event returns the publish topic for a recorded baby care event.
//
// Example: baby_care_tracker/events/sleep_start
func (t Topics) Event(action string) string {
	return fmt.Sprintf("%s/events/%s", t.prefix(), action)
}

// DiscoveryConfig returns the Home Assistant MQTT discovery config topic
// for a baby care action sensor.
//
// Example: homeassistant/sensor/baby_care_tracker_sleep_start/config
func (t Topics) DiscoveryConfig(action string) string {
	return fmt.Sprintf("%s/sensor/%s_%s/config", TopicPrefixHomeAssistant, t.prefix(), action)
}

// Custom returns the wildcard pattern for the application's custom
// device topic family.
//
// Pattern: baby_care_tracker/+/+
func (t Topics) Custom() string {
	return fmt.Sprintf("%s/+/+", t.prefix())
}

// ZigbeeActions returns the pattern for Zigbee2MQTT action sub-topics.
//
// Pattern: zigbee2mqtt/+/action
func (Topics) ZigbeeActions() string {
	return fmt.Sprintf("%s/+/action", TopicPrefixZigbee)
}

// ZigbeeStates returns the pattern for Zigbee2MQTT device state topics.
//
// Pattern: zigbee2mqtt/+
func (Topics) ZigbeeStates() string {
	return fmt.Sprintf("%s/+", TopicPrefixZigbee)
}

// HomeAssistantStates returns the pattern for Home Assistant entity
// state topics.
//
// Pattern: homeassistant/+/+/state
func (Topics) HomeAssistantStates() string {
	return fmt.Sprintf("%s/+/+/state", TopicPrefixHomeAssistant)
}

// ZWaveActions returns the pattern for Z-Wave action sub-topics.
//
// Pattern: zwave/+/action
func (Topics) ZWaveActions() string {
	return fmt.Sprintf("%s/+/action", TopicPrefixZWave)
}

// Subscriptions returns the fixed topic set the connector subscribes to:
// the four device dialects plus the application's custom family.
func (t Topics) Subscriptions() []string {
	return []string{
		t.ZigbeeActions(),
		t.ZigbeeStates(),
		t.HomeAssistantStates(),
		t.ZWaveActions(),
		t.Custom(),
	}
}
