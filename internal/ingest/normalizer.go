package ingest

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/nerrad567/babycare-core/internal/infrastructure/mqtt"
)

// Normalizer turns raw broker messages into NormalizedEvents.
//
// It holds a registered table of {prefix, parser} dialects and
// dispatches by longest matching topic prefix. Normalize is a pure
// function of its inputs; the Normalizer itself is immutable after
// construction and safe for concurrent use.
type Normalizer struct {
	dialects []dialect
}

// NewNormalizer creates a Normalizer with the four standard dialects
// registered: Zigbee2MQTT, Home Assistant states, Z-Wave, and the
// application's custom family under appPrefix.
//
// Parameters:
//   - appPrefix: The custom topic family root (e.g., "baby_care_tracker")
func NewNormalizer(appPrefix string) *Normalizer {
	if appPrefix == "" {
		appPrefix = mqtt.DefaultPrefix
	}

	n := &Normalizer{}
	n.register(mqtt.TopicPrefixZigbee+"/", parseZigbee)
	n.register(mqtt.TopicPrefixHomeAssistant+"/", parseHomeAssistant)
	n.register(mqtt.TopicPrefixZWave+"/", parseZWave)
	n.register(appPrefix+"/", newCustomParser())
	return n
}

// register adds a dialect, keeping the table sorted longest prefix
// first so dispatch is a simple scan.
func (n *Normalizer) register(prefix string, parse parseFunc) {
	n.dialects = append(n.dialects, dialect{prefix: prefix, parse: parse})
	sort.SliceStable(n.dialects, func(i, j int) bool {
		return len(n.dialects[i].prefix) > len(n.dialects[j].prefix)
	})
}

// Normalize parses a raw broker message into a NormalizedEvent.
//
// The payload is decoded as a JSON object; anything else (plain text,
// JSON scalars) is wrapped as {"value": "<text>"}. An unrecognized
// topic prefix, or a dialect parser finding no usable field, produces
// no event - the message is dropped with ok=false and no error; the
// caller logs at debug level only.
//
// Parameters:
//   - topic: The broker topic the message arrived on
//   - payload: The raw message payload
//   - receivedAt: Message receive time (becomes OccurredAt)
//
// Returns:
//   - NormalizedEvent: The canonical event (zero value when ok=false)
//   - bool: Whether the message produced an event
func (n *Normalizer) Normalize(topic string, payload []byte, receivedAt time.Time) (NormalizedEvent, bool) {
	data := decodePayload(payload)

	for _, d := range n.dialects {
		if !strings.HasPrefix(topic, d.prefix) {
			continue
		}

		deviceID, eventType, ok := d.parse(topic, data)
		if !ok {
			return NormalizedEvent{}, false
		}

		return NormalizedEvent{
			DeviceID:   deviceID,
			EventType:  eventType,
			RawData:    data,
			OccurredAt: receivedAt,
		}, true
	}

	return NormalizedEvent{}, false
}

// decodePayload parses a payload as a JSON object, falling back to
// wrapping the raw text as {"value": <text>}.
func decodePayload(payload []byte) map[string]any {
	var data map[string]any
	if err := json.Unmarshal(payload, &data); err == nil && data != nil {
		return data
	}
	return map[string]any{"value": string(payload)}
}
