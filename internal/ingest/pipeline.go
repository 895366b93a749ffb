package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/babycare-core/internal/event"
	"github.com/nerrad567/babycare-core/internal/infrastructure/mqtt"
)

// resolveTimeout bounds the database work done inside the delivery
// callback for a single message.
const resolveTimeout = 5 * time.Second

// Resolver looks up the baby care action for a device trigger.
// Implemented by mapping.SQLiteRepository.
type Resolver interface {
	Resolve(ctx context.Context, deviceID, triggerType string) (action string, ok bool, err error)
}

// Appender appends domain events to the durable store.
// Implemented by event.SQLiteRepository.
type Appender interface {
	Add(ctx context.Context, e event.NewEvent) (int64, error)
}

// Publisher publishes messages back to the broker.
// Implemented by mqtt.Client.
type Publisher interface {
	PublishEvent(topic string, payload []byte) error
	PublishRetained(topic string, payload []byte) error
}

// Logger is the subset of logging.Logger the pipeline needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Pipeline is the ingestion path: normalize a raw broker message,
// resolve it against the mapping table, append the resulting domain
// event, publish it back onto the application topic family, and notify
// the registered callback.
//
// HandleMessage runs synchronously inside the broker delivery callback,
// which preserves per-device arrival order for the sleep session state
// machine downstream.
type Pipeline struct {
	normalizer  *Normalizer
	resolver    Resolver
	store       Appender
	publisher   Publisher
	topics      mqtt.Topics
	haDiscovery bool
	version     string
	logger      Logger

	// onEvent is invoked after each successful append (websocket hub).
	onEvent   func(Notification)
	onEventMu sync.RWMutex

	// announced tracks actions whose HA discovery config has been
	// published this process; the config is retained so once is enough.
	announced   map[string]bool
	announcedMu sync.Mutex
}

// Config assembles a Pipeline's collaborators.
type Config struct {
	Normalizer  *Normalizer
	Resolver    Resolver
	Store       Appender
	Publisher   Publisher
	Topics      mqtt.Topics
	HADiscovery bool
	Version     string
	Logger      Logger
}

// NewPipeline creates the ingestion pipeline.
func NewPipeline(cfg Config) *Pipeline {
	return &Pipeline{
		normalizer:  cfg.Normalizer,
		resolver:    cfg.Resolver,
		store:       cfg.Store,
		publisher:   cfg.Publisher,
		topics:      cfg.Topics,
		haDiscovery: cfg.HADiscovery,
		version:     cfg.Version,
		logger:      cfg.Logger,
		announced:   make(map[string]bool),
	}
}

// SetOnDomainEvent registers a callback invoked once per successfully
// normalized-and-mapped message, after the event is durably stored.
func (p *Pipeline) SetOnDomainEvent(callback func(Notification)) {
	p.onEventMu.Lock()
	p.onEvent = callback
	p.onEventMu.Unlock()
}

// HandleMessage processes one raw broker message. It satisfies
// mqtt.MessageHandler.
//
// Unparseable payloads, unrecognized topics, and unmapped triggers all
// drop the message without error. A store append failure is returned:
// domain events are the durable record and the connector logs the loss.
func (p *Pipeline) HandleMessage(topic string, payload []byte) error {
	norm, ok := p.normalizer.Normalize(topic, payload, time.Now())
	if !ok {
		p.logger.Debug("message produced no event", "topic", topic)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	action, matched, err := p.resolver.Resolve(ctx, norm.DeviceID, norm.EventType)
	if err != nil {
		return fmt.Errorf("resolving %s/%s: %w", norm.DeviceID, norm.EventType, err)
	}
	if !matched {
		p.logger.Debug("no mapping for trigger",
			"device_id", norm.DeviceID,
			"trigger_type", norm.EventType,
		)
		return nil
	}

	triggerData, err := json.Marshal(norm.RawData)
	if err != nil {
		// RawData came out of json.Unmarshal; this should not happen.
		triggerData = nil
	}

	id, err := p.store.Add(ctx, event.NewEvent{
		Type:         action,
		OccurredAt:   norm.OccurredAt,
		DeviceSource: norm.DeviceID,
		TriggerData:  triggerData,
	})
	if err != nil {
		return fmt.Errorf("appending %s event: %w", action, err)
	}

	p.logger.Info("recorded baby care event",
		"event_type", action,
		"event_id", id,
		"device_id", norm.DeviceID,
	)

	// Best-effort publishes: a broker hiccup must not fail ingestion of
	// an already-stored event.
	p.publishEvent(action, norm)
	if p.haDiscovery {
		p.publishDiscovery(action)
	}

	p.onEventMu.RLock()
	callback := p.onEvent
	p.onEventMu.RUnlock()
	if callback != nil {
		callback(Notification{
			ID:         id,
			Type:       action,
			OccurredAt: norm.OccurredAt,
			DeviceID:   norm.DeviceID,
		})
	}

	return nil
}

// publishEvent announces a recorded event on the application topic family.
func (p *Pipeline) publishEvent(action string, norm NormalizedEvent) {
	payload, err := json.Marshal(map[string]any{
		"event_type": action,
		"timestamp":  norm.OccurredAt.Unix(),
		"data":       norm.RawData,
	})
	if err != nil {
		return
	}

	if err := p.publisher.PublishEvent(p.topics.Event(action), payload); err != nil {
		p.logger.Warn("publishing event failed", "event_type", action, "error", err)
	}
}

// publishDiscovery publishes the retained Home Assistant discovery
// config for an action's sensor, once per process.
func (p *Pipeline) publishDiscovery(action string) {
	p.announcedMu.Lock()
	already := p.announced[action]
	p.announced[action] = true
	p.announcedMu.Unlock()
	if already {
		return
	}

	config := map[string]any{
		"name":           "Baby Care " + titleCase(action),
		"state_topic":    p.topics.Event(action),
		"value_template": "{{ value_json.timestamp }}",
		"unique_id":      fmt.Sprintf("%s_%s", p.topics.Root(), action),
		"device": map[string]any{
			"identifiers":  []string{p.topics.Root()},
			"name":         "Baby Care Tracker",
			"model":        "Add-on v" + p.version,
			"manufacturer": "Baby Care Tracker",
		},
	}

	payload, err := json.Marshal(config)
	if err != nil {
		return
	}

	if err := p.publisher.PublishRetained(p.topics.DiscoveryConfig(action), payload); err != nil {
		p.logger.Warn("publishing discovery config failed", "action", action, "error", err)
	}
}

// titleCase turns "sleep_start" into "Sleep Start" for sensor names.
func titleCase(action string) string {
	words := strings.Split(action, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
