package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nerrad567/babycare-core/internal/event"
	"github.com/nerrad567/babycare-core/internal/infrastructure/mqtt"
)

type fakeResolver struct {
	action string
	ok     bool
	err    error

	deviceID    string
	triggerType string
}

func (r *fakeResolver) Resolve(_ context.Context, deviceID, triggerType string) (string, bool, error) {
	r.deviceID = deviceID
	r.triggerType = triggerType
	return r.action, r.ok, r.err
}

type fakeAppender struct {
	nextID int64
	err    error
	added  []event.NewEvent
}

func (a *fakeAppender) Add(_ context.Context, e event.NewEvent) (int64, error) {
	if a.err != nil {
		return 0, a.err
	}
	a.added = append(a.added, e)
	a.nextID++
	return a.nextID, nil
}

type published struct {
	topic    string
	payload  []byte
	retained bool
}

type fakePublisher struct {
	messages []published
	err      error
}

func (p *fakePublisher) PublishEvent(topic string, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, published{topic: topic, payload: payload})
	return nil
}

func (p *fakePublisher) PublishRetained(topic string, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, published{topic: topic, payload: payload, retained: true})
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func newTestPipeline(resolver *fakeResolver, store *fakeAppender, publisher *fakePublisher) *Pipeline {
	return NewPipeline(Config{
		Normalizer:  NewNormalizer("baby_care_tracker"),
		Resolver:    resolver,
		Store:       store,
		Publisher:   publisher,
		Topics:      mqtt.Topics{Prefix: "baby_care_tracker"},
		HADiscovery: true,
		Version:     "test",
		Logger:      nopLogger{},
	})
}

func TestHandleMessageRecordsEvent(t *testing.T) {
	resolver := &fakeResolver{action: event.TypeSleepStart, ok: true}
	store := &fakeAppender{}
	publisher := &fakePublisher{}
	p := newTestPipeline(resolver, store, publisher)

	var got Notification
	p.SetOnDomainEvent(func(n Notification) { got = n })

	err := p.HandleMessage("zigbee2mqtt/nursery_button/action", []byte(`{"action":"single"}`))
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	if resolver.deviceID != "zigbee2mqtt_nursery_button" || resolver.triggerType != "action_single" {
		t.Errorf("resolver called with %s/%s", resolver.deviceID, resolver.triggerType)
	}

	if len(store.added) != 1 {
		t.Fatalf("expected 1 stored event, got %d", len(store.added))
	}
	stored := store.added[0]
	if stored.Type != event.TypeSleepStart {
		t.Errorf("stored type: got %q", stored.Type)
	}
	if stored.DeviceSource != "zigbee2mqtt_nursery_button" {
		t.Errorf("device source: got %q", stored.DeviceSource)
	}
	if !strings.Contains(string(stored.TriggerData), `"action":"single"`) {
		t.Errorf("trigger data: got %s", stored.TriggerData)
	}

	if got.ID != 1 || got.Type != event.TypeSleepStart {
		t.Errorf("notification: got %+v", got)
	}
}

func TestHandleMessagePublishesEventAndDiscovery(t *testing.T) {
	resolver := &fakeResolver{action: event.TypeSleepStart, ok: true}
	store := &fakeAppender{}
	publisher := &fakePublisher{}
	p := newTestPipeline(resolver, store, publisher)

	if err := p.HandleMessage("zigbee2mqtt/nursery_button/action", []byte(`{"action":"single"}`)); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	if len(publisher.messages) != 2 {
		t.Fatalf("expected event + discovery publish, got %d messages", len(publisher.messages))
	}

	evt := publisher.messages[0]
	if evt.topic != "baby_care_tracker/events/sleep_start" {
		t.Errorf("event topic: got %q", evt.topic)
	}
	if evt.retained {
		t.Error("event publish should not be retained")
	}

	disc := publisher.messages[1]
	if disc.topic != "homeassistant/sensor/baby_care_tracker_sleep_start/config" {
		t.Errorf("discovery topic: got %q", disc.topic)
	}
	if !disc.retained {
		t.Error("discovery config should be retained")
	}
	if !strings.Contains(string(disc.payload), "Baby Care Sleep Start") {
		t.Errorf("discovery payload: got %s", disc.payload)
	}
}

func TestDiscoveryIdentifiersFollowTopicPrefix(t *testing.T) {
	resolver := &fakeResolver{action: event.TypeSleepStart, ok: true}
	store := &fakeAppender{}
	publisher := &fakePublisher{}
	p := NewPipeline(Config{
		Normalizer:  NewNormalizer("nursery_tracker"),
		Resolver:    resolver,
		Store:       store,
		Publisher:   publisher,
		Topics:      mqtt.Topics{Prefix: "nursery_tracker"},
		HADiscovery: true,
		Version:     "test",
		Logger:      nopLogger{},
	})

	if err := p.HandleMessage("zigbee2mqtt/nursery_button/action", []byte(`{"action":"single"}`)); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	var disc *published
	for i := range publisher.messages {
		if publisher.messages[i].retained {
			disc = &publisher.messages[i]
		}
	}
	if disc == nil {
		t.Fatal("no discovery config published")
	}

	// Two instances with different prefixes must not collide in Home
	// Assistant, so the unique id and device identifiers follow the
	// configured prefix.
	payload := string(disc.payload)
	if !strings.Contains(payload, `"unique_id":"nursery_tracker_sleep_start"`) {
		t.Errorf("unique_id does not follow prefix: %s", payload)
	}
	if !strings.Contains(payload, `"identifiers":["nursery_tracker"]`) {
		t.Errorf("identifiers do not follow prefix: %s", payload)
	}
}

func TestHandleMessageDiscoveryPublishedOnce(t *testing.T) {
	resolver := &fakeResolver{action: event.TypeDiaperPee, ok: true}
	store := &fakeAppender{}
	publisher := &fakePublisher{}
	p := newTestPipeline(resolver, store, publisher)

	for i := 0; i < 3; i++ {
		if err := p.HandleMessage("zigbee2mqtt/nursery_button/action", []byte(`{"action":"single"}`)); err != nil {
			t.Fatalf("HandleMessage: %v", err)
		}
	}

	var retained int
	for _, m := range publisher.messages {
		if m.retained {
			retained++
		}
	}
	if retained != 1 {
		t.Errorf("expected 1 retained discovery publish, got %d", retained)
	}
}

func TestHandleMessageUnmappedTriggerDropped(t *testing.T) {
	resolver := &fakeResolver{ok: false}
	store := &fakeAppender{}
	p := newTestPipeline(resolver, store, &fakePublisher{})

	if err := p.HandleMessage("zigbee2mqtt/nursery_button/action", []byte(`{"action":"single"}`)); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(store.added) != 0 {
		t.Errorf("unmapped trigger stored %d events", len(store.added))
	}
}

func TestHandleMessageUnparseableTopicDropped(t *testing.T) {
	resolver := &fakeResolver{action: event.TypeSleepStart, ok: true}
	store := &fakeAppender{}
	p := newTestPipeline(resolver, store, &fakePublisher{})

	if err := p.HandleMessage("tasmota/plug/STATE", []byte(`{"state":"ON"}`)); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if resolver.deviceID != "" {
		t.Error("resolver should not be called for unknown topics")
	}
	if len(store.added) != 0 {
		t.Errorf("unknown topic stored %d events", len(store.added))
	}
}

func TestHandleMessageResolverErrorPropagates(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("db locked")}
	p := newTestPipeline(resolver, &fakeAppender{}, &fakePublisher{})

	if err := p.HandleMessage("zigbee2mqtt/nursery_button/action", []byte(`{"action":"single"}`)); err == nil {
		t.Fatal("expected resolver error")
	}
}

func TestHandleMessageStoreErrorPropagates(t *testing.T) {
	resolver := &fakeResolver{action: event.TypeSleepStart, ok: true}
	store := &fakeAppender{err: errors.New("disk full")}
	publisher := &fakePublisher{}
	p := newTestPipeline(resolver, store, publisher)

	if err := p.HandleMessage("zigbee2mqtt/nursery_button/action", []byte(`{"action":"single"}`)); err == nil {
		t.Fatal("expected store error")
	}
	if len(publisher.messages) != 0 {
		t.Error("nothing should publish when the append fails")
	}
}

func TestHandleMessagePublishFailureIsNotFatal(t *testing.T) {
	resolver := &fakeResolver{action: event.TypeSleepStart, ok: true}
	store := &fakeAppender{}
	publisher := &fakePublisher{err: errors.New("broker down")}
	p := newTestPipeline(resolver, store, publisher)

	if err := p.HandleMessage("zigbee2mqtt/nursery_button/action", []byte(`{"action":"single"}`)); err != nil {
		t.Fatalf("publish failure should not fail ingestion: %v", err)
	}
	if len(store.added) != 1 {
		t.Errorf("event should still be stored, got %d", len(store.added))
	}
}
