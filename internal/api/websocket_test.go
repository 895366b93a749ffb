package api

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/babycare-core/internal/analytics"
	"github.com/nerrad567/babycare-core/internal/infrastructure/config"
	"github.com/nerrad567/babycare-core/internal/infrastructure/logging"
)

// dialTestSocket spins up the server, connects a WebSocket client, and
// returns the hub so tests can broadcast into it.
func dialTestSocket(t *testing.T) (*Hub, *websocket.Conn) {
	t.Helper()

	srv, err := New(Deps{
		Config: config.APIConfig{
			Host: "127.0.0.1",
			Port: 8099,
			CORS: config.CORSConfig{AllowedOrigins: []string{"*"}},
		},
		WS:        config.WebSocketConfig{PingInterval: 30, PongTimeout: 60, MaxMessageSize: 4096},
		Logger:    logging.Default(),
		Events:    newFakeEventStore(),
		Mappings:  newFakeMappingStore(),
		Analytics: analytics.NewEngine(newFakeEventStore(), analytics.Config{}),
		Database:  &fakeHealth{},
		Version:   "test",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	hub := srv.Hub()
	ts := httptest.NewServer(srv.buildRouter())
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing %s: %v", wsURL, err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	return hub, conn
}

// readMessage reads one frame with a deadline so a missing broadcast
// fails the test instead of hanging it.
func readMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("setting read deadline: %v", err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading frame: %v", err)
	}

	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decoding frame %q: %v", data, err)
	}
	return msg
}

func TestWebSocketLiveStatsBroadcast(t *testing.T) {
	hub, conn := dialTestSocket(t)

	sub := WSMessage{
		Type:    WSTypeSubscribe,
		ID:      "1",
		Payload: WSSubscribePayload{Channels: []string{ChannelLiveStats}},
	}
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatalf("subscribing: %v", err)
	}

	// The response confirms the subscription is applied before we
	// broadcast.
	resp := readMessage(t, conn)
	if resp.Type != WSTypeResponse {
		t.Fatalf("subscribe response type: got %q", resp.Type)
	}

	hub.Broadcast(ChannelLiveStats, map[string]string{"current_status": "sleeping"})

	msg := readMessage(t, conn)
	if msg.Type != WSTypeEvent {
		t.Errorf("frame type: got %q", msg.Type)
	}
	if msg.EventType != ChannelLiveStats {
		t.Errorf("frame channel: got %q", msg.EventType)
	}
	payload, ok := msg.Payload.(map[string]any)
	if !ok {
		t.Fatalf("payload: got %T", msg.Payload)
	}
	if payload["current_status"] != "sleeping" {
		t.Errorf("payload status: got %v", payload["current_status"])
	}
}

func TestWebSocketEventRecordedAutoSubscribed(t *testing.T) {
	hub, conn := dialTestSocket(t)

	// Broadcast may race the client registration that happens during the
	// upgrade handshake; wait for the hub to see the client first.
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Broadcast(ChannelEventRecorded, map[string]string{"event_type": "feeding_left"})

	msg := readMessage(t, conn)
	if msg.EventType != ChannelEventRecorded {
		t.Errorf("frame channel: got %q", msg.EventType)
	}
}

func TestWebSocketUnsubscribedChannelNotDelivered(t *testing.T) {
	hub, conn := dialTestSocket(t)

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Live stats requires an explicit subscribe; only the recorded-event
	// frame should arrive.
	hub.Broadcast(ChannelLiveStats, map[string]string{"current_status": "awake"})
	hub.Broadcast(ChannelEventRecorded, map[string]string{"event_type": "wake_up"})

	msg := readMessage(t, conn)
	if msg.EventType != ChannelEventRecorded {
		t.Errorf("expected only the recorded event, got channel %q", msg.EventType)
	}
}
