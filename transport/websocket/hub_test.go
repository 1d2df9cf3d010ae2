package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/b3dgs/lionengine-sub021/game/engine"
)

func newTestClient(hub *Hub, sessionID string, buffer int) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, buffer),
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met within timeout")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub()
	if hub.sessions == nil || hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Fatal("NewHub() left a field uninitialized")
	}
	if cap(hub.broadcast) != engine.WebSocketBufferSize {
		t.Errorf("broadcast buffer = %d, want %d", cap(hub.broadcast), engine.WebSocketBufferSize)
	}
}

func TestHubRegisterAndUnregister(t *testing.T) {
	hub := NewHub()
	client1 := newTestClient(hub, "session", 1)
	client2 := newTestClient(hub, "session", 1)

	hub.registerClient(client1)
	hub.registerClient(client2)
	if got := hub.ClientCount("session"); got != 2 {
		t.Fatalf("ClientCount() = %d, want 2", got)
	}

	hub.unregisterClient(client1)
	if got := hub.ClientCount("session"); got != 1 {
		t.Errorf("ClientCount() = %d, want 1", got)
	}
	if _, ok := <-client1.send; ok {
		t.Error("send channel of unregistered client should be closed")
	}

	// unregistering twice is a no-op
	hub.unregisterClient(client1)

	hub.unregisterClient(client2)
	if _, exists := hub.sessions["session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
}

func TestHubBroadcastToSession(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "broadcast-test", 4)
	other := newTestClient(hub, "other", 4)
	hub.registerClient(client)
	hub.registerClient(other)

	state := &engine.State{
		ConfigName: "meadow",
		Width:      10,
		Height:     8,
		Units:      []engine.Unit{{ID: "scout", Profile: "walker", X: 5, Y: 3}},
	}
	hub.BroadcastToSession("broadcast-test", state)
	hub.broadcastMessage(<-hub.broadcast)

	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.SessionID != "broadcast-test" || message.Event != EventStateUpdate {
			t.Errorf("unexpected message %+v", message)
		}
		if message.State == nil || len(message.State.Units) != 1 || message.State.Units[0].X != 5 {
			t.Error("State not correctly transmitted")
		}
	default:
		t.Fatal("No message delivered")
	}

	if len(other.send) != 0 {
		t.Error("other sessions should not receive the update")
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub()
	hub.BroadcastEvent("event-test", EventTilesChanged, "test-data")

	select {
	case message := <-hub.broadcast:
		if message.SessionID != "event-test" || message.Event != EventTilesChanged || message.Data != "test-data" {
			t.Errorf("unexpected message %+v", message)
		}
	default:
		t.Fatal("No broadcast message queued")
	}
}

func TestHubDropsWhenQueueFull(t *testing.T) {
	hub := NewHub()
	for i := 0; i < engine.WebSocketBufferSize+10; i++ {
		hub.BroadcastEvent("flood", "tick", i)
	}
	if len(hub.broadcast) != engine.WebSocketBufferSize {
		t.Errorf("queue length = %d, want %d", len(hub.broadcast), engine.WebSocketBufferSize)
	}
}

func TestHubDisconnectsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := newTestClient(hub, "slow", 1)
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{SessionID: "slow", Event: "first"})
	hub.broadcastMessage(&Message{SessionID: "slow", Event: "second"})

	if hub.ClientCount("slow") != 0 {
		t.Error("client with a full buffer should be disconnected")
	}
}

func TestWebSocketRoundTrip(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=ws-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}

	waitFor(t, func() bool { return hub.ClientCount("ws-test") == 1 })

	hub.BroadcastToSession("ws-test", &engine.State{ConfigName: "meadow", Width: 10, Height: 8})
	hub.BroadcastEvent("ws-test", EventUnitMoved, map[string]int{"steps": 3})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	for _, want := range []string{EventStateUpdate, EventUnitMoved} {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Failed to read WebSocket message: %v", err)
		}
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.Event != want {
			t.Errorf("event = %q, want %q", message.Event, want)
		}
	}

	conn.Close()
	waitFor(t, func() bool { return hub.ClientCount("ws-test") == 0 })
}
