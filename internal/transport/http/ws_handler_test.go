package http

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/polychat-server/internal/config"
	"github.com/vovakirdan/polychat-server/internal/core"
	"github.com/vovakirdan/polychat-server/internal/proto"
)

type outboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func dial(t *testing.T, ctx context.Context, env *testEnv) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.Dial(ctx, env.wsURL(), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func send(t *testing.T, ctx context.Context, conn *websocket.Conn, event string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Event: event, Data: payload}); err != nil {
		t.Fatalf("write %s: %v", event, err)
	}
}

func readFrame(t *testing.T, ctx context.Context, conn *websocket.Conn, event string) json.RawMessage {
	t.Helper()

	for {
		var frame outboundFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			t.Fatalf("read %s: %v", event, err)
		}
		if frame.Event == event {
			return frame.Data
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := startTestServer(t)

	resp, err := env.ts.Client().Get(env.ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "ok" || health.Connections != 0 || health.Rooms != 0 {
		t.Fatalf("unexpected health %+v", health)
	}
}

func TestWebSocketJoinAndTranslatedMessage(t *testing.T) {
	env := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice, err := env.store.CreateUser(ctx, "Alice", "en", "https://img/a.png")
	if err != nil {
		t.Fatalf("create alice: %v", err)
	}
	bob, err := env.store.CreateUser(ctx, "Bob", "hi", "")
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}

	connA := dial(t, ctx, env)
	connB := dial(t, ctx, env)

	send(t, ctx, connA, proto.EventJoin, proto.JoinData{RoomID: "R1", UserID: alice.ID})
	waitFor(t, "alice to join", func() bool { return env.registry.RoomSize("R1") == 1 })
	send(t, ctx, connB, proto.EventJoin, proto.JoinData{RoomID: "R1", UserID: bob.ID})

	var joined proto.UserJoined
	if err := json.Unmarshal(readFrame(t, ctx, connA, proto.EventUserJoined), &joined); err != nil {
		t.Fatalf("decode user-joined: %v", err)
	}
	if joined.UserID != bob.ID || joined.Username != "Bob" {
		t.Fatalf("unexpected user-joined %+v", joined)
	}

	send(t, ctx, connA, proto.EventMessage, proto.MessageData{RoomID: "R1", Text: "Hello"})

	var toB proto.ChatMessage
	if err := json.Unmarshal(readFrame(t, ctx, connB, proto.EventMessage), &toB); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if toB.Text != "[hi] Hello" || toB.TargetLanguage != "hi" || toB.OriginalText != "Hello" {
		t.Fatalf("unexpected translated payload %+v", toB)
	}
	if toB.SenderID != alice.ID || toB.SenderName != "Alice" || toB.Avatar != "https://img/a.png" || toB.OriginalLanguage != "en" {
		t.Fatalf("unexpected sender fields %+v", toB)
	}

	var toA proto.ChatMessage
	if err := json.Unmarshal(readFrame(t, ctx, connA, proto.EventMessage), &toA); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if toA.Text != "Hello" || toA.ID != toB.ID {
		t.Fatalf("unexpected sender echo %+v", toA)
	}

	history, err := env.store.ListMessages(ctx, "R1", 10)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(history) != 1 || history[0].OriginalText != "Hello" || history[0].ID != toB.ID {
		t.Fatalf("unexpected persisted history %+v", history)
	}
}

func TestWebSocketMalformedPayloadKeepsConnection(t *testing.T) {
	env := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := env.store.CreateUser(ctx, "Chloe", "fr", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	conn := dial(t, ctx, env)
	if err := conn.Write(ctx, websocket.MessageText, []byte("not json")); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	send(t, ctx, conn, "dance", map[string]string{"roomId": "R1"})
	send(t, ctx, conn, proto.EventMessage, proto.MessageData{RoomID: "R1", Text: "before join"})
	send(t, ctx, conn, proto.EventJoin, proto.JoinData{RoomID: "R1", UserID: user.ID})
	send(t, ctx, conn, proto.EventMessage, proto.MessageData{RoomID: "R1", Text: "bonjour"})

	var msg proto.ChatMessage
	if err := json.Unmarshal(readFrame(t, ctx, conn, proto.EventMessage), &msg); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if msg.Text != "bonjour" || msg.TargetLanguage != "fr" {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestWebSocketDisconnectLeavesRoom(t *testing.T) {
	env := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, env.wsURL(), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	send(t, ctx, conn, proto.EventJoin, proto.JoinData{RoomID: "R1", UserID: "ghost"})
	waitFor(t, "join", func() bool { return env.registry.RoomSize("R1") == 1 })

	conn.Close(websocket.StatusNormalClosure, "bye")
	waitFor(t, "leave", func() bool { return env.registry.Connections() == 0 })
}

func TestShutdownEndsWebSocketSessions(t *testing.T) {
	st := createTestStore(t)
	disabledLogger := zerolog.Nop()
	cfg := config.Default()

	registry := core.NewRegistry(cfg.BaseLanguage)
	relay := core.NewRelay(registry, st, st, tagTranslator{}, core.RelayConfig{}, &disabledLogger)
	server := NewServer(relay, registry, st, &cfg, &disabledLogger)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() { _ = server.Serve(ln) }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws://"+ln.Addr().String()+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")
	send(t, ctx, conn, proto.EventJoin, proto.JoinData{RoomID: "R1", UserID: "ghost"})
	waitFor(t, "join", func() bool { return registry.Connections() == 1 })

	if err := server.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	waitFor(t, "ws handler to exit", func() bool { return registry.Connections() == 0 })
	relay.Close()

	if _, _, err := conn.Read(ctx); err == nil {
		t.Fatalf("expected the server to close the session")
	}
}
