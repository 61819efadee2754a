package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vovakirdan/polychat-server/internal/store"
)

func doJSON(t *testing.T, env *testEnv, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	env.ts.Config.Handler.ServeHTTP(resp, req)
	return resp
}

func TestCreateRoom(t *testing.T) {
	env := startTestServer(t)

	resp := doJSON(t, env, http.MethodPost, "/api/rooms", `{"name":"my-test-room"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var roomResp RoomResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &roomResp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if roomResp.Name != "my-test-room" || roomResp.ID == "" {
		t.Errorf("unexpected room %+v", roomResp)
	}

	// Duplicate name
	resp = doJSON(t, env, http.MethodPost, "/api/rooms", `{"name":"my-test-room"}`)
	if resp.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", resp.Code)
	}

	// Missing name
	resp = doJSON(t, env, http.MethodPost, "/api/rooms", `{}`)
	if resp.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", resp.Code)
	}
}

func TestListRooms(t *testing.T) {
	env := startTestServer(t)

	for _, name := range []string{"general", "random"} {
		if resp := doJSON(t, env, http.MethodPost, "/api/rooms", `{"name":"`+name+`"}`); resp.Code != http.StatusCreated {
			t.Fatalf("create %s: %d", name, resp.Code)
		}
	}

	resp := doJSON(t, env, http.MethodGet, "/api/rooms", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var rooms []RoomResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &rooms); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(rooms) != 2 || rooms[0].Name != "general" || rooms[1].Name != "random" {
		t.Errorf("unexpected rooms %+v", rooms)
	}
}

func TestListMessages(t *testing.T) {
	env := startTestServer(t)
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		_, err := env.store.CreateMessage(ctx, store.NewMessage{
			RoomID:           "R1",
			SenderID:         "A",
			SenderName:       "Alice",
			OriginalLanguage: "en",
			OriginalText:     text,
		})
		if err != nil {
			t.Fatalf("create message: %v", err)
		}
	}

	resp := doJSON(t, env, http.MethodGet, "/api/rooms/R1/messages?limit=2", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var messages []MessageResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &messages); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(messages) != 2 || messages[0].OriginalText != "two" || messages[1].OriginalText != "three" {
		t.Errorf("expected latest two oldest first, got %+v", messages)
	}

	if resp := doJSON(t, env, http.MethodGet, "/api/rooms/R1/messages?limit=zero", ""); resp.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for bad limit, got %d", resp.Code)
	}
}
