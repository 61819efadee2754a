package http

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/polychat-server/internal/config"
	"github.com/vovakirdan/polychat-server/internal/core"
	"github.com/vovakirdan/polychat-server/internal/store/sqlite"
)

// createTestStore creates an in-memory SQLite store with schema applied.
func createTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", sqlite.Migrate)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// tagTranslator marks translations with the target language.
type tagTranslator struct{}

func (tagTranslator) Translate(_ context.Context, text, _, target string) string {
	return "[" + target + "] " + text
}

type testEnv struct {
	ts       *httptest.Server
	store    *sqlite.SQLiteStore
	registry *core.Registry
	relay    *core.Relay
}

func startTestServer(t *testing.T) *testEnv {
	t.Helper()

	st := createTestStore(t)
	disabledLogger := zerolog.Nop()

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second
	cfg.Relay.MessagesPerMinute = 0

	registry := core.NewRegistry(cfg.BaseLanguage)
	relay := core.NewRelay(registry, st, st, tagTranslator{}, core.RelayConfig{BaseLanguage: cfg.BaseLanguage}, &disabledLogger)

	server := NewServer(relay, registry, st, &cfg, &disabledLogger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, store: st, registry: registry, relay: relay}
}

func (e *testEnv) wsURL() string {
	return strings.Replace(e.ts.URL, "http", "ws", 1) + "/ws"
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
