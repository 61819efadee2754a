package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vovakirdan/polychat-server/internal/store"
	"github.com/vovakirdan/polychat-server/internal/translate/provider"
)

func mustEvent(t *testing.T, c *Client, kind EventKind) *Event {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for {
		ev, err := c.Next(ctx)
		if err != nil {
			t.Fatalf("expected event kind %v not received: %v", kind, err)
		}
		if ev.Kind == kind {
			return ev
		}
	}
}

func mustNoEvent(t *testing.T, c *Client) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if ev, err := c.Next(ctx); err == nil {
		t.Fatalf("unexpected event %v", ev.Kind)
	}
}

type fakeUsers struct {
	users map[string]*store.User
	err   error
}

func newFakeUsers(users ...store.User) *fakeUsers {
	f := &fakeUsers{users: make(map[string]*store.User)}
	for i := range users {
		u := users[i]
		f.users[u.ID] = &u
	}
	return f
}

func (f *fakeUsers) GetUser(_ context.Context, id string) (*store.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

type fakeMessages struct {
	mu    sync.Mutex
	saved []store.Message
	err   error
	now   time.Time
}

func (f *fakeMessages) CreateMessage(_ context.Context, msg store.NewMessage) (*store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	created := f.now
	if created.IsZero() {
		created = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	}
	saved := store.Message{
		ID:               fmt.Sprintf("m%d", len(f.saved)+1),
		RoomID:           msg.RoomID,
		SenderID:         msg.SenderID,
		SenderName:       msg.SenderName,
		OriginalLanguage: msg.OriginalLanguage,
		OriginalText:     msg.OriginalText,
		CreatedAt:        created,
	}
	f.saved = append(f.saved, saved)
	return &saved, nil
}

func (f *fakeMessages) Saved() []store.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]store.Message(nil), f.saved...)
}

type translateCall struct {
	Text, Source, Target string
}

// fakeTranslator answers "[target] text" unless a fixed answer is set for the target.
type fakeTranslator struct {
	mu      sync.Mutex
	calls   []translateCall
	answers map[string]string
	delay   func(target string) time.Duration // called under mu
}

func (f *fakeTranslator) Translate(_ context.Context, text, source, target string) string {
	f.mu.Lock()
	f.calls = append(f.calls, translateCall{Text: text, Source: source, Target: target})
	answer, ok := f.answers[target]
	var wait time.Duration
	if f.delay != nil {
		wait = f.delay(target)
	}
	f.mu.Unlock()

	time.Sleep(wait)
	if ok {
		return answer
	}
	return "[" + target + "] " + text
}

func (f *fakeTranslator) Calls() []translateCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]translateCall(nil), f.calls...)
}

var errStoreDown = errors.New("store down")

type relayFixture struct {
	registry   *Registry
	users      *fakeUsers
	messages   *fakeMessages
	translator *fakeTranslator
	relay      *Relay
}

func newRelayFixture(users ...store.User) *relayFixture {
	f := &relayFixture{
		registry:   NewRegistry("en"),
		users:      newFakeUsers(users...),
		messages:   &fakeMessages{},
		translator: &fakeTranslator{},
	}
	f.relay = NewRelay(f.registry, f.users, f.messages, f.translator, RelayConfig{BaseLanguage: "en", FanoutLimit: 4}, nil)
	return f
}

func (f *relayFixture) join(t *testing.T, connID, roomID, userID string) *Client {
	t.Helper()

	c := NewClient(connID, 16)
	if err := f.relay.Join(context.Background(), c, roomID, userID); err != nil {
		t.Fatalf("join %s: %v", connID, err)
	}
	return c
}

// countingProvider is a translation backend that answers slowly and counts calls.
type countingProvider struct {
	text  string
	delay time.Duration
	calls atomic.Int32
}

func (p *countingProvider) Name() string { return "counting" }

func (p *countingProvider) Translate(_ context.Context, _ provider.Request) (string, error) {
	p.calls.Add(1)
	time.Sleep(p.delay)
	return p.text, nil
}
