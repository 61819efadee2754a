package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value    string
	storedAt time.Time
}

// Memory is an in-process cache with lazy expiry.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates an in-memory cache. A ttl of zero or less disables expiry.
func NewMemory(ttl time.Duration) *Memory {
	if ttl < 0 {
		ttl = 0
	}
	return &Memory{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *Memory) expired(e entry, now time.Time) bool {
	return m.ttl > 0 && now.Sub(e.storedAt) > m.ttl
}

// Get returns a live entry. Expired entries are removed on the way out.
func (m *Memory) Get(_ context.Context, key string) (string, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return "", false
	}

	now := m.now()
	if !m.expired(e, now) {
		return e.value, true
	}

	m.mu.Lock()
	// a concurrent Set may have refreshed the entry
	if cur, ok := m.entries[key]; ok && m.expired(cur, now) {
		delete(m.entries, key)
	}
	m.mu.Unlock()
	return "", false
}

// Set stores value under key.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.entries[key] = entry{value: value, storedAt: m.now()}
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Sweep drops every expired entry and returns how many were removed.
func (m *Memory) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}

	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, e := range m.entries {
		if m.expired(e, now) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Memory) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 || m.ttl <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-ctx.Done():
			return
		}
	}
}

var _ Cache = (*Memory)(nil)
