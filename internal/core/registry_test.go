package core

import (
	"sort"
	"sync"
	"testing"
)

func memberIDs(members []Member) []string {
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ConnID)
	}
	sort.Strings(ids)
	return ids
}

func TestRegistryJoinAndMembers(t *testing.T) {
	r := NewRegistry("en")
	a := NewClient("a", 1)
	b := NewClient("b", 1)

	if prev := r.Join(a, "R1", "ua", "EN "); prev != "" {
		t.Fatalf("expected no previous room, got %q", prev)
	}
	r.Join(b, "R1", "ub", "")

	members := r.MembersOf("R1")
	if got := memberIDs(members); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected members %v", got)
	}
	for _, m := range members {
		if m.Language != "en" {
			t.Fatalf("expected normalized/default language en, got %q for %s", m.Language, m.ConnID)
		}
	}
	if r.Rooms() != 1 || r.Connections() != 2 {
		t.Fatalf("expected 1 room and 2 connections, got %d/%d", r.Rooms(), r.Connections())
	}
}

func TestRegistryRejoinMovesConnection(t *testing.T) {
	r := NewRegistry("en")
	a := NewClient("a", 1)

	r.Join(a, "R1", "ua", "hi")
	if prev := r.Join(a, "R2", "ua", "hi"); prev != "R1" {
		t.Fatalf("expected previous room R1, got %q", prev)
	}
	if len(r.MembersOf("R1")) != 0 {
		t.Fatalf("connection still listed in R1")
	}
	if len(r.MembersOf("R2")) != 1 {
		t.Fatalf("connection missing from R2")
	}
	if r.Rooms() != 1 {
		t.Fatalf("empty room not dropped, rooms=%d", r.Rooms())
	}
}

func TestRegistryLeave(t *testing.T) {
	r := NewRegistry("en")
	a := NewClient("a", 1)
	r.Join(a, "R1", "ua", "fr")

	m, ok := r.Leave("a")
	if !ok || m.RoomID != "R1" || m.Language != "fr" {
		t.Fatalf("unexpected leave result %+v ok=%v", m, ok)
	}
	if len(r.MembersOf("R1")) != 0 {
		t.Fatalf("left connection still a member")
	}
	if _, ok := r.Lookup("a"); ok {
		t.Fatalf("left connection still resolvable")
	}
	if _, ok := r.Leave("a"); ok {
		t.Fatalf("second leave should report nothing")
	}
}

func TestRegistrySnapshotIsDetached(t *testing.T) {
	r := NewRegistry("en")
	a := NewClient("a", 1)
	r.Join(a, "R1", "ua", "hi")

	snap := r.MembersOf("R1")
	snap[0].Language = "de"

	m, _ := r.Lookup("a")
	if m.Language != "hi" {
		t.Fatalf("snapshot mutation leaked into registry: %q", m.Language)
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry("en")

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := NewClient(string(rune('A'+i)), 1)
			r.Join(c, "R1", c.ID, "en")
			_ = r.MembersOf("R1")
			if i%2 == 0 {
				r.Leave(c.ID)
			}
		}(i)
	}
	wg.Wait()

	if got := len(r.MembersOf("R1")); got != 25 {
		t.Fatalf("expected 25 members, got %d", got)
	}
}
