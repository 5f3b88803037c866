package room

import (
	"math/rand"
	"strings"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(testConfig(), rand.New(rand.NewSource(11)))
}

func TestCreateAssignsUniqueCodes(t *testing.T) {
	m := newTestManager(t)
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		r, err := m.Create(4)
		if err != nil {
			t.Fatal(err)
		}
		defer r.Shutdown()
		if len(r.Code) != codeLen {
			t.Fatalf("code %q has length %d", r.Code, len(r.Code))
		}
		if strings.ContainsAny(r.Code, "0O1IL") {
			t.Errorf("code %q uses a confusable character", r.Code)
		}
		if seen[r.Code] {
			t.Fatalf("duplicate code %q", r.Code)
		}
		seen[r.Code] = true
	}
	if m.Count() != 20 {
		t.Errorf("count = %d, want 20", m.Count())
	}
}

func TestCreateRejectsBadPlayerCount(t *testing.T) {
	m := newTestManager(t)
	for _, n := range []int{0, 1, 5} {
		if _, err := m.Create(n); err == nil {
			t.Errorf("Create(%d) accepted", n)
		}
	}
}

func TestGetIsCaseInsensitive(t *testing.T) {
	m := newTestManager(t)
	r, err := m.Create(2)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Shutdown()

	got, err := m.Get(strings.ToLower(r.Code))
	if err != nil || got != r {
		t.Errorf("Get(lowercase) = %v, %v", got, err)
	}
	if _, err := m.Get("NOSUCH"); err == nil {
		t.Error("Get of unknown code succeeded")
	}
}

func TestSweepRemovesFinishedAndIdleRooms(t *testing.T) {
	m := newTestManager(t)

	finished, _ := m.Create(2)
	alice, bob := newTestPlayer(), newTestPlayer()
	finished.Join(alice.id, "Alice", alice.send)
	finished.Join(bob.id, "Bob", bob.send)
	nextOfType(t, alice.send, "GAME_STARTED")
	finished.Leave(alice.id)
	finished.Leave(bob.id)
	waitForStatus(t, finished, StatusFinished)

	idle, _ := m.Create(2)
	carol := newTestPlayer()
	idle.Join(carol.id, "Carol", carol.send)

	playing, _ := m.Create(2)
	dave, erin := newTestPlayer(), newTestPlayer()
	playing.Join(dave.id, "Dave", dave.send)
	playing.Join(erin.id, "Erin", erin.send)
	nextOfType(t, dave.send, "GAME_STARTED")

	// maxIdle of zero makes every waiting room stale immediately; playing
	// rooms must still survive.
	if removed := m.Sweep(0); removed != 2 {
		t.Fatalf("swept %d rooms, want 2", removed)
	}
	if _, err := m.Get(playing.Code); err != nil {
		t.Error("playing room was swept")
	}
	if _, err := m.Get(finished.Code); err == nil {
		t.Error("finished room survived the sweep")
	}
	if _, err := m.Get(idle.Code); err == nil {
		t.Error("idle waiting room survived the sweep")
	}
	playing.Shutdown()
}

func waitForStatus(t *testing.T, r *Room, want Status) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if r.Status() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("room %s never reached status %v", r.Code, want)
}
