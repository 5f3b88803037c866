package ratelimit

import (
	"testing"
	"time"
)

// fakeClock drives the limiter's notion of time.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(window time.Duration, max int, cooldown time.Duration) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	l := New(window, max, cooldown)
	l.now = clock.now
	return l, clock
}

func TestAllowWithinWindow(t *testing.T) {
	l, _ := newTestLimiter(10*time.Second, 3, 30*time.Second)

	for i := 0; i < 3; i++ {
		if !l.Allow("a") {
			t.Fatalf("message %d rejected within limit", i)
		}
	}
	if l.Allow("a") {
		t.Fatal("message over the limit allowed")
	}
}

func TestWindowSlides(t *testing.T) {
	l, clock := newTestLimiter(10*time.Second, 2, 30*time.Second)

	l.Allow("a")
	l.Allow("a")
	clock.advance(11 * time.Second)
	if !l.Allow("a") {
		t.Fatal("message rejected after the window slid past old entries")
	}
}

func TestCooldownBlocksEverything(t *testing.T) {
	l, clock := newTestLimiter(10*time.Second, 1, 30*time.Second)

	l.Allow("a")
	if l.Allow("a") {
		t.Fatal("over-limit message allowed")
	}
	// Fully inside the cooldown: still blocked even after the window slid.
	clock.advance(15 * time.Second)
	if l.Allow("a") {
		t.Fatal("message allowed during cooldown")
	}
	// Past the cooldown the window restarts fresh.
	clock.advance(20 * time.Second)
	if !l.Allow("a") {
		t.Fatal("message rejected after cooldown expired")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(10*time.Second, 1, 30*time.Second)

	l.Allow("a")
	if l.Allow("a") {
		t.Fatal("key a over limit allowed")
	}
	if !l.Allow("b") {
		t.Fatal("key b punished for key a's abuse")
	}
}

func TestSweepDropsIdleEntries(t *testing.T) {
	l, clock := newTestLimiter(10*time.Second, 5, 30*time.Second)

	l.Allow("a")
	l.Allow("b")
	clock.advance(2 * time.Minute)
	l.Allow("b")

	if removed := l.Sweep(time.Minute); removed != 1 {
		t.Fatalf("swept %d entries, want 1", removed)
	}
	if _, ok := l.entries["a"]; ok {
		t.Error("idle entry survived the sweep")
	}
	if _, ok := l.entries["b"]; !ok {
		t.Error("active entry was swept")
	}
}
