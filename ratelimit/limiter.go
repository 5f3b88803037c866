// Package ratelimit implements the per-session sliding-window abuse guard.
// One Limiter instance is shared across all sessions and rooms, so all
// methods are safe for concurrent use.
package ratelimit

import (
	"sync"
	"time"
)

type entry struct {
	times        []time.Time
	blockedUntil time.Time
	lastSeen     time.Time
}

// Limiter counts messages per key within a trailing window. Exceeding the
// maximum blocks the key for a fixed cooldown, during which every message is
// rejected; when the cooldown expires the window starts fresh.
type Limiter struct {
	mu       sync.Mutex
	window   time.Duration
	max      int
	cooldown time.Duration
	entries  map[string]*entry

	now func() time.Time // overridable for tests
}

// New creates a Limiter allowing max messages per window, with the given
// cooldown after abuse.
func New(window time.Duration, max int, cooldown time.Duration) *Limiter {
	return &Limiter{
		window:   window,
		max:      max,
		cooldown: cooldown,
		entries:  make(map[string]*entry),
		now:      time.Now,
	}
}

// Allow records one inbound message for key and reports whether it should be
// processed.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{}
		l.entries[key] = e
	}
	e.lastSeen = now

	if !e.blockedUntil.IsZero() {
		if now.Before(e.blockedUntil) {
			return false
		}
		e.blockedUntil = time.Time{}
		e.times = e.times[:0]
	}

	cutoff := now.Add(-l.window)
	kept := e.times[:0]
	for _, t := range e.times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	e.times = kept

	if len(e.times) >= l.max {
		e.blockedUntil = now.Add(l.cooldown)
		return false
	}
	e.times = append(e.times, now)
	return true
}

// Sweep drops entries idle for longer than maxIdle. Called periodically so
// departed sessions do not accumulate.
func (l *Limiter) Sweep(maxIdle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-maxIdle)
	removed := 0
	for key, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// RunSweeper sweeps every interval until stop is closed.
func (l *Limiter) RunSweeper(interval, maxIdle time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.Sweep(maxIdle)
		case <-stop:
			return
		}
	}
}
