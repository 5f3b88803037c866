package room

import (
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"jackaroo-server/config"
	"jackaroo-server/gameerrors"
)

// codeAlphabet skips easily-confused characters (0/O, 1/I/L).
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
const codeLen = 6

// Manager is the registry of live rooms, keyed by join code.
type Manager struct {
	mu    sync.Mutex
	rooms map[string]*Room
	cfg   *config.Config
	rng   *rand.Rand

	// OnFinished is forwarded onto every created room.
	OnFinished func(*Room, MatchResult)
}

// NewManager creates an empty registry.
func NewManager(cfg *config.Config, rng *rand.Rand) *Manager {
	return &Manager{
		rooms: make(map[string]*Room),
		cfg:   cfg,
		rng:   rng,
	}
}

// Create makes a new room with a fresh code and starts its goroutine.
func (m *Manager) Create(maxPlayers int) (*Room, error) {
	if maxPlayers < 2 || maxPlayers > 4 {
		return nil, gameerrors.ErrValidation
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	code := m.newCode()
	r := NewRoom(code, maxPlayers, m.cfg, rand.New(rand.NewSource(m.rng.Int63())))
	r.OnFinished = m.OnFinished
	m.rooms[code] = r
	go r.Run()
	slog.Info("room created", "tag", "room", "code", code, "maxPlayers", maxPlayers)
	return r, nil
}

// newCode draws codes until one is unused. Caller holds the lock.
func (m *Manager) newCode() string {
	var b strings.Builder
	for {
		b.Reset()
		for i := 0; i < codeLen; i++ {
			b.WriteByte(codeAlphabet[m.rng.Intn(len(codeAlphabet))])
		}
		if _, taken := m.rooms[b.String()]; !taken {
			return b.String()
		}
	}
}

// Get looks up a room by its join code (case-insensitive).
func (m *Manager) Get(code string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[strings.ToUpper(code)]
	if !ok {
		return nil, gameerrors.ErrRoomNotFound
	}
	return r, nil
}

// Remove drops a room from the registry and stops its goroutine.
func (m *Manager) Remove(code string) {
	m.mu.Lock()
	r, ok := m.rooms[code]
	delete(m.rooms, code)
	m.mu.Unlock()
	if ok {
		r.Shutdown()
		slog.Info("room removed", "tag", "room", "code", code)
	}
}

// Count returns the number of registered rooms.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}

// Sweep removes finished rooms and waiting rooms idle past maxIdle. Playing
// rooms are never swept here; abandonment is the room's own call.
func (m *Manager) Sweep(maxIdle time.Duration) int {
	m.mu.Lock()
	cutoff := time.Now().Add(-maxIdle)
	var stale []*Room
	for code, r := range m.rooms {
		st := r.Status()
		if st == StatusFinished || (st == StatusWaiting && r.LastActivity().Before(cutoff)) {
			stale = append(stale, r)
			delete(m.rooms, code)
		}
	}
	m.mu.Unlock()

	for _, r := range stale {
		r.Shutdown()
		slog.Info("room swept", "tag", "room", "code", r.Code)
	}
	return len(stale)
}

// RunSweeper sweeps every interval until stop is closed.
func (m *Manager) RunSweeper(interval, maxIdle time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.Sweep(maxIdle)
		case <-stop:
			return
		}
	}
}
