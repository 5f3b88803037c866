// Package session tracks connection identity across physical disconnects.
// A dropped connection keeps its session alive for a grace window; a new
// connection presenting the same session id resumes the existing room
// binding and seat.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"jackaroo-server/gameerrors"
)

// Session is one logical player connection.
type Session struct {
	ID     uuid.UUID
	UserID string
	Name   string

	// Send is the live connection's outbound channel; swapped on resume.
	Send chan []byte

	// RoomCode and Seat form the room binding; RoomCode is empty when the
	// session is not in a room.
	RoomCode string
	Seat     int

	Connected      bool
	DisconnectedAt time.Time
}

// InRoom reports whether the session is bound to a room.
func (s *Session) InRoom() bool { return s.RoomCode != "" }

// Manager owns all sessions. Shared across rooms; all methods are safe for
// concurrent use.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	grace    time.Duration

	// OnExpire is called (outside the lock) when a disconnected session's
	// grace window elapses; the ws layer uses it to release room slots.
	OnExpire func(*Session)

	now func() time.Time
}

// NewManager creates a Manager with the given reconnection grace window.
func NewManager(grace time.Duration) *Manager {
	return &Manager{
		sessions: make(map[uuid.UUID]*Session),
		grace:    grace,
		now:      time.Now,
	}
}

// Create registers a fresh session for a new connection.
func (m *Manager) Create(name, userID string, send chan []byte) *Session {
	s := &Session{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Send:      send,
		Seat:      -1,
		Connected: true,
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get looks up a session by id.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// BindRoom records the session's room binding.
func (m *Manager) BindRoom(id uuid.UUID, roomCode string, seat int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.RoomCode = roomCode
		s.Seat = seat
	}
}

// ClearRoom removes the session's room binding.
func (m *Manager) ClearRoom(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.RoomCode = ""
		s.Seat = -1
	}
}

// MarkDisconnected starts the session's grace window instead of evicting it.
func (m *Manager) MarkDisconnected(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.Connected = false
		s.DisconnectedAt = m.now()
	}
}

// Resume attaches a fresh physical connection to an existing session. Fails
// when the session is unknown, still connected, or past its grace window.
func (m *Manager) Resume(id uuid.UUID, send chan []byte) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, gameerrors.ErrValidation
	}
	if s.Connected {
		return nil, gameerrors.ErrValidation
	}
	if m.now().Sub(s.DisconnectedAt) > m.grace {
		return nil, gameerrors.ErrValidation
	}
	s.Connected = true
	s.Send = send
	s.DisconnectedAt = time.Time{}
	return s, nil
}

// Remove drops a session immediately (explicit leave or expiry).
func (m *Manager) Remove(id uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Sweep releases every disconnected session whose grace window has elapsed
// and returns them. OnExpire is invoked for each outside the lock.
func (m *Manager) Sweep() []*Session {
	m.mu.Lock()
	cutoff := m.now().Add(-m.grace)
	var expired []*Session
	for id, s := range m.sessions {
		if !s.Connected && !s.DisconnectedAt.IsZero() && s.DisconnectedAt.Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		slog.Info("session expired", "tag", "session", "id", s.ID, "room", s.RoomCode)
		if m.OnExpire != nil {
			m.OnExpire(s)
		}
	}
	return expired
}

// RunSweeper sweeps every interval until stop is closed.
func (m *Manager) RunSweeper(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-stop:
			return
		}
	}
}

// Count returns the number of live sessions (for health reporting).
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
