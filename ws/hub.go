package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"jackaroo-server/auth"
	"jackaroo-server/config"
	"jackaroo-server/ratelimit"
	"jackaroo-server/room"
	"jackaroo-server/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for development; restrict in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub maintains the set of active clients and owns connection setup: session
// creation, resume, and the teardown that starts the reconnection window.
type Hub struct {
	Clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client

	Rooms    *room.Manager
	Sessions *session.Manager
	Limiter  *ratelimit.Limiter
	Config   *config.Config
}

// NewHub creates a new Hub.
func NewHub(cfg *config.Config, rooms *room.Manager, sessions *session.Manager, limiter *ratelimit.Limiter) *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Rooms:      rooms,
		Sessions:   sessions,
		Limiter:    limiter,
		Config:     cfg,
	}
}

// Run starts the hub's main loop. Should be run as a goroutine. When ctx is
// cancelled the hub stops accepting registrations.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			slog.Info("shutdown signal received, stopping", "tag", "hub")
			return
		case client := <-h.Register:
			h.Clients[client] = true
			slog.Info("client connected", "tag", "hub", "total", len(h.Clients))

		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				close(client.Send)
				slog.Info("client disconnected", "tag", "hub", "total", len(h.Clients))

				// Keep the session alive for the grace window; the room just
				// stops sending to the seat.
				h.Sessions.MarkDisconnected(client.Session.ID)
				if client.Session.InRoom() {
					if r, err := h.Rooms.Get(client.Session.RoomCode); err == nil {
						r.SessionDisconnected(client.Session.ID)
					}
				}
			}
		}
	}
}

// ServeWS handles WebSocket upgrade requests and creates a new Client. A
// `session` query parameter resumes a disconnected session within its grace
// window; a `token` parameter attaches a verified identity.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("upgrade error", "tag", "hub", "err", err)
		return
	}

	send := make(chan []byte, 256)

	var sess *session.Session
	if raw := r.URL.Query().Get("session"); raw != "" {
		if id, perr := uuid.Parse(raw); perr == nil {
			if resumed, rerr := h.Sessions.Resume(id, send); rerr == nil {
				sess = resumed
			}
		}
	}
	if sess == nil {
		name, userID := h.identify(r)
		sess = h.Sessions.Create(name, userID, send)
	}

	client := &Client{Hub: h, Conn: conn, Send: send, Session: sess}
	h.Register <- client

	go client.WritePump()
	go client.ReadPump()

	if data, err := json.Marshal(SessionMsg{Type: "SESSION", SessionID: sess.ID.String()}); err == nil {
		send <- data
	}
	if sess.InRoom() {
		if room, err := h.Rooms.Get(sess.RoomCode); err == nil {
			room.SessionResumed(sess.ID, send)
		}
	}
}

// identify resolves the connecting player's name and user id from an optional
// token. Invalid tokens fall back to anonymous rather than refusing play.
func (h *Hub) identify(r *http.Request) (name, userID string) {
	name = "Player"
	token := r.URL.Query().Get("token")
	if token == "" || h.Config.AuthBaseURL == "" {
		return name, ""
	}
	claims, err := auth.ValidateToken(h.Config.AuthBaseURL, token)
	if err != nil {
		slog.Warn("token rejected", "tag", "hub", "err", err)
		return name, ""
	}
	return auth.DisplayNameFromClaims(claims, name), auth.UserIDFromClaims(claims)
}
