package ws

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"jackaroo-server/gameerrors"
	"jackaroo-server/room"
	"jackaroo-server/session"
	"jackaroo-server/wsutil"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Client is a middleman between one websocket connection and the hub. The
// durable identity lives in Session; the Client dies with the connection.
type Client struct {
	Hub     *Hub
	Conn    *websocket.Conn
	Send    chan []byte
	Session *session.Session
}

// ReadPump pumps messages from the websocket connection into the dispatcher.
// It runs in its own goroutine per connection.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("read error", "tag", "ws", "err", err)
			}
			break
		}
		c.handleMessage(message)
	}
}

// WritePump pumps messages from the send channel to the websocket connection.
// It runs in its own goroutine per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage is the dispatch boundary: rate limiting, routing, and panic
// recovery all happen here so one bad message can never take the server down.
func (c *Client) handleMessage(data []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("panic in dispatch", "tag", "ws", "session", c.Session.ID, "panic", rec)
			c.sendError(gameerrors.ErrInternal)
		}
	}()

	if !c.Hub.Limiter.Allow(c.Session.ID.String()) {
		c.sendError(gameerrors.ErrRateLimited)
		return
	}

	var envelope InboundEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.sendError(gameerrors.ErrInvalidMessage)
		return
	}

	switch envelope.Type {
	case "CREATE_ROOM":
		c.handleCreateRoom(envelope.Raw)
	case "JOIN_ROOM":
		c.handleJoinRoom(envelope.Raw)
	case "LEAVE_ROOM":
		c.handleLeaveRoom()
	case "GAME_ACTION":
		c.handleGameAction(envelope.Raw)
	case "PING":
		c.sendJSON(PongMsg{Type: "PONG"})
	default:
		c.sendError(fmt.Errorf("%w: unknown type %q", gameerrors.ErrInvalidMessage, envelope.Type))
	}
}

func (c *Client) handleCreateRoom(raw json.RawMessage) {
	var msg CreateRoomMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError(gameerrors.ErrInvalidMessage)
		return
	}
	if _, ok := c.currentRoom(); ok {
		c.sendError(gameerrors.ErrValidation)
		return
	}
	c.applyName(msg.Name)

	r, err := c.Hub.Rooms.Create(msg.PlayerCount)
	if err != nil {
		c.sendError(err)
		return
	}
	seat, _, err := r.Join(c.Session.ID, c.Session.Name, c.Send)
	if err != nil {
		c.sendError(err)
		return
	}
	c.Hub.Sessions.BindRoom(c.Session.ID, r.Code, seat)
	c.sendJSON(RoomCreatedMsg{Type: "ROOM_CREATED", RoomCode: r.Code, PlayerIndex: seat})
}

func (c *Client) handleJoinRoom(raw json.RawMessage) {
	var msg JoinRoomMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError(gameerrors.ErrInvalidMessage)
		return
	}
	if _, ok := c.currentRoom(); ok {
		c.sendError(gameerrors.ErrValidation)
		return
	}
	c.applyName(msg.Name)

	r, err := c.Hub.Rooms.Get(msg.RoomCode)
	if err != nil {
		c.sendError(err)
		return
	}
	seat, players, err := r.Join(c.Session.ID, c.Session.Name, c.Send)
	if err != nil {
		c.sendError(err)
		return
	}
	c.Hub.Sessions.BindRoom(c.Session.ID, r.Code, seat)
	c.sendJSON(RoomJoinedMsg{
		Type:        "ROOM_JOINED",
		RoomCode:    r.Code,
		PlayerIndex: seat,
		Players:     players,
	})
}

func (c *Client) handleLeaveRoom() {
	if !c.Session.InRoom() {
		c.sendError(gameerrors.ErrNotInRoom)
		return
	}
	if r, ok := c.currentRoom(); ok {
		r.Leave(c.Session.ID)
	}
	c.Hub.Sessions.ClearRoom(c.Session.ID)
}

func (c *Client) handleGameAction(raw json.RawMessage) {
	var msg GameActionMsg
	if err := json.Unmarshal(raw, &msg); err != nil || len(msg.Action) == 0 {
		c.sendError(gameerrors.ErrInvalidMessage)
		return
	}
	r, ok := c.currentRoom()
	if !ok {
		c.sendError(gameerrors.ErrNotInRoom)
		return
	}

	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg.Action, &tag); err != nil {
		c.sendError(gameerrors.ErrInvalidMessage)
		return
	}
	if tag.Type == "START_GAME" {
		r.Start(c.Session.ID)
		return
	}

	in, err := parseGameInput(msg.Action)
	if err != nil {
		c.sendError(err)
		return
	}
	r.Submit(c.Session.ID, in)
}

// currentRoom resolves the session's room binding. A binding whose room has
// been swept is cleared on the spot, otherwise the session could never create
// or join another room.
func (c *Client) currentRoom() (*room.Room, bool) {
	if !c.Session.InRoom() {
		return nil, false
	}
	r, err := c.Hub.Rooms.Get(c.Session.RoomCode)
	if err != nil {
		c.Hub.Sessions.ClearRoom(c.Session.ID)
		return nil, false
	}
	return r, true
}

// applyName updates the session's display name when the client supplies one.
// Oversized names are truncated rather than rejected.
func (c *Client) applyName(name string) {
	if name == "" {
		return
	}
	if len(name) > c.Hub.Config.MaxNameLength {
		name = name[:c.Hub.Config.MaxNameLength]
	}
	c.Session.Name = name
}

func (c *Client) sendError(err error) {
	c.sendJSON(ErrorMsg{Type: "ERROR", Code: gameerrors.Code(err), Message: err.Error()})
}

func (c *Client) sendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	wsutil.SafeSend(c.Send, data)
}
