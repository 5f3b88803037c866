package main

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"jackaroo-server/api"
	"jackaroo-server/config"
	"jackaroo-server/ratelimit"
	"jackaroo-server/room"
	"jackaroo-server/session"
	"jackaroo-server/ws"
)

// setupTestServer brings up the full stack (hub, rooms, sessions, limiter,
// HTTP handlers) against an httptest server, without storage.
func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := config.Defaults()
	cfg.BotDelayMS = 20
	cfg.RateLimit.MaxMessages = 1000

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	rooms := room.NewManager(cfg, rng)
	sessions := session.NewManager(time.Duration(cfg.ReconnectGraceSec) * time.Second)
	limiter := ratelimit.New(
		time.Duration(cfg.RateLimit.WindowMS)*time.Millisecond,
		cfg.RateLimit.MaxMessages,
		time.Duration(cfg.RateLimit.CooldownMS)*time.Millisecond,
	)
	sessions.OnExpire = func(s *session.Session) {
		if s.RoomCode == "" {
			return
		}
		if r, err := rooms.Get(s.RoomCode); err == nil {
			r.SessionExpired(s.ID)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	hub := ws.NewHub(cfg, rooms, sessions, limiter)
	go hub.Run(ctx)

	handler := api.NewHandler(nil, rooms, sessions)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.HandleFunc("/healthz", handler.Health)
	mux.HandleFunc("/api/history", handler.History)

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		cancel()
	})
	return server
}

// connectWS dials the test server's websocket endpoint. query is appended
// verbatim ("" for a fresh anonymous connection).
func connectWS(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// sendMsg sends a JSON message over the WebSocket.
func sendMsg(t *testing.T, conn *websocket.Conn, msg interface{}) {
	t.Helper()
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
}

// readUntil reads messages until one of the wanted type arrives, skipping
// state and timer broadcasts in between.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		var msg map[string]interface{}
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal %q: %v", data, err)
		}
		if msg["type"] == typ {
			return msg
		}
	}
}

// stateOf pulls the embedded state object out of a GAME_STARTED or
// STATE_UPDATE message.
func stateOf(t *testing.T, msg map[string]interface{}) map[string]interface{} {
	t.Helper()
	state, ok := msg["state"].(map[string]interface{})
	if !ok {
		t.Fatalf("message has no state: %v", msg)
	}
	return state
}

func TestIntegration_TwoPlayerMatchStart(t *testing.T) {
	server := setupTestServer(t)

	conn1 := connectWS(t, server, "")
	readUntil(t, conn1, "SESSION")
	sendMsg(t, conn1, map[string]interface{}{"type": "CREATE_ROOM", "playerCount": 2, "name": "Alice"})
	created := readUntil(t, conn1, "ROOM_CREATED")
	code, _ := created["roomCode"].(string)
	if len(code) != 6 {
		t.Fatalf("room code = %q", code)
	}
	if created["playerIndex"] != float64(0) {
		t.Errorf("creator seat = %v, want 0", created["playerIndex"])
	}

	conn2 := connectWS(t, server, "")
	readUntil(t, conn2, "SESSION")
	sendMsg(t, conn2, map[string]interface{}{"type": "JOIN_ROOM", "roomCode": code, "name": "Bob"})
	joined := readUntil(t, conn2, "ROOM_JOINED")
	if joined["playerIndex"] != float64(1) {
		t.Errorf("joiner seat = %v, want 1", joined["playerIndex"])
	}

	// The second seat fills the room, so the match starts on its own.
	state := stateOf(t, readUntil(t, conn1, "GAME_STARTED"))
	readUntil(t, conn2, "GAME_STARTED")

	players := state["players"].([]interface{})
	if len(players) != 2 {
		t.Fatalf("players = %d, want 2", len(players))
	}
	for seat, raw := range players {
		p := raw.(map[string]interface{})
		if hand := p["hand"].([]interface{}); len(hand) != 4 {
			t.Errorf("seat %d hand = %d cards, want 4", seat, len(hand))
		}
	}

	// Each seat opens with one marble on its start node and three in Base.
	atStart := map[float64]int{}
	inBase := map[float64]int{}
	for _, raw := range state["marbles"].([]interface{}) {
		m := raw.(map[string]interface{})
		owner := m["owner"].(float64)
		loc := m["location"].(map[string]interface{})
		switch loc["kind"] {
		case float64(0):
			inBase[owner]++
		case float64(1):
			atStart[owner]++
		}
	}
	for seat := float64(0); seat < 2; seat++ {
		if atStart[seat] != 1 || inBase[seat] != 3 {
			t.Errorf("seat %v marbles: %d on track, %d in base; want 1 and 3",
				seat, atStart[seat], inBase[seat])
		}
	}

	if state["deckSize"] != float64(44) {
		t.Errorf("deck size = %v, want 44 (52 minus two 4-card hands)", state["deckSize"])
	}
}

func TestIntegration_SoloStartFillsBots(t *testing.T) {
	server := setupTestServer(t)

	conn := connectWS(t, server, "")
	readUntil(t, conn, "SESSION")
	sendMsg(t, conn, map[string]interface{}{"type": "CREATE_ROOM", "playerCount": 4, "name": "Alice"})
	readUntil(t, conn, "ROOM_CREATED")

	sendMsg(t, conn, map[string]interface{}{
		"type":   "GAME_ACTION",
		"action": map[string]interface{}{"type": "START_GAME"},
	})

	state := stateOf(t, readUntil(t, conn, "GAME_STARTED"))
	players := state["players"].([]interface{})
	if len(players) != 4 {
		t.Fatalf("players = %d, want 4", len(players))
	}
	bots := 0
	for _, raw := range players {
		if raw.(map[string]interface{})["bot"] == true {
			bots++
		}
	}
	if bots != 3 {
		t.Errorf("bots = %d, want 3", bots)
	}
}

func TestIntegration_WrongTurnRejected(t *testing.T) {
	server := setupTestServer(t)

	conn1 := connectWS(t, server, "")
	readUntil(t, conn1, "SESSION")
	sendMsg(t, conn1, map[string]interface{}{"type": "CREATE_ROOM", "playerCount": 2, "name": "Alice"})
	created := readUntil(t, conn1, "ROOM_CREATED")
	code := created["roomCode"].(string)

	conn2 := connectWS(t, server, "")
	readUntil(t, conn2, "SESSION")
	sendMsg(t, conn2, map[string]interface{}{"type": "JOIN_ROOM", "roomCode": code, "name": "Bob"})

	state := stateOf(t, readUntil(t, conn1, "GAME_STARTED"))
	readUntil(t, conn2, "GAME_STARTED")

	bystander := conn2
	if state["currentPlayerIndex"] == float64(1) {
		bystander = conn1
	}
	sendMsg(t, bystander, map[string]interface{}{
		"type":   "GAME_ACTION",
		"action": map[string]interface{}{"type": "RESOLVE_TURN"},
	})

	msg := readUntil(t, bystander, "ERROR")
	if msg["code"] != "NOT_YOUR_TURN" {
		t.Errorf("error code = %v, want NOT_YOUR_TURN", msg["code"])
	}
}

func TestIntegration_GameActionOutsideRoom(t *testing.T) {
	server := setupTestServer(t)

	conn := connectWS(t, server, "")
	readUntil(t, conn, "SESSION")
	sendMsg(t, conn, map[string]interface{}{
		"type":   "GAME_ACTION",
		"action": map[string]interface{}{"type": "RESOLVE_TURN"},
	})

	msg := readUntil(t, conn, "ERROR")
	if msg["code"] != "NOT_IN_ROOM" {
		t.Errorf("error code = %v, want NOT_IN_ROOM", msg["code"])
	}
}

func TestIntegration_PingPong(t *testing.T) {
	server := setupTestServer(t)

	conn := connectWS(t, server, "")
	readUntil(t, conn, "SESSION")
	sendMsg(t, conn, map[string]interface{}{"type": "PING"})
	readUntil(t, conn, "PONG")
}

func TestIntegration_SessionResume(t *testing.T) {
	server := setupTestServer(t)

	conn1 := connectWS(t, server, "")
	readUntil(t, conn1, "SESSION")
	sendMsg(t, conn1, map[string]interface{}{"type": "CREATE_ROOM", "playerCount": 2, "name": "Alice"})
	created := readUntil(t, conn1, "ROOM_CREATED")
	code := created["roomCode"].(string)

	conn2 := connectWS(t, server, "")
	sess := readUntil(t, conn2, "SESSION")
	sessionID := sess["sessionId"].(string)
	sendMsg(t, conn2, map[string]interface{}{"type": "JOIN_ROOM", "roomCode": code, "name": "Bob"})
	readUntil(t, conn2, "GAME_STARTED")

	conn2.Close()
	time.Sleep(100 * time.Millisecond)

	// Reconnect with the old session id: same identity, same seat, and a
	// fresh state snapshot.
	conn3 := connectWS(t, server, "?session="+sessionID)
	resumed := readUntil(t, conn3, "SESSION")
	if resumed["sessionId"] != sessionID {
		t.Fatalf("resumed session = %v, want %v", resumed["sessionId"], sessionID)
	}
	state := stateOf(t, readUntil(t, conn3, "STATE_UPDATE"))
	if state["you"] != float64(1) {
		t.Errorf("resumed seat = %v, want 1", state["you"])
	}
}

func TestIntegration_HealthEndpoint(t *testing.T) {
	server := setupTestServer(t)

	conn := connectWS(t, server, "")
	readUntil(t, conn, "SESSION")
	sendMsg(t, conn, map[string]interface{}{"type": "CREATE_ROOM", "playerCount": 2, "name": "Alice"})
	readUntil(t, conn, "ROOM_CREATED")

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v", body["status"])
	}
	if body["rooms"] != float64(1) {
		t.Errorf("rooms = %v, want 1", body["rooms"])
	}
}

func TestIntegration_HistoryWithoutStorage(t *testing.T) {
	server := setupTestServer(t)

	resp, err := http.Get(server.URL + "/api/history")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var records []interface{}
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("records = %d, want none without a database", len(records))
	}
}
