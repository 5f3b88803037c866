package room

import (
	"encoding/json"

	"jackaroo-server/game"
	"jackaroo-server/wsutil"
)

// Server-to-client messages originated by the room. Room-lifecycle replies
// (ROOM_CREATED, ROOM_JOINED, PONG) live in the ws package, which owns the
// connection handshake.

type stateUpdateMsg struct {
	Type  string         `json:"type"`
	State game.StateView `json:"state"`
}

type gameStartedMsg struct {
	Type  string         `json:"type"`
	State game.StateView `json:"state"`
}

type playerJoinedMsg struct {
	Type        string `json:"type"`
	PlayerIndex int    `json:"playerIndex"`
	Name        string `json:"name"`
}

type playerLeftMsg struct {
	Type        string `json:"type"`
	PlayerIndex int    `json:"playerIndex"`
}

type timerUpdateMsg struct {
	Type               string `json:"type"`
	TimeRemaining      int    `json:"timeRemaining"`
	CurrentPlayerIndex int    `json:"currentPlayerIndex"`
}

type autoModeChangedMsg struct {
	Type        string `json:"type"`
	PlayerIndex int    `json:"playerIndex"`
	IsAutoMode  bool   `json:"isAutoMode"`
}

type errorMsg struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// send marshals msg and delivers it to one session's channel without
// blocking; disconnected seats (nil channel) are skipped silently.
func send(ch chan []byte, msg interface{}) {
	if ch == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	wsutil.SafeSend(ch, data)
}
