package ws

import (
	"encoding/json"

	"jackaroo-server/game"
	"jackaroo-server/gameerrors"
)

// InboundEnvelope is the generic envelope for all client-to-server messages.
// The Type field is used for routing; Raw holds the full JSON payload.
type InboundEnvelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON implements custom unmarshaling to capture the raw payload.
func (e *InboundEnvelope) UnmarshalJSON(data []byte) error {
	type typeOnly struct {
		Type string `json:"type"`
	}
	var t typeOnly
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	e.Type = t.Type
	e.Raw = json.RawMessage(data)
	return nil
}

// --- Client-to-Server message payloads ---

// CreateRoomMsg opens a new room for the given number of seats (2-4).
type CreateRoomMsg struct {
	Type        string `json:"type"`
	PlayerCount int    `json:"playerCount"`
	Name        string `json:"name,omitempty"`
}

// JoinRoomMsg joins an existing room by its 6-character code.
type JoinRoomMsg struct {
	Type     string `json:"type"`
	RoomCode string `json:"roomCode"`
	Name     string `json:"name,omitempty"`
}

// GameActionMsg carries one in-match action; Action is a tagged union keyed
// by its own "type" field.
type GameActionMsg struct {
	Type   string          `json:"type"`
	Action json.RawMessage `json:"action"`
}

// gameAction is the decoded tagged union inside GAME_ACTION.
type gameAction struct {
	Type         string `json:"type"`
	CardID       *int   `json:"cardId"`
	MarbleID     *int   `json:"marbleId"`
	TargetNode   *int   `json:"targetNode"`
	StepCount    *int   `json:"stepCount"`
	SwapMarbleID *int   `json:"swapMarbleId"`
	Attack       bool   `json:"attack"`
}

// parseGameInput maps a wire action onto a state-machine input. START_GAME is
// not an input; the caller handles it before calling this.
func parseGameInput(raw json.RawMessage) (game.Input, error) {
	var a gameAction
	if err := json.Unmarshal(raw, &a); err != nil {
		return game.Input{}, gameerrors.ErrInvalidMessage
	}

	var kind game.InputKind
	switch a.Type {
	case "SELECT_CARD":
		kind = game.InputSelectCard
	case "SELECT_MARBLE":
		kind = game.InputSelectMarble
	case "SELECT_TARGET_NODE":
		kind = game.InputSelectTargetNode
	case "SELECT_STEP_COUNT":
		kind = game.InputSelectStepCount
	case "RESOLVE_10_DECISION":
		kind = game.InputResolveTen
	case "RESOLVE_RED_Q_DECISION":
		kind = game.InputResolveRedQueen
	case "CONFIRM_MOVE":
		kind = game.InputConfirmMove
	case "BURN_CARD":
		kind = game.InputBurnCard
	case "CANCEL_SELECTION":
		kind = game.InputCancelSelection
	case "RESOLVE_TURN":
		kind = game.InputResolveTurn
	default:
		return game.Input{}, gameerrors.ErrInvalidMessage
	}

	in := game.NewInput(kind, -1)
	if a.CardID != nil {
		in.CardID = *a.CardID
	}
	if a.MarbleID != nil {
		in.MarbleID = *a.MarbleID
	}
	if a.TargetNode != nil {
		in.Node = *a.TargetNode
	}
	if a.StepCount != nil {
		in.Steps = *a.StepCount
	}
	if a.SwapMarbleID != nil {
		in.SwapMarble = *a.SwapMarbleID
	}
	in.Attack = a.Attack
	return in, nil
}

// --- Server-to-Client messages ---

// SessionMsg hands the client its session id right after connect, so it can
// resume within the grace window.
type SessionMsg struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
}

// RoomCreatedMsg confirms room creation to the creator.
type RoomCreatedMsg struct {
	Type        string `json:"type"`
	RoomCode    string `json:"roomCode"`
	PlayerIndex int    `json:"playerIndex"`
}

// RoomJoinedMsg confirms a join and lists the seats already taken.
type RoomJoinedMsg struct {
	Type        string   `json:"type"`
	RoomCode    string   `json:"roomCode"`
	PlayerIndex int      `json:"playerIndex"`
	Players     []string `json:"players"`
}

// PongMsg answers an application-level PING.
type PongMsg struct {
	Type string `json:"type"`
}

// ErrorMsg reports a typed failure to one client.
type ErrorMsg struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
