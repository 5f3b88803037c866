package ws

import (
	"encoding/json"
	"errors"
	"testing"

	"jackaroo-server/game"
	"jackaroo-server/gameerrors"
)

func TestInboundEnvelopeKeepsRawPayload(t *testing.T) {
	data := []byte(`{"type":"JOIN_ROOM","roomCode":"ABC123","name":"Alice"}`)
	var env InboundEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatal(err)
	}
	if env.Type != "JOIN_ROOM" {
		t.Errorf("type = %q", env.Type)
	}
	var msg JoinRoomMsg
	if err := json.Unmarshal(env.Raw, &msg); err != nil {
		t.Fatal(err)
	}
	if msg.RoomCode != "ABC123" || msg.Name != "Alice" {
		t.Errorf("payload = %+v", msg)
	}
}

func TestParseGameInput(t *testing.T) {
	mk := func(kind game.InputKind, set func(*game.Input)) game.Input {
		in := game.NewInput(kind, -1)
		if set != nil {
			set(&in)
		}
		return in
	}
	tests := []struct {
		name string
		raw  string
		want game.Input
	}{
		{
			name: "select card",
			raw:  `{"type":"SELECT_CARD","cardId":17}`,
			want: mk(game.InputSelectCard, func(in *game.Input) { in.CardID = 17 }),
		},
		{
			name: "select marble",
			raw:  `{"type":"SELECT_MARBLE","marbleId":3}`,
			want: mk(game.InputSelectMarble, func(in *game.Input) { in.MarbleID = 3 }),
		},
		{
			name: "target node zero survives",
			raw:  `{"type":"SELECT_TARGET_NODE","targetNode":0}`,
			want: mk(game.InputSelectTargetNode, func(in *game.Input) { in.Node = 0 }),
		},
		{
			name: "step count",
			raw:  `{"type":"SELECT_STEP_COUNT","stepCount":4}`,
			want: mk(game.InputSelectStepCount, func(in *game.Input) { in.Steps = 4 }),
		},
		{
			name: "ten decision with attack",
			raw:  `{"type":"RESOLVE_10_DECISION","attack":true}`,
			want: mk(game.InputResolveTen, func(in *game.Input) { in.Attack = true }),
		},
		{
			name: "swap marble",
			raw:  `{"type":"CONFIRM_MOVE","marbleId":2,"swapMarbleId":6}`,
			want: mk(game.InputConfirmMove, func(in *game.Input) { in.MarbleID = 2; in.SwapMarble = 6 }),
		},
		{
			name: "resolve turn",
			raw:  `{"type":"RESOLVE_TURN"}`,
			want: mk(game.InputResolveTurn, nil),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseGameInput(json.RawMessage(tt.raw))
			if err != nil {
				t.Fatal(err)
			}
			if got.Kind != tt.want.Kind || got.CardID != tt.want.CardID ||
				got.MarbleID != tt.want.MarbleID || got.Node != tt.want.Node ||
				got.Steps != tt.want.Steps || got.SwapMarble != tt.want.SwapMarble ||
				got.Attack != tt.want.Attack {
				t.Errorf("parsed %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseGameInputRejectsUnknown(t *testing.T) {
	for _, raw := range []string{
		`{"type":"HACK_THE_DECK"}`,
		`{"type":"START_GAME"}`, // routed at the connection layer, never an input
		`not json`,
	} {
		if _, err := parseGameInput(json.RawMessage(raw)); !errors.Is(err, gameerrors.ErrInvalidMessage) {
			t.Errorf("parseGameInput(%s) err = %v, want invalid message", raw, err)
		}
	}
}
