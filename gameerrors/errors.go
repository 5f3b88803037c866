package gameerrors

import "errors"

// Sentinel errors shared across the game, room, session and ws packages to
// avoid circular imports. Each maps to a wire error code via Code.
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room full")
	ErrNotInRoom          = errors.New("not in a room")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrInvalidCard        = errors.New("invalid card")
	ErrInvalidMarble      = errors.New("invalid marble")
	ErrInvalidMove        = errors.New("invalid move")
	ErrGameNotStarted     = errors.New("game not started")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrRateLimited        = errors.New("rate limited")
	ErrInvalidMessage     = errors.New("invalid message")
	ErrValidation         = errors.New("validation error")
	ErrInternal           = errors.New("internal error")
)

// Code returns the wire error code for a sentinel, or INTERNAL_ERROR for
// anything unrecognized.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "ROOM_NOT_FOUND"
	case errors.Is(err, ErrRoomFull):
		return "ROOM_FULL"
	case errors.Is(err, ErrNotInRoom):
		return "NOT_IN_ROOM"
	case errors.Is(err, ErrNotYourTurn):
		return "NOT_YOUR_TURN"
	case errors.Is(err, ErrInvalidCard):
		return "INVALID_CARD"
	case errors.Is(err, ErrInvalidMarble):
		return "INVALID_MARBLE"
	case errors.Is(err, ErrInvalidMove):
		return "INVALID_MOVE"
	case errors.Is(err, ErrGameNotStarted):
		return "GAME_NOT_STARTED"
	case errors.Is(err, ErrGameAlreadyStarted):
		return "GAME_ALREADY_STARTED"
	case errors.Is(err, ErrRateLimited):
		return "RATE_LIMITED"
	case errors.Is(err, ErrInvalidMessage):
		return "INVALID_MESSAGE"
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}
