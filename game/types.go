package game

// LocationKind says where a marble currently is.
type LocationKind int

const (
	// LocBase is the holding area for marbles not yet on the track.
	LocBase LocationKind = iota
	// LocNode means the marble sits on a board node (Location.Node is set).
	LocNode
	// LocHome means the marble has finished the race.
	LocHome
)

// Location is a marble's position: Base, Home, or a board node id.
type Location struct {
	Kind LocationKind `json:"kind"`
	Node int          `json:"node,omitempty"`
}

// Base returns the Base location.
func Base() Location { return Location{Kind: LocBase} }

// Home returns the Home location.
func Home() Location { return Location{Kind: LocHome} }

// At returns a node location.
func At(node int) Location { return Location{Kind: LocNode, Node: node} }

// Marble is one of a player's four pieces. Marbles are created once per
// match and only ever relocated.
type Marble struct {
	ID       int      `json:"id"`
	Owner    int      `json:"owner"` // seat index
	Color    string   `json:"color"`
	Location Location `json:"location"`
}

// Safe reports whether the marble cannot be captured or swapped: it is in
// Base or Home, or it sits on a safety-flagged node.
func (m *Marble) Safe(b *Board) bool {
	switch m.Location.Kind {
	case LocBase, LocHome:
		return true
	case LocNode:
		if n, err := b.Node(m.Location.Node); err == nil {
			return n.Safe
		}
	}
	return false
}

// Player is one seat at the table.
type Player struct {
	Seat     int    `json:"seat"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Team     int    `json:"team"`
	Hand     []Card `json:"hand"`
	Marbles  [4]int `json:"marbles"` // marble ids
	Bot      bool   `json:"bot"`
	Finished bool   `json:"finished"`
}

// SeatColors are assigned to seats in order.
var SeatColors = []string{"red", "blue", "green", "yellow"}

// Phase is the turn state machine's state tag.
type Phase int

const (
	PhaseTurnStart Phase = iota
	PhasePlayerInput
	PhaseDecidingTen
	PhaseDecidingRedQueen
	PhaseHandlingSplitSeven
	PhaseResolvingMove
	PhaseOpponentDiscard
	PhaseGameOver
)

// String returns the protocol string for a Phase.
func (p Phase) String() string {
	switch p {
	case PhaseTurnStart:
		return "turn_start"
	case PhasePlayerInput:
		return "player_input"
	case PhaseDecidingTen:
		return "deciding_ten"
	case PhaseDecidingRedQueen:
		return "deciding_red_queen"
	case PhaseHandlingSplitSeven:
		return "handling_split_seven"
	case PhaseResolvingMove:
		return "resolving_move"
	case PhaseOpponentDiscard:
		return "opponent_discard"
	case PhaseGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// InputKind enumerates the player actions the state machine accepts.
type InputKind int

const (
	InputSelectCard InputKind = iota
	InputSelectMarble
	InputSelectTargetNode
	InputSelectStepCount
	InputResolveTen
	InputResolveRedQueen
	InputConfirmMove
	InputBurnCard
	InputCancelSelection
	InputResolveTurn
)

// String returns the wire name of an InputKind.
func (k InputKind) String() string {
	switch k {
	case InputSelectCard:
		return "SELECT_CARD"
	case InputSelectMarble:
		return "SELECT_MARBLE"
	case InputSelectTargetNode:
		return "SELECT_TARGET_NODE"
	case InputSelectStepCount:
		return "SELECT_STEP_COUNT"
	case InputResolveTen:
		return "RESOLVE_10_DECISION"
	case InputResolveRedQueen:
		return "RESOLVE_RED_Q_DECISION"
	case InputConfirmMove:
		return "CONFIRM_MOVE"
	case InputBurnCard:
		return "BURN_CARD"
	case InputCancelSelection:
		return "CANCEL_SELECTION"
	case InputResolveTurn:
		return "RESOLVE_TURN"
	default:
		return "UNKNOWN"
	}
}

// Input is one action submitted by (or on behalf of) a seat.
type Input struct {
	Kind       InputKind
	Seat       int
	CardID     int // -1 when not used
	MarbleID   int // -1 when not used
	Node       int // -1 when not used
	SwapMarble int // -1 when not used
	Steps      int // 0 when not used
	// Attack is the RESOLVE_10_DECISION choice: true = force discard,
	// false = play as a movement card. For RESOLVE_RED_Q_DECISION true
	// confirms the attack.
	Attack bool
}

// NewInput returns an Input with unused reference fields zeroed to -1.
func NewInput(kind InputKind, seat int) Input {
	return Input{Kind: kind, Seat: seat, CardID: -1, MarbleID: -1, Node: -1, SwapMarble: -1}
}

// EventKind classifies side-effect events produced by applying a move.
type EventKind string

const (
	EventMoved          EventKind = "moved"
	EventBaseExit       EventKind = "base_exit"
	EventSwap           EventKind = "swap"
	EventKilledOpponent EventKind = "killedOpponent"
	EventHomeEntry      EventKind = "home_entry"
	EventBonusDraw      EventKind = "bonus_draw"
	EventCardBurned     EventKind = "card_burned"
	EventForceDiscard   EventKind = "force_discard"
	EventOpponentDiscarded EventKind = "opponent_discarded"
	EventRoundStarted   EventKind = "round_started"
	EventGameOver       EventKind = "game_over"
)

// Event is one observable side effect of a state transition, broadcast to
// clients and appended to the action log.
type Event struct {
	Kind     EventKind `json:"kind"`
	Seat     int       `json:"seat"`
	CardID   int       `json:"cardId,omitempty"`
	MarbleID int       `json:"marbleId,omitempty"`
	FromNode int       `json:"fromNode,omitempty"`
	ToNode   int       `json:"toNode,omitempty"`
	Victim   int       `json:"victim,omitempty"` // marble id for captures, seat for attacks
	Round    int       `json:"round,omitempty"`
	Winner   int       `json:"winner,omitempty"`
}

// MoveKind tags a MoveCandidate.
type MoveKind string

const (
	MoveStandard     MoveKind = "standard"
	MoveBaseExit     MoveKind = "base_exit"
	MoveSwap         MoveKind = "swap"
	MoveKillPath     MoveKind = "kill_path"
	MoveSplit        MoveKind = "split_move"
	MoveForceDiscard MoveKind = "force_discard"
)

// MoveCandidate is one legal option for the selected card. Candidates are
// recomputed whenever the selection context changes and never persisted.
type MoveCandidate struct {
	Kind       MoveKind `json:"kind"`
	CardID     int      `json:"cardId"`
	MarbleID   int      `json:"marbleId"`
	DestNode   int      `json:"destNode"`
	SwapMarble int      `json:"swapMarble"`
	Steps      int      `json:"steps"`
	Captures   []int    `json:"captures,omitempty"`
}

// splitSeven tracks the two-leg protocol of the 7 card.
type splitSeven struct {
	Active         bool `json:"active"`
	FirstMarble    int  `json:"firstMarble"`
	FirstSteps     int  `json:"firstSteps"`
	RemainingSteps int  `json:"remainingSteps"`
}

// selection is the transient per-turn selection context.
type selection struct {
	CardID     int             `json:"cardId"`
	MarbleID   int             `json:"marbleId"`
	Steps      int             `json:"steps"`
	LegalMoves []MoveCandidate `json:"legalMoves"`
}

func emptySelection() selection {
	return selection{CardID: -1, MarbleID: -1}
}
