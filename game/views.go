package game

// Per-recipient state views. Every broadcast builds one view per seat:
// other players' hand cards collapse to opaque placeholders and the deck
// contents are never serialized, only its size.

// CardView is a card as shown to a client. Hidden cards carry no identity;
// their ID is -1 so card id 0 stays representable.
type CardView struct {
	Hidden bool   `json:"hidden,omitempty"`
	ID     int    `json:"id"`
	Suit   string `json:"suit,omitempty"`
	Rank   string `json:"rank,omitempty"`
	Value  int    `json:"value,omitempty"`
}

func hiddenCard() CardView { return CardView{Hidden: true, ID: -1} }

// MarbleView is a marble as shown to a client. Marble positions are public.
type MarbleView struct {
	ID       int      `json:"id"`
	Owner    int      `json:"owner"`
	Color    string   `json:"color"`
	Location Location `json:"location"`
	Safe     bool     `json:"safe"`
}

// PlayerView is one seat as shown to a client.
type PlayerView struct {
	Seat     int        `json:"seat"`
	Name     string     `json:"name"`
	Color    string     `json:"color"`
	Bot      bool       `json:"bot"`
	Finished bool       `json:"finished"`
	Hand     []CardView `json:"hand"`
}

// SplitView mirrors the split-seven sub-state for the client.
type SplitView struct {
	Active         bool `json:"active"`
	FirstMarble    int  `json:"firstMarble"`
	RemainingSteps int  `json:"remainingSteps"`
}

// StateView is the full redacted state sent to one seat.
type StateView struct {
	TrackLen    int `json:"trackLen"`
	HomePathLen int `json:"homePathLen"`
	Seats       int `json:"seats"`

	You      int          `json:"you"`
	Players  []PlayerView `json:"players"`
	Marbles  []MarbleView `json:"marbles"`
	DeckSize int          `json:"deckSize"`

	DiscardTop *CardView `json:"discardTop,omitempty"`

	Current         int    `json:"currentPlayerIndex"`
	Round           int    `json:"round"`
	Phase           string `json:"phase"`
	RepeatTurn      bool   `json:"repeatTurn"`
	PendingAttacker int    `json:"pendingAttacker"`
	Winner          int    `json:"winner"`

	Split SplitView `json:"split"`

	// LegalMoves is populated only on the acting seat's own view; the UI
	// uses it for hints and never computes legality itself.
	LegalMoves   []MoveCandidate `json:"legalMoves,omitempty"`
	SelectedCard int             `json:"selectedCard"`

	Log []string `json:"log,omitempty"`
}

// viewLogTail caps how much of the action log rides along on every update.
const viewLogTail = 20

func cardView(c Card) CardView {
	return CardView{ID: c.ID, Suit: c.Suit.String(), Rank: c.Rank.String(), Value: c.Value()}
}

// ViewFor builds the redacted state for one seat.
func (s *State) ViewFor(seat int) StateView {
	v := StateView{
		TrackLen:        s.Board.TrackLen,
		HomePathLen:     s.Board.HomePathLen,
		Seats:           s.Board.Seats,
		You:             seat,
		Players:         make([]PlayerView, len(s.Players)),
		Marbles:         make([]MarbleView, 0, len(s.Marbles)),
		DeckSize:        len(s.Deck),
		Current:         s.Current,
		Round:           s.Round,
		Phase:           s.Phase.String(),
		RepeatTurn:      s.RepeatTurn,
		PendingAttacker: s.PendingAttacker,
		Winner:          s.Winner,
		Split: SplitView{
			Active:         s.Split.Active,
			FirstMarble:    s.Split.FirstMarble,
			RemainingSteps: s.Split.RemainingSteps,
		},
		SelectedCard: -1,
	}

	for i, p := range s.Players {
		pv := PlayerView{
			Seat:     p.Seat,
			Name:     p.Name,
			Color:    p.Color,
			Bot:      p.Bot,
			Finished: p.Finished,
			Hand:     make([]CardView, len(p.Hand)),
		}
		for j, c := range p.Hand {
			if p.Seat == seat {
				pv.Hand[j] = cardView(c)
			} else {
				pv.Hand[j] = hiddenCard()
			}
		}
		v.Players[i] = pv
	}

	// Stable marble order: by id.
	for id := 0; id < len(s.Players)*4; id++ {
		m := s.Marbles[id]
		v.Marbles = append(v.Marbles, MarbleView{
			ID:       m.ID,
			Owner:    m.Owner,
			Color:    m.Color,
			Location: m.Location,
			Safe:     m.Safe(s.Board),
		})
	}

	if len(s.Discard) > 0 {
		top := cardView(s.Discard[len(s.Discard)-1])
		v.DiscardTop = &top
	}

	if seat == s.Current {
		v.LegalMoves = s.Selection.LegalMoves
		v.SelectedCard = s.Selection.CardID
	}

	if n := len(s.Log); n > 0 {
		start := n - viewLogTail
		if start < 0 {
			start = 0
		}
		v.Log = s.Log[start:]
	}

	return v
}
