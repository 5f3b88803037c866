package game

import (
	"fmt"
	"math/rand"
)

// HandSize is the normal per-round deal; every third round deals BonusHandSize.
const (
	HandSize      = 4
	BonusHandSize = 5
)

// State is the single authoritative unit of truth for one match. The room
// owning it is the only writer; everything in this package is pure
// computation over it (no I/O, no wall clock, randomness only via rng).
type State struct {
	Board   *Board
	Players []*Player
	Marbles map[int]*Marble

	Deck    []Card
	Discard []Card

	Current int
	Round   int
	Phase   Phase

	Selection       selection
	Split           splitSeven
	PendingAttacker int
	RepeatTurn      bool
	Winner          int

	Log []string

	rng *rand.Rand
}

// NewState builds the initial state for a match: board topology, one shuffled
// deck, four marbles per seat (one on the start node, three in Base), and the
// first round dealt.
func NewState(trackLen, homePathLen int, names []string, bots []bool, rng *rand.Rand) *State {
	seats := len(names)
	board := NewBoard(trackLen, homePathLen, seats)

	s := &State{
		Board:           board,
		Players:         make([]*Player, seats),
		Marbles:         make(map[int]*Marble, seats*4),
		Round:           1,
		Phase:           PhaseTurnStart,
		Selection:       emptySelection(),
		PendingAttacker: -1,
		Winner:          -1,
		rng:             rng,
	}

	for seat := 0; seat < seats; seat++ {
		p := &Player{
			Seat:  seat,
			Name:  names[seat],
			Color: SeatColors[seat],
			Team:  seat % 2,
			Bot:   bots[seat],
		}
		for i := 0; i < 4; i++ {
			id := seat*4 + i
			m := &Marble{ID: id, Owner: seat, Color: p.Color, Location: Base()}
			if i == 0 {
				m.Location = At(board.StartNode(seat))
			}
			s.Marbles[id] = m
			p.Marbles[i] = id
		}
		s.Players[seat] = p
	}

	s.Deck = Shuffle(NewDeck(), rng)
	s.dealRound(HandSize)
	s.Current = rng.Intn(seats)
	s.Phase = PhasePlayerInput
	return s
}

// dealRound deals n cards to every seat from the deck top.
func (s *State) dealRound(n int) {
	for _, p := range s.Players {
		var hand []Card
		s.Deck, hand = Deal(s.Deck, n)
		p.Hand = hand
	}
}

// dealSizeFor returns the deal size for a round: 5 every third round, else 4.
func dealSizeFor(round int) int {
	if round%3 == 0 {
		return BonusHandSize
	}
	return HandSize
}

// recycleDiscard shuffles the discard pile back under the deck.
func (s *State) recycleDiscard() {
	if len(s.Discard) == 0 {
		return
	}
	recycled := Shuffle(s.Discard, s.rng)
	s.Deck = append(s.Deck, recycled...)
	s.Discard = nil
}

// player returns the seat's player, or nil for an invalid seat.
func (s *State) player(seat int) *Player {
	if seat < 0 || seat >= len(s.Players) {
		return nil
	}
	return s.Players[seat]
}

// CurrentPlayer returns the acting player.
func (s *State) CurrentPlayer() *Player { return s.Players[s.Current] }

// marbleAt returns the marble occupying a node, or nil.
func (s *State) marbleAt(node int) *Marble {
	for _, m := range s.Marbles {
		if m.Location.Kind == LocNode && m.Location.Node == node {
			return m
		}
	}
	return nil
}

// handCard returns the card with the given id from the seat's hand.
func (s *State) handCard(seat, cardID int) (Card, bool) {
	p := s.player(seat)
	if p == nil {
		return Card{}, false
	}
	for _, c := range p.Hand {
		if c.ID == cardID {
			return c, true
		}
	}
	return Card{}, false
}

// removeFromHand takes the card out of the seat's hand and returns it.
func (s *State) removeFromHand(seat, cardID int) (Card, bool) {
	p := s.player(seat)
	if p == nil {
		return Card{}, false
	}
	for i, c := range p.Hand {
		if c.ID == cardID {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return c, true
		}
	}
	return Card{}, false
}

// discardCard moves a card from the seat's hand onto the discard pile.
func (s *State) discardCard(seat, cardID int) bool {
	c, ok := s.removeFromHand(seat, cardID)
	if !ok {
		return false
	}
	s.Discard = append(s.Discard, c)
	return true
}

// allHandsEmpty reports whether every seat has played out its hand.
func (s *State) allHandsEmpty() bool {
	for _, p := range s.Players {
		if len(p.Hand) > 0 {
			return false
		}
	}
	return true
}

// nextSeat returns the next seat in order after from, skipping seats whose
// hands are empty. Attacks consume cards out of turn, so asymmetric hand
// sizes mid-round are normal. Falls back to the plain successor when every
// other hand is empty.
func (s *State) nextSeat(from int) int {
	n := len(s.Players)
	for i := 1; i <= n; i++ {
		seat := (from + i) % n
		if len(s.Players[seat].Hand) > 0 {
			return seat
		}
	}
	return (from + 1) % n
}

// marblesHome counts the seat's finished marbles.
func (s *State) marblesHome(seat int) int {
	count := 0
	for _, id := range s.Players[seat].Marbles {
		if s.Marbles[id].Location.Kind == LocHome {
			count++
		}
	}
	return count
}

// CardCount returns hands + deck + discard; always 52 for a valid state.
func (s *State) CardCount() int {
	total := len(s.Deck) + len(s.Discard)
	for _, p := range s.Players {
		total += len(p.Hand)
	}
	return total
}

// appendLog records one line in the action log.
func (s *State) appendLog(format string, args ...interface{}) {
	s.Log = append(s.Log, fmt.Sprintf(format, args...))
}
