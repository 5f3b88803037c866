package game

import (
	"fmt"
	"math/rand"
)

// Suit is one of the four French suits.
type Suit int

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

// String returns the protocol string for a Suit.
func (s Suit) String() string {
	switch s {
	case Hearts:
		return "hearts"
	case Diamonds:
		return "diamonds"
	case Clubs:
		return "clubs"
	case Spades:
		return "spades"
	default:
		return "unknown"
	}
}

// Red reports whether the suit is hearts or diamonds.
func (s Suit) Red() bool { return s == Hearts || s == Diamonds }

// Rank is A..K as 1..13.
type Rank int

const (
	Ace   Rank = 1
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
)

// String returns the protocol string for a Rank.
func (r Rank) String() string {
	switch r {
	case Ace:
		return "A"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return fmt.Sprintf("%d", int(r))
	}
}

// Card is a single playing card. Immutable once dealt; identified by ID
// across the whole match (0..51).
type Card struct {
	ID   int  `json:"id"`
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// Value returns the numeric value of the rank (A=1 .. K=13).
func (c Card) Value() int { return int(c.Rank) }

// String renders like "7♠" without the suit glyph dependency: "7 of spades".
func (c Card) String() string {
	return c.Rank.String() + " of " + c.Suit.String()
}

// Effect describes what a card can do. The move engine dispatches on this
// descriptor rather than on rank/suit comparisons scattered around.
type Effect struct {
	// Steps is the forward distance; negative means backward.
	Steps int
	// ExitBase allows moving a marble from Base to the start node.
	ExitBase bool
	// Splittable marks the 7: steps may be divided across two marbles.
	Splittable bool
	// AnyRingMarble marks the 5: the mover may select any marble on the
	// ring, not only their own.
	AnyRingMarble bool
	// Swap marks the black Jack: exchange positions with a non-safe
	// opposing ring marble instead of moving.
	Swap bool
	// ForceDiscard offers the force-discard attack. When MoveOptional is
	// also set (the 10) the player chooses between moving and attacking;
	// otherwise (red Queen) the attack is the only use.
	ForceDiscard bool
	MoveOptional bool
	// KillPath marks the King's 13-step sweep capturing every non-safe
	// marble on the traversed path.
	KillPath bool
}

// effectKey distinguishes ranks whose behavior depends on suit color.
type effectKey struct {
	rank Rank
	red  bool
}

var effects = map[effectKey]Effect{
	{Ace, true}:   {Steps: 1, ExitBase: true},
	{Ace, false}:  {Steps: 1, ExitBase: true},
	{2, true}:     {Steps: 2, ExitBase: true},
	{2, false}:    {Steps: 2, ExitBase: true},
	{3, true}:     {Steps: 3},
	{3, false}:    {Steps: 3},
	{4, true}:     {Steps: -4},
	{4, false}:    {Steps: -4},
	{5, true}:     {Steps: 5, AnyRingMarble: true},
	{5, false}:    {Steps: 5, AnyRingMarble: true},
	{6, true}:     {Steps: 6},
	{6, false}:    {Steps: 6},
	{7, true}:     {Steps: 7, Splittable: true},
	{7, false}:    {Steps: 7, Splittable: true},
	{8, true}:     {Steps: 8},
	{8, false}:    {Steps: 8},
	{9, true}:     {Steps: 9},
	{9, false}:    {Steps: 9},
	{10, true}:    {Steps: 10, ForceDiscard: true, MoveOptional: true},
	{10, false}:   {Steps: 10, ForceDiscard: true, MoveOptional: true},
	{Jack, true}:  {Steps: 11},
	{Jack, false}: {Swap: true},
	{Queen, true}: {ForceDiscard: true},
	{Queen, false}: {Steps: 12},
	{King, true}:  {Steps: 13, ExitBase: true, KillPath: true},
	{King, false}: {Steps: 13, ExitBase: true, KillPath: true},
}

// EffectOf returns the movement-effect descriptor for a card.
func EffectOf(c Card) Effect {
	return effects[effectKey{rank: c.Rank, red: c.Suit.Red()}]
}

// NewDeck builds the 52-card deck in canonical order: ids 0..51, suit-major.
func NewDeck() []Card {
	deck := make([]Card, 0, 52)
	for s := Hearts; s <= Spades; s++ {
		for r := Ace; r <= King; r++ {
			deck = append(deck, Card{ID: len(deck), Suit: s, Rank: r})
		}
	}
	return deck
}

// Shuffle returns a new shuffled copy of cards using the supplied source.
// The input slice is not modified.
func Shuffle(cards []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Deal removes n cards from the top of deck and returns (remaining, dealt).
// The input slice is not modified; callers replace their deck with the
// returned remainder.
func Deal(deck []Card, n int) (remaining, dealt []Card) {
	if n > len(deck) {
		n = len(deck)
	}
	dealt = make([]Card, n)
	copy(dealt, deck[:n])
	remaining = make([]Card, len(deck)-n)
	copy(remaining, deck[n:])
	return remaining, dealt
}
