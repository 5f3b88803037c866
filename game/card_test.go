package game

import (
	"math/rand"
	"testing"
)

func TestNewDeck(t *testing.T) {
	deck := NewDeck()
	if len(deck) != 52 {
		t.Fatalf("deck size = %d, want 52", len(deck))
	}
	seen := make(map[int]bool)
	perSuit := make(map[Suit]int)
	for _, c := range deck {
		if seen[c.ID] {
			t.Fatalf("duplicate card id %d", c.ID)
		}
		seen[c.ID] = true
		perSuit[c.Suit]++
		if c.Rank < Ace || c.Rank > King {
			t.Fatalf("card %d has rank %d", c.ID, c.Rank)
		}
	}
	for s := Hearts; s <= Spades; s++ {
		if perSuit[s] != 13 {
			t.Errorf("suit %v has %d cards, want 13", s, perSuit[s])
		}
	}
}

func TestEffectTable(t *testing.T) {
	tests := []struct {
		name string
		card Card
		want Effect
	}{
		{"ace exits and steps 1", Card{Suit: Spades, Rank: Ace}, Effect{Steps: 1, ExitBase: true}},
		{"two exits and steps 2", Card{Suit: Hearts, Rank: 2}, Effect{Steps: 2, ExitBase: true}},
		{"four moves backward", Card{Suit: Clubs, Rank: 4}, Effect{Steps: -4}},
		{"five moves any ring marble", Card{Suit: Diamonds, Rank: 5}, Effect{Steps: 5, AnyRingMarble: true}},
		{"seven splits", Card{Suit: Spades, Rank: 7}, Effect{Steps: 7, Splittable: true}},
		{"ten attacks or moves", Card{Suit: Hearts, Rank: 10}, Effect{Steps: 10, ForceDiscard: true, MoveOptional: true}},
		{"red jack steps 11", Card{Suit: Hearts, Rank: Jack}, Effect{Steps: 11}},
		{"black jack swaps", Card{Suit: Spades, Rank: Jack}, Effect{Swap: true}},
		{"red queen attacks only", Card{Suit: Diamonds, Rank: Queen}, Effect{ForceDiscard: true}},
		{"black queen steps 12", Card{Suit: Clubs, Rank: Queen}, Effect{Steps: 12}},
		{"king sweeps and exits", Card{Suit: Hearts, Rank: King}, Effect{Steps: 13, ExitBase: true, KillPath: true}},
	}
	for _, tt := range tests {
		if got := EffectOf(tt.card); got != tt.want {
			t.Errorf("%s: EffectOf = %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestShuffleIsDeterministicAndNonMutating(t *testing.T) {
	deck := NewDeck()
	a := Shuffle(deck, rand.New(rand.NewSource(7)))
	b := Shuffle(deck, rand.New(rand.NewSource(7)))
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("same seed produced different orders")
		}
	}
	for i, c := range NewDeck() {
		if deck[i] != c {
			t.Fatal("Shuffle modified its input")
		}
	}
}

func TestDeal(t *testing.T) {
	deck := NewDeck()
	remaining, dealt := Deal(deck, 4)
	if len(dealt) != 4 || len(remaining) != 48 {
		t.Fatalf("Deal(4) = %d dealt, %d remaining", len(dealt), len(remaining))
	}
	for i, c := range dealt {
		if c != deck[i] {
			t.Errorf("dealt[%d] = %v, want deck top %v", i, c, deck[i])
		}
	}
	if len(deck) != 52 {
		t.Error("Deal modified its input")
	}

	// Over-asking drains what is left.
	remaining, dealt = Deal(deck[:3], 5)
	if len(dealt) != 3 || len(remaining) != 0 {
		t.Errorf("short deal = %d dealt, %d remaining, want 3/0", len(dealt), len(remaining))
	}
}
