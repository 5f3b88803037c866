package game

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestViewRedactsOtherHands(t *testing.T) {
	s := newTestState(t, 2)
	s.Current = 0

	v := s.ViewFor(0)
	for _, c := range v.Players[0].Hand {
		if c.Hidden || c.Suit == "" {
			t.Errorf("own card redacted: %+v", c)
		}
	}
	for _, c := range v.Players[1].Hand {
		if !c.Hidden || c.Suit != "" || c.Rank != "" {
			t.Errorf("opponent card leaked: %+v", c)
		}
	}
	if v.DeckSize != len(s.Deck) {
		t.Errorf("deck size = %d, want %d", v.DeckSize, len(s.Deck))
	}
}

func TestViewNeverSerializesHiddenCards(t *testing.T) {
	s := newTestState(t, 2)
	s.Current = 0

	data, err := json.Marshal(s.ViewFor(1))
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Players []struct {
			Hand []map[string]interface{} `json:"hand"`
		} `json:"players"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	for _, c := range decoded.Players[0].Hand {
		for key, val := range c {
			switch key {
			case "hidden":
			case "id":
				if val != float64(-1) {
					t.Errorf("seat 0's card leaked id %v to seat 1", val)
				}
			default:
				t.Errorf("seat 0's card leaked field %q to seat 1", key)
			}
		}
	}
	if strings.Contains(string(data), `"deck"`) {
		t.Error("deck contents serialized")
	}
}

func TestViewLegalMovesOnlyForActingSeat(t *testing.T) {
	s := newTestState(t, 2)
	s.Current = 0
	clearRing(s)
	place(s, 0, 10)
	three := deckCard(t, 3, Clubs)
	setHand(s, 0, three)

	sel := NewInput(InputSelectCard, 0)
	sel.CardID = three.ID
	mustHandle(t, s, sel)

	if got := s.ViewFor(0); len(got.LegalMoves) == 0 || got.SelectedCard != three.ID {
		t.Errorf("acting view = moves:%d selected:%d, want hints present", len(got.LegalMoves), got.SelectedCard)
	}
	if got := s.ViewFor(1); len(got.LegalMoves) != 0 || got.SelectedCard != -1 {
		t.Errorf("bystander view leaked selection: moves:%d selected:%d", len(got.LegalMoves), got.SelectedCard)
	}
}

func TestViewMarblesArePublic(t *testing.T) {
	s := newTestState(t, 4)
	v := s.ViewFor(2)
	if len(v.Marbles) != 16 {
		t.Fatalf("marble count = %d, want 16", len(v.Marbles))
	}
	for i, m := range v.Marbles {
		if m.ID != i {
			t.Fatalf("marble order not stable: index %d has id %d", i, m.ID)
		}
	}
}
