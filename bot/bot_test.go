package bot

import (
	"math/rand"
	"testing"

	"jackaroo-server/game"
)

func newBotState(t *testing.T, seats int) *game.State {
	t.Helper()
	names := []string{"Alice", "Bob", "Carol", "Dave"}[:seats]
	bots := make([]bool, seats)
	for i := range bots {
		bots[i] = true
	}
	return game.NewState(52, 5, names, bots, rand.New(rand.NewSource(42)))
}

// driveTurn feeds bot inputs through the machine until the acting seat
// changes or the match ends. Returns the number of inputs applied.
func driveTurn(t *testing.T, s *game.State) int {
	t.Helper()
	seat := s.Current
	applied := 0
	for i := 0; i < 50; i++ {
		if s.Phase == game.PhaseGameOver {
			return applied
		}
		if s.Current != seat && s.Phase == game.PhasePlayerInput {
			return applied
		}
		inputs := NextInputs(s, s.Current)
		if len(inputs) == 0 {
			return applied
		}
		for _, in := range inputs {
			if _, err := s.HandleInput(in); err != nil {
				t.Fatalf("bot produced illegal input %v in phase %v: %v", in.Kind, s.Phase, err)
			}
			applied++
			if s.Phase == game.PhaseGameOver {
				return applied
			}
		}
	}
	t.Fatal("bot did not finish its turn within 50 iterations")
	return applied
}

func TestBotPlaysLegalTurns(t *testing.T) {
	s := newBotState(t, 2)
	for turn := 0; turn < 40; turn++ {
		if s.Phase == game.PhaseGameOver {
			break
		}
		if n := driveTurn(t, s); n == 0 {
			t.Fatalf("turn %d: bot made no progress in phase %v", turn, s.Phase)
		}
		if got := s.CardCount(); got != 52 {
			t.Fatalf("turn %d: card count = %d, want 52", turn, got)
		}
	}
}

func TestBotPrefersHomeEntry(t *testing.T) {
	s := newBotState(t, 2)
	seat := 0
	s.Current = seat
	for _, m := range s.Marbles {
		m.Location = game.Base()
	}
	// Marble 0 can enter home with the 2; marble 1 has a plain move.
	s.Marbles[0].Location = game.At(54)
	s.Marbles[1].Location = game.At(10)
	two := findCard(t, 2, game.Clubs)
	three := findCard(t, 3, game.Hearts)
	s.Players[seat].Hand = []game.Card{three, two}

	inputs := NextInputs(s, seat)
	if len(inputs) < 2 {
		t.Fatalf("inputs = %+v, want select + confirm", inputs)
	}
	if inputs[0].Kind != game.InputSelectCard || inputs[0].CardID != two.ID {
		t.Errorf("bot selected card %d, want the home-entering 2 (%d)", inputs[0].CardID, two.ID)
	}
	for _, in := range inputs {
		if _, err := s.HandleInput(in); err != nil {
			t.Fatalf("HandleInput(%v): %v", in.Kind, err)
		}
	}
	if s.Marbles[0].Location.Kind != game.LocHome {
		t.Errorf("marble 0 location = %+v, want Home", s.Marbles[0].Location)
	}
}

func TestBotBurnsLowestWhenStuck(t *testing.T) {
	s := newBotState(t, 2)
	seat := 0
	s.Current = seat
	for _, m := range s.Marbles {
		m.Location = game.Base()
	}
	// No marbles on the board and no exit cards that play: a 3 and a 9 are
	// both dead; the bot burns the cheaper 3.
	three := findCard(t, 3, game.Spades)
	nine := findCard(t, 9, game.Diamonds)
	s.Players[seat].Hand = []game.Card{nine, three}

	inputs := NextInputs(s, seat)
	if len(inputs) != 1 || inputs[0].Kind != game.InputBurnCard {
		t.Fatalf("inputs = %+v, want a single burn", inputs)
	}
	if inputs[0].CardID != three.ID {
		t.Errorf("burned card %d, want the 3 (%d)", inputs[0].CardID, three.ID)
	}
}

func TestBotDiscardsLowestUnderAttack(t *testing.T) {
	s := newBotState(t, 2)
	victim := 1
	s.Current = victim
	s.Phase = game.PhaseOpponentDiscard
	king := findCard(t, game.King, game.Clubs)
	five := findCard(t, 5, game.Hearts)
	s.Players[victim].Hand = []game.Card{king, five}

	inputs := NextInputs(s, victim)
	if len(inputs) != 1 || inputs[0].Kind != game.InputSelectCard {
		t.Fatalf("inputs = %+v, want a single discard selection", inputs)
	}
	if inputs[0].CardID != five.ID {
		t.Errorf("discarded card %d, want the 5 (%d)", inputs[0].CardID, five.ID)
	}
}

func findCard(t *testing.T, rank game.Rank, suit game.Suit) game.Card {
	t.Helper()
	for _, c := range game.NewDeck() {
		if c.Rank == rank && c.Suit == suit {
			return c
		}
	}
	t.Fatalf("no card %v of %v", rank, suit)
	return game.Card{}
}
