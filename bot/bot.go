// Package bot implements the heuristic player used for bot seats and for the
// auto-play fallback when a human stalls out their turn timer. It is built
// entirely on the move engine's candidate output and submits the same inputs
// a client would.
package bot

import (
	"sort"

	"jackaroo-server/game"
)

// Tuning holds the scoring weights. Exported so tests can pin them down.
type Tuning struct {
	HomeEntry    int
	Capture      int
	OwnCapture   int // penalty per own marble swept by a King
	BaseExit     int
	ProgressStep int
	ForceDiscard int
	CardValue    int // per-point penalty for spending a high card
}

// DefaultTuning is the stock weight set.
var DefaultTuning = Tuning{
	HomeEntry:    1000,
	Capture:      400,
	OwnCapture:   -350,
	BaseExit:     300,
	ProgressStep: 10,
	ForceDiscard: 120,
	CardValue:    2,
}

type scoredMove struct {
	cardID int
	cand   game.MoveCandidate
	score  int
}

// NextInputs returns the inputs that advance the acting seat by one decision,
// given the current phase. The caller feeds them through the state machine
// and calls again until the seat is no longer acting.
func NextInputs(s *game.State, seat int) []game.Input {
	switch s.Phase {
	case game.PhasePlayerInput:
		return planTurn(s, seat)
	case game.PhaseHandlingSplitSeven:
		return planSplitLeg(s, seat)
	case game.PhaseDecidingTen:
		in := game.NewInput(game.InputResolveTen, seat)
		in.Attack = !hasMovementOption(s.Selection.LegalMoves)
		return []game.Input{in}
	case game.PhaseDecidingRedQueen:
		in := game.NewInput(game.InputResolveRedQueen, seat)
		in.Attack = true
		return []game.Input{in}
	case game.PhaseResolvingMove:
		return []game.Input{game.NewInput(game.InputResolveTurn, seat)}
	case game.PhaseOpponentDiscard:
		return planDiscard(s, seat)
	default:
		return nil
	}
}

// planTurn picks the best-scoring candidate across the whole hand, or burns
// the least valuable card when nothing is playable.
func planTurn(s *game.State, seat int) []game.Input {
	scored := scoreAll(s, seat)
	if len(scored) == 0 {
		return []game.Input{burnInput(s, seat)}
	}

	best := scored[0]
	sel := game.NewInput(game.InputSelectCard, seat)
	sel.CardID = best.cardID

	switch best.cand.Kind {
	case game.MoveForceDiscard:
		card, _ := handCardByID(s, seat, best.cardID)
		var decide game.Input
		if game.EffectOf(card).MoveOptional {
			decide = game.NewInput(game.InputResolveTen, seat)
		} else {
			decide = game.NewInput(game.InputResolveRedQueen, seat)
		}
		decide.Attack = true
		return []game.Input{sel, decide}
	case game.MoveSplit:
		confirm := game.NewInput(game.InputConfirmMove, seat)
		confirm.MarbleID = best.cand.MarbleID
		confirm.Node = best.cand.DestNode
		confirm.Steps = best.cand.Steps
		return []game.Input{sel, confirm}
	default:
		inputs := []game.Input{sel}
		card, _ := handCardByID(s, seat, best.cardID)
		eff := game.EffectOf(card)
		if eff.ForceDiscard && eff.MoveOptional {
			decide := game.NewInput(game.InputResolveTen, seat)
			decide.Attack = false
			inputs = append(inputs, decide)
		}
		confirm := game.NewInput(game.InputConfirmMove, seat)
		confirm.MarbleID = best.cand.MarbleID
		confirm.Node = best.cand.DestNode
		confirm.SwapMarble = best.cand.SwapMarble
		inputs = append(inputs, confirm)
		return inputs
	}
}

// planSplitLeg answers the mandatory second leg of a split seven.
func planSplitLeg(s *game.State, seat int) []game.Input {
	cands := s.Selection.LegalMoves
	if len(cands) == 0 {
		// The machine forfeits the remainder itself; nothing to do here.
		return nil
	}
	best := cands[0]
	bestScore := scoreCandidate(s, seat, best)
	for _, c := range cands[1:] {
		if sc := scoreCandidate(s, seat, c); sc > bestScore {
			best, bestScore = c, sc
		}
	}
	confirm := game.NewInput(game.InputConfirmMove, seat)
	confirm.MarbleID = best.MarbleID
	confirm.Node = best.DestNode
	return []game.Input{confirm}
}

// planDiscard answers a force-discard attack with the lowest-value card.
func planDiscard(s *game.State, seat int) []game.Input {
	p := s.Players[seat]
	if len(p.Hand) == 0 {
		return nil
	}
	low := p.Hand[0]
	for _, c := range p.Hand[1:] {
		if c.Value() < low.Value() {
			low = c
		}
	}
	in := game.NewInput(game.InputSelectCard, seat)
	in.CardID = low.ID
	return []game.Input{in}
}

// burnInput picks the lowest-priority unplayable card: the cheapest rank,
// preferring not to waste an Ace or King which can still exit Base later.
func burnInput(s *game.State, seat int) game.Input {
	p := s.Players[seat]
	in := game.NewInput(game.InputBurnCard, seat)
	best := -1
	bestScore := 1 << 30
	for _, c := range p.Hand {
		score := c.Value()
		if game.EffectOf(c).ExitBase {
			score += 20
		}
		if score < bestScore {
			bestScore = score
			best = c.ID
		}
	}
	in.CardID = best
	return in
}

// scoreAll scores every candidate in the hand, best first.
func scoreAll(s *game.State, seat int) []scoredMove {
	var scored []scoredMove
	for cardID, cands := range s.AllCandidates(seat) {
		card, _ := handCardByID(s, seat, cardID)
		for _, cand := range cands {
			scored = append(scored, scoredMove{
				cardID: cardID,
				cand:   cand,
				score:  scoreCandidate(s, seat, cand) - DefaultTuning.CardValue*card.Value(),
			})
		}
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		// Deterministic tie-break so bot play is reproducible.
		if scored[i].cardID != scored[j].cardID {
			return scored[i].cardID < scored[j].cardID
		}
		return scored[i].cand.DestNode < scored[j].cand.DestNode
	})
	return scored
}

// scoreCandidate values one candidate for the seat.
func scoreCandidate(s *game.State, seat int, cand game.MoveCandidate) int {
	t := DefaultTuning
	score := 0

	for _, victimID := range cand.Captures {
		if s.Marbles[victimID].Owner == seat {
			score += t.OwnCapture
		} else {
			score += t.Capture
		}
	}

	switch cand.Kind {
	case game.MoveForceDiscard:
		return score + t.ForceDiscard
	case game.MoveBaseExit:
		return score + t.BaseExit
	}

	m := s.Marbles[cand.MarbleID]
	if m.Owner != seat {
		// Moving someone else's marble with a 5: value pushing it backward
		// relative to its own goal, never helping it home.
		before := s.Board.DistanceToHome(m.Location.Node, m.Owner)
		after := s.Board.DistanceToHome(cand.DestNode, m.Owner)
		if before < 0 || after < 0 {
			return score
		}
		return score + (after-before)*t.ProgressStep/2
	}

	if dest, err := s.Board.Node(cand.DestNode); err == nil && dest.Type == game.NodeHome {
		return score + t.HomeEntry
	}

	before := s.Board.DistanceToHome(m.Location.Node, seat)
	after := s.Board.DistanceToHome(cand.DestNode, seat)
	if cand.Kind == game.MoveSwap {
		other := s.Marbles[cand.SwapMarble]
		otherBefore := s.Board.DistanceToHome(other.Location.Node, other.Owner)
		otherAfter := s.Board.DistanceToHome(m.Location.Node, other.Owner)
		score += (otherAfter - otherBefore) * t.ProgressStep / 2
	}
	if before >= 0 && after >= 0 {
		score += (before - after) * t.ProgressStep
	}
	return score
}

func handCardByID(s *game.State, seat, cardID int) (game.Card, bool) {
	for _, c := range s.Players[seat].Hand {
		if c.ID == cardID {
			return c, true
		}
	}
	return game.Card{}, false
}

// hasMovementOption reports whether the candidate list contains anything
// other than the force-discard attack.
func hasMovementOption(cands []game.MoveCandidate) bool {
	for _, c := range cands {
		if c.Kind != game.MoveForceDiscard {
			return true
		}
	}
	return false
}
