package game

import (
	"jackaroo-server/gameerrors"
)

// The turn state machine. Transitions are a table keyed by (phase, input
// kind); a missing entry means the combination is illegal and is rejected
// uniformly, never silently ignored.

type transKey struct {
	phase Phase
	kind  InputKind
}

type transitionFunc func(*State, Input) ([]Event, error)

var transitions = map[transKey]transitionFunc{
	{PhasePlayerInput, InputSelectCard}:       (*State).selectCard,
	{PhasePlayerInput, InputSelectMarble}:     (*State).selectMarble,
	{PhasePlayerInput, InputSelectTargetNode}: (*State).selectTargetNode,
	{PhasePlayerInput, InputConfirmMove}:      (*State).confirmMove,
	{PhasePlayerInput, InputBurnCard}:         (*State).burnCard,
	{PhasePlayerInput, InputCancelSelection}:  (*State).cancelSelection,

	{PhaseDecidingTen, InputResolveTen}:       (*State).resolveTenDecision,
	{PhaseDecidingTen, InputCancelSelection}:  (*State).cancelSelection,

	{PhaseDecidingRedQueen, InputResolveRedQueen}: (*State).resolveRedQueenDecision,
	{PhaseDecidingRedQueen, InputCancelSelection}: (*State).cancelSelection,

	{PhaseHandlingSplitSeven, InputSelectMarble}:    (*State).selectMarble,
	{PhaseHandlingSplitSeven, InputSelectStepCount}: (*State).selectStepCount,
	{PhaseHandlingSplitSeven, InputConfirmMove}:     (*State).confirmSplitMove,
	{PhaseHandlingSplitSeven, InputCancelSelection}: (*State).cancelSplitSelection,

	{PhaseResolvingMove, InputResolveTurn}: (*State).resolveTurnInput,

	{PhaseOpponentDiscard, InputSelectCard}: (*State).opponentDiscard,
}

// HandleInput runs one action through the state machine. Inputs from a seat
// other than the acting one are rejected without touching state; that covers
// the OpponentDiscard phase too, where the victim is the acting seat.
func (s *State) HandleInput(in Input) ([]Event, error) {
	if s.Phase == PhaseGameOver {
		return nil, gameerrors.ErrInvalidMove
	}
	if in.Seat != s.Current {
		return nil, gameerrors.ErrNotYourTurn
	}
	fn, ok := transitions[transKey{s.Phase, in.Kind}]
	if !ok {
		return nil, gameerrors.ErrInvalidMove
	}
	return fn(s, in)
}

// selectCard picks a card from the acting hand and computes its legal moves.
// Attack cards detour through their deciding phases; the 7 enters the split
// protocol.
func (s *State) selectCard(in Input) ([]Event, error) {
	card, ok := s.handCard(in.Seat, in.CardID)
	if !ok {
		return nil, gameerrors.ErrInvalidCard
	}
	s.Selection = emptySelection()
	s.Selection.CardID = card.ID
	s.Selection.LegalMoves = s.CandidatesForCard(in.Seat, card)

	eff := EffectOf(card)
	switch {
	case eff.ForceDiscard && eff.MoveOptional:
		s.Phase = PhaseDecidingTen
	case eff.ForceDiscard:
		s.Phase = PhaseDecidingRedQueen
	case eff.Splittable:
		s.Phase = PhaseHandlingSplitSeven
	}
	return nil, nil
}

// selectMarble narrows the selection to one marble. The marble must appear
// in at least one current candidate.
func (s *State) selectMarble(in Input) ([]Event, error) {
	if s.Selection.CardID < 0 {
		return nil, gameerrors.ErrInvalidCard
	}
	for _, c := range s.Selection.LegalMoves {
		if c.MarbleID == in.MarbleID {
			s.Selection.MarbleID = in.MarbleID
			return nil, nil
		}
	}
	return nil, gameerrors.ErrInvalidMarble
}

// selectTargetNode validates a destination for the selected marble. Pure
// selection bookkeeping; the move itself happens on CONFIRM_MOVE.
func (s *State) selectTargetNode(in Input) ([]Event, error) {
	marble := in.MarbleID
	if marble < 0 {
		marble = s.Selection.MarbleID
	}
	if _, ok := findCandidate(s.Selection.LegalMoves, marble, in.Node, -1); !ok {
		return nil, gameerrors.ErrInvalidMove
	}
	s.Selection.MarbleID = marble
	return nil, nil
}

// selectStepCount records the first-leg step choice for a split seven.
func (s *State) selectStepCount(in Input) ([]Event, error) {
	if s.Split.Active {
		return nil, gameerrors.ErrInvalidMove
	}
	if in.Steps < 1 || in.Steps > 7 {
		return nil, gameerrors.ErrValidation
	}
	s.Selection.Steps = in.Steps
	return nil, nil
}

// confirmMove applies a fully-specified candidate and enters ResolvingMove.
func (s *State) confirmMove(in Input) ([]Event, error) {
	marble := in.MarbleID
	if marble < 0 {
		marble = s.Selection.MarbleID
	}
	cand, ok := findCandidate(s.Selection.LegalMoves, marble, in.Node, in.SwapMarble)
	if !ok {
		return nil, gameerrors.ErrInvalidMove
	}
	events := s.applyCandidate(in.Seat, cand, true)
	if s.Phase != PhaseGameOver {
		s.Phase = PhaseResolvingMove
	}
	return events, nil
}

// burnCard discards an unplayable card. Burning is only legal for a card
// with zero move candidates.
func (s *State) burnCard(in Input) ([]Event, error) {
	card, ok := s.handCard(in.Seat, in.CardID)
	if !ok {
		return nil, gameerrors.ErrInvalidCard
	}
	if len(s.CandidatesForCard(in.Seat, card)) > 0 {
		return nil, gameerrors.ErrInvalidMove
	}
	s.discardCard(in.Seat, card.ID)
	s.Selection = emptySelection()
	s.Phase = PhaseResolvingMove
	s.appendLog("%s burned %s", s.Players[in.Seat].Name, card)
	return []Event{{Kind: EventCardBurned, Seat: in.Seat, CardID: card.ID}}, nil
}

// cancelSelection clears the selection context and returns to PlayerInput.
func (s *State) cancelSelection(in Input) ([]Event, error) {
	s.Selection = emptySelection()
	s.Phase = PhasePlayerInput
	return nil, nil
}

// resolveTenDecision picks between the 10's movement and force-discard uses.
func (s *State) resolveTenDecision(in Input) ([]Event, error) {
	if s.Selection.CardID < 0 {
		return nil, gameerrors.ErrInvalidCard
	}
	if in.Attack {
		if s.forceDiscardTarget(in.Seat) < 0 {
			return nil, gameerrors.ErrInvalidMove
		}
		return s.applyForceDiscard(in.Seat, s.Selection.CardID), nil
	}
	moves := s.Selection.LegalMoves[:0:0]
	for _, c := range s.Selection.LegalMoves {
		if c.Kind != MoveForceDiscard {
			moves = append(moves, c)
		}
	}
	if len(moves) == 0 {
		return nil, gameerrors.ErrInvalidMove
	}
	s.Selection.LegalMoves = moves
	s.Phase = PhasePlayerInput
	return nil, nil
}

// resolveRedQueenDecision confirms or cancels the red Queen's attack; it has
// no movement option.
func (s *State) resolveRedQueenDecision(in Input) ([]Event, error) {
	if s.Selection.CardID < 0 {
		return nil, gameerrors.ErrInvalidCard
	}
	if !in.Attack {
		return s.cancelSelection(in)
	}
	if s.forceDiscardTarget(in.Seat) < 0 {
		return nil, gameerrors.ErrInvalidMove
	}
	return s.applyForceDiscard(in.Seat, s.Selection.CardID), nil
}

// confirmSplitMove applies one leg of a split seven. The first leg fixes the
// remainder for the second; a second leg with no legal takers forfeits the
// remaining steps and completes the move.
func (s *State) confirmSplitMove(in Input) ([]Event, error) {
	marble := in.MarbleID
	if marble < 0 {
		marble = s.Selection.MarbleID
	}

	if s.Split.Active {
		cand, ok := findCandidate(s.Selection.LegalMoves, marble, in.Node, -1)
		if !ok {
			return nil, gameerrors.ErrInvalidMove
		}
		events := s.applyCandidate(in.Seat, cand, true)
		s.Split = splitSeven{}
		if s.Phase != PhaseGameOver {
			s.Phase = PhaseResolvingMove
		}
		return events, nil
	}

	cand, ok := s.findSplitLeg(marble, in)
	if !ok {
		return nil, gameerrors.ErrInvalidMove
	}

	if cand.Steps == 7 {
		events := s.applyCandidate(in.Seat, cand, true)
		if s.Phase != PhaseGameOver {
			s.Phase = PhaseResolvingMove
		}
		return events, nil
	}

	events := s.applyCandidate(in.Seat, cand, false)
	if s.Phase == PhaseGameOver {
		return events, nil
	}

	remaining := 7 - cand.Steps
	s.Split = splitSeven{Active: true, FirstMarble: cand.MarbleID, FirstSteps: cand.Steps, RemainingSteps: remaining}
	s.Selection.MarbleID = -1
	s.Selection.LegalMoves = s.splitLegCandidates(in.Seat, s.Selection.CardID, remaining)

	if len(s.Selection.LegalMoves) == 0 {
		// Explicit rule: the remainder is forfeited, not an error.
		s.discardCard(in.Seat, s.Selection.CardID)
		s.Split = splitSeven{}
		s.Phase = PhaseResolvingMove
		s.appendLog("%s forfeits %d remaining steps", s.Players[in.Seat].Name, remaining)
	}
	return events, nil
}

// findSplitLeg locates the first-leg candidate matching the request: by
// destination node when given, otherwise by the chosen step count.
func (s *State) findSplitLeg(marble int, in Input) (MoveCandidate, bool) {
	steps := in.Steps
	if steps == 0 {
		steps = s.Selection.Steps
	}
	for _, c := range s.Selection.LegalMoves {
		if c.MarbleID != marble {
			continue
		}
		if in.Node >= 0 {
			if c.DestNode == in.Node {
				return c, true
			}
			continue
		}
		if steps > 0 && c.Steps == steps {
			return c, true
		}
	}
	return MoveCandidate{}, false
}

// cancelSplitSelection abandons a split seven before its first leg has been
// applied; afterwards the move is committed.
func (s *State) cancelSplitSelection(in Input) ([]Event, error) {
	if s.Split.Active {
		return nil, gameerrors.ErrInvalidMove
	}
	return s.cancelSelection(in)
}

// resolveTurnInput finalizes the resolved move and advances the turn.
func (s *State) resolveTurnInput(in Input) ([]Event, error) {
	return s.resolveTurn(), nil
}

// opponentDiscard handles the victim's card choice during a force-discard
// attack, then returns control to the original attacker. When the attack was
// the attacker's last card there is nothing left for them to act with, so the
// turn advances immediately instead of parking them in PlayerInput.
func (s *State) opponentDiscard(in Input) ([]Event, error) {
	if !s.discardCard(in.Seat, in.CardID) {
		return nil, gameerrors.ErrInvalidCard
	}
	attacker := s.PendingAttacker
	s.PendingAttacker = -1
	s.Current = attacker
	s.Phase = PhasePlayerInput
	s.Selection = emptySelection()
	s.appendLog("%s discarded under attack", s.Players[in.Seat].Name)
	events := []Event{{Kind: EventOpponentDiscarded, Seat: in.Seat, CardID: in.CardID}}
	if len(s.Players[attacker].Hand) == 0 {
		s.RepeatTurn = false
		events = append(events, s.resolveTurn()...)
	}
	return events, nil
}
