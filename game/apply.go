package game

// Move application: mutates the state according to an already-validated
// MoveCandidate and reports the side-effect events.

// applyCandidate executes one candidate for the acting seat. complete says
// whether the card is consumed by this application (false only for the first
// leg of a split seven).
func (s *State) applyCandidate(seat int, cand MoveCandidate, complete bool) []Event {
	var events []Event

	switch cand.Kind {
	case MoveSwap:
		events = append(events, s.applySwap(seat, cand)...)
	default:
		events = append(events, s.applyRelocation(seat, cand)...)
	}

	if complete {
		s.discardCard(seat, cand.CardID)
	}
	s.checkWin(seat, &events)
	// A 5 may walk a foreign marble into its own home, finishing that
	// player's set.
	if owner := s.Marbles[cand.MarbleID].Owner; owner != seat {
		s.checkWin(owner, &events)
	}
	return events
}

// applyRelocation moves the marble, resolves captures and Home entry, and
// grants the capture/Home bonus (one drawn card plus a repeated turn).
func (s *State) applyRelocation(seat int, cand MoveCandidate) []Event {
	m := s.Marbles[cand.MarbleID]
	from := -1
	if m.Location.Kind == LocNode {
		from = m.Location.Node
	}

	var events []Event
	for _, victimID := range cand.Captures {
		events = append(events, s.capture(seat, victimID)...)
	}

	kind := EventMoved
	if cand.Kind == MoveBaseExit {
		kind = EventBaseExit
	}
	dest, _ := s.Board.Node(cand.DestNode)
	if dest.Type == NodeHome {
		m.Location = Home()
		events = append(events, Event{Kind: EventHomeEntry, Seat: seat, MarbleID: m.ID, FromNode: from})
		s.appendLog("%s marble %d reached home", s.Players[seat].Name, m.ID)
		events = append(events, s.bonus(seat)...)
	} else {
		m.Location = At(cand.DestNode)
		events = append(events, Event{Kind: kind, Seat: seat, CardID: cand.CardID, MarbleID: m.ID, FromNode: from, ToNode: cand.DestNode})
		s.appendLog("%s moved marble %d to node %d", s.Players[seat].Name, m.ID, cand.DestNode)
	}
	return events
}

// applySwap exchanges the positions of the two marbles. No captures, no
// bonus; both marbles stay on the ring.
func (s *State) applySwap(seat int, cand MoveCandidate) []Event {
	own := s.Marbles[cand.MarbleID]
	other := s.Marbles[cand.SwapMarble]
	own.Location, other.Location = other.Location, own.Location
	s.appendLog("%s swapped marble %d with marble %d", s.Players[seat].Name, own.ID, other.ID)
	return []Event{{
		Kind:     EventSwap,
		Seat:     seat,
		CardID:   cand.CardID,
		MarbleID: own.ID,
		Victim:   other.ID,
		ToNode:   own.Location.Node,
	}}
}

// capture sends the victim marble back to Base (where it is safe again) and
// grants the acting seat the capture bonus.
func (s *State) capture(seat, victimID int) []Event {
	victim := s.Marbles[victimID]
	victim.Location = Base()
	s.appendLog("%s captured marble %d (%s)", s.Players[seat].Name, victimID, victim.Color)
	events := []Event{{Kind: EventKilledOpponent, Seat: seat, Victim: victimID}}
	events = append(events, s.bonus(seat)...)
	return events
}

// bonus draws one card from the deck top for the seat and flags a repeat
// turn. An empty deck silently skips the draw but still grants the turn.
func (s *State) bonus(seat int) []Event {
	s.RepeatTurn = true
	if len(s.Deck) == 0 {
		return nil
	}
	var dealt []Card
	s.Deck, dealt = Deal(s.Deck, 1)
	p := s.Players[seat]
	p.Hand = append(p.Hand, dealt...)
	return []Event{{Kind: EventBonusDraw, Seat: seat}}
}

// checkWin halts the match the instant the seat's fourth marble is Home.
func (s *State) checkWin(seat int, events *[]Event) {
	if s.Phase == PhaseGameOver {
		return
	}
	if s.marblesHome(seat) == 4 {
		s.Players[seat].Finished = true
		s.Phase = PhaseGameOver
		s.Winner = seat
		s.appendLog("%s wins", s.Players[seat].Name)
		*events = append(*events, Event{Kind: EventGameOver, Seat: seat, Winner: seat})
	}
}

// applyForceDiscard resolves the 10/red-Queen attack: the card leaves the
// attacker's hand for the discard pile, the victim becomes the acting seat,
// and the machine waits in OpponentDiscard.
func (s *State) applyForceDiscard(seat, cardID int) []Event {
	victim := s.forceDiscardTarget(seat)
	s.discardCard(seat, cardID)
	s.PendingAttacker = seat
	s.Current = victim
	s.Phase = PhaseOpponentDiscard
	s.Selection = emptySelection()
	s.appendLog("%s forces %s to discard", s.Players[seat].Name, s.Players[victim].Name)
	return []Event{{Kind: EventForceDiscard, Seat: seat, CardID: cardID, Victim: victim}}
}

// resolveTurn finalizes a played or burned card: repeat turns keep the seat,
// empty hands all around start a new round, otherwise play passes on.
func (s *State) resolveTurn() []Event {
	if s.Phase == PhaseGameOver {
		return nil
	}
	s.Selection = emptySelection()
	s.Split = splitSeven{}

	if s.RepeatTurn {
		s.RepeatTurn = false
		s.Phase = PhasePlayerInput
		return nil
	}

	if s.allHandsEmpty() {
		return s.startRound()
	}

	s.Current = s.nextSeat(s.Current)
	s.Phase = PhasePlayerInput
	return nil
}

// startRound begins the next round: every third round deals five cards
// instead of four. The discard pile is recycled only when the deck cannot
// satisfy the deal.
func (s *State) startRound() []Event {
	s.Round++
	size := dealSizeFor(s.Round)
	if len(s.Deck) < size*len(s.Players) {
		s.recycleDiscard()
	}
	s.dealRound(size)
	s.Current = s.nextSeat(s.Current)
	s.Phase = PhasePlayerInput
	s.appendLog("round %d begins (%d cards each)", s.Round, size)
	return []Event{{Kind: EventRoundStarted, Round: s.Round}}
}
