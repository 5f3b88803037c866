package game

// The move engine: pure candidate computation and legality filtering over a
// State. Nothing here mutates the state or performs I/O.

// CandidatesForCard computes every legal MoveCandidate the seat has for one
// card in hand. Returns nil when the card is unplayable.
func (s *State) CandidatesForCard(seat int, card Card) []MoveCandidate {
	eff := EffectOf(card)
	var out []MoveCandidate

	if eff.Swap {
		out = append(out, s.swapCandidates(seat, card)...)
		return out
	}

	if eff.ForceDiscard {
		if s.forceDiscardTarget(seat) >= 0 {
			out = append(out, MoveCandidate{
				Kind:     MoveForceDiscard,
				CardID:   card.ID,
				MarbleID: -1,
				DestNode: -1,
			})
		}
		if !eff.MoveOptional {
			return out
		}
	}

	if eff.ExitBase {
		if c, ok := s.baseExitCandidate(seat, card); ok {
			out = append(out, c)
		}
	}

	if eff.KillPath {
		out = append(out, s.killPathCandidates(seat, card)...)
		return out
	}

	if eff.Splittable {
		out = append(out, s.splitCandidates(seat, card)...)
		return out
	}

	if eff.Steps != 0 {
		out = append(out, s.stepCandidates(seat, card, eff)...)
	}
	return out
}

// AllCandidates maps card id to that card's legal moves for the whole hand.
func (s *State) AllCandidates(seat int) map[int][]MoveCandidate {
	p := s.player(seat)
	if p == nil {
		return nil
	}
	out := make(map[int][]MoveCandidate, len(p.Hand))
	for _, c := range p.Hand {
		out[c.ID] = s.CandidatesForCard(seat, c)
	}
	return out
}

// HasAnyMove reports whether the seat can legally play any card in hand.
func (s *State) HasAnyMove(seat int) bool {
	p := s.player(seat)
	if p == nil {
		return false
	}
	for _, c := range p.Hand {
		if len(s.CandidatesForCard(seat, c)) > 0 {
			return true
		}
	}
	return false
}

// movableMarbles returns the marbles the seat may select for a plain step
// move: its own marbles on nodes, plus (for the 5) any marble on a ring node.
func (s *State) movableMarbles(seat int, anyRing bool) []*Marble {
	var out []*Marble
	for _, p := range s.Players {
		for _, id := range p.Marbles {
			m := s.Marbles[id]
			if m.Location.Kind != LocNode {
				continue
			}
			if m.Owner == seat {
				out = append(out, m)
				continue
			}
			if anyRing && m.Location.Node < s.Board.TrackLen {
				out = append(out, m)
			}
		}
	}
	return out
}

// landing checks whether a marble may end its move on dest and returns the
// ids of marbles captured by doing so. Landing on any marble of the moving
// marble's owner is self-blocked; landing on a safety-flagged occupant is
// illegal; landing in a foreign home path is illegal.
func (s *State) landing(mover *Marble, dest int) (captures []int, ok bool) {
	node, err := s.Board.Node(dest)
	if err != nil {
		return nil, false
	}
	if node.HomeFor >= 0 && node.HomeFor != mover.Owner {
		return nil, false
	}
	occ := s.marbleAt(dest)
	if occ == nil || occ.ID == mover.ID {
		return nil, true
	}
	if occ.Owner == mover.Owner {
		return nil, false
	}
	if occ.Safe(s.Board) {
		return nil, false
	}
	return []int{occ.ID}, true
}

// stepCandidates computes plain forward/backward moves for a numeric card.
func (s *State) stepCandidates(seat int, card Card, eff Effect) []MoveCandidate {
	var out []MoveCandidate
	for _, m := range s.movableMarbles(seat, eff.AnyRingMarble) {
		c, ok := s.stepCandidate(seat, card, m, eff.Steps)
		if ok {
			out = append(out, c)
		}
	}
	return out
}

// stepCandidate validates moving one marble by a signed step count on behalf
// of the acting seat. Home forks follow the marble's own color, not the
// acting seat's, so a 5 pushing a foreign marble past the actor's entrance
// keeps it on the ring; backward moves never leave the ring and are not
// available to marbles already in a home path.
func (s *State) stepCandidate(seat int, card Card, m *Marble, steps int) (MoveCandidate, bool) {
	if m.Location.Kind != LocNode {
		return MoveCandidate{}, false
	}
	var path []int
	var ok bool
	if steps < 0 {
		if m.Location.Node >= s.Board.TrackLen {
			return MoveCandidate{}, false
		}
		path, ok = s.Board.walkBackward(m.Location.Node, -steps)
	} else {
		path, ok = s.Board.walkForward(m.Location.Node, steps, m.Owner)
	}
	if !ok {
		return MoveCandidate{}, false
	}
	dest := path[len(path)-1]
	captures, ok := s.landing(m, dest)
	if !ok {
		return MoveCandidate{}, false
	}
	return MoveCandidate{
		Kind:       MoveStandard,
		CardID:     card.ID,
		MarbleID:   m.ID,
		DestNode:   dest,
		SwapMarble: -1,
		Steps:      steps,
		Captures:   captures,
	}, true
}

// baseExitCandidate validates moving a marble from Base onto the start node.
// The exit is blocked by any occupant: an own marble self-blocks, and the
// start square's safety flag protects an opposing occupant from capture.
func (s *State) baseExitCandidate(seat int, card Card) (MoveCandidate, bool) {
	start := s.Board.StartNode(seat)
	if s.marbleAt(start) != nil {
		return MoveCandidate{}, false
	}
	for _, id := range s.Players[seat].Marbles {
		m := s.Marbles[id]
		if m.Location.Kind == LocBase {
			return MoveCandidate{
				Kind:       MoveBaseExit,
				CardID:     card.ID,
				MarbleID:   m.ID,
				DestNode:   start,
				SwapMarble: -1,
			}, true
		}
	}
	return MoveCandidate{}, false
}

// swapCandidates computes black-Jack swaps: any own ring marble with any
// non-safe opposing ring marble.
func (s *State) swapCandidates(seat int, card Card) []MoveCandidate {
	var own, targets []*Marble
	for _, m := range s.Marbles {
		if m.Location.Kind != LocNode || m.Location.Node >= s.Board.TrackLen {
			continue
		}
		if m.Owner == seat {
			own = append(own, m)
		} else if !m.Safe(s.Board) {
			targets = append(targets, m)
		}
	}
	var out []MoveCandidate
	for _, o := range own {
		for _, t := range targets {
			out = append(out, MoveCandidate{
				Kind:       MoveSwap,
				CardID:     card.ID,
				MarbleID:   o.ID,
				DestNode:   t.Location.Node,
				SwapMarble: t.ID,
			})
		}
	}
	return out
}

// killPathCandidates computes the King's 13-step sweep. Every non-safe
// marble on the traversed path is captured, the mover's own included; the
// landing square must end up vacated, so a safe occupant there kills the
// move.
func (s *State) killPathCandidates(seat int, card Card) []MoveCandidate {
	var out []MoveCandidate
	for _, id := range s.Players[seat].Marbles {
		m := s.Marbles[id]
		if m.Location.Kind != LocNode {
			continue
		}
		path, ok := s.Board.walkForward(m.Location.Node, EffectOf(card).Steps, seat)
		if !ok {
			continue
		}
		dest := path[len(path)-1]
		node, err := s.Board.Node(dest)
		if err != nil || (node.HomeFor >= 0 && node.HomeFor != seat) {
			continue
		}
		var captures []int
		blocked := false
		for _, nid := range path {
			occ := s.marbleAt(nid)
			if occ == nil || occ.ID == m.ID {
				continue
			}
			if occ.Safe(s.Board) {
				if nid == dest {
					blocked = true
					break
				}
				continue
			}
			captures = append(captures, occ.ID)
		}
		if blocked {
			continue
		}
		out = append(out, MoveCandidate{
			Kind:       MoveKillPath,
			CardID:     card.ID,
			MarbleID:   m.ID,
			DestNode:   dest,
			SwapMarble: -1,
			Steps:      EffectOf(card).Steps,
			Captures:   captures,
		})
	}
	return out
}

// splitCandidates enumerates first-leg options for the 7: every own marble
// with every step count 1..7 that lands legally. The 7/0 split (all seven
// steps on one marble) is just the Steps == 7 entry.
func (s *State) splitCandidates(seat int, card Card) []MoveCandidate {
	var out []MoveCandidate
	for _, id := range s.Players[seat].Marbles {
		m := s.Marbles[id]
		if m.Location.Kind != LocNode {
			continue
		}
		for steps := 1; steps <= 7; steps++ {
			if c, ok := s.stepCandidate(seat, card, m, steps); ok {
				c.Kind = MoveSplit
				out = append(out, c)
			}
		}
	}
	return out
}

// splitLegCandidates computes the options for the second leg of a 7: the
// remaining step count is mandatory, any own marble may take it.
func (s *State) splitLegCandidates(seat int, cardID, steps int) []MoveCandidate {
	card := Card{ID: cardID, Rank: 7}
	var out []MoveCandidate
	for _, id := range s.Players[seat].Marbles {
		m := s.Marbles[id]
		if m.Location.Kind != LocNode {
			continue
		}
		if c, ok := s.stepCandidate(seat, card, m, steps); ok {
			c.Kind = MoveSplit
			out = append(out, c)
		}
	}
	return out
}

// forceDiscardTarget returns the seat attacked by a 10/red Queen: the next
// seat in turn order holding at least one card, or -1 when nobody can be
// attacked.
func (s *State) forceDiscardTarget(seat int) int {
	n := len(s.Players)
	for i := 1; i < n; i++ {
		victim := (seat + i) % n
		if len(s.Players[victim].Hand) > 0 {
			return victim
		}
	}
	return -1
}

// findCandidate locates a candidate matching the confirm request within the
// current selection context.
func findCandidate(cands []MoveCandidate, marbleID, destNode, swapMarble int) (MoveCandidate, bool) {
	for _, c := range cands {
		if c.MarbleID != marbleID {
			continue
		}
		if destNode >= 0 && c.DestNode != destNode {
			continue
		}
		if swapMarble >= 0 && c.SwapMarble != swapMarble {
			continue
		}
		return c, true
	}
	return MoveCandidate{}, false
}
