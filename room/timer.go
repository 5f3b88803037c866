package room

import (
	"log/slog"
	"time"

	"jackaroo-server/bot"
	"jackaroo-server/game"
)

// Turn timer and auto-play fallback. The timer goroutine only ever reports
// back through the actions channel — ticks and timeouts alike — so they are
// processed serially like every other mutation and never touch seat state
// concurrently; cancel-on-supersede keeps a stale timer from firing against
// an advanced turn or a finished match.

// timerTick is how often TIMER_UPDATE is pushed while a countdown runs.
const timerTick = time.Second

// resetTurnTimer restarts the countdown for the acting seat. Bot seats and
// seats already in auto-mode play immediately and get no timer.
func (r *Room) resetTurnTimer() {
	r.cancelTurnTimer()
	if r.cfg.TurnLimitSec <= 0 || r.Status() != StatusPlaying {
		return
	}
	seat := r.state.Current
	if r.seats[seat] == nil || r.seats[seat].bot || r.autoMode[seat] {
		return
	}

	limit := time.Duration(r.cfg.TurnLimitSec) * time.Second
	r.turnEndsAt = time.Now().Add(limit)
	r.turnTimerCancel = make(chan struct{})
	cancel := r.turnTimerCancel

	r.broadcast(timerUpdateMsg{
		Type:               "TIMER_UPDATE",
		TimeRemaining:      r.cfg.TurnLimitSec,
		CurrentPlayerIndex: seat,
	})

	go func(deadline time.Time, seat int) {
		ticker := time.NewTicker(timerTick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				remaining := time.Until(deadline)
				if remaining <= 0 {
					select {
					case r.Actions <- action{typ: actTurnTimeout}:
					case <-r.Done:
					}
					return
				}
				select {
				case r.Actions <- action{typ: actTimerTick, seat: seat, remaining: int(remaining.Round(time.Second) / time.Second)}:
				case <-cancel:
					return
				case <-r.Done:
					return
				}
			case <-cancel:
				return
			case <-r.Done:
				return
			}
		}
	}(r.turnEndsAt, seat)
}

// handleTimerTick broadcasts one countdown update. Ticks from a superseded
// timer, a finished match, or an already-advanced turn are dropped.
func (r *Room) handleTimerTick(seat, remaining int) {
	if r.turnTimerCancel == nil || r.Status() != StatusPlaying || r.state.Current != seat {
		return
	}
	r.broadcast(timerUpdateMsg{
		Type:               "TIMER_UPDATE",
		TimeRemaining:      remaining,
		CurrentPlayerIndex: seat,
	})
}

// cancelTurnTimer stops any running countdown. Safe when none is running.
func (r *Room) cancelTurnTimer() {
	if r.turnTimerCancel != nil {
		close(r.turnTimerCancel)
		r.turnTimerCancel = nil
	}
	r.turnEndsAt = time.Time{}
}

// handleTurnTimeout flips the stalled seat into auto-mode and plays a
// fallback on its behalf.
func (r *Room) handleTurnTimeout() {
	if r.turnTimerCancel == nil || r.Status() != StatusPlaying {
		return
	}
	r.cancelTurnTimer()
	seat := r.state.Current
	if !r.autoMode[seat] {
		r.autoMode[seat] = true
		r.broadcast(autoModeChangedMsg{Type: "AUTO_MODE_CHANGED", PlayerIndex: seat, IsAutoMode: true})
		slog.Info("auto-mode engaged", "tag", "room", "code", r.Code, "seat", seat)
	}
	r.maybeScheduleBot()
}

// maybeScheduleBot schedules one delayed bot step when the acting seat is a
// bot or in auto-mode. At most one step is in flight at a time; each step
// reschedules the next, which paces bot play and keeps the inbox bounded.
func (r *Room) maybeScheduleBot() {
	if r.botPending || r.Status() != StatusPlaying {
		return
	}
	seat := r.state.Current
	if r.seats[seat] == nil || (!r.seats[seat].bot && !r.autoMode[seat]) {
		return
	}
	r.botPending = true
	delay := time.Duration(r.cfg.BotDelayMS) * time.Millisecond
	go func() {
		time.Sleep(delay)
		select {
		case r.Actions <- action{typ: actBotStep}:
		case <-r.Done:
		}
	}()
}

// handleBotStep advances the match by one bot decision: the next input batch
// from the heuristic, applied exactly as if the client had submitted it.
func (r *Room) handleBotStep() {
	r.botPending = false
	if r.Status() != StatusPlaying {
		return
	}
	seat := r.state.Current
	if r.seats[seat] == nil || (!r.seats[seat].bot && !r.autoMode[seat]) {
		return
	}

	inputs := bot.NextInputs(r.state, seat)
	if len(inputs) == 0 {
		// No decision available in this phase; force the turn forward so a
		// heuristic gap can never wedge the match.
		inputs = []game.Input{game.NewInput(game.InputResolveTurn, seat)}
	}
	for _, in := range inputs {
		if _, err := r.state.HandleInput(in); err != nil {
			slog.Warn("bot input rejected", "tag", "room", "code", r.Code, "seat", seat, "kind", in.Kind.String(), "err", err)
			break
		}
		if r.state.Phase == game.PhaseGameOver {
			break
		}
	}
	r.afterMutation()
}
