// Package room hosts one authoritative match per Room: a single goroutine
// owns the GameState and processes all actions serially, so the move engine
// and turn state machine never see concurrent mutation.
package room

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"jackaroo-server/config"
	"jackaroo-server/game"
	"jackaroo-server/gameerrors"
)

// Status is the match lifecycle state.
type Status int

const (
	StatusWaiting Status = iota
	StatusPlaying
	StatusFinished
)

// String returns the protocol string for a Status.
func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusPlaying:
		return "playing"
	case StatusFinished:
		return "finished"
	}
	return "unknown"
}

// actionType enumerates the room actor's inbox.
type actionType int

const (
	actJoin actionType = iota
	actLeave
	actStart
	actGameInput
	actDisconnected
	actResumed
	actExpired
	actTurnTimeout
	actTimerTick
	actBotStep
	actShutdown
)

type joinReply struct {
	seat    int
	players []string
	err     error
}

type action struct {
	typ       actionType
	sessionID uuid.UUID
	name      string
	send      chan []byte
	input     game.Input
	reply     chan joinReply
	seat      int
	remaining int
}

// seatInfo binds one seat to a session. Bot seats have no session.
type seatInfo struct {
	sessionID uuid.UUID
	name      string
	send      chan []byte // nil while disconnected
	bot       bool
}

// MatchResult summarizes a finished match for persistence.
type MatchResult struct {
	MatchID    uuid.UUID
	RoomCode   string
	Players    []string
	WinnerSeat int // -1 when abandoned
	Rounds     int
	EndReason  string
}

// Room is one match instance. All fields below mu are owned by the Run
// goroutine exclusively.
type Room struct {
	Code       string
	MaxPlayers int
	MatchID    uuid.UUID

	cfg *config.Config
	rng *rand.Rand

	mu           sync.Mutex
	status       Status
	lastActivity time.Time

	seats    []*seatInfo
	state    *game.State
	autoMode []bool

	turnTimerCancel chan struct{}
	turnEndsAt      time.Time
	botPending      bool

	Actions chan action
	Done    chan struct{}

	// OnFinished is called once when the match ends; the server wires it
	// to the history store and room registry cleanup.
	OnFinished func(*Room, MatchResult)
}

// NewRoom creates a room in the waiting state.
func NewRoom(code string, maxPlayers int, cfg *config.Config, rng *rand.Rand) *Room {
	return &Room{
		Code:         code,
		MaxPlayers:   maxPlayers,
		MatchID:      uuid.New(),
		cfg:          cfg,
		rng:          rng,
		status:       StatusWaiting,
		lastActivity: time.Now(),
		seats:        make([]*seatInfo, maxPlayers),
		autoMode:     make([]bool, maxPlayers),
		Actions:      make(chan action, 32),
		Done:         make(chan struct{}),
	}
}

// Status returns the lifecycle status (safe from any goroutine).
func (r *Room) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// LastActivity returns the last mutation time (safe from any goroutine).
func (r *Room) LastActivity() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActivity
}

func (r *Room) setStatus(s Status) {
	r.mu.Lock()
	r.status = s
	r.mu.Unlock()
}

func (r *Room) touch() {
	r.mu.Lock()
	r.lastActivity = time.Now()
	r.mu.Unlock()
}

// Join requests a seat for the session and blocks for the reply. The
// returned roster lists the names seated so far, indexed by seat.
func (r *Room) Join(sessionID uuid.UUID, name string, send chan []byte) (int, []string, error) {
	reply := make(chan joinReply, 1)
	select {
	case r.Actions <- action{typ: actJoin, sessionID: sessionID, name: name, send: send, reply: reply}:
	case <-r.Done:
		return -1, nil, gameerrors.ErrRoomNotFound
	}
	select {
	case res := <-reply:
		return res.seat, res.players, res.err
	case <-r.Done:
		return -1, nil, gameerrors.ErrRoomNotFound
	}
}

// Leave releases the session's seat.
func (r *Room) Leave(sessionID uuid.UUID) { r.post(action{typ: actLeave, sessionID: sessionID}) }

// Start asks the room to begin the match, filling empty seats with bots.
func (r *Room) Start(sessionID uuid.UUID) { r.post(action{typ: actStart, sessionID: sessionID}) }

// Submit routes one game action from a session into the match.
func (r *Room) Submit(sessionID uuid.UUID, in game.Input) {
	r.post(action{typ: actGameInput, sessionID: sessionID, input: in})
}

// SessionDisconnected marks the session's seat as temporarily offline.
func (r *Room) SessionDisconnected(sessionID uuid.UUID) {
	r.post(action{typ: actDisconnected, sessionID: sessionID})
}

// SessionResumed reattaches a reconnected session with its new channel.
func (r *Room) SessionResumed(sessionID uuid.UUID, send chan []byte) {
	r.post(action{typ: actResumed, sessionID: sessionID, send: send})
}

// SessionExpired releases the seat after the reconnection grace window.
func (r *Room) SessionExpired(sessionID uuid.UUID) {
	r.post(action{typ: actExpired, sessionID: sessionID})
}

// Shutdown stops the room's goroutine.
func (r *Room) Shutdown() { r.post(action{typ: actShutdown}) }

func (r *Room) post(a action) {
	select {
	case r.Actions <- a:
	case <-r.Done:
	}
}

// Run is the room's main loop; one in-flight mutation at a time.
func (r *Room) Run() {
	defer close(r.Done)
	for a := range r.Actions {
		switch a.typ {
		case actJoin:
			a.reply <- r.handleJoin(a)
		case actLeave:
			r.handleLeave(a.sessionID)
		case actStart:
			r.handleStart(a.sessionID)
		case actGameInput:
			r.handleGameInput(a.sessionID, a.input)
		case actDisconnected:
			r.handleDisconnected(a.sessionID)
		case actResumed:
			r.handleResumed(a.sessionID, a.send)
		case actExpired:
			r.handleExpired(a.sessionID)
		case actTurnTimeout:
			r.handleTurnTimeout()
		case actTimerTick:
			r.handleTimerTick(a.seat, a.remaining)
		case actBotStep:
			r.handleBotStep()
		case actShutdown:
			r.cancelTurnTimer()
			return
		}
		r.touch()
	}
}

// seatOf finds the seat bound to a session, or -1.
func (r *Room) seatOf(sessionID uuid.UUID) int {
	for i, s := range r.seats {
		if s != nil && !s.bot && s.sessionID == sessionID {
			return i
		}
	}
	return -1
}

// handleJoin assigns the first unused seat. Joins are refused once the room
// is full or the match has left the waiting state.
func (r *Room) handleJoin(a action) joinReply {
	if r.Status() != StatusWaiting {
		return joinReply{seat: -1, err: gameerrors.ErrGameAlreadyStarted}
	}
	if r.seatOf(a.sessionID) >= 0 {
		return joinReply{seat: -1, err: gameerrors.ErrValidation}
	}
	for i, s := range r.seats {
		if s != nil {
			continue
		}
		r.seats[i] = &seatInfo{sessionID: a.sessionID, name: a.name, send: a.send}
		r.broadcast(playerJoinedMsg{Type: "PLAYER_JOINED", PlayerIndex: i, Name: a.name})
		slog.Info("player joined", "tag", "room", "code", r.Code, "seat", i, "name", a.name)
		players := make([]string, len(r.seats))
		for j, s := range r.seats {
			if s != nil {
				players[j] = s.name
			}
		}
		if r.full() {
			r.startMatch()
		}
		return joinReply{seat: i, players: players}
	}
	return joinReply{seat: -1, err: gameerrors.ErrRoomFull}
}

func (r *Room) full() bool {
	for _, s := range r.seats {
		if s == nil {
			return false
		}
	}
	return true
}

// handleStart begins the match early at the creator's request; empty seats
// are filled with bots. Only seat 0 may start.
func (r *Room) handleStart(sessionID uuid.UUID) {
	seat := r.seatOf(sessionID)
	if r.Status() != StatusWaiting {
		r.sendErrorTo(seat, gameerrors.ErrGameAlreadyStarted)
		return
	}
	if seat != 0 {
		r.sendErrorTo(seat, gameerrors.ErrValidation)
		return
	}
	for i, s := range r.seats {
		if s == nil {
			r.seats[i] = &seatInfo{name: fmt.Sprintf("Bot %d", i), bot: true}
		}
	}
	r.startMatch()
}

// startMatch produces the initial GameState and broadcasts it.
func (r *Room) startMatch() {
	names := make([]string, len(r.seats))
	bots := make([]bool, len(r.seats))
	for i, s := range r.seats {
		names[i] = s.name
		bots[i] = s.bot
	}
	r.state = game.NewState(r.cfg.TrackLen, r.cfg.HomePathLen, names, bots, r.rng)
	r.setStatus(StatusPlaying)
	slog.Info("match started", "tag", "room", "code", r.Code, "players", len(names))

	for i, s := range r.seats {
		if s.bot {
			continue
		}
		send(s.send, gameStartedMsg{Type: "GAME_STARTED", State: r.state.ViewFor(i)})
	}
	r.afterMutation()
}

// handleGameInput routes an action into the state machine after the
// turn-ownership check; everything else about legality is the machine's
// business. A real action from a seat in auto-mode switches it back to
// manual.
func (r *Room) handleGameInput(sessionID uuid.UUID, in game.Input) {
	seat := r.seatOf(sessionID)
	if seat < 0 {
		return
	}
	switch r.Status() {
	case StatusPlaying:
	case StatusFinished:
		r.sendErrorTo(seat, fmt.Errorf("%w: match finished", gameerrors.ErrInvalidMove))
		return
	default:
		r.sendErrorTo(seat, gameerrors.ErrGameNotStarted)
		return
	}
	if seat != r.state.Current {
		r.sendErrorTo(seat, gameerrors.ErrNotYourTurn)
		return
	}
	if r.autoMode[seat] {
		r.autoMode[seat] = false
		r.broadcast(autoModeChangedMsg{Type: "AUTO_MODE_CHANGED", PlayerIndex: seat, IsAutoMode: false})
	}

	in.Seat = seat
	if _, err := r.state.HandleInput(in); err != nil {
		r.sendErrorTo(seat, err)
		return
	}
	r.afterMutation()
}

// afterMutation redacts and broadcasts the new state to every connected
// session, restarts the turn timer, finishes the match when the machine
// reached GameOver, and schedules the next bot step if one is due.
func (r *Room) afterMutation() {
	r.broadcastState()
	if r.state.Phase == game.PhaseGameOver {
		r.finish(r.state.Winner, "completed")
		return
	}
	r.resetTurnTimer()
	r.maybeScheduleBot()
}

// broadcastState sends each connected session its own redacted view.
func (r *Room) broadcastState() {
	for i, s := range r.seats {
		if s == nil || s.bot || s.send == nil {
			continue
		}
		send(s.send, stateUpdateMsg{Type: "STATE_UPDATE", State: r.state.ViewFor(i)})
	}
}

// broadcast sends one message to every connected session.
func (r *Room) broadcast(msg interface{}) {
	for _, s := range r.seats {
		if s == nil || s.bot || s.send == nil {
			continue
		}
		send(s.send, msg)
	}
}

// sendErrorTo surfaces a typed error to one seat only.
func (r *Room) sendErrorTo(seat int, err error) {
	if seat < 0 || seat >= len(r.seats) || r.seats[seat] == nil {
		return
	}
	send(r.seats[seat].send, errorMsg{Type: "ERROR", Code: gameerrors.Code(err), Message: err.Error()})
}

// handleLeave releases a seat on explicit LEAVE_ROOM. Mid-match the seat is
// handed to auto-play; an empty room finishes without a winner.
func (r *Room) handleLeave(sessionID uuid.UUID) {
	seat := r.seatOf(sessionID)
	if seat < 0 {
		return
	}
	switch r.Status() {
	case StatusWaiting:
		r.seats[seat] = nil
		r.broadcast(playerLeftMsg{Type: "PLAYER_LEFT", PlayerIndex: seat})
	case StatusPlaying:
		r.seats[seat].send = nil
		r.seats[seat].bot = true
		r.broadcast(playerLeftMsg{Type: "PLAYER_LEFT", PlayerIndex: seat})
		if r.humanCount() == 0 {
			r.finish(-1, "abandoned")
			return
		}
		r.maybeScheduleBot()
	default:
	}
}

// handleDisconnected marks the seat offline; the session manager owns the
// grace window, the room just stops sending to it.
func (r *Room) handleDisconnected(sessionID uuid.UUID) {
	seat := r.seatOf(sessionID)
	if seat < 0 {
		return
	}
	r.seats[seat].send = nil
	slog.Info("seat offline", "tag", "room", "code", r.Code, "seat", seat)
	// Stalled turns are covered by the turn timer + auto-play.
}

// handleResumed swaps in the reconnected session's channel and resyncs it.
func (r *Room) handleResumed(sessionID uuid.UUID, send chan []byte) {
	seat := r.seatOf(sessionID)
	if seat < 0 {
		return
	}
	r.seats[seat].send = send
	slog.Info("seat resumed", "tag", "room", "code", r.Code, "seat", seat)
	if r.Status() == StatusPlaying {
		r.sendTo(seat, stateUpdateMsg{Type: "STATE_UPDATE", State: r.state.ViewFor(seat)})
	}
}

func (r *Room) sendTo(seat int, msg interface{}) {
	if s := r.seats[seat]; s != nil {
		send(s.send, msg)
	}
}

// handleExpired releases the seat for good after the grace window.
func (r *Room) handleExpired(sessionID uuid.UUID) {
	seat := r.seatOf(sessionID)
	if seat < 0 {
		return
	}
	switch r.Status() {
	case StatusWaiting:
		r.seats[seat] = nil
		r.broadcast(playerLeftMsg{Type: "PLAYER_LEFT", PlayerIndex: seat})
	case StatusPlaying:
		r.seats[seat].send = nil
		r.seats[seat].bot = true
		r.broadcast(playerLeftMsg{Type: "PLAYER_LEFT", PlayerIndex: seat})
		if r.humanCount() == 0 {
			r.finish(-1, "abandoned")
			return
		}
		r.maybeScheduleBot()
	}
}

func (r *Room) humanCount() int {
	n := 0
	for _, s := range r.seats {
		if s != nil && !s.bot {
			n++
		}
	}
	return n
}

// finish ends the match exactly once.
func (r *Room) finish(winner int, reason string) {
	if r.Status() == StatusFinished {
		return
	}
	r.cancelTurnTimer()
	r.setStatus(StatusFinished)
	slog.Info("match finished", "tag", "room", "code", r.Code, "winner", winner, "reason", reason)

	if r.OnFinished != nil {
		names := make([]string, len(r.seats))
		for i, s := range r.seats {
			if s != nil {
				names[i] = s.name
			}
		}
		rounds := 0
		if r.state != nil {
			rounds = r.state.Round
		}
		r.OnFinished(r, MatchResult{
			MatchID:    r.MatchID,
			RoomCode:   r.Code,
			Players:    names,
			WinnerSeat: winner,
			Rounds:     rounds,
			EndReason:  reason,
		})
	}
}
