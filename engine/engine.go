// Package engine runs one game: it owns the session, sequences each tick,
// gates player input and moves between the idle, running, paused and over
// states.
//
// An Engine is not safe for concurrent use. Everything (ticks, input, start,
// pause, reset) must arrive on one goroutine; Driver provides that loop.
package engine

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/brensch/conpac/game"
	"github.com/brensch/conpac/rules"
)

type Options struct {
	Config    game.Config
	Rand      game.Rand
	Scheduler Scheduler
	Observer  Observer
	Logger    *slog.Logger

	// Now and NewID default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

type Engine struct {
	cfg       game.Config
	rng       game.Rand
	scheduler Scheduler
	observer  Observer
	log       *slog.Logger
	now       func() time.Time
	newID     func() string

	session  *game.Session
	state    State
	interval time.Duration
	spedUp   bool
	gate     MoveGate
	result   *Result
}

// New builds an engine with a fresh session in the idle state.
func New(opts Options) *Engine {
	e := &Engine{
		cfg:       opts.Config,
		rng:       opts.Rand,
		scheduler: opts.Scheduler,
		observer:  opts.Observer,
		log:       opts.Logger,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	if e.rng == nil {
		e.rng = game.NewRand(0)
	}
	if e.scheduler == nil {
		e.scheduler = nopScheduler{}
	}
	if e.observer == nil {
		e.observer = nopObserver{}
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	e.reset()
	return e
}

func (e *Engine) State() State            { return e.state }
func (e *Engine) Session() *game.Session  { return e.session }
func (e *Engine) Config() game.Config     { return e.cfg }
func (e *Engine) Interval() time.Duration { return e.interval }
func (e *Engine) Snapshot() game.Snapshot { return e.session.Snapshot(e.state.String()) }

// Result returns the outcome of a finished game.
func (e *Engine) Result() (Result, bool) {
	if e.result == nil {
		return Result{}, false
	}
	return *e.result, true
}

// Start moves an idle or paused game to running and starts the tick schedule.
func (e *Engine) Start() bool {
	if e.state != StateIdle && e.state != StatePaused {
		return false
	}
	e.state = StateRunning
	e.scheduler.Start(e.interval)
	e.log.Debug("game running", "game_id", e.session.ID, "interval", e.interval)
	e.publish()
	return true
}

// Pause stops the tick schedule and keeps the session as it is.
func (e *Engine) Pause() bool {
	if e.state != StateRunning {
		return false
	}
	e.state = StatePaused
	e.scheduler.Stop()
	e.publish()
	return true
}

// Reset abandons the current session and starts over in the idle state.
func (e *Engine) Reset() {
	e.scheduler.Stop()
	e.reset()
	e.publish()
}

func (e *Engine) reset() {
	e.session = rules.NewSession(e.newID(), e.cfg, e.rng)
	e.state = StateIdle
	e.interval = e.cfg.TickInterval
	e.spedUp = false
	e.result = nil
	e.gate = MoveGate{Interval: e.cfg.MoveCooldown}
	e.log.Info("new game", "game_id", e.session.ID, "variant", e.cfg.Name,
		"live", e.session.Grid.LiveCount(), "ghosts", len(e.session.Ghosts))
}

// Input handles a directional signal the way a keypress does: it starts an
// idle or paused game, then makes a move if the cooldown allows one.
func (e *Engine) Input(dir game.Direction) bool {
	if e.state == StateOver {
		return false
	}
	if e.state != StateRunning {
		e.Start()
	}
	if !e.gate.Allow(e.now()) {
		return false
	}
	res := e.Move(dir)
	return res.Outcome != rules.OutcomeIgnored
}

// Move applies one player step without the cooldown gate. Only a running
// game with a live player accepts moves.
func (e *Engine) Move(dir game.Direction) rules.MoveResult {
	if e.state != StateRunning || !e.session.Player.Alive {
		return rules.MoveResult{Outcome: rules.OutcomeIgnored}
	}

	res := rules.MovePlayer(e.session, e.rng, e.cfg, dir)
	switch res.Outcome {
	case rules.OutcomeKilled:
		e.finish(ReasonEnvironment, MsgWalkedIntoWall)
		return res
	case rules.OutcomeCaught:
		e.finish(ReasonCaught, MsgCaught)
		return res
	}
	if res.Pickup.Replenished > 0 {
		e.log.Debug("collectibles replenished", "game_id", e.session.ID, "added", res.Pickup.Replenished)
	}
	e.publish()
	return res
}

// Tick advances the game by one step. It does nothing unless the game is
// running, so a late timer callback after a pause or game over is harmless.
func (e *Engine) Tick() {
	if e.state != StateRunning {
		return
	}
	s := e.session

	s.MouthOpen = !s.MouthOpen

	if rules.MoveGhosts(s, e.rng, e.cfg.GhostRandomChance) {
		e.finish(ReasonCaught, MsgCaught)
		return
	}

	s.Grid = rules.StepLife(s.Grid)
	s.Generation++

	rules.SweepCollectibles(s)

	if s.Player.Alive && s.Grid.Alive(s.Player.Pos) {
		s.Player.Alive = false
		e.finish(ReasonEnvironment, MsgWallsGrew)
		return
	}

	e.placePatterns()

	if s.Grid.Empty() {
		e.finish(ReasonExtinction, MsgExtinction)
		return
	}

	e.maybeSpeedUp()
	e.publish()
}

func (e *Engine) placePatterns() {
	s := e.session
	for _, cad := range e.cfg.Patterns {
		if cad.Every <= 0 || s.Generation%cad.Every != 0 {
			continue
		}
		p, ok := rules.LookupPattern(cad.Pattern)
		if !ok {
			continue
		}
		corner, placed := rules.PlaceAtRandomCorner(s, e.rng, p)
		if !placed {
			e.log.Debug("pattern skipped", "game_id", s.ID, "pattern", p.Name, "generation", s.Generation)
			continue
		}
		e.log.Debug("pattern placed", "game_id", s.ID, "pattern", p.Name, "corner", corner.String())
		e.observer.Notice(p.Notice)
	}
}

func (e *Engine) maybeSpeedUp() {
	if e.spedUp || e.cfg.FastTickInterval <= 0 || e.session.Total() <= e.cfg.SpeedUpScore {
		return
	}
	e.spedUp = true
	e.interval = e.cfg.FastTickInterval
	e.scheduler.Start(e.interval)
	e.log.Info("speed up", "game_id", e.session.ID, "interval", e.interval, "total", e.session.Total())
	e.observer.Notice(MsgSpeedUp)
}

// finish ends the game once. Later calls are ignored.
func (e *Engine) finish(reason Reason, msg string) {
	if e.state == StateOver {
		return
	}
	e.state = StateOver
	e.scheduler.Stop()

	s := e.session
	res := Result{
		GameID:     s.ID,
		Variant:    e.cfg.Name,
		Reason:     reason,
		Message:    msg,
		Score:      s.Score,
		Generation: s.Generation,
		Total:      s.Total(),
		EndedAt:    e.now(),
	}
	e.result = &res

	e.log.Info("game over", "game_id", s.ID, "reason", reason.String(),
		"score", res.Score, "generation", res.Generation, "total", res.Total)
	e.publish()
	e.observer.GameOver(res)
}

func (e *Engine) publish() {
	e.observer.Frame(e.Snapshot())
}
