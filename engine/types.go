package engine

import (
	"fmt"
	"time"

	"github.com/brensch/conpac/game"
)

type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateOver
)

var stateNames = [...]string{"idle", "running", "paused", "over"}

func (s State) String() string {
	if s < StateIdle || s > StateOver {
		return "unknown"
	}
	return stateNames[s]
}

// Reason classifies how a game ended.
type Reason int

const (
	ReasonCaught Reason = iota
	ReasonEnvironment
	ReasonExtinction
)

var reasonNames = [...]string{"caught", "environment", "extinction"}

func (r Reason) String() string {
	if r < ReasonCaught || r > ReasonExtinction {
		return "unknown"
	}
	return reasonNames[r]
}

func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Reason) UnmarshalText(b []byte) error {
	for i, name := range reasonNames {
		if name == string(b) {
			*r = Reason(i)
			return nil
		}
	}
	return fmt.Errorf("unknown reason %q", b)
}

// Messages shown to the player for each way a game can end.
const (
	MsgCaught         = "Caught by a ghost!"
	MsgWalkedIntoWall = "You were eaten by the walls! Watch out next time."
	MsgWallsGrew      = "The walls grew onto you! Watch your surroundings more next time."
	MsgExtinction     = "You have experienced the slow death of the universe."
	MsgSpeedUp        = "Game speed increased!"
)

// Result is delivered exactly once per game when it ends.
type Result struct {
	GameID     string    `json:"game_id"`
	Variant    string    `json:"variant"`
	Reason     Reason    `json:"reason"`
	Message    string    `json:"message"`
	Score      int       `json:"score"`
	Generation int       `json:"generation"`
	Total      int       `json:"total"`
	EndedAt    time.Time `json:"ended_at"`
}

// Scheduler drives Tick at a fixed interval. Start replaces any running
// schedule; Stop is idempotent.
type Scheduler interface {
	Start(interval time.Duration)
	Stop()
}

// Observer receives everything the engine publishes. Calls happen on the
// engine's goroutine and must not block for long.
type Observer interface {
	Frame(snap game.Snapshot)
	Notice(text string)
	GameOver(res Result)
}

// Observers fans out to every member in order.
type Observers []Observer

func (o Observers) Frame(snap game.Snapshot) {
	for _, ob := range o {
		ob.Frame(snap)
	}
}

func (o Observers) Notice(text string) {
	for _, ob := range o {
		ob.Notice(text)
	}
}

func (o Observers) GameOver(res Result) {
	for _, ob := range o {
		ob.GameOver(res)
	}
}

type nopObserver struct{}

func (nopObserver) Frame(game.Snapshot) {}
func (nopObserver) Notice(string)       {}
func (nopObserver) GameOver(Result)     {}

type nopScheduler struct{}

func (nopScheduler) Start(time.Duration) {}
func (nopScheduler) Stop()               {}
