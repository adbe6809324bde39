package rules

import (
	"github.com/brensch/conpac/game"
)

// Outcome classifies what a player move led to.
type Outcome int

const (
	OutcomeMoved Outcome = iota
	OutcomeIgnored
	OutcomeKilled // stepped onto a live cell
	OutcomeCaught // stepped onto a ghost
)

// MoveResult reports a player move.
type MoveResult struct {
	Outcome Outcome
	Pickup  Pickup
}

// MovePlayer moves the player one step in dir. Facing changes even when the
// step is clamped; each axis is clamped to the board independently. A dead
// player does not move.
func MovePlayer(s *game.Session, rng game.Rand, cfg game.Config, dir game.Direction) MoveResult {
	if !s.Player.Alive {
		return MoveResult{Outcome: OutcomeIgnored}
	}
	s.Player.Facing = dir

	d := dir.Delta()
	next := s.Player.Pos
	if x := next.X + d.X; x >= 0 && x < s.Grid.Size {
		next.X = x
	}
	if y := next.Y + d.Y; y >= 0 && y < s.Grid.Size {
		next.Y = y
	}
	s.Player.Pos = next

	if s.Grid.Alive(next) {
		s.Player.Alive = false
		return MoveResult{Outcome: OutcomeKilled}
	}
	if s.GhostAt(next) {
		s.Player.Alive = false
		return MoveResult{Outcome: OutcomeCaught}
	}
	return MoveResult{Outcome: OutcomeMoved, Pickup: CollectAt(s, rng, cfg, next)}
}
