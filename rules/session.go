// Package rules implements the transitions of the Life arcade game: the
// automaton step, spaceship placement, ghost movement, collectibles and player
// movement. Every function works on an explicit *game.Session and draws
// randomness from an injected game.Rand.
package rules

import (
	"github.com/brensch/conpac/game"
)

// NewSession builds a fresh game: player at the centre, seeded live cells,
// collectibles, then ghosts.
func NewSession(id string, cfg game.Config, rng game.Rand) *game.Session {
	s := &game.Session{
		ID:        id,
		Grid:      game.NewGrid(cfg.GridSize),
		Player:    game.Player{Pos: cfg.Center(), Alive: true, Facing: game.Right},
		MouthOpen: true,
	}
	SeedLife(s, rng, cfg.SeedCells, cfg.SeedExclusion, cfg.SeedAttemptFactor)
	SeedCollectibles(s, rng, cfg.Collectibles, cfg.SeedAttemptFactor)
	SpawnGhosts(s, rng, cfg.GhostCount, cfg.GhostMinDistance, cfg.SeedAttemptFactor)
	return s
}
