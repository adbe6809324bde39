package rules

import (
	"math"

	"github.com/brensch/conpac/game"
)

// GhostColors is the palette ghosts cycle through in spawn order.
var GhostColors = []string{"#ff0000", "#00ff00", "#0000ff", "#ff00ff", "#00ffff", "#ffaa00"}

// SpawnGhosts adds up to count ghosts on dead cells at least minDistance
// (Euclidean) from the player, never two on the same cell. It returns how
// many were placed.
func SpawnGhosts(s *game.Session, rng game.Rand, count int, minDistance float64, attemptFactor int) int {
	player := s.Player.Pos
	ok := func(p game.Point) bool {
		if s.Grid.Alive(p) || s.GhostAt(p) {
			return false
		}
		return math.Hypot(float64(p.X-player.X), float64(p.Y-player.Y)) >= minDistance
	}
	return placeRandom(s.Grid.Size, rng, count, attemptFactor, ok, func(p game.Point) {
		color := GhostColors[len(s.Ghosts)%len(GhostColors)]
		s.Ghosts = append(s.Ghosts, game.Ghost{Pos: p, Color: color})
	})
}

// GhostMoves returns the directions a ghost at p may take: on the board and
// not into a live cell. Order follows game.Directions.
func GhostMoves(g *game.Grid, p game.Point) []game.Direction {
	moves := make([]game.Direction, 0, 4)
	for _, d := range game.Directions {
		next := p.Add(d.Delta())
		if !g.InBounds(next) || g.Alive(next) {
			continue
		}
		moves = append(moves, d)
	}
	return moves
}

// ChaseMove picks the candidate minimising Manhattan distance to target.
// Ties go to the earliest candidate.
func ChaseMove(from, target game.Point, candidates []game.Direction) game.Direction {
	best := candidates[0]
	bestDist := math.MaxInt
	for _, d := range candidates {
		next := from.Add(d.Delta())
		dist := abs(target.X-next.X) + abs(target.Y-next.Y)
		if dist < bestDist {
			bestDist = dist
			best = d
		}
	}
	return best
}

// MoveGhosts advances every ghost one cell in slice order. Each ghost chases
// the player greedily, except that with probability randomChance it takes a
// uniformly random legal move instead. A ghost with no legal move stays put.
//
// If a ghost lands on the player, the player dies and MoveGhosts returns true
// at once; later ghosts do not move that tick.
func MoveGhosts(s *game.Session, rng game.Rand, randomChance float64) bool {
	if !s.Player.Alive {
		return false
	}
	for i := range s.Ghosts {
		g := &s.Ghosts[i]
		candidates := GhostMoves(s.Grid, g.Pos)
		if len(candidates) > 0 {
			move := ChaseMove(g.Pos, s.Player.Pos, candidates)
			if rng.Float64() < randomChance {
				move = candidates[rng.Intn(len(candidates))]
			}
			g.Pos = g.Pos.Add(move.Delta())
		}

		if g.Pos == s.Player.Pos {
			s.Player.Alive = false
			return true
		}
	}
	return false
}
