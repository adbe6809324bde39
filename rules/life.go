package rules

import (
	"github.com/brensch/conpac/game"
)

// StepLife returns the next generation of g under B3/S23.
// Neighbours are the 8 surrounding cells; cells beyond the edge count as dead.
// The result is computed from g alone and g is not modified.
func StepLife(g *game.Grid) *game.Grid {
	n := g.Size
	next := game.NewGrid(n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			live := liveNeighbours(g, x, y)
			if g.Cells[y*n+x] {
				next.Cells[y*n+x] = live == 2 || live == 3
			} else {
				next.Cells[y*n+x] = live == 3
			}
		}
	}
	return next
}

func liveNeighbours(g *game.Grid, x, y int) int {
	n := g.Size
	count := 0
	for dy := -1; dy <= 1; dy++ {
		ny := y + dy
		if ny < 0 || ny >= n {
			continue
		}
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx := x + dx
			if nx < 0 || nx >= n {
				continue
			}
			if g.Cells[ny*n+nx] {
				count++
			}
		}
	}
	return count
}

// SeedLife brings count dead cells to life at random, keeping the square of
// Chebyshev radius exclusion around the player clear. It returns how many
// cells were placed, which is fewer than count only when no free cell is left.
func SeedLife(s *game.Session, rng game.Rand, count, exclusion, attemptFactor int) int {
	player := s.Player.Pos
	ok := func(p game.Point) bool {
		if s.Grid.Alive(p) {
			return false
		}
		return abs(p.X-player.X) > exclusion || abs(p.Y-player.Y) > exclusion
	}
	return placeRandom(s.Grid.Size, rng, count, attemptFactor, ok, func(p game.Point) {
		s.Grid.Set(p, true)
	})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
