package main

import (
	"github.com/brensch/conpac/game"
)

// greedyMove steers toward the nearest uncollected item, never onto a live
// cell and, when there is a choice, never next to a ghost. With no safe move
// it keeps the current facing, which clamps harmlessly at walls.
func greedyMove(s *game.Session) game.Direction {
	type option struct {
		dir    game.Direction
		dist   int
		ghosty bool
	}

	options := make([]option, 0, 4)
	for _, d := range game.Directions {
		next := s.Player.Pos.Add(d.Delta())
		if !s.Grid.InBounds(next) || s.Grid.Alive(next) || s.GhostAt(next) {
			continue
		}
		options = append(options, option{
			dir:    d,
			dist:   nearestItem(s, next),
			ghosty: nearGhost(s, next),
		})
	}
	if len(options) == 0 {
		return s.Player.Facing
	}

	best := options[0]
	for _, o := range options[1:] {
		if best.ghosty != o.ghosty {
			if best.ghosty {
				best = o
			}
			continue
		}
		if o.dist < best.dist {
			best = o
		}
	}
	return best.dir
}

func nearestItem(s *game.Session, from game.Point) int {
	best := 1 << 30
	for _, c := range s.Collectibles {
		if c.Collected {
			continue
		}
		if d := manhattan(from, c.Pos); d < best {
			best = d
		}
	}
	return best
}

func nearGhost(s *game.Session, p game.Point) bool {
	for _, g := range s.Ghosts {
		if manhattan(p, g.Pos) <= 1 {
			return true
		}
	}
	return false
}

func manhattan(a, b game.Point) int {
	dx, dy := a.X-b.X, a.Y-b.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
