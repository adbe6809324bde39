package rules

import (
	"github.com/brensch/conpac/game"
)

// Pattern is a fixed arrangement of live cells relative to its top-left
// corner. Unflipped patterns travel towards +X (and +Y for the glider), so a
// pattern stamped at the top-left corner heads into the board.
type Pattern struct {
	Name   string
	Width  int
	Height int
	Cells  []game.Point
	Notice string
}

var (
	Glider = Pattern{
		Name:   "glider",
		Width:  3,
		Height: 3,
		Cells:  []game.Point{{X: 2, Y: 0}, {X: 0, Y: 1}, {X: 2, Y: 1}, {X: 1, Y: 2}, {X: 2, Y: 2}},
		Notice: "A glider has entered the arena! Watch it soar!",
	}

	LWSS = Pattern{
		Name:   "lwss",
		Width:  5,
		Height: 4,
		Cells: []game.Point{
			{X: 0, Y: 0}, {X: 3, Y: 0},
			{X: 4, Y: 1},
			{X: 0, Y: 2}, {X: 4, Y: 2},
			{X: 1, Y: 3}, {X: 2, Y: 3}, {X: 3, Y: 3}, {X: 4, Y: 3},
		},
		Notice: "LWSS incoming! Fast-moving debris detected!",
	}

	MWSS = Pattern{
		Name:   "mwss",
		Width:  6,
		Height: 5,
		Cells: []game.Point{
			{X: 2, Y: 0},
			{X: 0, Y: 1}, {X: 4, Y: 1},
			{X: 5, Y: 2},
			{X: 0, Y: 3}, {X: 5, Y: 3},
			{X: 1, Y: 4}, {X: 2, Y: 4}, {X: 3, Y: 4}, {X: 4, Y: 4}, {X: 5, Y: 4},
		},
		Notice: "MWSS detected! A medium sized ship is cruising through space!",
	}
)

var patternsByName = map[string]Pattern{
	Glider.Name: Glider,
	LWSS.Name:   LWSS,
	MWSS.Name:   MWSS,
}

// LookupPattern finds a built-in pattern by name.
func LookupPattern(name string) (Pattern, bool) {
	p, ok := patternsByName[name]
	return p, ok
}

type Corner int

const (
	TopLeft Corner = iota
	TopRight
	BottomLeft
	BottomRight
)

var Corners = [4]Corner{TopLeft, TopRight, BottomLeft, BottomRight}

func (c Corner) String() string {
	switch c {
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	case BottomLeft:
		return "bottom-left"
	case BottomRight:
		return "bottom-right"
	}
	return "unknown"
}

// origin returns where p's bounding box starts in c and how it must be
// mirrored to face inwards.
func (c Corner) origin(size int, p Pattern) (at game.Point, flipX, flipY bool) {
	switch c {
	case TopRight:
		return game.Point{X: size - p.Width, Y: 0}, true, false
	case BottomLeft:
		return game.Point{X: 0, Y: size - p.Height}, false, true
	case BottomRight:
		return game.Point{X: size - p.Width, Y: size - p.Height}, true, true
	}
	return game.Point{}, false, false
}

// Stamp writes p into g at origin, mirrored as requested. It refuses, leaving
// g untouched, if any target cell is out of bounds, already alive or equal to
// blocked.
func Stamp(g *game.Grid, p Pattern, origin game.Point, flipX, flipY bool, blocked game.Point) bool {
	targets := make([]game.Point, 0, len(p.Cells))
	for _, c := range p.Cells {
		dx, dy := c.X, c.Y
		if flipX {
			dx = p.Width - 1 - dx
		}
		if flipY {
			dy = p.Height - 1 - dy
		}
		t := game.Point{X: origin.X + dx, Y: origin.Y + dy}
		if !g.InBounds(t) || g.Alive(t) || t == blocked {
			return false
		}
		targets = append(targets, t)
	}
	for _, t := range targets {
		g.Set(t, true)
	}
	return true
}

// PlacePattern stamps p into the given corner of the session grid, mirrored
// to face inwards, avoiding the player's cell.
func PlacePattern(s *game.Session, p Pattern, corner Corner) bool {
	at, flipX, flipY := corner.origin(s.Grid.Size, p)
	return Stamp(s.Grid, p, at, flipX, flipY, s.Player.Pos)
}

// PlaceAtRandomCorner tries the four corners in random order and stops at the
// first one that accepts p.
func PlaceAtRandomCorner(s *game.Session, rng game.Rand, p Pattern) (Corner, bool) {
	order := Corners
	for i := len(order) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	for _, c := range order {
		if PlacePattern(s, p, c) {
			return c, true
		}
	}
	return TopLeft, false
}
