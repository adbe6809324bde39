// Package game defines the core state types for the Life arcade game.
//
// A Session holds everything that belongs to one game: the automaton grid,
// the player, the pursuing ghosts and the collectibles. Rules operate on a
// *Session explicitly; nothing lives at package scope.
package game

import "fmt"

// Point is a grid coordinate.
// (0,0) is the top-left cell; Y grows downwards so Up is Y-1.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p moved by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Direction is one of the four cardinal moves.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists the cardinal moves in enumeration order. Ghost tie-breaks
// depend on this order.
var Directions = [4]Direction{Up, Down, Left, Right}

var directionNames = [4]string{"up", "down", "left", "right"}

func (d Direction) String() string {
	if d < Up || d > Right {
		return "unknown"
	}
	return directionNames[d]
}

// Delta returns the unit step for d.
func (d Direction) Delta() Point {
	switch d {
	case Up:
		return Point{X: 0, Y: -1}
	case Down:
		return Point{X: 0, Y: 1}
	case Left:
		return Point{X: -1, Y: 0}
	case Right:
		return Point{X: 1, Y: 0}
	}
	return Point{}
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	parsed, ok := ParseDirection(string(b))
	if !ok {
		return fmt.Errorf("unknown direction %q", b)
	}
	*d = parsed
	return nil
}

// ParseDirection maps "up"/"down"/"left"/"right" to a Direction.
func ParseDirection(s string) (Direction, bool) {
	for i, name := range directionNames {
		if name == s {
			return Direction(i), true
		}
	}
	return 0, false
}

type Player struct {
	Pos    Point     `json:"pos"`
	Alive  bool      `json:"alive"`
	Facing Direction `json:"facing"`
}

type Ghost struct {
	Pos   Point  `json:"pos"`
	Color string `json:"color"`
}

// Collectible is never removed from a session, only flagged, so that
// iteration order stays stable for the whole game.
type Collectible struct {
	Pos       Point
	Collected bool
}

// Session is the complete per-game state.
type Session struct {
	ID           string
	Grid         *Grid
	Player       Player
	Ghosts       []Ghost
	Collectibles []Collectible
	Score        int
	Generation   int
	MouthOpen    bool
}

// Total is the displayed score: pickups plus survived generations.
func (s *Session) Total() int {
	return s.Score + s.Generation
}

// Remaining counts collectibles that have not been collected.
func (s *Session) Remaining() int {
	n := 0
	for _, c := range s.Collectibles {
		if !c.Collected {
			n++
		}
	}
	return n
}

// GhostAt reports whether any ghost occupies p.
func (s *Session) GhostAt(p Point) bool {
	for _, g := range s.Ghosts {
		if g.Pos == p {
			return true
		}
	}
	return false
}

// Clone performs a deep copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}

	out := &Session{
		ID:         s.ID,
		Grid:       s.Grid.Clone(),
		Player:     s.Player,
		Score:      s.Score,
		Generation: s.Generation,
		MouthOpen:  s.MouthOpen,
	}

	if len(s.Ghosts) > 0 {
		out.Ghosts = make([]Ghost, len(s.Ghosts))
		copy(out.Ghosts, s.Ghosts)
	}
	if len(s.Collectibles) > 0 {
		out.Collectibles = make([]Collectible, len(s.Collectibles))
		copy(out.Collectibles, s.Collectibles)
	}

	return out
}
