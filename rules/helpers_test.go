package rules

import (
	"fmt"
	"strings"
	"testing"

	"github.com/brensch/conpac/game"
)

// scriptedRand replays fixed values. When a script runs dry Intn returns 0
// and Float64 returns 0.99, so the random ghost branch is never taken by
// accident.
type scriptedRand struct {
	ints   []int
	floats []float64
}

func (r *scriptedRand) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.99
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func emptySession(size int, player game.Point) *game.Session {
	return &game.Session{
		ID:     "test",
		Grid:   game.NewGrid(size),
		Player: game.Player{Pos: player, Alive: true, Facing: game.Right},
	}
}

func dumpSession(s *game.Session) string {
	if s == nil {
		return "<nil session>"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Gen=%d Score=%d Size=%d Player=(%d,%d) alive=%v\n",
		s.Generation, s.Score, s.Grid.Size, s.Player.Pos.X, s.Player.Pos.Y, s.Player.Alive)

	if s.Grid.Size > 40 {
		return b.String()
	}

	ghosts := make(map[game.Point]bool, len(s.Ghosts))
	for _, g := range s.Ghosts {
		ghosts[g.Pos] = true
	}
	items := make(map[game.Point]bool, len(s.Collectibles))
	for _, c := range s.Collectibles {
		if !c.Collected {
			items[c.Pos] = true
		}
	}

	b.WriteString("Board:\n")
	for y := 0; y < s.Grid.Size; y++ {
		for x := 0; x < s.Grid.Size; x++ {
			p := game.Point{X: x, Y: y}
			switch {
			case p == s.Player.Pos:
				b.WriteByte('P')
			case ghosts[p]:
				b.WriteByte('G')
			case s.Grid.Alive(p):
				b.WriteByte('#')
			case items[p]:
				b.WriteByte('o')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func logSession(t *testing.T, name string, s *game.Session) {
	t.Helper()
	t.Logf("=== %s ===\n%s", name, dumpSession(s))
}
