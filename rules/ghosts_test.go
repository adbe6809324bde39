package rules

import (
	"math"
	"math/rand"
	"testing"

	"github.com/brensch/conpac/game"
)

func TestMoveGhosts_SingleCandidateIsTaken(t *testing.T) {
	s := emptySession(5, game.Point{X: 4, Y: 4})
	s.Grid.Set(game.Point{X: 1, Y: 0}, true)
	s.Ghosts = []game.Ghost{{Pos: game.Point{X: 0, Y: 0}}}

	if caught := MoveGhosts(s, &scriptedRand{floats: []float64{0.9}}, 0.4); caught {
		t.Fatalf("unexpected catch")
	}
	if got := s.Ghosts[0].Pos; got != (game.Point{X: 0, Y: 1}) {
		logSession(t, "after move", s)
		t.Fatalf("ghost at %v, want (0,1)", got)
	}
}

func TestMoveGhosts_TiesFollowEnumerationOrder(t *testing.T) {
	s := emptySession(9, game.Point{X: 6, Y: 6})
	s.Ghosts = []game.Ghost{{Pos: game.Point{X: 3, Y: 3}}}

	MoveGhosts(s, &scriptedRand{}, 0.4)
	// Down and Right both close the distance; Down is enumerated first.
	if got := s.Ghosts[0].Pos; got != (game.Point{X: 3, Y: 4}) {
		t.Fatalf("ghost at %v, want (3,4)", got)
	}
}

func TestMoveGhosts_RandomOverride(t *testing.T) {
	s := emptySession(9, game.Point{X: 6, Y: 6})
	s.Ghosts = []game.Ghost{{Pos: game.Point{X: 3, Y: 3}}}

	// 0.1 < 0.4 takes the random branch; index 2 is Left.
	MoveGhosts(s, &scriptedRand{floats: []float64{0.1}, ints: []int{2}}, 0.4)
	if got := s.Ghosts[0].Pos; got != (game.Point{X: 2, Y: 3}) {
		t.Fatalf("ghost at %v, want (2,3)", got)
	}
}

func TestMoveGhosts_BoxedGhostStays(t *testing.T) {
	s := emptySession(5, game.Point{X: 4, Y: 4})
	for _, p := range []game.Point{{X: 2, Y: 1}, {X: 2, Y: 3}, {X: 1, Y: 2}, {X: 3, Y: 2}} {
		s.Grid.Set(p, true)
	}
	s.Ghosts = []game.Ghost{{Pos: game.Point{X: 2, Y: 2}}}

	MoveGhosts(s, &scriptedRand{floats: []float64{0.0}}, 1)
	if got := s.Ghosts[0].Pos; got != (game.Point{X: 2, Y: 2}) {
		t.Fatalf("boxed ghost moved to %v", got)
	}
}

func TestMoveGhosts_WallsBlock(t *testing.T) {
	s := emptySession(6, game.Point{X: 5, Y: 0})
	s.Grid.Set(game.Point{X: 3, Y: 0}, true)
	s.Ghosts = []game.Ghost{{Pos: game.Point{X: 2, Y: 0}}}

	MoveGhosts(s, &scriptedRand{}, 0)
	// Right is walled off, so the ghost takes the next best: Down (dist 4) over Left (dist 4, later).
	if got := s.Ghosts[0].Pos; got != (game.Point{X: 2, Y: 1}) {
		t.Fatalf("ghost at %v, want (2,1)", got)
	}
}

func TestMoveGhosts_CatchStopsLaterGhosts(t *testing.T) {
	s := emptySession(9, game.Point{X: 4, Y: 4})
	s.Ghosts = []game.Ghost{
		{Pos: game.Point{X: 4, Y: 3}},
		{Pos: game.Point{X: 0, Y: 0}},
	}

	if !MoveGhosts(s, &scriptedRand{}, 0) {
		t.Fatalf("expected the first ghost to catch the player")
	}
	if s.Player.Alive {
		t.Fatalf("player should be dead")
	}
	if got := s.Ghosts[1].Pos; got != (game.Point{X: 0, Y: 0}) {
		t.Fatalf("second ghost moved to %v after the catch", got)
	}

	// A dead player is never chased again.
	if MoveGhosts(s, &scriptedRand{}, 0) {
		t.Fatalf("catch reported twice")
	}
}

func TestSpawnGhosts_RespectsDistanceAndWalls(t *testing.T) {
	cfg := game.DefaultConfig
	rng := rand.New(rand.NewSource(11))
	s := emptySession(cfg.GridSize, cfg.Center())
	SeedLife(s, rng, cfg.SeedCells, cfg.SeedExclusion, cfg.SeedAttemptFactor)

	placed := SpawnGhosts(s, rng, cfg.GhostCount, cfg.GhostMinDistance, cfg.SeedAttemptFactor)
	if placed != cfg.GhostCount {
		t.Fatalf("placed %d ghosts, want %d", placed, cfg.GhostCount)
	}

	seen := make(map[game.Point]bool)
	for i, g := range s.Ghosts {
		if s.Grid.Alive(g.Pos) {
			t.Errorf("ghost %d on a live cell", i)
		}
		if d := math.Hypot(float64(g.Pos.X-s.Player.Pos.X), float64(g.Pos.Y-s.Player.Pos.Y)); d < cfg.GhostMinDistance {
			t.Errorf("ghost %d only %.1f from the player", i, d)
		}
		if seen[g.Pos] {
			t.Errorf("two ghosts on %v", g.Pos)
		}
		seen[g.Pos] = true
		if g.Color != GhostColors[i%len(GhostColors)] {
			t.Errorf("ghost %d color %s", i, g.Color)
		}
	}
}

func TestSpawnGhosts_NoRoomPlacesNone(t *testing.T) {
	s := emptySession(5, game.Point{X: 2, Y: 2})
	if placed := SpawnGhosts(s, &scriptedRand{}, 3, 10, 5); placed != 0 {
		t.Fatalf("placed %d ghosts on a board smaller than the minimum distance", placed)
	}
}
