package rules

import (
	"math/rand"
	"testing"

	"github.com/brensch/conpac/game"
)

func TestSeedCollectibles_NoDuplicatesNoWalls(t *testing.T) {
	cfg := game.DefaultConfig
	rng := rand.New(rand.NewSource(5))
	s := emptySession(cfg.GridSize, cfg.Center())
	SeedLife(s, rng, cfg.SeedCells, cfg.SeedExclusion, cfg.SeedAttemptFactor)

	if placed := SeedCollectibles(s, rng, cfg.Collectibles, cfg.SeedAttemptFactor); placed != cfg.Collectibles {
		t.Fatalf("placed %d, want %d", placed, cfg.Collectibles)
	}
	// A second batch must not stack on the first.
	SeedCollectibles(s, rng, cfg.ReplenishBatch, cfg.SeedAttemptFactor)

	seen := make(map[game.Point]bool)
	for _, c := range s.Collectibles {
		if c.Collected {
			continue
		}
		if seen[c.Pos] {
			t.Fatalf("two uncollected items on %v", c.Pos)
		}
		seen[c.Pos] = true
		if s.Grid.Alive(c.Pos) {
			t.Fatalf("item on live cell %v", c.Pos)
		}
		if c.Pos == s.Player.Pos {
			t.Fatalf("item under the player")
		}
	}
}

func TestSeedCollectibles_BestEffortOnDenseBoard(t *testing.T) {
	s := emptySession(5, game.Point{X: 0, Y: 0})
	for i := range s.Grid.Cells {
		s.Grid.Cells[i] = true
	}
	free := []game.Point{{X: 0, Y: 0}, {X: 4, Y: 4}, {X: 2, Y: 3}}
	for _, p := range free {
		s.Grid.Set(p, false)
	}

	// (0,0) is the player, so only two cells qualify.
	if placed := SeedCollectibles(s, &scriptedRand{}, 10, 3); placed != 2 {
		t.Fatalf("placed %d, want 2", placed)
	}
}

func TestSweepCollectibles_LiveCellsEatItems(t *testing.T) {
	s := emptySession(6, game.Point{X: 0, Y: 0})
	s.Collectibles = []game.Collectible{
		{Pos: game.Point{X: 1, Y: 1}},
		{Pos: game.Point{X: 2, Y: 2}},
		{Pos: game.Point{X: 3, Y: 3}, Collected: true},
	}
	s.Grid.Set(game.Point{X: 2, Y: 2}, true)
	s.Grid.Set(game.Point{X: 3, Y: 3}, true)

	if lost := SweepCollectibles(s); lost != 1 {
		t.Fatalf("lost = %d, want 1", lost)
	}
	if !s.Collectibles[1].Collected || s.Collectibles[0].Collected {
		t.Fatalf("wrong items flagged: %+v", s.Collectibles)
	}
	if s.Score != 0 {
		t.Fatalf("sweep awarded score %d", s.Score)
	}
}

func TestCollectAt_FivePointsPerItem(t *testing.T) {
	cfg := game.DefaultConfig
	cfg.ReplenishBatch = 0
	s := emptySession(10, game.Point{X: 0, Y: 0})
	for x := 1; x <= 3; x++ {
		s.Collectibles = append(s.Collectibles, game.Collectible{Pos: game.Point{X: x, Y: 0}})
	}

	for x := 1; x <= 3; x++ {
		if r := CollectAt(s, &scriptedRand{}, cfg, game.Point{X: x, Y: 0}); !r.Collected {
			t.Fatalf("item at x=%d not collected", x)
		}
	}
	// Same spot twice awards nothing.
	if r := CollectAt(s, &scriptedRand{}, cfg, game.Point{X: 1, Y: 0}); r.Collected {
		t.Fatalf("collected an already collected item")
	}
	if s.Score != 15 {
		t.Fatalf("score = %d, want 15", s.Score)
	}
}

func TestCollectAt_ReplenishesOnceAtLowWaterMark(t *testing.T) {
	cfg := game.DefaultConfig
	rng := rand.New(rand.NewSource(9))
	s := emptySession(cfg.GridSize, cfg.Center())
	for x := 0; x < cfg.ReplenishThreshold+2; x++ {
		s.Collectibles = append(s.Collectibles, game.Collectible{Pos: game.Point{X: x, Y: 0}})
	}

	// 12 -> 11: above the mark.
	if r := CollectAt(s, rng, cfg, game.Point{X: 0, Y: 0}); r.Replenished != 0 {
		t.Fatalf("replenished early")
	}
	// 11 -> 10: hits the mark, exactly one batch.
	r := CollectAt(s, rng, cfg, game.Point{X: 1, Y: 0})
	if r.Replenished != cfg.ReplenishBatch {
		t.Fatalf("replenished %d, want %d", r.Replenished, cfg.ReplenishBatch)
	}
	if got, want := s.Remaining(), cfg.ReplenishThreshold+cfg.ReplenishBatch; got != want {
		t.Fatalf("remaining = %d, want %d", got, want)
	}
	// The next pickup is far above the mark again.
	if r := CollectAt(s, rng, cfg, game.Point{X: 2, Y: 0}); r.Replenished != 0 {
		t.Fatalf("second batch added")
	}
	if got := len(s.Collectibles); got != cfg.ReplenishThreshold+2+cfg.ReplenishBatch {
		t.Fatalf("collectibles = %d", got)
	}
}
