package rules

import (
	"github.com/brensch/conpac/game"
)

// SeedCollectibles places up to count new items on dead cells that hold
// neither the player nor another uncollected item. Placement is best-effort:
// it returns how many were placed, which is fewer than count only when the
// board has no acceptable cell left.
func SeedCollectibles(s *game.Session, rng game.Rand, count, attemptFactor int) int {
	taken := make(map[game.Point]struct{}, len(s.Collectibles)+count)
	for _, c := range s.Collectibles {
		if !c.Collected {
			taken[c.Pos] = struct{}{}
		}
	}

	ok := func(p game.Point) bool {
		if s.Grid.Alive(p) || p == s.Player.Pos {
			return false
		}
		_, dup := taken[p]
		return !dup
	}
	return placeRandom(s.Grid.Size, rng, count, attemptFactor, ok, func(p game.Point) {
		taken[p] = struct{}{}
		s.Collectibles = append(s.Collectibles, game.Collectible{Pos: p})
	})
}

// SweepCollectibles flags every uncollected item that now sits on a live cell.
// No score is awarded. It returns how many items were lost.
func SweepCollectibles(s *game.Session) int {
	lost := 0
	for i := range s.Collectibles {
		c := &s.Collectibles[i]
		if !c.Collected && s.Grid.Alive(c.Pos) {
			c.Collected = true
			lost++
		}
	}
	return lost
}

// Pickup describes what CollectAt did.
type Pickup struct {
	Collected   bool
	Replenished int // items added by a replenishment batch, 0 if none ran
}

// CollectAt collects the first uncollected item at p and awards
// cfg.CollectibleScore. When that leaves cfg.ReplenishThreshold or fewer items
// on the board, one batch of cfg.ReplenishBatch items is seeded.
func CollectAt(s *game.Session, rng game.Rand, cfg game.Config, p game.Point) Pickup {
	for i := range s.Collectibles {
		c := &s.Collectibles[i]
		if c.Collected || c.Pos != p {
			continue
		}
		c.Collected = true
		s.Score += cfg.CollectibleScore

		out := Pickup{Collected: true}
		if cfg.ReplenishBatch > 0 && s.Remaining() <= cfg.ReplenishThreshold {
			out.Replenished = SeedCollectibles(s, rng, cfg.ReplenishBatch, cfg.SeedAttemptFactor)
		}
		return out
	}
	return Pickup{}
}
