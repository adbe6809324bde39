package engine

import "time"

// MoveGate accepts at most one move per Interval. Timestamps should come from
// time.Now so comparisons use the monotonic clock.
type MoveGate struct {
	Interval time.Duration

	last   time.Time
	primed bool
}

// Allow reports whether a move at now is accepted, and records it if so.
func (g *MoveGate) Allow(now time.Time) bool {
	if g.primed && now.Sub(g.last) < g.Interval {
		return false
	}
	g.last = now
	g.primed = true
	return true
}

func (g *MoveGate) Reset() {
	g.last = time.Time{}
	g.primed = false
}
