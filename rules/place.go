package rules

import (
	"github.com/brensch/conpac/game"
)

const defaultAttemptFactor = 50

// placeRandom places up to count cells accepted by ok, calling take for each.
//
// Placement first samples uniformly, which is cheap while the board is mostly
// free. After count*attemptFactor misses it enumerates the cells ok still
// accepts and draws from those, so it always terminates and only comes up
// short when nothing acceptable is left.
func placeRandom(size int, rng game.Rand, count, attemptFactor int, ok func(game.Point) bool, take func(game.Point)) int {
	if size <= 0 || count <= 0 {
		return 0
	}
	if attemptFactor <= 0 {
		attemptFactor = defaultAttemptFactor
	}

	placed := 0
	budget := count * attemptFactor
	for attempts := 0; placed < count && attempts < budget; attempts++ {
		p := game.Point{X: rng.Intn(size), Y: rng.Intn(size)}
		if !ok(p) {
			continue
		}
		take(p)
		placed++
	}
	if placed == count {
		return placed
	}

	available := make([]game.Point, 0, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			p := game.Point{X: x, Y: y}
			if ok(p) {
				available = append(available, p)
			}
		}
	}

	for placed < count && len(available) > 0 {
		i := rng.Intn(len(available))
		p := available[i]
		// remove chosen slot
		available[i] = available[len(available)-1]
		available = available[:len(available)-1]
		if !ok(p) {
			continue
		}
		take(p)
		placed++
	}
	return placed
}
