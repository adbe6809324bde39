package game

import (
	"math/rand"
	"time"
)

// Rand is the randomness the rules consume. *rand.Rand satisfies it; tests
// supply scripted sequences.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// NewRand returns a seeded source. A zero seed uses the clock.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
