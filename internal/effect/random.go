package effect

import (
	"math/rand/v2"
	"time"
)

// Rand is the only source of randomness in the simulator. *rand.Rand
// satisfies it; tests pass a seeded one.
type Rand interface {
	Float64() float64
}

// NewRand returns a deterministic PCG source for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewEntropyRand seeds from the wall clock for production use.
func NewEntropyRand() *rand.Rand {
	return NewRand(uint64(time.Now().UnixNano()))
}

func chance(r Rand, p float64) bool { return r.Float64() < p }

// sign returns +1 or -1 with equal probability.
func sign(r Rand) float64 {
	if r.Float64() < 0.5 {
		return 1
	}
	return -1
}

// intn returns an int in [0, n).
func intn(r Rand, n int) int {
	i := int(r.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
