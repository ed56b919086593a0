package render

import "math/rand"

// DefaultSeed seeds compilations that do not choose a seed.
const DefaultSeed int64 = 5

// Shuffler is the deterministic random source used to scramble answer
// order. Identical input and seed give identical output as long as
// modules consume it in document order.
type Shuffler struct {
	rng *rand.Rand
}

// NewShuffler returns a Shuffler seeded with seed.
func NewShuffler(seed int64) *Shuffler {
	return &Shuffler{rng: rand.New(rand.NewSource(seed))}
}

// Shuffle permutes n elements through swap.
func (s *Shuffler) Shuffle(n int, swap func(i, j int)) {
	s.rng.Shuffle(n, swap)
}
