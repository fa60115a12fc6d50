package snp

import (
	"math/rand/v2"
)

// RandomSource chooses uniformly among n tied candidates.
// Intn must return a value in [0, n) for n > 0.
type RandomSource interface {
	Intn(n int) int
}

type pcgSource struct {
	r *rand.Rand
}

func (p *pcgSource) Intn(n int) int {
	return p.r.IntN(n)
}

// NewSeededSource returns a deterministic RandomSource. Two sources built
// from the same seed produce the same sequence of choices.
func NewSeededSource(seed uint64) RandomSource {
	return &pcgSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewRandomSource returns a RandomSource seeded from runtime entropy.
func NewRandomSource() RandomSource {
	return &pcgSource{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}
