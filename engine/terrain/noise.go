package terrain

import (
	"golang.org/x/exp/rand"
)

// noiseTable is a shuffled permutation table driving the gradient noise the
// height field is sampled from. The table is duplicated so lookups never
// need a modulo on overflow.
type noiseTable struct {
	permutation []int
}

func newNoiseTable(seed uint64) *noiseTable {
	perm := make([]int, 256)
	for i := range perm {
		perm[i] = i
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(perm), func(i, j int) {
		perm[i], perm[j] = perm[j], perm[i]
	})

	return &noiseTable{
		permutation: append(perm, perm...),
	}
}

// sample accumulates gradient noise over the given number of octaves,
// normalized to roughly [-1, 1].
func (n *noiseTable) sample(x, z float32, octaves int, persistence float32) float32 {
	var total, maxValue float32
	frequency := float32(1.0)
	amplitude := float32(1.0)

	for i := 0; i < octaves; i++ {
		hash := n.permutation[int(x*frequency)&255] + n.permutation[int(z*frequency)&255]
		total += grad(hash, x*frequency, z*frequency) * amplitude

		maxValue += amplitude
		amplitude *= persistence
		frequency *= 2.0
	}

	return total / maxValue
}

func grad(hash int, x, z float32) float32 {
	h := hash & 15
	u := z
	if h < 8 {
		u = x
	}
	var v float32
	switch {
	case h < 4:
		v = z
	case h == 12 || h == 14:
		v = x
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}
