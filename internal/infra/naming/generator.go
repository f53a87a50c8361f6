package naming

import (
	"math/rand/v2"
	"sync"
)

const (
	DefaultLength = 8
	alphabet      = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// Generator produces random bucket names. It does not check them against existing buckets,
// a taken name surfaces when the bucket is created.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator draws from the runtime's randomly seeded source.
func NewGenerator() *Generator {
	return &Generator{}
}

// NewSeededGenerator is deterministic for a given seed.
func NewSeededGenerator(seed uint64) *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(seed, seed))}
}

// Generate returns length characters drawn independently and uniformly from [a-z0-9].
// A non-positive length falls back to DefaultLength.
func (g *Generator) Generate(length int) string {
	if length <= 0 {
		length = DefaultLength
	}
	name := make([]byte, length)

	if g.rnd == nil {
		for i := range name {
			name[i] = alphabet[rand.IntN(len(alphabet))]
		}
		return string(name)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range name {
		name[i] = alphabet[g.rnd.IntN(len(alphabet))]
	}
	return string(name)
}
