// Package lcg is the classic ANSI C rand() linear congruential generator,
// seed = (seed*1103515245 + 12345) mod 2^31.
//
// It is deterministic and weak. Never use it for anything that needs to be
// unpredictable.
package lcg

const (
	Multiplier  = 1103515245
	Increment   = 12345
	DefaultSeed = 12345

	mask = 0x7fff_ffff
)

type Generator struct {
	seed uint32
}

func New(seed uint32) *Generator {
	return &Generator{seed: seed}
}

// Next advances the state and returns it. Results are in [0, 2^31).
func (g *Generator) Next() uint32 {
	g.seed = (g.seed*Multiplier + Increment) & mask
	return g.seed
}

// Seed is the current state, which is also the last value returned.
func (g *Generator) Seed() uint32 {
	return g.seed
}
