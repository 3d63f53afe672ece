package lr

import (
	"math/rand"
)

// Generator produces a fresh sample pool on demand. The x parameter is the
// sweep variable of the experiment (e.g. a class separation); rng is the
// repetition-local random source, so regenerated pools stay reproducible
// under parallel execution.
type Generator func(x float64, rng *rand.Rand) [][]float64

// Pool supplies a class-conditional sample matrix (N observations x D
// features) to the evaluator. It is a tagged variant: either a static matrix
// partitioned anew on every repetition, or a generator invoked once per
// repetition.
type Pool struct {
	static [][]float64
	gen    Generator
}

// StaticPool wraps a concrete sample matrix.
func StaticPool(samples [][]float64) Pool {
	return Pool{static: samples}
}

// GeneratedPool wraps a generator that is resolved once per repetition.
func GeneratedPool(gen Generator) Pool {
	return Pool{gen: gen}
}

// IsZero reports whether the pool carries neither samples nor a generator.
func (p Pool) IsZero() bool {
	return p.static == nil && p.gen == nil
}

// Resolve returns the pool's samples for one repetition. Static pools are
// returned as-is; callers must not mutate the result.
func (p Pool) Resolve(x float64, rng *rand.Rand) [][]float64 {
	if p.gen != nil {
		return p.gen(x, rng)
	}
	return p.static
}
