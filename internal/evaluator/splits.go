package evaluator

import (
	"math"
	"math/rand"

	"golir/domain/core"
)

const (
	// SizeUnset means a split size was not requested; the split falls back
	// to a pre-supplied fixed array, or stays absent.
	SizeUnset = math.MinInt

	// WholePool requests the entire pool without consuming it: the split
	// gets every sample and later splits in the same repetition still draw
	// from the full original pool.
	WholePool = -1
)

// SplitSizes holds requested sample counts for one class (or, as the shared
// set, for both classes).
type SplitSizes struct {
	Train     int
	Calibrate int
	Test      int
}

// UnsetSizes returns sizes with every split unset.
func UnsetSizes() SplitSizes {
	return SplitSizes{Train: SizeUnset, Calibrate: SizeUnset, Test: SizeUnset}
}

// FixedSplits are pre-supplied sample arrays that bypass pool sampling
// entirely; they are used when the corresponding size is unset.
type FixedSplits struct {
	Class0Train     [][]float64
	Class1Train     [][]float64
	Class0Calibrate [][]float64
	Class1Calibrate [][]float64
	Class0Test      [][]float64
	Class1Test      [][]float64
}

// Splits is the per-repetition train/calibrate/test material for both
// classes.
type Splits struct {
	Train0, Train1         [][]float64
	Calibrate0, Calibrate1 [][]float64
	Test0, Test1           [][]float64
}

// drawSplit draws a without-replacement random subset of size n from pool and
// returns it together with the remaining pool. The source pool is never
// mutated.
func drawSplit(rng *rand.Rand, pool [][]float64, n int) (sample, rest [][]float64, err error) {
	switch {
	case n == WholePool:
		// whole pool, remainder untouched
		return pool, pool, nil
	case n < 0:
		return nil, nil, core.NewSplitSizeError(n, len(pool))
	case n > len(pool):
		return nil, nil, core.NewSplitSizeError(n, len(pool))
	case n == len(pool):
		return pool, nil, nil
	}

	perm := rng.Perm(len(pool))
	sample = make([][]float64, 0, n)
	rest = make([][]float64, 0, len(pool)-n)
	for i, idx := range perm {
		if i < n {
			sample = append(sample, pool[idx])
		} else {
			rest = append(rest, pool[idx])
		}
	}
	return sample, rest, nil
}
