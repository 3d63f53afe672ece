package lr

import (
	"fmt"
	"math/bits"
	"strings"
)

// TargetClass identifies which of the underlying single types jointly count
// as the prosecution hypothesis for one evaluation. It is a fixed-width bit
// set: comparable, so it can be used directly as a map key for calibrator
// lookup instead of a stringified vector.
type TargetClass struct {
	mask uint64
	n    int
}

// NewTargetClass builds a target class from a binary vector over the single
// types. At least one entry must be set.
func NewTargetClass(vec []int) (TargetClass, error) {
	if len(vec) == 0 || len(vec) > 64 {
		return TargetClass{}, fmt.Errorf("target class vector length %d out of range", len(vec))
	}
	var mask uint64
	for i, v := range vec {
		if v != 0 {
			mask |= 1 << uint(i)
		}
	}
	if mask == 0 {
		return TargetClass{}, fmt.Errorf("target class has no types set")
	}
	return TargetClass{mask: mask, n: len(vec)}, nil
}

// Len returns the number of single types the vector spans.
func (tc TargetClass) Len() int { return tc.n }

// Has reports whether single type i belongs to the target class.
func (tc TargetClass) Has(i int) bool {
	return i >= 0 && i < tc.n && tc.mask&(1<<uint(i)) != 0
}

// Count returns how many single types are set.
func (tc TargetClass) Count() int {
	return bits.OnesCount64(tc.mask)
}

// Complement returns the target class with every type flipped.
func (tc TargetClass) Complement() TargetClass {
	full := uint64(1)<<uint(tc.n) - 1
	return TargetClass{mask: ^tc.mask & full, n: tc.n}
}

// MatchesNHot reports whether an n-hot label row contains at least one of the
// target types; this is the binary label used for the two-hypothesis framing.
func (tc TargetClass) MatchesNHot(nhot []int) bool {
	for i, v := range nhot {
		if v != 0 && tc.Has(i) {
			return true
		}
	}
	return false
}

// String renders the vector as e.g. "[1 0 0 1]", for logs only.
func (tc TargetClass) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i := 0; i < tc.n; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		if tc.Has(i) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	b.WriteByte(']')
	return b.String()
}
