// Package marginal frames a multi-class mixture scorer as a set of
// two-hypothesis LR systems: per-mixture class probabilities are marginalized
// into one LR per target class, each with its own calibrator.
package marginal

import (
	"fmt"
	"math/bits"

	"golir/domain/lr"
	"golir/internal/metrics"
	"golir/ports"
)

// DefaultMaxLR caps marginal LRs symmetrically at [1/max, max]. Uncalibrated
// marginal ratios explode when the denominator probability mass vanishes.
const DefaultMaxLR = 10.0

// PriorUniform leaves a single type's occurrence unconstrained;
// PriorAbsent/PriorPresent pin it when marginalizing mixture columns.
const (
	PriorAbsent  = 0
	PriorPresent = 1
	PriorUniform = -1
)

// Classifier couples a multi-class mixture scorer with one calibrator per
// target class. The scorer emits probabilities over all 2^numTypes mixture
// columns; target-class LRs are ratios of admissible column sums.
type Classifier struct {
	scorer        ports.Scorer
	newCalibrator ports.CalibratorFactory
	numTypes      int
	maxLR         float64

	// calibrators are keyed by the target class value itself; TargetClass
	// is comparable, so no stringified-vector keys are needed.
	calibrators map[lr.TargetClass]ports.Calibrator
}

// NewClassifier creates a marginal classifier over numTypes single types.
func NewClassifier(scorer ports.Scorer, factory ports.CalibratorFactory, numTypes int) *Classifier {
	return &Classifier{
		scorer:        scorer,
		newCalibrator: factory,
		numTypes:      numTypes,
		maxLR:         DefaultMaxLR,
		calibrators:   make(map[lr.TargetClass]ports.Calibrator),
	}
}

// SetMaxLR overrides the symmetric LR cap.
func (c *Classifier) SetMaxLR(max float64) { c.maxLR = max }

// Fit trains the underlying mixture scorer.
func (c *Classifier) Fit(X [][]float64, y []int) error {
	return c.scorer.Fit(X, y)
}

// FitCalibration fits one calibrator per target class on the uncalibrated
// marginal LRs of the calibration samples. The binary label of a sample for a
// target class is whether its n-hot row contains any of the target's types.
func (c *Classifier) FitCalibration(X [][]float64, yNHot [][]int, targets []lr.TargetClass) error {
	raw, err := c.PredictLRs(X, targets, false, nil, nil)
	if err != nil {
		return err
	}
	for ti, target := range targets {
		scores := make([]float64, len(X))
		labels := make([]int, len(X))
		for i := range X {
			scores[i] = raw[i][ti]
			if target.MatchesNHot(yNHot[i]) {
				labels[i] = 1
			}
		}
		cal := c.newCalibrator()
		if err := cal.Fit(scores, labels); err != nil {
			return fmt.Errorf("calibrating %s: %w", target, err)
		}
		c.calibrators[target] = cal
	}
	return nil
}

// PredictLRs returns an N x len(targets) matrix of LRs. With calibration, the
// per-target calibrator transforms the raw marginal LR; FitCalibration must
// have covered every requested target. Priors constrain which mixture columns
// are admissible in numerator and denominator (nil means uniform).
func (c *Classifier) PredictLRs(X [][]float64, targets []lr.TargetClass, calibrated bool, priorsNum, priorsDen []int) ([][]float64, error) {
	proba, err := c.scorer.PredictProba(X)
	if err != nil {
		return nil, err
	}
	want := 1 << uint(c.numTypes)
	for i, row := range proba {
		if len(row) != want {
			return nil, fmt.Errorf("sample %d: scorer emitted %d mixture columns, want %d", i, len(row), want)
		}
	}

	out := make([][]float64, len(X))
	for i := range out {
		out[i] = make([]float64, len(targets))
	}
	for ti, target := range targets {
		numCols := MixtureColumns(c.numTypes, target, priorsNum)
		denCols := MixtureColumns(c.numTypes, target.Complement(), priorsDen)
		col := make([]float64, len(X))
		for i, row := range proba {
			col[i] = c.clampLR(sumAt(row, numCols) / sumAt(row, denCols))
		}
		if calibrated {
			cal, ok := c.calibrators[target]
			if !ok {
				return nil, fmt.Errorf("no calibrator fitted for target class %s", target)
			}
			if col, err = cal.PredictLR(col); err != nil {
				return nil, err
			}
		}
		for i := range X {
			out[i][ti] = col[i]
		}
	}
	return out, nil
}

// MixtureColumns lists the mixture columns admissible for a target class: a
// column (bitmask of present types) qualifies when it satisfies every pinned
// prior and shares at least one type with the target. Priors may be nil.
func MixtureColumns(numTypes int, target lr.TargetClass, priors []int) []int {
	var cols []int
	for col := 0; col < 1<<uint(numTypes); col++ {
		if !priorsAdmit(col, priors) {
			continue
		}
		if overlaps(col, target) {
			cols = append(cols, col)
		}
	}
	return cols
}

func priorsAdmit(col int, priors []int) bool {
	for i, p := range priors {
		present := col&(1<<uint(i)) != 0
		if p == PriorAbsent && present {
			return false
		}
		if p == PriorPresent && !present {
			return false
		}
	}
	return true
}

func overlaps(col int, target lr.TargetClass) bool {
	for col != 0 {
		i := bits.TrailingZeros(uint(col))
		if target.Has(i) {
			return true
		}
		col &^= 1 << uint(i)
	}
	return false
}

// clampLR floors a vanished denominator and caps the ratio symmetrically.
func (c *Classifier) clampLR(v float64) float64 {
	if v > c.maxLR {
		return c.maxLR
	}
	if v < 1/c.maxLR {
		return 1 / c.maxLR
	}
	return v
}

func sumAt(row []float64, cols []int) float64 {
	var s float64
	for _, j := range cols {
		s += row[j]
	}
	return s
}

// CllrForTarget partitions per-sample LRs into the two-hypothesis framing for
// one target class and computes the Cllr. Zero LRs are dropped before the
// empty-class check, matching the legacy evaluator; an empty side after
// dropping yields the sentinel.
func CllrForTarget(lrs []float64, yNHot [][]int, target lr.TargetClass) (lr.Result, error) {
	if len(lrs) != len(yNHot) {
		return lr.Result{}, fmt.Errorf("lrs/labels length mismatch: %d != %d", len(lrs), len(yNHot))
	}
	var lr0, lr1 []float64
	for i, v := range lrs {
		if v == 0 {
			continue
		}
		if target.MatchesNHot(yNHot[i]) {
			lr1 = append(lr1, v)
		} else {
			lr0 = append(lr0, v)
		}
	}
	return metrics.Calculate(lr0, lr1)
}
