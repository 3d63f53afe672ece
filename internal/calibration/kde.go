// Package calibration turns raw scores into likelihood ratios by estimating
// the two class-conditional score distributions.
package calibration

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"golir/domain/core"
)

// DefaultMinDensity floors the denominator density when forming LRs. A KDE
// evaluated far from its support underflows to exactly 0, which would make
// the LR infinite; the floor keeps LRs finite at the price of capping them.
const DefaultMinDensity = 1e-12

// KDECalibrator estimates both class-conditional densities over a 1-D score
// axis with Gaussian kernels (Silverman bandwidth). Fitting replaces the
// whole state; Transform and PredictLR evaluate the fitted densities at
// arbitrary query points without refitting.
type KDECalibrator struct {
	// MinDensity is the floor applied to the H0 density in PredictLR.
	MinDensity float64

	fitted bool
	x0, x1 []float64
	h0, h1 float64
}

// NewKDECalibrator creates an unfitted calibrator with the default floor.
func NewKDECalibrator() *KDECalibrator {
	return &KDECalibrator{MinDensity: DefaultMinDensity}
}

// Fit estimates one kernel density per class from the calibration scores.
func (c *KDECalibrator) Fit(scores []float64, labels []int) error {
	if len(scores) != len(labels) {
		return fmt.Errorf("scores/labels length mismatch: %d != %d", len(scores), len(labels))
	}
	var x0, x1 []float64
	for i, s := range scores {
		if labels[i] == 0 {
			x0 = append(x0, s)
		} else {
			x1 = append(x1, s)
		}
	}
	if len(x0) == 0 {
		return core.NewInsufficientDataError(0)
	}
	if len(x1) == 0 {
		return core.NewInsufficientDataError(1)
	}

	c.x0, c.x1 = x0, x1
	c.h0 = silvermanBandwidth(x0)
	c.h1 = silvermanBandwidth(x1)
	c.fitted = true
	return nil
}

// Transform evaluates both fitted densities at the query scores.
func (c *KDECalibrator) Transform(scores []float64) (p0, p1 []float64, err error) {
	if !c.fitted {
		return nil, nil, core.ErrNotFitted
	}
	p0 = make([]float64, len(scores))
	p1 = make([]float64, len(scores))
	for i, q := range scores {
		p0[i] = kernelDensityAt(c.x0, c.h0, q)
		p1[i] = kernelDensityAt(c.x1, c.h1, q)
	}
	return p0, p1, nil
}

// PredictLR returns p1/p0 elementwise, flooring p0 at MinDensity.
func (c *KDECalibrator) PredictLR(scores []float64) ([]float64, error) {
	p0, p1, err := c.Transform(scores)
	if err != nil {
		return nil, err
	}
	floor := c.MinDensity
	if floor <= 0 {
		floor = DefaultMinDensity
	}
	lrs := make([]float64, len(scores))
	for i := range scores {
		lrs[i] = p1[i] / math.Max(p0[i], floor)
	}
	return lrs, nil
}

func kernelDensityAt(xs []float64, h, q float64) float64 {
	kernel := distuv.Normal{Mu: 0, Sigma: h}
	var sum float64
	for _, x := range xs {
		sum += kernel.Prob(q - x)
	}
	return sum / float64(len(xs))
}

// silvermanBandwidth is the rule-of-thumb bandwidth 1.06 * sd * n^(-1/5).
// Degenerate samples (single point, zero spread) fall back to a narrow fixed
// bandwidth so the density stays well defined.
func silvermanBandwidth(xs []float64) float64 {
	if len(xs) < 2 {
		return 1e-3
	}
	sd := stat.StdDev(xs, nil)
	if !(sd > 0) {
		return 1e-3
	}
	return 1.06 * sd * math.Pow(float64(len(xs)), -0.2)
}
