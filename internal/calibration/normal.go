package calibration

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// NormalCalibrator is the closed-form oracle: both class-conditional score
// distributions are known Gaussians, so the LR at any point is the analytic
// density ratio N(x; loc1, scale1) / N(x; loc0, scale0). It is parameterized
// directly rather than fit, and exists for synthetic calibration-sensitivity
// studies.
type NormalCalibrator struct {
	loc0, scale0 float64
	loc1, scale1 float64

	meanDelta *float64
}

// NewNormalCalibrator builds the oracle from both Gaussian parameter pairs.
func NewNormalCalibrator(loc0, scale0, loc1, scale1 float64) *NormalCalibrator {
	return &NormalCalibrator{loc0: loc0, scale0: scale0, loc1: loc1, scale1: scale1}
}

// SetMeanDelta overrides the H1 location as loc0 + delta, simulating a
// controlled separation between the classes.
func (c *NormalCalibrator) SetMeanDelta(delta float64) {
	d := delta
	c.meanDelta = &d
}

// ClearMeanDelta restores the originally configured H1 location.
func (c *NormalCalibrator) ClearMeanDelta() {
	c.meanDelta = nil
}

// Fit is a no-op: the densities are given, not estimated. It exists so the
// oracle satisfies the Calibrator port.
func (c *NormalCalibrator) Fit(scores []float64, labels []int) error {
	return nil
}

// Transform evaluates both Gaussian densities at the query scores.
func (c *NormalCalibrator) Transform(scores []float64) (p0, p1 []float64, err error) {
	d0 := distuv.Normal{Mu: c.loc0, Sigma: c.scale0}
	d1 := distuv.Normal{Mu: c.effectiveLoc1(), Sigma: c.scale1}
	p0 = make([]float64, len(scores))
	p1 = make([]float64, len(scores))
	for i, q := range scores {
		p0[i] = d0.Prob(q)
		p1[i] = d1.Prob(q)
	}
	return p0, p1, nil
}

// PredictLR returns the analytic Gaussian-ratio LR at the query scores.
func (c *NormalCalibrator) PredictLR(scores []float64) ([]float64, error) {
	p0, p1, err := c.Transform(scores)
	if err != nil {
		return nil, err
	}
	lrs := make([]float64, len(scores))
	for i := range scores {
		lrs[i] = p1[i] / p0[i]
	}
	return lrs, nil
}

func (c *NormalCalibrator) effectiveLoc1() float64 {
	if c.meanDelta != nil {
		return c.loc0 + *c.meanDelta
	}
	return c.loc1
}
