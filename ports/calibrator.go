package ports

// Calibrator is the density-calibrator capability: it estimates the two
// class-conditional distributions over a 1-D score axis and evaluates them at
// arbitrary query points without refitting. All values are in the native
// (non-log) domain.
type Calibrator interface {
	// Fit estimates both class-conditional densities from calibration scores
	// and their 0/1 labels. Refitting replaces the whole state.
	Fit(scores []float64, labels []int) error

	// Transform evaluates both fitted densities at the query scores and
	// returns (p0, p1), one value per query point.
	Transform(scores []float64) (p0, p1 []float64, err error)

	// PredictLR returns the elementwise ratio p1/p0 at the query scores.
	PredictLR(scores []float64) ([]float64, error)
}

// CalibratorFactory produces a fresh, unfitted calibrator. The pipeline fits
// one new calibrator per run instead of mutating a shared instance.
type CalibratorFactory func() Calibrator
