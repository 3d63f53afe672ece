package lr

// Result bundles the log-likelihood-ratio cost of one evaluation run together
// with its PAV calibration-loss decomposition. Values are set once when the
// run's metric is computed and never mutated afterwards.
type Result struct {
	// Cllr is the overall log-likelihood-ratio cost (base-2, averaged per
	// hypothesis). A value of 9999.0 marks the out-of-domain case where one
	// class had no samples; it is a sentinel, not a cost.
	Cllr float64

	// CllrMin is the discrimination-only cost after PAV recalibration.
	CllrMin float64

	// CllrCal is the calibration loss, Cllr - CllrMin.
	CllrCal float64

	// AvgLLRClass0 and AvgLLRClass1 are the mean log10 LR per hypothesis,
	// kept as diagnostics for reporting.
	AvgLLRClass0 float64
	AvgLLRClass1 float64

	// LRClass0 and LRClass1 are the per-sample LRs the cost was computed
	// from, in input order.
	LRClass0 []float64
	LRClass1 []float64
}
