// Package metrics computes the log-likelihood-ratio cost (Cllr) and its
// PAV-based calibration-loss decomposition for two-hypothesis LR systems.
package metrics

import (
	"math"

	"golir/domain/core"
	"golir/domain/lr"
)

// CllrUndefined marks a Cllr that could not be computed because one class had
// no samples. It is an out-of-domain sentinel, not a cost; aggregation must
// reject results carrying it.
const CllrUndefined = 9999.0

// ValidateLRs fails on the first non-positive or non-finite LR.
func ValidateLRs(lrs []float64) error {
	for _, v := range lrs {
		// !(v > 0) also catches NaN
		if !(v > 0) || math.IsInf(v, 1) {
			return core.NewInvalidLRError(v)
		}
	}
	return nil
}

// Calculate computes the Cllr for LRs of samples truly from H0 (lrClass0) and
// truly from H1 (lrClass1):
//
//	Cllr = 0.5 * ( mean[log2(1+lr0)] + mean[log2(1+1/lr1)] )
//
// plus the PAV decomposition CllrMin / CllrCal and the mean log10 LR per
// hypothesis. Inputs are validated first; any LR <= 0 or non-finite is an
// error. If either class is empty the sentinel result is returned instead.
func Calculate(lrClass0, lrClass1 []float64) (lr.Result, error) {
	if err := ValidateLRs(lrClass0); err != nil {
		return lr.Result{}, err
	}
	if err := ValidateLRs(lrClass1); err != nil {
		return lr.Result{}, err
	}
	if len(lrClass0) == 0 || len(lrClass1) == 0 {
		return sentinelResult(lrClass0, lrClass1), nil
	}

	cllr := cost(lrClass0, lrClass1)
	pav0, pav1 := PAVTransform(lrClass0, lrClass1)
	cllrMin := cost(pav0, pav1)

	return lr.Result{
		Cllr:         cllr,
		CllrMin:      cllrMin,
		CllrCal:      cllr - cllrMin,
		AvgLLRClass0: meanLog10(lrClass0),
		AvgLLRClass1: meanLog10(lrClass1),
		LRClass0:     copyFloats(lrClass0),
		LRClass1:     copyFloats(lrClass1),
	}, nil
}

// IsUndefined reports whether a result carries the empty-class sentinel.
func IsUndefined(r lr.Result) bool {
	return r.Cllr == CllrUndefined
}

// cost is the raw base-2 cost. It tolerates 0 in lrClass0 and +Inf in
// lrClass1, which PAV-transformed extremes legitimately produce.
func cost(lrClass0, lrClass1 []float64) float64 {
	var sum0 float64
	for _, v := range lrClass0 {
		sum0 += math.Log2(1 + v)
	}
	var sum1 float64
	for _, v := range lrClass1 {
		sum1 += math.Log2(1 + 1/v)
	}
	return 0.5 * (sum0/float64(len(lrClass0)) + sum1/float64(len(lrClass1)))
}

func meanLog10(lrs []float64) float64 {
	var sum float64
	for _, v := range lrs {
		sum += math.Log10(v)
	}
	return sum / float64(len(lrs))
}

func sentinelResult(lrClass0, lrClass1 []float64) lr.Result {
	return lr.Result{
		Cllr:     CllrUndefined,
		CllrMin:  CllrUndefined,
		CllrCal:  0,
		LRClass0: copyFloats(lrClass0),
		LRClass1: copyFloats(lrClass1),
	}
}

// copyFloats detaches the result record from the caller's arrays.
func copyFloats(src []float64) []float64 {
	if src == nil {
		return nil
	}
	out := make([]float64, len(src))
	copy(out, src)
	return out
}
