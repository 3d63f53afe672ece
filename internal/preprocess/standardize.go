// Package preprocess provides feature transformers for the score pipeline.
package preprocess

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Standardizer scales every feature column to zero mean and unit variance.
// Each FitTransform call fits from scratch; constant columns are centered but
// not scaled.
type Standardizer struct{}

// NewStandardizer creates a standardizing transformer.
func NewStandardizer() *Standardizer {
	return &Standardizer{}
}

// FitTransform fits column means and standard deviations on X and returns the
// standardized copy. X is not mutated.
func (s *Standardizer) FitTransform(X [][]float64) ([][]float64, error) {
	if len(X) == 0 {
		return nil, fmt.Errorf("cannot standardize empty matrix")
	}
	d := len(X[0])
	col := make([]float64, len(X))
	means := make([]float64, d)
	sds := make([]float64, d)
	for j := 0; j < d; j++ {
		for i, row := range X {
			if len(row) != d {
				return nil, fmt.Errorf("ragged matrix: row %d has %d features, want %d", i, len(row), d)
			}
			col[i] = row[j]
		}
		means[j] = stat.Mean(col, nil)
		if len(X) > 1 {
			sds[j] = stat.StdDev(col, nil)
		}
	}

	out := make([][]float64, len(X))
	for i, row := range X {
		r := make([]float64, d)
		for j, v := range row {
			r[j] = v - means[j]
			if sds[j] > 0 {
				r[j] /= sds[j]
			}
		}
		out[i] = r
	}
	return out, nil
}
