// Package testkit provides seeded synthetic sample pools and a minimal
// trainable scorer for tests and demos. Nothing here is part of the
// evaluation core.
package testkit

import (
	"fmt"
	"math"
	"math/rand"

	"golir/domain/lr"
)

// GaussianPool draws an n x d matrix with every feature ~ N(mu, sigma).
func GaussianPool(rng *rand.Rand, n, d int, mu, sigma float64) [][]float64 {
	X := make([][]float64, n)
	for i := range X {
		row := make([]float64, d)
		for j := range row {
			row[j] = rng.NormFloat64()*sigma + mu
		}
		X[i] = row
	}
	return X
}

// GaussianGenerator binds a Gaussian pool to the sweep parameter: the class
// mean becomes base + x, so a sweep over x varies the class separation.
func GaussianGenerator(n, d int, base, sigma float64) lr.Generator {
	return func(x float64, rng *rand.Rand) [][]float64 {
		return GaussianPool(rng, n, d, base+x, sigma)
	}
}

// MeanScorer is the simplest trainable scorer that exercises the Scorer port:
// it projects samples onto the difference of class mean vectors and squashes
// the projection to a probability. Good enough for pipeline tests; real
// classifiers live outside this module.
type MeanScorer struct {
	w []float64
	b float64
}

// NewMeanScorer creates an untrained scorer.
func NewMeanScorer() *MeanScorer {
	return &MeanScorer{}
}

// Fit computes the mean-difference projection from binary-labeled samples.
func (s *MeanScorer) Fit(X [][]float64, y []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("bad training input: %d samples, %d labels", len(X), len(y))
	}
	d := len(X[0])
	mean0 := make([]float64, d)
	mean1 := make([]float64, d)
	var n0, n1 float64
	for i, row := range X {
		if y[i] == 0 {
			addInto(mean0, row)
			n0++
		} else {
			addInto(mean1, row)
			n1++
		}
	}
	if n0 == 0 || n1 == 0 {
		return fmt.Errorf("training data must contain both classes")
	}
	s.w = make([]float64, d)
	s.b = 0
	for j := 0; j < d; j++ {
		mean0[j] /= n0
		mean1[j] /= n1
		s.w[j] = mean1[j] - mean0[j]
		s.b -= s.w[j] * (mean0[j] + mean1[j]) / 2
	}
	return nil
}

// PredictProba returns an n x 2 matrix; column 1 is the squashed projection.
func (s *MeanScorer) PredictProba(X [][]float64) ([][]float64, error) {
	if s.w == nil {
		return nil, fmt.Errorf("scorer not fitted")
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		if len(row) != len(s.w) {
			return nil, fmt.Errorf("sample %d has %d features, want %d", i, len(row), len(s.w))
		}
		z := s.b
		for j, v := range row {
			z += s.w[j] * v
		}
		p := 1 / (1 + math.Exp(-z))
		out[i] = []float64{1 - p, p}
	}
	return out, nil
}

func addInto(dst, src []float64) {
	for j, v := range src {
		dst[j] += v
	}
}
