package ports

// Scorer is the trainable-scorer capability: any two-class (or multi-class)
// model that can fit on labeled feature vectors and emit per-class
// probabilities. Classifier internals are outside this module; the evaluator
// only relies on this contract.
type Scorer interface {
	// Fit trains the scorer on an N x D feature matrix with integer class
	// labels.
	Fit(X [][]float64, y []int) error

	// PredictProba returns an N x K matrix of class probabilities. For the
	// two-class pipeline, column 1 is P(class1 | x) and is used as the raw
	// score.
	PredictProba(X [][]float64) ([][]float64, error)
}

// ScorerFactory produces a fresh, untrained scorer. Evaluators that refit per
// repetition use a factory so parallel repetitions never share model state.
type ScorerFactory func() Scorer
