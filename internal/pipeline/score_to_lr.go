// Package pipeline chains a trainable scorer and a density calibrator into a
// score-to-LR system: train on one split, calibrate scores on another, emit
// LRs for a held-out test split.
package pipeline

import (
	"fmt"

	"golir/domain/core"
	"golir/ports"
)

// ScoreToLR owns a scorer, a calibrator factory and an ordered list of
// feature preprocessors. The scorer is refit on every call; a fresh
// calibrator is produced per run.
type ScoreToLR struct {
	scorer        ports.Scorer
	newCalibrator ports.CalibratorFactory
	preprocessors []ports.Transformer
}

// NewScoreToLR assembles a pipeline.
func NewScoreToLR(scorer ports.Scorer, factory ports.CalibratorFactory, preprocessors ...ports.Transformer) *ScoreToLR {
	return &ScoreToLR{scorer: scorer, newCalibrator: factory, preprocessors: preprocessors}
}

// FitAndApply trains the scorer on train0+train1, fits a calibrator on the
// scored calibration splits, and returns per-class LRs on the test splits.
func (p *ScoreToLR) FitAndApply(train0, train1, calib0, calib1, test0, test1 [][]float64) (lr0, lr1 []float64, err error) {
	splits := [][][]float64{train0, train1, calib0, calib1, test0, test1}
	for _, t := range p.preprocessors {
		if splits, err = processVector(t, splits); err != nil {
			return nil, nil, err
		}
	}
	train0, train1 = splits[0], splits[1]
	calib0, calib1 = splits[2], splits[3]
	test0, test1 = splits[4], splits[5]

	if len(train0) == 0 {
		return nil, nil, core.NewInsufficientDataError(0)
	}
	if len(train1) == 0 {
		return nil, nil, core.NewInsufficientDataError(1)
	}

	if err := p.scorer.Fit(concatRows(train0, train1), binaryLabels(len(train0), len(train1))); err != nil {
		return nil, nil, fmt.Errorf("scorer fit: %w", err)
	}

	calibScores, err := p.score(concatRows(calib0, calib1))
	if err != nil {
		return nil, nil, err
	}
	cal := p.newCalibrator()
	if err := cal.Fit(calibScores, binaryLabels(len(calib0), len(calib1))); err != nil {
		return nil, nil, fmt.Errorf("calibrator fit: %w", err)
	}

	testScores, err := p.score(concatRows(test0, test1))
	if err != nil {
		return nil, nil, err
	}
	lrs, err := cal.PredictLR(testScores)
	if err != nil {
		return nil, nil, err
	}
	return lrs[:len(test0)], lrs[len(test0):], nil
}

// FoldLRs is one fold's LR output on the shared test splits.
type FoldLRs struct {
	LRClass0 []float64
	LRClass1 []float64
}

// FitAndApplyKFold runs k-fold cross-validation inside the training pool: for
// each fold, train on the other k-1 folds, calibrate on the held-out fold,
// and score the shared external test splits. One LR set is returned per fold;
// the caller computes the metric per fold and averages across folds (the cost
// is k repetitions of the full metric, never one metric over averaged LRs).
//
// Folds are contiguous slices of the training splits; the harness shuffles
// pools when sampling, so no additional shuffle happens here.
func (p *ScoreToLR) FitAndApplyKFold(folds int, train0, train1, test0, test1 [][]float64) ([]FoldLRs, error) {
	if folds < 2 {
		return nil, fmt.Errorf("%w: need at least 2 folds, got %d", core.ErrSplitSize, folds)
	}
	if len(train0) < folds || len(train1) < folds {
		return nil, fmt.Errorf("%w: %d folds exceed training pools of %d/%d",
			core.ErrSplitSize, folds, len(train0), len(train1))
	}

	out := make([]FoldLRs, 0, folds)
	for f := 0; f < folds; f++ {
		calib0, rest0 := foldSplit(train0, folds, f)
		calib1, rest1 := foldSplit(train1, folds, f)

		lr0, lr1, err := p.FitAndApply(rest0, rest1, calib0, calib1, test0, test1)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", f, err)
		}
		out = append(out, FoldLRs{LRClass0: lr0, LRClass1: lr1})
	}
	return out, nil
}

func (p *ScoreToLR) score(X [][]float64) ([]float64, error) {
	if len(X) == 0 {
		return nil, nil
	}
	proba, err := p.scorer.PredictProba(X)
	if err != nil {
		return nil, fmt.Errorf("scorer predict: %w", err)
	}
	scores := make([]float64, len(proba))
	for i, row := range proba {
		if len(row) < 2 {
			return nil, fmt.Errorf("scorer returned %d columns, want >= 2", len(row))
		}
		scores[i] = row[1]
	}
	return scores, nil
}

// foldSplit returns the f-th of k contiguous folds and the remaining rows.
func foldSplit(X [][]float64, k, f int) (held, rest [][]float64) {
	n := len(X)
	lo := n * f / k
	hi := n * (f + 1) / k
	held = X[lo:hi]
	rest = make([][]float64, 0, n-(hi-lo))
	rest = append(rest, X[:lo]...)
	rest = append(rest, X[hi:]...)
	return held, rest
}

// processVector refits the transformer on the concatenation of all non-empty
// splits and slices the result back out, so every split in one run sees
// identical scaling. The concatenation leaks distributional statistics across
// splits; this matches the reference behavior and is recorded as a design
// compromise in DESIGN.md.
func processVector(t ports.Transformer, splits [][][]float64) ([][][]float64, error) {
	var all [][]float64
	for _, s := range splits {
		all = append(all, s...)
	}
	if len(all) == 0 {
		return splits, nil
	}
	transformed, err := t.FitTransform(all)
	if err != nil {
		return nil, err
	}
	out := make([][][]float64, len(splits))
	cursor := 0
	for i, s := range splits {
		if len(s) == 0 {
			out[i] = s
			continue
		}
		out[i] = transformed[cursor : cursor+len(s)]
		cursor += len(s)
	}
	return out, nil
}

func concatRows(a, b [][]float64) [][]float64 {
	out := make([][]float64, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

func binaryLabels(n0, n1 int) []int {
	y := make([]int, n0+n1)
	for i := n0; i < n0+n1; i++ {
		y[i] = 1
	}
	return y
}
