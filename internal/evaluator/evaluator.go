package evaluator

import (
	"fmt"

	"golir/domain/lr"
	"golir/internal/calibration"
	"golir/internal/metrics"
	"golir/internal/pipeline"
	"golir/ports"
)

// RunEvaluator turns one repetition's splits into a Cllr result. The x
// parameter is the sweep variable the harness was invoked with; evaluators
// that have no use for it ignore it. Implementations must be safe for
// concurrent Evaluate calls, since repetitions run in parallel.
type RunEvaluator interface {
	Name() string
	Evaluate(x float64, s Splits) (lr.Result, error)
	EvaluateKFold(x float64, folds int, s Splits) (lr.Result, error)
}

// NormalEvaluator is the distribution-based oracle: both class score
// distributions are known Gaussians, so LRs on the test splits come from the
// analytic density ratio. Training and calibration splits are ignored.
type NormalEvaluator struct {
	name         string
	loc0, scale0 float64
	loc1, scale1 float64
	meanDelta    *float64
	deltaFromX   bool
}

// NewNormalEvaluator builds the oracle from both Gaussian parameter pairs.
func NewNormalEvaluator(name string, loc0, scale0, loc1, scale1 float64) *NormalEvaluator {
	return &NormalEvaluator{name: name, loc0: loc0, scale0: scale0, loc1: loc1, scale1: scale1}
}

// SetMeanDelta fixes the H1 location at loc0 + delta for all runs.
func (e *NormalEvaluator) SetMeanDelta(delta float64) {
	d := delta
	e.meanDelta = &d
}

// UseDeltaFromX makes every run take the H1 location as loc0 + x, so a sweep
// over x becomes a sweep over class separation.
func (e *NormalEvaluator) UseDeltaFromX() {
	e.deltaFromX = true
}

func (e *NormalEvaluator) Name() string { return e.name }

// Evaluate computes oracle LRs on the test splits. Samples must be 1-D.
func (e *NormalEvaluator) Evaluate(x float64, s Splits) (lr.Result, error) {
	cal := calibration.NewNormalCalibrator(e.loc0, e.scale0, e.loc1, e.scale1)
	if e.deltaFromX {
		cal.SetMeanDelta(x)
	} else if e.meanDelta != nil {
		cal.SetMeanDelta(*e.meanDelta)
	}

	scores0, err := flatten1D(s.Test0)
	if err != nil {
		return lr.Result{}, err
	}
	scores1, err := flatten1D(s.Test1)
	if err != nil {
		return lr.Result{}, err
	}
	lr0, err := cal.PredictLR(scores0)
	if err != nil {
		return lr.Result{}, err
	}
	lr1, err := cal.PredictLR(scores1)
	if err != nil {
		return lr.Result{}, err
	}
	return metrics.Calculate(lr0, lr1)
}

// EvaluateKFold is identical to Evaluate: the oracle has nothing to train, so
// folds are meaningless for it.
func (e *NormalEvaluator) EvaluateKFold(x float64, folds int, s Splits) (lr.Result, error) {
	return e.Evaluate(x, s)
}

// ScoreBasedEvaluator runs the full score-to-LR pipeline per repetition. It
// holds factories rather than instances so parallel repetitions get private
// scorer and calibrator state; preprocessors are shared and must be stateless
// per fit.
type ScoreBasedEvaluator struct {
	name          string
	newScorer     ports.ScorerFactory
	newCalibrator ports.CalibratorFactory
	preprocessors []ports.Transformer
}

// NewScoreBasedEvaluator assembles a score-based run evaluator.
func NewScoreBasedEvaluator(name string, scorer ports.ScorerFactory, cal ports.CalibratorFactory, preprocessors ...ports.Transformer) *ScoreBasedEvaluator {
	return &ScoreBasedEvaluator{name: name, newScorer: scorer, newCalibrator: cal, preprocessors: preprocessors}
}

func (e *ScoreBasedEvaluator) Name() string { return e.name }

// Evaluate trains on the training splits, calibrates on the calibration
// splits and computes the Cllr of the test-split LRs.
func (e *ScoreBasedEvaluator) Evaluate(x float64, s Splits) (lr.Result, error) {
	pipe := pipeline.NewScoreToLR(e.newScorer(), e.newCalibrator, e.preprocessors...)
	lr0, lr1, err := pipe.FitAndApply(s.Train0, s.Train1, s.Calibrate0, s.Calibrate1, s.Test0, s.Test1)
	if err != nil {
		return lr.Result{}, err
	}
	return metrics.Calculate(lr0, lr1)
}

// EvaluateKFold cross-validates inside the training splits: each fold trains
// on the rest, calibrates on the held-out fold and scores the shared test
// splits. The metric is computed per fold and averaged across folds.
func (e *ScoreBasedEvaluator) EvaluateKFold(x float64, folds int, s Splits) (lr.Result, error) {
	pipe := pipeline.NewScoreToLR(e.newScorer(), e.newCalibrator, e.preprocessors...)
	foldLRs, err := pipe.FitAndApplyKFold(folds, s.Train0, s.Train1, s.Test0, s.Test1)
	if err != nil {
		return lr.Result{}, err
	}

	results := make([]lr.Result, 0, len(foldLRs))
	for _, f := range foldLRs {
		res, err := metrics.Calculate(f.LRClass0, f.LRClass1)
		if err != nil {
			return lr.Result{}, err
		}
		if metrics.IsUndefined(res) {
			return res, nil
		}
		results = append(results, res)
	}
	return averageResults(results), nil
}

// averageResults folds k per-fold metrics into one result: scalar fields are
// averaged, LR arrays pooled for diagnostics.
func averageResults(results []lr.Result) lr.Result {
	var out lr.Result
	n := float64(len(results))
	for _, r := range results {
		out.Cllr += r.Cllr / n
		out.CllrMin += r.CllrMin / n
		out.CllrCal += r.CllrCal / n
		out.AvgLLRClass0 += r.AvgLLRClass0 / n
		out.AvgLLRClass1 += r.AvgLLRClass1 / n
		out.LRClass0 = append(out.LRClass0, r.LRClass0...)
		out.LRClass1 = append(out.LRClass1, r.LRClass1...)
	}
	return out
}

func flatten1D(X [][]float64) ([]float64, error) {
	out := make([]float64, len(X))
	for i, row := range X {
		if len(row) != 1 {
			return nil, fmt.Errorf("oracle evaluation needs 1-D samples, got %d features", len(row))
		}
		out[i] = row[0]
	}
	return out, nil
}
