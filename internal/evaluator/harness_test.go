package evaluator

import (
	"context"
	"math"
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golir/domain/core"
	"golir/domain/lr"
	"golir/internal/calibration"
	"golir/internal/metrics"
	"golir/internal/testkit"
	"golir/ports"
)

func normalPools(t *testing.T, n int, sep float64) (lr.Pool, lr.Pool) {
	t.Helper()
	rng := rand.New(rand.NewSource(99))
	return lr.StaticPool(testkit.GaussianPool(rng, n, 1, 0, 1)),
		lr.StaticPool(testkit.GaussianPool(rng, n, 1, sep, 1))
}

func scoreEvaluator(name string) *ScoreBasedEvaluator {
	return NewScoreBasedEvaluator(name,
		func() ports.Scorer { return testkit.NewMeanScorer() },
		func() ports.Calibrator { return calibration.NewKDECalibrator() },
	)
}

func TestHarness_OracleRun(t *testing.T) {
	pool0, pool1 := normalPools(t, 200, 2)

	cfg := NewConfig()
	cfg.Shared.Test = WholePool
	cfg.Shared.Calibrate = WholePool // presence selects the direct path; oracle ignores it
	cfg.Repeat = 5
	cfg.Seed = 17

	h := NewHarness(NewNormalEvaluator("oracle", 0, 1, 2, 1), cfg)
	results, err := h.Run(context.Background(), 0, pool0, pool1)
	require.NoError(t, err)
	require.Len(t, results, 5)
	for _, r := range results {
		assert.Greater(t, r.Cllr, 0.0)
		assert.Less(t, r.Cllr, 1.0, "matched oracle on separated data beats the uninformative cost")
		assert.GreaterOrEqual(t, r.CllrCal, -1e-9)
	}
}

func TestHarness_ScoreBasedPartitioning(t *testing.T) {
	pool0, pool1 := normalPools(t, 150, 3)

	cfg := NewConfig()
	cfg.Shared = SplitSizes{Train: 50, Calibrate: 50, Test: 50}
	cfg.Repeat = 3
	cfg.Seed = 5

	h := NewHarness(scoreEvaluator("mean+kde"), cfg)
	results, err := h.Run(context.Background(), 0, pool0, pool1)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Len(t, r.LRClass0, 50)
		assert.Len(t, r.LRClass1, 50)
		assert.Less(t, r.Cllr, 1.0)
	}
}

func TestHarness_Reproducible(t *testing.T) {
	pool0, pool1 := normalPools(t, 120, 2)

	cfg := NewConfig()
	cfg.Shared = SplitSizes{Train: 40, Calibrate: 40, Test: 40}
	cfg.Repeat = 4
	cfg.Seed = 123

	run := func(workers int) []lr.Result {
		c := cfg
		c.Workers = workers
		res, err := NewHarness(scoreEvaluator("repro"), c).Run(context.Background(), 0, pool0, pool1)
		require.NoError(t, err)
		return res
	}

	serial := run(1)
	parallel := run(4)
	require.Len(t, parallel, len(serial))
	for i := range serial {
		assert.Equal(t, serial[i].Cllr, parallel[i].Cllr,
			"per-repetition seeding must make results independent of execution order")
	}
}

func TestHarness_KFoldPathSelected(t *testing.T) {
	pool0, pool1 := normalPools(t, 120, 3)

	cfg := NewConfig()
	cfg.Shared = SplitSizes{Train: 80, Test: 40}
	cfg.TrainFolds = 4
	cfg.Repeat = 2
	cfg.Seed = 7

	h := NewHarness(scoreEvaluator("kfold"), cfg)
	results, err := h.Run(context.Background(), 0, pool0, pool1)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		// pooled diagnostics: folds x test size
		assert.Len(t, r.LRClass0, 4*40)
		assert.Less(t, r.Cllr, 1.0)
	}
}

// featureScorer scores a sample by its first feature.
type featureScorer struct{}

func (featureScorer) Fit(X [][]float64, y []int) error { return nil }

func (featureScorer) PredictProba(X [][]float64) ([][]float64, error) {
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = []float64{0, row[0]}
	}
	return out, nil
}

// foldMarkedCalibrator emits fixed test LRs keyed by the first calibration
// score, so each fold's output is known in advance.
type foldMarkedCalibrator struct {
	lrsByMarker map[float64][]float64
	marker      float64
}

func (c *foldMarkedCalibrator) Fit(scores []float64, labels []int) error {
	c.marker = scores[0]
	return nil
}

func (c *foldMarkedCalibrator) Transform(scores []float64) ([]float64, []float64, error) {
	return nil, nil, nil
}

func (c *foldMarkedCalibrator) PredictLR(scores []float64) ([]float64, error) {
	return c.lrsByMarker[c.marker], nil
}

func TestEvaluateKFold_AveragesPerFoldMetric(t *testing.T) {
	// Two folds with hand-computable costs. Fold 0 calibrates on rows {0}
	// and {2} (first score 0) and emits separated LRs; fold 1 (first score
	// 1) emits the same LRs inverted.
	eval := NewScoreBasedEvaluator("kfold-literal",
		func() ports.Scorer { return featureScorer{} },
		func() ports.Calibrator {
			return &foldMarkedCalibrator{lrsByMarker: map[float64][]float64{
				0: {0.25, 4},
				1: {4, 0.25},
			}}
		},
	)

	s := Splits{
		Train0: [][]float64{{0}, {1}},
		Train1: [][]float64{{2}, {3}},
		Test0:  [][]float64{{10}},
		Test1:  [][]float64{{20}},
	}
	res, err := eval.EvaluateKFold(0, 2, s)
	require.NoError(t, err)

	// fold 0: lr0={0.25}, lr1={4} -> cllr = log2(1.25), cllr_min = 0
	// fold 1: lr0={4}, lr1={0.25} -> cllr = log2(5),    cllr_min = 1
	wantCllr := (math.Log2(1.25) + math.Log2(5)) / 2
	assert.InDelta(t, wantCllr, res.Cllr, 1e-12)

	// The metric is averaged across folds, never computed once over the
	// pooled LRs: PAV over the pooled arrays would give cllr_min = 1, the
	// fold mean is 0.5.
	assert.InDelta(t, 0.5, res.CllrMin, 1e-12)
	assert.InDelta(t, wantCllr-0.5, res.CllrCal, 1e-12)

	// diagnostics pool the per-fold arrays in fold order
	assert.Equal(t, []float64{0.25, 4}, res.LRClass0)
	assert.Equal(t, []float64{4, 0.25}, res.LRClass1)
}

func TestHarness_TrainReuseFallback(t *testing.T) {
	pool0, pool1 := normalPools(t, 100, 3)

	cfg := NewConfig()
	cfg.Shared = SplitSizes{Train: 50, Calibrate: SizeUnset, Test: 50}
	cfg.TrainReuse = true
	cfg.Seed = 9

	h := NewHarness(scoreEvaluator("self-cal"), cfg)
	results, err := h.Run(context.Background(), 0, pool0, pool1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Less(t, results[0].Cllr, 1.0)
}

func TestHarness_NoModeIsAnError(t *testing.T) {
	pool0, pool1 := normalPools(t, 50, 2)

	cfg := NewConfig()
	cfg.Shared.Test = 20 // test split only: nothing to calibrate with

	_, err := NewHarness(scoreEvaluator("none"), cfg).Run(context.Background(), 0, pool0, pool1)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNoEvaluationMode)
}

func TestHarness_OversizedSplitFailsRun(t *testing.T) {
	pool0, pool1 := normalPools(t, 30, 2)

	cfg := NewConfig()
	cfg.Shared = SplitSizes{Train: 25, Calibrate: 25, Test: 25}

	_, err := NewHarness(scoreEvaluator("oversized"), cfg).Run(context.Background(), 0, pool0, pool1)
	require.Error(t, err)
	assert.True(t, core.IsSplitSize(err))
}

func TestHarness_FixedSplitsBypassSampling(t *testing.T) {
	rng := rand.New(rand.NewSource(31))
	fixed := FixedSplits{
		Class0Train:     testkit.GaussianPool(rng, 40, 1, 0, 1),
		Class1Train:     testkit.GaussianPool(rng, 40, 1, 3, 1),
		Class0Calibrate: testkit.GaussianPool(rng, 40, 1, 0, 1),
		Class1Calibrate: testkit.GaussianPool(rng, 40, 1, 3, 1),
		Class0Test:      testkit.GaussianPool(rng, 30, 1, 0, 1),
		Class1Test:      testkit.GaussianPool(rng, 30, 1, 3, 1),
	}

	cfg := NewConfig()
	cfg.Fixed = fixed

	// pools stay zero-valued: everything comes from the fixed splits
	h := NewHarness(scoreEvaluator("fixed"), cfg)
	results, err := h.Run(context.Background(), 0, lr.Pool{}, lr.Pool{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Len(t, results[0].LRClass0, 30)
	assert.Len(t, results[0].LRClass1, 30)
}

func TestHarness_GeneratorPoolsRegeneratePerRepetition(t *testing.T) {
	var calls atomic.Int64
	gen := func(x float64, rng *rand.Rand) [][]float64 {
		calls.Add(1)
		return testkit.GaussianPool(rng, 60, 1, x, 1)
	}

	cfg := NewConfig()
	cfg.Shared = SplitSizes{Calibrate: WholePool, Test: WholePool}
	cfg.Repeat = 6
	cfg.Seed = 2

	h := NewHarness(NewNormalEvaluator("gen", 0, 1, 2, 1), cfg)
	_, err := h.Run(context.Background(), 2, lr.GeneratedPool(gen), lr.GeneratedPool(gen))
	require.NoError(t, err)
	assert.Equal(t, int64(12), calls.Load(), "two pools regenerated on each of 6 repetitions")
}

func TestHarness_ProgressObserver(t *testing.T) {
	pool0, pool1 := normalPools(t, 80, 2)

	var seen atomic.Int64
	cfg := NewConfig()
	cfg.Shared = SplitSizes{Calibrate: WholePool, Test: WholePool}
	cfg.Repeat = 4
	cfg.Progress = func(done, total int) {
		seen.Add(1)
		assert.Equal(t, 4, total)
	}

	_, err := NewHarness(NewNormalEvaluator("progress", 0, 1, 2, 1), cfg).
		Run(context.Background(), 0, pool0, pool1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), seen.Load())
}

func TestHarness_ProgressCountsFailedRepetitions(t *testing.T) {
	pool0, pool1 := normalPools(t, 30, 2)

	// every repetition fails on the oversized split
	cfg := NewConfig()
	cfg.Shared = SplitSizes{Train: 25, Calibrate: 25, Test: 25}
	cfg.Repeat = 4
	cfg.Tolerant = true

	var final atomic.Int64
	cfg.Progress = func(done, total int) {
		final.Store(int64(done))
	}

	results, err := NewHarness(scoreEvaluator("tolerant"), cfg).
		Run(context.Background(), 0, pool0, pool1)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, int64(4), final.Load(),
		"dropped repetitions still count as completed work")
}

func TestHarness_CancelledContextStopsRun(t *testing.T) {
	pool0, pool1 := normalPools(t, 80, 2)

	cfg := NewConfig()
	cfg.Shared = SplitSizes{Calibrate: WholePool, Test: WholePool}
	cfg.Repeat = 8

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHarness(NewNormalEvaluator("cancelled", 0, 1, 2, 1), cfg).
		Run(ctx, 0, pool0, pool1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummarize_MeanAndSentinelRejection(t *testing.T) {
	results := []lr.Result{
		{Cllr: 0.4, CllrMin: 0.3, CllrCal: 0.1},
		{Cllr: 0.6, CllrMin: 0.5, CllrCal: 0.1},
	}
	agg, err := Summarize("s", 1.5, results)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, agg.CllrMean, 1e-12)
	assert.InDelta(t, 0.4, agg.CllrMinMean, 1e-12)
	assert.Equal(t, 2, agg.N)

	results = append(results, lr.Result{Cllr: metrics.CllrUndefined, CllrMin: metrics.CllrUndefined})
	_, err = Summarize("s", 1.5, results)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUndefinedCost)
}

func TestSweep_OracleSeparationCurve(t *testing.T) {
	// class0 fixed at 0, class1 at x
	gen0 := func(x float64, rng *rand.Rand) [][]float64 {
		return testkit.GaussianPool(rng, 150, 1, 0, 1)
	}
	gen1 := func(x float64, rng *rand.Rand) [][]float64 {
		return testkit.GaussianPool(rng, 150, 1, x, 1)
	}

	eval := NewNormalEvaluator("oracle-sweep", 0, 1, 0, 1)
	eval.UseDeltaFromX()

	cfg := NewConfig()
	cfg.Shared = SplitSizes{Calibrate: WholePool, Test: WholePool}
	cfg.Repeat = 5
	cfg.Seed = 77

	aggs, err := Sweep(context.Background(), NewHarness(eval, cfg),
		[]float64{0.5, 2, 4}, lr.GeneratedPool(gen0), lr.GeneratedPool(gen1))
	require.NoError(t, err)
	require.Len(t, aggs, 3)

	// Cllr falls as the separation grows.
	assert.Greater(t, aggs[0].CllrMean, aggs[1].CllrMean)
	assert.Greater(t, aggs[1].CllrMean, aggs[2].CllrMean)
}
