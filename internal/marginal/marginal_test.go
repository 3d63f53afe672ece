package marginal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golir/domain/lr"
	"golir/internal/calibration"
	"golir/internal/metrics"
	"golir/ports"
)

// stubScorer returns one preset mixture-probability row per input sample.
type stubScorer struct {
	rows [][]float64
}

func (s *stubScorer) Fit(X [][]float64, y []int) error { return nil }

func (s *stubScorer) PredictProba(X [][]float64) ([][]float64, error) {
	return s.rows[:len(X)], nil
}

func mustTarget(t *testing.T, nhot []int) lr.TargetClass {
	t.Helper()
	tc, err := lr.NewTargetClass(nhot)
	require.NoError(t, err)
	return tc
}

func TestMixtureColumns_TargetOverlap(t *testing.T) {
	target := mustTarget(t, []int{1, 0})

	// columns are bitmasks over 2 types; target type 0 appears in 0b01 and 0b11
	assert.Equal(t, []int{1, 3}, MixtureColumns(2, target, nil))
	assert.Equal(t, []int{2, 3}, MixtureColumns(2, target.Complement(), nil))
}

func TestMixtureColumns_PriorsPin(t *testing.T) {
	target := mustTarget(t, []int{1, 0, 0})

	// type 2 pinned absent drops every column with bit 2 set
	cols := MixtureColumns(3, target, []int{PriorUniform, PriorUniform, PriorAbsent})
	assert.Equal(t, []int{1, 3}, cols)

	// type 1 pinned present keeps only columns that include it
	cols = MixtureColumns(3, target, []int{PriorUniform, PriorPresent, PriorUniform})
	assert.Equal(t, []int{3, 7}, cols)
}

func TestPredictLRs_RawRatio(t *testing.T) {
	// columns [00 01 10 11]: numerator 0.3+0.1, denominator 0.5+0.1
	scorer := &stubScorer{rows: [][]float64{{0.1, 0.3, 0.5, 0.1}}}
	c := NewClassifier(scorer, func() ports.Calibrator { return calibration.NewKDECalibrator() }, 2)

	target := mustTarget(t, []int{1, 0})
	lrs, err := c.PredictLRs([][]float64{{0}}, []lr.TargetClass{target}, false, nil, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.4/0.6, lrs[0][0], 1e-12)
}

func TestPredictLRs_ClampSymmetric(t *testing.T) {
	scorer := &stubScorer{rows: [][]float64{
		{0.0, 1.0, 0.0, 0.0}, // denominator mass zero
		{0.0, 0.0, 1.0, 0.0}, // numerator mass zero
	}}
	c := NewClassifier(scorer, func() ports.Calibrator { return calibration.NewKDECalibrator() }, 2)
	c.SetMaxLR(100)

	target := mustTarget(t, []int{1, 0})
	lrs, err := c.PredictLRs([][]float64{{0}, {0}}, []lr.TargetClass{target}, false, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 100.0, lrs[0][0])
	assert.Equal(t, 0.01, lrs[1][0])
}

func TestPredictLRs_ColumnCountMismatch(t *testing.T) {
	scorer := &stubScorer{rows: [][]float64{{0.5, 0.5}}}
	c := NewClassifier(scorer, func() ports.Calibrator { return calibration.NewKDECalibrator() }, 2)

	target := mustTarget(t, []int{1, 0})
	_, err := c.PredictLRs([][]float64{{0}}, []lr.TargetClass{target}, false, nil, nil)
	assert.Error(t, err)
}

func TestPredictLRs_CalibratedRequiresFit(t *testing.T) {
	scorer := &stubScorer{rows: [][]float64{{0.1, 0.3, 0.5, 0.1}}}
	c := NewClassifier(scorer, func() ports.Calibrator { return calibration.NewKDECalibrator() }, 2)

	target := mustTarget(t, []int{1, 0})
	_, err := c.PredictLRs([][]float64{{0}}, []lr.TargetClass{target}, true, nil, nil)
	assert.ErrorContains(t, err, "no calibrator fitted")
}

func TestFitCalibration_EndToEnd(t *testing.T) {
	// larger raw LR for the two target-present samples
	scorer := &stubScorer{rows: [][]float64{
		{0.1, 0.6, 0.2, 0.1},
		{0.1, 0.5, 0.3, 0.1},
		{0.1, 0.2, 0.6, 0.1},
		{0.1, 0.1, 0.7, 0.1},
	}}
	c := NewClassifier(scorer, func() ports.Calibrator { return calibration.NewKDECalibrator() }, 2)

	target := mustTarget(t, []int{1, 0})
	X := [][]float64{{0}, {1}, {2}, {3}}
	yNHot := [][]int{{1, 0}, {1, 1}, {0, 1}, {0, 1}}

	require.NoError(t, c.FitCalibration(X, yNHot, []lr.TargetClass{target}))

	lrs, err := c.PredictLRs(X, []lr.TargetClass{target}, true, nil, nil)
	require.NoError(t, err)
	for _, row := range lrs {
		assert.Greater(t, row[0], 0.0)
	}
	// calibrated LRs keep the raw ordering: present samples above absent ones
	assert.Greater(t, lrs[0][0], lrs[3][0])
}

func TestCllrForTarget_DropsZerosThenSentinel(t *testing.T) {
	target := mustTarget(t, []int{1, 0})
	yNHot := [][]int{{1, 0}, {0, 1}, {0, 1}}

	// the only target-present LR is zero, so that side empties out
	res, err := CllrForTarget([]float64{0, 2, 0.5}, yNHot, target)
	require.NoError(t, err)
	assert.Equal(t, metrics.CllrUndefined, res.Cllr)
}

func TestCllrForTarget_TwoClassFraming(t *testing.T) {
	target := mustTarget(t, []int{1, 0})
	yNHot := [][]int{{1, 0}, {1, 1}, {0, 1}, {0, 1}}

	res, err := CllrForTarget([]float64{4, 3, 0.25, 0.5}, yNHot, target)
	require.NoError(t, err)
	assert.Greater(t, res.Cllr, 0.0)
	assert.Less(t, res.Cllr, 1.0)
	assert.Len(t, res.LRClass1, 2)
	assert.Len(t, res.LRClass0, 2)
}

func TestCombineReplicates_Averages(t *testing.T) {
	X := [][]float64{{1, 2}, {3, 4}, {10, 20}}
	out, err := CombineReplicates(X, [][]int{{0, 1}, {2}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{2, 3}, {10, 20}}, out)
}

func TestCombineReplicates_Rejects(t *testing.T) {
	X := [][]float64{{1, 2}, {3}}

	_, err := CombineReplicates(X, [][]int{{}})
	assert.Error(t, err)

	_, err = CombineReplicates(X, [][]int{{0, 5}})
	assert.Error(t, err)

	_, err = CombineReplicates(X, [][]int{{0, 1}})
	assert.Error(t, err)
}
