package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonum.org/v1/gonum/stat"
)

func TestStandardizer_ZeroMeanUnitVariance(t *testing.T) {
	X := [][]float64{
		{1, 100},
		{2, 200},
		{3, 300},
		{4, 400},
	}

	out, err := NewStandardizer().FitTransform(X)
	require.NoError(t, err)

	for j := 0; j < 2; j++ {
		col := make([]float64, len(out))
		for i := range out {
			col[i] = out[i][j]
		}
		assert.InDelta(t, 0.0, stat.Mean(col, nil), 1e-12)
		assert.InDelta(t, 1.0, stat.StdDev(col, nil), 1e-12)
	}

	// input untouched
	assert.Equal(t, 1.0, X[0][0])
}

func TestStandardizer_ConstantColumnCenteredOnly(t *testing.T) {
	X := [][]float64{{5, 1}, {5, 2}, {5, 3}}

	out, err := NewStandardizer().FitTransform(X)
	require.NoError(t, err)
	for i := range out {
		assert.Equal(t, 0.0, out[i][0])
	}
}

func TestStandardizer_RejectsEmptyAndRagged(t *testing.T) {
	_, err := NewStandardizer().FitTransform(nil)
	assert.Error(t, err)

	_, err = NewStandardizer().FitTransform([][]float64{{1, 2}, {3}})
	assert.Error(t, err)
}
