package evaluator

import (
	"context"
	"fmt"

	"github.com/montanaflynn/stats"

	"golir/domain/core"
	"golir/domain/lr"
	"golir/internal/metrics"
)

// Aggregate summarizes the repeated results of one harness run at one sweep
// point. Aggregation is the caller side of the contract: the harness itself
// only returns per-repetition results.
type Aggregate struct {
	Name string
	X    float64
	N    int

	CllrMean    float64
	CllrStd     float64
	CllrMinMean float64
	CllrCalMean float64

	AvgLLRClass0Mean float64
	AvgLLRClass1Mean float64
}

// Summarize aggregates per-repetition results into means and the Cllr
// standard deviation. Results carrying the empty-class sentinel are out of
// domain and make the aggregation fail; callers wanting to keep going must
// filter them out first.
func Summarize(name string, x float64, results []lr.Result) (Aggregate, error) {
	if len(results) == 0 {
		return Aggregate{}, fmt.Errorf("no results to aggregate")
	}

	cllrs := make([]float64, len(results))
	var minSum, calSum, llr0Sum, llr1Sum float64
	for i, r := range results {
		if metrics.IsUndefined(r) {
			return Aggregate{}, fmt.Errorf("%w: repetition %d", core.ErrUndefinedCost, i)
		}
		cllrs[i] = r.Cllr
		minSum += r.CllrMin
		calSum += r.CllrCal
		llr0Sum += r.AvgLLRClass0
		llr1Sum += r.AvgLLRClass1
	}

	mean, err := stats.Mean(cllrs)
	if err != nil {
		return Aggregate{}, err
	}
	sd, err := stats.StandardDeviation(cllrs)
	if err != nil {
		return Aggregate{}, err
	}

	n := float64(len(results))
	return Aggregate{
		Name:             name,
		X:                x,
		N:                len(results),
		CllrMean:         mean,
		CllrStd:          sd,
		CllrMinMean:      minSum / n,
		CllrCalMean:      calSum / n,
		AvgLLRClass0Mean: llr0Sum / n,
		AvgLLRClass1Mean: llr1Sum / n,
	}, nil
}

// Sweep runs the harness at every grid point and summarizes each one. The
// same pools are passed throughout; generator-valued pools see the current x.
func Sweep(ctx context.Context, h *Harness, xs []float64, pool0, pool1 lr.Pool) ([]Aggregate, error) {
	aggs := make([]Aggregate, 0, len(xs))
	for _, x := range xs {
		results, err := h.Run(ctx, x, pool0, pool1)
		if err != nil {
			return nil, fmt.Errorf("sweep point x=%g: %w", x, err)
		}
		agg, err := Summarize(h.eval.Name(), x, results)
		if err != nil {
			return nil, fmt.Errorf("sweep point x=%g: %w", x, err)
		}
		aggs = append(aggs, agg)
	}
	return aggs, nil
}
