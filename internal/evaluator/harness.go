// Package evaluator implements the resampling experiment harness: it draws
// train/calibrate/test splits from class-conditional sample pools, invokes a
// run evaluator per repetition and collects one Cllr result per repetition.
package evaluator

import (
	"context"
	"math/rand"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"golir/domain/core"
	"golir/domain/lr"
	"golir/internal"
)

// Config drives one harness run. Build it with NewConfig: the zero value
// would read every split size as 0 instead of unset.
type Config struct {
	// Shared sizes apply to both classes; Class0/Class1 override per class.
	Shared SplitSizes
	Class0 SplitSizes
	Class1 SplitSizes

	// Fixed splits are used for any split whose size stays unset.
	Fixed FixedSplits

	// TrainFolds > 0 selects the k-fold path (requires a training split).
	TrainFolds int

	// TrainReuse reuses the training split for calibration when no
	// calibration split exists. Self-calibration is biased; it exists as a
	// cheap variant, not for reporting final numbers.
	TrainReuse bool

	// Repeat is the number of independent repetitions.
	Repeat int

	// Workers caps parallel repetitions; <= 1 runs serially.
	Workers int

	// Seed is the base random seed. Repetition i derives Seed+i, so results
	// are reproducible independent of execution order.
	Seed int64

	// Tolerant opts into partial results: failed repetitions are dropped
	// with a warning instead of failing the whole run.
	Tolerant bool

	// Progress, when set, observes completed repetitions. It is called from
	// worker goroutines and must be fast and non-blocking.
	Progress func(done, total int)
}

// NewConfig returns a config with all sizes unset and a single repetition.
func NewConfig() Config {
	return Config{
		Shared: UnsetSizes(),
		Class0: UnsetSizes(),
		Class1: UnsetSizes(),
		Repeat: 1,
	}
}

// Harness runs repeated evaluations of one run evaluator.
type Harness struct {
	eval RunEvaluator
	cfg  Config
	log  *internal.Logger
}

// NewHarness creates a harness for the given evaluator and config.
func NewHarness(eval RunEvaluator, cfg Config) *Harness {
	if cfg.Repeat < 1 {
		cfg.Repeat = 1
	}
	return &Harness{eval: eval, cfg: cfg, log: internal.DefaultLogger}
}

// Run executes cfg.Repeat repetitions at sweep point x, drawing fresh splits
// from the pools each time, and returns one result per repetition in
// repetition order. Generator-valued pools are regenerated per repetition;
// static pools are re-partitioned. A repetition failure fails the whole run
// unless the config is tolerant. Cancellation is coarse: the context is
// checked between repetitions only, and in-flight repetitions are awaited
// before returning.
func (h *Harness) Run(ctx context.Context, x float64, pool0, pool1 lr.Pool) ([]lr.Result, error) {
	total := h.cfg.Repeat
	results := make([]lr.Result, total)
	failures := make([]error, total)
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	workers := h.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	for rep := 0; rep < total; rep++ {
		if gctx.Err() != nil {
			break
		}
		rep := rep
		g.Go(func() error {
			res, err := h.runOnce(x, rep, pool0, pool1)
			n := done.Add(1)
			if h.cfg.Progress != nil {
				h.cfg.Progress(int(n), total)
			}
			if err != nil {
				if h.cfg.Tolerant {
					h.log.Warn("[%s] repetition %d failed, dropping: %v", h.eval.Name(), rep, err)
					failures[rep] = err
					return nil
				}
				return err
			}
			results[rep] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !h.cfg.Tolerant {
		return results, nil
	}
	kept := make([]lr.Result, 0, total)
	for rep := range results {
		if failures[rep] == nil {
			kept = append(kept, results[rep])
		}
	}
	return kept, nil
}

// runOnce performs a single repetition with its own seeded random source.
func (h *Harness) runOnce(x float64, rep int, pool0, pool1 lr.Pool) (lr.Result, error) {
	rng := rand.New(rand.NewSource(h.cfg.Seed + int64(rep)))

	p0 := pool0.Resolve(x, rng)
	p1 := pool1.Resolve(x, rng)

	var s Splits
	var err error
	if s.Train0, p0, err = h.take(rng, p0, h.sizeFor0(sTrain), h.cfg.Fixed.Class0Train); err != nil {
		return lr.Result{}, err
	}
	if s.Calibrate0, p0, err = h.take(rng, p0, h.sizeFor0(sCalibrate), h.cfg.Fixed.Class0Calibrate); err != nil {
		return lr.Result{}, err
	}
	if s.Test0, p0, err = h.take(rng, p0, h.sizeFor0(sTest), h.cfg.Fixed.Class0Test); err != nil {
		return lr.Result{}, err
	}
	if s.Train1, p1, err = h.take(rng, p1, h.sizeFor1(sTrain), h.cfg.Fixed.Class1Train); err != nil {
		return lr.Result{}, err
	}
	if s.Calibrate1, p1, err = h.take(rng, p1, h.sizeFor1(sCalibrate), h.cfg.Fixed.Class1Calibrate); err != nil {
		return lr.Result{}, err
	}
	if s.Test1, p1, err = h.take(rng, p1, h.sizeFor1(sTest), h.cfg.Fixed.Class1Test); err != nil {
		return lr.Result{}, err
	}

	// Mode selection in priority order: k-fold, direct calibration, then
	// self-calibration.
	switch {
	case h.cfg.TrainFolds > 0 && len(s.Train0) > 0:
		h.log.Debug("[%s] rep %d: k-fold evaluation (%d folds)", h.eval.Name(), rep, h.cfg.TrainFolds)
		return h.eval.EvaluateKFold(x, h.cfg.TrainFolds, s)
	case len(s.Calibrate0) > 0:
		h.log.Debug("[%s] rep %d: calibrate-then-test evaluation", h.eval.Name(), rep)
		return h.eval.Evaluate(x, s)
	case h.cfg.TrainReuse && len(s.Train0) > 0:
		h.log.Debug("[%s] rep %d: reusing training split for calibration", h.eval.Name(), rep)
		s.Calibrate0, s.Calibrate1 = s.Train0, s.Train1
		return h.eval.Evaluate(x, s)
	default:
		return lr.Result{}, core.ErrNoEvaluationMode
	}
}

// take resolves one split: an unset size falls back to the fixed array
// (leaving the pool untouched), anything else draws from the pool.
func (h *Harness) take(rng *rand.Rand, pool [][]float64, size int, fixed [][]float64) (sample, rest [][]float64, err error) {
	if size == SizeUnset {
		return fixed, pool, nil
	}
	return drawSplit(rng, pool, size)
}

type splitKind int

const (
	sTrain splitKind = iota
	sCalibrate
	sTest
)

func (h *Harness) sizeFor0(k splitKind) int { return pick(h.cfg.Class0, h.cfg.Shared, k) }
func (h *Harness) sizeFor1(k splitKind) int { return pick(h.cfg.Class1, h.cfg.Shared, k) }

func pick(class, shared SplitSizes, k splitKind) int {
	var c, s int
	switch k {
	case sTrain:
		c, s = class.Train, shared.Train
	case sCalibrate:
		c, s = class.Calibrate, shared.Calibrate
	default:
		c, s = class.Test, shared.Test
	}
	if c != SizeUnset {
		return c
	}
	return s
}
