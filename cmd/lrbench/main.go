// Command lrbench runs a resampling LR evaluation sweep and writes a
// markdown/HTML report. Pools come from a labeled data file when DATA_FILE is
// set, otherwise from synthetic Gaussians whose separation follows the sweep
// parameter.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"golir/adapters/excel"
	"golir/adapters/postgres"
	"golir/domain/core"
	"golir/domain/lr"
	"golir/internal"
	"golir/internal/calibration"
	"golir/internal/config"
	"golir/internal/evaluator"
	"golir/internal/preprocess"
	"golir/internal/report"
	"golir/internal/testkit"
	"golir/ports"
)

func main() {
	logger := internal.DefaultLogger

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config: %v", err)
		os.Exit(1)
	}

	var (
		xsFlag   = flag.String("x", "0.5,1,2,3", "comma-separated sweep values")
		trainN   = flag.Int("train", 100, "training samples per class (-1 uses the whole pool)")
		calibN   = flag.Int("calibrate", 100, "calibration samples per class (-1 uses the whole pool)")
		testN    = flag.Int("test", 100, "test samples per class (-1 uses the whole pool)")
		poolN    = flag.Int("pool", 400, "synthetic pool size per class (ignored with DATA_FILE)")
		labelCol = flag.String("label", "label", "label column in DATA_FILE")
		title    = flag.String("title", "LR separation sweep", "report title")
	)
	flag.Parse()

	xs, err := parseSweep(*xsFlag)
	if err != nil {
		logger.Error("sweep values: %v", err)
		os.Exit(1)
	}

	pool0, pool1, err := loadPools(cfg, *poolN, *labelCol)
	if err != nil {
		logger.Error("pools: %v", err)
		os.Exit(1)
	}

	hcfg := evaluator.NewConfig()
	hcfg.Shared = evaluator.SplitSizes{Train: *trainN, Calibrate: *calibN, Test: *testN}
	hcfg.Repeat = cfg.Experiment.Repeat
	hcfg.Workers = cfg.Experiment.Workers
	hcfg.Seed = cfg.Experiment.Seed
	hcfg.TrainFolds = cfg.Experiment.TrainFolds
	hcfg.Progress = func(done, total int) {
		logger.Debug("repetition %d/%d", done, total)
	}

	eval := evaluator.NewScoreBasedEvaluator(
		"mean-kde",
		func() ports.Scorer { return testkit.NewMeanScorer() },
		func() ports.Calibrator { return calibration.NewKDECalibrator() },
		preprocess.NewStandardizer(),
	)
	h := evaluator.NewHarness(eval, hcfg)

	ctx := context.Background()
	start := time.Now()
	rows, err := evaluator.Sweep(ctx, h, xs, pool0, pool1)
	if err != nil {
		logger.Error("sweep: %v", err)
		os.Exit(1)
	}
	logger.Info("sweep of %d point(s) x %d repetition(s) finished in %s",
		len(xs), cfg.Experiment.Repeat, time.Since(start).Round(time.Millisecond))

	runID := core.NewRunID()
	rep := report.New(runID, *title, rows)
	if err := writeReports(rep, cfg.Paths.ReportFile); err != nil {
		logger.Error("report: %v", err)
		os.Exit(1)
	}
	logger.Info("report written to %s", cfg.Paths.ReportFile)

	if cfg.Database.URL != "" {
		if err := persistRuns(ctx, cfg, runID, rows); err != nil {
			logger.Error("persist: %v", err)
			os.Exit(1)
		}
		logger.Info("run %s persisted", runID)
	}
}

// loadPools reads static pools from DATA_FILE or falls back to synthetic
// Gaussian generators: class 0 fixed at mean 0, class 1 at mean x.
func loadPools(cfg *config.Config, poolN int, labelCol string) (lr.Pool, lr.Pool, error) {
	if cfg.Paths.DataFile != "" {
		p0, p1, err := excel.NewPoolReader(cfg.Paths.DataFile).ReadPools(labelCol)
		if err != nil {
			return lr.Pool{}, lr.Pool{}, err
		}
		return lr.StaticPool(p0), lr.StaticPool(p1), nil
	}

	gen0 := func(x float64, rng *rand.Rand) [][]float64 {
		return testkit.GaussianPool(rng, poolN, 1, 0, 1)
	}
	return lr.GeneratedPool(gen0), lr.GeneratedPool(testkit.GaussianGenerator(poolN, 1, 0, 1)), nil
}

func parseSweep(s string) ([]float64, error) {
	var xs []float64
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid sweep value %q", part)
		}
		xs = append(xs, v)
	}
	if len(xs) == 0 {
		return nil, fmt.Errorf("at least one sweep value is required")
	}
	return xs, nil
}

// writeReports writes the markdown report plus an HTML rendering next to it.
func writeReports(rep *report.Report, mdPath string) error {
	if err := os.WriteFile(mdPath, []byte(rep.Markdown()), 0o644); err != nil {
		return err
	}
	htmlPath := strings.TrimSuffix(mdPath, ".md") + ".html"
	return os.WriteFile(htmlPath, rep.HTML(), 0o644)
}

func persistRuns(ctx context.Context, cfg *config.Config, runID core.RunID, rows []evaluator.Aggregate) error {
	db, err := postgres.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := postgres.NewRunRepository(db)
	for _, row := range rows {
		rec := ports.RunRecord{
			ID:          core.RunID(fmt.Sprintf("%s-%g", runID, row.X)),
			Name:        row.Name,
			X:           row.X,
			Repeat:      row.N,
			CllrMean:    row.CllrMean,
			CllrStd:     row.CllrStd,
			CllrMinMean: row.CllrMinMean,
			CllrCalMean: row.CllrCalMean,
			CreatedAt:   time.Now().UTC(),
		}
		if err := repo.SaveRun(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
