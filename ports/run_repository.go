package ports

import (
	"context"
	"time"

	"golir/domain/core"
)

// RunRecord is the persisted summary of one harness run at one sweep point.
// Persistence is a caller concern; the evaluation core never touches this.
type RunRecord struct {
	ID          core.RunID `db:"id"`
	Name        string     `db:"name"`
	X           float64    `db:"x"`
	Repeat      int        `db:"repeat"`
	CllrMean    float64    `db:"cllr_mean"`
	CllrStd     float64    `db:"cllr_std"`
	CllrMinMean float64    `db:"cllr_min_mean"`
	CllrCalMean float64    `db:"cllr_cal_mean"`
	CreatedAt   time.Time  `db:"created_at"`
}

// RunRepository stores harness run summaries for later reporting.
type RunRepository interface {
	SaveRun(ctx context.Context, rec RunRecord) error
	ListRuns(ctx context.Context, name string, limit int) ([]RunRecord, error)
}
