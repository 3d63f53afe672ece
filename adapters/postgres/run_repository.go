// Package postgres persists harness run summaries.
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"golir/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS experiment_runs (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	x             DOUBLE PRECISION NOT NULL,
	repeat        INTEGER NOT NULL,
	cllr_mean     DOUBLE PRECISION NOT NULL,
	cllr_std      DOUBLE PRECISION NOT NULL,
	cllr_min_mean DOUBLE PRECISION NOT NULL,
	cllr_cal_mean DOUBLE PRECISION NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS experiment_runs_name_idx ON experiment_runs (name, created_at DESC);
`

// Connect opens a postgres connection and ensures the run table exists.
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create experiment_runs schema: %w", err)
	}
	return db, nil
}

// RunRepositoryImpl implements RunRepository for PostgreSQL
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &RunRepositoryImpl{db: db}
}

// SaveRun inserts one sweep-point summary
func (r *RunRepositoryImpl) SaveRun(ctx context.Context, rec ports.RunRecord) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO experiment_runs (id, name, x, repeat, cllr_mean, cllr_std, cllr_min_mean, cllr_cal_mean, created_at)
		VALUES (:id, :name, :x, :repeat, :cllr_mean, :cllr_std, :cllr_min_mean, :cllr_cal_mean, :created_at)
	`, rec)
	return err
}

// ListRuns returns summaries for an evaluator name, newest first, optionally limited
func (r *RunRepositoryImpl) ListRuns(ctx context.Context, name string, limit int) ([]ports.RunRecord, error) {
	query := `
		SELECT id, name, x, repeat, cllr_mean, cllr_std, cllr_min_mean, cllr_cal_mean, created_at
		FROM experiment_runs
		WHERE name = $1
		ORDER BY created_at DESC
	`

	args := []interface{}{name}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	var recs []ports.RunRecord
	if err := r.db.SelectContext(ctx, &recs, query, args...); err != nil {
		return nil, err
	}
	return recs, nil
}
