package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matkgb/mat-assistant/internal/core/domain"
)

// ResultsRepository keeps one row per evaluation run so score drift can be
// tracked across corpus and model changes.
type ResultsRepository struct {
	db *sql.DB
}

func NewResultsRepository(db *sql.DB) *ResultsRepository {
	return &ResultsRepository{db: db}
}

func (r *ResultsRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082402)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS evaluation_runs (
	id TEXT PRIMARY KEY,
	results JSONB NOT NULL,
	test_cases_count INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_evaluation_runs_created_at ON evaluation_runs(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ResultsRepository) SaveRun(ctx context.Context, runID string, results *domain.EvaluationResults) error {
	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal evaluation results: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO evaluation_runs (id, results, test_cases_count, created_at) VALUES ($1,$2,$3,$4)
`, runID, payload, results.TestCasesCount, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert evaluation run: %w", err)
	}
	return nil
}
