package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dayscore-api/internal/models"
)

// AnalysisRunRepository tracks per-user per-date analysis runs.
type AnalysisRunRepository struct {
	db *sqlx.DB
}

// NewAnalysisRunRepository creates a new analysis run repository.
func NewAnalysisRunRepository(db *sqlx.DB) *AnalysisRunRepository {
	return &AnalysisRunRepository{db: db}
}

// FindByUserAndDate returns the run for a user and analysis date.
func (r *AnalysisRunRepository) FindByUserAndDate(ctx context.Context, userID string, date time.Time) (*models.AnalysisRun, error) {
	const query = `SELECT id, user_id, analysis_date, status, error, started_at, completed_at, created_at FROM analysis_runs WHERE user_id = $1 AND analysis_date = $2 LIMIT 1`
	var run models.AnalysisRun
	if err := r.db.GetContext(ctx, &run, query, userID, date); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find analysis run: %w", err)
	}
	return &run, nil
}

// Claim creates a pending run for the user and date. The unique constraint on
// (user_id, analysis_date) makes this the serialisation point: when a run
// already exists in a non-failed state, the insert reports no rows and the
// caller skips the user. A failed run is reset to pending and reclaimed.
func (r *AnalysisRunRepository) Claim(ctx context.Context, userID string, date time.Time) (*models.AnalysisRun, bool, error) {
	run := models.AnalysisRun{
		ID:           uuid.NewString(),
		UserID:       userID,
		AnalysisDate: date,
		Status:       models.AnalysisStatusPending,
		CreatedAt:    time.Now().UTC(),
	}
	const query = `INSERT INTO analysis_runs (id, user_id, analysis_date, status, created_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (user_id, analysis_date)
        DO UPDATE SET status = $4, error = NULL, started_at = NULL, completed_at = NULL
        WHERE analysis_runs.status = 'failed'
        RETURNING id`
	var id string
	if err := r.db.GetContext(ctx, &id, query, run.ID, userID, date, models.AnalysisStatusPending, run.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("claim analysis run: %w", err)
	}
	run.ID = id
	return &run, true, nil
}

// MarkRunning records the start of processing.
func (r *AnalysisRunRepository) MarkRunning(ctx context.Context, id string) error {
	const query = `UPDATE analysis_runs SET status = $2, started_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.AnalysisStatusRunning, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark analysis run running: %w", err)
	}
	return nil
}

// MarkCompleted records a successful run.
func (r *AnalysisRunRepository) MarkCompleted(ctx context.Context, id string) error {
	const query = `UPDATE analysis_runs SET status = $2, completed_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.AnalysisStatusCompleted, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark analysis run completed: %w", err)
	}
	return nil
}

// MarkFailed records a failed run with its error message.
func (r *AnalysisRunRepository) MarkFailed(ctx context.Context, id string, runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	const query = `UPDATE analysis_runs SET status = $2, error = $3, completed_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.AnalysisStatusFailed, msg, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark analysis run failed: %w", err)
	}
	return nil
}
