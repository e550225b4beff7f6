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

// ScoreRepository manages daily score and metric persistence.
type ScoreRepository struct {
	db *sqlx.DB
}

// NewScoreRepository creates a new score repository.
func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// FindByDate returns the daily score for a user and date, metrics included.
func (r *ScoreRepository) FindByDate(ctx context.Context, userID string, date time.Time) (*models.DailyScore, error) {
	const query = `SELECT id, user_id, score_date, verdict, composite_score, comparison_data, created_at FROM daily_scores WHERE user_id = $1 AND score_date = $2 LIMIT 1`
	var score models.DailyScore
	if err := r.db.GetContext(ctx, &score, query, userID, date); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find daily score: %w", err)
	}
	metrics, err := r.metricsForScore(ctx, score.ID)
	if err != nil {
		return nil, err
	}
	score.Metrics = metrics
	return &score, nil
}

// ListSince returns daily scores from a date onward, ascending, each with its
// metrics attached. Used for streak calculation and trend queries.
func (r *ScoreRepository) ListSince(ctx context.Context, userID string, from time.Time) ([]models.DailyScore, error) {
	const query = `SELECT id, user_id, score_date, verdict, composite_score, comparison_data, created_at FROM daily_scores WHERE user_id = $1 AND score_date >= $2 ORDER BY score_date`
	var scores []models.DailyScore
	if err := r.db.SelectContext(ctx, &scores, query, userID, from); err != nil {
		return nil, fmt.Errorf("list daily scores: %w", err)
	}
	if len(scores) == 0 {
		return scores, nil
	}

	ids := make([]string, len(scores))
	index := make(map[string]int, len(scores))
	for i := range scores {
		ids[i] = scores[i].ID
		index[scores[i].ID] = i
	}

	metricQuery, args, err := sqlx.In(`SELECT id, daily_score_id, category, score, weight, reasoning FROM score_metrics WHERE daily_score_id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build metric query: %w", err)
	}
	metricQuery = r.db.Rebind(metricQuery)

	var metrics []models.ScoreMetric
	if err := r.db.SelectContext(ctx, &metrics, metricQuery, args...); err != nil {
		return nil, fmt.Errorf("list score metrics: %w", err)
	}
	for _, m := range metrics {
		i := index[m.DailyScoreID]
		scores[i].Metrics = append(scores[i].Metrics, m)
	}
	return scores, nil
}

// CategoryTrend returns per-day scores for one category within a date range,
// ascending by date.
func (r *ScoreRepository) CategoryTrend(ctx context.Context, userID, category string, from, to time.Time) ([]models.TrendPoint, error) {
	const query = `SELECT ds.score_date, sm.score
        FROM score_metrics sm
        JOIN daily_scores ds ON ds.id = sm.daily_score_id
        WHERE ds.user_id = $1 AND sm.category = $2 AND ds.score_date BETWEEN $3 AND $4
        ORDER BY ds.score_date`
	var points []models.TrendPoint
	if err := r.db.SelectContext(ctx, &points, query, userID, category, from, to); err != nil {
		return nil, fmt.Errorf("category trend: %w", err)
	}
	return points, nil
}

// AllCategoryTrends returns per-day scores for every category within a date
// range, ascending by category then date.
func (r *ScoreRepository) AllCategoryTrends(ctx context.Context, userID string, from, to time.Time) ([]models.CategoryTrendPoint, error) {
	const query = `SELECT sm.category, ds.score_date, sm.score
        FROM score_metrics sm
        JOIN daily_scores ds ON ds.id = sm.daily_score_id
        WHERE ds.user_id = $1 AND ds.score_date BETWEEN $2 AND $3
        ORDER BY sm.category, ds.score_date`
	var points []models.CategoryTrendPoint
	if err := r.db.SelectContext(ctx, &points, query, userID, from, to); err != nil {
		return nil, fmt.Errorf("all category trends: %w", err)
	}
	return points, nil
}

// ReplaceForDate atomically upserts the daily score row and recreates its
// metrics. Rescoring the same date replaces the previous metric set entirely.
func (r *ScoreRepository) ReplaceForDate(ctx context.Context, score *models.DailyScore, metrics []models.ScoreMetric) error {
	if score.ID == "" {
		score.ID = uuid.NewString()
	}
	if score.CreatedAt.IsZero() {
		score.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	const upsertQuery = `INSERT INTO daily_scores (id, user_id, score_date, verdict, composite_score, comparison_data, created_at)
        VALUES (:id, :user_id, :score_date, :verdict, :composite_score, :comparison_data, :created_at)
        ON CONFLICT (user_id, score_date)
        DO UPDATE SET verdict = EXCLUDED.verdict, composite_score = EXCLUDED.composite_score, comparison_data = EXCLUDED.comparison_data`
	if _, err := tx.NamedExecContext(ctx, upsertQuery, score); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("upsert daily score: %w", err)
	}

	// The upsert keeps the original row id on conflict, so resolve it before
	// attaching metrics.
	var scoreID string
	if err := tx.GetContext(ctx, &scoreID, `SELECT id FROM daily_scores WHERE user_id = $1 AND score_date = $2`, score.UserID, score.ScoreDate); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("resolve daily score id: %w", err)
	}
	score.ID = scoreID

	if _, err := tx.ExecContext(ctx, `DELETE FROM score_metrics WHERE daily_score_id = $1`, scoreID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("clear score metrics: %w", err)
	}

	const metricQuery = `INSERT INTO score_metrics (id, daily_score_id, category, score, weight, reasoning)
        VALUES (:id, :daily_score_id, :category, :score, :weight, :reasoning)`
	for i := range metrics {
		if metrics[i].ID == "" {
			metrics[i].ID = uuid.NewString()
		}
		metrics[i].DailyScoreID = scoreID
		if _, err := tx.NamedExecContext(ctx, metricQuery, metrics[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert score metric: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit daily score: %w", err)
	}
	score.Metrics = metrics
	return nil
}

func (r *ScoreRepository) metricsForScore(ctx context.Context, scoreID string) ([]models.ScoreMetric, error) {
	const query = `SELECT id, daily_score_id, category, score, weight, reasoning FROM score_metrics WHERE daily_score_id = $1 ORDER BY category`
	var metrics []models.ScoreMetric
	if err := r.db.SelectContext(ctx, &metrics, query, scoreID); err != nil {
		return nil, fmt.Errorf("metrics for score: %w", err)
	}
	return metrics, nil
}
