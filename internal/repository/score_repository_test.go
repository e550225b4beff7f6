package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dayscore-api/internal/models"
)

func TestFindScoreByDateLoadsMetrics(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	scoreDate := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	scoreRows := sqlmock.NewRows([]string{"id", "user_id", "score_date", "verdict", "composite_score", "comparison_data", "created_at"}).
		AddRow("s1", "u1", scoreDate, "better", 72.5, []byte(`{"yesterday":65.0,"delta":7.5}`), now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, score_date, verdict, composite_score, comparison_data, created_at FROM daily_scores WHERE user_id = $1 AND score_date = $2 LIMIT 1")).
		WithArgs("u1", scoreDate).
		WillReturnRows(scoreRows)

	metricRows := sqlmock.NewRows([]string{"id", "daily_score_id", "category", "score", "weight", "reasoning"}).
		AddRow("m1", "s1", "fitness", 78.0, 2.0, "Engaged with fitness").
		AddRow("m2", "s1", "learning", 55.0, 1.0, "Engaged with learning")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, daily_score_id, category, score, weight, reasoning FROM score_metrics WHERE daily_score_id = $1 ORDER BY category")).
		WithArgs("s1").
		WillReturnRows(metricRows)

	score, err := repo.FindByDate(context.Background(), "u1", scoreDate)
	require.NoError(t, err)
	assert.Equal(t, models.VerdictBetter, score.Verdict)
	require.Len(t, score.Metrics, 2)
	assert.Equal(t, "fitness", score.Metrics[0].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceForDateCommitsAtomically(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	scoreDate := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	score := &models.DailyScore{
		UserID:         "u1",
		ScoreDate:      scoreDate,
		Verdict:        models.VerdictSame,
		CompositeScore: 64.2,
		ComparisonData: []byte(`{"yesterday":63.0,"delta":1.2}`),
	}
	metrics := []models.ScoreMetric{
		{Category: "fitness", Score: 70, Weight: 2, Reasoning: "Engaged with fitness"},
		{Category: "learning", Score: 52, Weight: 1, Reasoning: "Engaged with learning"},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO daily_scores").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM daily_scores WHERE user_id = $1 AND score_date = $2")).
		WithArgs("u1", scoreDate).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("existing-id"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM score_metrics WHERE daily_score_id = $1")).
		WithArgs("existing-id").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO score_metrics").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO score_metrics").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.ReplaceForDate(context.Background(), score, metrics)
	require.NoError(t, err)
	assert.Equal(t, "existing-id", score.ID)
	assert.Equal(t, "existing-id", score.Metrics[0].DailyScoreID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceForDateRollsBackOnMetricFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	scoreDate := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	score := &models.DailyScore{UserID: "u1", ScoreDate: scoreDate, Verdict: models.VerdictWorse}
	metrics := []models.ScoreMetric{{Category: "fitness", Score: 40, Weight: 1, Reasoning: "r"}}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO daily_scores").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM daily_scores WHERE user_id = $1 AND score_date = $2")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("s1"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM score_metrics WHERE daily_score_id = $1")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO score_metrics").WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := repo.ReplaceForDate(context.Background(), score, metrics)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSinceAttachesMetrics(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	scoreRows := sqlmock.NewRows([]string{"id", "user_id", "score_date", "verdict", "composite_score", "comparison_data", "created_at"}).
		AddRow("s1", "u1", from, "first_day", 50.0, []byte(`{}`), now).
		AddRow("s2", "u1", from.AddDate(0, 0, 1), "better", 60.0, []byte(`{}`), now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, score_date, verdict, composite_score, comparison_data, created_at FROM daily_scores WHERE user_id = $1 AND score_date >= $2 ORDER BY score_date")).
		WithArgs("u1", from).
		WillReturnRows(scoreRows)

	metricRows := sqlmock.NewRows([]string{"id", "daily_score_id", "category", "score", "weight", "reasoning"}).
		AddRow("m1", "s1", "fitness", 50.0, 1.0, "r").
		AddRow("m2", "s2", "fitness", 60.0, 1.0, "r")
	mock.ExpectQuery("SELECT id, daily_score_id, category, score, weight, reasoning FROM score_metrics WHERE daily_score_id IN").
		WillReturnRows(metricRows)

	scores, err := repo.ListSince(context.Background(), "u1", from)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	require.Len(t, scores[0].Metrics, 1)
	assert.Equal(t, 50.0, scores[0].Metrics[0].Score)
	require.Len(t, scores[1].Metrics, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryTrend(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScoreRepository(db)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"score_date", "score"}).
		AddRow(from, 55.0).
		AddRow(from.AddDate(0, 0, 1), 60.0)
	mock.ExpectQuery("SELECT ds.score_date, sm.score").
		WithArgs("u1", "fitness", from, to).
		WillReturnRows(rows)

	points, err := repo.CategoryTrend(context.Background(), "u1", "fitness", from, to)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 60.0, points[1].Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}
