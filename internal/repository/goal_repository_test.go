package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dayscore-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestListGoalsActiveOnly(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGoalRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "category", "description", "target_value", "weight", "is_active", "created_at", "updated_at"}).
		AddRow("g1", "u1", "fitness", "Exercise daily", 5.0, 2.0, true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, category, description, target_value, weight, is_active, created_at, updated_at FROM user_goals WHERE user_id = $1 AND is_active = TRUE ORDER BY created_at DESC")).
		WithArgs("u1").
		WillReturnRows(rows)

	goals, err := repo.List(context.Background(), models.GoalFilter{UserID: "u1", ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "fitness", goals[0].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateGoalAssignsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGoalRepository(db)

	mock.ExpectExec("INSERT INTO user_goals").WillReturnResult(sqlmock.NewResult(1, 1))

	goal := &models.UserGoal{UserID: "u1", Category: "learning", Description: "Read daily", Weight: 1.0, IsActive: true}
	err := repo.Create(context.Background(), goal)
	require.NoError(t, err)
	assert.NotEmpty(t, goal.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateGoal(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGoalRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE user_goals SET is_active = FALSE, updated_at = $2 WHERE id = $1")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Deactivate(context.Background(), "g1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
