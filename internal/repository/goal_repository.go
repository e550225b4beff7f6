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

// GoalRepository handles user goal persistence.
type GoalRepository struct {
	db *sqlx.DB
}

// NewGoalRepository creates a new goal repository.
func NewGoalRepository(db *sqlx.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

// List returns goals matching the filter, newest first.
func (r *GoalRepository) List(ctx context.Context, filter models.GoalFilter) ([]models.UserGoal, error) {
	query := `SELECT id, user_id, category, description, target_value, weight, is_active, created_at, updated_at FROM user_goals WHERE user_id = $1`
	args := []interface{}{filter.UserID}
	if filter.ActiveOnly {
		query += " AND is_active = TRUE"
	}
	query += " ORDER BY created_at DESC"

	var goals []models.UserGoal
	if err := r.db.SelectContext(ctx, &goals, query, args...); err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

// FindByID returns a goal by identifier.
func (r *GoalRepository) FindByID(ctx context.Context, id string) (*models.UserGoal, error) {
	const query = `SELECT id, user_id, category, description, target_value, weight, is_active, created_at, updated_at FROM user_goals WHERE id = $1 LIMIT 1`
	var goal models.UserGoal
	if err := r.db.GetContext(ctx, &goal, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find goal by id: %w", err)
	}
	return &goal, nil
}

// Create inserts a new goal.
func (r *GoalRepository) Create(ctx context.Context, goal *models.UserGoal) error {
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = now
	}
	goal.UpdatedAt = now

	const query = `INSERT INTO user_goals (id, user_id, category, description, target_value, weight, is_active, created_at, updated_at) VALUES (:id, :user_id, :category, :description, :target_value, :weight, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, goal); err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	return nil
}

// Update updates mutable fields of a goal.
func (r *GoalRepository) Update(ctx context.Context, goal *models.UserGoal) error {
	goal.UpdatedAt = time.Now().UTC()
	const query = `UPDATE user_goals SET category = :category, description = :description, target_value = :target_value, weight = :weight, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, goal); err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return nil
}

// Deactivate performs a soft delete by marking the goal inactive.
func (r *GoalRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE user_goals SET is_active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate goal: %w", err)
	}
	return nil
}
