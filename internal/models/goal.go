package models

import "time"

// UserGoal represents a personal goal tracked against journal entries.
type UserGoal struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Category    string    `db:"category" json:"category"`
	Description string    `db:"description" json:"description"`
	TargetValue float64   `db:"target_value" json:"target_value"`
	Weight      float64   `db:"weight" json:"weight"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// GoalFilter scopes goal listing queries.
type GoalFilter struct {
	UserID     string
	ActiveOnly bool
}
