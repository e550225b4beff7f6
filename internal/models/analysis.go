package models

import "time"

// AnalysisRunStatus tracks nightly analysis lifecycle per user and date.
type AnalysisRunStatus string

const (
	AnalysisStatusPending   AnalysisRunStatus = "pending"
	AnalysisStatusRunning   AnalysisRunStatus = "running"
	AnalysisStatusCompleted AnalysisRunStatus = "completed"
	AnalysisStatusFailed    AnalysisRunStatus = "failed"
)

// AnalysisRun records one scoring run for a user and date. Unique on
// (user_id, analysis_date); it is the serialisation point that keeps two
// concurrent runs from racing on the same day's score.
type AnalysisRun struct {
	ID           string            `db:"id" json:"id"`
	UserID       string            `db:"user_id" json:"user_id"`
	AnalysisDate time.Time         `db:"analysis_date" json:"analysis_date"`
	Status       AnalysisRunStatus `db:"status" json:"status"`
	Error        *string           `db:"error" json:"error,omitempty"`
	StartedAt    *time.Time        `db:"started_at" json:"started_at,omitempty"`
	CompletedAt  *time.Time        `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
}
