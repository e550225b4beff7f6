package models

import "time"

// Verdict categorises today's composite score against yesterday's.
type Verdict string

const (
	VerdictBetter   Verdict = "better"
	VerdictSame     Verdict = "same"
	VerdictWorse    Verdict = "worse"
	VerdictFirstDay Verdict = "first_day"
)

// DailyScore is the persisted scoring outcome for one user and calendar date.
// Unique on (user_id, score_date); re-scoring replaces the row and all metrics.
type DailyScore struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	ScoreDate      time.Time `db:"score_date" json:"score_date"`
	Verdict        Verdict   `db:"verdict" json:"verdict"`
	CompositeScore float64   `db:"composite_score" json:"composite_score"`
	ComparisonData []byte    `db:"comparison_data" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`

	Metrics []ScoreMetric `json:"metrics,omitempty"`
}

// ScoreMetric is one goal category's score within a DailyScore.
// Score is on the 0-100 scale, matching base and composite scores.
type ScoreMetric struct {
	ID           string  `db:"id" json:"id"`
	DailyScoreID string  `db:"daily_score_id" json:"daily_score_id"`
	Category     string  `db:"category" json:"category"`
	Score        float64 `db:"score" json:"score"`
	Weight       float64 `db:"weight" json:"weight"`
	Reasoning    string  `db:"reasoning" json:"reasoning"`
}

// ComparisonData is the JSON payload stored alongside a DailyScore.
type ComparisonData struct {
	Yesterday *float64 `json:"yesterday"`
	Delta     *float64 `json:"delta"`
}

// TrendPoint is one day's score for a goal category.
type TrendPoint struct {
	Date  time.Time `db:"score_date" json:"date"`
	Score float64   `db:"score" json:"score"`
}

// CategoryTrendPoint carries the category alongside a trend point for
// all-goals trend queries.
type CategoryTrendPoint struct {
	Category string    `db:"category" json:"category"`
	Date     time.Time `db:"score_date" json:"date"`
	Score    float64   `db:"score" json:"score"`
}

// WeeklyTrend classifies week-over-week movement for one goal category.
type WeeklyTrend string

const (
	TrendImproving        WeeklyTrend = "improving"
	TrendDeclining        WeeklyTrend = "declining"
	TrendStable           WeeklyTrend = "stable"
	TrendInsufficientData WeeklyTrend = "insufficient_data"
)

// WeekOverWeek is the week comparison result for one goal category.
type WeekOverWeek struct {
	Category         string      `json:"category"`
	ThisWeekAvg      *float64    `json:"this_week_avg"`
	LastWeekAvg      *float64    `json:"last_week_avg"`
	PercentageChange *float64    `json:"percentage_change"`
	Trend            WeeklyTrend `json:"trend"`
}
