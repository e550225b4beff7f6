package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dayscore-api/internal/models"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func dailyScore(date string, metrics map[string]float64) models.DailyScore {
	ds := models.DailyScore{ScoreDate: day(date)}
	for cat, score := range metrics {
		ds.Metrics = append(ds.Metrics, models.ScoreMetric{Category: cat, Score: score})
	}
	return ds
}

func TestCalculateStreakConsecutiveDays(t *testing.T) {
	scores := []models.DailyScore{
		dailyScore("2026-08-25", map[string]float64{"fitness": 70}),
		dailyScore("2026-08-26", map[string]float64{"fitness": 72}),
		dailyScore("2026-08-27", map[string]float64{"fitness": 71}),
	}

	info := CalculateStreak("fitness", scores, 5.0)

	assert.Equal(t, 3, info.CurrentStreak)
	assert.Equal(t, 3, info.LongestStreak)
	require.NotNil(t, info.LastImprovementDate)
	assert.Equal(t, day("2026-08-27"), *info.LastImprovementDate)
}

func TestCalculateStreakWithinThresholdMaintains(t *testing.T) {
	scores := []models.DailyScore{
		dailyScore("2026-08-26", map[string]float64{"fitness": 70}),
		dailyScore("2026-08-27", map[string]float64{"fitness": 66}),
	}

	info := CalculateStreak("fitness", scores, 5.0)

	assert.Equal(t, 2, info.CurrentStreak)
}

func TestCalculateStreakDeclineResetsToOne(t *testing.T) {
	scores := []models.DailyScore{
		dailyScore("2026-08-24", map[string]float64{"fitness": 70}),
		dailyScore("2026-08-25", map[string]float64{"fitness": 72}),
		dailyScore("2026-08-26", map[string]float64{"fitness": 40}),
		dailyScore("2026-08-27", map[string]float64{"fitness": 42}),
	}

	info := CalculateStreak("fitness", scores, 5.0)

	assert.Equal(t, 2, info.CurrentStreak)
	assert.Equal(t, 2, info.LongestStreak)
}

func TestCalculateStreakMissingDayBreaks(t *testing.T) {
	scores := []models.DailyScore{
		dailyScore("2026-08-24", map[string]float64{"fitness": 70}),
		dailyScore("2026-08-25", map[string]float64{"fitness": 75}),
		dailyScore("2026-08-26", map[string]float64{"learning": 60}),
		dailyScore("2026-08-27", map[string]float64{"fitness": 80}),
	}

	info := CalculateStreak("fitness", scores, 5.0)

	assert.Equal(t, 1, info.CurrentStreak)
	assert.Equal(t, 2, info.LongestStreak)
}

func TestCalculateStreakUnsortedInput(t *testing.T) {
	scores := []models.DailyScore{
		dailyScore("2026-08-27", map[string]float64{"fitness": 71}),
		dailyScore("2026-08-25", map[string]float64{"fitness": 70}),
		dailyScore("2026-08-26", map[string]float64{"fitness": 72}),
	}

	info := CalculateStreak("fitness", scores, 5.0)

	assert.Equal(t, 3, info.CurrentStreak)
	assert.Equal(t, 3, info.LongestStreak)
}

func TestCalculateStreakNoHistory(t *testing.T) {
	info := CalculateStreak("fitness", nil, 5.0)

	assert.Equal(t, 0, info.CurrentStreak)
	assert.Equal(t, 0, info.LongestStreak)
	assert.Nil(t, info.LastImprovementDate)
}
