package scoring

import (
	"sort"
	"time"

	"github.com/noah-isme/dayscore-api/internal/models"
)

// StreakInfo summarises consecutive-day momentum for one goal category.
type StreakInfo struct {
	Category            string     `json:"category"`
	CurrentStreak       int        `json:"current_streak"`
	LongestStreak       int        `json:"longest_streak"`
	LastImprovementDate *time.Time `json:"last_improvement_date,omitempty"`
}

// CalculateStreak walks a user's score history for one category. A streak
// continues when the day's score improved or held within sameThreshold of the
// previous scored day; a day without a metric for the category breaks it.
func CalculateStreak(category string, scores []models.DailyScore, sameThreshold float64) StreakInfo {
	sorted := make([]models.DailyScore, len(scores))
	copy(sorted, scores)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ScoreDate.Before(sorted[j].ScoreDate)
	})

	longest := 0
	temp := 0
	var lastImprovement *time.Time
	var prevScore *float64

	for i := range sorted {
		metric := findMetric(sorted[i].Metrics, category)
		if metric == nil {
			temp = 0
			prevScore = nil
			continue
		}

		switch {
		case prevScore == nil:
			temp = 1
		case metric.Score >= *prevScore-sameThreshold:
			temp++
			d := sorted[i].ScoreDate
			lastImprovement = &d
		default:
			temp = 1
		}

		if temp > longest {
			longest = temp
		}
		score := metric.Score
		prevScore = &score
	}

	return StreakInfo{
		Category:            category,
		CurrentStreak:       temp,
		LongestStreak:       longest,
		LastImprovementDate: lastImprovement,
	}
}

func findMetric(metrics []models.ScoreMetric, category string) *models.ScoreMetric {
	for i := range metrics {
		if metrics[i].Category == category {
			return &metrics[i]
		}
	}
	return nil
}
