package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dayscore-api/internal/models"
)

func TestScoreGoalStrongEngagement(t *testing.T) {
	s := NewScorer()

	out := s.ScoreGoal(GoalScoreInput{
		GoalCategory:    "fitness",
		GoalDescription: "Exercise regularly",
		TargetValue:     5,
		JournalContent:  "Did a hard workout at the gym for 45 minutes. Felt great.",
	})

	assert.True(t, out.ShowedUp)
	assert.Equal(t, EffortSubstantial, out.EffortLevel)
	// 30 show-up + 10 keywords + 25 effort + 10 quantifier + 3 evidence
	assert.Equal(t, 78.0, out.BaseScore)
	require.Len(t, out.Evidence, 1)
	assert.Equal(t, "Did a hard workout at the gym for 45 minutes", out.Evidence[0])
	assert.Equal(t, "Engaged with fitness (keywords: workout, gym) with substantial effort -> base score 78/100", out.Reasoning)
}

func TestScoreGoalNoEngagement(t *testing.T) {
	s := NewScorer()

	out := s.ScoreGoal(GoalScoreInput{
		GoalCategory:    "fitness",
		GoalDescription: "Go to the gym",
		JournalContent:  "Watched TV all day.",
	})

	assert.False(t, out.ShowedUp)
	assert.Equal(t, 0.0, out.BaseScore)
	assert.Equal(t, EffortNone, out.EffortLevel)
	assert.Empty(t, out.Evidence)
	assert.Equal(t, "No evidence of engagement with fitness found in today's entry.", out.Reasoning)
}

func TestScoreGoalShowUpFloor(t *testing.T) {
	s := NewScorer()

	out := s.ScoreGoal(GoalScoreInput{
		GoalCategory:    "fitness",
		GoalDescription: "Exercise",
		JournalContent:  "gym",
	})

	assert.True(t, out.ShowedUp)
	assert.GreaterOrEqual(t, out.BaseScore, 30.0)
}

func TestScoreGoalDescriptionFallback(t *testing.T) {
	s := NewScorer()

	// No category keywords match, but a description word over three
	// characters appears in the entry.
	out := s.ScoreGoal(GoalScoreInput{
		GoalCategory:    "creativity",
		GoalDescription: "Compose piano pieces",
		JournalContent:  "Spent the evening at the piano again.",
	})

	assert.True(t, out.ShowedUp)
	assert.GreaterOrEqual(t, out.BaseScore, 30.0)
}

func TestScoreGoalUnknownCategoryUsesCategoryName(t *testing.T) {
	s := NewScorer()

	out := s.ScoreGoal(GoalScoreInput{
		GoalCategory:    "gardening",
		GoalDescription: "Tend the garden",
		JournalContent:  "Some gardening before lunch.",
	})

	assert.True(t, out.ShowedUp)
}

func TestScoreGoalEvidenceCappedAtThree(t *testing.T) {
	s := NewScorer()

	out := s.ScoreGoal(GoalScoreInput{
		GoalCategory:    "fitness",
		GoalDescription: "Exercise",
		JournalContent:  "Morning gym. Midday gym. Evening gym. Night gym. Bonus gym.",
	})

	assert.Len(t, out.Evidence, 3)
}

func TestScoreGoalScoreNeverExceedsHundred(t *testing.T) {
	s := NewScorer()

	out := s.ScoreGoal(GoalScoreInput{
		GoalCategory:    "fitness",
		GoalDescription: "Exercise hard",
		JournalContent: "Crushed an intense workout at the gym. Pushed hard beyond my best. " +
			"Ran 5 miles and did cardio and weights and yoga and squats and pushups. " +
			"Exceeded every maximum. Went above and beyond. Completed the hardest stretch session.",
	})

	assert.True(t, out.ShowedUp)
	assert.Equal(t, EffortExceptional, out.EffortLevel)
	assert.LessOrEqual(t, out.BaseScore, 100.0)
}

func TestScoreGoalDeterministic(t *testing.T) {
	s := NewScorer()
	input := GoalScoreInput{
		GoalCategory:    "learning",
		GoalDescription: "Read every day",
		JournalContent:  "Read 20 pages of a difficult book and studied the chapter notes.",
	}

	first := s.ScoreGoal(input)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, s.ScoreGoal(input))
	}
}

func TestScoreEntryEngagement(t *testing.T) {
	s := NewScorer()
	goals := []models.UserGoal{
		{Category: "fitness", Description: "Exercise regularly", IsActive: true},
		{Category: "learning", Description: "Finish novels", IsActive: true},
	}

	result := s.ScoreEntry("Did a hard workout at the gym for 45 minutes. Felt great.", goals)

	require.Len(t, result.GoalScores, 2)
	assert.Equal(t, 1, result.GoalsAddressed)
	assert.Equal(t, 2, result.GoalsTotal)
	// (78 * 1.0 + 0 * 0.5) / 2
	assert.Equal(t, 39.0, result.OverallEngagement)
}

func TestScoreEntrySkipsInactiveGoals(t *testing.T) {
	s := NewScorer()
	goals := []models.UserGoal{
		{Category: "fitness", Description: "Exercise", IsActive: true},
		{Category: "learning", Description: "Study", IsActive: false},
	}

	result := s.ScoreEntry("Quick gym session.", goals)

	require.Len(t, result.GoalScores, 1)
	assert.Equal(t, "fitness", result.GoalScores[0].Category)
	assert.Equal(t, 1, result.GoalsTotal)
}

func TestScoreEntryNoGoals(t *testing.T) {
	s := NewScorer()

	result := s.ScoreEntry("Any content at all.", nil)

	assert.Empty(t, result.GoalScores)
	assert.Equal(t, 0.0, result.OverallEngagement)
	assert.Equal(t, 0, result.GoalsTotal)
}
