package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/dayscore-api/internal/models"
	"github.com/noah-isme/dayscore-api/internal/scoring"
	appErrors "github.com/noah-isme/dayscore-api/pkg/errors"
)

type scoringJournalRepository interface {
	FindByDate(ctx context.Context, userID string, date time.Time) (*models.JournalEntry, error)
}

type scoringGoalRepository interface {
	List(ctx context.Context, filter models.GoalFilter) ([]models.UserGoal, error)
}

type scoreRepository interface {
	FindByDate(ctx context.Context, userID string, date time.Time) (*models.DailyScore, error)
	ListSince(ctx context.Context, userID string, from time.Time) ([]models.DailyScore, error)
	ReplaceForDate(ctx context.Context, score *models.DailyScore, metrics []models.ScoreMetric) error
}

type scoreCache interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// GoalScoreDetail is the per-goal breakdown inside a scoring response.
type GoalScoreDetail struct {
	Category            string              `json:"category"`
	BaseScore           float64             `json:"base_score"`
	EnhancedScore       float64             `json:"enhanced_score"`
	Adjustment          float64             `json:"adjustment"`
	Weight              float64             `json:"weight"`
	WeightedScore       float64             `json:"weighted_score"`
	ShowedUp            bool                `json:"showed_up"`
	EffortLevel         scoring.EffortLevel `json:"effort_level"`
	Evidence            []string            `json:"evidence"`
	Reasoning           string              `json:"reasoning"`
	AdjustmentReasoning string              `json:"adjustment_reasoning"`
}

// ScoreComparison relates today's composite score to yesterday's.
type ScoreComparison struct {
	Today     float64        `json:"today"`
	Yesterday *float64       `json:"yesterday"`
	Delta     *float64       `json:"delta"`
	Verdict   models.Verdict `json:"verdict"`
}

// ScoringResponse is the full outcome of scoring one day.
type ScoringResponse struct {
	ScoreDate      time.Time            `json:"score_date"`
	Verdict        models.Verdict       `json:"verdict"`
	CompositeScore float64              `json:"composite_score"`
	Comparison     ScoreComparison      `json:"comparison"`
	GoalScores     []GoalScoreDetail    `json:"goal_scores"`
	Streaks        []scoring.StreakInfo `json:"streaks"`
}

// ScoringService orchestrates the full scoring workflow: deterministic base
// scores, bounded LLM enhancement, composite calculation, verdict against
// yesterday, streaks, and persistence.
type ScoringService struct {
	journals      scoringJournalRepository
	goals         scoringGoalRepository
	scores        scoreRepository
	cache         scoreCache
	scorer        *scoring.Scorer
	enhancer      scoring.Enhancer
	logger        *zap.Logger
	metrics       *MetricsService
	sameThreshold float64
}

// AttachMetrics wires scoring observations into the metrics registry.
func (s *ScoringService) AttachMetrics(metrics *MetricsService) {
	s.metrics = metrics
}

// NewScoringService constructs a ScoringService instance. A sameThreshold of
// zero falls back to 5.0 points.
func NewScoringService(
	journals scoringJournalRepository,
	goals scoringGoalRepository,
	scores scoreRepository,
	cache scoreCache,
	enhancer scoring.Enhancer,
	logger *zap.Logger,
	sameThreshold float64,
) *ScoringService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if enhancer == nil {
		enhancer = scoring.NewNoopEnhancer()
	}
	if sameThreshold <= 0 {
		sameThreshold = 5.0
	}
	return &ScoringService{
		journals:      journals,
		goals:         goals,
		scores:        scores,
		cache:         cache,
		scorer:        scoring.NewScorer(),
		enhancer:      enhancer,
		logger:        logger,
		sameThreshold: sameThreshold,
	}
}

// ScoreDay runs the complete scoring workflow for a user and date.
func (s *ScoringService) ScoreDay(ctx context.Context, userID string, scoreDate time.Time) (*ScoringResponse, error) {
	started := time.Now()
	response, err := s.scoreDay(ctx, userID, scoreDate)
	if s.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		s.metrics.ObserveScoringRun(outcome, time.Since(started))
		if response != nil {
			for _, d := range response.GoalScores {
				s.metrics.ObserveAdjustment(d.Adjustment)
			}
		}
	}
	return response, err
}

func (s *ScoringService) scoreDay(ctx context.Context, userID string, scoreDate time.Time) (*ScoringResponse, error) {
	journal, err := s.journals.FindByDate(ctx, userID, scoreDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no journal entry found for date")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load journal entry")
	}

	goals, err := s.goals.List(ctx, models.GoalFilter{UserID: userID, ActiveOnly: true})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load goals")
	}
	if len(goals) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no active goals found for user")
	}

	deterministic := s.scorer.ScoreEntry(journal.ContentMarkdown, goals)

	details := make([]GoalScoreDetail, 0, len(goals))
	totalWeighted := 0.0
	totalWeight := 0.0
	for i, goal := range goals {
		det := deterministic.GoalScores[i]
		enhanced, err := s.enhancer.Enhance(ctx, det, journal.ContentMarkdown, scoring.GoalContext{
			Category:    goal.Category,
			Description: goal.Description,
			TargetValue: goal.TargetValue,
			Weight:      goal.Weight,
		})
		if err != nil {
			// A failing enhancer never blocks scoring; fall back to the base.
			s.logger.Warn("score enhancement failed, using deterministic score",
				zap.String("category", goal.Category), zap.Error(err))
			enhanced = scoring.EnhancedScore{
				Category:            det.Category,
				OriginalScore:       det.BaseScore,
				AdjustedScore:       det.BaseScore,
				AdjustmentReasoning: "enhancement unavailable",
				Confidence:          1.0,
			}
		}

		// The enhancer already clamps; clamp once more so a misbehaving
		// implementation cannot move a score past the guardrail.
		adjusted, adjustment := scoring.ClampAdjustment(det.BaseScore, enhanced.AdjustedScore)

		weighted := adjusted * goal.Weight
		totalWeighted += weighted
		totalWeight += goal.Weight

		details = append(details, GoalScoreDetail{
			Category:            goal.Category,
			BaseScore:           det.BaseScore,
			EnhancedScore:       adjusted,
			Adjustment:          adjustment,
			Weight:              goal.Weight,
			WeightedScore:       weighted,
			ShowedUp:            det.ShowedUp,
			EffortLevel:         det.EffortLevel,
			Evidence:            det.Evidence,
			Reasoning:           det.Reasoning,
			AdjustmentReasoning: enhanced.AdjustmentReasoning,
		})
	}

	composite := 0.0
	if totalWeight > 0 {
		composite = totalWeighted / totalWeight
	}

	yesterday, err := s.yesterdayScore(ctx, userID, scoreDate)
	if err != nil {
		return nil, err
	}
	comparison := s.compare(composite, yesterday)

	comparisonData, err := json.Marshal(models.ComparisonData{Yesterday: comparison.Yesterday, Delta: comparison.Delta})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode comparison data")
	}

	dailyScore := &models.DailyScore{
		UserID:         userID,
		ScoreDate:      scoreDate,
		Verdict:        comparison.Verdict,
		CompositeScore: composite,
		ComparisonData: comparisonData,
	}
	metrics := make([]models.ScoreMetric, 0, len(details))
	for _, d := range details {
		metrics = append(metrics, models.ScoreMetric{
			Category:  d.Category,
			Score:     d.EnhancedScore,
			Weight:    d.Weight,
			Reasoning: fmt.Sprintf("%s | LLM: %s", d.Reasoning, d.AdjustmentReasoning),
		})
	}
	if err := s.scores.ReplaceForDate(ctx, dailyScore, metrics); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist daily score")
	}

	streaks, err := s.streaksFor(ctx, userID, detailCategories(details))
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, userID)

	return &ScoringResponse{
		ScoreDate:      scoreDate,
		Verdict:        comparison.Verdict,
		CompositeScore: composite,
		Comparison:     comparison,
		GoalScores:     details,
		Streaks:        streaks,
	}, nil
}

// GetScore returns the persisted daily score for a date.
func (s *ScoringService) GetScore(ctx context.Context, userID string, date time.Time) (*models.DailyScore, error) {
	score, err := s.scores.FindByDate(ctx, userID, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no score for date")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load daily score")
	}
	return score, nil
}

// GetStreaks returns streak information for every active goal category.
func (s *ScoringService) GetStreaks(ctx context.Context, userID string) ([]scoring.StreakInfo, error) {
	goals, err := s.goals.List(ctx, models.GoalFilter{UserID: userID, ActiveOnly: true})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load goals")
	}
	categories := make([]string, 0, len(goals))
	for _, g := range goals {
		categories = append(categories, g.Category)
	}
	return s.streaksFor(ctx, userID, categories)
}

func (s *ScoringService) streaksFor(ctx context.Context, userID string, categories []string) ([]scoring.StreakInfo, error) {
	history, err := s.scores.ListSince(ctx, userID, time.Time{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load score history")
	}

	streaks := make([]scoring.StreakInfo, 0, len(categories))
	for _, category := range categories {
		streaks = append(streaks, scoring.CalculateStreak(category, history, s.sameThreshold))
	}
	return streaks, nil
}

func (s *ScoringService) yesterdayScore(ctx context.Context, userID string, today time.Time) (*float64, error) {
	score, err := s.scores.FindByDate(ctx, userID, today.AddDate(0, 0, -1))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load yesterday's score")
	}
	return &score.CompositeScore, nil
}

func (s *ScoringService) compare(today float64, yesterday *float64) ScoreComparison {
	if yesterday == nil {
		return ScoreComparison{Today: today, Verdict: models.VerdictFirstDay}
	}

	delta := today - *yesterday
	verdict := models.VerdictSame
	if delta > s.sameThreshold {
		verdict = models.VerdictBetter
	} else if delta < -s.sameThreshold {
		verdict = models.VerdictWorse
	}
	return ScoreComparison{Today: today, Yesterday: yesterday, Delta: &delta, Verdict: verdict}
}

func (s *ScoringService) invalidateCache(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("scores:%s:*", userID)); err != nil {
		s.logger.Warn("failed to invalidate score cache", zap.String("user_id", userID), zap.Error(err))
	}
}

func detailCategories(details []GoalScoreDetail) []string {
	categories := make([]string, 0, len(details))
	for _, d := range details {
		categories = append(categories, d.Category)
	}
	return categories
}
