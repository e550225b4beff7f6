package scoring

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/noah-isme/dayscore-api/internal/models"
)

// EffortLevel classifies how much effort the journal text shows for a goal.
type EffortLevel string

const (
	EffortNone        EffortLevel = "none"
	EffortMinimal     EffortLevel = "minimal"
	EffortModerate    EffortLevel = "moderate"
	EffortSubstantial EffortLevel = "substantial"
	EffortExceptional EffortLevel = "exceptional"
)

// GoalScoreInput is everything needed to score one goal against one entry.
type GoalScoreInput struct {
	GoalCategory    string
	GoalDescription string
	TargetValue     float64
	JournalContent  string
}

// GoalScoreOutput is the deterministic result for one goal.
type GoalScoreOutput struct {
	Category    string      `json:"category"`
	BaseScore   float64     `json:"base_score"`
	ShowedUp    bool        `json:"showed_up"`
	EffortLevel EffortLevel `json:"effort_level"`
	Evidence    []string    `json:"evidence"`
	Reasoning   string      `json:"reasoning"`
}

// ScoringResult is the deterministic outcome across all active goals.
type ScoringResult struct {
	GoalScores        []GoalScoreOutput `json:"goal_scores"`
	OverallEngagement float64           `json:"overall_engagement"`
	GoalsAddressed    int               `json:"goals_addressed"`
	GoalsTotal        int               `json:"goals_total"`
}

// Scorer produces rule-based base scores for journal entries. It holds only
// compiled patterns over the fixed keyword tables, so identical input always
// yields identical output.
type Scorer struct {
	quantifierPattern *regexp.Regexp
	activityPattern   *regexp.Regexp
	sentencePattern   *regexp.Regexp
}

// NewScorer compiles the detection patterns once.
func NewScorer() *Scorer {
	return &Scorer{
		quantifierPattern: regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s*(?:hours?|hrs?|minutes?|mins?|pages?|miles?|km|reps?|sets?|times?)\b`),
		activityPattern:   regexp.MustCompile(`(?i)\b(` + strings.Join(activityVerbs, "|") + `)\b`),
		sentencePattern:   regexp.MustCompile(`[.!?]+`),
	}
}

// ScoreGoal scores a single goal against the journal content.
func (s *Scorer) ScoreGoal(input GoalScoreInput) GoalScoreOutput {
	contentLower := strings.ToLower(input.JournalContent)

	keywords := keywordsForCategory(input.GoalCategory)
	var matches []string
	for _, kw := range keywords {
		if strings.Contains(contentLower, kw) {
			matches = append(matches, kw)
		}
	}

	evidence := s.extractEvidence(input.JournalContent, matches)
	showedUp := len(matches) > 0 || descriptionMentioned(contentLower, input.GoalDescription)
	effort := s.assessEffort(contentLower, matches)

	baseScore := s.calculateBaseScore(
		showedUp,
		len(matches),
		effort,
		s.quantifierPattern.MatchString(contentLower),
		len(evidence),
	)

	if len(evidence) > 3 {
		evidence = evidence[:3]
	}

	return GoalScoreOutput{
		Category:    input.GoalCategory,
		BaseScore:   baseScore,
		ShowedUp:    showedUp,
		EffortLevel: effort,
		Evidence:    evidence,
		Reasoning:   buildReasoning(input.GoalCategory, showedUp, matches, effort, baseScore),
	}
}

// ScoreEntry scores a journal entry against all of a user's goals. Inactive
// goals are skipped entirely, not scored as zero.
func (s *Scorer) ScoreEntry(journalContent string, goals []models.UserGoal) ScoringResult {
	var goalScores []GoalScoreOutput
	for _, goal := range goals {
		if !goal.IsActive {
			continue
		}
		goalScores = append(goalScores, s.ScoreGoal(GoalScoreInput{
			GoalCategory:    goal.Category,
			GoalDescription: goal.Description,
			TargetValue:     goal.TargetValue,
			JournalContent:  journalContent,
		}))
	}

	addressed := 0
	for _, gs := range goalScores {
		if gs.ShowedUp {
			addressed++
		}
	}

	total := len(goalScores)
	engagement := 0.0
	if total > 0 {
		// Half weight for goals the user never engaged with; dividing by the
		// total goal count intentionally penalises unaddressed goals.
		sum := 0.0
		for _, gs := range goalScores {
			weight := 0.5
			if gs.ShowedUp {
				weight = 1.0
			}
			sum += gs.BaseScore * weight
		}
		engagement = sum / float64(total)
		if engagement > 100 {
			engagement = 100
		}
	}

	return ScoringResult{
		GoalScores:        goalScores,
		OverallEngagement: engagement,
		GoalsAddressed:    addressed,
		GoalsTotal:        total,
	}
}

func keywordsForCategory(category string) []string {
	categoryLower := strings.ToLower(category)
	if kws, ok := categoryKeywords[categoryLower]; ok {
		return kws
	}
	return []string{categoryLower}
}

func descriptionMentioned(contentLower, description string) bool {
	for _, word := range strings.Fields(description) {
		if len(word) > 3 && strings.Contains(contentLower, strings.ToLower(word)) {
			return true
		}
	}
	return false
}

func (s *Scorer) extractEvidence(content string, keywords []string) []string {
	if len(keywords) == 0 {
		return nil
	}

	var evidence []string
	for _, sentence := range s.sentencePattern.Split(content, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		sentenceLower := strings.ToLower(sentence)
		for _, kw := range keywords {
			if strings.Contains(sentenceLower, kw) {
				evidence = append(evidence, sentence)
				break
			}
		}
	}
	return evidence
}

func (s *Scorer) assessEffort(contentLower string, keywordMatches []string) EffortLevel {
	if len(keywordMatches) == 0 {
		return EffortNone
	}

	positive := 0
	for _, word := range effortPositive {
		if strings.Contains(contentLower, word) {
			positive++
		}
	}
	negative := 0
	for _, word := range effortNegative {
		if strings.Contains(contentLower, word) {
			negative++
		}
	}

	score := positive*2 - negative
	if s.quantifierPattern.MatchString(contentLower) {
		score += 2
	}
	activityCount := len(s.activityPattern.FindAllString(contentLower, -1))
	if activityCount > 3 {
		activityCount = 3
	}
	score += activityCount

	switch {
	case score >= 6:
		return EffortExceptional
	case score >= 4:
		return EffortSubstantial
	case score >= 2:
		return EffortModerate
	case score >= 1:
		return EffortMinimal
	default:
		return EffortNone
	}
}

var effortPoints = map[EffortLevel]float64{
	EffortNone:        0,
	EffortMinimal:     5,
	EffortModerate:    15,
	EffortSubstantial: 25,
	EffortExceptional: 30,
}

func (s *Scorer) calculateBaseScore(showedUp bool, keywordCount int, effort EffortLevel, hasQuantifiers bool, evidenceCount int) float64 {
	if !showedUp {
		return 0
	}

	// 30 points just for showing up.
	score := 30.0

	keywordPoints := float64(keywordCount * 5)
	if keywordPoints > 20 {
		keywordPoints = 20
	}
	score += keywordPoints

	score += effortPoints[effort]

	if hasQuantifiers {
		score += 10
	}

	evidencePoints := float64(evidenceCount * 3)
	if evidencePoints > 10 {
		evidencePoints = 10
	}
	score += evidencePoints

	if score > 100 {
		score = 100
	}
	return score
}

func buildReasoning(category string, showedUp bool, keywordMatches []string, effort EffortLevel, baseScore float64) string {
	if !showedUp {
		return fmt.Sprintf("No evidence of engagement with %s found in today's entry.", category)
	}

	parts := []string{fmt.Sprintf("Engaged with %s", category)}
	if len(keywordMatches) > 0 {
		top := keywordMatches
		if len(top) > 3 {
			top = top[:3]
		}
		parts = append(parts, fmt.Sprintf("(keywords: %s)", strings.Join(top, ", ")))
	}
	parts = append(parts, fmt.Sprintf("with %s effort", effort))
	parts = append(parts, fmt.Sprintf("-> base score %.0f/100", baseScore))

	return strings.Join(parts, " ")
}
