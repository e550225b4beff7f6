package scoring

import "context"

// MaxAdjustment bounds how far an enhancer may move a score from its
// deterministic base, in either direction.
const MaxAdjustment = 20.0

// EnhancedScore is the bounded refinement of one deterministic goal score.
type EnhancedScore struct {
	Category            string  `json:"category"`
	OriginalScore       float64 `json:"original_score"`
	AdjustedScore       float64 `json:"adjusted_score"`
	Adjustment          float64 `json:"adjustment"`
	AdjustmentReasoning string  `json:"adjustment_reasoning"`
	Confidence          float64 `json:"confidence"`
}

// Enhancer refines a deterministic goal score using the full journal context.
// Implementations must respect the MaxAdjustment bound; callers clamp again
// regardless.
type Enhancer interface {
	Enhance(ctx context.Context, deterministic GoalScoreOutput, journalContent string, goal GoalContext) (EnhancedScore, error)
}

// GoalContext is the goal metadata an enhancer may consider beyond the
// deterministic result.
type GoalContext struct {
	Category    string
	Description string
	TargetValue float64
	Weight      float64
}

// ClampAdjustment forces an adjusted score back within MaxAdjustment of the
// base, preserving the direction of the proposed change.
func ClampAdjustment(base, adjusted float64) (float64, float64) {
	adjustment := adjusted - base
	if adjustment > MaxAdjustment {
		adjustment = MaxAdjustment
	} else if adjustment < -MaxAdjustment {
		adjustment = -MaxAdjustment
	}
	return base + adjustment, adjustment
}

// NoopEnhancer passes deterministic scores through untouched. Selected when
// no LLM is configured, keeping the pipeline shape identical either way.
type NoopEnhancer struct{}

// NewNoopEnhancer returns an enhancer that never adjusts anything.
func NewNoopEnhancer() *NoopEnhancer {
	return &NoopEnhancer{}
}

func (e *NoopEnhancer) Enhance(_ context.Context, deterministic GoalScoreOutput, _ string, _ GoalContext) (EnhancedScore, error) {
	return EnhancedScore{
		Category:            deterministic.Category,
		OriginalScore:       deterministic.BaseScore,
		AdjustedScore:       deterministic.BaseScore,
		Adjustment:          0,
		AdjustmentReasoning: "LLM enhancement disabled, using deterministic score",
		Confidence:          1.0,
	}, nil
}
