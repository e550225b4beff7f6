package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/dayscore-api/pkg/errors"
)

var _ Enhancer = (*OpenAIEnhancer)(nil)

// ChatService is the slice of the OpenAI SDK the enhancer needs. The
// abstraction lets tests substitute canned completions for real API calls.
type ChatService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

const enhancementSystemPrompt = `You are a fair and consistent scoring assistant. Your adjustments should be:
- Conservative: Only adjust when there's clear contextual evidence
- Explainable: Always provide specific reasoning
- Bounded: Never exceed the +/-20 point guardrail
- Consistent: Similar contexts should produce similar adjustments

Respond with a single JSON object of the form
{"adjusted_score": <number>, "adjustment_reasoning": "<string>", "confidence": <number 0..1>}
and nothing else.`

const enhancementPromptTemplate = `You are a scoring assistant for a personal growth journaling app. Your job is to review a deterministic base score and adjust it based on contextual understanding.

## Context
The user has a goal in the "%s" category: "%s"
Target: %g

## Today's Journal Entry
%s

## Deterministic Analysis
- Base Score: %g/100
- Showed Up: %t
- Effort Level: %s
- Evidence Found: %s
- Reasoning: %s

## Your Task
Review the base score and adjust it if the deterministic analysis missed important context. Consider:

1. **Hidden effort**: Did the user work hard in ways not captured by keywords?
2. **Quality vs quantity**: Was this high-quality engagement even if brief?
3. **Context clues**: Does surrounding text suggest more/less effort than detected?
4. **Goal alignment**: How well did activities actually serve the stated goal?

## Constraints
- You may adjust the score by at most +/-20 points from the base score
- Base score: %g -> Valid range: [%g, %g]
- If no adjustment needed, return the base score unchanged
- Always explain your reasoning`

// OpenAIEnhancer refines deterministic scores with an LLM pass. Model
// proposals are clamped to the +/-20 guardrail no matter what comes back.
type OpenAIEnhancer struct {
	chat  ChatService
	model openai.ChatModel
	log   *zap.Logger
}

// NewOpenAIEnhancer builds an enhancer backed by the OpenAI API.
func NewOpenAIEnhancer(apiKey, model string, log *zap.Logger) *OpenAIEnhancer {
	if log == nil {
		log = zap.NewNop()
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIEnhancer{
		chat:  client.Chat.Completions,
		model: openai.ChatModel(model),
		log:   log,
	}
}

// NewEnhancer selects the LLM enhancer when an API key is configured, the
// no-op enhancer otherwise.
func NewEnhancer(apiKey, model string, log *zap.Logger) Enhancer {
	if apiKey == "" {
		if log != nil {
			log.Info("no OpenAI API key configured, score enhancement disabled")
		}
		return NewNoopEnhancer()
	}
	return NewOpenAIEnhancer(apiKey, model, log)
}

type enhancementReply struct {
	AdjustedScore       float64 `json:"adjusted_score"`
	AdjustmentReasoning string  `json:"adjustment_reasoning"`
	Confidence          float64 `json:"confidence"`
}

// Enhance asks the model to review one deterministic goal score against the
// full journal text and returns the bounded adjustment.
func (e *OpenAIEnhancer) Enhance(ctx context.Context, deterministic GoalScoreOutput, journalContent string, goal GoalContext) (EnhancedScore, error) {
	base := deterministic.BaseScore
	minScore := base - MaxAdjustment
	if minScore < 0 {
		minScore = 0
	}
	maxScore := base + MaxAdjustment
	if maxScore > 100 {
		maxScore = 100
	}

	evidence := "None"
	if len(deterministic.Evidence) > 0 {
		evidence = strings.Join(deterministic.Evidence, "; ")
	}

	prompt := fmt.Sprintf(enhancementPromptTemplate,
		deterministic.Category,
		goal.Description,
		goal.TargetValue,
		journalContent,
		base,
		deterministic.ShowedUp,
		deterministic.EffortLevel,
		evidence,
		deterministic.Reasoning,
		base,
		minScore,
		maxScore,
	)

	resp, err := e.chat.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.F(e.model),
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(enhancementSystemPrompt),
			openai.UserMessage(prompt),
		}),
	})
	if err != nil {
		return EnhancedScore{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "score enhancement request failed")
	}
	if len(resp.Choices) == 0 {
		return EnhancedScore{}, appErrors.Clone(appErrors.ErrInternal, "score enhancement returned no choices")
	}

	var reply enhancementReply
	if err := json.Unmarshal([]byte(extractJSON(resp.Choices[0].Message.Content)), &reply); err != nil {
		return EnhancedScore{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "score enhancement returned malformed response")
	}

	adjusted, adjustment := ClampAdjustment(base, reply.AdjustedScore)
	if adjusted != reply.AdjustedScore {
		e.log.Warn("enhancer proposal exceeded guardrail, clamped",
			zap.String("category", deterministic.Category),
			zap.Float64("base", base),
			zap.Float64("proposed", reply.AdjustedScore),
			zap.Float64("clamped", adjusted))
	}

	confidence := reply.Confidence
	if confidence <= 0 || confidence > 1 {
		confidence = 0.8
	}

	return EnhancedScore{
		Category:            deterministic.Category,
		OriginalScore:       base,
		AdjustedScore:       adjusted,
		Adjustment:          adjustment,
		AdjustmentReasoning: reply.AdjustmentReasoning,
		Confidence:          confidence,
	}, nil
}

// extractJSON pulls the outermost JSON object out of a completion, tolerating
// markdown fences and surrounding prose.
func extractJSON(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return content
	}
	return content[start : end+1]
}
