package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChatService struct {
	content string
	err     error
	calls   int
}

func (f *fakeChatService) New(_ context.Context, _ openai.ChatCompletionNewParams, _ ...option.RequestOption) (*openai.ChatCompletion, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func newTestEnhancer(chat ChatService) *OpenAIEnhancer {
	return &OpenAIEnhancer{chat: chat, model: "gpt-4o-mini", log: zap.NewNop()}
}

func TestOpenAIEnhancerAcceptsBoundedAdjustment(t *testing.T) {
	fake := &fakeChatService{content: `{"adjusted_score": 70, "adjustment_reasoning": "clear hidden effort", "confidence": 0.9}`}
	e := newTestEnhancer(fake)

	out, err := e.Enhance(context.Background(), GoalScoreOutput{Category: "fitness", BaseScore: 60}, "journal", GoalContext{})

	require.NoError(t, err)
	assert.Equal(t, 60.0, out.OriginalScore)
	assert.Equal(t, 70.0, out.AdjustedScore)
	assert.Equal(t, 10.0, out.Adjustment)
	assert.Equal(t, 0.9, out.Confidence)
	assert.Equal(t, 1, fake.calls)
}

func TestOpenAIEnhancerClampsPositiveOvershoot(t *testing.T) {
	fake := &fakeChatService{content: `{"adjusted_score": 95, "adjustment_reasoning": "way better than detected", "confidence": 0.9}`}
	e := newTestEnhancer(fake)

	out, err := e.Enhance(context.Background(), GoalScoreOutput{Category: "fitness", BaseScore: 60}, "journal", GoalContext{})

	require.NoError(t, err)
	assert.Equal(t, 80.0, out.AdjustedScore)
	assert.Equal(t, 20.0, out.Adjustment)
}

func TestOpenAIEnhancerClampsNegativeOvershoot(t *testing.T) {
	fake := &fakeChatService{content: `{"adjusted_score": 10, "adjustment_reasoning": "overstated", "confidence": 0.7}`}
	e := newTestEnhancer(fake)

	out, err := e.Enhance(context.Background(), GoalScoreOutput{Category: "fitness", BaseScore: 60}, "journal", GoalContext{})

	require.NoError(t, err)
	assert.Equal(t, 40.0, out.AdjustedScore)
	assert.Equal(t, -20.0, out.Adjustment)
}

func TestOpenAIEnhancerHandlesFencedJSON(t *testing.T) {
	fake := &fakeChatService{content: "```json\n{\"adjusted_score\": 55, \"adjustment_reasoning\": \"slight bump\", \"confidence\": 0.8}\n```"}
	e := newTestEnhancer(fake)

	out, err := e.Enhance(context.Background(), GoalScoreOutput{Category: "learning", BaseScore: 50}, "journal", GoalContext{})

	require.NoError(t, err)
	assert.Equal(t, 55.0, out.AdjustedScore)
}

func TestOpenAIEnhancerDefaultsConfidence(t *testing.T) {
	fake := &fakeChatService{content: `{"adjusted_score": 50, "adjustment_reasoning": "no change"}`}
	e := newTestEnhancer(fake)

	out, err := e.Enhance(context.Background(), GoalScoreOutput{Category: "health", BaseScore: 50}, "journal", GoalContext{})

	require.NoError(t, err)
	assert.Equal(t, 0.8, out.Confidence)
}

func TestOpenAIEnhancerMalformedResponse(t *testing.T) {
	fake := &fakeChatService{content: "I think the score is about right."}
	e := newTestEnhancer(fake)

	_, err := e.Enhance(context.Background(), GoalScoreOutput{Category: "fitness", BaseScore: 60}, "journal", GoalContext{})

	assert.Error(t, err)
}

func TestOpenAIEnhancerRequestError(t *testing.T) {
	fake := &fakeChatService{err: errors.New("rate limited")}
	e := newTestEnhancer(fake)

	_, err := e.Enhance(context.Background(), GoalScoreOutput{Category: "fitness", BaseScore: 60}, "journal", GoalContext{})

	assert.Error(t, err)
}
