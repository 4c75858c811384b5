package nutrition

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strubloid/neotalent-sub000/internal/apperr"
	"github.com/strubloid/neotalent-sub000/internal/models"
)

// stubClient is a CompletionClient returning canned content.
type stubClient struct {
	content    string
	err        error
	configured bool
	lastPrompt string
}

func (s *stubClient) CreateCompletion(_ context.Context, _, userPrompt string) (string, error) {
	s.lastPrompt = userPrompt
	if s.err != nil {
		return "", s.err
	}
	return s.content, nil
}

func (s *stubClient) Configured() bool { return s.configured }

func TestAnalyzeNutrition_CanonicalSchema(t *testing.T) {
	client := &stubClient{configured: true, content: `{
		"totalCalories": 540.4,
		"totalProtein": 32.6,
		"totalCarbs": 45.2,
		"totalFat": 22.1,
		"breakdown": [
			{"item": "Grilled chicken", "quantity": "150g", "calories": 250.4, "protein": 30, "carbs": 0, "fat": 12, "sodium": 320},
			{"item": "Rice", "quantity": "1 cup", "calories": 290, "protein": 2.6, "carbs": 45.2, "fat": 10.1}
		],
		"servingSize": "1 plate",
		"confidence": "high",
		"summary": "Chicken with rice."
	}`}

	svc := NewService(client)
	result, err := svc.AnalyzeNutrition(context.Background(), "grilled chicken with rice")
	require.NoError(t, err)

	assert.Equal(t, 540, result.TotalCalories)
	assert.Equal(t, 33, result.TotalProtein)
	assert.Equal(t, 45, result.TotalCarbs)
	assert.Equal(t, 22, result.TotalFat)
	assert.Equal(t, models.ConfidenceHigh, result.Confidence)
	assert.Equal(t, "1 plate", result.ServingSize)
	assert.Equal(t, "Chicken with rice.", result.Summary)
	assert.NotEmpty(t, result.Timestamp)

	require.Len(t, result.Breakdown, 2)
	assert.Equal(t, "Grilled chicken", result.Breakdown[0].Item)
	assert.Equal(t, 250, result.Breakdown[0].Calories)
	assert.Equal(t, 320.0, result.Breakdown[0].Sodium)

	assert.Contains(t, client.lastPrompt, "grilled chicken with rice")
}

func TestAnalyzeNutrition_LegacyAliasSchema(t *testing.T) {
	client := &stubClient{configured: true, content: `{
		"calories": 95,
		"protein": 0.5,
		"carbs": 25,
		"fat": 0.3,
		"foodItems": [
			{"food": "Apple", "quantity": "1 medium", "calories": 95}
		]
	}`}

	svc := NewService(client)
	result, err := svc.AnalyzeNutrition(context.Background(), "an apple")
	require.NoError(t, err)

	assert.Equal(t, 95, result.TotalCalories)
	assert.Equal(t, 1, result.TotalProtein)
	assert.Equal(t, 25, result.TotalCarbs)
	require.Len(t, result.Breakdown, 1)
	assert.Equal(t, "Apple", result.Breakdown[0].Item)
}

func TestAnalyzeNutrition_StripsCodeFences(t *testing.T) {
	fenced := "```json\n{\"totalCalories\": 100, \"breakdown\": []}\n```"
	client := &stubClient{configured: true, content: fenced}

	svc := NewService(client)
	result, err := svc.AnalyzeNutrition(context.Background(), "water")
	require.NoError(t, err)
	assert.Equal(t, 100, result.TotalCalories)
	assert.Empty(t, result.Breakdown)
}

func TestAnalyzeNutrition_Defaults(t *testing.T) {
	client := &stubClient{configured: true, content: `{
		"totalCalories": 200,
		"breakdown": [{"quantity": "some"}]
	}`}

	svc := NewService(client)
	result, err := svc.AnalyzeNutrition(context.Background(), "mystery snack")
	require.NoError(t, err)

	assert.Equal(t, "Not specified", result.ServingSize)
	assert.Equal(t, models.ConfidenceMedium, result.Confidence)
	assert.Contains(t, result.Summary, "mystery snack")

	require.Len(t, result.Breakdown, 1)
	assert.Equal(t, "Unknown item", result.Breakdown[0].Item)
	assert.Equal(t, 0, result.Breakdown[0].Calories)
}

func TestAnalyzeNutrition_ParseFailure(t *testing.T) {
	client := &stubClient{configured: true, content: "I think that's about 300 calories."}

	svc := NewService(client)
	_, err := svc.AnalyzeNutrition(context.Background(), "toast")
	require.Error(t, err)

	var upstream *apperr.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, apperr.CodeNutritionParse, upstream.Code)
}

func TestAnalyzeNutrition_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "no_calories", content: `{"breakdown": []}`},
		{name: "no_breakdown", content: `{"totalCalories": 300}`},
		{name: "empty_object", content: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&stubClient{configured: true, content: tt.content})
			_, err := svc.AnalyzeNutrition(context.Background(), "toast")
			require.Error(t, err)

			var upstream *apperr.UpstreamError
			require.ErrorAs(t, err, &upstream)
			assert.Equal(t, apperr.CodeNutritionInvalid, upstream.Code,
				"missing-field failures are distinct from parse failures")
		})
	}
}

func TestAnalyzeNutrition_ClientErrorPropagates(t *testing.T) {
	upstream := apperr.NewUpstream(apperr.CodeOpenAIQuotaExceeded, 503, "quota", nil)
	svc := NewService(&stubClient{configured: true, err: upstream})

	_, err := svc.AnalyzeNutrition(context.Background(), "toast")
	require.Error(t, err)

	var got *apperr.UpstreamError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, apperr.CodeOpenAIQuotaExceeded, got.Code)
}

func TestTestConnection(t *testing.T) {
	t.Run("not_configured_no_network", func(t *testing.T) {
		client := &stubClient{configured: false, err: assertNeverCalledErr{}}
		svc := NewService(client)

		status := svc.TestConnection(context.Background())
		assert.False(t, status.Success)
		assert.False(t, status.Configured)
		assert.Empty(t, client.lastPrompt, "no completion call when unconfigured")
	})

	t.Run("configured_and_reachable", func(t *testing.T) {
		svc := NewService(&stubClient{configured: true, content: "OK"})
		status := svc.TestConnection(context.Background())
		assert.True(t, status.Success)
		assert.True(t, status.Configured)
	})

	t.Run("configured_but_failing", func(t *testing.T) {
		svc := NewService(&stubClient{
			configured: true,
			err:        apperr.NewUpstream(apperr.CodeOpenAINetworkError, 503, "unreachable", nil),
		})
		status := svc.TestConnection(context.Background())
		assert.False(t, status.Success)
		assert.True(t, status.Configured)
		assert.Contains(t, status.Message, "unreachable")
	})
}

type assertNeverCalledErr struct{}

func (assertNeverCalledErr) Error() string { return "completion must not be called" }

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "no_fence", input: `{"a":1}`, expected: `{"a":1}`},
		{name: "json_fence", input: "```json\n{\"a\":1}\n```", expected: `{"a":1}`},
		{name: "bare_fence", input: "```\n{\"a\":1}\n```", expected: `{"a":1}`},
		{name: "fence_no_newline", input: "```{\"a\":1}```", expected: `{"a":1}`},
		{name: "surrounding_whitespace", input: "  ```json\n{\"a\":1}\n```  ", expected: `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripCodeFences(tt.input))
		})
	}
}
