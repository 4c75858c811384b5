// Package nutrition analyzes free-text food descriptions by prompting an
// LLM and normalizing its JSON answer into the canonical result shape.
package nutrition

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/strubloid/neotalent-sub000/internal/apperr"
	"github.com/strubloid/neotalent-sub000/internal/models"
)

const systemPrompt = "You are a nutrition analysis assistant. " +
	"Respond ONLY with a single JSON object, no prose and no markdown."

const promptTemplate = `Analyze the nutritional content of the following food description: %q

Respond with ONLY a JSON object of this exact shape:
{
  "totalCalories": <number>,
  "totalProtein": <number, grams>,
  "totalCarbs": <number, grams>,
  "totalFat": <number, grams>,
  "breakdown": [
    {
      "item": "<food item name>",
      "quantity": "<estimated quantity>",
      "calories": <number>,
      "protein": <number>,
      "carbs": <number>,
      "fat": <number>,
      "fiber": <number, optional>,
      "sugar": <number, optional>,
      "sodium": <number in mg, optional>
    }
  ],
  "servingSize": "<overall serving description>",
  "confidence": "<high|medium|low>",
  "summary": "<one sentence summary>"
}`

// ConnectionStatus is the result of probing the upstream LLM service.
type ConnectionStatus struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Configured bool   `json:"configured"`
}

// Service turns food descriptions into nutrition estimates.
type Service struct {
	client CompletionClient
	tracer trace.Tracer
}

// NewService creates a nutrition service backed by the given LLM client.
func NewService(client CompletionClient) *Service {
	return &Service{
		client: client,
		tracer: otel.Tracer("nutrition-service"),
	}
}

// llmResult tolerates both upstream response phrasings: the canonical
// totalCalories/breakdown fields and the legacy calories/foodItems
// aliases. Pointers distinguish absent from zero.
type llmResult struct {
	TotalCalories *float64  `json:"totalCalories"`
	Calories      *float64  `json:"calories"`
	TotalProtein  float64   `json:"totalProtein"`
	Protein       float64   `json:"protein"`
	TotalCarbs    float64   `json:"totalCarbs"`
	Carbs         float64   `json:"carbs"`
	TotalFat      float64   `json:"totalFat"`
	Fat           float64   `json:"fat"`
	Breakdown     []llmItem `json:"breakdown"`
	FoodItems     []llmItem `json:"foodItems"`
	ServingSize   string    `json:"servingSize"`
	Confidence    string    `json:"confidence"`
	Summary       string    `json:"summary"`
}

type llmItem struct {
	Item     string   `json:"item"`
	Food     string   `json:"food"`
	Name     string   `json:"name"`
	Quantity string   `json:"quantity"`
	Calories *float64 `json:"calories"`
	Protein  float64  `json:"protein"`
	Carbs    float64  `json:"carbs"`
	Fat      float64  `json:"fat"`
	Fiber    float64  `json:"fiber"`
	Sugar    float64  `json:"sugar"`
	Sodium   float64  `json:"sodium"`
}

// AnalyzeNutrition prompts the LLM with the sanitized food description
// and returns the normalized nutrition result.
func (s *Service) AnalyzeNutrition(ctx context.Context, food string) (*models.NutritionResult, error) {
	ctx, span := s.tracer.Start(ctx, "nutrition.analyze")
	defer span.End()

	span.SetAttributes(attribute.Int("food.length", len(food)))

	content, err := s.client.CreateCompletion(ctx, systemPrompt, fmt.Sprintf(promptTemplate, food))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	raw := stripCodeFences(content)

	var parsed llmResult
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		parseErr := apperr.NewUpstream(apperr.CodeNutritionParse, http.StatusInternalServerError,
			"Failed to parse nutrition data", err)
		span.RecordError(parseErr)
		return nil, parseErr
	}

	result, err := normalize(food, parsed)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("result.total_calories", result.TotalCalories),
		attribute.String("result.confidence", result.Confidence),
	)
	return result, nil
}

// normalize validates the decoded response and applies defaults. Total
// calories and the breakdown are hard requirements; their absence is an
// upstream data error, never defaulted away.
func normalize(food string, parsed llmResult) (*models.NutritionResult, error) {
	totalCalories := parsed.TotalCalories
	if totalCalories == nil {
		totalCalories = parsed.Calories
	}

	items := parsed.Breakdown
	if items == nil {
		items = parsed.FoodItems
	}

	if totalCalories == nil || items == nil {
		return nil, apperr.NewUpstream(apperr.CodeNutritionInvalid, http.StatusInternalServerError,
			"Nutrition data is missing required fields", nil)
	}

	result := &models.NutritionResult{
		TotalCalories: roundInt(*totalCalories),
		TotalProtein:  roundInt(firstNonZero(parsed.TotalProtein, parsed.Protein)),
		TotalCarbs:    roundInt(firstNonZero(parsed.TotalCarbs, parsed.Carbs)),
		TotalFat:      roundInt(firstNonZero(parsed.TotalFat, parsed.Fat)),
		Breakdown:     make([]models.BreakdownItem, 0, len(items)),
		ServingSize:   parsed.ServingSize,
		Confidence:    normalizeConfidence(parsed.Confidence),
		Summary:       parsed.Summary,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}

	if result.ServingSize == "" {
		result.ServingSize = "Not specified"
	}
	if result.Summary == "" {
		result.Summary = "Nutrition estimate for " + food
	}

	for _, it := range items {
		item := models.BreakdownItem{
			Item:     firstNonEmpty(it.Item, it.Food, it.Name),
			Quantity: it.Quantity,
			Protein:  roundInt(it.Protein),
			Carbs:    roundInt(it.Carbs),
			Fat:      roundInt(it.Fat),
			Fiber:    it.Fiber,
			Sugar:    it.Sugar,
			Sodium:   it.Sodium,
		}
		if item.Item == "" {
			item.Item = "Unknown item"
		}
		if it.Calories != nil {
			item.Calories = roundInt(*it.Calories)
		}
		result.Breakdown = append(result.Breakdown, item)
	}

	return result, nil
}

// TestConnection probes the upstream service. It reports the outcome
// rather than failing: an unset API key short-circuits without any
// network call.
func (s *Service) TestConnection(ctx context.Context) ConnectionStatus {
	ctx, span := s.tracer.Start(ctx, "nutrition.test_connection")
	defer span.End()

	if !s.client.Configured() {
		return ConnectionStatus{
			Success:    false,
			Message:    "OpenAI API key is not configured",
			Configured: false,
		}
	}

	_, err := s.client.CreateCompletion(ctx, "You are a connectivity probe.", "Reply with the single word OK.")
	if err != nil {
		span.RecordError(err)
		return ConnectionStatus{
			Success:    false,
			Message:    err.Error(),
			Configured: true,
		}
	}

	return ConnectionStatus{
		Success:    true,
		Message:    "OpenAI connection successful",
		Configured: true,
	}
}

// stripCodeFences removes a surrounding markdown code fence, with or
// without a language tag, from an LLM response.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		// Drop the language tag line, e.g. "json".
		first := strings.TrimSpace(s[:idx])
		if first == "" || !strings.ContainsAny(first, "{}[]") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func normalizeConfidence(c string) string {
	switch strings.ToLower(strings.TrimSpace(c)) {
	case models.ConfidenceHigh:
		return models.ConfidenceHigh
	case models.ConfidenceLow:
		return models.ConfidenceLow
	default:
		return models.ConfidenceMedium
	}
}

func roundInt(f float64) int {
	return int(math.Round(f))
}

func firstNonZero(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
