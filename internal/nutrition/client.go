package nutrition

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/strubloid/neotalent-sub000/internal/apperr"
)

// CompletionClient is the upstream LLM port: prompt in, raw completion
// text out.
type CompletionClient interface {
	CreateCompletion(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Configured() bool
}

// ChatClient speaks the OpenAI-compatible chat-completions API. Deepseek
// exposes the same wire format, so one client covers both providers via
// the base URL and model.
type ChatClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	tracer     trace.Tracer
	breaker    *gobreaker.CircuitBreaker
}

// ChatClientConfig configures a ChatClient.
type ChatClientConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewChatClient creates an upstream LLM client with a circuit breaker and
// an explicit request timeout.
func NewChatClient(cfg ChatClientConfig) *ChatClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        "openai-chat",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	}

	return &ChatClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tracer:  otel.Tracer("openai-chat-client"),
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Configured reports whether an API key is set.
func (c *ChatClient) Configured() bool {
	return c.apiKey != ""
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// CreateCompletion sends the prompts to the chat-completions endpoint and
// returns the first choice's content. Failures are translated into the
// stable upstream error taxonomy.
func (c *ChatClient) CreateCompletion(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "openai.create_completion")
	defer span.End()

	span.SetAttributes(attribute.String("openai.model", c.model))

	if !c.Configured() {
		err := apperr.NewUpstream(apperr.CodeOpenAIConfigError, http.StatusInternalServerError,
			"OpenAI API key is not configured", nil)
		span.RecordError(err)
		return "", err
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.completionInternal(ctx, systemPrompt, userPrompt)
	})

	if err != nil {
		span.RecordError(err)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", apperr.NewUpstream(apperr.CodeOpenAINetworkError, http.StatusServiceUnavailable,
				"Nutrition service is temporarily unavailable", err)
		}
		return "", err
	}

	return result.(string), nil
}

// completionInternal performs the actual HTTP request.
func (c *ChatClient) completionInternal(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", apperr.NewInternal(fmt.Errorf("failed to marshal completion request: %w", err))
	}

	url := fmt.Sprintf("%s/chat/completions", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", apperr.NewInternal(fmt.Errorf("failed to create completion request: %w", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Timeouts and DNS/connection failures are retryable from the
		// client's point of view.
		return "", apperr.NewUpstream(apperr.CodeOpenAINetworkError, http.StatusServiceUnavailable,
			"Failed to reach the nutrition analysis service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.statusError(resp)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", apperr.NewUpstream(apperr.CodeOpenAIServiceError, http.StatusInternalServerError,
			"Invalid response from OpenAI", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", apperr.NewUpstream(apperr.CodeOpenAIServiceError, http.StatusInternalServerError,
			"No response from OpenAI", nil)
	}

	return chatResp.Choices[0].Message.Content, nil
}

// statusError maps a non-200 upstream status onto the stable error codes.
func (c *ChatClient) statusError(resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	upstream := fmt.Errorf("openai returned status %d: %s", resp.StatusCode, string(bodyBytes))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return apperr.NewUpstream(apperr.CodeOpenAIConfigError, http.StatusInternalServerError,
			"OpenAI API key is invalid", upstream)
	case resp.StatusCode == http.StatusTooManyRequests:
		return apperr.NewUpstream(apperr.CodeOpenAIQuotaExceeded, http.StatusServiceUnavailable,
			"OpenAI quota exceeded, please try again later", upstream)
	case resp.StatusCode == http.StatusBadRequest:
		return apperr.NewUpstream(apperr.CodeOpenAIBadRequest, http.StatusBadRequest,
			"OpenAI rejected the request", upstream)
	default:
		return apperr.NewUpstream(apperr.CodeOpenAIServiceError, http.StatusInternalServerError,
			"OpenAI service error", upstream)
	}
}
