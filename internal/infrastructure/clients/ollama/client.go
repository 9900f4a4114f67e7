package ollama

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/reelspot/backend/internal/infrastructure/observability"
	goopenai "github.com/sashabaranov/go-openai"
)

const (
	providerName   = "ollama"
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "qwen2.5"
)

// Client talks to a local Ollama server through its OpenAI-compatible /v1 API
type Client struct {
	api     *goopenai.Client
	model   string
	metrics *observability.Metrics
}

// NewClient creates a new Ollama client. baseURL is the server root, such as
// http://localhost:11434. Deadlines come from the caller's context.
func NewClient(baseURL, model string, metrics *observability.Metrics) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	// Ollama ignores the key but the client always sends one.
	cfg := goopenai.DefaultConfig(providerName)
	cfg.BaseURL = strings.TrimRight(baseURL, "/") + "/v1"

	return &Client{
		api:     goopenai.NewClientWithConfig(cfg),
		model:   model,
		metrics: metrics,
	}
}

// Name identifies the backend in logs and stage reports
func (c *Client) Name() string {
	return providerName
}

// Generate runs a single non-streaming completion and returns the response text
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:    c.model,
		Messages: []goopenai.ChatCompletionMessage{{Role: goopenai.ChatMessageRoleUser, Content: prompt}},
		Stream:   false,
	})
	if err != nil {
		observability.RecordLLMMetric(ctx, c.metrics, providerName, c.model, statusOf(err), time.Since(start), err)
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		err := errors.New("ollama response has no choices")
		observability.RecordLLMMetric(ctx, c.metrics, providerName, c.model, 200, time.Since(start), err)
		return "", err
	}

	observability.RecordLLMMetric(ctx, c.metrics, providerName, c.model, 200, time.Since(start), nil)
	return resp.Choices[0].Message.Content, nil
}

func statusOf(err error) int {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
