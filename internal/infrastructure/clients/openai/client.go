package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/reelspot/backend/internal/infrastructure/observability"
	goopenai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const (
	providerName           = "openai"
	defaultChatModel       = goopenai.GPT4oMini
	defaultTranscribeModel = goopenai.Whisper1
	defaultBurst           = 5
)

const extractionSystemPrompt = "You extract structured place information from short video transcripts. Respond with a single JSON object only."

// Options tunes a Client beyond the API key
type Options struct {
	ChatModel       string
	TranscribeModel string
	RateLimitRPM    int
	RateLimitBurst  int
	BaseURL         string
	Metrics         *observability.Metrics
}

// Client wraps the OpenAI API for chat completion and audio transcription.
// It satisfies both providers.TextGenerator and providers.Transcriber.
type Client struct {
	api             *goopenai.Client
	chatModel       string
	transcribeModel string
	limiter         *rate.Limiter
	metrics         *observability.Metrics
}

// NewClient creates a new OpenAI client.
func NewClient(apiKey string, opts Options) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openai api key is required")
	}

	clientConfig := goopenai.DefaultConfig(apiKey)
	if opts.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}

	chatModel := opts.ChatModel
	if chatModel == "" {
		chatModel = defaultChatModel
	}
	transcribeModel := opts.TranscribeModel
	if transcribeModel == "" {
		transcribeModel = defaultTranscribeModel
	}

	return &Client{
		api:             goopenai.NewClientWithConfig(clientConfig),
		chatModel:       chatModel,
		transcribeModel: transcribeModel,
		limiter:         newLimiter(opts.RateLimitRPM, opts.RateLimitBurst),
		metrics:         opts.Metrics,
	}, nil
}

// Name identifies the backend in logs and stage reports
func (c *Client) Name() string {
	return providerName
}

// Generate sends the prompt as a single user turn and returns the raw completion text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if err := c.wait(ctx, c.chatModel); err != nil {
		return "", err
	}

	req := goopenai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: extractionSystemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.2,
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		observability.RecordLLMMetric(ctx, c.metrics, providerName, c.chatModel, statusCode(err), time.Since(start), err)
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		err := errors.New("openai response missing output text")
		observability.RecordLLMMetric(ctx, c.metrics, providerName, c.chatModel, 200, time.Since(start), err)
		return "", err
	}

	observability.RecordLLMMetric(ctx, c.metrics, providerName, c.chatModel, 200, time.Since(start), nil)
	return resp.Choices[0].Message.Content, nil
}

// Transcribe uploads the audio file and returns the recognised text.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if err := c.wait(ctx, c.transcribeModel); err != nil {
		return "", err
	}

	start := time.Now()
	resp, err := c.api.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    c.transcribeModel,
		FilePath: audioPath,
	})
	if err != nil {
		observability.RecordLLMMetric(ctx, c.metrics, providerName, c.transcribeModel, statusCode(err), time.Since(start), err)
		return "", fmt.Errorf("openai transcription failed: %w", err)
	}

	observability.RecordLLMMetric(ctx, c.metrics, providerName, c.transcribeModel, 200, time.Since(start), nil)
	return strings.TrimSpace(resp.Text), nil
}

func (c *Client) wait(ctx context.Context, model string) error {
	if c.limiter == nil {
		return nil
	}
	waitStart := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		observability.RecordLLMMetric(ctx, c.metrics, providerName, model, 0, 0, err)
		return err
	}
	observability.RecordLLMRateLimitWait(ctx, c.metrics, providerName, model, time.Since(waitStart))
	return nil
}

func statusCode(err error) int {
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
