package providers

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	OpenRouterName    = "openrouter"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
)

// OpenRouterConfig holds configuration for the OpenRouter client.
type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	Model   string

	// MaxElapsedTime bounds one Complete call including all retries
	// (default: 300s).
	MaxElapsedTime time.Duration

	// Retry policy
	MaxRetries int           // Max attempts per request (default: 3)
	RetryDelay time.Duration // Base backoff delay (default: 1s)

	// RPS caps outbound request starts (default: 2).
	RPS float64
}

// OpenRouterClient implements CompletionClient against the OpenRouter
// chat-completions API. It holds no mutable state after construction.
type OpenRouterClient struct {
	apiKey         string
	baseURL        string
	model          string
	client         *http.Client
	limiter        *rate.Limiter
	maxRetries     int
	retryDelay     time.Duration
	maxElapsedTime time.Duration
}

// NewOpenRouterClient creates a new OpenRouter client.
func NewOpenRouterClient(cfg OpenRouterConfig) *OpenRouterClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = OpenRouterBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "anthropic/claude-3.5-sonnet"
	}
	if cfg.MaxElapsedTime == 0 {
		cfg.MaxElapsedTime = 300 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.RPS == 0 {
		cfg.RPS = 2.0
	}

	return &OpenRouterClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client: &http.Client{
			Timeout: cfg.MaxElapsedTime,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter:        rate.NewLimiter(rate.Limit(cfg.RPS), 1),
		maxRetries:     cfg.MaxRetries,
		retryDelay:     cfg.RetryDelay,
		maxElapsedTime: cfg.MaxElapsedTime,
	}
}

// Name returns the client identifier.
func (c *OpenRouterClient) Name() string { return OpenRouterName }

// Model returns the configured model identifier.
func (c *OpenRouterClient) Model() string { return c.model }

// Complete sends one chat-completions request and returns the first
// choice's content. The whole call, retries included, is bounded by
// MaxElapsedTime.
func (c *OpenRouterClient) Complete(ctx context.Context, messages []Message, temperature float64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.maxElapsedTime)
	defer cancel()

	resp, err := c.doRequest(ctx, "/chat/completions", &openRouterRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Message.Content, nil
}
