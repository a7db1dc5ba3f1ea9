package providers

import (
	"context"
	"sync/atomic"
)

const MockClientName = "mock"

// MockClient is a CompletionClient for testing.
type MockClient struct {
	// Responses are returned in order; the last entry repeats once the
	// slice is exhausted. Ignored when Respond is set.
	Responses []string

	// Respond, when set, computes the reply from the request.
	Respond func(messages []Message, temperature float64) (string, error)

	// Err, when set, is returned on every call.
	Err error

	requestCount atomic.Int64
}

// NewMockClient creates a mock client that echoes a fixed reply.
func NewMockClient(responses ...string) *MockClient {
	if len(responses) == 0 {
		responses = []string{"mock response"}
	}
	return &MockClient{Responses: responses}
}

// Name returns the client identifier.
func (c *MockClient) Name() string { return MockClientName }

// RequestCount returns how many Complete calls were made.
func (c *MockClient) RequestCount() int {
	return int(c.requestCount.Load())
}

// Complete returns the configured reply or error.
func (c *MockClient) Complete(ctx context.Context, messages []Message, temperature float64) (string, error) {
	n := c.requestCount.Add(1)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.Err != nil {
		return "", c.Err
	}
	if c.Respond != nil {
		return c.Respond(messages, temperature)
	}
	idx := int(n - 1)
	if idx >= len(c.Responses) {
		idx = len(c.Responses) - 1
	}
	return c.Responses[idx], nil
}
