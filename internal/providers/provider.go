// Package providers implements the remote completion service client.
package providers

import "context"

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// CompletionClient sends a structured conversation to a completion service
// and returns the first choice's content. Implementations are immutable
// after construction and safe for concurrent use by many chapter workers.
type CompletionClient interface {
	// Complete sends messages with the given sampling temperature and
	// returns the reply text.
	Complete(ctx context.Context, messages []Message, temperature float64) (string, error)

	// Name returns the client identifier (e.g., "openrouter").
	Name() string
}
