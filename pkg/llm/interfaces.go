// Package llm provides chat-completion clients for OpenAI-compatible and
// Anthropic endpoints behind one interface.
package llm

import (
	"context"
)

// GenerateResponseResult is a single model reply with usage stats.
type GenerateResponseResult struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// LLMClient defines the interface for LLM operations.
// Use this interface for dependency injection to enable mocking in tests.
type LLMClient interface {
	// GenerateResponse sends one system/user message pair and returns the
	// first reply. temperature 0 leaves the provider default in place.
	// jsonMode asks the provider for a JSON object where it supports it.
	GenerateResponse(ctx context.Context, prompt string, systemMessage string, temperature float64, jsonMode bool) (*GenerateResponseResult, error)

	// GetModel returns the configured model name.
	GetModel() string

	// GetEndpoint returns the configured endpoint.
	GetEndpoint() string
}

// Ensure both clients implement LLMClient at compile time.
var (
	_ LLMClient = (*Client)(nil)
	_ LLMClient = (*AnthropicClient)(nil)
)
