package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/proposal-relay/pkg/config"
)

// NewFromConfig creates the LLM client selected by the rating configuration.
func NewFromConfig(cfg config.RatingConfig, logger *zap.Logger) (LLMClient, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		return NewClient(&Config{
			Endpoint: cfg.Endpoint,
			Model:    cfg.Model,
			APIKey:   cfg.OpenAIAPIKey,
		}, logger)
	case config.ProviderAnthropic:
		endpoint := cfg.Endpoint
		// The OpenAI default endpoint is meaningless for Anthropic.
		if endpoint == "https://api.openai.com/v1" {
			endpoint = ""
		}
		return NewAnthropicClient(&AnthropicConfig{
			Endpoint:  endpoint,
			Model:     cfg.Model,
			APIKey:    cfg.AnthropicAPIKey,
			MaxTokens: cfg.MaxTokens,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown rating provider %q", cfg.Provider)
	}
}
