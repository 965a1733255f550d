package llm

import (
	"context"
	"fmt"

	"pagewright/internal/config"
)

// NewFromConfig builds the configured provider client.
// Priority: explicit provider in config; "gemini" is the default.
func NewFromConfig(ctx context.Context, cfg *config.Config) (Client, error) {
	switch cfg.LLM.Provider {
	case "", "gemini":
		return NewGeminiClient(ctx, GeminiConfig{
			APIKey: cfg.LLM.APIKey,
			Model:  cfg.LLM.Model,
		})
	case "relay":
		rc := DefaultRelayConfig(cfg.LLM.APIKey)
		if cfg.LLM.BaseURL != "" {
			rc.BaseURL = cfg.LLM.BaseURL
		}
		if cfg.LLM.Model != "" {
			rc.Model = cfg.LLM.Model
		}
		rc.Timeout = cfg.GetLLMTimeout()
		return NewRelayClientWithConfig(rc), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.LLM.Provider)
	}
}
