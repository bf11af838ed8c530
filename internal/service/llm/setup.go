package llm

import (
	"log/slog"

	"legacybook/internal/config"
	"legacybook/internal/service/llm/providers/anthropic"
	"legacybook/internal/service/llm/providers/lorem"
	"legacybook/internal/service/llm/providers/openai"
)

// SetupProviders builds the provider registry from configuration.
//
// The lorem provider is always registered so "lorem-*" models work in dev
// and tests without API keys. A registry with no real provider is still
// valid: every caller has a defined degraded-output policy when completion
// fails, so a missing key degrades quality instead of breaking requests.
func SetupProviders(cfg *config.Config, logger *slog.Logger) (*ProviderRegistry, error) {
	registry := NewProviderRegistry()

	if cfg.AnthropicAPIKey != "" {
		provider, err := anthropic.NewProvider(cfg.AnthropicAPIKey)
		if err != nil {
			return nil, err
		}
		registry.Register(provider)
		logger.Info("provider available", "name", "anthropic", "models", "claude-*")
	} else {
		logger.Warn("ANTHROPIC_API_KEY not set - Anthropic provider not available")
	}

	if cfg.OpenAIAPIKey != "" {
		registry.Register(openai.NewProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey))
		logger.Info("provider available", "name", "openai", "models", "gpt-*, o*")
	} else {
		logger.Warn("OPENAI_API_KEY not set - OpenAI provider not available")
	}

	registry.Register(lorem.NewProvider())

	return registry, nil
}
