package llm

import "context"

// TextProvider defines the interface that all text-completion providers must
// implement. The abstraction allows supporting multiple providers (Anthropic,
// OpenAI-compatible, mock) behind a consistent interface.
type TextProvider interface {
	// Complete generates a single text completion for the given prompt.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name (e.g., "anthropic", "openai", "lorem")
	Name() string

	// SupportsModel returns true if the provider supports the given model.
	SupportsModel(model string) bool
}

// TextCompleter is the narrow interface consumed by the analyzer, generator,
// verifier and regenerator. The provider registry implements it by routing
// on the requested model.
type TextCompleter interface {
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}

// CompletionRequest contains the parameters for a text-completion request.
type CompletionRequest struct {
	// Model is the model identifier (e.g., "claude-haiku-4-5-20251001", "gpt-4o-mini")
	Model string

	// Prompt is the full instruction text sent as a single user message.
	Prompt string

	// MaxTokens bounds the completion length. Zero means provider default.
	MaxTokens int

	// Temperature overrides the sampling temperature when non-nil.
	Temperature *float64
}

// CompletionResponse contains the provider's completion.
type CompletionResponse struct {
	// Text is the completion content with no provider framing.
	Text string

	// Model is the model that was used (may differ from request if aliased)
	Model string

	// InputTokens / OutputTokens are provider-reported usage, zero when unknown.
	InputTokens  int
	OutputTokens int
}
