package llm

import (
	"context"
	"fmt"
	"sync"

	domainllm "legacybook/internal/domain/services/llm"
)

// ProviderRegistry routes completion requests to the provider that supports
// the requested model. It implements domainllm.TextCompleter so services can
// stay agnostic of which providers are configured.
type ProviderRegistry struct {
	mu        sync.RWMutex
	providers []domainllm.TextProvider
}

// NewProviderRegistry creates an empty registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{}
}

// Register adds a provider. Registration order matters: the first provider
// claiming a model wins.
func (r *ProviderRegistry) Register(p domainllm.TextProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = append(r.providers, p)
}

// ProviderFor returns the provider supporting the given model.
func (r *ProviderRegistry) ProviderFor(model string) (domainllm.TextProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.providers {
		if p.SupportsModel(model) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no provider supports model %q", model)
}

// Complete routes the request to the provider that supports its model.
func (r *ProviderRegistry) Complete(ctx context.Context, req *domainllm.CompletionRequest) (*domainllm.CompletionResponse, error) {
	provider, err := r.ProviderFor(req.Model)
	if err != nil {
		return nil, err
	}
	return provider.Complete(ctx, req)
}
