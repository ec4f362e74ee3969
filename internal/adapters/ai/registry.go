package ai

import (
	"context"
	"sort"
	"sync"

	"delphi/pkg/errors"
)

// ProviderRegistry stores all configured chat providers.
type ProviderRegistry struct {
	providers map[ProviderName]ChatProvider
	mu        sync.RWMutex
}

// NewProviderRegistry creates an empty registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[ProviderName]ChatProvider),
	}
}

// Register adds a provider to the registry.
func (r *ProviderRegistry) Register(provider ChatProvider) error {
	if provider == nil {
		return errors.Wrap(errors.ErrInvalidInput, "provider is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := provider.Name()
	if _, exists := r.providers[name]; exists {
		return errors.Wrapf(errors.ErrAlreadyExists, "provider %s already registered", name)
	}

	r.providers[name] = provider
	return nil
}

// Get returns the provider by name.
func (r *ProviderRegistry) Get(name ProviderName) (ChatProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, ok := r.providers[name]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "provider %s not registered", name)
	}

	return provider, nil
}

// MustGet returns the provider by name and panics if missing.
func (r *ProviderRegistry) MustGet(name ProviderName) ChatProvider {
	provider, err := r.Get(name)
	if err != nil {
		panic(err)
	}

	return provider
}

// List returns all registered providers.
func (r *ProviderRegistry) List() []ChatProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]ChatProvider, 0, len(r.providers))
	for _, p := range r.providers {
		providers = append(providers, p)
	}

	return providers
}

// Names returns the registered provider names in sorted order.
func (r *ProviderRegistry) Names() []ProviderName {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]ProviderName, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	return names
}

// ListModels aggregates all models across providers.
func (r *ProviderRegistry) ListModels(ctx context.Context) (map[ProviderName][]ModelInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[ProviderName][]ModelInfo, len(r.providers))
	for name, provider := range r.providers {
		models, err := provider.ListModels(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "list models for provider %s", name)
		}
		result[name] = models
	}

	return result, nil
}

// ResolveModel fetches model metadata for a provider+model combination.
func (r *ProviderRegistry) ResolveModel(ctx context.Context, provider ProviderName, model string) (ModelInfo, error) {
	p, err := r.Get(provider)
	if err != nil {
		return ModelInfo{}, err
	}

	return p.GetModel(ctx, model)
}
