package ai

import (
	"context"
)

// ModelInfo describes a single model exposed by a provider.
type ModelInfo struct {
	Provider        ProviderName
	Name            string
	Family          string
	ContextWindow   int
	MaxOutputTokens int
	InputCostPer1K  float64
	OutputCostPer1K float64
	// SupportsJSON reports whether the provider can enforce JSON output
	// natively (response schema or JSON mode) for this model.
	SupportsJSON bool
}

// Provider exposes model metadata for a single LLM vendor.
type Provider interface {
	// Name returns the canonical provider name.
	Name() ProviderName

	// GetModel returns metadata for the given model. Lookup is
	// case-insensitive. Returns errors.ErrNotFound when unknown.
	GetModel(ctx context.Context, model string) (ModelInfo, error)

	// ListModels returns every model this provider exposes.
	ListModels(ctx context.Context) ([]ModelInfo, error)
}
