package ai

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimiter controls request pacing toward a provider API.
type RateLimiter interface {
	// Wait blocks until a request slot is available or ctx is done.
	Wait(ctx context.Context) error

	// Allow reports whether a request may proceed right now.
	Allow() bool

	// Limit returns the configured requests per minute, -1 when unlimited.
	Limit() float64
}

// RateLimitConfig describes limiter settings for one provider.
type RateLimitConfig struct {
	Enabled      bool
	ReqPerMinute float64
	Burst        int
}

// DefaultRateLimits returns conservative per-provider defaults matching
// the public API tiers. DeepSeek does not publish rate limits.
func DefaultRateLimits() map[ProviderName]RateLimitConfig {
	return map[ProviderName]RateLimitConfig{
		ProviderNameGemini:   {Enabled: true, ReqPerMinute: 60, Burst: 10},
		ProviderNameOpenAI:   {Enabled: true, ReqPerMinute: 500, Burst: 50},
		ProviderNameClaude:   {Enabled: true, ReqPerMinute: 50, Burst: 5},
		ProviderNameDeepSeek: {Enabled: false},
	}
}

// GetRateLimiter builds a limiter for the provider from config. Disabled
// or zero-rate configs produce a NoOpLimiter.
func GetRateLimiter(provider ProviderName, cfg RateLimitConfig) RateLimiter {
	if !cfg.Enabled || cfg.ReqPerMinute <= 0 {
		return NewNoOpLimiter()
	}
	return NewTokenBucketLimiter(provider, cfg.ReqPerMinute, cfg.Burst)
}

// TokenBucketLimiter enforces a requests-per-minute budget with bursting.
type TokenBucketLimiter struct {
	provider ProviderName
	limiter  *rate.Limiter
	perMin   float64
}

// NewTokenBucketLimiter creates a limiter allowing reqPerMinute sustained
// requests with the given burst size.
func NewTokenBucketLimiter(provider ProviderName, reqPerMinute float64, burst int) *TokenBucketLimiter {
	if burst < 1 {
		burst = 1
	}
	return &TokenBucketLimiter{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(reqPerMinute/60.0), burst),
		perMin:   reqPerMinute,
	}
}

// Wait blocks until a slot is available or ctx is cancelled.
func (l *TokenBucketLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether a request may proceed without waiting.
func (l *TokenBucketLimiter) Allow() bool {
	return l.limiter.Allow()
}

// Limit returns the configured requests per minute.
func (l *TokenBucketLimiter) Limit() float64 {
	return l.perMin
}

// NoOpLimiter never blocks.
type NoOpLimiter struct{}

// NewNoOpLimiter creates a limiter that always allows requests.
func NewNoOpLimiter() *NoOpLimiter {
	return &NoOpLimiter{}
}

// Wait returns immediately.
func (l *NoOpLimiter) Wait(_ context.Context) error { return nil }

// Allow always reports true.
func (l *NoOpLimiter) Allow() bool { return true }

// Limit returns -1 to signal no limit.
func (l *NoOpLimiter) Limit() float64 { return -1 }

// RateLimitError signals that a request was rejected or interrupted while
// waiting for a rate limit slot.
type RateLimitError struct {
	Provider ProviderName
	Limit    float64
	Err      error
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit for provider %s (%.0f req/min): %v", e.Provider, e.Limit, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *RateLimitError) Unwrap() error {
	return e.Err
}
