// Package ai defines the model-collaborator boundary: a provider interface,
// a registry of available providers, and the Gemini-backed adapter. The rest
// of the pipeline never talks to an AI SDK directly.
package ai

import (
	"context"
	"sync"

	"github.com/aegis-lab/aegis-trading/internal/types"
)

// Scope distinguishes routine per-cycle analysis from the slower macro scan.
type Scope string

const (
	ScopeRoutine Scope = "routine"
	ScopeMacro   Scope = "macro"
)

// RiskContext carries the account's risk parameters so the model can frame
// its opinions against the configured targets.
type RiskContext struct {
	DailyProfitTarget float64
	MaxDailyLoss      float64
	MaxPositionPct    float64
}

// MarketContext is the input handed to each model for one analysis call.
type MarketContext struct {
	Snapshots  map[string]types.MarketSnapshot
	Indicators map[string]types.IndicatorSnapshot
	Risk       RiskContext
	Scope      Scope
}

// ModelProvider is one AI model collaborator. Availability is a capability
// flag, not a health check; an available provider may still fail or time
// out, and the caller drops it from that cycle's vote set.
type ModelProvider interface {
	// Name identifies the provider in signal sources and logs.
	Name() string
	// IsAvailable reports whether the provider is configured to serve.
	IsAvailable() bool
	// Analyze produces the model's opinion for the market context. It
	// must honor ctx cancellation.
	Analyze(ctx context.Context, mc MarketContext) (types.ModelAnalysis, error)
}

// Registry holds the configured providers.
type Registry struct {
	mu        sync.RWMutex
	providers []ModelProvider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a provider.
func (r *Registry) Register(p ModelProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers = append(r.providers, p)
}

// Available returns the providers currently able to serve.
func (r *Registry) Available() []ModelProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var available []ModelProvider

	for _, p := range r.providers {
		if p.IsAvailable() {
			available = append(available, p)
		}
	}

	return available
}
