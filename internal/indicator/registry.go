package indicator

import (
	"sync"

	"github.com/aegis-lab/aegis-trading/internal/types"
	"github.com/aegis-lab/aegis-trading/pkg/errors"
)

// IndicatorRegistry manages all available indicators.
type IndicatorRegistry interface {
	RegisterIndicator(indicator Indicator) error
	GetIndicator(name types.IndicatorType) (Indicator, error)
	ListIndicators() []types.IndicatorType
	RemoveIndicator(name types.IndicatorType) error
}

// IndicatorRegistryV1 is the default thread-safe registry implementation.
type IndicatorRegistryV1 struct {
	indicators map[types.IndicatorType]Indicator
	mu         sync.RWMutex
}

// NewIndicatorRegistry creates a new indicator registry.
func NewIndicatorRegistry() IndicatorRegistry {
	return &IndicatorRegistryV1{
		indicators: make(map[types.IndicatorType]Indicator),
		mu:         sync.RWMutex{},
	}
}

// NewDefaultRegistry creates a registry pre-populated with every indicator
// the rule generator consumes, at their default parameters.
func NewDefaultRegistry() (IndicatorRegistry, error) {
	registry := NewIndicatorRegistry()

	for _, ind := range []Indicator{NewRSI(), NewEMA(), NewMACD(), NewBollingerBands(), NewVolume()} {
		if err := registry.RegisterIndicator(ind); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// NewConfiguredRegistry creates the default registry with every indicator
// configured from cfg instead of its built-in defaults.
func NewConfiguredRegistry(cfg SnapshotConfig) (IndicatorRegistry, error) {
	rsi := NewRSI()
	if err := rsi.Config(cfg.RSIPeriod, cfg.RSIOversold, cfg.RSIOverbought); err != nil {
		return nil, err
	}

	ema := NewEMA()
	if err := ema.Config(cfg.EMAShort, cfg.EMALong); err != nil {
		return nil, err
	}

	macd := NewMACD()
	if err := macd.Config(cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal); err != nil {
		return nil, err
	}

	bands := NewBollingerBands()
	if err := bands.Config(cfg.BollingerLen, cfg.BollingerK); err != nil {
		return nil, err
	}

	volume := NewVolume()
	if err := volume.Config(cfg.VolumeMultiplier); err != nil {
		return nil, err
	}

	registry := NewIndicatorRegistry()

	for _, ind := range []Indicator{rsi, ema, macd, bands, volume} {
		if err := registry.RegisterIndicator(ind); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// RegisterIndicator adds an indicator to the registry.
func (r *IndicatorRegistryV1) RegisterIndicator(indicator Indicator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := indicator.Name()
	if _, exists := r.indicators[name]; exists {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "indicator with name %s already registered", name)
	}

	r.indicators[name] = indicator

	return nil
}

// GetIndicator retrieves an indicator by name.
func (r *IndicatorRegistryV1) GetIndicator(name types.IndicatorType) (Indicator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	indicator, exists := r.indicators[name]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator with name %s not found", name)
	}

	return indicator, nil
}

// ListIndicators returns a list of all registered indicator names.
func (r *IndicatorRegistryV1) ListIndicators() []types.IndicatorType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]types.IndicatorType, 0, len(r.indicators))
	for name := range r.indicators {
		names = append(names, name)
	}

	return names
}

// RemoveIndicator removes an indicator from the registry.
func (r *IndicatorRegistryV1) RemoveIndicator(name types.IndicatorType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.indicators[name]; !exists {
		return errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator with name %s not found", name)
	}

	delete(r.indicators, name)

	return nil
}
