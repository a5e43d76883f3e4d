// Package market is the market-data collaborator boundary. Adapters
// translate exchange payloads into snapshots and candle series; the rest of
// the pipeline never sees an exchange SDK type.
package market

import (
	"context"

	"github.com/aegis-lab/aegis-trading/internal/config"
	"github.com/aegis-lab/aegis-trading/internal/logger"
	"github.com/aegis-lab/aegis-trading/internal/types"
	"github.com/aegis-lab/aegis-trading/pkg/errors"
)

// Provider fetches live and historical market data.
type Provider interface {
	// GetMarketData returns the current snapshot for each requested
	// symbol. Symbols the venue does not know are simply absent from the
	// result; the caller degrades per symbol.
	GetMarketData(ctx context.Context, symbols []string) (map[string]types.MarketSnapshot, error)
	// GetHistoricalData returns up to limit candles ordered oldest to
	// newest.
	GetHistoricalData(ctx context.Context, symbol string, interval string, limit int) ([]types.Candle, error)
	// Name identifies the venue in snapshots and logs.
	Name() string
}

// NewProvider builds the configured provider.
func NewProvider(cfg config.MarketConfig, l *logger.Logger) (Provider, error) {
	switch cfg.Provider {
	case "binance":
		return NewBinanceProvider(l), nil
	case "polygon":
		return NewPolygonProvider(cfg.PolygonAPIKey, l)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unknown market data provider %q", cfg.Provider)
	}
}
