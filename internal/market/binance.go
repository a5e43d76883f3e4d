package market

import (
	"context"
	"fmt"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"

	"github.com/aegis-lab/aegis-trading/internal/logger"
	"github.com/aegis-lab/aegis-trading/internal/types"
	"github.com/aegis-lab/aegis-trading/pkg/errors"
)

// BinanceProvider reads public Binance spot endpoints. No API key is needed
// for market data.
type BinanceProvider struct {
	client *binance.Client
	logger *logger.Logger
}

var _ Provider = (*BinanceProvider)(nil)

// NewBinanceProvider creates the provider.
func NewBinanceProvider(l *logger.Logger) *BinanceProvider {
	if l == nil {
		l = logger.NewNopLogger()
	}

	return &BinanceProvider{
		client: binance.NewClient("", ""),
		logger: l,
	}
}

// Name implements Provider.
func (p *BinanceProvider) Name() string {
	return "binance"
}

// GetMarketData implements Provider using the 24h ticker statistics.
func (p *BinanceProvider) GetMarketData(ctx context.Context, symbols []string) (map[string]types.MarketSnapshot, error) {
	wanted := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		wanted[s] = true
	}

	stats, err := p.client.NewListPriceChangeStatsService().Do(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataFetch, "binance 24h ticker request failed", err)
	}

	now := time.Now().UTC()
	result := make(map[string]types.MarketSnapshot, len(symbols))

	for _, s := range stats {
		if !wanted[s.Symbol] {
			continue
		}

		snapshot, err := snapshotFromStats(s, now)
		if err != nil {
			p.logger.Warn(fmt.Sprintf("skipping %s: %v", s.Symbol, err))
			continue
		}

		result[s.Symbol] = snapshot
	}

	return result, nil
}

// GetHistoricalData implements Provider via the klines endpoint.
func (p *BinanceProvider) GetHistoricalData(ctx context.Context, symbol string, interval string, limit int) ([]types.Candle, error) {
	klines, err := p.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeHistoricalDataFailed, err, "binance klines request failed for %s", symbol)
	}

	if len(klines) == 0 {
		return nil, errors.NewInsufficientDataError(limit, 0, symbol, "binance returned no klines")
	}

	candles := make([]types.Candle, 0, len(klines))

	for _, k := range klines {
		candle, err := candleFromKline(k)
		if err != nil {
			return nil, err
		}

		candles = append(candles, candle)
	}

	return candles, nil
}

func snapshotFromStats(s *binance.PriceChangeStats, now time.Time) (types.MarketSnapshot, error) {
	price, err := strconv.ParseFloat(s.LastPrice, 64)
	if err != nil {
		return types.MarketSnapshot{}, errors.Wrap(errors.ErrCodeMarketDataFetch, "malformed last price", err)
	}

	changePct, err := strconv.ParseFloat(s.PriceChangePercent, 64)
	if err != nil {
		return types.MarketSnapshot{}, errors.Wrap(errors.ErrCodeMarketDataFetch, "malformed price change", err)
	}

	volume, _ := strconv.ParseFloat(s.Volume, 64)
	high, _ := strconv.ParseFloat(s.HighPrice, 64)
	low, _ := strconv.ParseFloat(s.LowPrice, 64)

	return types.MarketSnapshot{
		Symbol:    s.Symbol,
		Price:     price,
		Change24h: changePct / 100,
		Volume:    volume,
		High24h:   high,
		Low24h:    low,
		Source:    "binance",
		Time:      now,
	}, nil
}

func candleFromKline(k *binance.Kline) (types.Candle, error) {
	open, err1 := strconv.ParseFloat(k.Open, 64)
	high, err2 := strconv.ParseFloat(k.High, 64)
	low, err3 := strconv.ParseFloat(k.Low, 64)
	closePrice, err4 := strconv.ParseFloat(k.Close, 64)
	volume, err5 := strconv.ParseFloat(k.Volume, 64)

	for _, err := range []error{err1, err2, err3, err4, err5} {
		if err != nil {
			return types.Candle{}, errors.Wrap(errors.ErrCodeHistoricalDataFailed, "malformed kline field", err)
		}
	}

	return types.Candle{
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: volume,
		Time:   time.UnixMilli(k.OpenTime).UTC(),
	}, nil
}
