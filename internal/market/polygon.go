package market

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/aegis-lab/aegis-trading/internal/logger"
	"github.com/aegis-lab/aegis-trading/internal/types"
	"github.com/aegis-lab/aegis-trading/pkg/errors"
)

// PolygonProvider reads Polygon aggregate endpoints. Snapshots are built
// from the last two daily aggregates since Polygon has no direct 24h ticker.
type PolygonProvider struct {
	client *polygon.Client
	logger *logger.Logger
	clock  func() time.Time
}

var _ Provider = (*PolygonProvider)(nil)

// NewPolygonProvider creates the provider. The API key is required.
func NewPolygonProvider(apiKey string, l *logger.Logger) (*PolygonProvider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "polygon api key is required")
	}

	if l == nil {
		l = logger.NewNopLogger()
	}

	return &PolygonProvider{
		client: polygon.New(apiKey),
		logger: l,
		clock:  func() time.Time { return time.Now().UTC() },
	}, nil
}

// Name implements Provider.
func (p *PolygonProvider) Name() string {
	return "polygon"
}

// GetMarketData implements Provider.
func (p *PolygonProvider) GetMarketData(ctx context.Context, symbols []string) (map[string]types.MarketSnapshot, error) {
	now := p.clock()
	result := make(map[string]types.MarketSnapshot, len(symbols))

	for _, symbol := range symbols {
		snapshot, err := p.snapshot(ctx, symbol, now)
		if err != nil {
			// One unknown or failing symbol must not sink the batch.
			p.logger.Warn(fmt.Sprintf("polygon snapshot failed for %s: %v", symbol, err))
			continue
		}

		result[symbol] = snapshot
	}

	return result, nil
}

func (p *PolygonProvider) snapshot(ctx context.Context, symbol string, now time.Time) (types.MarketSnapshot, error) {
	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(now.AddDate(0, 0, -3)),
		To:         models.Millis(now),
	}.WithLimit(4)

	var days []models.Agg

	iter := p.client.ListAggs(ctx, params)
	for iter.Next() {
		days = append(days, iter.Item())
	}

	if err := iter.Err(); err != nil {
		return types.MarketSnapshot{}, errors.Wrapf(errors.ErrCodeMarketDataFetch, err, "polygon aggs request failed for %s", symbol)
	}

	if len(days) == 0 {
		return types.MarketSnapshot{}, errors.Newf(errors.ErrCodeMarketDataMissing, "no aggregates for %s", symbol)
	}

	latest := days[len(days)-1]
	snapshot := types.MarketSnapshot{
		Symbol:  symbol,
		Price:   latest.Close,
		Volume:  latest.Volume,
		High24h: latest.High,
		Low24h:  latest.Low,
		Source:  "polygon",
		Time:    now,
	}

	if len(days) > 1 {
		prev := days[len(days)-2]
		if prev.Close > 0 {
			snapshot.Change24h = (latest.Close - prev.Close) / prev.Close
		}

		if prev.Volume > 0 {
			snapshot.VolumeChange24h = (latest.Volume - prev.Volume) / prev.Volume
		}
	}

	return snapshot, nil
}

// GetHistoricalData implements Provider.
func (p *PolygonProvider) GetHistoricalData(ctx context.Context, symbol string, interval string, limit int) ([]types.Candle, error) {
	multiplier, timespan, err := parseInterval(interval)
	if err != nil {
		return nil, err
	}

	span := time.Duration(multiplier) * spanUnit(timespan) * time.Duration(limit+1)
	now := p.clock()

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: multiplier,
		Timespan:   timespan,
		From:       models.Millis(now.Add(-span)),
		To:         models.Millis(now),
	}.WithLimit(50000)

	var candles []types.Candle

	iter := p.client.ListAggs(ctx, params)
	for iter.Next() {
		agg := iter.Item()
		candles = append(candles, types.Candle{
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
			Time:   time.Time(agg.Timestamp).UTC(),
		})
	}

	if err := iter.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeHistoricalDataFailed, err, "polygon aggs request failed for %s", symbol)
	}

	if len(candles) == 0 {
		return nil, errors.NewInsufficientDataError(limit, 0, symbol, "polygon returned no aggregates")
	}

	if len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}

	return candles, nil
}

// parseInterval maps interval strings like "15m" or "1h" onto Polygon's
// multiplier and timespan pair.
func parseInterval(interval string) (int, models.Timespan, error) {
	if interval == "" {
		return 15, models.Minute, nil
	}

	unit := interval[len(interval)-1]

	var multiplier int
	if _, err := fmt.Sscanf(interval[:len(interval)-1], "%d", &multiplier); err != nil || multiplier <= 0 {
		return 0, "", errors.Newf(errors.ErrCodeInvalidConfiguration, "unparseable interval %q", interval)
	}

	switch unit {
	case 'm':
		return multiplier, models.Minute, nil
	case 'h':
		return multiplier, models.Hour, nil
	case 'd':
		return multiplier, models.Day, nil
	default:
		return 0, "", errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported interval unit in %q", interval)
	}
}

func spanUnit(timespan models.Timespan) time.Duration {
	switch timespan {
	case models.Hour:
		return time.Hour
	case models.Day:
		return 24 * time.Hour
	default:
		return time.Minute
	}
}
