package types

import "time"

// Candle is a single OHLCV bar, ordered oldest to newest inside a PriceSeries.
type Candle struct {
	Time   time.Time `json:"time" csv:"time"`
	Open   float64   `json:"open" csv:"open"`
	High   float64   `json:"high" csv:"high"`
	Low    float64   `json:"low" csv:"low"`
	Close  float64   `json:"close" csv:"close"`
	Volume float64   `json:"volume" csv:"volume"`
}

// MarketSnapshot is the per-symbol spot view delivered by a market data provider.
type MarketSnapshot struct {
	Symbol          string    `json:"symbol"`
	Price           float64   `json:"price"`
	Change24h       float64   `json:"change_24h"`
	Volume          float64   `json:"volume"`
	High24h         float64   `json:"high_24h"`
	Low24h          float64   `json:"low_24h"`
	VolumeChange24h float64   `json:"volume_change_24h"`
	Source          string    `json:"source"`
	Time            time.Time `json:"timestamp"`
}

// PriceSeries is a bounded, append-only sequence of candles for one symbol.
// Appending beyond the bound drops the oldest candles.
type PriceSeries struct {
	Symbol  string
	candles []Candle
	maxLen  int
}

// DefaultSeriesBound is the default maximum number of candles kept per symbol.
const DefaultSeriesBound = 500

// NewPriceSeries creates an empty bounded series. A maxLen of zero or less
// falls back to DefaultSeriesBound.
func NewPriceSeries(symbol string, maxLen int) *PriceSeries {
	if maxLen <= 0 {
		maxLen = DefaultSeriesBound
	}

	return &PriceSeries{
		Symbol:  symbol,
		candles: make([]Candle, 0, maxLen),
		maxLen:  maxLen,
	}
}

// Append adds candles in order, evicting from the front once the bound is hit.
func (s *PriceSeries) Append(candles ...Candle) {
	s.candles = append(s.candles, candles...)
	if len(s.candles) > s.maxLen {
		s.candles = s.candles[len(s.candles)-s.maxLen:]
	}
}

// Len returns the number of candles currently held.
func (s *PriceSeries) Len() int {
	return len(s.candles)
}

// Candles returns the underlying candles, oldest first. Callers must not mutate.
func (s *PriceSeries) Candles() []Candle {
	return s.candles
}

// Closes returns the close prices, oldest first.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.candles))
	for i, c := range s.candles {
		closes[i] = c.Close
	}

	return closes
}

// Volumes returns the volumes, oldest first.
func (s *PriceSeries) Volumes() []float64 {
	volumes := make([]float64, len(s.candles))
	for i, c := range s.candles {
		volumes[i] = c.Volume
	}

	return volumes
}

// LastClose returns the most recent close price, or zero for an empty series.
func (s *PriceSeries) LastClose() float64 {
	if len(s.candles) == 0 {
		return 0
	}

	return s.candles[len(s.candles)-1].Close
}
