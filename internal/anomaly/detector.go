// Package anomaly implements the pump/dump detector. It keeps a small
// rolling per-symbol volume history and a short record of past detections,
// both guarded for the single-writer-per-symbol evaluation model.
package anomaly

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/moznion/go-optional"

	"github.com/aegis-lab/aegis-trading/internal/config"
	"github.com/aegis-lab/aegis-trading/internal/logger"
	"github.com/aegis-lab/aegis-trading/internal/types"
)

// maxVolumeSamples bounds the rolling per-symbol volume history.
const maxVolumeSamples = 24

// maxAnomalyConfidence caps the simple anomaly confidence.
const maxAnomalyConfidence = 0.9

// Pump score weights.
const (
	scorePriceThreshold  = 0.4
	scoreVolumeThreshold = 0.3
	scoreSustainedMove   = 0.2
	scoreVolumeTrend     = 0.1
)

// Detector scans market snapshots for abnormal moves.
type Detector struct {
	cfg    config.PumpConfig
	logger *logger.Logger
	clock  func() time.Time

	mu      sync.Mutex
	volumes map[string][]float64
	pumps   []types.PumpEvent
}

// NewDetector creates a detector with the given thresholds.
func NewDetector(cfg config.PumpConfig, l *logger.Logger) *Detector {
	if l == nil {
		l = logger.NewNopLogger()
	}

	return &Detector{
		cfg:     cfg,
		logger:  l,
		clock:   func() time.Time { return time.Now().UTC() },
		volumes: make(map[string][]float64),
	}
}

// ObserveVolume appends one volume sample to the symbol's rolling history.
// Call it after DetectAnomaly and DetectPump for the same cycle: the ratio
// compares the current volume against prior samples only, so a spike must
// not enter its own baseline.
func (d *Detector) ObserveVolume(symbol string, volume float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	history := append(d.volumes[symbol], volume)
	if len(history) > maxVolumeSamples {
		history = history[len(history)-maxVolumeSamples:]
	}

	d.volumes[symbol] = history
}

// DetectAnomaly fires when both the 24h price move and the volume ratio
// exceed their thresholds. An unmet threshold returns None, never an error.
func (d *Detector) DetectAnomaly(snapshot types.MarketSnapshot) optional.Option[types.Anomaly] {
	change := snapshot.Change24h
	if math.Abs(change) <= d.cfg.PriceThreshold {
		return optional.None[types.Anomaly]()
	}

	volRatio := d.volumeRatio(snapshot.Symbol, snapshot.Volume)
	if volRatio <= d.cfg.VolumeThreshold {
		return optional.None[types.Anomaly]()
	}

	anomalyType := types.AnomalyTypePump
	if change < 0 {
		anomalyType = types.AnomalyTypeDump
	}

	priceRatio := math.Abs(change) / d.cfg.PriceThreshold
	confidence := math.Min(maxAnomalyConfidence, (priceRatio+volRatio/d.cfg.VolumeThreshold)/2)

	d.logger.Info(fmt.Sprintf("anomaly on %s: %s %.1f%% at %.1fx volume", snapshot.Symbol, anomalyType, change*100, volRatio))

	return optional.Some(types.Anomaly{
		Symbol:      snapshot.Symbol,
		Type:        anomalyType,
		PriceChange: change,
		VolumeRatio: volRatio,
		Price:       snapshot.Price,
		Confidence:  confidence,
		Time:        snapshot.Time,
	})
}

// DetectPump scores a candidate pump over the resampled candle window.
// Suppressed candidates and repeats within the suppression window return
// None. The series must be ordered oldest to newest.
func (d *Detector) DetectPump(snapshot types.MarketSnapshot, series *types.PriceSeries) optional.Option[types.PumpEvent] {
	if series == nil || series.Len() == 0 {
		return optional.None[types.PumpEvent]()
	}

	now := d.clock()

	d.mu.Lock()
	d.purgeLocked(now)

	if d.suppressedLocked(snapshot.Symbol, now) {
		d.mu.Unlock()
		return optional.None[types.PumpEvent]()
	}
	d.mu.Unlock()

	closes := series.Closes()
	volumes := series.Volumes()

	change15m := windowChange(closes, 1)
	change1h := windowChange(closes, 4)
	trend := volumeTrend(volumes)
	volRatio := d.volumeRatio(snapshot.Symbol, snapshot.Volume)

	criteria := types.PumpCriteria{
		PriceThreshold:  change15m >= d.cfg.PriceThreshold,
		VolumeThreshold: volRatio >= d.cfg.VolumeThreshold,
		Reasonable24h:   math.Abs(snapshot.Change24h) <= 0.30,
		VolumeTrendOK:   trend != types.VolumeTrendDecreasing,
	}

	var score float64

	if criteria.PriceThreshold {
		score += scorePriceThreshold
	}

	if criteria.VolumeThreshold {
		score += scoreVolumeThreshold
	}

	// A real pump sustains: the 1h move should carry at least half of the
	// 15m move.
	if change15m > 0 && change1h >= change15m*0.5 {
		score += scoreSustainedMove
	}

	if criteria.VolumeTrendOK {
		score += scoreVolumeTrend
	}

	var class types.PumpClass

	switch {
	case score >= 0.6 && criteria.PriceThreshold && criteria.VolumeThreshold:
		class = types.PumpClassStrong
	case score >= 0.4 && (criteria.PriceThreshold || volRatio > 2.0):
		class = types.PumpClassModerate
	default:
		return optional.None[types.PumpEvent]()
	}

	event := types.PumpEvent{
		Symbol:         snapshot.Symbol,
		Class:          class,
		Confidence:     score,
		Score:          score,
		PriceChange15m: change15m,
		PriceChange1h:  change1h,
		VolumeRatio:    volRatio,
		VolumeTrend:    trend,
		RiskFactors:    d.riskFactors(change15m, change1h, snapshot.Change24h, volRatio, trend, now),
		CriteriaMet:    criteria,
		DetectedAt:     now,
	}

	d.mu.Lock()
	d.pumps = append(d.pumps, event)
	d.mu.Unlock()

	d.logger.Info(fmt.Sprintf("pump on %s: %s score %.2f (%.1f%% / %.1fx)", snapshot.Symbol, class, score, change15m*100, volRatio))

	return optional.Some(event)
}

// Stats summarizes the retained pump history.
func (d *Detector) Stats() types.PumpStats {
	d.mu.Lock()
	defer d.mu.Unlock()

	stats := types.PumpStats{
		PumpTypes: make(map[types.PumpClass]int),
	}

	if len(d.pumps) == 0 {
		return stats
	}

	counts := make(map[string]int)

	var confidenceSum float64

	for _, p := range d.pumps {
		stats.TotalPumps++
		stats.PumpTypes[p.Class]++
		confidenceSum += p.Confidence
		counts[p.Symbol]++
	}

	stats.AvgConfidence = confidenceSum / float64(stats.TotalPumps)

	symbols := make([]string, 0, len(counts))
	for s := range counts {
		symbols = append(symbols, s)
	}

	sort.Slice(symbols, func(i, j int) bool {
		if counts[symbols[i]] != counts[symbols[j]] {
			return counts[symbols[i]] > counts[symbols[j]]
		}

		return symbols[i] < symbols[j]
	})

	if len(symbols) > 3 {
		symbols = symbols[:3]
	}

	stats.MostActiveSymbols = symbols

	return stats
}

// volumeRatio compares the current volume to the mean of the recorded
// history. The current sample must not be in the history yet.
func (d *Detector) volumeRatio(symbol string, current float64) float64 {
	d.mu.Lock()
	history := d.volumes[symbol]
	d.mu.Unlock()

	if len(history) == 0 {
		return 1.0
	}

	var sum float64
	for _, v := range history {
		sum += v
	}

	avg := sum / float64(len(history))
	if avg <= 0 {
		return 1.0
	}

	return current / avg
}

// suppressedLocked reports whether a pump for the symbol was already
// recorded within the suppression window. Callers hold d.mu.
func (d *Detector) suppressedLocked(symbol string, now time.Time) bool {
	for _, p := range d.pumps {
		if p.Symbol == symbol && now.Sub(p.DetectedAt) < d.cfg.SuppressionWindow {
			return true
		}
	}

	return false
}

// purgeLocked drops records older than the retention window. Callers hold d.mu.
func (d *Detector) purgeLocked(now time.Time) {
	kept := d.pumps[:0]

	for _, p := range d.pumps {
		if now.Sub(p.DetectedAt) <= d.cfg.RetentionWindow {
			kept = append(kept, p)
		}
	}

	d.pumps = kept
}

// riskFactors attaches qualitative warnings to a scored pump.
func (d *Detector) riskFactors(change15m, change1h, change24h, volRatio float64, trend types.VolumeTrend, now time.Time) []string {
	var factors []string

	if change15m > 0.20 {
		factors = append(factors, "extreme 15m move")
	}

	if change1h > change15m*2 {
		factors = append(factors, "accelerating pump")
	}

	if math.Abs(change24h) > 0.30 {
		factors = append(factors, "already large 24h move")
	}

	if volRatio > 10 {
		factors = append(factors, "extreme volume spike")
	}

	if trend == types.VolumeTrendDecreasing {
		factors = append(factors, "decreasing volume trend")
	}

	hour := now.UTC().Hour()
	if hour < 6 || hour >= 22 {
		factors = append(factors, "low activity hours")
	}

	return factors
}

// windowChange returns the fractional move over the last n candles, where n
// candles back defines the reference close.
func windowChange(closes []float64, n int) float64 {
	if len(closes) < n+1 {
		return 0
	}

	ref := closes[len(closes)-1-n]
	if ref == 0 {
		return 0
	}

	return (closes[len(closes)-1] - ref) / ref
}

// volumeTrend compares the mean of the last 6 samples against the prior 6.
func volumeTrend(volumes []float64) types.VolumeTrend {
	if len(volumes) < 12 {
		return types.VolumeTrendUnknown
	}

	recent := volumes[len(volumes)-6:]
	prior := volumes[len(volumes)-12 : len(volumes)-6]

	var recentSum, priorSum float64

	for _, v := range recent {
		recentSum += v
	}

	for _, v := range prior {
		priorSum += v
	}

	recentMean := recentSum / 6
	priorMean := priorSum / 6

	switch {
	case priorMean == 0:
		return types.VolumeTrendUnknown
	case recentMean > priorMean*1.2:
		return types.VolumeTrendIncreasing
	case recentMean < priorMean*0.8:
		return types.VolumeTrendDecreasing
	default:
		return types.VolumeTrendStable
	}
}
