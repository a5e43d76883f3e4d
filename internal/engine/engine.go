// Package engine orchestrates one evaluation cycle: fetch market data, run
// indicators and rules per symbol, fan out to AI models, aggregate, gate
// through risk and hand the results to notification and history.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/aegis-lab/aegis-trading/internal/ai"
	"github.com/aegis-lab/aegis-trading/internal/anomaly"
	"github.com/aegis-lab/aegis-trading/internal/config"
	"github.com/aegis-lab/aegis-trading/internal/consensus"
	"github.com/aegis-lab/aegis-trading/internal/indicator"
	"github.com/aegis-lab/aegis-trading/internal/logger"
	"github.com/aegis-lab/aegis-trading/internal/market"
	"github.com/aegis-lab/aegis-trading/internal/notify"
	"github.com/aegis-lab/aegis-trading/internal/risk"
	"github.com/aegis-lab/aegis-trading/internal/rule"
	"github.com/aegis-lab/aegis-trading/internal/scheduler"
	"github.com/aegis-lab/aegis-trading/internal/types"
)

// Recorder is the slice of the history store the engine writes to.
type Recorder interface {
	RecordSignal(signal types.ConsensusSignal)
	RecordTrade(position types.Position)
	RecordPump(event types.PumpEvent)
	RecordAnomaly(anomaly types.Anomaly)
}

// Engine drives the signal pipeline.
type Engine struct {
	cfg    config.Config
	logger *logger.Logger

	provider   market.Provider
	models     *ai.Registry
	generator  *rule.RuleSignalGenerator
	detector   *anomaly.Detector
	aggregator *consensus.Aggregator
	guard      *risk.Guard
	sched      *scheduler.Scheduler
	notifier   notify.Notifier
	recorder   Recorder

	mu     sync.Mutex
	series map[string]*types.PriceSeries
	// symbolLocks serializes evaluation per symbol; distinct symbols run
	// concurrently.
	symbolLocks map[string]*sync.Mutex
}

// NewEngine wires a pipeline from its collaborators. A nil recorder or
// notifier degrades to no-ops for the respective concern.
func NewEngine(
	cfg config.Config,
	l *logger.Logger,
	provider market.Provider,
	models *ai.Registry,
	guard *risk.Guard,
	sched *scheduler.Scheduler,
	notifier notify.Notifier,
	recorder Recorder,
) *Engine {
	if l == nil {
		l = logger.NewNopLogger()
	}

	if notifier == nil {
		notifier = notify.NewLogNotifier(l)
	}

	return &Engine{
		cfg:         cfg,
		logger:      l,
		provider:    provider,
		models:      models,
		generator:   rule.NewRuleSignalGenerator(cfg.Indicator, l),
		detector:    anomaly.NewDetector(cfg.Pump, l),
		aggregator:  consensus.NewAggregator(cfg.Consensus, cfg.Risk, l),
		guard:       guard,
		sched:       sched,
		notifier:    notifier,
		recorder:    recorder,
		series:      make(map[string]*types.PriceSeries),
		symbolLocks: make(map[string]*sync.Mutex),
	}
}

// Guard exposes the risk guard for the status API.
func (e *Engine) Guard() *risk.Guard {
	return e.guard
}

// Detector exposes the anomaly detector for the status API.
func (e *Engine) Detector() *anomaly.Detector {
	return e.detector
}

// Run evaluates on the configured scan interval until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.Pump.ScanInterval)
	defer ticker.Stop()

	for {
		if err := e.RunCycle(ctx); err != nil {
			e.logger.Error("cycle failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunCycle executes one full evaluation over all configured symbols. A
// market data failure aborts the cycle; any per-symbol failure is isolated.
func (e *Engine) RunCycle(ctx context.Context) error {
	snapshots, err := e.provider.GetMarketData(ctx, e.cfg.Symbols)
	if err != nil {
		return err
	}

	e.refreshSeries(ctx, snapshots)

	// Model fan-out runs on the hourly cadence; intermediate cycles vote
	// with rule and anomaly sources only.
	var analyses []types.ModelAnalysis
	if e.sched.ShouldRunHourly() {
		analyses = e.collectAnalyses(ctx, snapshots)
	}

	var wg sync.WaitGroup

	for _, symbol := range e.cfg.Symbols {
		snapshot, ok := snapshots[symbol]
		if !ok {
			e.logger.Warn("no market data this cycle", zap.String("symbol", symbol))
			continue
		}

		wg.Add(1)

		go func(symbol string, snapshot types.MarketSnapshot) {
			defer wg.Done()
			e.evaluateSymbol(snapshot, analyses)
		}(symbol, snapshot)
	}

	wg.Wait()

	e.sweepPositions(snapshots)

	return nil
}

// evaluateSymbol runs the full per-symbol path under the symbol's lock.
// Panics are confined to the symbol.
func (e *Engine) evaluateSymbol(snapshot types.MarketSnapshot, analyses []types.ModelAnalysis) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("symbol evaluation panicked",
				zap.String("symbol", snapshot.Symbol),
				zap.Any("panic", r))
		}
	}()

	lock := e.symbolLock(snapshot.Symbol)
	lock.Lock()
	defer lock.Unlock()

	series := e.seriesFor(snapshot.Symbol)

	anomalySignal := optional.None[types.Signal]()

	if anomalyHit, err := e.detector.DetectAnomaly(snapshot).Take(); err == nil {
		anomalySignal = optional.Some(anomaly.AsSignal(anomalyHit))
		e.notifier.NotifyAnomaly(anomalyHit)

		if e.recorder != nil {
			e.recorder.RecordAnomaly(anomalyHit)
		}
	}

	if pump, err := e.detector.DetectPump(snapshot, series).Take(); err == nil {
		e.notifier.NotifyPump(pump)

		if e.recorder != nil {
			e.recorder.RecordPump(pump)
		}
	}

	// The volume sample only joins the baseline after detection, so a spike
	// cannot dilute the ratio it is judged by.
	e.detector.ObserveVolume(snapshot.Symbol, snapshot.Volume)

	ruleSignal := optional.None[types.Signal]()
	if signal, ok := e.generator.Generate(snapshot, series); ok {
		ruleSignal = optional.Some(signal)
	}

	decision := e.aggregator.Aggregate(snapshot, ruleSignal, anomalySignal, analyses)
	decision.Confidence = consensus.AdjustForSession(decision.Confidence, e.sched.CurrentSession())

	if e.recorder != nil {
		e.recorder.RecordSignal(decision)
	}

	if !e.guard.ValidateSignal(decision) {
		e.logger.Debug("signal rejected by risk guard",
			zap.String("symbol", decision.Symbol),
			zap.String("action", string(decision.Action)))

		return
	}

	e.notifier.NotifySignal(decision)

	if decision.Action == types.ActionWait {
		return
	}

	position, err := e.guard.OpenPosition(decision)
	if err != nil {
		e.logger.Warn("failed to open position", zap.String("symbol", decision.Symbol), zap.Error(err))
		return
	}

	e.logger.Info("position opened",
		zap.String("symbol", position.Symbol),
		zap.String("action", string(position.Action)),
		zap.Float64("entry", position.EntryPrice))
}

// collectAnalyses fans out to every available model and gathers the answers
// that arrive within the per-scope timeout. A model that errors or times
// out is dropped from this cycle's vote set.
func (e *Engine) collectAnalyses(ctx context.Context, snapshots map[string]types.MarketSnapshot) []types.ModelAnalysis {
	providers := e.models.Available()
	if len(providers) == 0 {
		return nil
	}

	mc := e.buildMarketContext(snapshots)

	timeout := e.cfg.AI.Timeout
	if mc.Scope == ai.ScopeMacro {
		timeout *= time.Duration(e.cfg.AI.MacroTimeoutFactor)
	}

	results := make(chan types.ModelAnalysis, len(providers))

	var wg sync.WaitGroup

	for _, provider := range providers {
		wg.Add(1)

		go func(provider ai.ModelProvider) {
			defer wg.Done()

			callCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			analysis, err := provider.Analyze(callCtx, mc)
			if err != nil {
				e.logger.Warn("model dropped from cycle",
					zap.String("model", provider.Name()),
					zap.Error(err))

				return
			}

			results <- analysis
		}(provider)
	}

	wg.Wait()
	close(results)

	var analyses []types.ModelAnalysis
	for analysis := range results {
		analyses = append(analyses, analysis)
	}

	return analyses
}

// buildMarketContext assembles the model input, including the indicator
// snapshot per symbol with enough history.
func (e *Engine) buildMarketContext(snapshots map[string]types.MarketSnapshot) ai.MarketContext {
	scope := ai.ScopeRoutine
	if e.sched.ShouldRunDaily() {
		scope = ai.ScopeMacro
	}

	indicators := make(map[string]types.IndicatorSnapshot, len(snapshots))

	for symbol, snapshot := range snapshots {
		series := e.seriesFor(symbol)
		if series.Len() == 0 {
			continue
		}

		indicators[symbol] = indicator.Snapshot(series, snapshot.Volume, indicator.SnapshotConfig{
			RSIPeriod:        e.cfg.Indicator.RSIPeriod,
			EMAShort:         e.cfg.Indicator.EMAShort,
			EMALong:          e.cfg.Indicator.EMALong,
			MACDFast:         e.cfg.Indicator.MACDFast,
			MACDSlow:         e.cfg.Indicator.MACDSlow,
			MACDSignal:       e.cfg.Indicator.MACDSignal,
			BollingerLen:     e.cfg.Indicator.BollingerLen,
			BollingerK:       e.cfg.Indicator.BollingerK,
			VolumeMultiplier: e.cfg.Indicator.VolumeMultiplier,
		})
	}

	return ai.MarketContext{
		Snapshots:  snapshots,
		Indicators: indicators,
		Risk: ai.RiskContext{
			DailyProfitTarget: e.cfg.Risk.DailyProfitTarget,
			MaxDailyLoss:      e.cfg.Risk.MaxDailyLoss,
			MaxPositionPct:    e.cfg.Risk.MaxPositionPct,
		},
		Scope: scope,
	}
}

// refreshSeries replaces each symbol's candle history with a fresh fetch. A
// failing symbol keeps its previous series.
func (e *Engine) refreshSeries(ctx context.Context, snapshots map[string]types.MarketSnapshot) {
	for symbol := range snapshots {
		candles, err := e.provider.GetHistoricalData(ctx, symbol, e.cfg.Market.Interval, e.cfg.Market.HistoryLimit)
		if err != nil {
			e.logger.Warn("historical data fetch failed",
				zap.String("symbol", symbol),
				zap.Error(err))

			continue
		}

		series := types.NewPriceSeries(symbol, types.DefaultSeriesBound)
		series.Append(candles...)

		e.mu.Lock()
		e.series[symbol] = series
		e.mu.Unlock()
	}
}

// sweepPositions closes every open position whose stop or target was
// crossed and reports the exits.
func (e *Engine) sweepPositions(snapshots map[string]types.MarketSnapshot) {
	prices := make(map[string]float64, len(snapshots))
	for symbol, snapshot := range snapshots {
		prices[symbol] = snapshot.Price
	}

	for _, position := range e.guard.CheckStopLossTakeProfit(prices) {
		e.notifier.NotifyPositionClosed(position)

		if e.recorder != nil {
			e.recorder.RecordTrade(position)
		}
	}
}

func (e *Engine) seriesFor(symbol string) *types.PriceSeries {
	e.mu.Lock()
	defer e.mu.Unlock()

	series, ok := e.series[symbol]
	if !ok {
		series = types.NewPriceSeries(symbol, types.DefaultSeriesBound)
		e.series[symbol] = series
	}

	return series
}

func (e *Engine) symbolLock(symbol string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.symbolLocks[symbol]
	if !ok {
		lock = &sync.Mutex{}
		e.symbolLocks[symbol] = lock
	}

	return lock
}

// String describes the engine configuration for startup logs.
func (e *Engine) String() string {
	return fmt.Sprintf("engine(%d symbols, provider %s)", len(e.cfg.Symbols), e.provider.Name())
}
