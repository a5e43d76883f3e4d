// Package config holds the externally supplied configuration surface for the
// signal pipeline. All thresholds are injected; nothing in the core packages
// hard-codes them.
package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/aegis-lab/aegis-trading/pkg/errors"
)

// IndicatorConfig configures the technical indicator engine.
type IndicatorConfig struct {
	RSIPeriod     int     `yaml:"rsi_period" validate:"gt=0"`
	RSIOversold   float64 `yaml:"rsi_oversold" validate:"gt=0,lt=100"`
	RSIOverbought float64 `yaml:"rsi_overbought" validate:"gt=0,lt=100,gtfield=RSIOversold"`
	MACDFast      int     `yaml:"macd_fast" validate:"gt=0"`
	MACDSlow      int     `yaml:"macd_slow" validate:"gt=0,gtfield=MACDFast"`
	MACDSignal    int     `yaml:"macd_signal" validate:"gt=0"`
	EMAShort      int     `yaml:"ema_short" validate:"gt=0"`
	EMALong       int     `yaml:"ema_long" validate:"gt=0,gtfield=EMAShort"`
	BollingerLen  int     `yaml:"bollinger_period" validate:"gt=0"`
	BollingerK    float64 `yaml:"bollinger_k" validate:"gt=0"`
	// VolumeMultiplier is the ratio above which volume is labeled high.
	VolumeMultiplier float64 `yaml:"volume_multiplier" validate:"gt=1"`
	// MinHistory is the minimum candle count before the rule generator
	// will emit any signal.
	MinHistory int `yaml:"min_history" validate:"gt=0"`
}

// PumpConfig configures the anomaly/pump detector.
type PumpConfig struct {
	// PriceThreshold is the fractional 15m/24h move treated as a pump (0.05 = 5%).
	PriceThreshold float64 `yaml:"price_threshold" validate:"gt=0"`
	// VolumeThreshold is the volume ratio treated as confirming (3.0 = 3x).
	VolumeThreshold float64       `yaml:"volume_threshold" validate:"gt=1"`
	ScanInterval    time.Duration `yaml:"scan_interval" validate:"gt=0"`
	// SuppressionWindow silences repeat detections per symbol.
	SuppressionWindow time.Duration `yaml:"suppression_window" validate:"gt=0"`
	// RetentionWindow bounds how long detections are kept.
	RetentionWindow time.Duration `yaml:"retention_window" validate:"gt=0"`
}

// RiskConfig configures the risk guard.
type RiskConfig struct {
	MaxDailyTrades int `yaml:"max_daily_trades" validate:"gt=0"`
	// MaxDailyLoss is the fractional daily loss that halts trading (-0.02 = -2%).
	MaxDailyLoss       float64 `yaml:"max_daily_loss" validate:"lt=0"`
	MinRiskReward      float64 `yaml:"min_risk_reward" validate:"gt=0"`
	MinConfidence      float64 `yaml:"min_confidence" validate:"gte=0,lte=1"`
	PositionSize       float64 `yaml:"position_size" validate:"gt=0,lte=1"`
	MaxPositionPct     float64 `yaml:"max_position_pct" validate:"gt=0,lte=1"`
	StopLossPct        float64 `yaml:"stop_loss_pct" validate:"gt=0,lt=1"`
	TakeProfitPct      float64 `yaml:"take_profit_pct" validate:"gt=0,lt=1"`
	PortfolioValue     float64 `yaml:"portfolio_value" validate:"gt=0"`
	DailyProfitTarget  float64 `yaml:"daily_profit_target" validate:"gt=0"`
}

// AIConfig configures the model collaborator fan-out.
type AIConfig struct {
	// Timeout bounds one routine analysis call per model.
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
	// MacroTimeoutFactor scales Timeout for macro-scope analysis.
	MacroTimeoutFactor int    `yaml:"macro_timeout_factor" validate:"gte=1"`
	GeminiModel        string `yaml:"gemini_model"`
}

// ConsensusConfig configures the aggregator's fallback path.
type ConsensusConfig struct {
	// FallbackChangeThreshold is the 24h move that triggers a fallback
	// BUY/SELL when no model opinions are available (0.03 = 3%).
	FallbackChangeThreshold float64 `yaml:"fallback_change_threshold" validate:"gt=0"`
	FallbackMaxConfidence   float64 `yaml:"fallback_max_confidence" validate:"gt=0,lte=1"`
}

// MarketConfig configures the market data collaborator.
type MarketConfig struct {
	Provider      string `yaml:"provider" validate:"oneof=binance polygon"`
	PolygonAPIKey string `yaml:"polygon_api_key"`
	Interval      string `yaml:"interval"`
	// HistoryLimit is how many candles to request per evaluation.
	HistoryLimit int `yaml:"history_limit" validate:"gt=0"`
}

// HistoryConfig configures the DuckDB-backed history store.
type HistoryConfig struct {
	// Path is the database file; empty means in-memory.
	Path string `yaml:"path"`
}

// ServerConfig configures the status HTTP server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Config is the complete configuration for one pipeline instance.
type Config struct {
	// MinAppVersion rejects config files written for a newer build.
	MinAppVersion string          `yaml:"min_app_version"`
	Symbols       []string        `yaml:"symbols" validate:"min=1,dive,required"`
	Indicator     IndicatorConfig `yaml:"indicator"`
	Pump          PumpConfig      `yaml:"pump"`
	Risk          RiskConfig      `yaml:"risk"`
	AI            AIConfig        `yaml:"ai"`
	Consensus     ConsensusConfig `yaml:"consensus"`
	Market        MarketConfig    `yaml:"market"`
	History       HistoryConfig   `yaml:"history"`
	Server        ServerConfig    `yaml:"server"`
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	return Config{
		Symbols: []string{"BTCUSDT", "ETHUSDT", "BNBUSDT", "ADAUSDT", "SOLUSDT"},
		Indicator: IndicatorConfig{
			RSIPeriod:        14,
			RSIOversold:      30,
			RSIOverbought:    70,
			MACDFast:         12,
			MACDSlow:         26,
			MACDSignal:       9,
			EMAShort:         20,
			EMALong:          50,
			BollingerLen:     20,
			BollingerK:       2,
			VolumeMultiplier: 1.5,
			MinHistory:       50,
		},
		Pump: PumpConfig{
			PriceThreshold:    0.05,
			VolumeThreshold:   3.0,
			ScanInterval:      30 * time.Minute,
			SuppressionWindow: 2 * time.Hour,
			RetentionWindow:   24 * time.Hour,
		},
		Risk: RiskConfig{
			MaxDailyTrades:    2,
			MaxDailyLoss:      -0.02,
			MinRiskReward:     2.0,
			MinConfidence:     0.5,
			PositionSize:      0.1,
			MaxPositionPct:    0.2,
			StopLossPct:       0.02,
			TakeProfitPct:     0.03,
			PortfolioValue:    10000,
			DailyProfitTarget: 0.01,
		},
		AI: AIConfig{
			Timeout:            30 * time.Second,
			MacroTimeoutFactor: 3,
			GeminiModel:        "gemini-2.5-flash",
		},
		Consensus: ConsensusConfig{
			FallbackChangeThreshold: 0.03,
			FallbackMaxConfidence:   0.6,
		},
		Market: MarketConfig{
			Provider:     "binance",
			Interval:     "1h",
			HistoryLimit: 100,
		},
		History: HistoryConfig{
			Path: "",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Parse decodes a YAML document over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFile reads and parses a YAML configuration file.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
	}

	return Parse(data)
}

// Validate checks the configuration's structural invariants.
func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	return nil
}
