package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/aegis-lab/aegis-trading/internal/ai"
	"github.com/aegis-lab/aegis-trading/internal/config"
	"github.com/aegis-lab/aegis-trading/internal/engine"
	"github.com/aegis-lab/aegis-trading/internal/history"
	"github.com/aegis-lab/aegis-trading/internal/logger"
	"github.com/aegis-lab/aegis-trading/internal/market"
	"github.com/aegis-lab/aegis-trading/internal/risk"
	"github.com/aegis-lab/aegis-trading/internal/scheduler"
	"github.com/aegis-lab/aegis-trading/internal/server"
	"github.com/aegis-lab/aegis-trading/internal/version"
)

// loadConfig reads the --config file when given, otherwise the defaults, and
// applies the flag overrides shared by both commands.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg := config.DefaultConfig()

	if path := cmd.String("config"); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return config.Config{}, err
		}

		if err := version.CheckConfigCompatibility(version.Version, loaded.MinAppVersion); err != nil {
			return config.Config{}, err
		}

		cfg = loaded
	}

	if symbols := cmd.StringSlice("symbol"); len(symbols) > 0 {
		cfg.Symbols = symbols
	}

	if provider := cmd.String("provider"); provider != "" {
		cfg.Market.Provider = provider
	}

	if cfg.Market.PolygonAPIKey == "" {
		cfg.Market.PolygonAPIKey = os.Getenv("POLYGON_API_KEY")
	}

	if db := cmd.String("db"); db != "" {
		cfg.History.Path = db
	}

	return cfg, cfg.Validate()
}

// runAction starts the full pipeline: market data, model registry, risk
// guard, history store, status server, and the evaluation loop.
func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	l, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer l.Sync() //nolint:errcheck

	provider, err := market.NewProvider(cfg.Market, l)
	if err != nil {
		return err
	}

	models := ai.NewRegistry()

	if os.Getenv("GEMINI_API_KEY") != "" {
		gemini, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiModel, l)
		if err != nil {
			l.Warn("gemini unavailable, running without model opinions", zap.Error(err))
		} else {
			models.Register(gemini)
		}
	} else {
		l.Info("GEMINI_API_KEY not set, running without model opinions")
	}

	store, err := history.NewStore(cfg.History.Path, l)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Initialize(); err != nil {
		return err
	}

	guard := risk.NewGuard(cfg.Risk, l)
	sched := scheduler.NewScheduler()

	eng := engine.NewEngine(cfg, l, provider, models, guard, sched, nil, store)

	srv := server.NewServer(cfg.Server, l, guard, eng.Detector(), sched, store)
	if err := srv.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	l.Info("pipeline starting",
		zap.Strings("symbols", cfg.Symbols),
		zap.String("provider", provider.Name()),
		zap.Duration("scan_interval", cfg.Pump.ScanInterval))

	err = eng.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if stopErr := srv.Stop(shutdownCtx); stopErr != nil {
		l.Warn("status server shutdown failed", zap.Error(stopErr))
	}

	if err == context.Canceled {
		l.Info("pipeline stopped by user")
		return nil
	}

	return err
}

// backfillAction downloads candle history for every configured symbol into
// the history database so a fresh deployment starts with full indicator
// context.
func backfillAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	l, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer l.Sync() //nolint:errcheck

	provider, err := market.NewProvider(cfg.Market, l)
	if err != nil {
		return err
	}

	store, err := history.NewStore(cfg.History.Path, l)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Initialize(); err != nil {
		return err
	}

	limit := int(cmd.Int("limit"))

	bar := progressbar.NewOptions(len(cfg.Symbols),
		progressbar.OptionSetDescription("Backfilling candles"),
		progressbar.OptionShowCount())

	for _, symbol := range cfg.Symbols {
		candles, err := provider.GetHistoricalData(ctx, symbol, cfg.Market.Interval, limit)
		if err != nil {
			return err
		}

		if err := store.RecordCandles(symbol, candles); err != nil {
			return err
		}

		bar.Add(1) //nolint:errcheck
	}

	fmt.Println()
	l.Info("backfill complete",
		zap.Int("symbols", len(cfg.Symbols)),
		zap.String("db", cfg.History.Path))

	return nil
}

func main() {
	sharedFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the YAML configuration file",
		},
		&cli.StringSliceFlag{
			Name:    "symbol",
			Aliases: []string{"s"},
			Usage:   "Symbol to track (repeatable, overrides config)",
		},
		&cli.StringFlag{
			Name:    "provider",
			Aliases: []string{"p"},
			Usage:   "Market data provider (binance, polygon)",
		},
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to the history database file (empty for in-memory)",
		},
	}

	cmd := &cli.Command{
		Name:    "aegis",
		Usage:   "Crypto trading signal pipeline",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run the signal pipeline with the status API",
				Flags:  sharedFlags,
				Action: runAction,
			},
			{
				Name:  "backfill",
				Usage: "Download candle history into the history database",
				Flags: append(sharedFlags, &cli.IntFlag{
					Name:    "limit",
					Aliases: []string{"n"},
					Usage:   "Number of candles to download per symbol",
					Value:   500,
				}),
				Action: backfillAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
