package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"BacktestForge/internal/backtest"
	"BacktestForge/internal/collector"
	"BacktestForge/internal/config"
	"BacktestForge/internal/notifier"
	"BacktestForge/internal/recorder"
	"BacktestForge/internal/scheduler"
	"BacktestForge/internal/strategy"
	"BacktestForge/internal/strategy/builtins"
	"BacktestForge/internal/util"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run executes the CLI and returns the process exit code. Reports go to
// stdout; logs go to stderr.
func run(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("backtest", flag.ContinueOnError)
	var (
		cfgPath  = fs.String("config", "", "config file (default $CONFIG_PATH or configs/config.yaml)")
		strat    = fs.String("strategy", "", "strategy name, overrides config")
		symbol   = fs.String("symbol", "", "symbol, overrides config")
		daemon   = fs.Bool("schedule", false, "run on the configured cron schedule until interrupted")
		list     = fs.Bool("list", false, "list available strategies and exit")
		history  = fs.Int("history", 0, "print the N most recent recorded runs and exit")
		console  = fs.Bool("console", false, "human-readable log output")
		runFirst = fs.Bool("run-on-start", os.Getenv("RUN_ON_START") == "true", "with -schedule, run once immediately")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *cfgPath == "" {
		*cfgPath = "configs/config.yaml"
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			*cfgPath = v
		}
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		l := util.NewLogger("info")
		l.Error().Err(err).Msg("load config")
		return 1
	}
	if *strat != "" {
		cfg.Backtest.Strategy = *strat
	}
	if *symbol != "" {
		cfg.DataSource.Symbol = *symbol
	}

	logger := util.NewLogger(cfg.Logging.Level)
	if *console {
		logger = util.NewConsoleLogger(cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("config validation")
		return 1
	}

	reg := strategy.NewRegistry()
	builtins.RegisterAll(reg, builtins.Params{
		MAPeriod:      cfg.Backtest.MAPeriod,
		RSIPeriod:     cfg.Backtest.RSIPeriod,
		RSIOversold:   cfg.Backtest.RSIOversold,
		RSIOverbought: cfg.Backtest.RSIOverbought,
		ChannelPeriod: cfg.Backtest.ChannelPeriod,
	})
	if *list {
		fmt.Fprintln(stdout, strings.Join(reg.List(), "\n"))
		return 0
	}

	rec := openRecorder(cfg.Database.SQLitePath, logger)
	defer rec.Close()

	if *history > 0 {
		if err := printHistory(stdout, rec, *history); err != nil {
			logger.Error().Err(err).Msg("list runs")
			return 1
		}
		return 0
	}

	s, ok := reg.Get(cfg.Backtest.Strategy)
	if !ok {
		logger.Error().Str("strategy", cfg.Backtest.Strategy).Strs("available", reg.List()).Msg("unknown strategy")
		return 1
	}
	bt, err := backtest.NewBacktester(s, backtest.Config{
		FeePercent:   cfg.Fee(backtest.DefaultFeePercent),
		BuyFeatures:  cfg.Backtest.BuyFeatures,
		SellFeatures: cfg.Backtest.SellFeatures,
	}, logger)
	if err != nil {
		logger.Error().Err(err).Msg("init backtester")
		return 1
	}

	fetcher := newFetcher(cfg)
	logger.Info().Str("source", fetcher.Name()).Str("strategy", s.Name()).Msg("BacktestForge starting")
	col := collector.NewCollector(fetcher, cfg.DataSource.Symbol, cfg.DataSource.Limit, logger)

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, col, bt, rec, tn, scheduler.Outputs{
		CSVPath:     cfg.Output.CSVPath,
		ParquetPath: cfg.Output.ParquetPath,
	}, logger)

	if !*daemon {
		res, err := sched.RunNow()
		if err != nil {
			logger.Error().Err(err).Msg("backtest failed")
			return 1
		}
		fmt.Fprint(stdout, notifier.FormatBacktestReport(cfg.DataSource.Symbol, res.Strategy, bt.Config().FeePercent, res.Trades, res.Open()))
		return 0
	}

	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		logger.Error().Err(err).Msg("register cron task")
		return 1
	}
	sched.Start()
	defer sched.Stop()

	if *runFirst {
		logger.Info().Msg("run-on-start enabled, executing backtest now")
		go sched.RunNow()
	}

	logger.Info().Str("cron", cfg.Schedule.Cron).Msg("BacktestForge is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutdown signal received, stopping...")
	cancel()
	return 0
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	src := cfg.DataSource
	switch src.Kind {
	case config.SourceParquet:
		return collector.NewParquetFetcher(src.Path)
	case config.SourceYahoo:
		return collector.NewYahooFetcher(cfg.Proxy)
	case config.SourceMock:
		return &collector.MockFetcher{Price: 4500}
	default:
		if strings.EqualFold(filepath.Ext(src.Path), ".csv") {
			return collector.NewCSVFetcher("", src.Path)
		}
		return collector.NewCSVFetcher(src.Path, "")
	}
}

func openRecorder(path string, logger zerolog.Logger) recorder.Recorder {
	if path == "" {
		return recorder.NewNoopRecorder()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logger.Warn().Err(err).Msg("create database directory failed, using noop")
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(path, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}

func printHistory(w io.Writer, rec recorder.Recorder, n int) error {
	runs, err := rec.ListRuns(n)
	if err != nil {
		return err
	}
	for _, r := range runs {
		open := ""
		if r.OpenAtEnd {
			open = " (open)"
		}
		fmt.Fprintf(w, "#%d  %s  %-8s %-18s fee=%.4f bars=%d trades=%d%s\n",
			r.ID, r.StartedAt.Format(time.DateTime), r.Symbol, r.Strategy,
			r.FeePercent, r.Bars, r.TradeCount, open)
	}
	return nil
}
