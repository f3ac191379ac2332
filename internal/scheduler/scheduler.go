// Package scheduler runs the configured backtest on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"BacktestForge/internal/backtest"
	"BacktestForge/internal/collector"
	"BacktestForge/internal/export"
	"BacktestForge/internal/notifier"
	"BacktestForge/internal/recorder"
)

const notifyRetries = 3

// Outputs names the files each run writes. Empty paths are skipped.
type Outputs struct {
	CSVPath     string
	ParquetPath string
}

// Scheduler manages the recurring backtest job.
type Scheduler struct {
	Cron       *cron.Cron
	Collector  *collector.Collector
	Backtester *backtest.Backtester
	Recorder   recorder.Recorder
	Notifier   notifier.Notifier
	Outputs    Outputs
	Ctx        context.Context
	logger     zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, bt *backtest.Backtester,
	rec recorder.Recorder, n notifier.Notifier, out Outputs, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Collector:  col,
		Backtester: bt,
		Recorder:   rec,
		Notifier:   n,
		Outputs:    out,
		Ctx:        ctx,
		logger:     logger.With().Str("component", "scheduler").Logger(),
	}
}

// Register adds the backtest job under a six-field cron expression.
func (s *Scheduler) Register(cronExpr string) error {
	if _, err := s.Cron.AddFunc(cronExpr, s.backtestTask); err != nil {
		return fmt.Errorf("register backtest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}

// RunNow executes the job once: fetch, backtest, export, record, notify.
// Export, record and notify failures are logged; fetch and backtest failures
// are reported to the notifier and returned.
func (s *Scheduler) RunNow() (*backtest.Result, error) {
	started := time.Now()
	symbol := s.Collector.Symbol

	series, err := s.Collector.Collect(s.Ctx)
	if err != nil {
		err = fmt.Errorf("collect: %w", err)
		s.fail(symbol, err)
		return nil, err
	}

	res, err := s.Backtester.Run(series.Candles)
	if err != nil {
		err = fmt.Errorf("backtest: %w", err)
		s.fail(symbol, err)
		return nil, err
	}

	s.export(res)

	cfg := s.Backtester.Config()
	if _, err := s.Recorder.RecordRun(&recorder.RunRecord{
		Symbol:     symbol,
		Strategy:   res.Strategy,
		FeePercent: cfg.FeePercent,
		Bars:       len(series.Candles),
		OpenAtEnd:  res.Open(),
		StartedAt:  started,
		Trades:     res.Trades,
	}); err != nil {
		s.logger.Error().Err(err).Msg("record run")
	}

	report := notifier.FormatBacktestReport(symbol, res.Strategy, cfg.FeePercent, res.Trades, res.Open())
	s.trySend(report)

	s.logger.Info().
		Str("symbol", symbol).
		Int("trades", res.Trades.Len()).
		Dur("took", time.Since(started)).
		Msg("backtest task done")
	return res, nil
}

func (s *Scheduler) backtestTask() {
	s.logger.Info().Msg("running backtest task")
	if _, err := s.RunNow(); err != nil {
		s.logger.Error().Err(err).Msg("backtest task")
	}
}

func (s *Scheduler) export(res *backtest.Result) {
	if p := s.Outputs.CSVPath; p != "" {
		if err := export.WriteCSVFile(p, res.Trades); err != nil {
			s.logger.Error().Err(err).Str("path", p).Msg("export csv")
		}
	}
	if p := s.Outputs.ParquetPath; p != "" {
		if err := export.WriteParquet(p, res.Trades); err != nil {
			s.logger.Error().Err(err).Str("path", p).Msg("export parquet")
		}
	}
}

func (s *Scheduler) fail(symbol string, err error) {
	strategyName := ""
	if s.Backtester != nil {
		strategyName = s.Backtester.StrategyName()
	}
	s.trySend(notifier.FormatError(symbol, strategyName, err))
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, notifyRetries); err != nil {
		s.logger.Error().Err(err).Msg("send notification")
	}
}
