// Package backtest turns a strategy's signals over a candle series into a
// position timeline and a table of closed, fee-adjusted trades.
package backtest

import (
	"fmt"

	"github.com/rs/zerolog"

	"BacktestForge/internal/model"
	"BacktestForge/internal/strategy"
)

// DefaultFeePercent is the round-trip cost deducted from every trade.
const DefaultFeePercent = 0.002

// Config tunes a Backtester.
type Config struct {
	FeePercent   float64
	BuyFeatures  []string // extra columns carried from the entry row
	SellFeatures []string // extra columns carried from the exit row
}

// DefaultConfig returns a Config with the default fee and no extra columns.
func DefaultConfig() Config {
	return Config{FeePercent: DefaultFeePercent}
}

// Result holds everything one run produced.
type Result struct {
	Strategy  string
	Positions []model.PositionRow
	Trades    *model.TradeTable
}

// Open reports whether the series ended while long. That position is not in
// the trade table.
func (r *Result) Open() bool {
	n := len(r.Positions)
	return n > 0 && r.Positions[n-1].Position == model.Long
}

// Backtester runs a strategy over candles.
type Backtester struct {
	strategy strategy.Strategy
	cfg      Config
	logger   zerolog.Logger
}

// NewBacktester validates cfg and binds it to s.
func NewBacktester(s strategy.Strategy, cfg Config, logger zerolog.Logger) (*Backtester, error) {
	if s == nil {
		return nil, ErrNoStrategy
	}
	if err := ValidateFee(cfg.FeePercent); err != nil {
		return nil, err
	}
	return &Backtester{
		strategy: s,
		cfg:      cfg,
		logger:   logger.With().Str("strategy", s.Name()).Logger(),
	}, nil
}

// Config returns the configuration the backtester was built with.
func (b *Backtester) Config() Config { return b.cfg }

// StrategyName returns the name of the bound strategy.
func (b *Backtester) StrategyName() string { return b.strategy.Name() }

// Run validates candles, applies features, buy and sell in that order, and
// reduces the signals to positions and trades. The candles are not modified.
func (b *Backtester) Run(candles []model.Candle) (*Result, error) {
	if err := ValidateCandles(candles); err != nil {
		return nil, err
	}

	rows, err := b.Signals(candles)
	if err != nil {
		return nil, err
	}

	positions := b.Positions(rows)
	trades, err := b.Trades(positions)
	if err != nil {
		return nil, err
	}

	b.logger.Debug().
		Int("bars", len(candles)).
		Int("positions", len(positions)).
		Int("trades", trades.Len()).
		Msg("backtest complete")

	return &Result{Strategy: b.strategy.Name(), Positions: positions, Trades: trades}, nil
}

// Signals runs the strategy's three stages over fresh rows built from candles.
func (b *Backtester) Signals(candles []model.Candle) ([]model.Row, error) {
	rows := model.RowsFromCandles(candles)
	stages := []struct {
		name string
		fn   func([]model.Row) ([]model.Row, error)
	}{
		{"features", b.strategy.Features},
		{"buy", b.strategy.Buy},
		{"sell", b.strategy.Sell},
	}
	for _, st := range stages {
		var err error
		if rows, err = st.fn(rows); err != nil {
			return nil, fmt.Errorf("%s: %w", st.name, err)
		}
	}
	return rows, nil
}

// Positions reduces signal rows to the position series.
func (b *Backtester) Positions(rows []model.Row) []model.PositionRow {
	return BuildPositions(rows)
}

// Trades reconstructs the trade table using the configured fee and fields.
func (b *Backtester) Trades(positions []model.PositionRow) (*model.TradeTable, error) {
	return buildTrades(positions, b.cfg.FeePercent, b.cfg.BuyFeatures, b.cfg.SellFeatures, b.logger)
}
