package backtest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BacktestForge/internal/model"
	"BacktestForge/internal/strategy"
)

// thresholdStrategy buys below lo and sells above hi.
func thresholdStrategy(lo, hi float64) strategy.Funcs {
	return strategy.Funcs{
		ID: "threshold",
		FeaturesFunc: func(rows []model.Row) ([]model.Row, error) {
			for i := range rows {
				rows[i].SetFeature("spread", rows[i].High-rows[i].Low)
			}
			return rows, nil
		},
		BuyFunc: func(rows []model.Row) ([]model.Row, error) {
			for i := range rows {
				rows[i].Buy = rows[i].Close < lo
			}
			return rows, nil
		},
		SellFunc: func(rows []model.Row) ([]model.Row, error) {
			for i := range rows {
				rows[i].Sell = rows[i].Close > hi
			}
			return rows, nil
		},
	}
}

func candles(closes ...float64) []model.Candle {
	out := make([]model.Candle, len(closes))
	for i, c := range closes {
		out[i] = model.Candle{
			Time:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 500,
		}
	}
	return out
}

func newTestBacktester(t *testing.T, s strategy.Strategy, cfg Config) *Backtester {
	t.Helper()
	bt, err := NewBacktester(s, cfg, zerolog.Nop())
	require.NoError(t, err)
	return bt
}

func TestRun_EndToEnd(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BuyFeatures = []string{"spread"}
	cfg.SellFeatures = []string{"spread"}
	bt := newTestBacktester(t, thresholdStrategy(95, 105), cfg)

	res, err := bt.Run(candles(120, 100, 90, 100, 110, 100, 90, 100))
	require.NoError(t, err)

	assert.Equal(t, "threshold", res.Strategy)
	require.Equal(t, 1, res.Trades.Len())
	tr := res.Trades.Trades[0]
	assert.Equal(t, 90.0, tr.Entry.Close)
	assert.Equal(t, 110.0, tr.Exit.Close)
	assert.Equal(t, []float64{2}, tr.Entry.Fields)
	assert.InDelta(t, 110.0/90.0-1.002, tr.Profit, 1e-12)
	assert.True(t, res.Open(), "series ends long after the second dip")
}

func TestRun_EmptyInput(t *testing.T) {
	bt := newTestBacktester(t, thresholdStrategy(95, 105), DefaultConfig())

	res, err := bt.Run(nil)
	require.NoError(t, err)
	assert.Empty(t, res.Positions)
	assert.Equal(t, 0, res.Trades.Len())
	assert.False(t, res.Open())
}

func TestRun_SchemaError(t *testing.T) {
	bt := newTestBacktester(t, thresholdStrategy(95, 105), DefaultConfig())

	bad := candles(100, 101)
	bad[1].Close = math.NaN()
	_, err := bt.Run(bad)
	assert.ErrorIs(t, err, ErrSchema)

	bad = candles(100)
	bad[0].Time = time.Time{}
	_, err = bt.Run(bad)
	assert.ErrorIs(t, err, ErrSchema)
}

func TestRun_StrategyErrorPropagates(t *testing.T) {
	boom := errors.New("indicator failed")
	s := strategy.Funcs{
		ID:           "broken",
		FeaturesFunc: func([]model.Row) ([]model.Row, error) { return nil, boom },
	}
	bt := newTestBacktester(t, s, DefaultConfig())

	_, err := bt.Run(candles(100, 101))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "features")
}

func TestRun_UnknownFeature(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SellFeatures = []string{"not_there"}
	bt := newTestBacktester(t, thresholdStrategy(95, 105), cfg)

	_, err := bt.Run(candles(100, 90, 110))
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestRun_DoesNotModifyCandles(t *testing.T) {
	in := candles(100, 90, 110)
	snapshot := append([]model.Candle(nil), in...)
	bt := newTestBacktester(t, thresholdStrategy(95, 105), DefaultConfig())

	_, err := bt.Run(in)
	require.NoError(t, err)
	assert.Equal(t, snapshot, in)
}

func TestRun_Deterministic(t *testing.T) {
	bt := newTestBacktester(t, thresholdStrategy(95, 105), DefaultConfig())
	series := candles(100, 90, 110, 94, 91, 107, 120, 80, 106, 93)

	render := func() []byte {
		res, err := bt.Run(series)
		require.NoError(t, err)
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		require.NoError(t, w.Write(res.Trades.Columns()))
		require.NoError(t, w.WriteAll(res.Trades.Records()))
		return buf.Bytes()
	}
	assert.Equal(t, render(), render())
}

func TestNewBacktester_Validation(t *testing.T) {
	_, err := NewBacktester(nil, DefaultConfig(), zerolog.Nop())
	assert.ErrorIs(t, err, ErrNoStrategy)

	_, err = NewBacktester(thresholdStrategy(1, 2), Config{FeePercent: math.Inf(1)}, zerolog.Nop())
	assert.ErrorIs(t, err, ErrInvalidFee)

	bt, err := NewBacktester(thresholdStrategy(1, 2), Config{}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 0.0, bt.Config().FeePercent)
}
