package collector

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"BacktestForge/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  []model.Candle
	Err   error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, _ string, limit int) ([]model.Candle, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return lastN(m.Bars, limit), nil
	}
	n := limit
	if n <= 0 {
		n = 250
	}
	return generateMockBars(m.Price, n), nil
}

// generateMockBars produces a deterministic wave around basePrice with one bar
// per day ending on 2024-12-31.
func generateMockBars(basePrice float64, count int) []model.Candle {
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Candle, count)
	for i := 0; i < count; i++ {
		// 40-bar triangle wave, +/-5%
		phase := i % 40
		if phase > 20 {
			phase = 40 - phase
		}
		p := basePrice * (0.95 + float64(phase)*0.005)
		bars[i] = model.Candle{
			Time:   end.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector fetches the series a backtest runs on.
type Collector struct {
	Fetcher Fetcher
	Symbol  string
	Limit   int
	logger  zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol string, limit int, logger zerolog.Logger) *Collector {
	return &Collector{
		Fetcher: fetcher,
		Symbol:  symbol,
		Limit:   limit,
		logger:  logger.With().Str("source", fetcher.Name()).Str("symbol", symbol).Logger(),
	}
}

// Collect fetches bars and returns them in chronological order. Bars sharing
// a timestamp keep the order the source gave them.
func (c *Collector) Collect(ctx context.Context) (*model.Series, error) {
	bars, err := c.Fetcher.FetchBars(ctx, c.Symbol, c.Limit)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	bars = lastN(bars, c.Limit)

	ev := c.logger.Info().Int("bars", len(bars))
	if len(bars) > 0 {
		ev = ev.Time("from", bars[0].Time).Time("to", bars[len(bars)-1].Time)
	}
	ev.Msg("bars collected")

	return &model.Series{Symbol: c.Symbol, Candles: bars}, nil
}
