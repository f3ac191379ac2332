package collector

import (
	"context"

	"BacktestForge/internal/model"
)

// Fetcher loads historical candles for a symbol, oldest first. A positive
// limit keeps only the most recent limit bars.
type Fetcher interface {
	FetchBars(ctx context.Context, symbol string, limit int) ([]model.Candle, error)
	Name() string
}

// lastN trims bars to the most recent n when n is positive.
func lastN(bars []model.Candle, n int) []model.Candle {
	if n > 0 && len(bars) > n {
		return bars[len(bars)-n:]
	}
	return bars
}
