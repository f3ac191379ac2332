package backtest

import (
	"fmt"
	"math"

	"BacktestForge/internal/model"
)

// ValidateCandles checks every candle before any computation runs: each needs
// a timestamp, finite non-negative prices and volume, and a positive close.
// An empty series is valid.
func ValidateCandles(candles []model.Candle) error {
	for i, c := range candles {
		if c.Time.IsZero() {
			return fmt.Errorf("%w: row %d: missing %s", ErrSchema, i, model.ColumnDate)
		}
		fields := [...]struct {
			name string
			v    float64
		}{
			{model.ColumnOpen, c.Open},
			{model.ColumnHigh, c.High},
			{model.ColumnLow, c.Low},
			{model.ColumnClose, c.Close},
			{model.ColumnVolume, c.Volume},
		}
		for _, f := range fields {
			if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
				return fmt.Errorf("%w: row %d: %s=%v", ErrSchema, i, f.name, f.v)
			}
		}
		if c.Close == 0 {
			return fmt.Errorf("%w: row %d: %s must be positive", ErrSchema, i, model.ColumnClose)
		}
	}
	return nil
}

// ValidateFee checks a round-trip fee ratio.
func ValidateFee(fee float64) error {
	if math.IsNaN(fee) || math.IsInf(fee, 0) || fee < 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidFee, fee)
	}
	return nil
}
