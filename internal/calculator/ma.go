package calculator

import (
	"errors"
	"math"

	"github.com/markcheno/go-talib"
)

// ErrPeriod is returned when an indicator period is not positive.
var ErrPeriod = errors.New("period must be positive")

// SMA computes the simple moving average series of prices over period.
// The first period-1 values are NaN: there is not enough data to fill the window.
func SMA(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, ErrPeriod
	}
	if len(prices) < period {
		return nanSeries(len(prices)), nil
	}
	out := talib.Sma(prices, period)
	maskWarmup(out, period-1)
	return out, nil
}

// nanSeries returns a series of n NaN values.
func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// maskWarmup overwrites the lookback prefix that talib leaves as zeros.
func maskWarmup(out []float64, lookback int) {
	for i := 0; i < lookback && i < len(out); i++ {
		out[i] = math.NaN()
	}
}
