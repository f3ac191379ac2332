package calculator

import (
	"math"

	"github.com/markcheno/go-talib"
)

// RollingHigh returns, for each bar, the highest value over the window of
// period bars ending at that bar.
func RollingHigh(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, ErrPeriod
	}
	if len(values) < period {
		return nanSeries(len(values)), nil
	}
	out := talib.Max(values, period)
	maskWarmup(out, period-1)
	return out, nil
}

// RollingLow returns, for each bar, the lowest value over the window of
// period bars ending at that bar.
func RollingLow(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, ErrPeriod
	}
	if len(values) < period {
		return nanSeries(len(values)), nil
	}
	out := talib.Min(values, period)
	maskWarmup(out, period-1)
	return out, nil
}

// Shift moves a series forward by n bars, padding the head with NaN, so that
// value i describes the window that closed at bar i-n.
func Shift(values []float64, n int) []float64 {
	out := nanSeries(len(values))
	for i := n; i < len(values); i++ {
		out[i] = values[i-n]
	}
	return out
}

// Valid reports whether v is a usable indicator reading.
func Valid(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
