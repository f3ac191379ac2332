package calculator

import "github.com/markcheno/go-talib"

// RSI computes the Wilder-smoothed RSI series over the given period.
// The first period values are NaN; at least period+1 prices are needed for
// the first reading.
func RSI(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, ErrPeriod
	}
	if len(prices) < period+1 {
		return nanSeries(len(prices)), nil
	}
	out := talib.Rsi(prices, period)
	maskWarmup(out, period)
	return out, nil
}
