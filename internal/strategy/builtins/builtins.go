// Package builtins provides the strategies that ship with BacktestForge.
package builtins

import (
	"fmt"

	"BacktestForge/internal/calculator"
	"BacktestForge/internal/model"
	"BacktestForge/internal/strategy"
)

// Strategy names.
const (
	NameMATrend         = "ma-trend"
	NameRSIReversion    = "rsi-reversion"
	NameChannelBreakout = "channel-breakout"
)

// Feature column names added by the built-in strategies.
const (
	FeatureMovingAverage = "moving_average"
	FeatureRSI           = "rsi"
	FeatureChannelHigh   = "channel_high"
	FeatureChannelLow    = "channel_low"
)

// Params tunes the built-in strategies.
type Params struct {
	MAPeriod      int
	RSIPeriod     int
	RSIOversold   float64
	RSIOverbought float64
	ChannelPeriod int
}

// DefaultParams returns the stock parameters.
func DefaultParams() Params {
	return Params{
		MAPeriod:      100,
		RSIPeriod:     14,
		RSIOversold:   30,
		RSIOverbought: 70,
		ChannelPeriod: 20,
	}
}

// RegisterAll installs every built-in strategy into reg.
func RegisterAll(reg *strategy.Registry, p Params) {
	reg.Register(MATrend(p.MAPeriod))
	reg.Register(RSIReversion(p.RSIPeriod, p.RSIOversold, p.RSIOverbought))
	reg.Register(ChannelBreakout(p.ChannelPeriod))
}

// addFeature computes series over rows and stores it under name.
func addFeature(rows []model.Row, name string, series []float64) []model.Row {
	for i := range rows {
		rows[i].SetFeature(name, series[i])
	}
	return rows
}

// markBuy sets the buy flag on every row where cond holds.
func markBuy(rows []model.Row, cond func(r *model.Row) bool) []model.Row {
	for i := range rows {
		if cond(&rows[i]) {
			rows[i].Buy = true
		}
	}
	return rows
}

// markSell sets the sell flag on every row where cond holds.
func markSell(rows []model.Row, cond func(r *model.Row) bool) []model.Row {
	for i := range rows {
		if cond(&rows[i]) {
			rows[i].Sell = true
		}
	}
	return rows
}

// feature returns a usable indicator reading from the row. Missing columns and
// warm-up NaN values report false.
func feature(r *model.Row, name string) (float64, bool) {
	v, ok := r.Features[name]
	return v, ok && calculator.Valid(v)
}

func wrap(name string, err error) error {
	return fmt.Errorf("%s: %w", name, err)
}
