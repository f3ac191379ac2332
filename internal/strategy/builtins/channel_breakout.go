package builtins

import (
	"BacktestForge/internal/calculator"
	"BacktestForge/internal/model"
	"BacktestForge/internal/strategy"
)

// ChannelBreakout buys a close above the highest high of the previous period
// bars and sells a close below the lowest low of that window.
func ChannelBreakout(period int) strategy.Funcs {
	return strategy.Funcs{
		ID: NameChannelBreakout,
		FeaturesFunc: func(rows []model.Row) ([]model.Row, error) {
			candles := model.CandlesOf(rows)
			hi, err := calculator.RollingHigh(model.Highs(candles), period)
			if err != nil {
				return nil, wrap(NameChannelBreakout, err)
			}
			lo, err := calculator.RollingLow(model.Lows(candles), period)
			if err != nil {
				return nil, wrap(NameChannelBreakout, err)
			}
			rows = addFeature(rows, FeatureChannelHigh, calculator.Shift(hi, 1))
			return addFeature(rows, FeatureChannelLow, calculator.Shift(lo, 1)), nil
		},
		BuyFunc: func(rows []model.Row) ([]model.Row, error) {
			return markBuy(rows, func(r *model.Row) bool {
				v, ok := feature(r, FeatureChannelHigh)
				return ok && r.Close > v
			}), nil
		},
		SellFunc: func(rows []model.Row) ([]model.Row, error) {
			return markSell(rows, func(r *model.Row) bool {
				v, ok := feature(r, FeatureChannelLow)
				return ok && r.Close < v
			}), nil
		},
	}
}
