package builtins

import (
	"BacktestForge/internal/calculator"
	"BacktestForge/internal/model"
	"BacktestForge/internal/strategy"
)

// RSIReversion buys oversold readings and sells overbought ones.
func RSIReversion(period int, oversold, overbought float64) strategy.Funcs {
	return strategy.Funcs{
		ID: NameRSIReversion,
		FeaturesFunc: func(rows []model.Row) ([]model.Row, error) {
			rsi, err := calculator.RSI(model.Closes(model.CandlesOf(rows)), period)
			if err != nil {
				return nil, wrap(NameRSIReversion, err)
			}
			return addFeature(rows, FeatureRSI, rsi), nil
		},
		BuyFunc: func(rows []model.Row) ([]model.Row, error) {
			return markBuy(rows, func(r *model.Row) bool {
				v, ok := feature(r, FeatureRSI)
				return ok && v < oversold
			}), nil
		},
		SellFunc: func(rows []model.Row) ([]model.Row, error) {
			return markSell(rows, func(r *model.Row) bool {
				v, ok := feature(r, FeatureRSI)
				return ok && v > overbought
			}), nil
		},
	}
}
