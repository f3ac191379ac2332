package builtins

import (
	"BacktestForge/internal/calculator"
	"BacktestForge/internal/model"
	"BacktestForge/internal/strategy"
)

// MATrend goes long while the close is above its simple moving average and
// exits once it falls below. Bars inside the warm-up window carry no signal.
func MATrend(period int) strategy.Funcs {
	return strategy.Funcs{
		ID: NameMATrend,
		FeaturesFunc: func(rows []model.Row) ([]model.Row, error) {
			ma, err := calculator.SMA(model.Closes(model.CandlesOf(rows)), period)
			if err != nil {
				return nil, wrap(NameMATrend, err)
			}
			return addFeature(rows, FeatureMovingAverage, ma), nil
		},
		BuyFunc: func(rows []model.Row) ([]model.Row, error) {
			return markBuy(rows, func(r *model.Row) bool {
				ma, ok := feature(r, FeatureMovingAverage)
				return ok && r.Close > ma
			}), nil
		},
		SellFunc: func(rows []model.Row) ([]model.Row, error) {
			return markSell(rows, func(r *model.Row) bool {
				ma, ok := feature(r, FeatureMovingAverage)
				return ok && r.Close < ma
			}), nil
		},
	}
}
