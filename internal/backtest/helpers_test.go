package backtest

import (
	"time"

	"BacktestForge/internal/model"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// signalRows builds one row per character: 'B' buy, 'S' sell, 'X' both,
// anything else no signal. Closes run 100, 101, 102, ...
func signalRows(pattern string) []model.Row {
	rows := make([]model.Row, len(pattern))
	for i, ch := range pattern {
		rows[i] = model.Row{
			Candle: model.Candle{
				Time:   t0.AddDate(0, 0, i),
				Open:   100 + float64(i),
				High:   101 + float64(i),
				Low:    99 + float64(i),
				Close:  100 + float64(i),
				Volume: 1000 + float64(i),
			},
			Buy:  ch == 'B' || ch == 'X',
			Sell: ch == 'S' || ch == 'X',
		}
	}
	return rows
}

// positionRows builds position rows directly from a string of '0' and '1'.
func positionRows(states string, closes ...float64) []model.PositionRow {
	out := make([]model.PositionRow, len(states))
	for i, ch := range states {
		c := 100 + float64(i)
		if i < len(closes) {
			c = closes[i]
		}
		out[i] = model.PositionRow{
			Row: model.Row{Candle: model.Candle{
				Time:   t0.AddDate(0, 0, i),
				Close:  c,
				Volume: float64(10 * (i + 1)),
			}},
			Position: model.Position(ch - '0'),
		}
	}
	return out
}

func positionsOf(rows []model.PositionRow) []model.Position {
	out := make([]model.Position, len(rows))
	for i, r := range rows {
		out[i] = r.Position
	}
	return out
}
