package builtins

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BacktestForge/internal/model"
	"BacktestForge/internal/strategy"
)

func rowsFromCloses(closes ...float64) []model.Row {
	rows := make([]model.Row, len(closes))
	for i, c := range closes {
		rows[i] = model.Row{Candle: model.Candle{
			Time:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:  c,
			High:  c + 1,
			Low:   c - 1,
			Close: c,
		}}
	}
	return rows
}

func runStages(t *testing.T, s strategy.Strategy, rows []model.Row) []model.Row {
	t.Helper()
	var err error
	rows, err = s.Features(rows)
	require.NoError(t, err)
	rows, err = s.Buy(rows)
	require.NoError(t, err)
	rows, err = s.Sell(rows)
	require.NoError(t, err)
	return rows
}

func TestMATrend(t *testing.T) {
	rows := runStages(t, MATrend(3), rowsFromCloses(10, 10, 10, 13, 7, 10))

	// Warm-up rows have no moving average and no signal.
	for i := 0; i < 2; i++ {
		assert.True(t, math.IsNaN(rows[i].Features[FeatureMovingAverage]), "row %d", i)
		assert.False(t, rows[i].Buy || rows[i].Sell, "row %d", i)
	}
	assert.False(t, rows[2].Buy || rows[2].Sell, "close equal to MA")
	assert.True(t, rows[3].Buy) // 13 > 11
	assert.False(t, rows[3].Sell)
	assert.True(t, rows[4].Sell) // 7 < 10
	assert.False(t, rows[4].Buy)
}

func TestMATrend_BadPeriod(t *testing.T) {
	_, err := MATrend(0).Features(rowsFromCloses(1, 2, 3))
	assert.Error(t, err)
}

func TestRSIReversion(t *testing.T) {
	closes := make([]float64, 0, 40)
	for i := 0; i < 20; i++ {
		closes = append(closes, 100-float64(i)) // steady decline
	}
	for i := 0; i < 20; i++ {
		closes = append(closes, 81+float64(i)) // steady rally
	}
	rows := runStages(t, RSIReversion(14, 30, 70), rowsFromCloses(closes...))

	assert.False(t, rows[5].Buy, "no reading during warm-up")
	assert.True(t, rows[19].Buy, "oversold after the decline")
	assert.True(t, rows[39].Sell, "overbought after the rally")
}

func TestChannelBreakout(t *testing.T) {
	rows := runStages(t, ChannelBreakout(3), rowsFromCloses(10, 11, 10, 15, 12, 5))

	for i := 0; i < 3; i++ {
		assert.True(t, math.IsNaN(rows[i].Features[FeatureChannelHigh]), "row %d", i)
	}
	assert.Equal(t, 12.0, rows[3].Features[FeatureChannelHigh])
	assert.True(t, rows[3].Buy) // 15 > max(11,12,11)
	assert.Equal(t, 9.0, rows[5].Features[FeatureChannelLow])
	assert.True(t, rows[5].Sell) // 5 < min(14,9,11)
}

func TestSignalsIgnoreMissingFeatures(t *testing.T) {
	rows := rowsFromCloses(1, 2, 3)
	rows, err := MATrend(2).Buy(rows)
	require.NoError(t, err)
	for _, r := range rows {
		assert.False(t, r.Buy)
	}
}

func TestRegisterAll(t *testing.T) {
	reg := strategy.NewRegistry()
	RegisterAll(reg, DefaultParams())
	assert.Equal(t, []string{NameChannelBreakout, NameMATrend, NameRSIReversion}, reg.List())
}

func TestMarkBuyAndSellSetOnlyTheirFlag(t *testing.T) {
	rows := rowsFromCloses(1, 5, 2, 6)
	above := func(r *model.Row) bool { return r.Close > 3 }

	rows = markBuy(rows, above)
	rows = markSell(rows, func(r *model.Row) bool { return r.Close < 3 })

	var buys, sells []bool
	for _, r := range rows {
		buys = append(buys, r.Buy)
		sells = append(sells, r.Sell)
	}
	assert.Equal(t, []bool{false, true, false, true}, buys)
	assert.Equal(t, []bool{true, false, true, false}, sells)
}
