package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BacktestForge/internal/model"
)

func TestProfitRatio_Exact(t *testing.T) {
	assert.Equal(t, 0.098, ProfitRatio(100, 110, 0.002))
	assert.Equal(t, -0.002, ProfitRatio(100, 100, 0.002))
	assert.InDelta(t, -0.102, ProfitRatio(100, 90, 0.002), 1e-12)
}

func TestBuildTrades_SingleRoundTrip(t *testing.T) {
	positions := positionRows("0110", 90, 100, 105, 110)

	table, err := BuildTrades(positions, 0.002, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	tr := table.Trades[0]
	assert.Equal(t, positions[1].Time, tr.Entry.Time)
	assert.Equal(t, 100.0, tr.Entry.Close)
	assert.Equal(t, 20.0, tr.Entry.Volume)
	assert.Equal(t, positions[3].Time, tr.Exit.Time)
	assert.Equal(t, 110.0, tr.Exit.Close)
	assert.Equal(t, 40.0, tr.Exit.Volume)
	assert.Equal(t, 0.098, tr.Profit)
}

func TestBuildTrades_Boundaries(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    int
	}{
		{"empty", "", 0},
		{"open position dropped", "B..", 0},
		{"leading sell dropped", "SBS", 1},
		{"flat throughout", "S...", 0},
		{"two round trips", "SB.S.B.S", 2},
		{"trailing entry dropped", "SBS.B..", 1},
		{"long from first row", "B.S.B.S", 1},
		{"long from first row and at end", "BSB", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			positions := BuildPositions(signalRows(tt.pattern))
			table, err := BuildTrades(positions, 0.002, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, table.Len())

			entries, exits := transitions(positions)
			assert.LessOrEqual(t, table.Len(), min(len(entries), len(exits)))
			for _, tr := range table.Trades {
				assert.True(t, tr.Entry.Time.Before(tr.Exit.Time), "entry must precede exit")
			}
		})
	}
}

func TestBuildTrades_LeadingSellPairsBuyWithNextSell(t *testing.T) {
	positions := BuildPositions(signalRows("SBS"))
	table, err := BuildTrades(positions, 0.002, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, t0.AddDate(0, 0, 1), table.Trades[0].Entry.Time)
	assert.Equal(t, t0.AddDate(0, 0, 2), table.Trades[0].Exit.Time)
}

func TestBuildTrades_CountInvariant(t *testing.T) {
	positions := BuildPositions(signalRows(".S.B..S.B.S..BB.S.B"))
	table, err := BuildTrades(positions, 0.002, nil, nil)
	require.NoError(t, err)

	var entries, exits int
	for _, tr := range table.Trades {
		if !tr.Entry.Time.IsZero() {
			entries++
		}
		if !tr.Exit.Time.IsZero() {
			exits++
		}
	}
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, entries, exits)
	assert.Equal(t, table.Len(), entries)

	for i := 1; i < table.Len(); i++ {
		assert.True(t, table.Trades[i-1].Exit.Time.Before(table.Trades[i].Entry.Time) ||
			table.Trades[i-1].Exit.Time.Equal(table.Trades[i].Entry.Time))
	}
}

func TestBuildTrades_Fields(t *testing.T) {
	rows := signalRows("SB.S")
	for i := range rows {
		rows[i].SetFeature("rsi", float64(10*i))
	}
	positions := BuildPositions(rows)

	table, err := BuildTrades(positions, 0.002, []string{"rsi", "high"}, []string{"rsi"})
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	assert.Equal(t, []float64{10, 102}, table.Trades[0].Entry.Fields)
	assert.Equal(t, []float64{30}, table.Trades[0].Exit.Fields)
	assert.Equal(t, []string{
		"date", "close", "volume", "rsi", "high",
		"close_date", "close_close", "close_volume", "close_rsi",
		"close_profit",
	}, table.Columns())
}

func TestBuildTrades_UnknownColumn(t *testing.T) {
	positions := BuildPositions(signalRows("SBS"))

	_, err := BuildTrades(positions, 0.002, []string{"missing"}, nil)
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = BuildTrades(positions, 0.002, nil, []string{"date"})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestBuildTrades_InvalidFee(t *testing.T) {
	_, err := BuildTrades(nil, -0.1, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidFee)
}

func TestBuildTrades_RebuildFromTradeTimestamps(t *testing.T) {
	rows := signalRows("S.B..S.B.S..B.S")
	for i := range rows {
		rows[i].Close = 100 + float64((i*37)%11)
	}
	table, err := BuildTrades(BuildPositions(rows), 0.002, nil, nil)
	require.NoError(t, err)
	require.NotZero(t, table.Len())

	// A series made only of the trades' own entry and exit rows.
	var rebuilt []model.PositionRow
	rebuilt = append(rebuilt, model.PositionRow{Row: model.Row{Candle: model.Candle{Time: t0.AddDate(0, 0, -1), Close: 1}}})
	for _, tr := range table.Trades {
		rebuilt = append(rebuilt,
			model.PositionRow{Row: model.Row{Candle: model.Candle{Time: tr.Entry.Time, Close: tr.Entry.Close, Volume: tr.Entry.Volume}}, Position: model.Long},
			model.PositionRow{Row: model.Row{Candle: model.Candle{Time: tr.Exit.Time, Close: tr.Exit.Close, Volume: tr.Exit.Volume}}, Position: model.Flat},
		)
	}
	again, err := BuildTrades(rebuilt, 0.002, nil, nil)
	require.NoError(t, err)
	require.Equal(t, table.Len(), again.Len())
	for i := range table.Trades {
		assert.Equal(t, table.Trades[i].Profit, again.Trades[i].Profit)
	}
}

func TestBuildTrades_StartsAndEndsLong(t *testing.T) {
	tests := []struct {
		pattern string
		entry   []int // entry row index of each trade
		exit    []int
	}{
		{"BSB", nil, nil},
		{"BS.B.S.B", []int{3}, []int{5}},
	}
	for _, tt := range tests {
		table, err := BuildTrades(BuildPositions(signalRows(tt.pattern)), 0, nil, nil)
		require.NoError(t, err, tt.pattern)
		require.Equal(t, len(tt.entry), table.Len(), tt.pattern)
		for i, tr := range table.Trades {
			assert.Equal(t, t0.AddDate(0, 0, tt.entry[i]), tr.Entry.Time, tt.pattern)
			assert.Equal(t, t0.AddDate(0, 0, tt.exit[i]), tr.Exit.Time, tt.pattern)
			assert.True(t, tr.Entry.Time.Before(tr.Exit.Time), tt.pattern)
		}
	}
}
