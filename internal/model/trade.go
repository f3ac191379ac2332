package model

import (
	"strconv"
	"time"
)

// ExitPrefix disambiguates exit-side columns in the flat trade table.
const ExitPrefix = "close_"

// ColumnProfit is the name of the profit column in the flat trade table.
const ColumnProfit = ExitPrefix + "profit"

// TradeLeg is one side of a round trip. Fields holds the requested extra
// columns, aligned with TradeTable.EntryFields or TradeTable.ExitFields.
type TradeLeg struct {
	Time   time.Time
	Close  float64
	Volume float64
	Fields []float64
}

// Trade is one closed round trip.
type Trade struct {
	Entry  TradeLeg
	Exit   TradeLeg
	Profit float64 // exit_close / entry_close - (1 + fee)
}

// TradeTable is the output of a backtest: closed trades plus the names of the
// extra columns carried on each side.
type TradeTable struct {
	EntryFields []string
	ExitFields  []string
	Trades      []Trade
}

// Len returns the number of trades.
func (t *TradeTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Trades)
}

// Columns returns the header of the flat table:
// date, close, volume, entry fields, close_date, close_close, close_volume,
// close_-prefixed exit fields, close_profit.
func (t *TradeTable) Columns() []string {
	cols := []string{ColumnDate, ColumnClose, ColumnVolume}
	cols = append(cols, t.EntryFields...)
	cols = append(cols, ExitPrefix+ColumnDate, ExitPrefix+ColumnClose, ExitPrefix+ColumnVolume)
	for _, f := range t.ExitFields {
		cols = append(cols, ExitPrefix+f)
	}
	return append(cols, ColumnProfit)
}

// Records renders every trade as a row of strings matching Columns.
func (t *TradeTable) Records() [][]string {
	out := make([][]string, 0, len(t.Trades))
	for _, tr := range t.Trades {
		rec := make([]string, 0, 7+len(t.EntryFields)+len(t.ExitFields))
		rec = append(rec, FormatTime(tr.Entry.Time), FormatFloat(tr.Entry.Close), FormatFloat(tr.Entry.Volume))
		for _, v := range tr.Entry.Fields {
			rec = append(rec, FormatFloat(v))
		}
		rec = append(rec, FormatTime(tr.Exit.Time), FormatFloat(tr.Exit.Close), FormatFloat(tr.Exit.Volume))
		for _, v := range tr.Exit.Fields {
			rec = append(rec, FormatFloat(v))
		}
		rec = append(rec, FormatFloat(tr.Profit))
		out = append(out, rec)
	}
	return out
}

// FormatFloat renders a float with the shortest exact representation.
func FormatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// FormatTime renders a timestamp as RFC3339.
func FormatTime(t time.Time) string { return t.Format(time.RFC3339) }
