package model

// Built-in column names shared by input tables and the trade table.
const (
	ColumnDate   = "date"
	ColumnOpen   = "open"
	ColumnHigh   = "high"
	ColumnLow    = "low"
	ColumnClose  = "close"
	ColumnVolume = "volume"
)

// RequiredColumns lists the columns every input table must carry.
var RequiredColumns = []string{ColumnDate, ColumnOpen, ColumnHigh, ColumnLow, ColumnClose, ColumnVolume}

// Row is one time step as seen by a strategy: the candle, the indicator
// columns added by the strategy, and the entry/exit flags it raised.
type Row struct {
	Candle
	Features map[string]float64
	Buy      bool
	Sell     bool
}

// SetFeature stores an indicator value on the row, allocating the map lazily.
func (r *Row) SetFeature(name string, v float64) {
	if r.Features == nil {
		r.Features = make(map[string]float64)
	}
	r.Features[name] = v
}

// Value resolves a numeric column by name. Price columns take precedence over
// features of the same name. The date column is not numeric and never resolves.
func (r *Row) Value(column string) (float64, bool) {
	switch column {
	case ColumnOpen:
		return r.Open, true
	case ColumnHigh:
		return r.High, true
	case ColumnLow:
		return r.Low, true
	case ColumnClose:
		return r.Close, true
	case ColumnVolume:
		return r.Volume, true
	}
	v, ok := r.Features[column]
	return v, ok
}

// RowsFromCandles wraps candles into rows with no features and no signals.
func RowsFromCandles(candles []Candle) []Row {
	rows := make([]Row, len(candles))
	for i, c := range candles {
		rows[i] = Row{Candle: c}
	}
	return rows
}

// CandlesOf returns the candle of every row, in row order.
func CandlesOf(rows []Row) []Candle {
	out := make([]Candle, len(rows))
	for i, r := range rows {
		out[i] = r.Candle
	}
	return out
}

// Position is the holding state of a single-unit strategy.
type Position int

const (
	Flat Position = 0
	Long Position = 1
)

// PositionRow is a Row with the position held at the end of that step.
type PositionRow struct {
	Row
	Position Position
}
