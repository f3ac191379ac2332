package backtest

import "BacktestForge/internal/model"

// PositionScanner folds buy/sell flags into a long/flat position, carrying the
// last defined state from one Scan call to the next. Feeding a series in
// chunks yields the same rows as feeding it whole.
type PositionScanner struct {
	current model.Position
	defined bool
}

// Scan emits one PositionRow per input row, in input order. A row with a sell
// flag is flat, a row with only a buy flag is long, and a row without flags
// holds the previous state. Rows before the first flag ever seen are dropped.
func (s *PositionScanner) Scan(rows []model.Row) []model.PositionRow {
	out := make([]model.PositionRow, 0, len(rows))
	for _, r := range rows {
		switch {
		case r.Sell:
			s.current, s.defined = model.Flat, true
		case r.Buy:
			s.current, s.defined = model.Long, true
		}
		if !s.defined {
			continue
		}
		out = append(out, model.PositionRow{Row: r, Position: s.current})
	}
	return out
}

// State returns the position carried into the next Scan and whether any
// signal has been seen yet.
func (s *PositionScanner) State() (model.Position, bool) {
	return s.current, s.defined
}

// BuildPositions reduces a signal series to its position series.
func BuildPositions(rows []model.Row) []model.PositionRow {
	var s PositionScanner
	return s.Scan(rows)
}
