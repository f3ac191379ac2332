package backtest

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"BacktestForge/internal/model"
)

// BuildTrades pairs each flat-to-long transition with the following
// long-to-flat transition and emits one trade per pair. An exit before the
// first entry and an entry after the last exit are unmatched and dropped.
// Requested fields are resolved on the entry row (entryFields) or the exit
// row (exitFields); a name the series does not carry fails with
// ErrUnknownColumn before any trade is built.
func BuildTrades(positions []model.PositionRow, fee float64, entryFields, exitFields []string) (*model.TradeTable, error) {
	return buildTrades(positions, fee, entryFields, exitFields, zerolog.Nop())
}

func buildTrades(positions []model.PositionRow, fee float64, entryFields, exitFields []string, logger zerolog.Logger) (*model.TradeTable, error) {
	if err := ValidateFee(fee); err != nil {
		return nil, err
	}
	table := &model.TradeTable{
		EntryFields: append([]string(nil), entryFields...),
		ExitFields:  append([]string(nil), exitFields...),
		Trades:      []model.Trade{},
	}
	if len(positions) > 0 {
		if err := checkFields(&positions[0].Row, "entry", entryFields); err != nil {
			return nil, err
		}
		if err := checkFields(&positions[0].Row, "exit", exitFields); err != nil {
			return nil, err
		}
	}

	entries, exits := transitions(positions)
	if len(exits) > 0 && (len(entries) == 0 || exits[0] < entries[0]) {
		logger.Debug().Time("exit", positions[exits[0]].Time).Msg("dropping exit without a preceding entry")
		exits = exits[1:]
	}
	if n := len(entries); n > 0 && (len(exits) == 0 || entries[n-1] > exits[len(exits)-1]) {
		logger.Debug().Time("entry", positions[entries[n-1]].Time).Msg("dropping entry still open at series end")
		entries = entries[:n-1]
	}

	for i := range entries {
		in, out := &positions[entries[i]].Row, &positions[exits[i]].Row
		entry, err := leg(in, "entry", entryFields)
		if err != nil {
			return nil, err
		}
		exit, err := leg(out, "exit", exitFields)
		if err != nil {
			return nil, err
		}
		table.Trades = append(table.Trades, model.Trade{
			Entry:  entry,
			Exit:   exit,
			Profit: ProfitRatio(in.Close, out.Close, fee),
		})
	}
	return table, nil
}

// transitions returns the indexes where the position rises (entries) and
// falls (exits) versus the previous row. The first row has no predecessor.
func transitions(positions []model.PositionRow) (entries, exits []int) {
	for i := 1; i < len(positions); i++ {
		prev, cur := positions[i-1].Position, positions[i].Position
		switch {
		case cur > prev:
			entries = append(entries, i)
		case cur < prev:
			exits = append(exits, i)
		}
	}
	return entries, exits
}

func checkFields(r *model.Row, side string, fields []string) error {
	for _, f := range fields {
		if _, ok := r.Value(f); !ok {
			return fmt.Errorf("%w: %s field %q", ErrUnknownColumn, side, f)
		}
	}
	return nil
}

func leg(r *model.Row, side string, fields []string) (model.TradeLeg, error) {
	l := model.TradeLeg{Time: r.Time, Close: r.Close, Volume: r.Volume}
	if len(fields) == 0 {
		return l, nil
	}
	l.Fields = make([]float64, len(fields))
	for i, f := range fields {
		v, ok := r.Value(f)
		if !ok {
			return l, fmt.Errorf("%w: %s field %q at %s", ErrUnknownColumn, side, f, model.FormatTime(r.Time))
		}
		l.Fields[i] = v
	}
	return l, nil
}

// ProfitRatio returns exitClose/entryClose - (1 + fee). The arithmetic is
// decimal so that e.g. 110/100 - 1.002 is exactly 0.098 before conversion.
func ProfitRatio(entryClose, exitClose, fee float64) float64 {
	if !finite(entryClose) || !finite(exitClose) || !finite(fee) || entryClose == 0 {
		return exitClose/entryClose - (1 + fee)
	}
	ratio := decimal.NewFromFloat(exitClose).Div(decimal.NewFromFloat(entryClose))
	cost := decimal.NewFromInt(1).Add(decimal.NewFromFloat(fee))
	f, _ := ratio.Sub(cost).Float64()
	return f
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
