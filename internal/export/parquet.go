package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"BacktestForge/internal/model"
)

// FieldValue is one requested extra column of a trade leg.
type FieldValue struct {
	Name  string  `parquet:"name"`
	Value float64 `parquet:"value"`
}

// TradeRecord is the Parquet schema for one trade.
type TradeRecord struct {
	Date        int64        `parquet:"date,timestamp(millisecond)"` // Unix ms
	Close       float64      `parquet:"close"`
	Volume      float64      `parquet:"volume"`
	EntryFields []FieldValue `parquet:"entry_fields"`
	CloseDate   int64        `parquet:"close_date,timestamp(millisecond)"` // Unix ms
	CloseClose  float64      `parquet:"close_close"`
	CloseVolume float64      `parquet:"close_volume"`
	ExitFields  []FieldValue `parquet:"exit_fields"`
	CloseProfit float64      `parquet:"close_profit"`
}

// WriteParquet writes the trade table to path, creating parent directories.
func WriteParquet(path string, table *model.TradeTable) error {
	records := make([]TradeRecord, len(table.Trades))
	for i, tr := range table.Trades {
		records[i] = TradeRecord{
			Date:        tr.Entry.Time.UnixMilli(),
			Close:       tr.Entry.Close,
			Volume:      tr.Entry.Volume,
			EntryFields: fieldValues(table.EntryFields, tr.Entry.Fields),
			CloseDate:   tr.Exit.Time.UnixMilli(),
			CloseClose:  tr.Exit.Close,
			CloseVolume: tr.Exit.Volume,
			ExitFields:  fieldValues(table.ExitFields, tr.Exit.Fields),
			CloseProfit: tr.Profit,
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := parquet.WriteFile(path, records); err != nil {
		return fmt.Errorf("write parquet %s: %w", path, err)
	}
	return nil
}

// ReadParquet loads a trade table written by WriteParquet. Field names are
// taken from the first trade; a file without trades yields no field names.
func ReadParquet(path string) (*model.TradeTable, error) {
	records, err := parquet.ReadFile[TradeRecord](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	table := &model.TradeTable{Trades: make([]model.Trade, len(records))}
	for i, r := range records {
		if i == 0 {
			table.EntryFields = fieldNames(r.EntryFields)
			table.ExitFields = fieldNames(r.ExitFields)
		}
		table.Trades[i] = model.Trade{
			Entry: model.TradeLeg{
				Time:   time.UnixMilli(r.Date).UTC(),
				Close:  r.Close,
				Volume: r.Volume,
				Fields: fieldData(r.EntryFields),
			},
			Exit: model.TradeLeg{
				Time:   time.UnixMilli(r.CloseDate).UTC(),
				Close:  r.CloseClose,
				Volume: r.CloseVolume,
				Fields: fieldData(r.ExitFields),
			},
			Profit: r.CloseProfit,
		}
	}
	return table, nil
}

func fieldValues(names []string, values []float64) []FieldValue {
	if len(names) == 0 {
		return nil
	}
	out := make([]FieldValue, len(names))
	for i, n := range names {
		out[i] = FieldValue{Name: n, Value: values[i]}
	}
	return out
}

func fieldNames(fv []FieldValue) []string {
	if len(fv) == 0 {
		return nil
	}
	out := make([]string, len(fv))
	for i, f := range fv {
		out[i] = f.Name
	}
	return out
}

func fieldData(fv []FieldValue) []float64 {
	if len(fv) == 0 {
		return nil
	}
	out := make([]float64, len(fv))
	for i, f := range fv {
		out[i] = f.Value
	}
	return out
}
