// Package export writes trade tables to CSV and Parquet files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"BacktestForge/internal/model"
)

// WriteCSV writes the flat trade table: one header row, then one row per trade.
func WriteCSV(w io.Writer, table *model.TradeTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Columns()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(table.Records()); err != nil {
		return fmt.Errorf("write trades: %w", err)
	}
	return nil
}

// WriteCSVFile writes the trade table to path, creating parent directories.
func WriteCSVFile(path string, table *model.TradeTable) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := WriteCSV(f, table); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
