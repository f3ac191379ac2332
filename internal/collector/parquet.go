package collector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"BacktestForge/internal/model"
)

// BarRecord is the Parquet schema for bar data.
type BarRecord struct {
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    float64 `parquet:"volume"`
}

// ParquetFetcher reads candles from <Dir>/<SYMBOL>.parquet.
type ParquetFetcher struct {
	Dir string
}

// NewParquetFetcher creates a fetcher rooted at dir.
func NewParquetFetcher(dir string) *ParquetFetcher {
	return &ParquetFetcher{Dir: dir}
}

func (f *ParquetFetcher) Name() string { return "parquet" }

// Path returns the file holding symbol's bars.
func (f *ParquetFetcher) Path(symbol string) string {
	return filepath.Join(f.Dir, strings.ToUpper(symbol)+".parquet")
}

func (f *ParquetFetcher) FetchBars(_ context.Context, symbol string, limit int) ([]model.Candle, error) {
	path := f.Path(symbol)
	records, err := parquet.ReadFile[BarRecord](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp < records[j].Timestamp
	})

	bars := make([]model.Candle, len(records))
	for i, r := range records {
		bars[i] = model.Candle{
			Time:   time.UnixMilli(r.Timestamp).UTC(),
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		}
	}
	return lastN(bars, limit), nil
}

// WriteBars stores bars for symbol, replacing any existing file.
func (f *ParquetFetcher) WriteBars(symbol string, bars []model.Candle) error {
	return WriteParquetBars(f.Path(symbol), bars)
}

// WriteParquetBars writes bars to path in the BarRecord layout.
func WriteParquetBars(path string, bars []model.Candle) error {
	records := make([]BarRecord, len(bars))
	for i, b := range bars {
		records[i] = BarRecord{
			Timestamp: b.Time.UnixMilli(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
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
