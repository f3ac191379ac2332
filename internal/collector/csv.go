package collector

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"BacktestForge/internal/backtest"
	"BacktestForge/internal/model"
)

// yahooLayout is the column order of a headerless Yahoo Finance export.
var yahooLayout = []string{"date", "open", "high", "low", "close", "adj_close", "volume"}

// plainLayout is the column order of a headerless OHLCV file.
var plainLayout = []string{"date", "open", "high", "low", "close", "volume"}

var columnAliases = map[string]string{
	"timestamp": model.ColumnDate,
	"time":      model.ColumnDate,
	"datetime":  model.ColumnDate,
	"adj close": "adj_close",
	"vol":       model.ColumnVolume,
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// CSVFetcher reads candles from CSV files: Path when set, otherwise
// <Dir>/<SYMBOL>.csv.
type CSVFetcher struct {
	Dir  string
	Path string
}

// NewCSVFetcher creates a fetcher reading from dir, or from a single file
// when path is not empty.
func NewCSVFetcher(dir, path string) *CSVFetcher {
	return &CSVFetcher{Dir: dir, Path: path}
}

func (f *CSVFetcher) Name() string { return "csv" }

func (f *CSVFetcher) FetchBars(_ context.Context, symbol string, limit int) ([]model.Candle, error) {
	path := f.Path
	if path == "" {
		path = filepath.Join(f.Dir, strings.ToUpper(symbol)+".csv")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	bars, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	// Files may be newest-first.
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return lastN(bars, limit), nil
}

// ReadCSV parses OHLCV candles. The header row is optional: without one the
// columns are taken as date,open,high,low,close[,adj_close],volume. Header
// names are case-insensitive; a missing required column fails before any row
// is parsed.
func ReadCSV(r io.Reader) ([]model.Candle, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	first, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []model.Candle{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var header []string
	var pending []string
	if _, err := parseDate(first[0]); err == nil {
		switch len(first) {
		case len(yahooLayout):
			header = yahooLayout
		case len(plainLayout):
			header = plainLayout
		default:
			return nil, fmt.Errorf("%w: headerless file with %d columns", backtest.ErrSchema, len(first))
		}
		pending = first
	} else {
		header = make([]string, len(first))
		for i, h := range first {
			header[i] = normalizeColumn(h)
		}
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	var missing []string
	for _, col := range model.RequiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", backtest.ErrSchema, strings.Join(missing, ", "))
	}

	bars := []model.Candle{}
	line := 1
	for {
		rec := pending
		pending = nil
		if rec == nil {
			line++
			rec, err = cr.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		c, err := parseRecord(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, c)
	}
	return bars, nil
}

func normalizeColumn(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := columnAliases[n]; ok {
		return alias
	}
	return strings.ReplaceAll(n, " ", "_")
}

func parseRecord(rec []string, idx map[string]int) (model.Candle, error) {
	field := func(col string) (string, error) {
		i := idx[col]
		if i >= len(rec) {
			return "", fmt.Errorf("%w: missing %s value", backtest.ErrSchema, col)
		}
		return strings.TrimSpace(rec[i]), nil
	}

	var c model.Candle
	raw, err := field(model.ColumnDate)
	if err != nil {
		return c, err
	}
	if c.Time, err = parseDate(raw); err != nil {
		return c, err
	}

	targets := []struct {
		col string
		dst *float64
	}{
		{model.ColumnOpen, &c.Open},
		{model.ColumnHigh, &c.High},
		{model.ColumnLow, &c.Low},
		{model.ColumnClose, &c.Close},
		{model.ColumnVolume, &c.Volume},
	}
	for _, t := range targets {
		raw, err := field(t.col)
		if err != nil {
			return c, err
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c, fmt.Errorf("%w: %s=%q", backtest.ErrSchema, t.col, raw)
		}
		*t.dst = v
	}
	return c, nil
}

// parseDate accepts the layouts in dateLayouts or a unix timestamp in seconds
// or milliseconds. Times without a zone are UTC.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: unparseable date %q", backtest.ErrSchema, s)
}
