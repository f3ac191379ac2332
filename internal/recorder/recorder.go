// Package recorder persists backtest runs and their trades for later analysis.
package recorder

import (
	"time"

	"BacktestForge/internal/model"
)

// RunRecord holds the metadata and trade table of one backtest run.
type RunRecord struct {
	ID         int64
	Symbol     string
	Strategy   string
	FeePercent float64
	Bars       int
	TradeCount int
	OpenAtEnd  bool
	StartedAt  time.Time
	Trades     *model.TradeTable // nil when loaded by ListRuns
}

// Recorder persists run history.
type Recorder interface {
	RecordRun(run *RunRecord) (int64, error)
	ListRuns(limit int) ([]RunRecord, error)
	Close() error
}
