package recorder

import (
	"database/sql"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets reporting tools read while a scheduled run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS backtest_runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at  INTEGER NOT NULL,
			symbol      TEXT,
			strategy    TEXT,
			fee_percent REAL,
			bars        INTEGER,
			trade_count INTEGER,
			open_at_end INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON backtest_runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS backtest_trades (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      INTEGER NOT NULL REFERENCES backtest_runs(id),
			seq         INTEGER NOT NULL,
			entry_time  INTEGER NOT NULL,
			entry_close REAL,
			entry_volume REAL,
			exit_time   INTEGER NOT NULL,
			exit_close  REAL,
			exit_volume REAL,
			profit      REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_run ON backtest_trades(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores the run and its trades in one transaction and returns the
// new run id.
func (r *SQLiteRecorder) RecordRun(run *RunRecord) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	started := run.StartedAt
	if started.IsZero() {
		started = time.Now()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO backtest_runs
		(started_at, symbol, strategy, fee_percent, bars, trade_count, open_at_end)
		VALUES (?,?,?,?,?,?,?)`,
		started.UnixMilli(), run.Symbol, run.Strategy, run.FeePercent,
		run.Bars, run.Trades.Len(), boolInt(run.OpenAtEnd),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	if run.Trades != nil {
		stmt, err := tx.Prepare(`INSERT INTO backtest_trades
			(run_id, seq, entry_time, entry_close, entry_volume, exit_time, exit_close, exit_volume, profit)
			VALUES (?,?,?,?,?,?,?,?,?)`)
		if err != nil {
			return 0, fmt.Errorf("prepare trade insert: %w", err)
		}
		defer stmt.Close()
		for i, tr := range run.Trades.Trades {
			if _, err := stmt.Exec(id, i,
				tr.Entry.Time.UnixMilli(), tr.Entry.Close, tr.Entry.Volume,
				tr.Exit.Time.UnixMilli(), tr.Exit.Close, tr.Exit.Volume,
				nullable(tr.Profit),
			); err != nil {
				return 0, fmt.Errorf("insert trade %d: %w", i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	run.ID = id
	run.TradeCount = run.Trades.Len()
	return id, nil
}

// ListRuns returns up to limit runs, newest first. limit <= 0 returns all.
func (r *SQLiteRecorder) ListRuns(limit int) ([]RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(`SELECT id, started_at, symbol, strategy, fee_percent, bars, trade_count, open_at_end
		FROM backtest_runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var (
			rec     RunRecord
			started int64
			open    int
		)
		if err := rows.Scan(&rec.ID, &started, &rec.Symbol, &rec.Strategy,
			&rec.FeePercent, &rec.Bars, &rec.TradeCount, &open); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.StartedAt = time.UnixMilli(started)
		rec.OpenAtEnd = open != 0
		out = append(out, rec)
	}
	return out, rows.Err()
}

// TradeProfits returns the stored profits of a run in trade order.
func (r *SQLiteRecorder) TradeProfits(runID int64) ([]float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT profit FROM backtest_trades WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var p sql.NullFloat64
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		if p.Valid {
			out = append(out, p.Float64)
		} else {
			out = append(out, math.NaN())
		}
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nullable stores non-finite profits as NULL.
func nullable(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}
