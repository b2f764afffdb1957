package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/quantfolio/quantfolio/internal/core"
	"github.com/quantfolio/quantfolio/internal/optimizer"
	_ "modernc.org/sqlite"
)

// Run is the persisted summary of one optimization run. The full
// portfolio cloud lives in the archive; history keeps only what the
// list and detail views need.
type Run struct {
	ID            string                        `json:"id"`
	StartedAt     time.Time                     `json:"started_at"`
	FinishedAt    time.Time                     `json:"finished_at"`
	Config        optimizer.Config              `json:"config"`
	Tickers       []string                      `json:"tickers"`
	Portfolios    int                           `json:"portfolios"`
	Discarded     int                           `json:"discarded"`
	MaxSharpe     *optimizer.SimulatedPortfolio `json:"max_sharpe,omitempty"`
	MinVolatility *optimizer.SimulatedPortfolio `json:"min_volatility"`
}

// DB wraps a SQLite run-history database.
type DB struct {
	sql *sql.DB
}

// Open opens (or creates) the SQLite database and runs migrations.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, fmt.Errorf("open db: %w", err))
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, core.WrapError(core.ErrStoreFailed, fmt.Errorf("ping db: %w", err))
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, core.WrapError(core.ErrStoreFailed, fmt.Errorf("migrate db: %w", err))
	}
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	_, err := d.sql.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			config TEXT NOT NULL,
			tickers TEXT NOT NULL,
			portfolios INTEGER NOT NULL,
			discarded INTEGER NOT NULL,
			max_sharpe TEXT,
			min_volatility TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
	`)
	return err
}

// InsertRun persists the summary of a completed run.
func (d *DB) InsertRun(ctx context.Context, result *optimizer.RunResult) error {
	cfg, err := json.Marshal(result.Config)
	if err != nil {
		return core.WrapError(core.ErrStoreFailed, err)
	}
	tickers, err := json.Marshal(result.Tickers)
	if err != nil {
		return core.WrapError(core.ErrStoreFailed, err)
	}
	maxSharpe, err := marshalNullable(result.MaxSharpe)
	if err != nil {
		return core.WrapError(core.ErrStoreFailed, err)
	}
	minVol, err := marshalNullable(result.MinVolatility)
	if err != nil {
		return core.WrapError(core.ErrStoreFailed, err)
	}

	_, err = d.sql.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, config, tickers, portfolios, discarded, max_sharpe, min_volatility)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID,
		result.StartedAt.Format(time.RFC3339Nano),
		result.FinishedAt.Format(time.RFC3339Nano),
		string(cfg),
		string(tickers),
		len(result.Portfolios),
		result.Discarded,
		maxSharpe,
		minVol,
	)
	if err != nil {
		return core.WrapError(core.ErrStoreFailed, fmt.Errorf("insert run %s: %w", result.ID, err))
	}
	return nil
}

// GetRun retrieves one run summary by ID.
func (d *DB) GetRun(ctx context.Context, id string) (*Run, error) {
	row := d.sql.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, config, tickers, portfolios, discarded, max_sharpe, min_volatility
		FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.WrapError(core.ErrRunNotFound, fmt.Errorf("run %s", id))
	}
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	return run, nil
}

// ListRuns returns the most recent run summaries, newest first.
func (d *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.sql.QueryContext(ctx, `
		SELECT id, started_at, finished_at, config, tickers, portfolios, discarded, max_sharpe, min_volatility
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, core.WrapError(core.ErrStoreFailed, err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var run Run
	var startedAt, finishedAt, cfg, tickers string
	var maxSharpe, minVol sql.NullString

	if err := s.Scan(&run.ID, &startedAt, &finishedAt, &cfg, &tickers,
		&run.Portfolios, &run.Discarded, &maxSharpe, &minVol); err != nil {
		return nil, err
	}

	var err error
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return nil, err
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(cfg), &run.Config); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tickers), &run.Tickers); err != nil {
		return nil, err
	}
	if run.MaxSharpe, err = unmarshalNullable(maxSharpe); err != nil {
		return nil, err
	}
	if run.MinVolatility, err = unmarshalNullable(minVol); err != nil {
		return nil, err
	}
	return &run, nil
}

func marshalNullable(p *optimizer.SimulatedPortfolio) (sql.NullString, error) {
	if p == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalNullable(s sql.NullString) (*optimizer.SimulatedPortfolio, error) {
	if !s.Valid {
		return nil, nil
	}
	var p optimizer.SimulatedPortfolio
	if err := json.Unmarshal([]byte(s.String), &p); err != nil {
		return nil, err
	}
	return &p, nil
}
