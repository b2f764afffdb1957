package optimizer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quantfolio/quantfolio/internal/core"
	"github.com/quantfolio/quantfolio/internal/logger"
	"go.uber.org/zap"
)

// Engine orchestrates the full pipeline: price table -> returns ->
// statistics -> Monte Carlo -> selection. It holds no state between
// runs; every run recomputes from scratch and a statistics failure
// aborts the run with no partial result.
type Engine struct {
	sim *Simulator
	log *zap.Logger
}

// NewEngine creates an Engine.
func NewEngine(log *zap.Logger) *Engine {
	return &Engine{
		sim: NewSimulator(log),
		log: log,
	}
}

// Run executes one optimization over the given price table.
func (e *Engine) Run(ctx context.Context, table *core.PriceTable, cfg Config) (*RunResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	started := time.Now().UTC()
	log := logger.WithRun(e.log, id)

	returns := Returns(table)
	log.Debug("computed return rows",
		zap.Int("price_rows", table.Len()),
		zap.Int("return_rows", len(returns)),
	)

	bundle, err := Estimate(table.Tickers(), returns)
	if err != nil {
		log.Warn("statistics estimation failed", zap.Error(err))
		return nil, err
	}

	simResult, err := e.sim.Run(ctx, bundle, cfg)
	if err != nil {
		return nil, err
	}

	selection, err := Select(simResult)
	if err != nil {
		log.Warn("frontier selection failed", zap.Error(err))
		return nil, err
	}

	finished := time.Now().UTC()
	log.Info("optimization complete",
		zap.Int("iterations", cfg.Iterations),
		zap.Int("portfolios", len(simResult.Portfolios)),
		zap.Int("discarded", simResult.Discarded),
		zap.Duration("took", finished.Sub(started)),
	)

	return &RunResult{
		ID:            id,
		StartedAt:     started,
		FinishedAt:    finished,
		Config:        cfg,
		Tickers:       table.Tickers(),
		Stats:         bundle,
		Portfolios:    simResult.Portfolios,
		Discarded:     simResult.Discarded,
		MaxSharpe:     selection.MaxSharpe,
		MinVolatility: selection.MinVolatility,
	}, nil
}
