// internal/api/handler/optimize.go
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/quantfolio/quantfolio/internal/api/job"
	"github.com/quantfolio/quantfolio/internal/api/response"
	"github.com/quantfolio/quantfolio/internal/core"
	"github.com/quantfolio/quantfolio/internal/insight"
	"github.com/quantfolio/quantfolio/internal/metrics"
	"github.com/quantfolio/quantfolio/internal/notify"
	"github.com/quantfolio/quantfolio/internal/optimizer"
	"github.com/quantfolio/quantfolio/internal/source"
	"github.com/quantfolio/quantfolio/internal/storage/archive"
	"github.com/quantfolio/quantfolio/internal/storage/history"
)

const optimizeTimeout = 5 * time.Minute

// OptimizeRequest is the request body for starting an optimization run.
// Omitted fields fall back to the server's configured defaults.
type OptimizeRequest struct {
	Iterations   int      `json:"iterations,omitempty"`
	RiskFreeRate *float64 `json:"risk_free_rate,omitempty"`
	Workers      int      `json:"workers,omitempty"`
	Seed         int64    `json:"seed,omitempty"`
}

// OptimizeDeps bundles the collaborators of the optimize handler.
// History, Archive, Notifier, Narrator and Metrics are optional.
type OptimizeDeps struct {
	Jobs     *job.Store
	Engine   *optimizer.Engine
	Source   source.Source
	Defaults optimizer.Config
	History  *history.DB
	Archive  *archive.Runs
	Notifier *notify.Notifier
	Narrator *insight.Narrator
	Metrics  *metrics.Registry
	Log      *zap.Logger
}

// OptimizeHandler runs optimizations as async jobs.
type OptimizeHandler struct {
	deps OptimizeDeps
}

// NewOptimizeHandler creates a new optimize handler.
func NewOptimizeHandler(deps OptimizeDeps) *OptimizeHandler {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &OptimizeHandler{deps: deps}
}

// Create starts a new optimization job.
func (h *OptimizeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, err))
		return
	}

	cfg := h.deps.Defaults
	if req.Iterations > 0 {
		cfg.Iterations = req.Iterations
	}
	if req.RiskFreeRate != nil {
		cfg.RiskFreeRate = *req.RiskFreeRate
	}
	if req.Workers > 0 {
		cfg.Workers = req.Workers
	}
	if req.Seed != 0 {
		cfg.Seed = req.Seed
	}

	if err := cfg.Validate(); err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	j := h.deps.Jobs.Create("optimize")

	// Copy values before starting goroutine to avoid race
	jobID := j.ID
	status := j.Status

	go h.runOptimize(jobID, cfg)

	response.JSON(w, http.StatusAccepted, map[string]any{
		"job_id": jobID,
		"status": status,
	})
}

// runOptimize executes the run and updates job status.
func (h *OptimizeHandler) runOptimize(jobID string, cfg optimizer.Config) {
	h.deps.Jobs.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusRunning
	})

	ctx, cancel := context.WithTimeout(context.Background(), optimizeTimeout)
	defer cancel()

	start := time.Now()

	table, err := h.deps.Source.Fetch(ctx)
	if err != nil {
		h.failJob(jobID, core.WrapError(core.ErrSourceFailed, err), start, cfg)
		return
	}

	run, err := h.deps.Engine.Run(ctx, table, cfg)
	if err != nil {
		h.failJob(jobID, err, start, cfg)
		return
	}

	result := map[string]any{
		"run_id":         run.ID,
		"tickers":        run.Tickers,
		"portfolios":     len(run.Portfolios),
		"discarded":      run.Discarded,
		"max_sharpe":     run.MaxSharpe,
		"min_volatility": run.MinVolatility,
	}

	// Post-run collaborators are best effort: the optimization itself
	// has succeeded, so their failures only get logged.
	log := h.deps.Log.With(zap.String("run_id", run.ID))

	if h.deps.Narrator != nil {
		commentary, err := h.deps.Narrator.Narrate(ctx, run)
		if err != nil {
			log.Warn("commentary failed", zap.Error(err))
		} else {
			result["commentary"] = commentary
		}
	}
	if h.deps.History != nil {
		if err := h.deps.History.InsertRun(ctx, run); err != nil {
			log.Error("history insert failed", zap.Error(err))
		}
	}
	if h.deps.Archive != nil {
		if err := h.deps.Archive.Save(ctx, run); err != nil {
			log.Error("archive save failed", zap.Error(err))
		}
	}
	if h.deps.Notifier != nil {
		if err := h.deps.Notifier.Send(ctx, run); err != nil {
			log.Warn("webhook failed", zap.Error(err))
		}
	}
	if h.deps.Metrics != nil {
		h.deps.Metrics.RecordRun("ok", time.Since(start).Seconds(),
			cfg.Iterations, run.Discarded)
	}

	h.deps.Jobs.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusComplete
		j.Result = result
	})
}

func (h *OptimizeHandler) failJob(jobID string, err error, start time.Time, cfg optimizer.Config) {
	h.deps.Log.Error("optimization failed",
		zap.String("job_id", jobID), zap.Error(err))

	if h.deps.Metrics != nil {
		h.deps.Metrics.RecordRun("failed", time.Since(start).Seconds(),
			cfg.Iterations, 0)
	}

	var coreErr *core.Error
	if !errors.As(err, &coreErr) {
		coreErr = core.WrapError(core.ErrSourceFailed, err)
	}
	h.deps.Jobs.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusFailed
		j.Error = coreErr
	})
}

// GetJob returns the status of an optimization job.
func (h *OptimizeHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	j, err := h.deps.Jobs.Get(r.PathValue("id"))
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	resp := map[string]any{
		"job_id": j.ID,
		"status": j.Status,
	}
	if j.Status == job.StatusComplete {
		resp["result"] = j.Result
	}
	if j.Status == job.StatusFailed && j.Error != nil {
		resp["error"] = map[string]string{
			"code":    j.Error.Code,
			"message": j.Error.Message,
		}
	}

	response.JSON(w, http.StatusOK, resp)
}
