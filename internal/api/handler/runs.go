// internal/api/handler/runs.go
package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/quantfolio/quantfolio/internal/api/response"
	"github.com/quantfolio/quantfolio/internal/core"
	"github.com/quantfolio/quantfolio/internal/storage/archive"
	"github.com/quantfolio/quantfolio/internal/storage/history"
)

// RunsHandler serves the run history.
type RunsHandler struct {
	history *history.DB
	archive *archive.Runs // optional, serves full portfolio clouds
	log     *zap.Logger
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(db *history.DB, runs *archive.Runs, log *zap.Logger) *RunsHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RunsHandler{history: db, archive: runs, log: log}
}

// List returns recent runs, newest first. Supports ?limit=N.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			response.Error(w, http.StatusBadRequest,
				core.WrapError(core.ErrConfigInvalid, fmt.Errorf("limit must be a positive integer")))
			return
		}
		limit = n
	}

	runs, err := h.history.ListRuns(r.Context(), limit)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}

// Get returns a single run. When an archive is configured the full
// result (including every simulated portfolio) is returned, otherwise
// the history summary.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	run, err := h.history.GetRun(r.Context(), id)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	if h.archive != nil {
		full, err := h.archive.Load(r.Context(), id)
		if err == nil {
			response.JSON(w, http.StatusOK, full)
			return
		}
		h.log.Warn("archive load failed, serving summary",
			zap.String("run_id", id), zap.Error(err))
	}

	response.JSON(w, http.StatusOK, run)
}
