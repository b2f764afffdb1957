// internal/storage/archive/runs.go
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/quantfolio/quantfolio/internal/core"
	"github.com/quantfolio/quantfolio/internal/optimizer"
)

// Runs stores full optimization run documents (including the entire
// portfolio cloud) as JSON on any Storage backend, keyed by run ID.
type Runs struct {
	storage Storage
}

// NewRuns creates a typed run archive over a storage backend.
func NewRuns(storage Storage) *Runs {
	return &Runs{storage: storage}
}

func runPath(id string) string {
	return path.Join("runs", id+".json")
}

// Save archives a completed run.
func (r *Runs) Save(ctx context.Context, result *optimizer.RunResult) error {
	if result.ID == "" {
		return core.WrapError(core.ErrStoreFailed, fmt.Errorf("run has no ID"))
	}
	data, err := json.Marshal(result)
	if err != nil {
		return core.WrapError(core.ErrStoreFailed, err)
	}
	if err := r.storage.Write(ctx, runPath(result.ID), data); err != nil {
		return core.WrapError(core.ErrStoreFailed, err)
	}
	return nil
}

// Load retrieves an archived run by ID.
func (r *Runs) Load(ctx context.Context, id string) (*optimizer.RunResult, error) {
	exists, err := r.storage.Exists(ctx, runPath(id))
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	if !exists {
		return nil, core.WrapError(core.ErrRunNotFound, fmt.Errorf("run %s", id))
	}

	data, err := r.storage.Read(ctx, runPath(id))
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	var result optimizer.RunResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	return &result, nil
}

// List returns the IDs of all archived runs.
func (r *Runs) List(ctx context.Context) ([]string, error) {
	paths, err := r.storage.List(ctx, "runs")
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	ids := make([]string, 0, len(paths))
	for _, p := range paths {
		base := path.Base(p)
		if strings.HasSuffix(base, ".json") {
			ids = append(ids, strings.TrimSuffix(base, ".json"))
		}
	}
	return ids, nil
}
