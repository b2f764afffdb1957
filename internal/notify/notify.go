// Package notify delivers run completion webhooks.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/quantfolio/quantfolio/internal/core"
	"github.com/quantfolio/quantfolio/internal/optimizer"
)

// Notifier POSTs a JSON summary of a completed run to a webhook URL.
type Notifier struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// New creates a webhook notifier.
func New(url string, headers map[string]string) *Notifier {
	return &Notifier{
		url:     url,
		headers: headers,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Send posts the run summary. The full portfolio list is omitted; receivers
// that need it can fetch the run from the API or archive.
func (n *Notifier) Send(ctx context.Context, run *optimizer.RunResult) error {
	payload := map[string]any{
		"type":           "optimization_run",
		"run_id":         run.ID,
		"started_at":     run.StartedAt.Format(time.RFC3339),
		"finished_at":    run.FinishedAt.Format(time.RFC3339),
		"tickers":        run.Tickers,
		"portfolios":     len(run.Portfolios),
		"discarded":      run.Discarded,
		"min_volatility": portfolioPayload(run.Tickers, run.MinVolatility),
	}
	if run.MaxSharpe != nil {
		payload["max_sharpe"] = portfolioPayload(run.Tickers, run.MaxSharpe)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return core.WrapError(core.ErrNotifyFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return core.WrapError(core.ErrNotifyFailed, err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range n.headers {
		req.Header.Set(k, v)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return core.WrapError(core.ErrNotifyFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return core.WrapError(core.ErrNotifyFailed,
			fmt.Errorf("webhook returned %d", resp.StatusCode))
	}

	return nil
}

func portfolioPayload(tickers []string, p *optimizer.SimulatedPortfolio) map[string]any {
	if p == nil {
		return nil
	}
	weights := make(map[string]float64, len(tickers))
	for i, t := range tickers {
		weights[t] = p.Weights[i]
	}
	out := map[string]any{
		"weights":    weights,
		"return":     p.Return,
		"volatility": p.Volatility,
	}
	if p.SharpeDefined {
		out["sharpe"] = p.Sharpe
	}
	return out
}
