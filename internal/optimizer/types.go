package optimizer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/quantfolio/quantfolio/internal/core"
	"gonum.org/v1/gonum/mat"
)

// StatsBundle holds annualized return statistics for a fixed ticker order.
// AnnualMeans and Cov are aligned to Tickers; Cov is symmetric with
// diagonal entries equal to annualized variances.
type StatsBundle struct {
	Tickers     []string
	AnnualMeans []float64
	Cov         *mat.SymDense
}

// MeanFor returns the annualized mean return for a ticker.
func (b *StatsBundle) MeanFor(ticker string) (float64, bool) {
	for i, tk := range b.Tickers {
		if tk == ticker {
			return b.AnnualMeans[i], true
		}
	}
	return 0, false
}

// statsBundleJSON is the wire form of StatsBundle.
type statsBundleJSON struct {
	Tickers     []string    `json:"tickers"`
	AnnualMeans []float64   `json:"annual_means"`
	Cov         [][]float64 `json:"cov"`
}

// MarshalJSON encodes the covariance matrix as a nested array.
func (b *StatsBundle) MarshalJSON() ([]byte, error) {
	k := len(b.Tickers)
	cov := make([][]float64, k)
	for i := 0; i < k; i++ {
		cov[i] = make([]float64, k)
		for j := 0; j < k; j++ {
			cov[i][j] = b.Cov.At(i, j)
		}
	}
	return json.Marshal(statsBundleJSON{
		Tickers:     b.Tickers,
		AnnualMeans: b.AnnualMeans,
		Cov:         cov,
	})
}

// UnmarshalJSON decodes the nested-array form back into a SymDense.
func (b *StatsBundle) UnmarshalJSON(data []byte) error {
	var w statsBundleJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	k := len(w.Tickers)
	cov := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		if len(w.Cov) <= i || len(w.Cov[i]) != k {
			return fmt.Errorf("cov matrix is not %dx%d", k, k)
		}
		for j := i; j < k; j++ {
			cov.SetSym(i, j, w.Cov[i][j])
		}
	}
	b.Tickers = w.Tickers
	b.AnnualMeans = w.AnnualMeans
	b.Cov = cov
	return nil
}

// SimulatedPortfolio is one priced random weight vector. Weights are
// aligned to the bundle's ticker order, non-negative, and sum to 1.
// Sharpe is meaningful only when SharpeDefined is true; a portfolio
// with exactly zero volatility has no defined Sharpe ratio.
type SimulatedPortfolio struct {
	Weights       []float64 `json:"weights"`
	Return        float64   `json:"return"`
	Volatility    float64   `json:"volatility"`
	Sharpe        float64   `json:"sharpe"`
	SharpeDefined bool      `json:"sharpe_defined"`
}

// SimulationResult is the ordered cloud of priced portfolios from one
// Monte Carlo pass. Discarded counts degenerate draws that were skipped.
type SimulationResult struct {
	Portfolios []SimulatedPortfolio `json:"portfolios"`
	Discarded  int                  `json:"discarded"`
}

// Selection holds the two notable portfolios picked from a simulation.
// MaxSharpe is nil when no portfolio in the set had a defined Sharpe.
type Selection struct {
	MaxSharpe     *SimulatedPortfolio `json:"max_sharpe,omitempty"`
	MinVolatility *SimulatedPortfolio `json:"min_volatility"`
}

// Config controls a single optimization run.
type Config struct {
	RiskFreeRate float64 `json:"risk_free_rate"`
	Iterations   int     `json:"iterations"`
	Workers      int     `json:"workers"`
	Seed         int64   `json:"seed"`
}

// DefaultConfig returns the standard run configuration.
func DefaultConfig() Config {
	return Config{
		RiskFreeRate: 0.02,
		Iterations:   2000,
		Workers:      1,
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.Iterations <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("iterations must be positive, got %d", c.Iterations))
	}
	if c.Workers < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("workers cannot be negative, got %d", c.Workers))
	}
	return nil
}

// RunResult is the complete output of one optimization run.
type RunResult struct {
	ID            string               `json:"id"`
	StartedAt     time.Time            `json:"started_at"`
	FinishedAt    time.Time            `json:"finished_at"`
	Config        Config               `json:"config"`
	Tickers       []string             `json:"tickers"`
	Stats         *StatsBundle         `json:"stats"`
	Portfolios    []SimulatedPortfolio `json:"portfolios"`
	Discarded     int                  `json:"discarded"`
	MaxSharpe     *SimulatedPortfolio  `json:"max_sharpe,omitempty"`
	MinVolatility *SimulatedPortfolio  `json:"min_volatility"`
}
