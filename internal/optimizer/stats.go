package optimizer

import (
	"fmt"

	"github.com/quantfolio/quantfolio/internal/core"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Estimate derives an annualized mean-return vector and covariance matrix
// from return rows. Covariance uses the sample (n-1) estimator with daily
// mean centering, then scales by the trading-periods-per-year constant, so
// at least 2 return rows are required.
func Estimate(tickers []string, rows []core.ReturnRow) (*StatsBundle, error) {
	n := len(rows)
	if n < 2 {
		return nil, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("have %d return rows, need at least 2", n))
	}

	k := len(tickers)
	data := mat.NewDense(n, k, nil)
	for i, row := range rows {
		for j, tk := range tickers {
			data.Set(i, j, row[tk])
		}
	}

	means := make([]float64, k)
	for j := range tickers {
		col := mat.Col(nil, j, data)
		means[j] = stat.Mean(col, nil) * core.TradingPeriodsPerYear
	}

	daily := mat.NewSymDense(k, nil)
	stat.CovarianceMatrix(daily, data, nil)

	annual := mat.NewSymDense(k, nil)
	annual.ScaleSym(core.TradingPeriodsPerYear, daily)

	return &StatsBundle{
		Tickers:     append([]string(nil), tickers...),
		AnnualMeans: means,
		Cov:         annual,
	}, nil
}
