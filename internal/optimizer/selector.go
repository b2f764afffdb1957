package optimizer

import (
	"fmt"

	"github.com/quantfolio/quantfolio/internal/core"
)

// Select scans a simulation result for the maximum-Sharpe and
// minimum-volatility portfolios. Entries without a defined Sharpe are
// excluded from the max-Sharpe search but still compete on volatility.
// Ties break on first occurrence in generation order. Fails when the
// result holds zero valid entries.
func Select(result *SimulationResult) (*Selection, error) {
	if result == nil || len(result.Portfolios) == 0 {
		return nil, core.WrapError(core.ErrEmptyResultSet,
			fmt.Errorf("nothing to select from"))
	}

	var maxSharpe *SimulatedPortfolio
	var minVol *SimulatedPortfolio

	for i := range result.Portfolios {
		p := &result.Portfolios[i]
		if p.SharpeDefined && (maxSharpe == nil || p.Sharpe > maxSharpe.Sharpe) {
			maxSharpe = p
		}
		if minVol == nil || p.Volatility < minVol.Volatility {
			minVol = p
		}
	}

	sel := &Selection{MinVolatility: clone(minVol)}
	if maxSharpe != nil {
		sel.MaxSharpe = clone(maxSharpe)
	}
	return sel, nil
}

// clone copies a portfolio so the selection does not alias the result set.
func clone(p *SimulatedPortfolio) *SimulatedPortfolio {
	c := *p
	c.Weights = append([]float64(nil), p.Weights...)
	return &c
}
