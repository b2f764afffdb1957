package optimizer

import (
	"github.com/quantfolio/quantfolio/internal/core"
)

// Returns converts an aligned price table into per-period simple returns.
// A period contributes a row only when every ticker had a valid transition:
// both prices present and non-NaN, and the previous price non-zero. A single
// bad ticker drops the whole period for all assets.
func Returns(table *core.PriceTable) []core.ReturnRow {
	rows := table.Rows()
	tickers := table.Tickers()

	if len(rows) < 2 {
		return nil
	}

	out := make([]core.ReturnRow, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		rr := make(core.ReturnRow, len(tickers))
		valid := true
		for _, tk := range tickers {
			prev, okPrev := rows[i-1].Price(tk)
			curr, okCurr := rows[i].Price(tk)
			if !okPrev || !okCurr || prev == 0 {
				valid = false
				break
			}
			rr[tk] = (curr - prev) / prev
		}
		if valid {
			out = append(out, rr)
		}
	}
	return out
}
