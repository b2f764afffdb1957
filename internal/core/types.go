package core

import (
	"math"
	"time"
)

// TradingPeriodsPerYear is the annualization factor for daily statistics.
const TradingPeriodsPerYear = 252.0

// PriceRow holds one period of closing prices keyed by ticker.
// A ticker is missing for the period when its key is absent or the
// stored value is NaN.
type PriceRow struct {
	Date   time.Time
	Prices map[string]float64
}

// Price returns the price for a ticker and whether it is valid.
func (r PriceRow) Price(ticker string) (float64, bool) {
	p, ok := r.Prices[ticker]
	if !ok || math.IsNaN(p) {
		return 0, false
	}
	return p, true
}

// PriceTable is an aligned series of price rows over a fixed ticker set.
// Rows are strictly ascending by date; the ticker order is fixed for the
// table's lifetime and defines the ordering of every derived vector and
// matrix.
type PriceTable struct {
	tickers []string
	rows    []PriceRow
}

// NewPriceTable builds a table from ordered rows. It fails when the
// ticker set is empty or the rows are not strictly ascending by date.
func NewPriceTable(tickers []string, rows []PriceRow) (*PriceTable, error) {
	if len(tickers) == 0 {
		return nil, WrapError(ErrNoData, errNoTickers)
	}
	for i := 1; i < len(rows); i++ {
		if !rows[i-1].Date.Before(rows[i].Date) {
			return nil, WrapError(ErrNoData, errUnsortedRows)
		}
	}
	return &PriceTable{
		tickers: append([]string(nil), tickers...),
		rows:    append([]PriceRow(nil), rows...),
	}, nil
}

// Tickers returns the fixed ticker order.
func (t *PriceTable) Tickers() []string {
	return t.tickers
}

// Rows returns the ordered price rows.
func (t *PriceTable) Rows() []PriceRow {
	return t.rows
}

// Len returns the number of rows.
func (t *PriceTable) Len() int {
	return len(t.rows)
}

// ReturnRow holds one period of simple returns keyed by ticker. A row
// exists only when every ticker in the table produced a valid return
// for the period.
type ReturnRow map[string]float64
