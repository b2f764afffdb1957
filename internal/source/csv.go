package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/quantfolio/quantfolio/internal/core"
)

// CSV reads an aligned price table from a local CSV file. The first
// column is the date (YYYY-MM-DD); every remaining header cell names a
// ticker. A blank or non-numeric cell marks the price as missing for
// that period.
type CSV struct {
	path string
}

// NewCSV creates a CSV source for the given file path.
func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

func (c *CSV) Name() string {
	return "csv"
}

func (c *CSV) Fetch(ctx context.Context) (*core.PriceTable, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, core.WrapError(core.ErrSourceFailed, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, core.WrapError(core.ErrSourceFailed, err)
	}
	if len(records) < 2 {
		return nil, core.WrapError(core.ErrNoData,
			fmt.Errorf("%s: need a header and at least one data row", c.path))
	}

	header := records[0]
	if len(header) < 2 {
		return nil, core.WrapError(core.ErrSourceFailed,
			fmt.Errorf("%s: header needs a date column and at least one ticker", c.path))
	}
	tickers := make([]string, 0, len(header)-1)
	for _, h := range header[1:] {
		tk := strings.TrimSpace(h)
		if tk == "" {
			return nil, core.WrapError(core.ErrSourceFailed,
				fmt.Errorf("%s: blank ticker column in header", c.path))
		}
		tickers = append(tickers, tk)
	}

	rows := make([]core.PriceRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, core.WrapError(core.ErrSourceFailed,
				fmt.Errorf("%s: row %d has %d cells, want %d", c.path, i+2, len(rec), len(header)))
		}
		date, err := time.Parse("2006-01-02", strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, core.WrapError(core.ErrSourceFailed,
				fmt.Errorf("%s: row %d: %w", c.path, i+2, err))
		}

		prices := make(map[string]float64, len(tickers))
		for j, tk := range tickers {
			cell := strings.TrimSpace(rec[j+1])
			if cell == "" {
				continue // missing
			}
			p, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				continue // treat unparseable cells as missing, not fatal
			}
			prices[tk] = p
		}
		rows = append(rows, core.PriceRow{Date: date, Prices: prices})
	}

	table, err := core.NewPriceTable(tickers, rows)
	if err != nil {
		return nil, err
	}
	return table, nil
}
