package optimizer

import (
	"math"
	"testing"
	"time"

	"github.com/quantfolio/quantfolio/internal/core"
)

func day(n int) time.Time {
	return time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC)
}

func mustTable(t *testing.T, tickers []string, rows []core.PriceRow) *core.PriceTable {
	t.Helper()
	table, err := core.NewPriceTable(tickers, rows)
	if err != nil {
		t.Fatalf("NewPriceTable: %v", err)
	}
	return table
}

func TestReturns_AllValid(t *testing.T) {
	table := mustTable(t, []string{"SPY", "TLT"}, []core.PriceRow{
		{Date: day(1), Prices: map[string]float64{"SPY": 100, "TLT": 50}},
		{Date: day(2), Prices: map[string]float64{"SPY": 110, "TLT": 49}},
		{Date: day(3), Prices: map[string]float64{"SPY": 99, "TLT": 49}},
	})

	rows := Returns(table)
	if len(rows) != 2 {
		t.Fatalf("got %d return rows, want 2", len(rows))
	}
	if math.Abs(rows[0]["SPY"]-0.10) > 1e-12 {
		t.Errorf("SPY return = %f, want 0.10", rows[0]["SPY"])
	}
	if math.Abs(rows[0]["TLT"]-(-0.02)) > 1e-12 {
		t.Errorf("TLT return = %f, want -0.02", rows[0]["TLT"])
	}
	if math.Abs(rows[1]["TLT"]) > 1e-12 {
		t.Errorf("flat TLT return = %f, want 0", rows[1]["TLT"])
	}
}

func TestReturns_BadTickerDropsWholeRow(t *testing.T) {
	tests := []struct {
		name   string
		second core.PriceRow
	}{
		{
			name:   "missing ticker",
			second: core.PriceRow{Date: day(2), Prices: map[string]float64{"SPY": 110}},
		},
		{
			name:   "NaN price",
			second: core.PriceRow{Date: day(2), Prices: map[string]float64{"SPY": 110, "TLT": math.NaN()}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := mustTable(t, []string{"SPY", "TLT"}, []core.PriceRow{
				{Date: day(1), Prices: map[string]float64{"SPY": 100, "TLT": 50}},
				tt.second,
				{Date: day(3), Prices: map[string]float64{"SPY": 105, "TLT": 51}},
			})

			rows := Returns(table)
			// Both transitions touch the bad row, so both are dropped
			// even though SPY alone was always valid.
			if len(rows) != 0 {
				t.Errorf("got %d return rows, want 0", len(rows))
			}
		})
	}
}

func TestReturns_ZeroPreviousPrice(t *testing.T) {
	table := mustTable(t, []string{"SPY"}, []core.PriceRow{
		{Date: day(1), Prices: map[string]float64{"SPY": 0}},
		{Date: day(2), Prices: map[string]float64{"SPY": 110}},
		{Date: day(3), Prices: map[string]float64{"SPY": 121}},
	})

	rows := Returns(table)
	if len(rows) != 1 {
		t.Fatalf("got %d return rows, want 1", len(rows))
	}
	if math.Abs(rows[0]["SPY"]-0.10) > 1e-12 {
		t.Errorf("surviving return = %f, want 0.10", rows[0]["SPY"])
	}
}

func TestReturns_SingleRow(t *testing.T) {
	table := mustTable(t, []string{"SPY"}, []core.PriceRow{
		{Date: day(1), Prices: map[string]float64{"SPY": 100}},
	})
	if rows := Returns(table); len(rows) != 0 {
		t.Errorf("single-row table produced %d return rows", len(rows))
	}
}
