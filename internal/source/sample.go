package source

import (
	"context"
	"time"

	"github.com/quantfolio/quantfolio/internal/core"
)

// sampleTickers is the fixed order of the built-in demo table.
var sampleTickers = []string{"SPY", "TLT", "GLD", "BTC"}

// sampleDates are 20 trading days from January 2024 (MLK day skipped).
var sampleDays = []int{2, 3, 4, 5, 8, 9, 10, 11, 12, 16, 17, 18, 19, 22, 23, 24, 25, 26, 29, 30}

// samplePrices holds daily closes per ticker, aligned to sampleDays.
var samplePrices = map[string][]float64{
	"SPY": {472.65, 468.79, 467.28, 467.92, 474.60, 473.88, 476.58, 476.35, 476.68, 474.93, 472.29, 476.49, 482.43, 483.45, 484.86, 483.27, 485.99, 487.41, 488.08, 486.65},
	"TLT": {98.88, 97.75, 96.96, 97.17, 98.10, 97.62, 97.27, 96.84, 97.05, 95.93, 94.95, 94.36, 94.61, 94.21, 94.84, 94.42, 95.22, 95.65, 96.08, 95.74},
	"GLD": {191.17, 189.63, 188.57, 189.12, 188.25, 188.63, 188.88, 189.42, 190.12, 188.94, 187.43, 188.01, 187.56, 187.82, 189.03, 188.17, 188.95, 188.60, 188.38, 189.24},
	"BTC": {44950, 42840, 44180, 44140, 46950, 46110, 46650, 46340, 42850, 43140, 42780, 41330, 41620, 41560, 39880, 40080, 39960, 41820, 43300, 42950},
}

// Sample is a built-in deterministic 4-asset price source used by demos
// and end-to-end tests. Fetch never fails and never touches the network.
type Sample struct{}

// NewSample creates a Sample source.
func NewSample() *Sample {
	return &Sample{}
}

func (s *Sample) Name() string {
	return "sample"
}

func (s *Sample) Fetch(ctx context.Context) (*core.PriceTable, error) {
	rows := make([]core.PriceRow, len(sampleDays))
	for i, d := range sampleDays {
		prices := make(map[string]float64, len(sampleTickers))
		for _, tk := range sampleTickers {
			prices[tk] = samplePrices[tk][i]
		}
		rows[i] = core.PriceRow{
			Date:   time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC),
			Prices: prices,
		}
	}
	return core.NewPriceTable(sampleTickers, rows)
}
