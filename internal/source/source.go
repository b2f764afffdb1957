package source

import (
	"context"

	"github.com/quantfolio/quantfolio/internal/core"
)

// Source defines the interface for price-table providers. A source
// performs all of its I/O up front and hands the engine an aligned,
// immutable table; the engine itself never fetches or parses anything.
type Source interface {
	// Name identifies the source in logs and errors.
	Name() string

	// Fetch builds the price table.
	Fetch(ctx context.Context) (*core.PriceTable, error)
}
