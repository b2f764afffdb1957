package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/quantfolio/quantfolio/internal/core"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prices.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCSV_Fetch(t *testing.T) {
	path := writeCSV(t, `date,SPY,TLT
2024-01-02,470.10,98.50
2024-01-03,471.80,98.10
2024-01-04,469.95,98.72
`)

	table, err := NewCSV(path).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if table.Len() != 3 {
		t.Errorf("Len = %d, want 3", table.Len())
	}
	tickers := table.Tickers()
	if len(tickers) != 2 || tickers[0] != "SPY" || tickers[1] != "TLT" {
		t.Errorf("Tickers = %v", tickers)
	}
	if p, ok := table.Rows()[1].Price("TLT"); !ok || p != 98.10 {
		t.Errorf("TLT on row 1 = %f, %v", p, ok)
	}
}

func TestCSV_MissingCells(t *testing.T) {
	path := writeCSV(t, `date,SPY,TLT
2024-01-02,470.10,98.50
2024-01-03,,98.10
2024-01-04,469.95,n/a
`)

	table, err := NewCSV(path).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if _, ok := table.Rows()[1].Price("SPY"); ok {
		t.Error("blank cell should be missing")
	}
	if _, ok := table.Rows()[2].Price("TLT"); ok {
		t.Error("non-numeric cell should be missing")
	}
	if _, ok := table.Rows()[1].Price("TLT"); !ok {
		t.Error("valid cell next to a blank one should survive")
	}
}

func TestCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    *core.Error
	}{
		{
			name:    "header only",
			content: "date,SPY\n",
			want:    core.ErrNoData,
		},
		{
			name:    "no ticker columns",
			content: "date\n2024-01-02\n",
			want:    core.ErrSourceFailed,
		},
		{
			name:    "bad date",
			content: "date,SPY\nnot-a-date,470.10\n",
			want:    core.ErrSourceFailed,
		},
		{
			name:    "unsorted dates",
			content: "date,SPY\n2024-01-03,470.10\n2024-01-02,471.00\n",
			want:    core.ErrNoData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCSV(t, tt.content)
			_, err := NewCSV(path).Fetch(context.Background())
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCSV_FileNotFound(t *testing.T) {
	_, err := NewCSV("/nonexistent/prices.csv").Fetch(context.Background())
	if !errors.Is(err, core.ErrSourceFailed) {
		t.Errorf("got %v, want ErrSourceFailed", err)
	}
}
