package optimizer

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/quantfolio/quantfolio/internal/core"
	"github.com/quantfolio/quantfolio/internal/source"
	"go.uber.org/zap"
)

func TestEngine_EndToEnd(t *testing.T) {
	table, err := source.NewSample().Fetch(context.Background())
	if err != nil {
		t.Fatalf("sample fetch: %v", err)
	}

	engine := NewEngine(zap.NewNop())
	result, err := engine.Run(context.Background(), table, Config{
		RiskFreeRate: 0.02,
		Iterations:   2000,
		Seed:         99,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.ID == "" {
		t.Error("run should have an ID")
	}
	if len(result.Portfolios) == 0 {
		t.Fatal("result set is empty")
	}
	if result.MaxSharpe == nil || result.MinVolatility == nil {
		t.Fatal("both selections should be present")
	}

	for i, p := range result.Portfolios {
		if p.Volatility < 0 {
			t.Fatalf("portfolio %d: negative volatility", i)
		}
		sum := 0.0
		for _, w := range p.Weights {
			sum += w
		}
		if math.Abs(sum-1.0) > 1e-9 {
			t.Fatalf("portfolio %d: weights sum to %f", i, sum)
		}
		if p.SharpeDefined && p.Sharpe > result.MaxSharpe.Sharpe {
			t.Fatalf("portfolio %d beats the selected max-Sharpe entry", i)
		}
		if p.Volatility < result.MinVolatility.Volatility {
			t.Fatalf("portfolio %d beats the selected min-volatility entry", i)
		}
	}

	// Covariance matrix from real sample data stays symmetric.
	k := len(result.Tickers)
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			if math.Abs(result.Stats.Cov.At(i, j)-result.Stats.Cov.At(j, i)) > 1e-12 {
				t.Errorf("cov[%d][%d] asymmetric", i, j)
			}
		}
	}
}

func TestEngine_Deterministic(t *testing.T) {
	table, err := source.NewSample().Fetch(context.Background())
	if err != nil {
		t.Fatalf("sample fetch: %v", err)
	}

	cfg := Config{RiskFreeRate: 0.02, Iterations: 400, Seed: 7}
	engine := NewEngine(zap.NewNop())

	first, err := engine.Run(context.Background(), table, cfg)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := engine.Run(context.Background(), table, cfg)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(first.Portfolios) != len(second.Portfolios) {
		t.Fatal("portfolio counts differ")
	}
	for i := range first.Portfolios {
		if first.Portfolios[i].Return != second.Portfolios[i].Return ||
			first.Portfolios[i].Volatility != second.Portfolios[i].Volatility {
			t.Fatalf("portfolio %d differs between identical runs", i)
		}
	}
	if first.MaxSharpe.Sharpe != second.MaxSharpe.Sharpe {
		t.Error("max-Sharpe selection differs between identical runs")
	}
}

func TestEngine_InsufficientData(t *testing.T) {
	table := mustTable(t, []string{"SPY"}, []core.PriceRow{
		{Date: day(1), Prices: map[string]float64{"SPY": 100}},
	})

	engine := NewEngine(zap.NewNop())
	_, err := engine.Run(context.Background(), table, DefaultConfig())
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("got %v, want ErrInsufficientData", err)
	}
}

func TestEngine_InvalidConfig(t *testing.T) {
	table := mustTable(t, []string{"SPY"}, []core.PriceRow{
		{Date: day(1), Prices: map[string]float64{"SPY": 100}},
		{Date: day(2), Prices: map[string]float64{"SPY": 101}},
	})

	engine := NewEngine(zap.NewNop())
	_, err := engine.Run(context.Background(), table, Config{Iterations: -5})
	if !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("got %v, want ErrConfigInvalid", err)
	}
}
