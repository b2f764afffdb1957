package optimizer

import (
	"errors"
	"math"
	"testing"

	"github.com/quantfolio/quantfolio/internal/core"
)

func TestEstimate_InsufficientData(t *testing.T) {
	for _, rows := range [][]core.ReturnRow{
		nil,
		{{"SPY": 0.01}},
	} {
		_, err := Estimate([]string{"SPY"}, rows)
		if !errors.Is(err, core.ErrInsufficientData) {
			t.Errorf("Estimate with %d rows: got %v, want ErrInsufficientData", len(rows), err)
		}
	}
}

func TestEstimate_KnownValues(t *testing.T) {
	// Two assets, two periods; small enough to verify by hand.
	rows := []core.ReturnRow{
		{"A": 0.01, "B": 0.02},
		{"A": 0.03, "B": -0.01},
	}

	bundle, err := Estimate([]string{"A", "B"}, rows)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}

	// Daily means 0.02 and 0.005, annualized by 252.
	if math.Abs(bundle.AnnualMeans[0]-0.02*252) > 1e-12 {
		t.Errorf("mean A = %f, want %f", bundle.AnnualMeans[0], 0.02*252)
	}
	if math.Abs(bundle.AnnualMeans[1]-0.005*252) > 1e-12 {
		t.Errorf("mean B = %f, want %f", bundle.AnnualMeans[1], 0.005*252)
	}

	// Sample covariance with n-1 = 1 denominator, annualized.
	wantVarA := 0.0002 * 252
	wantVarB := 0.00045 * 252
	wantCovAB := -0.0003 * 252

	if math.Abs(bundle.Cov.At(0, 0)-wantVarA) > 1e-12 {
		t.Errorf("var A = %f, want %f", bundle.Cov.At(0, 0), wantVarA)
	}
	if math.Abs(bundle.Cov.At(1, 1)-wantVarB) > 1e-12 {
		t.Errorf("var B = %f, want %f", bundle.Cov.At(1, 1), wantVarB)
	}
	if math.Abs(bundle.Cov.At(0, 1)-wantCovAB) > 1e-12 {
		t.Errorf("cov AB = %f, want %f", bundle.Cov.At(0, 1), wantCovAB)
	}
}

func TestEstimate_Symmetry(t *testing.T) {
	rows := []core.ReturnRow{
		{"A": 0.012, "B": -0.004, "C": 0.021},
		{"A": -0.007, "B": 0.009, "C": -0.013},
		{"A": 0.002, "B": 0.001, "C": 0.008},
		{"A": 0.015, "B": -0.011, "C": 0.004},
	}

	bundle, err := Estimate([]string{"A", "B", "C"}, rows)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(bundle.Cov.At(i, j)-bundle.Cov.At(j, i)) > 1e-12 {
				t.Errorf("cov[%d][%d] != cov[%d][%d]", i, j, j, i)
			}
		}
	}
}

func TestEstimate_DiagonalIsVariance(t *testing.T) {
	rows := []core.ReturnRow{
		{"A": 0.01},
		{"A": -0.02},
		{"A": 0.03},
	}

	bundle, err := Estimate([]string{"A"}, rows)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}

	// Manual sample variance with daily mean centering.
	mean := (0.01 - 0.02 + 0.03) / 3
	variance := 0.0
	for _, r := range []float64{0.01, -0.02, 0.03} {
		variance += (r - mean) * (r - mean)
	}
	variance = variance / 2 * 252

	if math.Abs(bundle.Cov.At(0, 0)-variance) > 1e-12 {
		t.Errorf("diagonal = %f, want %f", bundle.Cov.At(0, 0), variance)
	}
}

func TestStatsBundle_MeanFor(t *testing.T) {
	bundle, err := Estimate([]string{"A", "B"}, []core.ReturnRow{
		{"A": 0.01, "B": 0.02},
		{"A": 0.01, "B": 0.02},
	})
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}

	if m, ok := bundle.MeanFor("B"); !ok || math.Abs(m-0.02*252) > 1e-12 {
		t.Errorf("MeanFor(B) = %f, %v", m, ok)
	}
	if _, ok := bundle.MeanFor("Z"); ok {
		t.Error("MeanFor of unknown ticker should report false")
	}
}
