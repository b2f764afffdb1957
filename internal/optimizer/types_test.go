package optimizer

import (
	"encoding/json"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestStatsBundle_JSONRoundTrip(t *testing.T) {
	in := &StatsBundle{
		Tickers:     []string{"A", "B"},
		AnnualMeans: []float64{0.08, 0.03},
		Cov: mat.NewSymDense(2, []float64{
			0.04, 0.01,
			0.01, 0.02,
		}),
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var out StatsBundle
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if out.Tickers[1] != "B" || out.AnnualMeans[0] != 0.08 {
		t.Errorf("round trip lost vector data: %+v", out)
	}
	if out.Cov.At(0, 1) != 0.01 || out.Cov.At(1, 0) != 0.01 {
		t.Errorf("round trip lost covariance: %v", mat.Formatted(out.Cov))
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "default", cfg: DefaultConfig(), wantErr: false},
		{name: "zero iterations", cfg: Config{Iterations: 0}, wantErr: true},
		{name: "negative workers", cfg: Config{Iterations: 100, Workers: -1}, wantErr: true},
		{name: "zero risk-free is fine", cfg: Config{Iterations: 100}, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
