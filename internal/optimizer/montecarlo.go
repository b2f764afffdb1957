package optimizer

import (
	"context"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Simulator runs the Monte Carlo search over random weight vectors.
// Each iteration draws uniform raw weights, normalizes them onto the
// simplex, and prices the portfolio against a statistics bundle.
type Simulator struct {
	log *zap.Logger
}

// NewSimulator creates a Simulator.
func NewSimulator(log *zap.Logger) *Simulator {
	return &Simulator{log: log}
}

// Run executes cfg.Iterations draws and returns the priced cloud in
// generation order. With cfg.Workers > 1 the iteration range is split
// into contiguous shards, each with an independent random stream seeded
// seed+shard, and shard outputs are concatenated in shard order, so the
// result is reproducible for a fixed seed and worker count. Cancellation
// is checked between iterations only.
func (s *Simulator) Run(ctx context.Context, bundle *StatsBundle, cfg Config) (*SimulationResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
		s.log.Debug("no seed configured, derived from clock", zap.Int64("seed", seed))
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > cfg.Iterations {
		workers = cfg.Iterations
	}

	if workers == 1 {
		rng := rand.New(rand.NewSource(seed))
		portfolios, discarded, err := s.runShard(ctx, rng, bundle, cfg.Iterations, cfg.RiskFreeRate)
		if err != nil {
			return nil, err
		}
		return &SimulationResult{Portfolios: portfolios, Discarded: discarded}, nil
	}

	// Contiguous shards; remainder spread over the first shards.
	base := cfg.Iterations / workers
	rem := cfg.Iterations % workers

	shardOut := make([][]SimulatedPortfolio, workers)
	shardDiscarded := make([]int, workers)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		iters := base
		if i < rem {
			iters++
		}
		rng := rand.New(rand.NewSource(seed + int64(i)))
		g.Go(func() error {
			out, discarded, err := s.runShard(gctx, rng, bundle, iters, cfg.RiskFreeRate)
			if err != nil {
				return err
			}
			shardOut[i] = out
			shardDiscarded[i] = discarded
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &SimulationResult{
		Portfolios: make([]SimulatedPortfolio, 0, cfg.Iterations),
	}
	for i := 0; i < workers; i++ {
		result.Portfolios = append(result.Portfolios, shardOut[i]...)
		result.Discarded += shardDiscarded[i]
	}
	return result, nil
}

// runShard prices iters random portfolios using a single random stream.
func (s *Simulator) runShard(ctx context.Context, rng *rand.Rand, bundle *StatsBundle, iters int, riskFree float64) ([]SimulatedPortfolio, int, error) {
	k := len(bundle.Tickers)
	mu := mat.NewVecDense(k, bundle.AnnualMeans)

	out := make([]SimulatedPortfolio, 0, iters)
	discarded := 0
	raw := make([]float64, k)

	for i := 0; i < iters; i++ {
		select {
		case <-ctx.Done():
			return nil, discarded, ctx.Err()
		default:
		}

		sum := 0.0
		for j := range raw {
			raw[j] = rng.Float64()
			sum += raw[j]
		}
		if sum == 0 {
			// Degenerate draw: skip rather than divide by zero.
			discarded++
			continue
		}

		weights := make([]float64, k)
		for j := range raw {
			weights[j] = raw[j] / sum
		}
		wv := mat.NewVecDense(k, weights)

		ret := mat.Dot(wv, mu)

		// Full quadratic form w'Σw; the cross terms carry the
		// diversification effect. Clamp tiny negative values from
		// floating-point noise before the square root.
		variance := mat.Inner(wv, bundle.Cov, wv)
		if variance < 0 {
			variance = 0
		}
		vol := math.Sqrt(variance)

		p := SimulatedPortfolio{
			Weights:    weights,
			Return:     ret,
			Volatility: vol,
		}
		if vol > 0 {
			p.Sharpe = (ret - riskFree) / vol
			p.SharpeDefined = true
		}
		out = append(out, p)
	}
	return out, discarded, nil
}
