package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quantfolio/quantfolio/internal/logger"
	"github.com/quantfolio/quantfolio/internal/optimizer"
)

var (
	optIterations int
	optRiskFree   float64
	optWorkers    int
	optSeed       int64
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run one portfolio optimization",
	Long: `Fetch prices from the configured source, simulate random portfolios
and print the maximum-Sharpe and minimum-volatility allocations.`,
	RunE: runOptimize,
}

func init() {
	optimizeCmd.Flags().IntVar(&optIterations, "iterations", 0, "number of simulated portfolios (overrides config)")
	optimizeCmd.Flags().Float64Var(&optRiskFree, "risk-free", -1, "annual risk-free rate (overrides config)")
	optimizeCmd.Flags().IntVar(&optWorkers, "workers", 0, "simulation workers (overrides config)")
	optimizeCmd.Flags().Int64Var(&optSeed, "seed", 0, "random seed, 0 means time-derived (overrides config)")

	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	runCfg := optimizer.Config{
		RiskFreeRate: cfg.Optimizer.RiskFreeRate,
		Iterations:   cfg.Optimizer.Iterations,
		Workers:      cfg.Optimizer.Workers,
		Seed:         cfg.Optimizer.Seed,
	}
	if optIterations > 0 {
		runCfg.Iterations = optIterations
	}
	if optRiskFree >= 0 {
		runCfg.RiskFreeRate = optRiskFree
	}
	if optWorkers > 0 {
		runCfg.Workers = optWorkers
	}
	if cmd.Flags().Changed("seed") {
		runCfg.Seed = optSeed
	}

	src, err := buildSource(cfg.Source)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	table, err := src.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetching prices: %w", err)
	}

	engine := optimizer.NewEngine(log)
	run, err := engine.Run(ctx, table, runCfg)
	if err != nil {
		return fmt.Errorf("optimization failed: %w", err)
	}

	printRun(run)

	// Optional persistence
	if db, err := buildHistory(cfg.History); err != nil {
		log.Error("opening history failed", zap.Error(err))
	} else if db != nil {
		defer db.Close()
		if err := db.InsertRun(ctx, run); err != nil {
			log.Error("history insert failed", zap.Error(err))
		}
	}
	if runs, err := buildArchive(cfg.Archive); err != nil {
		log.Error("opening archive failed", zap.Error(err))
	} else if runs != nil {
		if err := runs.Save(ctx, run); err != nil {
			log.Error("archive save failed", zap.Error(err))
		}
	}

	if narrator, err := buildNarrator(cfg.Insight, log); err != nil {
		log.Error("insight setup failed", zap.Error(err))
	} else if narrator != nil {
		commentary, err := narrator.Narrate(ctx, run)
		if err != nil {
			log.Warn("commentary failed", zap.Error(err))
		} else {
			fmt.Println("=== Commentary ===")
			fmt.Println(commentary)
			fmt.Println()
		}
	}

	return nil
}

func printRun(run *optimizer.RunResult) {
	fmt.Println("=== quantfolio ===")
	fmt.Printf("Run:        %s\n", run.ID)
	fmt.Printf("Assets:     %v\n", run.Tickers)
	fmt.Printf("Simulated:  %d portfolios (%d discarded)\n", len(run.Portfolios), run.Discarded)
	fmt.Printf("Elapsed:    %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	fmt.Println()

	if run.MaxSharpe != nil {
		fmt.Println("Maximum Sharpe:")
		printPortfolio(run.Tickers, run.MaxSharpe)
	} else {
		fmt.Println("Maximum Sharpe: undefined (no portfolio with positive volatility)")
	}
	fmt.Println()
	fmt.Println("Minimum volatility:")
	printPortfolio(run.Tickers, run.MinVolatility)
}

func printPortfolio(tickers []string, p *optimizer.SimulatedPortfolio) {
	for i, t := range tickers {
		fmt.Printf("  %-8s %6.2f%%\n", t, p.Weights[i]*100)
	}
	fmt.Printf("  return     %7.2f%%\n", p.Return*100)
	fmt.Printf("  volatility %7.2f%%\n", p.Volatility*100)
	if p.SharpeDefined {
		fmt.Printf("  sharpe     %7.2f\n", p.Sharpe)
	}
}
