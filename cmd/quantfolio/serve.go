package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quantfolio/quantfolio/internal/api"
	"github.com/quantfolio/quantfolio/internal/logger"
	"github.com/quantfolio/quantfolio/internal/metrics"
	"github.com/quantfolio/quantfolio/internal/optimizer"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the quantfolio server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	log.Info("starting quantfolio server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	src, err := buildSource(cfg.Source)
	if err != nil {
		return err
	}

	db, err := buildHistory(cfg.History)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	if db != nil {
		defer db.Close()
	}

	runs, err := buildArchive(cfg.Archive)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}

	narrator, err := buildNarrator(cfg.Insight, log)
	if err != nil {
		return fmt.Errorf("insight setup: %w", err)
	}

	var reg *metrics.Registry
	metricsPath := ""
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
		metricsPath = cfg.Metrics.Path
	}

	server := api.NewServer(
		api.Config{
			Host:        cfg.Server.Host,
			Port:        cfg.Server.Port,
			APIKey:      cfg.Server.APIKey,
			JobTTL:      time.Duration(cfg.Server.JobTTLHours) * time.Hour,
			MaxJobs:     cfg.Server.MaxJobs,
			MetricsPath: metricsPath,
		},
		api.Deps{
			Engine: optimizer.NewEngine(log),
			Source: src,
			Defaults: optimizer.Config{
				RiskFreeRate: cfg.Optimizer.RiskFreeRate,
				Iterations:   cfg.Optimizer.Iterations,
				Workers:      cfg.Optimizer.Workers,
				Seed:         cfg.Optimizer.Seed,
			},
			History:  db,
			Archive:  runs,
			Notifier: buildNotifier(cfg.Notify),
			Narrator: narrator,
			Metrics:  reg,
		},
		log,
	)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Error("server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down quantfolio server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
