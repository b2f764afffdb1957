package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/quantfolio/quantfolio/internal/config"
	"github.com/quantfolio/quantfolio/internal/insight"
	"github.com/quantfolio/quantfolio/internal/insight/factory"
	"github.com/quantfolio/quantfolio/internal/notify"
	"github.com/quantfolio/quantfolio/internal/source"
	"github.com/quantfolio/quantfolio/internal/storage/archive"
	"github.com/quantfolio/quantfolio/internal/storage/history"
)

// loadConfig loads and validates the config file, falling back to
// defaults when no file is given.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// buildSource constructs the configured price source.
func buildSource(cfg config.SourceConfig) (source.Source, error) {
	switch cfg.Type {
	case "sample":
		return source.NewSample(), nil
	case "csv":
		return source.NewCSV(cfg.CSVPath), nil
	case "yahoo":
		end := time.Now()
		start := end.AddDate(0, 0, -cfg.LookbackDays)
		return source.NewYahoo(cfg.Tickers, start, end), nil
	default:
		return nil, fmt.Errorf("unknown source type: %s", cfg.Type)
	}
}

// buildHistory opens the run history database when enabled.
func buildHistory(cfg config.HistoryConfig) (*history.DB, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	return history.Open(cfg.Path)
}

// buildArchive constructs the configured run archive when enabled.
func buildArchive(cfg config.ArchiveConfig) (*archive.Runs, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	var storage archive.Storage
	var err error
	switch cfg.Type {
	case "localfs":
		storage, err = archive.NewLocalFS(cfg.Path)
	case "s3":
		storage, err = archive.NewS3(archive.S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
	default:
		err = fmt.Errorf("unknown archive type: %s", cfg.Type)
	}
	if err != nil {
		return nil, err
	}
	return archive.NewRuns(storage), nil
}

// buildNotifier constructs the webhook notifier when enabled.
func buildNotifier(cfg config.NotifyConfig) *notify.Notifier {
	if !cfg.Enabled {
		return nil
	}
	return notify.New(cfg.URL, cfg.Headers)
}

// buildNarrator constructs the LLM narrator when enabled.
func buildNarrator(cfg config.InsightConfig, log *zap.Logger) (*insight.Narrator, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	provider, err := factory.New(cfg)
	if err != nil {
		return nil, err
	}
	return insight.NewNarrator(provider, log), nil
}
