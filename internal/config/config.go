package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/quantfolio/quantfolio/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Optimizer OptimizerConfig `mapstructure:"optimizer"`
	Source    SourceConfig    `mapstructure:"source"`
	History   HistoryConfig   `mapstructure:"history"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Insight   InsightConfig   `mapstructure:"insight"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	APIKey      string `mapstructure:"api_key"` // empty disables auth
	JobTTLHours int    `mapstructure:"job_ttl_hours"`
	MaxJobs     int    `mapstructure:"max_jobs"`
}

// OptimizerConfig holds the default run parameters; API callers may
// override them per request.
type OptimizerConfig struct {
	RiskFreeRate float64 `mapstructure:"risk_free_rate"`
	Iterations   int     `mapstructure:"iterations"`
	Workers      int     `mapstructure:"workers"`
	Seed         int64   `mapstructure:"seed"`
}

// SourceConfig selects where price tables come from.
type SourceConfig struct {
	Type         string   `mapstructure:"type"` // "sample", "csv" or "yahoo"
	CSVPath      string   `mapstructure:"csv_path"`
	Tickers      []string `mapstructure:"tickers"`
	LookbackDays int      `mapstructure:"lookback_days"`
}

// HistoryConfig holds run-history database settings.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ArchiveConfig holds full-result archive settings.
type ArchiveConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Type    string   `mapstructure:"type"` // "localfs" or "s3"
	Path    string   `mapstructure:"path"` // For localfs
	S3      S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// NotifyConfig holds webhook notification settings.
type NotifyConfig struct {
	Enabled bool              `mapstructure:"enabled"`
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
}

// InsightConfig holds LLM narration settings.
type InsightConfig struct {
	Enabled  bool         `mapstructure:"enabled"`
	Provider string       `mapstructure:"provider"`
	Claude   ClaudeConfig `mapstructure:"claude"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
}

type ClaudeConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			JobTTLHours: 1,
			MaxJobs:     100,
		},
		Optimizer: OptimizerConfig{
			RiskFreeRate: 0.02,
			Iterations:   2000,
			Workers:      1,
		},
		Source: SourceConfig{
			Type:         "sample",
			LookbackDays: 365,
		},
		History: HistoryConfig{
			Enabled: false,
			Path:    "quantfolio.db",
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Type:    "localfs",
			Path:    "archive",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	// Optimizer validation
	if c.Optimizer.Iterations < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("iterations must be positive, got %d", c.Optimizer.Iterations))
	}
	if c.Optimizer.Workers < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("workers cannot be negative, got %d", c.Optimizer.Workers))
	}

	// Source validation
	switch c.Source.Type {
	case "sample":
	case "csv":
		if c.Source.CSVPath == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("csv_path required when source type is csv"))
		}
	case "yahoo":
		if len(c.Source.Tickers) == 0 {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("tickers required when source type is yahoo"))
		}
		if c.Source.LookbackDays < 2 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("lookback_days must be at least 2, got %d", c.Source.LookbackDays))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown source type: %s", c.Source.Type))
	}

	// Archive validation
	if c.Archive.Enabled {
		switch c.Archive.Type {
		case "localfs":
			if c.Archive.Path == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("archive path required for localfs"))
			}
		case "s3":
			if c.Archive.S3.Bucket == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("s3 bucket required for s3 archive"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown archive type: %s", c.Archive.Type))
		}
	}

	// Notify validation
	if c.Notify.Enabled && c.Notify.URL == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("notify url required when notifications are enabled"))
	}

	// Insight validation - if enabled, check provider config exists
	if c.Insight.Enabled {
		switch c.Insight.Provider {
		case "claude":
			if c.Insight.Claude.APIKey == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("claude api_key required when provider is claude"))
			}
		case "openai":
			if c.Insight.OpenAI.APIKey == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("openai api_key required when provider is openai"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown insight provider: %s", c.Insight.Provider))
		}
	}

	return nil
}
