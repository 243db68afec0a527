// Package common provides shared utilities for Scry
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Scry
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Scan        ScanConfig    `toml:"scan"`
	Scoring     ScoringConfig `toml:"scoring"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds the trade store configuration
type StorageConfig struct {
	Path          string `toml:"path"`
	CacheTTL      string `toml:"cache_ttl"`      // raw payload cache lifetime, duration string
	RetentionDays int    `toml:"retention_days"` // scored trades older than this are purged after each scan, 0 = keep forever
}

// GetCacheTTL parses and returns the payload cache TTL
func (c *StorageConfig) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

// GetRetention returns the scored-trade retention window
func (c *StorageConfig) GetRetention() time.Duration {
	if c.RetentionDays <= 0 {
		return 0
	}
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	OpenInsider OpenInsiderConfig `toml:"openinsider"`
}

// OpenInsiderConfig holds the insider-disclosure feed configuration
type OpenInsiderConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"` // requests per minute
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *OpenInsiderConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// ScanConfig holds the periodic insider-feed scan configuration
type ScanConfig struct {
	Enabled  bool     `toml:"enabled"`
	Schedule string   `toml:"schedule"` // cron expression
	Tickers  []string `toml:"tickers"`  // optional watchlist filter; empty = all
	MinTrade float64  `toml:"min_trade"`
}

// ScoringConfig holds the composite score weights. The weights are injected
// into the analyzer at wiring time; there is no ambient scoring state.
type ScoringConfig struct {
	FundamentalWeight float64 `toml:"fundamental_weight"`
	TechnicalWeight   float64 `toml:"technical_weight"`
	InsiderWeight     float64 `toml:"insider_weight"`
	SentimentWeight   float64 `toml:"sentiment_weight"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8090,
		},
		Storage: StorageConfig{
			Path:          "data/scry",
			CacheTTL:      "15m",
			RetentionDays: 90,
		},
		Clients: ClientsConfig{
			OpenInsider: OpenInsiderConfig{
				BaseURL:   "http://openinsider.com",
				RateLimit: 30,
				Timeout:   "30s",
			},
		},
		Scan: ScanConfig{
			Enabled:  false,
			Schedule: "*/15 * * * *",
			MinTrade: 100000,
		},
		Scoring: ScoringConfig{
			FundamentalWeight: 0.40,
			TechnicalWeight:   0.30,
			InsiderWeight:     0.20,
			SentimentWeight:   0.10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := validateScoring(&config.Scoring); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SCRY_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("SCRY_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("SCRY_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("SCRY_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("SCRY_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if sched := os.Getenv("SCRY_SCAN_SCHEDULE"); sched != "" {
		config.Scan.Schedule = sched
	}

	if tickers := os.Getenv("SCRY_SCAN_TICKERS"); tickers != "" {
		parts := strings.Split(tickers, ",")
		list := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.ToUpper(strings.TrimSpace(p)); t != "" {
				list = append(list, t)
			}
		}
		config.Scan.Tickers = list
	}
}

// validateScoring rejects weight sets that cannot be renormalized
func validateScoring(s *ScoringConfig) error {
	weights := []float64{s.FundamentalWeight, s.TechnicalWeight, s.InsiderWeight, s.SentimentWeight}
	sum := 0.0
	for _, w := range weights {
		if w < 0 {
			return fmt.Errorf("scoring weights must be non-negative, got %v", weights)
		}
		sum += w
	}
	if sum == 0 {
		return fmt.Errorf("scoring weights must not all be zero")
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
