// Package worker holds the operational plumbing for the publication
// worker: configuration, Prometheus metrics and the health check server.
package worker

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"autopress/internal/pkg/config"
)

// Environment variable names. WORKER_CONFIG_FILE may point at a YAML file
// whose values are applied first; environment variables override it.
const (
	configFileEnv   = "WORKER_CONFIG_FILE"
	intervalEnv     = "PUBLISH_INTERVAL"
	initialDelayEnv = "PUBLISH_INITIAL_DELAY"
	cycleTimeoutEnv = "PUBLISH_CYCLE_TIMEOUT"
	healthPortEnv   = "HEALTH_PORT"
	metricsPortEnv  = "METRICS_PORT"
)

// Config holds the configuration for the worker component.
//
// All fields have defaults and fail-open validation: an invalid value is
// replaced by its default with a warning rather than refusing to boot, so
// a bad deploy never stops publication entirely.
type Config struct {
	// Interval is the spacing between publication cycles.
	// Default: 1m. Must be positive.
	Interval time.Duration `yaml:"interval"`

	// InitialDelay postpones the first cycle after boot.
	// Default: 5s. Must be >= 0.
	InitialDelay time.Duration `yaml:"initialDelay"`

	// CycleTimeout bounds one publication cycle including all external
	// calls. Default: 10m. Must be positive.
	CycleTimeout time.Duration `yaml:"cycleTimeout"`

	// HealthPort is the port for the liveness/readiness server.
	// Default: 9091.
	HealthPort int `yaml:"healthPort"`

	// MetricsPort is the port for the Prometheus /metrics server.
	// Default: 9090.
	MetricsPort int `yaml:"metricsPort"`
}

// yamlConfig mirrors Config with string durations so the file can say
// "90s" rather than nanosecond integers.
type yamlConfig struct {
	Interval     string `yaml:"interval"`
	InitialDelay string `yaml:"initialDelay"`
	CycleTimeout string `yaml:"cycleTimeout"`
	HealthPort   int    `yaml:"healthPort"`
	MetricsPort  int    `yaml:"metricsPort"`
}

// DefaultConfig returns the default worker configuration.
func DefaultConfig() *Config {
	return &Config{
		Interval:     time.Minute,
		InitialDelay: 5 * time.Second,
		CycleTimeout: 10 * time.Minute,
		HealthPort:   9091,
		MetricsPort:  9090,
	}
}

// LoadConfig builds the worker configuration: defaults, then the optional
// YAML file, then environment overrides, then validation with fallback to
// defaults per field.
func LoadConfig(logger *slog.Logger) *Config {
	cfg := DefaultConfig()

	if path := os.Getenv(configFileEnv); path != "" {
		if err := cfg.applyFile(path); err != nil {
			logger.Warn("cannot apply worker config file, continuing with defaults",
				slog.String("path", path),
				slog.Any("error", err))
		}
	}

	cfg.Interval = config.GetEnvDuration(intervalEnv, cfg.Interval)
	cfg.InitialDelay = config.GetEnvDuration(initialDelayEnv, cfg.InitialDelay)
	cfg.CycleTimeout = config.GetEnvDuration(cycleTimeoutEnv, cfg.CycleTimeout)
	cfg.HealthPort = config.GetEnvInt(healthPortEnv, cfg.HealthPort)
	cfg.MetricsPort = config.GetEnvInt(metricsPortEnv, cfg.MetricsPort)

	cfg.validate(logger)
	return cfg
}

// applyFile merges values from a YAML config file into cfg.
func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fileCfg yamlConfig
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if fileCfg.Interval != "" {
		if d, err := time.ParseDuration(fileCfg.Interval); err == nil {
			c.Interval = d
		} else {
			return fmt.Errorf("parse interval: %w", err)
		}
	}
	if fileCfg.InitialDelay != "" {
		if d, err := time.ParseDuration(fileCfg.InitialDelay); err == nil {
			c.InitialDelay = d
		} else {
			return fmt.Errorf("parse initialDelay: %w", err)
		}
	}
	if fileCfg.CycleTimeout != "" {
		if d, err := time.ParseDuration(fileCfg.CycleTimeout); err == nil {
			c.CycleTimeout = d
		} else {
			return fmt.Errorf("parse cycleTimeout: %w", err)
		}
	}
	if fileCfg.HealthPort != 0 {
		c.HealthPort = fileCfg.HealthPort
	}
	if fileCfg.MetricsPort != 0 {
		c.MetricsPort = fileCfg.MetricsPort
	}
	return nil
}

// validate replaces out-of-range values with defaults, logging each
// fallback.
func (c *Config) validate(logger *slog.Logger) {
	defaults := DefaultConfig()

	if c.Interval <= 0 {
		logger.Warn("invalid publish interval, using default",
			slog.Duration("value", c.Interval),
			slog.Duration("default", defaults.Interval))
		c.Interval = defaults.Interval
	}
	if c.InitialDelay < 0 {
		logger.Warn("invalid initial delay, using default",
			slog.Duration("value", c.InitialDelay),
			slog.Duration("default", defaults.InitialDelay))
		c.InitialDelay = defaults.InitialDelay
	}
	if c.CycleTimeout <= 0 {
		logger.Warn("invalid cycle timeout, using default",
			slog.Duration("value", c.CycleTimeout),
			slog.Duration("default", defaults.CycleTimeout))
		c.CycleTimeout = defaults.CycleTimeout
	}
	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		logger.Warn("invalid health port, using default",
			slog.Int("value", c.HealthPort),
			slog.Int("default", defaults.HealthPort))
		c.HealthPort = defaults.HealthPort
	}
	if c.MetricsPort <= 0 || c.MetricsPort > 65535 {
		logger.Warn("invalid metrics port, using default",
			slog.Int("value", c.MetricsPort),
			slog.Int("default", defaults.MetricsPort))
		c.MetricsPort = defaults.MetricsPort
	}
}
