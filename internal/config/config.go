// Package config provides configuration management for procsight.
//
// Sources, highest priority first:
//  1. Environment variables (PROCSIGHT_* prefix)
//  2. YAML config file (default: /etc/procsight/config.yaml)
//  3. Built-in defaults
package config

import "context"

// Config contains all configuration fields.
type Config struct {
	// Monitor configuration
	Monitor struct {
		// IntervalSeconds between sampling passes.
		IntervalSeconds int
		// ReportDir receives one JSON report file per detection
		// pass. Empty disables file export.
		ReportDir string
		// RetrainIntervalPasses is how many passes run between
		// model refits once the first training has succeeded.
		RetrainIntervalPasses int
		// MetricsAddr is the Prometheus exposition listen address.
		// Empty disables the endpoint.
		MetricsAddr string
	}

	// Detector configuration
	Detector struct {
		HistorySize     int
		MinTrainingSize int
		Contamination   float64
		Seed            int64
		NumTrees        int
		SubsampleSize   int
	}

	// Thresholds drive the rule-based reason classifier.
	Thresholds struct {
		CPUPercent    float64
		MemoryPercent float64
		Connections   int
		Threads       int
		OpenFiles     int
	}

	// Database configuration
	Database struct {
		SQLitePath    string
		RetentionDays int
	}

	// Logging configuration
	Logging struct {
		Level      string
		Path       string
		MaxSizeMB  int
		MaxBackups int
		MaxAgeDays int
		Compress   bool
	}
}

// Manager defines the interface for configuration access.
type Manager interface {
	// Load loads configuration from all sources.
	Load(ctx context.Context) error

	// Get returns the current configuration.
	Get(ctx context.Context) *Config

	// Validate checks the configuration is correct and complete.
	Validate(ctx context.Context) error

	// Watch watches for configuration file changes and reloads.
	Watch(ctx context.Context) <-chan Config

	// Reload re-reads configuration from sources.
	Reload(ctx context.Context) error
}

// NewManager creates a configuration manager for the given file path.
func NewManager(configPath string) (Manager, error) {
	return &viperManager{
		configPath: configPath,
		config:     DefaultConfig(),
		watchChan:  make(chan Config, 1),
	}, nil
}

// NewManagerWithDefaults creates a manager with the default file path.
func NewManagerWithDefaults() (Manager, error) {
	return NewManager("/etc/procsight/config.yaml")
}
