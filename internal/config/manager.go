package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// viperManager implements Manager using Viper.
type viperManager struct {
	configPath string
	config     *Config
	viper      *viper.Viper
	watchChan  chan Config
}

// Load loads configuration from all sources.
func (m *viperManager) Load(ctx context.Context) error {
	m.viper = viper.New()

	m.viper.SetConfigFile(m.configPath)
	m.viper.SetConfigType("yaml")

	m.viper.SetEnvPrefix("PROCSIGHT")
	m.viper.AutomaticEnv()
	m.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	m.setDefaults()

	// The config file is optional; defaults plus env vars suffice.
	if err := m.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No file, use defaults.
		} else if os.IsNotExist(err) {
			// Same, reported through the filesystem.
		} else {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return m.unmarshalConfig()
}

// Get returns the current configuration.
func (m *viperManager) Get(ctx context.Context) *Config {
	return m.config
}

// Validate checks the configuration is correct and complete.
func (m *viperManager) Validate(ctx context.Context) error {
	errs := m.config.Validate()
	if len(errs) > 0 {
		var msgs []string
		for _, err := range errs {
			msgs = append(msgs, err.Error())
		}
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
	}
	return nil
}

// Watch watches for configuration file changes and reloads.
func (m *viperManager) Watch(ctx context.Context) <-chan Config {
	m.viper.WatchConfig()
	m.viper.OnConfigChange(func(e fsnotify.Event) {
		if err := m.unmarshalConfig(); err != nil {
			return
		}
		select {
		case m.watchChan <- *m.config:
		default:
			// Channel full, skip this update.
		}
	})
	return m.watchChan
}

// Reload re-reads configuration from sources.
func (m *viperManager) Reload(ctx context.Context) error {
	if err := m.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return m.unmarshalConfig()
}

// setDefaults registers default values in viper.
func (m *viperManager) setDefaults() {
	defaults := DefaultConfig()

	m.viper.SetDefault("monitor.interval_seconds", defaults.Monitor.IntervalSeconds)
	m.viper.SetDefault("monitor.report_dir", defaults.Monitor.ReportDir)
	m.viper.SetDefault("monitor.retrain_interval_passes", defaults.Monitor.RetrainIntervalPasses)
	m.viper.SetDefault("monitor.metrics_addr", defaults.Monitor.MetricsAddr)

	m.viper.SetDefault("detector.history_size", defaults.Detector.HistorySize)
	m.viper.SetDefault("detector.min_training_size", defaults.Detector.MinTrainingSize)
	m.viper.SetDefault("detector.contamination", defaults.Detector.Contamination)
	m.viper.SetDefault("detector.seed", defaults.Detector.Seed)
	m.viper.SetDefault("detector.num_trees", defaults.Detector.NumTrees)
	m.viper.SetDefault("detector.subsample_size", defaults.Detector.SubsampleSize)

	m.viper.SetDefault("thresholds.cpu_percent", defaults.Thresholds.CPUPercent)
	m.viper.SetDefault("thresholds.memory_percent", defaults.Thresholds.MemoryPercent)
	m.viper.SetDefault("thresholds.connections", defaults.Thresholds.Connections)
	m.viper.SetDefault("thresholds.threads", defaults.Thresholds.Threads)
	m.viper.SetDefault("thresholds.open_files", defaults.Thresholds.OpenFiles)

	m.viper.SetDefault("database.sqlite_path", defaults.Database.SQLitePath)
	m.viper.SetDefault("database.retention_days", defaults.Database.RetentionDays)

	m.viper.SetDefault("logging.level", defaults.Logging.Level)
	m.viper.SetDefault("logging.path", defaults.Logging.Path)
	m.viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	m.viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	m.viper.SetDefault("logging.max_age_days", defaults.Logging.MaxAgeDays)
	m.viper.SetDefault("logging.compress", defaults.Logging.Compress)
}

// unmarshalConfig copies viper state into the Config struct.
func (m *viperManager) unmarshalConfig() error {
	cfg := &Config{}

	cfg.Monitor.IntervalSeconds = m.viper.GetInt("monitor.interval_seconds")
	cfg.Monitor.ReportDir = m.viper.GetString("monitor.report_dir")
	cfg.Monitor.RetrainIntervalPasses = m.viper.GetInt("monitor.retrain_interval_passes")
	cfg.Monitor.MetricsAddr = m.viper.GetString("monitor.metrics_addr")

	cfg.Detector.HistorySize = m.viper.GetInt("detector.history_size")
	cfg.Detector.MinTrainingSize = m.viper.GetInt("detector.min_training_size")
	cfg.Detector.Contamination = m.viper.GetFloat64("detector.contamination")
	cfg.Detector.Seed = m.viper.GetInt64("detector.seed")
	cfg.Detector.NumTrees = m.viper.GetInt("detector.num_trees")
	cfg.Detector.SubsampleSize = m.viper.GetInt("detector.subsample_size")

	cfg.Thresholds.CPUPercent = m.viper.GetFloat64("thresholds.cpu_percent")
	cfg.Thresholds.MemoryPercent = m.viper.GetFloat64("thresholds.memory_percent")
	cfg.Thresholds.Connections = m.viper.GetInt("thresholds.connections")
	cfg.Thresholds.Threads = m.viper.GetInt("thresholds.threads")
	cfg.Thresholds.OpenFiles = m.viper.GetInt("thresholds.open_files")

	cfg.Database.SQLitePath = m.viper.GetString("database.sqlite_path")
	cfg.Database.RetentionDays = m.viper.GetInt("database.retention_days")

	cfg.Logging.Level = m.viper.GetString("logging.level")
	cfg.Logging.Path = m.viper.GetString("logging.path")
	cfg.Logging.MaxSizeMB = m.viper.GetInt("logging.max_size_mb")
	cfg.Logging.MaxBackups = m.viper.GetInt("logging.max_backups")
	cfg.Logging.MaxAgeDays = m.viper.GetInt("logging.max_age_days")
	cfg.Logging.Compress = m.viper.GetBool("logging.compress")

	m.config = cfg
	return nil
}
