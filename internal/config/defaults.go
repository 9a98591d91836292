package config

// DefaultConfig returns a configuration with all default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	// Monitor defaults
	cfg.Monitor.IntervalSeconds = 5
	cfg.Monitor.ReportDir = "reports"
	cfg.Monitor.RetrainIntervalPasses = 100
	cfg.Monitor.MetricsAddr = ":9090"

	// Detector defaults
	cfg.Detector.HistorySize = 100
	cfg.Detector.MinTrainingSize = 0 // 0 means history_size
	cfg.Detector.Contamination = 0.1
	cfg.Detector.Seed = 42
	cfg.Detector.NumTrees = 100
	cfg.Detector.SubsampleSize = 256

	// Threshold defaults
	cfg.Thresholds.CPUPercent = 80
	cfg.Thresholds.MemoryPercent = 80
	cfg.Thresholds.Connections = 50
	cfg.Thresholds.Threads = 100
	cfg.Thresholds.OpenFiles = 100

	// Database defaults
	cfg.Database.SQLitePath = "/var/lib/procsight/procsight.db"
	cfg.Database.RetentionDays = 30

	// Logging defaults
	cfg.Logging.Level = "info"
	cfg.Logging.Path = "logs/procsight.log"
	cfg.Logging.MaxSizeMB = 100
	cfg.Logging.MaxBackups = 10
	cfg.Logging.MaxAgeDays = 30
	cfg.Logging.Compress = true

	return cfg
}
