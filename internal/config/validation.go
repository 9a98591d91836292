package config

import "fmt"

// Validate checks all configuration fields and returns every problem
// found, not just the first.
func (c *Config) Validate() []error {
	var errs []error

	if c.Monitor.IntervalSeconds < 1 {
		errs = append(errs, fmt.Errorf("monitor.interval_seconds must be at least 1, got %d", c.Monitor.IntervalSeconds))
	}
	if c.Monitor.RetrainIntervalPasses < 1 {
		errs = append(errs, fmt.Errorf("monitor.retrain_interval_passes must be at least 1, got %d", c.Monitor.RetrainIntervalPasses))
	}

	if c.Detector.HistorySize < 1 {
		errs = append(errs, fmt.Errorf("detector.history_size must be at least 1, got %d", c.Detector.HistorySize))
	}
	if c.Detector.MinTrainingSize < 0 {
		errs = append(errs, fmt.Errorf("detector.min_training_size must not be negative, got %d", c.Detector.MinTrainingSize))
	}
	if c.Detector.Contamination < 0 || c.Detector.Contamination >= 1 {
		errs = append(errs, fmt.Errorf("detector.contamination must be in [0, 1), got %g", c.Detector.Contamination))
	}
	if c.Detector.NumTrees < 1 {
		errs = append(errs, fmt.Errorf("detector.num_trees must be at least 1, got %d", c.Detector.NumTrees))
	}
	if c.Detector.SubsampleSize < 2 {
		errs = append(errs, fmt.Errorf("detector.subsample_size must be at least 2, got %d", c.Detector.SubsampleSize))
	}

	if c.Thresholds.CPUPercent <= 0 || c.Thresholds.CPUPercent > 100 {
		errs = append(errs, fmt.Errorf("thresholds.cpu_percent must be in (0, 100], got %g", c.Thresholds.CPUPercent))
	}
	if c.Thresholds.MemoryPercent <= 0 || c.Thresholds.MemoryPercent > 100 {
		errs = append(errs, fmt.Errorf("thresholds.memory_percent must be in (0, 100], got %g", c.Thresholds.MemoryPercent))
	}
	if c.Thresholds.Connections < 1 {
		errs = append(errs, fmt.Errorf("thresholds.connections must be at least 1, got %d", c.Thresholds.Connections))
	}
	if c.Thresholds.Threads < 1 {
		errs = append(errs, fmt.Errorf("thresholds.threads must be at least 1, got %d", c.Thresholds.Threads))
	}
	if c.Thresholds.OpenFiles < 1 {
		errs = append(errs, fmt.Errorf("thresholds.open_files must be at least 1, got %d", c.Thresholds.OpenFiles))
	}

	if c.Database.SQLitePath == "" {
		errs = append(errs, fmt.Errorf("database.sqlite_path is required"))
	}
	if c.Database.RetentionDays < 1 {
		errs = append(errs, fmt.Errorf("database.retention_days must be at least 1, got %d", c.Database.RetentionDays))
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level))
	}

	return errs
}
