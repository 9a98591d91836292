// Package models defines core data types used throughout procsight.
//
// These types flow between the collector, the detector pipeline, the
// report store, and the monitor loop.
package models

// NumFeatures is the width of the feature vector derived from one
// process observation. The order is fixed and must match between
// training and scoring.
const NumFeatures = 5

// ProcessMetrics is a single process observation from one sampling
// pass. All numeric fields are normalized by the collector: a value
// the OS refused to report (permission denied, zombie) arrives as 0,
// never as an error.
type ProcessMetrics struct {
	PID            int32   `json:"pid"`
	Name           string  `json:"name"`
	CPUPercent     float64 `json:"cpu_percent"`
	MemoryPercent  float64 `json:"memory_percent"`
	NumThreads     int32   `json:"num_threads"`
	NumFDs         int32   `json:"num_fds"`
	NumConnections int32   `json:"num_connections"`
	NumFiles       int32   `json:"num_files"`
}

// FeatureVector returns the fixed-order numeric features used by the
// detector: [cpu_percent, memory_percent, num_threads, num_connections,
// num_files]. NumFDs is collected for reporting but not modeled.
func (p ProcessMetrics) FeatureVector() []float64 {
	return []float64{
		p.CPUPercent,
		p.MemoryPercent,
		float64(p.NumThreads),
		float64(p.NumConnections),
		float64(p.NumFiles),
	}
}

// AnomalyRecord is a flagged process observation annotated with a
// human-readable reason and the model's anomaly score. Produced
// transiently per detection pass.
type AnomalyRecord struct {
	ProcessMetrics
	Reason string  `json:"reason"`
	Score  float64 `json:"score"`
}

// ReportAnomaly is the per-process entry exported in a Report.
type ReportAnomaly struct {
	PID           int32   `json:"pid"`
	Name          string  `json:"name"`
	Reason        string  `json:"reason"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	Connections   int32   `json:"connections"`
}

// Report is the snapshot exported after each detection pass. It is
// immutable once built; persistence is the store's concern.
type Report struct {
	ID             string          `json:"id"`
	Timestamp      string          `json:"timestamp"`
	TotalProcesses int             `json:"total_processes"`
	AnomalyCount   int             `json:"anomaly_count"`
	Anomalies      []ReportAnomaly `json:"anomalies"`
}
