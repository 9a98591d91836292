// Package collector enumerates host processes and produces one batch
// of normalized metric samples per sampling pass.
//
// Per-field collection failures (permission denied, zombie, process
// vanished mid-pass) are absorbed here: the affected field is reported
// as zero and the detector pipeline never sees a partial-collection
// error.
package collector

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"github.com/procsight/procsight/internal/models"
)

// Collector supplies one batch of process observations per call.
type Collector interface {
	Collect(ctx context.Context) ([]models.ProcessMetrics, error)
}

// ProcessCollector reads the OS process table via gopsutil.
type ProcessCollector struct {
	logger *zap.Logger
}

// NewProcessCollector creates a collector. A nil logger disables
// collection-noise logging.
func NewProcessCollector(logger *zap.Logger) *ProcessCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcessCollector{logger: logger}
}

// Collect enumerates all visible processes. Only a failure to list the
// process table at all is an error; everything per-process degrades to
// zeroed fields.
func (c *ProcessCollector) Collect(ctx context.Context) ([]models.ProcessMetrics, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate processes: %w", err)
	}

	batch := make([]models.ProcessMetrics, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			// Vanished or fully inaccessible; nothing to report.
			c.logger.Debug("skipping process", zap.Int32("pid", p.Pid), zap.Error(err))
			continue
		}

		m := models.ProcessMetrics{PID: p.Pid, Name: name}

		if v, err := p.CPUPercentWithContext(ctx); err == nil && v > 0 {
			m.CPUPercent = v
		}
		if v, err := p.MemoryPercentWithContext(ctx); err == nil && v > 0 {
			m.MemoryPercent = float64(v)
		}
		if v, err := p.NumThreadsWithContext(ctx); err == nil && v > 0 {
			m.NumThreads = v
		}
		if v, err := p.NumFDsWithContext(ctx); err == nil && v > 0 {
			m.NumFDs = v
		}
		if conns, err := p.ConnectionsWithContext(ctx); err == nil {
			m.NumConnections = int32(len(conns))
		}
		if files, err := p.OpenFilesWithContext(ctx); err == nil {
			m.NumFiles = int32(len(files))
		}

		batch = append(batch, m)
	}
	return batch, nil
}
