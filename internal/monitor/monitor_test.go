package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procsight/procsight/internal/analytics/anomaly"
	"github.com/procsight/procsight/internal/config"
	"github.com/procsight/procsight/internal/models"
)

// scriptedCollector replays one prepared batch per Collect call.
type scriptedCollector struct {
	batches [][]models.ProcessMetrics
	calls   int
	err     error
}

func (c *scriptedCollector) Collect(ctx context.Context) ([]models.ProcessMetrics, error) {
	if c.err != nil {
		return nil, c.err
	}
	if c.calls >= len(c.batches) {
		return nil, errors.New("scripted collector exhausted")
	}
	batch := c.batches[c.calls]
	c.calls++
	return batch, nil
}

// memStore records saved reports in memory.
type memStore struct {
	saved  []models.Report
	pruned int
}

func (s *memStore) SaveReport(ctx context.Context, report *models.Report) error {
	s.saved = append(s.saved, *report)
	return nil
}

func (s *memStore) RecentReports(ctx context.Context, limit int) ([]models.Report, error) {
	return s.saved, nil
}

func (s *memStore) PruneOlderThan(ctx context.Context, days int) (int64, error) {
	s.pruned++
	return 0, nil
}

func (s *memStore) Ping(ctx context.Context) error { return nil }
func (s *memStore) Close() error                   { return nil }

func testConfig(historySize int) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Monitor.IntervalSeconds = 1
	cfg.Monitor.ReportDir = "" // file export covered by the store tests
	cfg.Monitor.RetrainIntervalPasses = 100
	cfg.Detector.HistorySize = historySize
	return cfg
}

func observation(pid int32, cpu float64) models.ProcessMetrics {
	return models.ProcessMetrics{
		PID:            pid,
		Name:           "worker",
		CPUPercent:     cpu,
		MemoryPercent:  2.0,
		NumThreads:     4,
		NumConnections: 1,
		NumFiles:       6,
	}
}

func TestRunOnce_TrainThenDetectCycle(t *testing.T) {
	cfg := testConfig(5)
	detector := anomaly.New(anomaly.Config{
		HistorySize:   cfg.Detector.HistorySize,
		Contamination: cfg.Detector.Contamination,
		Seed:          cfg.Detector.Seed,
	})

	var batches [][]models.ProcessMetrics
	for i, cpu := range []float64{10, 12, 11, 9, 95} {
		batches = append(batches, []models.ProcessMetrics{observation(int32(i+1), cpu)})
	}
	source := &scriptedCollector{batches: batches}
	reports := &memStore{}

	svc := New(cfg, source, detector, reports, nil)
	ctx := context.Background()

	// Passes 1-4: history filling, no model, no reports.
	for i := 0; i < 4; i++ {
		require.NoError(t, svc.RunOnce(ctx))
	}
	assert.False(t, detector.Trained())
	assert.Empty(t, reports.saved)

	// Pass 5 fills the buffer: first fit, then detection on the same
	// batch, which carries the CPU spike.
	require.NoError(t, svc.RunOnce(ctx))
	require.True(t, detector.Trained())

	require.Len(t, reports.saved, 1)
	report := reports.saved[0]
	assert.Equal(t, 1, report.TotalProcesses)
	assert.Equal(t, 1, report.AnomalyCount)
	require.Len(t, report.Anomalies, 1)
	assert.Equal(t, int32(5), report.Anomalies[0].PID)
	assert.Equal(t, "High CPU usage", report.Anomalies[0].Reason)
}

func TestRunOnce_CollectionFailureIsTransient(t *testing.T) {
	cfg := testConfig(3)
	detector := anomaly.New(anomaly.Config{HistorySize: 3, Seed: 1, Contamination: 0.1})
	source := &scriptedCollector{err: errors.New("proc table unavailable")}

	svc := New(cfg, source, detector, &memStore{}, nil)

	// A failed collection pass must not kill the loop or pollute history.
	require.NoError(t, svc.RunOnce(context.Background()))
	assert.Equal(t, 0, detector.HistoryLen())
}

func TestRunOnce_QuietReportStillPersisted(t *testing.T) {
	cfg := testConfig(3)
	detector := anomaly.New(anomaly.Config{HistorySize: 3, Seed: 42, Contamination: 0.1})

	var batches [][]models.ProcessMetrics
	for i, cpu := range []float64{10, 11, 12, 11} {
		batches = append(batches, []models.ProcessMetrics{observation(int32(i+1), cpu)})
	}
	source := &scriptedCollector{batches: batches}
	reports := &memStore{}

	svc := New(cfg, source, detector, reports, nil)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		require.NoError(t, svc.RunOnce(ctx))
	}

	// Detection ran on passes 3 and 4; every detection pass persists a
	// report, flagged or not.
	require.NotEmpty(t, reports.saved)
	for _, r := range reports.saved {
		assert.Equal(t, 1, r.TotalProcesses)
	}
}

func TestRunOnce_RetrainAfterInterval(t *testing.T) {
	cfg := testConfig(2)
	cfg.Monitor.RetrainIntervalPasses = 3
	detector := anomaly.New(anomaly.Config{HistorySize: 2, Seed: 42, Contamination: 0.1})

	var batches [][]models.ProcessMetrics
	for i := 0; i < 8; i++ {
		batches = append(batches, []models.ProcessMetrics{observation(int32(i+1), float64(10+i%3))})
	}
	source := &scriptedCollector{batches: batches}

	svc := New(cfg, source, detector, &memStore{}, nil)
	ctx := context.Background()
	for i := 0; i < 8; i++ {
		require.NoError(t, svc.RunOnce(ctx))
	}

	assert.True(t, detector.Trained())
	assert.Less(t, svc.passesSinceTrain, 3, "retrains reset the pass counter")
}
