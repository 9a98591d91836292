package anomaly

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procsight/procsight/internal/models"
)

func TestBuildReport(t *testing.T) {
	anomalies := []models.AnomalyRecord{
		{
			ProcessMetrics: models.ProcessMetrics{
				PID:            4242,
				Name:           "miner",
				CPUPercent:     97.5,
				MemoryPercent:  12.0,
				NumConnections: 80,
			},
			Reason: "High CPU usage, Unusual network activity",
			Score:  0.81,
		},
		{
			ProcessMetrics: models.ProcessMetrics{PID: 7, Name: "leaky", MemoryPercent: 91.2},
			Reason:         "High memory usage",
			Score:          0.66,
		},
	}

	report := BuildReport(120, anomalies)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, 120, report.TotalProcesses)
	assert.Equal(t, 2, report.AnomalyCount)
	require.Len(t, report.Anomalies, 2)

	first := report.Anomalies[0]
	assert.Equal(t, int32(4242), first.PID)
	assert.Equal(t, "miner", first.Name)
	assert.Equal(t, "High CPU usage, Unusual network activity", first.Reason)
	assert.Equal(t, 97.5, first.CPUPercent)
	assert.Equal(t, int32(80), first.Connections)

	_, err := time.Parse("2006-01-02 15:04:05", report.Timestamp)
	assert.NoError(t, err, "timestamp must use the exported layout")
}

func TestBuildReport_NoAnomalies(t *testing.T) {
	report := BuildReport(50, nil)

	assert.Equal(t, 50, report.TotalProcesses)
	assert.Equal(t, 0, report.AnomalyCount)
	assert.NotNil(t, report.Anomalies, "empty, not nil, so JSON renders []")
	assert.Empty(t, report.Anomalies)
}

func TestBuildReport_UniqueIDs(t *testing.T) {
	a := BuildReport(1, nil)
	b := BuildReport(1, nil)
	assert.NotEqual(t, a.ID, b.ID)
}
