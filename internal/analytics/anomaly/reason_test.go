package anomaly

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/procsight/procsight/internal/models"
)

func TestReason(t *testing.T) {
	thresholds := DefaultReasonThresholds()

	tests := []struct {
		name     string
		metrics  models.ProcessMetrics
		expected string
	}{
		{
			name:     "high cpu",
			metrics:  models.ProcessMetrics{CPUPercent: 95},
			expected: "High CPU usage",
		},
		{
			name:     "high memory",
			metrics:  models.ProcessMetrics{MemoryPercent: 85},
			expected: "High memory usage",
		},
		{
			name:     "many connections",
			metrics:  models.ProcessMetrics{NumConnections: 51},
			expected: "Unusual network activity",
		},
		{
			name:     "many threads",
			metrics:  models.ProcessMetrics{NumThreads: 150},
			expected: "High thread count",
		},
		{
			name:     "many open files",
			metrics:  models.ProcessMetrics{NumFiles: 200},
			expected: "Many open files",
		},
		{
			name: "multiple rules joined in order",
			metrics: models.ProcessMetrics{
				CPUPercent:    90,
				MemoryPercent: 90,
				NumThreads:    200,
			},
			expected: "High CPU usage, High memory usage, High thread count",
		},
		{
			name:     "no rule fires",
			metrics:  models.ProcessMetrics{CPUPercent: 10, MemoryPercent: 5},
			expected: FallbackReason,
		},
		{
			name:     "exactly at threshold does not fire",
			metrics:  models.ProcessMetrics{CPUPercent: 80, NumConnections: 50},
			expected: FallbackReason,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, thresholds.Reason(tt.metrics))
		})
	}
}

func TestReason_CustomThresholds(t *testing.T) {
	thresholds := ReasonThresholds{
		CPUPercent:    50,
		MemoryPercent: 50,
		Connections:   10,
		Threads:       20,
		OpenFiles:     30,
	}

	got := thresholds.Reason(models.ProcessMetrics{CPUPercent: 60, NumConnections: 11})
	assert.Equal(t, "High CPU usage, Unusual network activity", got)
}
