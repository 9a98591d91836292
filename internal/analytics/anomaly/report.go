package anomaly

import (
	"time"

	"github.com/google/uuid"

	"github.com/procsight/procsight/internal/models"
)

// reportTimeLayout matches the exported report timestamp format.
const reportTimeLayout = "2006-01-02 15:04:05"

// BuildReport aggregates one detection pass into an immutable snapshot.
// totalProcesses is the size of the most recent batch; anomalies is the
// ordered list of flagged records. Pure aggregation, no I/O.
func BuildReport(totalProcesses int, anomalies []models.AnomalyRecord) models.Report {
	entries := make([]models.ReportAnomaly, 0, len(anomalies))
	for _, a := range anomalies {
		entries = append(entries, models.ReportAnomaly{
			PID:           a.PID,
			Name:          a.Name,
			Reason:        a.Reason,
			CPUPercent:    a.CPUPercent,
			MemoryPercent: a.MemoryPercent,
			Connections:   a.NumConnections,
		})
	}
	return models.Report{
		ID:             uuid.NewString(),
		Timestamp:      time.Now().Format(reportTimeLayout),
		TotalProcesses: totalProcesses,
		AnomalyCount:   len(entries),
		Anomalies:      entries,
	}
}
