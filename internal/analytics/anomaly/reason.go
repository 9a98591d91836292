package anomaly

import (
	"strings"

	"github.com/procsight/procsight/internal/models"
)

// ReasonThresholds holds the rule limits used to explain why a flagged
// process looks anomalous. The rules read the raw (non-standardized)
// fields and are deliberately independent of the model's geometry:
// the explanation is advisory, the model's verdict is authoritative.
type ReasonThresholds struct {
	CPUPercent    float64
	MemoryPercent float64
	Connections   int32
	Threads       int32
	OpenFiles     int32
}

// DefaultReasonThresholds returns the stock rule limits.
func DefaultReasonThresholds() ReasonThresholds {
	return ReasonThresholds{
		CPUPercent:    80,
		MemoryPercent: 80,
		Connections:   50,
		Threads:       100,
		OpenFiles:     100,
	}
}

// FallbackReason is reported when the model flags a process but no
// rule fires.
const FallbackReason = "Unusual behavior pattern"

// Reason explains a flagged observation in human-readable terms. Zero
// or more rules may fire; their messages are joined with ", ".
func (t ReasonThresholds) Reason(p models.ProcessMetrics) string {
	var reasons []string
	if p.CPUPercent > t.CPUPercent {
		reasons = append(reasons, "High CPU usage")
	}
	if p.MemoryPercent > t.MemoryPercent {
		reasons = append(reasons, "High memory usage")
	}
	if p.NumConnections > t.Connections {
		reasons = append(reasons, "Unusual network activity")
	}
	if p.NumThreads > t.Threads {
		reasons = append(reasons, "High thread count")
	}
	if p.NumFiles > t.OpenFiles {
		reasons = append(reasons, "Many open files")
	}
	if len(reasons) == 0 {
		return FallbackReason
	}
	return strings.Join(reasons, ", ")
}
