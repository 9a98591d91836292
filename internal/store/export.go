package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/procsight/procsight/internal/models"
)

// ExportReportFile writes one report as an indented JSON file in dir,
// named anomaly_report_<timestamp>.json. Returns the written path.
func ExportReportFile(dir string, report *models.Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	// Timestamp doubles as the file name; strip separators that do
	// not belong in paths.
	stamp := strings.NewReplacer(" ", "_", ":", "").Replace(report.Timestamp)
	path := filepath.Join(dir, fmt.Sprintf("anomaly_report_%s.json", stamp))

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report file: %w", err)
	}
	return path, nil
}
