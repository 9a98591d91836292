package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procsight/procsight/internal/models"
)

func TestExportReportFile(t *testing.T) {
	dir := t.TempDir()
	report := sampleReport("file-1")

	path, err := ExportReportFile(dir, report)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "anomaly_report_2026-08-23_101500.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got models.Report
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, report.ID, got.ID)
	assert.Equal(t, report.Timestamp, got.Timestamp)
	assert.Len(t, got.Anomalies, 2)
}

func TestExportReportFile_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	report := sampleReport("file-2")
	report.Anomalies = nil
	report.AnomalyCount = 0

	path, err := ExportReportFile(dir, report)
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}
