package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // pure-Go SQLite driver (no CGO required)

	"github.com/procsight/procsight/internal/models"
)

// Schema versions are tracked in the schema_versions table.
var migrations = []struct {
	version int
	sql     string
}{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_versions (
    version     INTEGER PRIMARY KEY,
    applied_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS reports (
    id              TEXT PRIMARY KEY,
    timestamp       TEXT NOT NULL,
    total_processes INTEGER NOT NULL DEFAULT 0,
    anomaly_count   INTEGER NOT NULL DEFAULT 0,
    recorded_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_reports_recorded_at ON reports(recorded_at DESC);

CREATE TABLE IF NOT EXISTS report_anomalies (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    report_id      TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
    pid            INTEGER NOT NULL,
    name           TEXT NOT NULL DEFAULT '',
    reason         TEXT NOT NULL DEFAULT '',
    cpu_percent    REAL NOT NULL DEFAULT 0.0,
    memory_percent REAL NOT NULL DEFAULT 0.0,
    connections    INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_report_anomalies_report ON report_anomalies(report_id);
CREATE INDEX IF NOT EXISTS idx_report_anomalies_name ON report_anomalies(name);
`,
	},
}

// sqliteStore is the SQLite-backed implementation of Store.
type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given
// path and runs all pending schema migrations. Pass ":memory:" for an
// in-memory store.
func NewSQLiteStore(path string) (Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys=ON`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &sqliteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// migrate applies any unapplied migrations in order.
func (s *sqliteStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_versions (
        version    INTEGER PRIMARY KEY,
        applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
    )`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := s.db.QueryRow(`SELECT COUNT(*) FROM schema_versions WHERE version = ?`, m.version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.version, err)
		}
		if count > 0 {
			continue // already applied
		}

		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("apply migration %d: %w", m.version, err)
		}
		if _, err := s.db.Exec(`INSERT INTO schema_versions(version) VALUES(?)`, m.version); err != nil {
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
	}
	return nil
}

func (s *sqliteStore) Close() error { return s.db.Close() }

func (s *sqliteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// SaveReport persists one report with its anomaly entries.
func (s *sqliteStore) SaveReport(ctx context.Context, report *models.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
        INSERT INTO reports(id, timestamp, total_processes, anomaly_count)
        VALUES(?, ?, ?, ?)`,
		report.ID, report.Timestamp, report.TotalProcesses, report.AnomalyCount)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}

	for _, a := range report.Anomalies {
		_, err = tx.ExecContext(ctx, `
            INSERT INTO report_anomalies(report_id, pid, name, reason, cpu_percent, memory_percent, connections)
            VALUES(?, ?, ?, ?, ?, ?, ?)`,
			report.ID, a.PID, a.Name, a.Reason, a.CPUPercent, a.MemoryPercent, a.Connections)
		if err != nil {
			return fmt.Errorf("insert anomaly for report %s: %w", report.ID, err)
		}
	}

	return tx.Commit()
}

// RecentReports returns up to limit reports, newest first.
func (s *sqliteStore) RecentReports(ctx context.Context, limit int) ([]models.Report, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, timestamp, total_processes, anomaly_count
        FROM reports ORDER BY recorded_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		var r models.Report
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.TotalProcesses, &r.AnomalyCount); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range reports {
		anomalies, err := s.reportAnomalies(ctx, reports[i].ID)
		if err != nil {
			return nil, err
		}
		reports[i].Anomalies = anomalies
	}
	return reports, nil
}

func (s *sqliteStore) reportAnomalies(ctx context.Context, reportID string) ([]models.ReportAnomaly, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT pid, name, reason, cpu_percent, memory_percent, connections
        FROM report_anomalies WHERE report_id = ? ORDER BY id ASC`, reportID)
	if err != nil {
		return nil, fmt.Errorf("query anomalies for report %s: %w", reportID, err)
	}
	defer rows.Close()

	anomalies := make([]models.ReportAnomaly, 0)
	for rows.Next() {
		var a models.ReportAnomaly
		if err := rows.Scan(&a.PID, &a.Name, &a.Reason, &a.CPUPercent, &a.MemoryPercent, &a.Connections); err != nil {
			return nil, fmt.Errorf("scan anomaly: %w", err)
		}
		anomalies = append(anomalies, a)
	}
	return anomalies, rows.Err()
}

// PruneOlderThan removes reports recorded more than days ago.
func (s *sqliteStore) PruneOlderThan(ctx context.Context, days int) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
        DELETE FROM reports
        WHERE recorded_at < datetime('now', ?)`,
		fmt.Sprintf("-%d days", days))
	if err != nil {
		return 0, fmt.Errorf("prune reports: %w", err)
	}
	return res.RowsAffected()
}
