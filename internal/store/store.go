// Package store persists report snapshots. Persistence is a
// collaborator concern: the detection pipeline builds reports and
// hands them off here.
package store

import (
	"context"

	"github.com/procsight/procsight/internal/models"
)

// Store is the persistence interface for report snapshots.
type Store interface {
	// SaveReport persists one report with its anomaly entries.
	SaveReport(ctx context.Context, report *models.Report) error

	// RecentReports returns up to limit reports, newest first,
	// with their anomaly entries attached.
	RecentReports(ctx context.Context, limit int) ([]models.Report, error)

	// PruneOlderThan removes reports recorded more than the given
	// number of days ago and returns how many were removed.
	PruneOlderThan(ctx context.Context, days int) (int64, error)

	// Ping verifies the backing database is reachable.
	Ping(ctx context.Context) error

	// Close releases the backing database.
	Close() error
}
