// Package admin provides administrative operations for database management.
package admin

import (
	"context"
	"time"

	"github.com/datanova/workbench/internal/core"
	"github.com/datanova/workbench/internal/logging"
)

// MaintenanceTimeout is the maximum duration for one maintenance pass.
const MaintenanceTimeout = 30 * time.Second

// DefaultSweepInterval is how often the background sweeper runs.
const DefaultSweepInterval = time.Hour

// Maintenance runs periodic cleanup against the session table. Persisted
// session rows outlive the cookies that key them; rows untouched for longer
// than the cookie lifetime can never be reached again and are swept.
type Maintenance struct {
	db     core.DBTX
	maxAge time.Duration
}

// NewMaintenance creates a maintenance runner. maxAge should match the
// session cookie lifetime.
func NewMaintenance(db core.DBTX, maxAge time.Duration) *Maintenance {
	return &Maintenance{db: db, maxAge: maxAge}
}

// PurgeStale deletes session rows not updated within the cookie lifetime.
// Returns the number of rows removed.
func (m *Maintenance) PurgeStale(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, MaintenanceTimeout)
	defer cancel()

	cutoff := time.Now().Add(-m.maxAge)
	tag, err := m.db.Exec(ctx,
		`DELETE FROM workspace_sessions WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// PurgeAll truncates the session table. This is a destructive operation -
// use with caution.
func (m *Maintenance) PurgeAll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, MaintenanceTimeout)
	defer cancel()

	_, err := m.db.Exec(ctx, `TRUNCATE workspace_sessions`)
	return err
}

// Run sweeps stale sessions on the given interval until ctx is cancelled.
// Intended to run in its own goroutine; a failed pass is logged and retried
// on the next tick.
func (m *Maintenance) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := m.PurgeStale(ctx)
			if err != nil {
				logging.FromContext(ctx).Warn("session sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				logging.FromContext(ctx).Info("swept stale sessions", "removed", removed)
			}
		}
	}
}
