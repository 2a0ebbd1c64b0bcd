package repo

import (
	"context"
	"time"

	"github.com/consolehq/sitemonitor/internal/domain"
)

// Ports (interfaces) — swap in any DB adapter later.

// CheckCache is the denormalized last-known state the recorder writes
// back onto a monitor after the history row is durable.
type CheckCache struct {
	LastCheckedAt     time.Time
	LastStatus        domain.Verdict
	LastScreenshotURL *string
}

// MonitorStore holds monitor configuration. The CRUD collaborator owns
// document lifecycle; the check engine reads monitors and writes only
// the check cache.
type MonitorStore interface {
	// Get returns nil, nil when the monitor does not exist.
	Get(ctx context.Context, id domain.MonitorID) (*domain.MonitorConfig, error)
	Put(ctx context.Context, m *domain.MonitorConfig) error
	ListActive(ctx context.Context) ([]*domain.MonitorConfig, error)
	ListByOrg(ctx context.Context, org domain.OrgID) ([]*domain.MonitorConfig, error)
	UpdateCheckCache(ctx context.Context, id domain.MonitorID, c CheckCache) error
}

// ResultStore is the append-only check history. Rows are never mutated
// after Append.
type ResultStore interface {
	Append(ctx context.Context, r *domain.CheckResult) error
	// HistoryByMonitor returns rows with Timestamp >= since, newest
	// first. limit <= 0 means no limit.
	HistoryByMonitor(ctx context.Context, id domain.MonitorID, since time.Time, limit, offset int) ([]*domain.CheckResult, error)
	HistoryByOrg(ctx context.Context, org domain.OrgID, since time.Time) ([]*domain.CheckResult, error)
}
