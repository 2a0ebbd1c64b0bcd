package repo

import (
	"context"
	"time"

	"github.com/consolehq/sitemonitor/internal/domain"
)

// AlertRecord holds the last verdict we alerted on for a monitor and the
// last time a notification went out (used for cooldown).
type AlertRecord struct {
	MonitorID   domain.MonitorID
	LastVerdict domain.Verdict
	LastSentAt  *time.Time
}

// AlertStore is implemented by a persistence layer to store alert state.
type AlertStore interface {
	// Get returns nil, nil if there's no record yet.
	Get(ctx context.Context, id domain.MonitorID) (*AlertRecord, error)
	// Set upserts the record. If sentAt.IsZero() we keep the previous
	// send time (state changed but nothing was sent).
	Set(ctx context.Context, id domain.MonitorID, verdict domain.Verdict, sentAt time.Time) error
}
