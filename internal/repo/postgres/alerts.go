package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/consolehq/sitemonitor/internal/domain"
	"github.com/consolehq/sitemonitor/internal/repo"
)

// Alerts exposes the alert-state view of the store.
func (s *Store) Alerts() repo.AlertStore { return alertStore{s} }

type alertStore struct{ s *Store }

var _ repo.AlertStore = (alertStore{})

func (a alertStore) Get(ctx context.Context, id domain.MonitorID) (*repo.AlertRecord, error) {
	row := a.s.pool.QueryRow(ctx,
		`SELECT monitor_id, last_verdict, last_sent_at
		   FROM alert_state
		  WHERE monitor_id = $1`, string(id))

	var (
		rec     repo.AlertRecord
		verdict string
	)
	err := row.Scan(&rec.MonitorID, &verdict, &rec.LastSentAt)
	if found, err := classifyScan("select alert state", err); !found {
		return nil, err
	}
	rec.LastVerdict = domain.Verdict(verdict)
	return &rec, nil
}

func (a alertStore) Set(ctx context.Context, id domain.MonitorID, verdict domain.Verdict, sentAt time.Time) error {
	var sent *time.Time
	if !sentAt.IsZero() {
		sent = &sentAt
	}
	_, err := a.s.pool.Exec(ctx,
		`INSERT INTO alert_state (monitor_id, last_verdict, last_sent_at)
		 VALUES ($1,$2,$3)
		 ON CONFLICT (monitor_id) DO UPDATE
		    SET last_verdict = EXCLUDED.last_verdict,
		        last_sent_at = COALESCE(EXCLUDED.last_sent_at, alert_state.last_sent_at)`,
		string(id), string(verdict), sent)
	if err != nil {
		return fmt.Errorf("upsert alert state: %w", err)
	}
	return nil
}
