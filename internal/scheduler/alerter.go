package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/consolehq/sitemonitor/internal/domain"
	"github.com/consolehq/sitemonitor/internal/repo"
)

type AlerterConfig struct {
	AlertOnRecovery bool
	Cooldown        time.Duration
	PollInterval    time.Duration
}

// Alerter watches the monitors' cached verdicts and sends a
// notification when one transitions into error (and, optionally, back
// to healthy). Error alerts respect a cooldown so a flapping site does
// not spam the channel.
type Alerter struct {
	monitors repo.MonitorStore
	alertDB  repo.AlertStore
	notifier interface {
		Send(context.Context, string, string) error
	}
	cfg AlerterConfig
}

func NewAlerter(
	monitors repo.MonitorStore,
	alertDB repo.AlertStore,
	notifier interface {
		Send(context.Context, string, string) error
	},
	cfg AlerterConfig,
) *Alerter {
	return &Alerter{
		monitors: monitors,
		alertDB:  alertDB,
		notifier: notifier,
		cfg:      cfg,
	}
}

func (a *Alerter) Run(ctx context.Context) error {
	t := time.NewTicker(a.cfg.PollInterval)
	defer t.Stop()

	// initial pass
	_ = a.scanOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			_ = a.scanOnce(ctx)
		}
	}
}

func (a *Alerter) scanOnce(ctx context.Context) error {
	monitors, err := a.monitors.ListActive(ctx)
	if err != nil {
		return err
	}

	now := time.Now()

	for _, m := range monitors {
		if m.LastStatus == nil {
			continue // never checked yet
		}
		verdict := *m.LastStatus

		rec, _ := a.alertDB.Get(ctx, m.ID)
		changed := rec == nil || rec.LastVerdict != verdict

		// Cooldown only gates repeated error alerts.
		cooled := true
		if rec != nil && rec.LastSentAt != nil {
			cooled = now.Sub(*rec.LastSentAt) >= a.cfg.Cooldown
		}

		wentDown := changed && verdict == domain.VerdictError && cooled
		recovered := changed && verdict == domain.VerdictHealthy && a.cfg.AlertOnRecovery &&
			rec != nil && rec.LastVerdict == domain.VerdictError

		if wentDown || recovered {
			title := "🔴 Monitor ERROR"
			if recovered {
				title = "🟢 Monitor RECOVERED"
			}

			checkedTxt := "n/a"
			if m.LastCheckedAt != nil {
				checkedTxt = m.LastCheckedAt.Format(time.RFC3339)
			}
			text := fmt.Sprintf(
				"Monitor: %s\nURL: %s\nVerdict: %s\nChecked: %s",
				m.Name, m.URL, verdict, checkedTxt,
			)

			// best-effort send; record the send time either way
			_ = a.notifier.Send(ctx, title, text)
			_ = a.alertDB.Set(ctx, m.ID, verdict, now)
			continue
		}

		// State changed but nothing was sent (warning, error within
		// cooldown, recovery alerts disabled): still record the verdict.
		if changed {
			_ = a.alertDB.Set(ctx, m.ID, verdict, time.Time{})
		}
	}

	return nil
}
