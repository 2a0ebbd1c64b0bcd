package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/consolehq/sitemonitor/internal/domain"
	"github.com/consolehq/sitemonitor/internal/repo"
	"github.com/consolehq/sitemonitor/internal/repo/memory"
)

type fakeNotifier struct {
	titles []string
}

func (f *fakeNotifier) Send(_ context.Context, title, _ string) error {
	f.titles = append(f.titles, title)
	return nil
}

func seedChecked(t *testing.T, s *memory.Store, id domain.MonitorID, v domain.Verdict) {
	t.Helper()
	ctx := context.Background()
	if err := s.Put(ctx, &domain.MonitorConfig{
		ID: id, OrgID: "org1", URL: "https://example.com", Name: "example", IsActive: true,
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateCheckCache(ctx, id, checkedCache(v)); err != nil {
		t.Fatal(err)
	}
}

func checkedCache(v domain.Verdict) repo.CheckCache {
	return repo.CheckCache{LastCheckedAt: time.Now().UTC(), LastStatus: v}
}

func TestAlerter_SendsOnErrorTransition(t *testing.T) {
	store := memory.New()
	seedChecked(t, store, "m1", domain.VerdictError)
	n := &fakeNotifier{}

	a := NewAlerter(store, store.Alerts(), n, AlerterConfig{
		Cooldown:     time.Hour,
		PollInterval: time.Minute,
	})

	if err := a.scanOnce(context.Background()); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(n.titles) != 1 {
		t.Fatalf("want one alert, got %v", n.titles)
	}

	// second scan with unchanged verdict: no repeat
	if err := a.scanOnce(context.Background()); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(n.titles) != 1 {
		t.Fatalf("unchanged verdict must not re-alert, got %v", n.titles)
	}
}

func TestAlerter_WarningDoesNotAlert(t *testing.T) {
	store := memory.New()
	seedChecked(t, store, "m1", domain.VerdictWarning)
	n := &fakeNotifier{}

	a := NewAlerter(store, store.Alerts(), n, AlerterConfig{
		Cooldown:     time.Hour,
		PollInterval: time.Minute,
	})
	a.scanOnce(context.Background())
	if len(n.titles) != 0 {
		t.Fatalf("warnings are dashboard material, not alerts; got %v", n.titles)
	}
}

func TestAlerter_RecoveryAlertWhenEnabled(t *testing.T) {
	store := memory.New()
	seedChecked(t, store, "m1", domain.VerdictError)
	n := &fakeNotifier{}

	a := NewAlerter(store, store.Alerts(), n, AlerterConfig{
		AlertOnRecovery: true,
		Cooldown:        time.Hour,
		PollInterval:    time.Minute,
	})
	a.scanOnce(context.Background())

	// monitor recovers
	store.UpdateCheckCache(context.Background(), "m1", checkedCache(domain.VerdictHealthy))
	a.scanOnce(context.Background())

	if len(n.titles) != 2 {
		t.Fatalf("want error+recovery alerts, got %v", n.titles)
	}
}

func TestAlerter_NeverCheckedIsSkipped(t *testing.T) {
	store := memory.New()
	store.Put(context.Background(), &domain.MonitorConfig{
		ID: "m1", OrgID: "org1", URL: "https://example.com", IsActive: true,
	})
	n := &fakeNotifier{}

	a := NewAlerter(store, store.Alerts(), n, AlerterConfig{PollInterval: time.Minute})
	if err := a.scanOnce(context.Background()); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(n.titles) != 0 {
		t.Fatalf("monitor without history must not alert; got %v", n.titles)
	}
}
