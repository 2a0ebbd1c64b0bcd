package memory

import (
	"context"
	"testing"
	"time"

	"github.com/consolehq/sitemonitor/internal/domain"
	"github.com/consolehq/sitemonitor/internal/repo"
)

func TestStore_PutGetAndCache(t *testing.T) {
	ctx := context.Background()
	s := New()

	m := &domain.MonitorConfig{
		OrgID:    "org1",
		URL:      "https://example.com",
		Name:     "example",
		IsActive: true,
		Checks:   domain.EnabledChecks{HTTPStatus: true},
	}
	if err := s.Put(ctx, m); err != nil {
		t.Fatalf("put: %v", err)
	}
	if m.ID == "" {
		t.Fatalf("put should assign an id")
	}

	got, err := s.Get(ctx, m.ID)
	if err != nil || got == nil {
		t.Fatalf("get: %v %v", got, err)
	}
	if got.LastStatus != nil {
		t.Fatalf("fresh monitor must have no cached status")
	}

	at := time.Now().UTC()
	ss := "https://img.test/a.png"
	err = s.UpdateCheckCache(ctx, m.ID, repo.CheckCache{
		LastCheckedAt:     at,
		LastStatus:        domain.VerdictWarning,
		LastScreenshotURL: &ss,
	})
	if err != nil {
		t.Fatalf("cache: %v", err)
	}

	got, _ = s.Get(ctx, m.ID)
	if got.LastStatus == nil || *got.LastStatus != domain.VerdictWarning {
		t.Fatalf("cache status not applied: %+v", got)
	}
	if got.LastScreenshotURL == nil || *got.LastScreenshotURL != ss {
		t.Fatalf("cache screenshot not applied: %+v", got)
	}

	// screenshot URL survives a later check without a screenshot
	err = s.UpdateCheckCache(ctx, m.ID, repo.CheckCache{
		LastCheckedAt: at.Add(time.Minute),
		LastStatus:    domain.VerdictHealthy,
	})
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	got, _ = s.Get(ctx, m.ID)
	if got.LastScreenshotURL == nil || *got.LastScreenshotURL != ss {
		t.Fatalf("screenshot cache should persist: %+v", got)
	}
}

func TestStore_Get_Missing(t *testing.T) {
	s := New()
	got, err := s.Get(context.Background(), "nope")
	if err != nil || got != nil {
		t.Fatalf("want nil, nil for missing monitor, got %v %v", got, err)
	}
}

func TestStore_HistoryWindowAndPagination(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Now().UTC().Add(-3 * time.Hour)

	for i := 0; i < 6; i++ {
		s.Append(ctx, &domain.CheckResult{
			MonitorID:     "m1",
			URL:           "https://example.com",
			Timestamp:     base.Add(time.Duration(i) * 30 * time.Minute),
			OverallStatus: domain.VerdictHealthy,
		})
	}
	s.Append(ctx, &domain.CheckResult{
		MonitorID:     "other",
		Timestamp:     base.Add(time.Hour),
		OverallStatus: domain.VerdictError,
	})

	// window cuts off the first two rows
	rows, err := s.HistoryByMonitor(ctx, "m1", base.Add(45*time.Minute), 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("want 4 rows in window, got %d", len(rows))
	}
	if rows[0].Timestamp.Before(rows[len(rows)-1].Timestamp) {
		t.Fatalf("rows should be newest first")
	}

	// pagination
	rows, _ = s.HistoryByMonitor(ctx, "m1", time.Time{}, 2, 1)
	if len(rows) != 2 {
		t.Fatalf("want limit=2, got %d", len(rows))
	}

	// limit <= 0 means no limit
	rows, _ = s.HistoryByMonitor(ctx, "m1", time.Time{}, 0, 0)
	if len(rows) != 6 {
		t.Fatalf("want all 6 rows with no limit, got %d", len(rows))
	}
	rows, _ = s.HistoryByMonitor(ctx, "m1", time.Time{}, -1, 0)
	if len(rows) != 6 {
		t.Fatalf("want all 6 rows with negative limit, got %d", len(rows))
	}
}

func TestStore_ConcurrentChecksBothPersist(t *testing.T) {
	ctx := context.Background()
	s := New()
	m := &domain.MonitorConfig{ID: "m1", OrgID: "org1", URL: "https://example.com"}
	s.Put(ctx, m)

	done := make(chan struct{}, 2)
	write := func(v domain.Verdict, at time.Time) {
		s.Append(ctx, &domain.CheckResult{MonitorID: "m1", Timestamp: at, OverallStatus: v})
		s.UpdateCheckCache(ctx, "m1", repo.CheckCache{LastCheckedAt: at, LastStatus: v})
		done <- struct{}{}
	}
	now := time.Now().UTC()
	go write(domain.VerdictHealthy, now)
	go write(domain.VerdictError, now.Add(time.Millisecond))
	<-done
	<-done

	rows, _ := s.HistoryByMonitor(ctx, "m1", time.Time{}, 0, 0)
	if len(rows) != 2 {
		t.Fatalf("both history rows must persist, got %d", len(rows))
	}
	got, _ := s.Get(ctx, "m1")
	if got.LastStatus == nil {
		t.Fatalf("cache should be set")
	}
	// last writer wins; either verdict is acceptable, it just has to be one of them
	if *got.LastStatus != domain.VerdictHealthy && *got.LastStatus != domain.VerdictError {
		t.Fatalf("unexpected cached verdict %q", *got.LastStatus)
	}
}

func TestStore_AlertState(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := s.Alerts()

	rec, err := a.Get(ctx, "m1")
	if err != nil || rec != nil {
		t.Fatalf("want nil, nil before first set, got %v %v", rec, err)
	}

	now := time.Now().UTC()
	a.Set(ctx, "m1", domain.VerdictError, now)
	rec, _ = a.Get(ctx, "m1")
	if rec.LastVerdict != domain.VerdictError || rec.LastSentAt == nil {
		t.Fatalf("unexpected record: %+v", rec)
	}

	// zero sentAt keeps the previous send time
	a.Set(ctx, "m1", domain.VerdictHealthy, time.Time{})
	rec, _ = a.Get(ctx, "m1")
	if rec.LastVerdict != domain.VerdictHealthy || rec.LastSentAt == nil || !rec.LastSentAt.Equal(now) {
		t.Fatalf("unexpected record after state-only set: %+v", rec)
	}
}
