package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/consolehq/sitemonitor/internal/domain"
	"github.com/consolehq/sitemonitor/internal/probe"
	"github.com/consolehq/sitemonitor/internal/repo/memory"
)

func testEngine(store *memory.Store, probes ...probe.Probe) *Engine {
	log := zap.NewNop()
	orch := NewOrchestrator(probes, DefaultTimeouts(), log)
	rec := NewRecorder(store, store, log)
	return New(store, orch, rec, NewMetrics(nil), log)
}

func TestRunCheck_UnknownMonitor(t *testing.T) {
	e := testEngine(memory.New())
	cr, err := e.RunCheck(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrMonitorNotFound)
	assert.Nil(t, cr)
}

func TestRunCheck_RecordsHistoryAndCache(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	mon := &domain.MonitorConfig{
		ID:    "m1",
		OrgID: "org1",
		URL:   "https://example.com",
		Checks: domain.EnabledChecks{
			HTTPStatus:   true,
			ResponseTime: true,
			DNSRecords:   true,
		},
		IsActive: true,
	}
	require.NoError(t, store.Put(ctx, mon))

	httpOut := httpOutcome(200)
	httpOut.LatencyMS = 37.5
	e := testEngine(store,
		&fakeProbe{kind: probe.KindHTTPStatus, out: httpOut},
		&fakeProbe{kind: probe.KindDNSRecords, out: dnsOutcome("93.184.216.34")},
	)

	cr, err := e.RunCheck(ctx, "m1")
	require.NoError(t, err)
	require.NotNil(t, cr)
	assert.Equal(t, domain.VerdictHealthy, cr.OverallStatus)
	require.NotNil(t, cr.HTTPStatus)
	assert.Equal(t, 200, cr.HTTPStatus.StatusCode)
	require.NotNil(t, cr.ResponseTimeMS)
	assert.Equal(t, 37.5, *cr.ResponseTimeMS)
	assert.Nil(t, cr.SSLCertificate)

	rows, err := store.HistoryByMonitor(ctx, "m1", time.Time{}, 0, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	got, _ := store.Get(ctx, "m1")
	require.NotNil(t, got.LastStatus)
	assert.Equal(t, domain.VerdictHealthy, *got.LastStatus)
	require.NotNil(t, got.LastCheckedAt)
	assert.Equal(t, cr.Timestamp, got.LastCheckedAt.UTC())
}

func TestRunCheck_TargetErrorIsDataNotFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	store.Put(ctx, &domain.MonitorConfig{
		ID: "m1", OrgID: "org1", URL: "https://example.com",
		Checks: domain.EnabledChecks{HTTPStatus: true},
	})

	e := testEngine(store, &fakeProbe{kind: probe.KindHTTPStatus, out: httpOutcome(503)})

	cr, err := e.RunCheck(ctx, "m1")
	require.NoError(t, err, "a 503 from the site is a result, not an engine error")
	assert.Equal(t, domain.VerdictError, cr.OverallStatus)
	require.NotNil(t, cr.HTTPStatus)
	assert.False(t, cr.HTTPStatus.IsOk)
}

func TestRunCheck_ConcurrentSameMonitor(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	store.Put(ctx, &domain.MonitorConfig{
		ID: "m1", OrgID: "org1", URL: "https://example.com",
		Checks: domain.EnabledChecks{HTTPStatus: true},
	})
	e := testEngine(store, &fakeProbe{kind: probe.KindHTTPStatus, out: httpOutcome(200)})

	done := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := e.RunCheck(ctx, "m1")
			done <- err
		}()
	}
	require.NoError(t, <-done)
	require.NoError(t, <-done)

	rows, _ := store.HistoryByMonitor(ctx, "m1", time.Time{}, 0, 0)
	assert.Len(t, rows, 2, "both invocations must land in history")
	got, _ := store.Get(ctx, "m1")
	require.NotNil(t, got.LastStatus, "cache reflects whichever write landed last")
}

func TestRunCheck_CallerCancelRecordsNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := memory.New()
	store.Put(ctx, &domain.MonitorConfig{
		ID: "m1", OrgID: "org1", URL: "https://example.com",
		Checks: domain.EnabledChecks{HTTPStatus: true},
	})

	log := zap.NewNop()
	timeouts := DefaultTimeouts()
	timeouts.HTTPStatus = 200 * time.Millisecond
	orch := NewOrchestrator([]probe.Probe{
		&fakeProbe{kind: probe.KindHTTPStatus, out: httpOutcome(200), delay: time.Hour},
	}, timeouts, log)
	e := New(store, orch, NewRecorder(store, store, log), NewMetrics(nil), log)

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	cr, err := e.RunCheck(ctx, "m1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, cr)

	rows, _ := store.HistoryByMonitor(context.Background(), "m1", time.Time{}, 0, 0)
	assert.Empty(t, rows, "an abandoned check must leave no history")
	got, _ := store.Get(context.Background(), "m1")
	assert.Nil(t, got.LastStatus, "cache must stay untouched")
}
