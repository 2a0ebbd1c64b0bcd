// Package stats answers rolling-window aggregate queries over check
// history: uptime percentage, average response time and per-verdict
// counts. Read-side only, no mutation.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/consolehq/sitemonitor/internal/domain"
	"github.com/consolehq/sitemonitor/internal/repo"
)

// DefaultWindow is the product default for dashboard aggregates.
const DefaultWindow = 24 * time.Hour

type Engine struct {
	Monitors repo.MonitorStore
	Results  repo.ResultStore
}

func New(ms repo.MonitorStore, rs repo.ResultStore) *Engine {
	return &Engine{Monitors: ms, Results: rs}
}

// MonitorStats aggregates one monitor's history over the trailing window.
func (e *Engine) MonitorStats(ctx context.Context, id domain.MonitorID, window time.Duration) (*domain.StatsSummary, error) {
	if window <= 0 {
		window = DefaultWindow
	}
	mon, err := e.Monitors.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load monitor: %w", err)
	}
	if mon == nil {
		return nil, nil
	}

	since := time.Now().UTC().Add(-window)
	rows, err := e.Results.HistoryByMonitor(ctx, id, since, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	s := summarize(rows)
	s.TotalMonitors = 1
	if mon.IsActive {
		s.ActiveMonitors = 1
	}
	return s, nil
}

// OrgStats aggregates across every monitor the organization owns.
func (e *Engine) OrgStats(ctx context.Context, org domain.OrgID, window time.Duration) (*domain.StatsSummary, error) {
	if window <= 0 {
		window = DefaultWindow
	}
	monitors, err := e.Monitors.ListByOrg(ctx, org)
	if err != nil {
		return nil, fmt.Errorf("list monitors: %w", err)
	}

	since := time.Now().UTC().Add(-window)
	rows, err := e.Results.HistoryByOrg(ctx, org, since)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	s := summarize(rows)
	s.TotalMonitors = len(monitors)
	for _, m := range monitors {
		if m.IsActive {
			s.ActiveMonitors++
		}
	}
	return s, nil
}

// summarize is the pure aggregation core. Exact tallies, no sampling.
// Rows without a responseTime reading are excluded from the average on
// both sides; an empty window yields uptime 0, not NaN and not 100.
func summarize(rows []*domain.CheckResult) *domain.StatsSummary {
	s := &domain.StatsSummary{}

	var (
		rtSum   float64
		rtCount int
	)
	for _, r := range rows {
		switch r.OverallStatus {
		case domain.VerdictHealthy:
			s.HealthyCount++
		case domain.VerdictWarning:
			s.WarningCount++
		case domain.VerdictError:
			s.ErrorCount++
		}
		if r.ResponseTimeMS != nil {
			rtSum += *r.ResponseTimeMS
			rtCount++
		}
	}

	total := len(rows)
	if total > 0 {
		s.UptimePercentage = float64(total-s.ErrorCount) / float64(total) * 100
	}
	if rtCount > 0 {
		s.AverageResponseTimeMS = rtSum / float64(rtCount)
	}
	return s
}
